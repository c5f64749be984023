package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kamikazebr/iskra-desktop/internal/client/api"
	"github.com/kamikazebr/iskra-desktop/internal/client/auth"
	"github.com/kamikazebr/iskra-desktop/internal/client/config"
	"github.com/kamikazebr/iskra-desktop/internal/client/logger"
	"github.com/kamikazebr/iskra-desktop/internal/client/storage"
	"github.com/kamikazebr/iskra-desktop/pkg/utils"
	"github.com/kamikazebr/iskra-desktop/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "iskra",
	Short: "Iskra AI client",
	Long:  "Command-line client for the Iskra AI service: account, usage, models and billing",
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app != nil && app.closeLog != nil {
			app.closeLog()
		}
	},
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		if versionVerbose {
			fmt.Println(version.GetVersionInfo())
			fmt.Printf("Platform:   %s\n", utils.DetectOS())
			return
		}
		fmt.Println(version.GetVersion("iskra"))
	},
}

var versionVerbose bool

var (
	flagAPIURL   string
	flagLogLevel string
)

// application is the state shared by every command.
type application struct {
	cfg      *config.Config
	log      *logrus.Logger
	closeLog func() error
	store    storage.Store
	session  *auth.Session
}

var app *application

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return setupApp(cmd)
	}
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Backend URL (overrides ISKRA_API_URL)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	versionCmd.Flags().BoolVarP(&versionVerbose, "verbose", "v", false, "Show build details")

	rootCmd.AddCommand(authCmd, watchCmd, aiCmd, billingCmd, memoryCmd, openURLCmd, deviceIDCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command) error {
	if cmd == versionCmd {
		return nil
	}

	_, v, err := config.Load()
	if err != nil {
		return err
	}
	if err := v.BindPFlag("api.url", cmd.Root().PersistentFlags().Lookup("api-url")); err != nil {
		return err
	}
	if err := v.BindPFlag("logging.level", cmd.Root().PersistentFlags().Lookup("log-level")); err != nil {
		return err
	}
	cfg, err := config.Unmarshal(v)
	if err != nil {
		return err
	}

	log, closeLog, err := logger.New(logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Dir:     cfg.LogDir(),
		Console: os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	store, err := storage.NewFileStore(cfg.Storage.Dir, log)
	if err != nil {
		closeLog()
		return err
	}

	app = &application{
		cfg:      cfg,
		log:      log,
		closeLog: closeLog,
		store:    store,
		session:  auth.NewSession(cfg.API.URL, store, log, api.WithTimeout(cfg.API.Timeout)),
	}
	return nil
}

// fail prints err and exits. Backend messages are shown as sent.
func fail(prefix string, err error) {
	fmt.Printf("✗ %s: %v\n", prefix, err)
	os.Exit(1)
}
