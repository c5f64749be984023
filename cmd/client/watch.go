package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kamikazebr/iskra-desktop/internal/client/ui"
	"github.com/kamikazebr/iskra-desktop/internal/client/usage"
	"github.com/kamikazebr/iskra-desktop/pkg/models"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show remaining requests, refreshed in the background",
	Run:   runWatch,
}

var watchPlain bool

func init() {
	watchCmd.Flags().BoolVar(&watchPlain, "plain", false, "Print a single updating line instead of the full-screen view")
}

// reportingSource shows refresh failures in the status view.
type reportingSource struct {
	usage.Source
	indicator *ui.ProgramIndicator
}

func (s reportingSource) RefreshProfile(ctx context.Context) (*models.User, error) {
	user, err := s.Source.RefreshProfile(ctx)
	if err != nil && !errors.Is(err, usage.ErrNoSession) && ctx.Err() == nil {
		s.indicator.ShowError(err)
	}
	return user, err
}

func runWatch(cmd *cobra.Command, args []string) {
	if watchPlain {
		runWatchPlain()
		return
	}

	program := tea.NewProgram(ui.NewStatusModel("Iskra"))
	indicator := ui.NewProgramIndicator(program)

	poller := &usage.Poller{
		Source:          reportingSource{Source: app.session, indicator: indicator},
		Indicator:       indicator,
		RefreshInterval: app.cfg.Usage.RefreshInterval,
		DisplayInterval: app.cfg.Usage.DisplayInterval,
		Log:             app.log,
		Subscribe:       app.session.Subscribe,
	}

	handle := poller.Start(context.Background())
	defer handle.Stop()

	if _, err := program.Run(); err != nil {
		fail("Watch failed", err)
	}
}

func runWatchPlain() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	indicator := ui.NewLineIndicator(os.Stdout)
	poller := &usage.Poller{
		Source:          app.session,
		Indicator:       indicator,
		RefreshInterval: app.cfg.Usage.RefreshInterval,
		DisplayInterval: app.cfg.Usage.DisplayInterval,
		Log:             app.log,
		Subscribe:       app.session.Subscribe,
	}

	handle := poller.Start(ctx)
	<-ctx.Done()
	handle.Stop()
	indicator.Hide()
}
