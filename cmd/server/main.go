package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kamikazebr/iskra-desktop/internal/server/api"
	"github.com/kamikazebr/iskra-desktop/internal/server/services"
	"github.com/kamikazebr/iskra-desktop/internal/server/storage"
	"github.com/kamikazebr/iskra-desktop/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "iskra-server",
	Short: "Iskra development backend",
	Long:  "In-memory implementation of the Iskra HTTP API for local development and tests",
	Run: func(cmd *cobra.Command, args []string) {
		runServe(cmd, args)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the development backend",
	Run:   runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetVersion("iskra-server"))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(lvl)
	}
	return log
}

func runServe(cmd *cobra.Command, args []string) {
	log := newLogger()

	if err := godotenv.Load(); err != nil {
		log.Debug(".env file not found, using environment variables")
	}

	log.Info(version.GetVersion("iskra-server"))

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = randomSecret()
		log.Warn("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	}

	db := storage.NewMemoryDB()
	userRepo := storage.NewUserRepository(db)
	authRepo := storage.NewAuthRepository(db)
	paymentRepo := storage.NewPaymentRepository(db)
	usageRepo := storage.NewUsageRepository(db)

	metrics := services.NewMetrics()
	emailService := services.NewEmailService(log)
	authService := services.NewAuthService(authRepo, userRepo, emailService, metrics, services.AuthConfig{JWTSecret: secret}, log)
	usageService := services.NewUsageService(usageRepo)
	aiService := services.NewAIService()
	billingService := services.NewBillingService(paymentRepo, userRepo, metrics, log)

	router := api.NewRouter(api.Deps{
		Auth:      authService,
		Usage:     usageService,
		AI:        aiService,
		Billing:   billingService,
		Metrics:   metrics,
		Log:       log,
		PublicURL: os.Getenv("PUBLIC_URL"),
	})

	host := os.Getenv("API_HOST")
	if host == "" {
		host = "127.0.0.1"
	}

	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	port = findAvailableAPIPort(log, port)
	addr := net.JoinHostPort(host, port)

	srv := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go cleanupExpiredCodes(ctx, log, authService)

	go func() {
		log.WithField("addr", addr).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server shutting down...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}

	log.Info("Server stopped")
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

func cleanupExpiredCodes(ctx context.Context, log logrus.FieldLogger, authService *services.AuthService) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := authService.CleanupExpiredCodes(ctx); err != nil {
				log.WithError(err).Warn("Failed to cleanup expired codes")
			}
		}
	}
}

func isPortAvailable(port string) bool {
	ln, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return false
	}
	ln.Close()
	return true
}

// findAvailableAPIPort returns preferredPort or the first free port among the
// next 20.
func findAvailableAPIPort(log logrus.FieldLogger, preferredPort string) string {
	if isPortAvailable(preferredPort) {
		return preferredPort
	}

	log.WithField("port", preferredPort).Warn("Port in use, trying alternatives")

	startPort := 8080
	if p, err := strconv.Atoi(preferredPort); err == nil {
		startPort = p
	}

	for i := 1; i <= 20; i++ {
		portStr := strconv.Itoa(startPort + i)
		if isPortAvailable(portStr) {
			log.WithField("port", portStr).Info("Found available port")
			return portStr
		}
	}

	return preferredPort
}
