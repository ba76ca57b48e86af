package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"homeguard/internal/handlers"
	"homeguard/internal/logger"
	"homeguard/internal/repository"
	"homeguard/internal/server"
	"homeguard/internal/service"

	"github.com/spf13/viper"
)

const defaultSweepInterval = 10 * time.Minute

func main() {
	// load config.yml first so the log level is configurable
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	log := logger.Get(viper.GetString("log_level"))

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(db)
	services := service.NewService(repos, service.Deps{
		Mailer: service.NewSMTPMailer(service.SMTPConfig{
			Host: viper.GetString("smtp.host"),
			Port: viper.GetInt("smtp.port"),
			User: viper.GetString("smtp.user"),
			Pass: viper.GetString("smtp.pass"),
		}, log),
		Policy: service.PolicyConfig{
			URL:     viper.GetString("policy.url"),
			Model:   viper.GetString("policy.model"),
			Timeout: viper.GetDuration("policy.timeout"),
		},
		Email: service.EmailConfig{
			UserAddr:      viper.GetString("email.user"),
			EmergencyAddr: viper.GetString("email.emergency"),
		},
		Jobs: service.JobsConfig{
			MaxWorkers: viper.GetInt("jobs.max_workers"),
			TTL:        viper.GetDuration("jobs.ttl"),
		},
		Log: log,
	})
	apiHandler := handlers.NewHandler(services, viper.GetString("api.key"), log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start job-record janitor (via composed service)
	go services.Janitor.Run(ctx, sweepInterval())

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	viper.SetEnvPrefix("homeguard")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "homeguard.db")
		dbPath = "homeguard.db"
	}
	return repository.InitDB(dbPath)
}

func sweepInterval() time.Duration {
	if d := viper.GetDuration("jobs.sweep_interval"); d > 0 {
		return d
	}
	return defaultSweepInterval
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
