package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "net/http/pprof"

	"github.com/bentalba/taawidaty/config"
	"github.com/bentalba/taawidaty/data"
	"github.com/bentalba/taawidaty/logging"
	"github.com/bentalba/taawidaty/reconciler"
	"github.com/bentalba/taawidaty/scheduler"
	"github.com/bentalba/taawidaty/server"
	"github.com/bentalba/taawidaty/validation"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional, environment variables win
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logging.InitLogger(cfg.LogDir, cfg.LogRetentionWeeks, cfg.LogLevel)

	dataContainer := data.NewDataContainer()
	dataContainer.SetServerStartTime(time.Now())

	loader := reconciler.NewFileLoader(cfg.CatalogueFiles...)
	sched := scheduler.NewScheduler(dataContainer, loader)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	validator := validation.NewDataValidator()
	srv := server.NewServer(cfg, dataContainer, validator)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start the server in a goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-quit

	// Create a context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		os.Exit(1)
	}
}
