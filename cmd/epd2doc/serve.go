package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/epd2doc/internal/api"
	"github.com/dgallion1/epd2doc/internal/config"
	"github.com/dgallion1/epd2doc/internal/metrics"
	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// parseServeFlags returns the server configuration: env, then the config
// file, then --port.
func parseServeFlags(args []string, stderr io.Writer) (config.Config, commonFlags, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	addCommonFlags(fs, &common)
	port := fs.StringP("port", "p", "", "listen port (default $PORT or 8090)")

	if err := fs.Parse(args); err != nil {
		return config.Config{}, common, usageErr(err)
	}

	cfg := config.Load()
	if common.config != "" {
		var err error
		if cfg, err = config.LoadFile(cfg, common.config); err != nil {
			return cfg, common, fmt.Errorf("%w: %v", ErrUsage, err)
		}
	}
	if *port != "" {
		cfg.Port = *port
	}
	if err := cfg.ValidateLayout(); err != nil {
		return cfg, common, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return cfg, common, nil
}

func runServe(args []string, stdout, stderr io.Writer) error {
	cfg, common, err := parseServeFlags(args, stderr)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if common.verbose {
		level = slog.LevelDebug
	} else if common.quiet {
		level = slog.LevelWarn
	}
	log := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{Level: level}))

	// Error ignored: maxprocs.Set only fails on an invalid GOMAXPROCS, and the
	// runtime default then applies.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		log.Debug(fmt.Sprintf(format, args...))
	}))

	srv := api.NewServer(log, cfg, metrics.NewPrometheusCollector())

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting epd2doc", "port", cfg.Port, "version", Version, "auth", cfg.APIKey != "")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		return err
	}
	<-done
	return nil
}
