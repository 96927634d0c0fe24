package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"techcorp/internal/metrics"
	"techcorp/internal/server"
	"techcorp/internal/storage/sqlite"
	"techcorp/internal/util"
)

func main() {
	// A missing .env file is fine; the process environment still applies.
	envErr := godotenv.Load()

	addrFlag := flag.String("addr", util.EnvOrDefault("TECHCORP_ADDR", ":8080"), "HTTP listen address")
	dbFlag := flag.String("db", util.EnvOrDefault("TECHCORP_DB_PATH", "data/techcorp.db"), "Path to sqlite database file")
	staticFlag := flag.String("static", util.EnvOrDefault("TECHCORP_STATIC_DIR", "web/dist"), "Directory with stylesheets and images")
	corsFlag := flag.String("cors", util.EnvOrDefault("TECHCORP_CORS_ORIGINS", ""), "Comma separated list of allowed CORS origins")
	delayFlag := flag.Duration("apply-delay", util.EnvDurationOrDefault("TECHCORP_APPLY_DELAY", 2*time.Second), "Simulated application submission delay")
	levelFlag := flag.String("log-level", util.EnvOrDefault("TECHCORP_LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	readTimeout := flag.Duration("read-timeout", util.EnvDurationOrDefault("TECHCORP_READ_TIMEOUT", 15*time.Second), "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", util.EnvDurationOrDefault("TECHCORP_WRITE_TIMEOUT", 30*time.Second), "HTTP write timeout")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: util.ParseLevel(*levelFlag)}))
	logger.Info("TechCorp site v.1.0.0")
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logger.Warn("unable to read .env file", slog.String("error", envErr.Error()))
	}
	metrics.MarkBoot(time.Now())

	store, err := sqlite.Open(*dbFlag, logger)
	if err != nil {
		logger.Error("unable to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	srv, err := server.New(store, logger, server.Config{
		StaticDir:   *staticFlag,
		CORSOrigins: util.SplitList(*corsFlag),
		ApplyDelay:  *delayFlag,
	})
	if err != nil {
		logger.Error("unable to build server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 10*time.Second)
	if err := srv.Load(loadCtx); err != nil {
		logger.Warn("initial load failed", slog.String("error", err.Error()))
	}
	cancelLoad()

	httpServer := &http.Server{
		Addr:         *addrFlag,
		Handler:      srv.Engine(),
		ReadTimeout:  *readTimeout,
		WriteTimeout: *writeTimeout,
	}

	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
