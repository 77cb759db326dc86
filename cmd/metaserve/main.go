// Command metaserve serves the metadata explorer API over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kdutta/mysqlmeta/internal/config"
	"github.com/kdutta/mysqlmeta/internal/database/mysql"
	"github.com/kdutta/mysqlmeta/internal/logger"
	"github.com/kdutta/mysqlmeta/internal/meta"
	"github.com/kdutta/mysqlmeta/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "metaserve: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	logger.SetGlobal(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := mysql.New(&cfg.Database)
	if err := db.Connect(ctx); err != nil {
		return err
	}
	defer db.Close(context.Background())

	flags, err := meta.DetectFlags(ctx, db, cfg.Flags())
	if err != nil {
		return err
	}
	log.With().Str("server", flags.Server.String()).Logger().Info("connected")

	md := meta.New(db, flags,
		meta.WithStrategy(cfg.Strategy()),
		meta.WithLogger(log),
	)

	srv := server.New(server.Config{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, md, log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
