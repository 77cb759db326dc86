// Command hobbycli is the interactive console over the story-arc
// database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kdutta/mysqlmeta/internal/config"
	"github.com/kdutta/mysqlmeta/internal/console"
	"github.com/kdutta/mysqlmeta/internal/database/mysql"
	"github.com/kdutta/mysqlmeta/internal/logger"
	"github.com/kdutta/mysqlmeta/internal/meta"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "hobbycli: %v\n", err)
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

	c := console.New(db, md, os.Stdin, os.Stdout, log, cfg.Console.DeletePassword)
	if err := c.EnsureSchema(ctx); err != nil {
		return err
	}
	return c.Run(ctx)
}
