package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dyvilcenter/backoffice/internal/app"
	"github.com/dyvilcenter/backoffice/internal/config"
	log "github.com/sirupsen/logrus"
)

// main runs the CLI entrypoint and exits on unrecoverable command errors.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if errRun := run(ctx, os.Args[1:]); errRun != nil {
		log.WithError(errRun).Error("command failed")
		stop()
		os.Exit(1)
	}
}

// run parses flags, loads config, and starts the server or runs migrations.
func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("backoffice", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "config file path (or env CONFIG_PATH)")
	addr := fs.String("addr", "", "listen address, overrides config and LISTEN_ADDR")
	migrateOnly := fs.Bool("migrate", false, "run database migrations and exit")
	if errParse := fs.Parse(args); errParse != nil {
		return errParse
	}

	appCfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	if strings.TrimSpace(*addr) != "" {
		appCfg.ListenAddr = strings.TrimSpace(*addr)
	}

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if level, errLevel := log.ParseLevel(appCfg.LogLevel); errLevel == nil {
		log.SetLevel(level)
	} else {
		log.WithField("log_level", appCfg.LogLevel).Warn("unknown log level, keeping info")
	}

	if *migrateOnly {
		if errMigrate := app.Migrate(ctx, appCfg); errMigrate != nil {
			return errMigrate
		}
		log.Info("migrations applied")
		return nil
	}
	return app.RunServer(ctx, appCfg)
}
