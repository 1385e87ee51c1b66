package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-biz-sync/internal/client"
	"github.com/MKhiriev/go-biz-sync/internal/config"
	"github.com/MKhiriev/go-biz-sync/internal/logger"
	"github.com/MKhiriev/go-biz-sync/internal/tui"
	"github.com/MKhiriev/go-biz-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	cfg, err := config.GetClientConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error getting configs: %v\n", err)
		os.Exit(1)
	}
	if cfg.App.Version == "" {
		cfg.App.Version = buildVersion
	}
	if !cfg.App.StatusOnly {
		fmt.Println(tui.RenderBuildInfo(models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)))
	}

	log := logger.NewClientLogger("bizsync-agent", cfg.App.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	app, err := client.NewApp(ctx, cfg, os.Stdout, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init client app error")
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Err(err).Msg("client close error")
		}
	}()

	if err = app.Run(ctx); err != nil {
		log.Error().Err(err).Msg("client run error")
		fmt.Fprintf(os.Stderr, "client run error: %v\n", err)
	}
}
