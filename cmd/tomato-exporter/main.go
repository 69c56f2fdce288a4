package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomato-exporter/tomato-exporter/internal/collector"
	"github.com/tomato-exporter/tomato-exporter/internal/config"
	"github.com/tomato-exporter/tomato-exporter/internal/device"
	"github.com/tomato-exporter/tomato-exporter/internal/web"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("tomato-exporter starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Listen.IP, cfg.Listen.Port)
	slog.Info("config loaded",
		"listen", addr,
		"path", "/"+cfg.Listen.Slug,
		"router", cfg.Router.Address,
		"collectors", cfg.Collectors,
		"collect_timeout", cfg.CollectTimeout,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dev := device.New(cfg.Router)

	collectors := make([]collector.Collector, 0, len(cfg.Collectors))
	for _, family := range cfg.Collectors {
		c, err := collector.New(family, dev)
		if err != nil {
			slog.Error("failed to build collector", "family", family, "err", err)
			os.Exit(1)
		}
		collectors = append(collectors, c)
	}
	registry := collector.NewRegistry(cfg.CollectTimeout, collectors...)

	srv := &http.Server{
		Addr:    addr,
		Handler: web.New(registry, cfg.Listen.Slug),
	}
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	// Watch the config file so operators notice a drifted file before the
	// next restart. Listen and collector changes still need a restart.
	go func() {
		err := config.Watch(ctx, *configPath, func(*config.Config) {
			slog.Info("config file changed on disk; restart to apply")
		})
		if err != nil {
			slog.Error("config watcher failed", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("tomato-exporter shutting down")
	srv.Shutdown(context.Background()) //nolint:errcheck
}
