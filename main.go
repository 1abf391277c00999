package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/wavestv/internal/app"
	"github.com/llehouerou/wavestv/internal/catalog"
	"github.com/llehouerou/wavestv/internal/config"
	"github.com/llehouerou/wavestv/internal/errmsg"
	"github.com/llehouerou/wavestv/internal/state"
	"github.com/llehouerou/wavestv/internal/stderr"
	"github.com/llehouerou/wavestv/internal/ui/albumart"
)

func openLog(cfg *config.Config) (*slog.Logger, *os.File, error) {
	path := cfg.LogFile
	if path == "" {
		path = filepath.Join(xdg.StateHome, "wavestv", "wavestv.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	level := slog.LevelInfo
	if os.Getenv("WAVESTV_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), f, nil
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, logFile, err := openLog(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()
	slog.SetDefault(logger)

	if err := stderr.Start(logger); err != nil {
		logger.Warn("stderr capture unavailable", "err", err)
	}
	defer stderr.Stop()

	stateMgr, err := state.Open(logger)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer stateMgr.Close()

	cat, err := catalog.LoadOrDefault(cfg.CatalogFile)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpCatalogLoad, err))
	}

	svc, err := app.Build(context.Background(), cfg, cat, stateMgr, logger, app.Options{})
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	logger.Info("started", "albums", len(cat.Albums), "catalog", cfg.CatalogFile)

	p := tea.NewProgram(app.New(svc, albumart.New(albumart.Detect())),
		tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		_ = svc.Close(context.Background())
		return err
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		stderr.WriteOriginal(fmt.Sprintf("Error: %v\n", err))
		os.Exit(1)
	}
}
