package main

import (
	"context"
	"embed"
	"os"

	"github.com/chazu/n0de/pkg/margins"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"go.uber.org/zap"
)

//go:embed all:frontend/dist
var assets embed.FS

// marginsEnv names a YAML margins table to load and watch.
const marginsEnv = "N0DE_MARGINS"

func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	app := NewApp(logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if path := os.Getenv(marginsEnv); path != "" {
		t, err := margins.Load(path)
		if err != nil {
			logger.Fatal("loading margins", zap.Error(err))
		}
		app.SetMargins(t)
		if err := margins.Watch(ctx, path, func(t margins.Table) { app.SetMargins(t) }, logger); err != nil {
			logger.Warn("margins will not be reloaded", zap.Error(err))
		}
	}

	err := wails.Run(&options.App{
		Title:  "n0de",
		Width:  1024,
		Height: 768,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup: app.startup,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		logger.Fatal("wails", zap.Error(err))
	}
}
