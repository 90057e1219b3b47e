package main

import (
	"github.com/j0lvera/roastbot/internal/ai"
	"github.com/j0lvera/roastbot/internal/bot"
	"github.com/j0lvera/roastbot/internal/config"
	"github.com/j0lvera/roastbot/internal/log"
	"github.com/j0lvera/roastbot/internal/server"
	"go.uber.org/fx"
)

func app() *fx.App {
	return fx.New(
		fx.WithLogger(log.EventLogger),
		config.Module(),
		log.Module(),
		ai.Module(),
		server.Module(),
		bot.Module(),
	)
}

// serve runs until SIGINT/SIGTERM. Configuration errors surface before
// anything listens.
func serve() error {
	a := app()
	if err := a.Err(); err != nil {
		return err
	}

	a.Run()
	return nil
}
