package ai

import (
	"github.com/j0lvera/roastbot/internal/config"
	"github.com/j0lvera/roastbot/internal/relay"
	"go.uber.org/fx"
)

// Params for creating a Generator
type Params struct {
	fx.In

	Config *config.Config
}

// Result of creating a Generator
type Result struct {
	fx.Out

	Generator relay.Generator
}

// New creates a new Generator based on configuration
func New(p Params) (Result, error) {
	generator, err := NewGenerator(p.Config.APIKey, p.Config.BaseURL, p.Config.Model)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Generator: generator,
	}, nil
}

// Module provides the generation capability
func Module() fx.Option {
	return fx.Module(
		"ai",
		fx.Provide(
			New,
		),
	)
}
