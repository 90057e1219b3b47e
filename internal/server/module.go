package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/j0lvera/roastbot/internal/config"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Params struct {
	fx.In

	Config *config.Config
	Logger zerolog.Logger
}

type Result struct {
	fx.Out

	Mux    *http.ServeMux
	Server *http.Server
}

func New(lc fx.Lifecycle, p Params) Result {
	mux := NewMux()
	srv := &http.Server{
		Addr:              p.Config.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				ln, err := net.Listen("tcp", srv.Addr)
				if err != nil {
					return fmt.Errorf("unable to listen on %s: %w", srv.Addr, err)
				}
				p.Logger.Info().Str("addr", srv.Addr).Msg("http server listening")
				go func() {
					if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
						p.Logger.Error().Err(err).Msg("http server stopped")
					}
				}()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				p.Logger.Info().Msg("stopping http server...")
				return srv.Shutdown(ctx)
			},
		},
	)

	return Result{Mux: mux, Server: srv}
}

func Module() fx.Option {
	return fx.Module(
		"server",
		fx.Provide(
			New,
		),
		fx.Invoke(
			func(*http.Server) {},
		),
	)
}
