package bot

import (
	"context"
	"fmt"
	"net/http"

	tbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/j0lvera/roastbot/internal/config"
	"github.com/j0lvera/roastbot/internal/relay"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Params struct {
	fx.In

	Config    *config.Config
	Generator relay.Generator
	Mux       *http.ServeMux
	Logger    zerolog.Logger
}

type Result struct {
	fx.Out

	Bot   *tbot.Bot
	Relay *relay.Relay
}

// handler forwards accepted updates to the relay.
type handler struct {
	relay *relay.Relay
	log   zerolog.Logger
}

func (h *handler) handle(ctx context.Context, _ *tbot.Bot, update *models.Update) {
	ev, ok := Classify(update)
	if !ok {
		h.log.Debug().Msg("ignoring non-text update")
		return
	}
	// in-flight replies outlive the polling context, OnStop drains them
	h.relay.Dispatch(context.WithoutCancel(ctx), ev)
}

// NewTelegram creates the Bot API client. In webhook mode it expects the
// secret header Telegram was registered with.
func NewTelegram(cfg *config.Config, log zerolog.Logger, opts ...tbot.Option) (*tbot.Bot, error) {
	opts = append(opts,
		tbot.WithErrorsHandler(func(err error) {
			log.Error().Err(err).Msg("telegram transport error")
		}),
		// handlers run on the update workers, so Start returning means no
		// handler is still about to dispatch
		tbot.WithNotAsyncHandlers(),
	)
	if cfg.Delivery == config.DeliveryWebhook {
		opts = append(opts, tbot.WithWebhookSecretToken(webhookSecret(cfg.Token)))
	}

	tg, err := tbot.New(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create telegram bot: %w", err)
	}
	return tg, nil
}

func NewRelay(cfg *config.Config, gen relay.Generator, out relay.Sender, log zerolog.Logger) *relay.Relay {
	return relay.New(gen, out, relay.Options{
		Prompt: relay.Prompt{
			Persona: cfg.Prompts.Persona,
			Speaker: cfg.Prompts.Speaker,
		},
		Greeting:    cfg.Prompts.Greeting,
		Fallback:    cfg.Prompts.Fallback,
		Failure:     cfg.Prompts.Failure,
		Timeout:     cfg.GenerationTimeout,
		MaxInFlight: cfg.MaxInFlight,
	}, log)
}

func New(lc fx.Lifecycle, p Params) (Result, error) {
	h := &handler{log: p.Logger}

	tg, err := NewTelegram(p.Config, p.Logger, tbot.WithDefaultHandler(h.handle))
	if err != nil {
		return Result{}, err
	}

	// handlers only run after Start, by then the relay is set
	h.relay = NewRelay(p.Config, p.Generator, NewSender(tg), p.Logger)

	if p.Config.Delivery == config.DeliveryWebhook {
		p.Mux.Handle(WebhookPattern, guardToken(p.Config.Token, tg.WebhookHandler()))
	}

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	run := func(start func(context.Context)) {
		defer close(done)
		start(runCtx)
	}

	lc.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				switch p.Config.Delivery {
				case config.DeliveryWebhook:
					if _, err := tg.SetWebhook(ctx, &tbot.SetWebhookParams{
						URL:         p.Config.WebhookURL(),
						SecretToken: webhookSecret(p.Config.Token),
					}); err != nil {
						cancel()
						return fmt.Errorf("unable to register webhook: %w", err)
					}
					p.Logger.Info().Str("public_url", p.Config.PublicURL).Msg("starting telegram bot (webhook)...")
					go run(tg.StartWebhook)
				default:
					// getUpdates is refused while a webhook is registered
					if _, err := tg.DeleteWebhook(ctx, &tbot.DeleteWebhookParams{}); err != nil {
						p.Logger.Warn().Err(err).Msg("unable to delete webhook before polling")
					}
					p.Logger.Info().Msg("starting telegram bot (polling)...")
					go run(tg.Start)
				}
				return nil
			},
			OnStop: func(ctx context.Context) error {
				p.Logger.Info().Msg("stopping telegram bot...")
				cancel()
				select {
				case <-done:
				case <-ctx.Done():
					p.Logger.Warn().Err(ctx.Err()).Msg("telegram update loop did not stop in time")
				}
				if err := h.relay.Wait(ctx); err != nil {
					p.Logger.Warn().Err(err).Msg("in-flight messages abandoned")
				}
				return nil
			},
		},
	)

	return Result{
		Bot:   tg,
		Relay: h.relay,
	}, nil
}

func Module() fx.Option {
	return fx.Module(
		"bot",
		fx.Provide(
			New,
		),
		fx.Invoke(
			func(bot *tbot.Bot) {},
		),
	)
}
