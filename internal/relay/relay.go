package relay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxInFlight = 32
)

// ErrGeneratorPanic wraps a panic recovered from a Generator.
var ErrGeneratorPanic = errors.New("generator panicked")

// Options configures a Relay.
type Options struct {
	Prompt      Prompt
	Greeting    string
	Fallback    string // sent when the model returns nothing
	Failure     string // sent when the model call fails
	Timeout     time.Duration
	MaxInFlight int64
}

// Relay turns inbound messages into exactly one outbound reply each.
type Relay struct {
	gen  Generator
	out  Sender
	opts Options
	log  zerolog.Logger

	sem *semaphore.Weighted

	mu      sync.Mutex
	closing bool // set by Wait; later dispatches run inline
	wg      sync.WaitGroup
}

// New creates a relay around an injected generator and sender.
func New(gen Generator, out Sender, opts Options, log zerolog.Logger) *Relay {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = DefaultMaxInFlight
	}

	return &Relay{
		gen:  gen,
		out:  out,
		opts: opts,
		log:  log,
		sem:  semaphore.NewWeighted(opts.MaxInFlight),
	}
}

// Dispatch processes ev on its own goroutine so a slow model call never
// holds up the next update. It blocks only while MaxInFlight handlers are
// already running. Once Wait has been called, ev is handled inline instead.
func (r *Relay) Dispatch(ctx context.Context, ev Event) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		r.log.Warn().
			Err(err).
			Int64("chat_id", ev.Message.ConversationID).
			Msg("relay stopped before message could be handled")
		return
	}

	r.mu.Lock()
	if r.closing {
		r.mu.Unlock()
		defer r.sem.Release(1)
		r.process(ctx, ev)
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer r.sem.Release(1)
		r.process(ctx, ev)
	}()
}

func (r *Relay) process(ctx context.Context, ev Event) {
	switch ev.Kind {
	case KindStart:
		r.Greet(ctx, ev.Message.ConversationID)
	default:
		r.Handle(ctx, ev.Message)
	}
}

// Wait blocks until every dispatched handler has returned or ctx is done.
func (r *Relay) Wait(ctx context.Context) error {
	r.mu.Lock()
	r.closing = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Greet sends the fixed greeting. The model is never called.
func (r *Relay) Greet(ctx context.Context, conversationID int64) OutboundReply {
	log := r.requestLogger(conversationID)
	reply := OutboundReply{
		ConversationID: conversationID,
		Text:           r.opts.Greeting,
	}

	r.send(ctx, reply, &log)
	log.Info().Msg("greeting sent")

	return reply
}

// Handle answers one message. Every failure is contained here: the
// returned reply is always the one that was sent.
func (r *Relay) Handle(ctx context.Context, msg InboundMessage) OutboundReply {
	log := r.requestLogger(msg.ConversationID)

	if err := r.out.Typing(ctx, msg.ConversationID); err != nil {
		log.Debug().Err(err).Msg("unable to send typing action")
	}

	log.Info().
		Int64("sender_id", msg.SenderID).
		Int("text_length", len(msg.Text)).
		Msg("ai request sending")

	reply := OutboundReply{
		ConversationID: msg.ConversationID,
		Text:           r.reply(ctx, msg.Text, &log),
	}

	r.send(ctx, reply, &log)

	return reply
}

func (r *Relay) reply(ctx context.Context, text string, log *zerolog.Logger) string {
	started := time.Now()

	out, err := r.generate(ctx, r.opts.Prompt.Render(text))
	if err != nil {
		log.Error().
			Err(err).
			Dur("elapsed", time.Since(started)).
			Msg("unable to generate ai response")
		return r.failureText(err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		log.Warn().Msg("model returned an empty response")
		return r.opts.Fallback
	}

	log.Info().
		Int("response_length", len(out)).
		Dur("elapsed", time.Since(started)).
		Msg("ai response received")

	return out
}

func (r *Relay) generate(ctx context.Context, prompt string) (out string, err error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			out, err = "", fmt.Errorf("%w: %v", ErrGeneratorPanic, p)
		}
	}()

	return r.gen.Generate(ctx, prompt)
}

// failureText never includes err's text; upstream errors can carry
// request details the user should not see.
func (r *Relay) failureText(err error) string {
	kind := "erreur du service"
	if errors.Is(err, context.DeadlineExceeded) {
		kind = "délai dépassé"
	}
	return fmt.Sprintf("%s (%s)", r.opts.Failure, kind)
}

func (r *Relay) send(ctx context.Context, reply OutboundReply, log *zerolog.Logger) {
	if err := r.out.Send(ctx, reply); err != nil {
		log.Error().Err(err).Msg("unable to deliver reply")
	}
}

func (r *Relay) requestLogger(conversationID int64) zerolog.Logger {
	return r.log.With().
		Str("request_id", uuid.NewString()).
		Int64("chat_id", conversationID).
		Logger()
}
