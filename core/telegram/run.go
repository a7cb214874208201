package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	coreconfig "relaybot/core/config"
	"relaybot/core/logger"
	tghelpers "relaybot/core/telegram/helpers"
	tgsender "relaybot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// Middleware describes a global bot middleware to be registered via bot.Use.
type Middleware struct {
	Name string
	Use  func(next tele.HandlerFunc) tele.HandlerFunc
}

// Route binds a handler to a telebot endpoint. The endpoint value is
// handed to tele.Bot.Handle as-is, so both command strings and the
// tele.On* constants work.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls the behaviour of RunTelegram.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	DispatcherOptions tgsender.Options
	Dispatcher        *tgsender.Dispatcher

	Middlewares []Middleware
	Routes      []Route

	DisableWebhookCleanup   bool
	DisableHelperDispatcher bool

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime exposes runtime components to lifecycle hooks.
type Runtime struct {
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

// RunTelegram assembles the bot from opts and runs it until ctx is done
// or the poller stops on its own.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Config == nil {
		return fmt.Errorf("telegram: nil config provided")
	}

	cfg := opts.Config
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}

	poller := BuildPoller(PollerOptions{
		RunMode:                cfg.Telegram.RunMode,
		LongPollTimeoutSeconds: cfg.Telegram.LongPollTimeoutSeconds,
		Webhook: WebhookOptions{
			Listen: cfg.Webhook.Listen,
			Port:   cfg.Webhook.Port,
			URL:    cfg.Webhook.URL,
		},
	})

	buildStart := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: poller,
		Client: BuildHTTPClient(),
	})
	if err != nil {
		return fmt.Errorf("telegram: bot initialization failed: %w", err)
	}

	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = tgsender.NewDispatcher(opts.DispatcherOptions)
	}
	useHelperDispatcher := !opts.DisableHelperDispatcher
	if useHelperDispatcher {
		tghelpers.SetDispatcher(dispatcher)
	}
	teardown := func() {
		dispatcher.Close()
		if useHelperDispatcher {
			tghelpers.SetDispatcher(nil)
		}
	}

	rt := Runtime{Dispatcher: dispatcher, Registry: reg}

	logRunMode(ctx, cfg, poller, time.Since(buildStart))
	if _, longpoll := poller.(*tele.LongPoller); longpoll {
		if !opts.DisableWebhookCleanup && strings.EqualFold(cfg.Telegram.RunMode, coreconfig.RunModeLongpoll) {
			cleanupWebhook(cfg.Telegram.Token)
		}
	}

	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	for _, route := range opts.Routes {
		if route.Endpoint != nil && route.Handler != nil {
			bot.Handle(route.Endpoint, route.Handler)
		}
	}
	SetupCommands(bot, reg)

	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			teardown()
			return err
		}
	}

	pollerDone := make(chan struct{})
	go func() {
		bot.Start()
		close(pollerDone)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		bot.Stop()
		<-pollerDone
		runErr = ctx.Err()
	case <-pollerDone:
	}

	var stopErr error
	if opts.OnStop != nil {
		stopErr = opts.OnStop(ctx, rt)
	}
	teardown()

	switch {
	case stopErr != nil:
		return stopErr
	case runErr != nil && !errors.Is(runErr, context.Canceled):
		return runErr
	}
	return nil
}

func logRunMode(ctx context.Context, cfg *coreconfig.Config, poller tele.Poller, buildTook time.Duration) {
	if webhook, ok := poller.(*tele.Webhook); ok {
		logger.TG.LogAttrs(ctx, slog.LevelInfo, "webhook mode",
			slog.String("event", "mode"),
			slog.String("mode", "webhook"),
			slog.String("listen", webhook.Listen),
			slog.String("public_url", webhook.Endpoint.PublicURL),
			slog.Duration("duration", logger.RoundMS(buildTook)),
		)
		return
	}

	timeoutSec := cfg.Telegram.LongPollTimeoutSeconds
	if timeoutSec <= 0 {
		timeoutSec = 10
	}
	logger.TG.Info("polling mode",
		slog.String("event", "mode"),
		slog.String("mode", "polling"),
		slog.Int("timeout_seconds", timeoutSec),
		slog.Duration("duration", logger.RoundMS(buildTook)),
	)
}

// cleanupWebhook drops a stale webhook registration; long polling and a
// registered webhook are mutually exclusive on the Bot API side.
func cleanupWebhook(token string) {
	if err := deleteWebhook(token, false); err != nil {
		logger.TG.Warn("failed to delete webhook",
			slog.String("event", "delete_webhook"),
			slog.String("mode", "polling"),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.TG.Info("webhook deleted",
		slog.String("event", "delete_webhook"),
		slog.String("mode", "polling"),
	)
}

func deleteWebhook(token string, dropPending bool) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("empty token")
	}

	form := url.Values{"drop_pending_updates": {fmt.Sprint(dropPending)}}
	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/deleteWebhook", token)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("deleteWebhook status: %s", resp.Status)
	}
	return nil
}
