package telegram

import (
	"net"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"
)

const (
	RunModeWebhook  = "webhook"
	RunModeLongpoll = "longpoll"

	defaultLongPollTimeout = 10 * time.Second
)

// WebhookOptions describes where the webhook listener binds and the
// public URL Telegram should deliver updates to.
type WebhookOptions struct {
	Listen string
	Port   int
	URL    string
}

// PollerOptions selects between long polling and webhook delivery.
type PollerOptions struct {
	RunMode                string
	LongPollTimeoutSeconds int
	Webhook                WebhookOptions
}

// BuildPoller constructs the telebot poller matching the run mode.
// Anything other than "webhook" falls back to long polling.
func BuildPoller(opts PollerOptions) tele.Poller {
	if strings.EqualFold(strings.TrimSpace(opts.RunMode), RunModeWebhook) {
		addr := net.JoinHostPort(opts.Webhook.Listen, strconv.Itoa(opts.Webhook.Port))
		return &tele.Webhook{
			Listen:   addr,
			Endpoint: &tele.WebhookEndpoint{PublicURL: opts.Webhook.URL},
		}
	}

	timeout := defaultLongPollTimeout
	if opts.LongPollTimeoutSeconds > 0 {
		timeout = time.Duration(opts.LongPollTimeoutSeconds) * time.Second
	}
	return &tele.LongPoller{Timeout: timeout}
}
