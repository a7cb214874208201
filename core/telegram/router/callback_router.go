package router

import (
	"log/slog"
	"time"

	tg "relaybot/core/telegram"
	"relaybot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for unknown callbacks.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
}

// CallbackRoute routes every inline-keyboard callback through the
// registry. The callback query is acknowledged up front so the client
// spinner stops even when the handler is slow.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		cb := c.Callback()
		if cb == nil {
			return nil
		}
		start := time.Now()

		key, _ := parseCallback(cb)
		name := "callback." + normalizeHandlerName(key)
		extras := []slog.Attr{slog.String("cb_key", key)}

		_ = c.Respond()

		cbHandler, found := reg.GetCallback(key)
		if found && cbHandler != nil {
			return handleWithSummary(c, name, start, "", "", func() error {
				return cbHandler(c)
			}, extras...)
		}

		fallback := reg.CallbackNotFound()
		if fallback == nil {
			fallback = opts.NotFound
		}
		extras = append(extras, slog.String("reason", "not_found"))
		return handleWithSummary(c, name, start, "", "", func() error {
			if fallback == nil {
				return nil
			}
			return fallback(c)
		}, extras...)
	}

	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
