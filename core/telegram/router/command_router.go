package router

import (
	"log/slog"
	"time"

	"relaybot/core/logger"
	tg "relaybot/core/telegram"
	"relaybot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRoutes prepares command handlers wrapped with shared middleware.
// Access checks live inside the handlers themselves, so every command gets
// the same wrapping regardless of its Protected flag.
func CommandRoutes(reg *tg.Registry) []tg.Route {
	if reg == nil {
		return nil
	}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for cmd, def := range reg.Commands() {
		name := normalizeHandlerName(cmd)
		inner := def.Handler
		h := func(c tele.Context) error {
			start := time.Now()
			return handleWithSummary(c, name, start, "", "", func() error {
				return inner(c)
			})
		}
		routes = append(routes, tg.Route{
			Endpoint: cmd,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(h)),
		})
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("commands", len(reg.Commands())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)

	return routes
}
