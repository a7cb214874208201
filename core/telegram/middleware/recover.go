package middleware

import (
	"log/slog"
	"runtime/debug"

	"relaybot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// RecoverMiddleware turns a handler panic into an error log instead of a
// crashed process. It sits outermost in the chain so one poisoned update
// cannot take the poller down.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			logger.TG.Error("panic recovered",
				slog.String("event", "tg.panic"),
				slog.Any("err", r),
				slog.String("stack", string(debug.Stack())),
			)
		}()
		return next(c)
	}
}
