package middleware

import (
	"log/slog"
	"sync"
	"time"

	"relaybot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures the per-user rate limit middleware.
type RateLimitOptions struct {
	Interval  time.Duration
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
}

func updateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	}
	return "other"
}

// RateLimitMiddleware enforces a minimum interval between updates from
// the same user. Excluded update kinds pass through untouched.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	var (
		mu       sync.Mutex
		lastSeen = make(map[int64]time.Time)
	)
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			if _, skip := opts.Exclude[updateKind(c.Update())]; skip {
				return next(c)
			}

			now := time.Now()
			mu.Lock()
			last, seen := lastSeen[user.ID]
			limited := seen && now.Sub(last) < opts.Interval
			if !limited {
				lastSeen[user.ID] = now
			}
			mu.Unlock()

			if !limited {
				return next(c)
			}

			attrs := []any{
				slog.String("event", "tg.rate_limit"),
				slog.Int64("user_id", user.ID),
			}
			if chat := c.Chat(); chat != nil {
				attrs = append(attrs, slog.Int64("chat_id", chat.ID))
			}
			logger.TG.Warn("rate limit", attrs...)

			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}
