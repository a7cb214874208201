package telegram

import (
	"strings"
	"time"

	coreconfig "relaybot/core/config"
	"relaybot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// DefaultMiddlewares assembles the standard chain both bots share:
// recover, then the configured rate limit, then logging and metrics.
func DefaultMiddlewares(cfg *coreconfig.Config, onLimited func(tele.Context) error) []Middleware {
	mws := []Middleware{{Name: "recover", Use: middleware.RecoverMiddleware}}

	if cfg != nil && cfg.RateLimit.IntervalMS > 0 {
		exclude := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
		for _, kind := range cfg.RateLimit.ExcludeUpdates {
			exclude[strings.ToLower(kind)] = struct{}{}
		}
		mws = append(mws, Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				Interval:  time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
				Exclude:   exclude,
				OnLimited: onLimited,
			}),
		})
	}

	return append(mws,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)
}
