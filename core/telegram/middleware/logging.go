package middleware

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"relaybot/core/logger"
	tghelpers "relaybot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// seenUpdates remembers recently logged update IDs. The logger middleware
// can sit on several routing branches, the same update must still produce
// a single receipt line.
var seenUpdates = struct {
	sync.Mutex
	ids map[int]time.Time
}{ids: make(map[int]time.Time)}

const seenUpdateTTL = 10 * time.Second

func firstSighting(updateID int) bool {
	now := time.Now()
	seenUpdates.Lock()
	defer seenUpdates.Unlock()
	for id, ts := range seenUpdates.ids {
		if now.Sub(ts) > seenUpdateTTL {
			delete(seenUpdates.ids, id)
		}
	}
	if _, ok := seenUpdates.ids[updateID]; ok {
		return false
	}
	seenUpdates.ids[updateID] = now
	return true
}

// LoggerMiddleware derives the correlation id for the update, stores the
// enriched context for downstream handlers, and logs a sampled receipt line.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()

		var chatID, userID int64
		chat := c.Chat()
		if chat != nil {
			chatID = chat.ID
		}
		user := c.Sender()
		if user != nil {
			userID = user.ID
		}

		rid := logger.BuildRID(upd.ID, chatID, userID)
		c.Set("rid", rid)

		ctx := logger.WithRID(logger.Background(), rid)
		ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
		ctx = logger.WithLogger(ctx, logger.Component("tg"))
		tghelpers.StoreContext(c, ctx)

		if logger.ShouldSampleDebug() && firstSighting(upd.ID) {
			attrs := []slog.Attr{
				slog.String("status", "ok"),
				slog.String("rid", rid),
				slog.Int("update_id", upd.ID),
			}
			if chatID != 0 {
				attrs = append(attrs,
					slog.Int64("chat_id", chatID),
					slog.String("chat_type", string(chat.Type)),
				)
			}
			if userID != 0 {
				attrs = append(attrs, slog.Int64("user_id", userID))
				if user.Username != "" {
					attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
				}
			}
			attrs = append(attrs, payloadAttrs(c, upd)...)
			logger.LogEvent(ctx, logger.Component("tg"), slog.LevelDebug, "update.received", attrs...)
		}

		return next(c)
	}
}

func payloadAttrs(c tele.Context, upd tele.Update) []slog.Attr {
	switch {
	case upd.Callback != nil:
		var attrs []slog.Attr
		key, payload := splitCallbackData(upd.Callback)
		if key != "" {
			attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 128)))
		}
		if payload != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 256)))
		}
		return attrs
	case upd.Message != nil:
		if t := c.Text(); t != "" {
			return []slog.Attr{slog.String("payload", logger.SanitizeLimit(t, 256))}
		}
	}
	return nil
}

func splitCallbackData(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	key, payload, _ := strings.Cut(strings.TrimPrefix(cb.Data, "\f"), "|")
	return strings.TrimSpace(key), payload
}
