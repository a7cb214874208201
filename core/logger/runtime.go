package logger

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
)

type contextKey int

const (
	ctxRID contextKey = iota
	ctxUpdateID
	ctxUserID
	ctxChatID
	ctxLogger
	ctxHandler
)

// WithLogger stores log in ctx so lower layers can keep the enriched logger.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxLogger, log)
}

// FromContext returns the logger carried by ctx, or the global default.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxLogger).(*slog.Logger); ok {
			return l
		}
	}
	return L
}

// WithRID attaches a request correlation id to ctx.
func WithRID(ctx context.Context, rid string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRID, rid)
}

// RIDFrom extracts the correlation id from ctx, if any.
func RIDFrom(ctx context.Context) string {
	return stringValue(ctx, ctxRID)
}

// WithUpdateMeta attaches the identifiers of a Telegram update to ctx.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUpdateID, updateID)
	ctx = context.WithValue(ctx, ctxUserID, userID)
	return context.WithValue(ctx, ctxChatID, chatID)
}

// WithHandler records the handler name resolving this update.
func WithHandler(ctx context.Context, handler string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if handler == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxHandler, handler)
}

// HandlerFrom returns the handler name from ctx, if any.
func HandlerFrom(ctx context.Context) string {
	return stringValue(ctx, ctxHandler)
}

// UserIDFrom extracts the Telegram user id from ctx.
func UserIDFrom(ctx context.Context) int64 {
	return int64Value(ctx, ctxUserID)
}

// ChatIDFrom extracts the chat id from ctx.
func ChatIDFrom(ctx context.Context) int64 {
	return int64Value(ctx, ctxChatID)
}

// UpdateIDFrom extracts the update id from ctx.
func UpdateIDFrom(ctx context.Context) int {
	if ctx == nil {
		return 0
	}
	switch id := ctx.Value(ctxUpdateID).(type) {
	case int:
		return id
	case int64:
		return int(id)
	}
	return 0
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if s, ok := ctx.Value(key).(string); ok {
		return s
	}
	return ""
}

func int64Value(ctx context.Context, key contextKey) int64 {
	if ctx == nil {
		return 0
	}
	switch id := ctx.Value(key).(type) {
	case int64:
		return id
	case int:
		return int64(id)
	}
	return 0
}

// Sanitize strips control and format runes so user-supplied text cannot
// corrupt a log line. Tab and newline survive.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r == 0x7F || unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, s)
}

// SanitizeLimit sanitizes s and caps the result at max runes.
func SanitizeLimit(s string, max int) string {
	if max <= 0 {
		return ""
	}
	cleaned := Sanitize(s)
	if r := []rune(cleaned); len(r) > max {
		return string(r[:max])
	}
	return cleaned
}

// BuildRID assembles a correlation id as updateID:chatID:userID.
func BuildRID(updateID int, chatID, userID int64) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(updateID))
	b.WriteByte(':')
	b.WriteString(strconv.FormatInt(chatID, 10))
	b.WriteByte(':')
	b.WriteString(strconv.FormatInt(userID, 10))
	return b.String()
}

// CompactRID rewrites a colon-separated decimal rid as dot-separated
// base36 segments. Anything not matching the shape passes through.
func CompactRID(rid string) string {
	rid = strings.TrimSpace(rid)
	if rid == "" {
		return ""
	}
	parts := strings.Split(rid, ":")
	if len(parts) != 3 {
		return rid
	}
	compact := make([]string, len(parts))
	for i, part := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return rid
		}
		compact[i] = strconv.FormatInt(n, 36)
	}
	return strings.Join(compact, ".")
}
