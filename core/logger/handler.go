package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"
)

type handlerConfig struct {
	level    slog.Leveler
	writer   *asyncWriter
	format   logFormat
	keyOrder []string
}

// structuredHandler emits one flat line per record. Keys from keyOrder
// come first in their configured order, everything else follows sorted.
type structuredHandler struct {
	cfg    handlerConfig
	preset []slog.Attr
	groups []string
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if cfg.keyOrder == nil {
		cfg.keyOrder = append([]string(nil), defaultKeyOrder...)
	}
	return &structuredHandler{cfg: cfg}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.writer == nil {
		return fmt.Errorf("logger: writer not initialized")
	}

	rec := record{fields: make(map[string]any, 16)}
	rec.put("ts", r.Time.UTC().Truncate(time.Millisecond).Format(timeFormatMillis))
	rec.put("level", normalizeLevel(r.Level.String()))

	prefix := strings.Join(h.groups, ".")
	for _, a := range h.preset {
		rec.collect(prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		rec.collect(prefix, a)
		return true
	})

	rec.absorbContext(ctx)
	rec.compactRID(h.cfg.format == formatJSON)

	if rec.str("event") == "" {
		if r.Message != "" {
			rec.put("event", r.Message)
		} else {
			rec.put("event", "unknown")
		}
	}
	if rec.str("component") == "" {
		rec.put("component", "app")
	}

	rec.normalizeEnums()
	rec.dropEmpty()

	var line []byte
	var err error
	if h.cfg.format == formatJSON {
		line, err = rec.renderJSON(h.cfg.keyOrder)
	} else {
		line = rec.renderKV(h.cfg.keyOrder)
	}
	if err != nil {
		return err
	}
	if n := len(line); n == 0 || line[n-1] != '\n' {
		line = append(line, '\n')
	}
	return h.cfg.writer.Write(line)
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.preset = append(append([]slog.Attr(nil), h.preset...), attrs...)
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

// record accumulates the flattened key/value pairs of a single line.
type record struct {
	fields map[string]any
}

func (rec record) put(key string, val any) { rec.fields[key] = val }

func (rec record) str(key string) string {
	v, ok := rec.fields[key]
	if !ok {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// collect flattens attr (descending into groups) into the record.
func (rec record) collect(prefix string, attr slog.Attr) {
	key := attr.Key
	if key == "" {
		key = prefix
	} else if prefix != "" {
		key = prefix + "." + key
	}
	if attr.Value.Kind() == slog.KindGroup {
		for _, child := range attr.Value.Group() {
			rec.collect(key, child)
		}
		return
	}
	if key == "" {
		return
	}
	k, v, ok := coerceValue(key, attr.Value)
	if ok {
		rec.fields[k] = v
	}
}

func (rec record) absorbContext(ctx context.Context) {
	if ctx == nil {
		return
	}
	setIfAbsent := func(key string, val any) {
		if _, ok := rec.fields[key]; !ok {
			rec.fields[key] = val
		}
	}
	if rid := RIDFrom(ctx); rid != "" {
		setIfAbsent("rid", rid)
	}
	if uid := UserIDFrom(ctx); uid != 0 {
		setIfAbsent("user_id", uid)
	}
	if updateID := UpdateIDFrom(ctx); updateID != 0 {
		setIfAbsent("update_id", updateID)
	}
	if cid := ChatIDFrom(ctx); cid != 0 {
		setIfAbsent("chat_id", cid)
	}
	if handler := HandlerFrom(ctx); handler != "" {
		setIfAbsent("handler", handler)
	}
}

// compactRID shortens the rid in place; JSON output additionally keeps
// the long form under rid_full so grep stays possible.
func (rec record) compactRID(keepFull bool) {
	rid := rec.str("rid")
	if rid == "" {
		return
	}
	compact := CompactRID(rid)
	if compact == "" || compact == rid {
		return
	}
	if keepFull {
		if _, seen := rec.fields["rid_full"]; !seen {
			rec.fields["rid_full"] = rid
		}
	}
	rec.fields["rid"] = compact
}

func (rec record) normalizeEnums() {
	rec.fields["level"] = normalizeLevel(rec.str("level"))
	if s := rec.str("status"); s != "" {
		if normalized, valid := normalizeStatus(s); valid {
			rec.fields["status"] = normalized
		}
	}
	if o := rec.str("outcome"); o != "" {
		if normalized, valid := normalizeOutcome(o); valid {
			rec.fields["outcome"] = normalized
		} else {
			delete(rec.fields, "outcome")
		}
	}
}

func (rec record) dropEmpty() {
	for k, v := range rec.fields {
		switch val := v.(type) {
		case nil:
			delete(rec.fields, k)
		case string:
			if val == "" {
				delete(rec.fields, k)
			}
		case fmt.Stringer:
			if val.String() == "" {
				delete(rec.fields, k)
			}
		}
	}
}

func (rec record) renderJSON(order []string) ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	written := make(map[string]struct{}, len(rec.fields))
	emit := func(key string) error {
		data, err := json.Marshal(rec.fields[key])
		if err != nil {
			return err
		}
		if len(written) > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(key))
		b.WriteByte(':')
		b.Write(data)
		written[key] = struct{}{}
		return nil
	}
	for _, key := range rec.orderedKeys(order) {
		if err := emit(key); err != nil {
			return nil, err
		}
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

func (rec record) renderKV(order []string) []byte {
	var b strings.Builder
	for i, key := range rec.orderedKeys(order) {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(kvValue(rec.fields[key]))
	}
	return []byte(b.String())
}

func (rec record) orderedKeys(order []string) []string {
	keys := make([]string, 0, len(rec.fields))
	seen := make(map[string]struct{}, len(rec.fields))
	for _, key := range order {
		if _, ok := rec.fields[key]; ok {
			keys = append(keys, key)
			seen[key] = struct{}{}
		}
	}
	head := len(keys)
	for key := range rec.fields {
		if _, ok := seen[key]; !ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys[head:])
	return keys
}

// durationKey rewrites duration-carrying keys so the unit is explicit.
func durationKey(key string) string {
	switch {
	case key == "duration":
		return "duration_ms"
	case strings.HasSuffix(key, "_duration"):
		return strings.TrimSuffix(key, "_duration") + "_duration_ms"
	case !strings.HasSuffix(key, "_ms"):
		return key + "_ms"
	}
	return key
}

func coerceValue(key string, val slog.Value) (string, any, bool) {
	switch val.Kind() {
	case slog.KindString:
		return key, strings.TrimSpace(val.String()), true
	case slog.KindBool:
		return key, val.Bool(), true
	case slog.KindInt64:
		return key, val.Int64(), true
	case slog.KindUint64:
		u := val.Uint64()
		if u <= math.MaxInt64 {
			return key, int64(u), true
		}
		return key, u, true
	case slog.KindFloat64:
		return key, val.Float64(), true
	case slog.KindDuration:
		return durationKey(key), RoundMS(val.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, val.Time().UTC().Format(time.RFC3339Nano), true
	case slog.KindAny:
		switch x := val.Any().(type) {
		case nil:
			return key, nil, false
		case error:
			return key, x.Error(), true
		case string:
			return key, strings.TrimSpace(x), true
		case time.Duration:
			return durationKey(key), RoundMS(x).Milliseconds(), true
		case fmt.Stringer:
			return key, x.String(), true
		default:
			return key, fmt.Sprint(x), true
		}
	default:
		return key, val.Any(), true
	}
}

func kvValue(val any) string {
	switch v := val.(type) {
	case string:
		return quoteIfNeeded(v)
	case bool:
		return strconv.FormatBool(v)
	case int, int64, uint64, float64:
		return fmt.Sprint(v)
	default:
		return quoteIfNeeded(fmt.Sprint(v))
	}
}

func quoteIfNeeded(s string) string {
	if strings.IndexFunc(s, func(r rune) bool { return r <= 32 || r == '=' || r == '"' }) >= 0 {
		return strconv.Quote(s)
	}
	return s
}
