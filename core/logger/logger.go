package logger

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"relaybot/core/buildinfo"
	coreconfig "relaybot/core/config"
)

var (
	initOnce   sync.Once
	shutdownMu sync.Mutex
	shutdowned bool

	logWriter  *asyncWriter
	logClosers []io.Closer

	levelVar slog.LevelVar

	debugSampler  = newRatioSampler(1, 50)
	traceOverride bool

	// L is the base logger shared by all components.
	L *slog.Logger

	// TG logs Telegram transport events.
	TG *slog.Logger
	// TWire logs Telegram wiring steps.
	TWire *slog.Logger
	// DB logs database connection events.
	DB *slog.Logger
	// MIG logs database migration events.
	MIG *slog.Logger
	// Store logs registry and credential persistence activity.
	Store *slog.Logger
	// Lookup logs media lookup API activity.
	Lookup *slog.Logger
	// Xlate logs translation API activity.
	Xlate *slog.Logger
)

func init() {
	// Component loggers must be usable before InitLogger runs (tests,
	// early startup); output is discarded until then.
	L = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 4}))
	wireComponents()
}

// InitLogger configures the global structured logger from config. Later
// calls are no-ops; only the first one wins.
func InitLogger(cfg *coreconfig.Config) error {
	initOnce.Do(func() {
		levelVar.Set(configLevel(cfg))

		if num, den, ok := configDebugSample(cfg); ok {
			debugSampler.Set(num, den)
		}
		traceOverride = envFlag("TRACE") || envFlag("LOG_TRACE")

		outputs, closers := openSinks(cfg)
		logClosers = closers
		logWriter = newAsyncWriter(outputs, 64*1024)

		L = slog.New(newStructuredHandler(handlerConfig{
			level:    &levelVar,
			writer:   logWriter,
			format:   configFormat(cfg),
			keyOrder: configKeyOrder(cfg),
		}))
		slog.SetDefault(L)

		wireComponents()
		logStartup(cfg)
	})
	return nil
}

func wireComponents() {
	if L == nil {
		return
	}
	TG = L.With("component", "tg")
	TWire = L.With("component", "tg.wire")
	DB = L.With("component", "db")
	MIG = L.With("component", "db.migrate")
	Store = L.With("component", "store")
	Lookup = L.With("component", "media.lookup")
	Xlate = L.With("component", "media.translate")
}

func logStartup(cfg *coreconfig.Config) {
	attrs := []slog.Attr{
		slog.String("component", "app"),
		slog.String("event", "startup"),
		slog.String("go_version", runtime.Version()),
		slog.String("build_commit", buildinfo.Commit),
		slog.String("build_time", buildinfo.Date),
	}
	if cfg != nil {
		profile := strings.ToLower(strings.TrimSpace(cfg.Logging.Profile))
		if profile == "" {
			profile = "prod"
		}
		attrs = append(attrs, slog.String("cfg_profile", profile))
	}
	L.LogAttrs(context.Background(), slog.LevelInfo, "startup", attrs...)
}

// Shutdown flushes buffered log output and closes opened sinks.
func Shutdown() error {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()
	if shutdowned {
		return nil
	}
	shutdowned = true

	var errs []error
	if logWriter != nil {
		if err := logWriter.Flush(); err != nil {
			errs = append(errs, err)
		}
		if err := logWriter.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, c := range logClosers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func configFormat(cfg *coreconfig.Config) logFormat {
	if cfg == nil {
		return formatJSON
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Format)) {
	case "kv", "text", "pretty":
		return formatKV
	case "json":
		return formatJSON
	}
	// Unset format follows the profile: dev profiles read better as KV.
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Profile)) {
	case "debug", "dev":
		return formatKV
	}
	return formatJSON
}

func configKeyOrder(cfg *coreconfig.Config) []string {
	fallback := append([]string(nil), defaultKeyOrder...)
	if cfg == nil {
		return fallback
	}
	raw := strings.TrimSpace(cfg.Logging.KeysOrder)
	if raw == "" || raw == "default" {
		return fallback
	}
	var order []string
	for _, part := range strings.Split(raw, ",") {
		if key := strings.TrimSpace(part); key != "" {
			order = append(order, key)
		}
	}
	if len(order) == 0 {
		return fallback
	}
	return order
}

func configLevel(cfg *coreconfig.Config) slog.Level {
	if cfg == nil {
		return slog.LevelInfo
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func configDebugSample(cfg *coreconfig.Config) (int, int, bool) {
	if cfg == nil {
		return 0, 0, false
	}
	spec := strings.TrimSpace(cfg.Logging.DebugSample)
	if spec == "" {
		return 0, 0, false
	}
	num, den := parseRatioSpec(spec)
	if num == 0 && den == 0 {
		// Explicitly unparseable or "off": disable sampling entirely.
		return 0, 0, true
	}
	if num <= 0 || den <= 0 {
		return 0, 0, false
	}
	return num, den, true
}

// openSinks always includes stdout; a configured log file is appended as
// a second sink when it can be opened.
func openSinks(cfg *coreconfig.Config) ([]io.Writer, []io.Closer) {
	writers := []io.Writer{os.Stdout}
	if cfg == nil {
		return writers, nil
	}
	dir := strings.TrimSpace(cfg.Logging.Dir)
	file := strings.TrimSpace(cfg.Logging.BotFile)
	if dir == "" || file == "" {
		return writers, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("logger: failed to create log dir %s: %v", dir, err)
		return writers, nil
	}
	path := filepath.Join(dir, file)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("logger: failed to open log file %s: %v", path, err)
		return writers, nil
	}
	return append(writers, f), []io.Closer{f}
}

// Background returns context.Background(); call sites read better when
// the logging package supplies the context.
func Background() context.Context {
	return context.Background()
}

// LogEvent logs attrs at the given level with a guaranteed event attribute.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if logg == nil {
		logg = L
	}
	if logg == nil {
		return
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Component constructs a logger scoped to the provided component attribute.
func Component(name string) *slog.Logger {
	if L == nil {
		return nil
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return L
	}
	return L.With("component", trimmed)
}

// Event logs with component scope resolved automatically.
func Event(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	logg := Component(component)
	if logg == nil {
		logg = FromContext(ctx)
		if logg != nil && strings.TrimSpace(component) != "" {
			logg = logg.With("component", strings.TrimSpace(component))
		}
	}
	LogEvent(ctx, logg, level, event, attrs...)
}

// Debug logs a debug-level event for the given component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

// Info logs an info-level event for the given component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

// Warn logs a warn-level event for the given component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

// Error logs an error-level event for the given component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}

func envFlag(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// ShouldSampleDebug reports whether debug-level details should be logged
// for high-volume events. TRACE=1 in the environment bypasses sampling.
func ShouldSampleDebug() bool {
	if traceOverride {
		return true
	}
	return debugSampler.Allow()
}
