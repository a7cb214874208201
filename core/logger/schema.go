package logger

import "strings"

const (
	// LevelDebug represents the debug severity level name.
	LevelDebug = "DEBUG"
	// LevelInfo represents the info severity level name.
	LevelInfo = "INFO"
	// LevelWarn represents the warning severity level name.
	LevelWarn = "WARN"
	// LevelError represents the error severity level name.
	LevelError = "ERROR"
)

func normalizeLevel(level string) string {
	switch strings.ToLower(level) {
	case "":
		return LevelInfo
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return strings.ToUpper(level)
}

func normalizeStatus(status string) (string, bool) {
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case "":
		return "", false
	case "ok", "fail", "skip", "retry", "rate_limited", "cancelled":
		return status, true
	}
	return status, false
}

func normalizeOutcome(outcome string) (string, bool) {
	outcome = strings.ToLower(strings.TrimSpace(outcome))
	switch outcome {
	case "ok", "fail", "cancelled", "rate_limited":
		return outcome, true
	}
	return "", false
}

// defaultKeyOrder pins the field order of a log line. Identity and
// routing keys lead, domain keys follow, error details close the line.
var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"handler",
	"state",
	"cb_key",
	"outcome",
	"duration_ms",
	"messages",
	"kb",
	"mode",
	"listen",
	"public_url",
	"backend",
	"db",
	"host",
	"port",
	"query",
	"media_type",
	"title",
	"season",
	"target",
	"file_count",
	"file_index",
	"label",
	"snippet",
	"payload",
	"username",
	"err",
	"err_code",
	"cause",
	"attempts",
	"backoff_ms",
}
