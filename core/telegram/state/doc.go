// Package state provides a typed conversation manager for Telegram bots.
// Each bot instantiates Manager with its own session payload type, so
// handlers receive their flow data without type assertions.
package state
