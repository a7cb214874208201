package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// Protected commands require a prior successful login. The check is
	// performed explicitly at the top of the handler; the flag keeps the
	// command out of the published menu.
	Protected bool
	Hidden    bool
	Aliases   []string
}
