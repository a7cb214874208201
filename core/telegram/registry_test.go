package telegram

import (
	"testing"

	"relaybot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func nopHandler(tele.Context) error { return nil }

func TestListCommandsVisibleOmitsProtectedAndHidden(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", commands.Command{Handler: nopHandler, Description: "welcome"})
	reg.RegisterCommand("/login", commands.Command{Handler: nopHandler, Description: "log in"})
	reg.RegisterCommand("/batchsend", commands.Command{Handler: nopHandler, Description: "send files", Protected: true})
	reg.RegisterCommand("/done", commands.Command{Handler: nopHandler, Description: "finish", Hidden: true})

	visible := reg.ListCommands(true)
	if len(visible) != 2 {
		t.Fatalf("visible commands = %d, want 2", len(visible))
	}
	if visible[0].Text != "/login" || visible[1].Text != "/start" {
		t.Errorf("visible commands = %q, %q; want /login, /start", visible[0].Text, visible[1].Text)
	}

	all := reg.ListCommands(false)
	if len(all) != 4 {
		t.Errorf("all commands = %d, want 4", len(all))
	}
}

func TestLookupCommandIgnoresArguments(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/login", commands.Command{Handler: nopHandler, Description: "log in"})

	key, _, ok := reg.LookupCommand("/login hunter2")
	if !ok || key != "/login" {
		t.Errorf("LookupCommand(%q) = %q, %v; want /login, true", "/login hunter2", key, ok)
	}
}
