package batchsend

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"relaybot/core/telegram/callbacks"
	tghelpers "relaybot/core/telegram/helpers"
	"relaybot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// cbTOCGroup is the callback key of the /toc group picker.
const cbTOCGroup = "toc_group"

const helpText = "Welcome to BatchSend Bot (Protected)!\n\n" +
	"Commands:\n" +
	"/login <password> – Log in (default: admin)\n" +
	"/changepassword <old> <new> – Change password\n" +
	"/addgroup – Add current chat to group list\n" +
	"/addprivatechannel <channel_id> [custom name] – Add a private channel manually\n" +
	"/listgroups – List registered groups\n" +
	"/toc – Get a Table of Contents from a selected group\n" +
	"/batchsend – Batch send files\n" +
	"/cancel – Cancel the current operation\n" +
	"/commands – Show command list"

func (a *App) handleStart(c tele.Context) error {
	return tghelpers.SendText(c, helpText)
}

func (a *App) handleLogin(c tele.Context) error {
	args := commandArgs(c)
	if len(args) == 0 {
		return tghelpers.SendText(c, "Usage: /login <password>")
	}
	ok, err := a.auth.Login(c.Sender().ID, args[0])
	if err != nil {
		return err
	}
	if !ok {
		return tghelpers.SendText(c, "Incorrect password.")
	}
	return tghelpers.SendText(c, "Login successful!")
}

func (a *App) handleChangePassword(c tele.Context) error {
	if !a.auth.Require(c) {
		return nil
	}
	args := commandArgs(c)
	if len(args) < 2 {
		return tghelpers.SendText(c, "Usage: /changepassword <old> <new>")
	}
	current, err := a.store.Password()
	if err != nil {
		return err
	}
	if args[0] != current {
		return tghelpers.SendText(c, "Old password incorrect.")
	}
	if err := a.auth.ChangePassword(args[1]); err != nil {
		return err
	}
	return tghelpers.SendText(c, "Password changed successfully.")
}

func (a *App) handleAddGroup(c tele.Context) error {
	if !a.auth.Require(c) {
		return nil
	}
	chat := c.Chat()
	if chat == nil {
		return nil
	}
	title := chat.Title
	if title == "" {
		title = chat.Username
	}
	if title == "" {
		title = "Unnamed Chat"
	}

	groups, err := a.store.Groups()
	if err != nil {
		return err
	}
	if existing, ok := groups[chat.ID]; ok {
		return tghelpers.SendText(c, fmt.Sprintf("Chat '%s' is already added.", existing))
	}
	if err := a.store.AddGroup(chat.ID, title); err != nil {
		return err
	}
	return tghelpers.SendText(c, fmt.Sprintf("Chat '%s' added successfully.", title))
}

func (a *App) handleAddPrivateChannel(c tele.Context) error {
	if !a.auth.Require(c) {
		return nil
	}
	args := commandArgs(c)
	if len(args) == 0 {
		return tghelpers.SendText(c, "Usage: /addprivatechannel <channel_id> [custom name]")
	}
	if !strings.HasPrefix(args[0], "-100") {
		return tghelpers.SendText(c, "Channel ID should start with -100.")
	}
	channelID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return tghelpers.SendText(c, "Channel ID should start with -100.")
	}

	name := strings.TrimSpace(strings.Join(args[1:], " "))
	if name == "" {
		name = "PrivateChannel_" + args[0]
	}

	groups, err := a.store.Groups()
	if err != nil {
		return err
	}
	if existing, ok := groups[channelID]; ok {
		return tghelpers.SendText(c, fmt.Sprintf("Channel '%s' is already added.", existing))
	}
	if err := a.store.AddGroup(channelID, name); err != nil {
		return err
	}
	return tghelpers.SendText(c, fmt.Sprintf("Private channel '%s' added successfully.", name))
}

func (a *App) handleListGroups(c tele.Context) error {
	if !a.auth.Require(c) {
		return nil
	}
	groups, err := a.store.Groups()
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return tghelpers.SendText(c, "No groups available. Use /addgroup to add one.")
	}

	ids := make([]int64, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	lines := make([]string, 0, len(ids)+1)
	lines = append(lines, "Available Groups:")
	for _, id := range ids {
		lines = append(lines, fmt.Sprintf("- %s (ID: %d)", groups[id], id))
	}
	return tghelpers.SendText(c, strings.Join(lines, "\n"))
}

func (a *App) handleTOC(c tele.Context) error {
	if !a.auth.Require(c) {
		return nil
	}
	groups, err := a.store.Groups()
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return tghelpers.SendText(c, "No groups available. Use /addgroup to add one.")
	}

	ids := make([]int64, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	buttons := make([]keyboard.InlineBtn, 0, len(ids))
	for _, id := range ids {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   groups[id],
			Unique: cbTOCGroup,
			Data:   strconv.FormatInt(id, 10),
		})
	}
	return tghelpers.SendText(c, "Select a group for TOC:",
		&tele.SendOptions{ReplyMarkup: keyboard.InlineButtons(buttons)})
}

// tocSelect renders the deep-linked listing of a chat's message log.
func (a *App) tocSelect(c tele.Context) error {
	if !a.auth.Require(c) {
		return nil
	}
	groupID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return tghelpers.SendText(c, "Unknown group.")
	}

	entries := a.msglog.Entries(groupID)
	if len(entries) == 0 {
		return tghelpers.SendText(c, "No messages logged for this group.")
	}

	lines := make([]string, 0, len(entries))
	for _, m := range entries {
		lines = append(lines, fmt.Sprintf("[Msg %d: %s](%s)",
			m.MessageID, m.Snippet, DeepLink(groupID, m.MessageID)))
	}
	return tghelpers.SendMDNoPreview(c, strings.Join(lines, "\n"))
}

func (a *App) handleCancel(c tele.Context) error {
	userID := c.Sender().ID
	if !a.sessions.InProgress(userID) {
		return tghelpers.SendText(c, "Nothing to cancel.")
	}
	a.sessions.End(userID)
	return tghelpers.SendText(c, "Operation cancelled.")
}

// commandArgs splits the message text into arguments after the command.
func commandArgs(c tele.Context) []string {
	fields := strings.Fields(c.Text())
	if len(fields) <= 1 {
		return nil
	}
	return fields[1:]
}
