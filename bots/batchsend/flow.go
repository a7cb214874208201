package batchsend

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"relaybot/core/logger"
	"relaybot/core/telegram/callbacks"
	tghelpers "relaybot/core/telegram/helpers"
	"relaybot/core/telegram/keyboard"
	"relaybot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

const (
	stateCollecting      state.State = "collecting"
	stateLabeling        state.State = "labeling"
	stateSelectingTarget state.State = "selecting_target"
)

// cbTarget is the callback key of the destination picker; cbCancel is
// the inline cancel button shown while a batch is in progress.
const (
	cbTarget = "bs_target"
	cbCancel = "bs_cancel"
)

// collectedFile is one attachment accumulated during collection.
// Immutable once its label is assigned.
type collectedFile struct {
	Kind     string // document, photo or video
	FileID   string
	Name     string
	Size     int64
	Duration int // seconds, videos only
	Label    string
}

// batchData is the per-user flow payload: the frozen file list and the
// labeling cursor.
type batchData struct {
	Files []collectedFile
	Index int
}

func (a *App) registerFlow() {
	a.sessions.Handle(stateCollecting, a.collectFile)
	a.sessions.Handle(stateLabeling, a.receiveLabel)
	// stateSelectingTarget is driven by the bs_target callback.
}

// startBatch begins the collection phase.
func (a *App) startBatch(c tele.Context) error {
	if !a.auth.Require(c) {
		return nil
	}
	a.sessions.Begin(c.Sender().ID, stateCollecting)
	return tghelpers.SendText(c, "Batch Send: Send files one by one. When finished, type /done.",
		&tele.SendOptions{ReplyMarkup: keyboard.SingleCancelMarkup(cbCancel)})
}

// cancelFromButton handles the inline cancel button under flow prompts.
func (a *App) cancelFromButton(c tele.Context) error {
	userID := c.Sender().ID
	if !a.sessions.InProgress(userID) {
		return nil
	}
	a.sessions.End(userID)
	return tghelpers.SendText(c, "Operation cancelled.")
}

// collectFile appends attachments during the collection phase. The
// finish and cancel commands arrive here as plain text because the
// active conversation captures all input.
func (a *App) collectFile(c tele.Context, s *state.Session[batchData]) error {
	text := strings.TrimSpace(c.Text())
	switch command(text) {
	case "/done":
		return a.finishCollecting(c, s)
	case "/cancel":
		a.sessions.End(c.Sender().ID)
		return tghelpers.SendText(c, "Operation cancelled.")
	}

	file, ok := extractFile(c.Message())
	if !ok {
		return tghelpers.SendText(c, "Unsupported file type. Send a document, photo, or video.")
	}

	s.Data.Files = append(s.Data.Files, file)
	logger.Info(tghelpers.BuildContext(c), "batchsend", "file.collected",
		slog.String("status", "ok"),
		slog.String("label", logger.SanitizeLimit(file.Name, 128)),
		slog.Int("file_count", len(s.Data.Files)),
	)
	return tghelpers.SendText(c,
		fmt.Sprintf("File received. Total files: %d. Send another file or type /done.", len(s.Data.Files)))
}

// finishCollecting freezes the file list and starts labeling, or aborts
// when nothing was collected.
func (a *App) finishCollecting(c tele.Context, s *state.Session[batchData]) error {
	if len(s.Data.Files) == 0 {
		a.sessions.End(c.Sender().ID)
		return tghelpers.SendText(c, "No files received. Batch send cancelled.")
	}
	s.State = stateLabeling
	s.Data.Index = 0
	return a.promptLabel(c, s)
}

func (a *App) promptLabel(c tele.Context, s *state.Session[batchData]) error {
	current := s.Data.Files[s.Data.Index]
	return tghelpers.SendText(c,
		fmt.Sprintf("Batch Send: For file %d (%s), enter a prefix (or '-' for default).",
			s.Data.Index+1, current.Name),
		&tele.SendOptions{ReplyMarkup: keyboard.SingleCancelMarkup(cbCancel)})
}

// receiveLabel stores one label per reply, in collection order. The
// placeholder "-" (or an empty reply) selects the original file name.
func (a *App) receiveLabel(c tele.Context, s *state.Session[batchData]) error {
	text := strings.TrimSpace(c.Text())
	if command(text) == "/cancel" {
		a.sessions.End(c.Sender().ID)
		return tghelpers.SendText(c, "Operation cancelled.")
	}

	current := &s.Data.Files[s.Data.Index]
	if text == "" || text == "-" {
		current.Label = current.Name
	} else {
		current.Label = text
	}

	s.Data.Index++
	if s.Data.Index < len(s.Data.Files) {
		return a.promptLabel(c, s)
	}

	markup, err := a.targetKeyboard()
	if err != nil {
		a.sessions.End(c.Sender().ID)
		return tghelpers.SendText(c, "Could not load the group list. Batch send cancelled.")
	}
	if markup == nil {
		a.sessions.End(c.Sender().ID)
		return tghelpers.SendText(c, "No groups available. Use /addgroup to add one.")
	}

	s.State = stateSelectingTarget
	return tghelpers.SendText(c, "Batch Send: Select target group to receive all messages:",
		&tele.SendOptions{ReplyMarkup: markup})
}

// targetKeyboard lists registered destinations one per row, ordered by
// chat id so the layout is stable between prompts.
func (a *App) targetKeyboard() (*tele.ReplyMarkup, error) {
	groups, err := a.store.Groups()
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, nil
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
			Unique: cbTarget,
			Data:   fmt.Sprintf("%d", id),
		})
	}
	markup := keyboard.InlineButtons(buttons)
	cancel := keyboard.CancelButton(markup, cbCancel)
	markup.InlineKeyboard = append(markup.InlineKeyboard, []tele.InlineButton{*cancel.Inline()})
	return markup, nil
}

// selectTarget dispatches the whole batch to the chosen destination.
// Every file is attempted independently; a failed item contributes an
// error line and the loop continues.
func (a *App) selectTarget(c tele.Context) error {
	if !a.auth.Require(c) {
		return nil
	}
	s, ok := a.sessions.Get(c.Sender().ID)
	if !ok || s.State != stateSelectingTarget {
		return nil
	}

	target, err := callbacks.PayloadInt64(c)
	if err != nil {
		return tghelpers.SendText(c, "Unknown destination.")
	}

	results := a.dispatch(c, target, s.Data.Files)
	a.sessions.End(c.Sender().ID)
	return tghelpers.SendText(c, "Batch Send Completed:\n"+strings.Join(results, "\n"))
}

func (a *App) dispatch(c tele.Context, target int64, files []collectedFile) []string {
	bot := c.Bot()
	to := tele.ChatID(target)
	ctx := tghelpers.BuildContext(c)

	results := make([]string, 0, len(files))
	for i, f := range files {
		sent, err := bot.Send(to, sendable(f))
		if err == nil {
			link := DeepLink(sent.Chat.ID, sent.ID)
			_, err = bot.Send(to,
				fmt.Sprintf("[%s](%s)", linkText(f), link),
				&tele.SendOptions{ParseMode: tele.ModeMarkdown})
		}

		if err != nil {
			logger.Error(ctx, "batchsend", "dispatch.item",
				slog.String("status", "fail"),
				slog.Int("file_index", i+1),
				slog.Int64("target", target),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
			results = append(results, fmt.Sprintf("File %d error: %v", i+1, err))
			continue
		}
		results = append(results, fmt.Sprintf("File %d sent successfully.", i+1))
	}

	logger.Info(ctx, "batchsend", "dispatch.done",
		slog.String("status", "ok"),
		slog.Int64("target", target),
		slog.Int("file_count", len(files)),
	)
	return results
}

// sendable rebuilds a telebot media object from the stored file reference.
func sendable(f collectedFile) interface{} {
	switch f.Kind {
	case "photo":
		return &tele.Photo{
			File:    tele.File{FileID: f.FileID},
			Caption: "Forwarded photo",
		}
	case "video":
		return &tele.Video{
			File:    tele.File{FileID: f.FileID},
			Caption: "Forwarded video",
		}
	default:
		return &tele.Document{
			File:     tele.File{FileID: f.FileID},
			FileName: f.Name,
			Caption:  "Forwarded file: " + f.Name,
		}
	}
}

// linkText builds the visible part of the deep-link line: the label,
// the size, and for videos the duration.
func linkText(f collectedFile) string {
	text := f.Label + " (Size: " + FormatSize(f.Size)
	if f.Kind == "video" {
		text += ", Duration: " + FormatDuration(f.Duration)
	}
	return text + ")"
}

// extractFile reads the supported attachment kinds out of a message.
func extractFile(msg *tele.Message) (collectedFile, bool) {
	if msg == nil {
		return collectedFile{}, false
	}
	switch {
	case msg.Document != nil:
		return collectedFile{
			Kind:   "document",
			FileID: msg.Document.FileID,
			Name:   msg.Document.FileName,
			Size:   msg.Document.FileSize,
		}, true
	case msg.Photo != nil:
		return collectedFile{
			Kind:   "photo",
			FileID: msg.Photo.FileID,
			Name:   "photo.jpg",
			Size:   msg.Photo.FileSize,
		}, true
	case msg.Video != nil:
		name := msg.Video.FileName
		if name == "" {
			name = "video.mp4"
		}
		return collectedFile{
			Kind:     "video",
			FileID:   msg.Video.FileID,
			Name:     name,
			Size:     msg.Video.FileSize,
			Duration: msg.Video.Duration,
		}, true
	}
	return collectedFile{}, false
}

// command strips a trailing @botname so "/done@relay_bot" matches "/done".
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	if at := strings.IndexByte(text, '@'); at > 0 {
		return text[:at]
	}
	return text
}
