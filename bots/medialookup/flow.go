package medialookup

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"relaybot/core/logger"
	tghelpers "relaybot/core/telegram/helpers"
	"relaybot/core/telegram/keyboard"
	"relaybot/core/telegram/state"
	"relaybot/media/jikan"

	tele "gopkg.in/telebot.v4"
)

const (
	stateConfirm      state.State = "confirm"
	stateAskImages    state.State = "ask_images"
	stateAskTranslate state.State = "ask_translate"
	stateAskSeason    state.State = "ask_season"
)

// lookupData is the per-user flow payload accumulated across questions.
type lookupData struct {
	Query     string
	Info      *jikan.MediaInfo
	Images    bool
	Translate bool
}

func (a *App) registerFlow() {
	a.sessions.Handle(stateConfirm, a.confirm)
	a.sessions.Handle(stateAskImages, a.askImages)
	a.sessions.Handle(stateAskTranslate, a.askTranslate)
	a.sessions.Handle(stateAskSeason, a.askSeason)
}

// startLookup is the entry point: any plain text outside a conversation
// is treated as a search query. Lookup failures and empty result sets
// both end with the not-found message.
func (a *App) startLookup(c tele.Context) error {
	query := strings.TrimSpace(c.Text())
	if query == "" {
		return nil
	}

	ctx := tghelpers.BuildContext(c)
	info, err := a.lookup.Lookup(ctx, query)
	if err != nil {
		logger.Error(ctx, "medialookup", "lookup.fail",
			slog.String("status", "fail"),
			slog.String("query", logger.SanitizeLimit(query, 128)),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		info = nil
	}
	if info == nil {
		return tghelpers.SendText(c, "Sorry, no media found for your query.")
	}

	s := a.sessions.Begin(c.Sender().ID, stateConfirm)
	s.Data.Query = query
	s.Data.Info = info
	return tghelpers.SendText(c,
		fmt.Sprintf("I found: %s. Is that the anime/manga you meant? (Yes/No)", info.Title),
		yesNoMarkup())
}

// confirm is single-shot: anything but an affirmative ends the flow.
func (a *App) confirm(c tele.Context, s *state.Session[lookupData]) error {
	if a.cancelled(c) {
		return nil
	}
	if !isYes(c.Text()) {
		a.sessions.End(c.Sender().ID)
		return tghelpers.SendText(c, "Okay, please refine your query.", clearMarkup())
	}
	s.State = stateAskImages
	return tghelpers.SendText(c, "Do you want images? (Yes/No)", yesNoMarkup())
}

func (a *App) askImages(c tele.Context, s *state.Session[lookupData]) error {
	if a.cancelled(c) {
		return nil
	}
	s.Data.Images = isYes(c.Text())
	s.State = stateAskTranslate
	return tghelpers.SendText(c, "Do you want to translate the synopsis to English? (Yes/No)", yesNoMarkup())
}

func (a *App) askTranslate(c tele.Context, s *state.Session[lookupData]) error {
	if a.cancelled(c) {
		return nil
	}
	s.Data.Translate = isYes(c.Text())
	s.State = stateAskSeason
	return tghelpers.SendText(c,
		"If the series has multiple seasons, enter the season number (or type 'skip' to use default).",
		&tele.SendOptions{ReplyMarkup: keyboard.ReplyButtons([]string{"skip"})})
}

// askSeason optionally refines the lookup with a season number, then
// presents the final result. "skip" and non-numeric input keep the
// original match, as does a refined lookup that finds nothing.
func (a *App) askSeason(c tele.Context, s *state.Session[lookupData]) error {
	if a.cancelled(c) {
		return nil
	}

	season := parseSeason(c.Text())
	if season > 0 {
		ctx := tghelpers.BuildContext(c)
		refined := fmt.Sprintf("%s season %d", s.Data.Query, season)
		info, err := a.lookup.Lookup(ctx, refined)
		if err != nil {
			logger.Warn(ctx, "medialookup", "lookup.refine.fail",
				slog.String("query", logger.SanitizeLimit(refined, 128)),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
		}
		if info != nil {
			s.Data.Info = info
		}
	}

	err := a.present(c, s.Data)
	a.sessions.End(c.Sender().ID)
	return err
}

// cancelled intercepts /cancel typed inside the conversation.
func (a *App) cancelled(c tele.Context) bool {
	text := strings.TrimSpace(c.Text())
	if text != "/cancel" && !strings.HasPrefix(text, "/cancel@") {
		return false
	}
	a.sessions.End(c.Sender().ID)
	_ = tghelpers.SendText(c, "Operation cancelled.", clearMarkup())
	return true
}

// yesNoMarkup offers the two expected answers as reply buttons; free
// text still works, the buttons just prefill it.
func yesNoMarkup() *tele.SendOptions {
	return &tele.SendOptions{ReplyMarkup: keyboard.ReplyButtons([]string{"Yes", "No"})}
}

// clearMarkup hides the reply keyboard once the conversation is over.
func clearMarkup() *tele.SendOptions {
	return &tele.SendOptions{ReplyMarkup: keyboard.RemoveKeyboard()}
}

// isYes classifies an answer leniently: "yes" and "y" in any case are
// affirmative, everything else is negative.
func isYes(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "yes", "y":
		return true
	}
	return false
}

// parseSeason returns 0 for "skip" or anything non-numeric.
func parseSeason(text string) int {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "skip" {
		return 0
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
