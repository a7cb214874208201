package medialookup

import (
	"log/slog"
	"strings"

	"relaybot/core/logger"
	tghelpers "relaybot/core/telegram/helpers"
	"relaybot/media/jikan"

	tele "gopkg.in/telebot.v4"
)

// maxCaptionLength is the Telegram photo caption limit.
const maxCaptionLength = 1024

// buildReply renders the fixed-order result block.
func buildReply(info *jikan.MediaInfo) string {
	var b strings.Builder
	b.WriteString("Type: " + info.Type + "\n")
	b.WriteString("Title: " + info.Title + "\n\n")
	b.WriteString("Synopsis: " + info.Synopsis + "\n\n")
	b.WriteString("Genres: " + info.Genres + "\n\n")
	b.WriteString("Date Info: " + info.DateInfo + "\n")
	b.WriteString("Broadcast: " + info.Broadcast + "\n\n")
	b.WriteString("Characters:\n")
	for _, ch := range info.Characters {
		b.WriteString("- " + ch.Name + "\n")
	}
	return truncateCaption(b.String())
}

// truncateCaption cuts the text to the caption limit, marking the cut
// with an ellipsis.
func truncateCaption(text string) string {
	r := []rune(text)
	if len(r) <= maxCaptionLength {
		return text
	}
	return string(r[:maxCaptionLength-3]) + "..."
}

// substituteSynopsis swaps the original synopsis inside an already built
// reply. When truncation cut into the synopsis the original text no
// longer appears verbatim and the reply stays unchanged.
func substituteSynopsis(reply, original, translated string) string {
	return strings.ReplaceAll(reply, original, translated)
}

// present sends the final answer: optionally translated text, as a
// photo caption when images were requested (with text fallback), plus
// one photo per character that has an image.
func (a *App) present(c tele.Context, data lookupData) error {
	info := data.Info
	reply := buildReply(info)

	if data.Translate {
		ctx := tghelpers.BuildContext(c)
		translated, err := a.xlate.ToEnglish(ctx, info.Synopsis)
		if err != nil {
			logger.Warn(ctx, "medialookup", "translate.fail",
				slog.String("title", logger.SanitizeLimit(info.Title, 128)),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
		} else {
			reply = truncateCaption(substituteSynopsis(reply, info.Synopsis, translated))
		}
	}

	if !data.Images || info.ImageURL == "" {
		return tghelpers.SendText(c, reply, clearMarkup())
	}

	photo := &tele.Photo{File: tele.FromURL(info.ImageURL), Caption: reply}
	if err := c.Send(photo, clearMarkup()); err != nil {
		ctx := tghelpers.BuildContext(c)
		logger.Warn(ctx, "medialookup", "photo.fallback",
			slog.String("title", logger.SanitizeLimit(info.Title, 128)),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		if err := tghelpers.SendText(c, reply, clearMarkup()); err != nil {
			return err
		}
	}

	for _, ch := range info.Characters {
		if ch.ImageURL == "" {
			continue
		}
		charPhoto := &tele.Photo{File: tele.FromURL(ch.ImageURL), Caption: truncateCaption(ch.Name)}
		if err := c.Send(charPhoto); err != nil {
			ctx := tghelpers.BuildContext(c)
			logger.Warn(ctx, "medialookup", "character.photo.skip",
				slog.String("title", logger.SanitizeLimit(ch.Name, 128)),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
		}
	}
	return nil
}
