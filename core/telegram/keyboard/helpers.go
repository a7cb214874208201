// Package keyboard builds telebot reply markups from plain data.
package keyboard

import tele "gopkg.in/telebot.v4"

const defaultCancelButtonText = "❌ Cancel"

// InlineBtn carries the three fields an inline data button needs.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

// InlineButtons lays out one button per row, the common shape for
// pick-one lists.
func InlineButtons(buttons []InlineBtn) *tele.ReplyMarkup {
	rows := make([][]InlineBtn, len(buttons))
	for i, b := range buttons {
		rows[i] = []InlineBtn{b}
	}
	return InlineButtonsRows(rows...)
}

// InlineButtonsRows builds an inline keyboard from explicit rows.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		line := make([]tele.InlineButton, 0, len(row))
		for _, btn := range row {
			line = append(line, *markup.Data(btn.Text, btn.Unique, btn.Data).Inline())
		}
		inline = append(inline, line)
	}
	markup.InlineKeyboard = inline
	return markup
}

// ReplyButtons builds a resizable reply keyboard from rows of labels.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	keyboard := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tele.Btn, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Reply(keyboard...)
	return markup
}

// RemoveKeyboard returns a markup that hides the reply keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// CancelButton returns a cancel inline button for the given markup and
// callback action. Options override the payload and then the label.
func CancelButton(markup *tele.ReplyMarkup, action string, options ...string) tele.Btn {
	payload := "cancel"
	if len(options) > 0 && options[0] != "" {
		payload = options[0]
	}
	text := defaultCancelButtonText
	if len(options) > 1 && options[1] != "" {
		text = options[1]
	}
	return markup.Data(text, action, payload)
}

// SingleCancelMarkup creates an inline keyboard holding only a cancel button.
func SingleCancelMarkup(action string, options ...string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	btn := CancelButton(markup, action, options...)
	markup.InlineKeyboard = [][]tele.InlineButton{{*btn.Inline()}}
	return markup
}
