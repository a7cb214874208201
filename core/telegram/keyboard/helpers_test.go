package keyboard

import "testing"

func TestInlineButtonsOnePerRow(t *testing.T) {
	markup := InlineButtons([]InlineBtn{
		{Text: "Group A", Unique: "pick", Data: "1"},
		{Text: "Group B", Unique: "pick", Data: "2"},
	})
	if len(markup.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d, want 2", len(markup.InlineKeyboard))
	}
	for i, row := range markup.InlineKeyboard {
		if len(row) != 1 {
			t.Errorf("row %d has %d buttons, want 1", i, len(row))
		}
	}
	if got := markup.InlineKeyboard[1][0].Text; got != "Group B" {
		t.Errorf("second button text = %q, want %q", got, "Group B")
	}
}

func TestReplyButtonsResizableRows(t *testing.T) {
	markup := ReplyButtons([]string{"Yes", "No"}, []string{"skip"})
	if !markup.ResizeKeyboard {
		t.Error("ResizeKeyboard = false, want true")
	}
	if len(markup.ReplyKeyboard) != 2 {
		t.Fatalf("rows = %d, want 2", len(markup.ReplyKeyboard))
	}
	if len(markup.ReplyKeyboard[0]) != 2 || markup.ReplyKeyboard[0][1].Text != "No" {
		t.Errorf("first row = %v, want [Yes No]", markup.ReplyKeyboard[0])
	}
}

func TestRemoveKeyboard(t *testing.T) {
	if !RemoveKeyboard().RemoveKeyboard {
		t.Error("RemoveKeyboard flag not set")
	}
}

func TestSingleCancelMarkupDefaults(t *testing.T) {
	markup := SingleCancelMarkup("bs_cancel")
	if len(markup.InlineKeyboard) != 1 || len(markup.InlineKeyboard[0]) != 1 {
		t.Fatalf("keyboard shape = %v, want a single button", markup.InlineKeyboard)
	}
	btn := markup.InlineKeyboard[0][0]
	if btn.Text != defaultCancelButtonText {
		t.Errorf("button text = %q, want %q", btn.Text, defaultCancelButtonText)
	}
	if btn.Unique != "bs_cancel" || btn.Data != "cancel" {
		t.Errorf("button action = %q/%q, want bs_cancel/cancel", btn.Unique, btn.Data)
	}
}
