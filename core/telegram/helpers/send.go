package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"relaybot/core/logger"
	"relaybot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by the send helpers.
// Passing nil detaches it, after which helpers send synchronously.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

// sendAsync hands run to the dispatcher when one is attached. A full or
// closed queue degrades to a synchronous send so the reply still goes out.
func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := globalDispatcher.Load()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	err := disp.Enqueue(ctx, action, endpoint, run)
	if err == nil {
		return nil
	}
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("action", action),
			slog.String("endpoint", endpoint),
			slog.String("err", err.Error()),
		)
		return run()
	}
	return err
}

// SendText sends plain text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	return sendAsync(c, "send.text", "sendMessage", func() error {
		if sendOpts == nil {
			return c.Send(text)
		}
		return c.Send(text, sendOpts)
	})
}

func firstMarkup(markup []*tele.ReplyMarkup) *tele.ReplyMarkup {
	if len(markup) > 0 {
		return markup[0]
	}
	return nil
}

// SendMDNoPreview sends Markdown text with web page previews disabled.
// Deep-link listings would otherwise unfurl every referenced message.
func SendMDNoPreview(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return SendText(c, text, &tele.SendOptions{
		ParseMode:             tele.ModeMarkdown,
		ReplyMarkup:           firstMarkup(markup),
		DisableWebPagePreview: true,
	})
}
