package router

import (
	"time"

	tg "relaybot/core/telegram"
	"relaybot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// FSM defines the minimal interface for a conversation manager.
type FSM interface {
	InProgress(userID int64) bool
	Dispatch(c tele.Context) error
}

// TextOptions controls fallback behaviour for text and media updates.
type TextOptions struct {
	UnknownText  tele.HandlerFunc
	UnknownMedia tele.HandlerFunc
}

// TextRoutes builds handlers for text updates. Text inside an active
// conversation goes to the FSM; bare commands resolve through the registry;
// anything else falls through to the configured fallbacks.
func TextRoutes(fsmMgr FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if fsmMgr != nil && fsmMgr.InProgress(c.Sender().ID) {
			return handleWithSummary(c, "fsm", start, "", "", func() error {
				return fsmMgr.Dispatch(c)
			})
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, "", "", func() error {
					return cmd.Handler(c)
				})
			}
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
	}
}

// MediaRoutes feeds document, photo, video and audio updates into the FSM.
// Collection flows accept attachments only while a conversation is active.
func MediaRoutes(fsmMgr FSM, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if fsmMgr != nil && fsmMgr.InProgress(c.Sender().ID) {
			return handleWithSummary(c, "fsm_media", start, "", "", func() error {
				return fsmMgr.Dispatch(c)
			})
		}
		if opts.UnknownMedia != nil {
			return handleWithSummary(c, "unexpected_media", start, "", "", func() error {
				return opts.UnknownMedia(c)
			})
		}
		logHandlerSummary(c, "unexpected_media", start, "skip", "ok", nil)
		return nil
	}

	wrapped := middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler))
	endpoints := []any{tele.OnDocument, tele.OnPhoto, tele.OnVideo, tele.OnAudio, tele.OnVoice}
	routes := make([]tg.Route, 0, len(endpoints))
	for _, ep := range endpoints {
		routes = append(routes, tg.Route{Endpoint: ep, Handler: wrapped})
	}
	return routes
}
