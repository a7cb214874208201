// Package batchsend implements the file relay bot: collect attachments,
// label them, pick a destination, dispatch with deep-linked captions.
package batchsend

import (
	"time"

	"relaybot/auth"
	coreconfig "relaybot/core/config"
	tg "relaybot/core/telegram"
	"relaybot/core/telegram/commands"
	"relaybot/core/telegram/router"
	"relaybot/core/telegram/state"
	"relaybot/store"

	tele "gopkg.in/telebot.v4"
)

// App wires the batchsend bot: sessions, auth, registry and message log.
type App struct {
	cfg      *coreconfig.Config
	store    store.Store
	auth     *auth.Manager
	sessions *state.Manager[batchData]
	msglog   *MessageLog
}

// New builds the application around an opened store.
func New(cfg *coreconfig.Config, st store.Store) *App {
	a := &App{
		cfg:   cfg,
		store: st,
		auth:  auth.NewManager(st),
		sessions: state.NewManager[batchData](state.Options{
			IdleTTL: time.Duration(cfg.Session.IdleTTLSeconds) * time.Second,
		}),
		msglog: NewMessageLog(),
	}
	a.registerFlow()
	return a
}

// TelegramRunOptions assembles registry, middleware and routes for RunTelegram.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	reg := tg.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{Handler: a.handleStart, Description: "Show the welcome message"})
	reg.RegisterCommand("/commands", commands.Command{Handler: a.handleStart, Description: "Show command list"})
	reg.RegisterCommand("/login", commands.Command{Handler: a.handleLogin, Description: "Log in with the shared password"})
	reg.RegisterCommand("/changepassword", commands.Command{Handler: a.handleChangePassword, Description: "Change the shared password", Protected: true})
	reg.RegisterCommand("/addgroup", commands.Command{Handler: a.handleAddGroup, Description: "Add the current chat to the group list", Protected: true})
	reg.RegisterCommand("/addprivatechannel", commands.Command{Handler: a.handleAddPrivateChannel, Description: "Add a private channel by id", Protected: true})
	reg.RegisterCommand("/listgroups", commands.Command{Handler: a.handleListGroups, Description: "List registered groups", Protected: true})
	reg.RegisterCommand("/toc", commands.Command{Handler: a.handleTOC, Description: "Table of contents for a group", Protected: true})
	reg.RegisterCommand("/batchsend", commands.Command{Handler: a.startBatch, Description: "Batch send files", Protected: true})
	reg.RegisterCommand("/cancel", commands.Command{Handler: a.handleCancel, Description: "Cancel the current operation"})
	// /done only has meaning inside an active collection; the flow
	// handler consumes it. Registered hidden so stray /done gets a reply.
	reg.RegisterCommand("/done", commands.Command{Handler: a.handleDoneOutsideFlow, Description: "Finish file collection", Hidden: true})

	_ = reg.RegisterCallback(cbTarget, a.selectTarget)
	_ = reg.RegisterCallback(cbCancel, a.cancelFromButton)
	_ = reg.RegisterCallback(cbTOCGroup, a.tocSelect)

	routes := router.CommandRoutes(reg)
	routes = append(routes, router.TextRoutes(a.sessions, reg, router.TextOptions{})...)
	routes = append(routes, router.MediaRoutes(a.sessions, router.TextOptions{})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, tg.Route{Endpoint: tele.OnChannelPost, Handler: func(tele.Context) error { return nil }})

	mws := tg.DefaultMiddlewares(a.cfg, nil)
	mws = append(mws, tg.Middleware{Name: "msglog", Use: a.recordGroupMessages})

	return tg.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: mws,
		Routes:      routes,
	}, nil
}

// handleDoneOutsideFlow answers /done typed without an active batch.
func (a *App) handleDoneOutsideFlow(c tele.Context) error {
	if a.sessions.InProgress(c.Sender().ID) {
		return a.sessions.Dispatch(c)
	}
	return c.Send("No batch in progress. Start one with /batchsend.")
}

// recordGroupMessages feeds the TOC index with every non-command
// message seen in groups, supergroups and channels.
func (a *App) recordGroupMessages(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		msg := c.Message()
		chat := c.Chat()
		if msg != nil && chat != nil {
			switch chat.Type {
			case tele.ChatGroup, tele.ChatSuperGroup, tele.ChatChannel:
				if len(msg.Text) == 0 || msg.Text[0] != '/' {
					a.msglog.Record(chat.ID, msg.ID, msg.Text)
				}
			}
		}
		return next(c)
	}
}
