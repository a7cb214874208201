// Package medialookup implements the guided lookup bot: search a
// Jikan-compatible catalogue, confirm the match, ask about images,
// translation and season, then present the result.
package medialookup

import (
	"time"

	coreconfig "relaybot/core/config"
	tg "relaybot/core/telegram"
	"relaybot/core/telegram/commands"
	tghelpers "relaybot/core/telegram/helpers"
	"relaybot/core/telegram/router"
	"relaybot/core/telegram/state"
	"relaybot/media/jikan"
	"relaybot/media/translate"

	tele "gopkg.in/telebot.v4"
)

// App wires the medialookup bot: sessions and the two API clients.
type App struct {
	cfg      *coreconfig.Config
	sessions *state.Manager[lookupData]
	lookup   *jikan.Client
	xlate    *translate.Client
}

// New builds the application and its API clients.
func New(cfg *coreconfig.Config) *App {
	httpClient := tg.BuildHTTPClient()
	a := &App{
		cfg: cfg,
		sessions: state.NewManager[lookupData](state.Options{
			IdleTTL: time.Duration(cfg.Session.IdleTTLSeconds) * time.Second,
		}),
		lookup: jikan.NewClient(cfg.Media.LookupBaseURL, cfg.Media.SearchLimit, httpClient),
		xlate:  translate.NewClient(cfg.Media.TranslateEndpoint, httpClient),
	}
	a.registerFlow()
	return a
}

// TelegramRunOptions assembles registry, middleware and routes for RunTelegram.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	reg := tg.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{Handler: a.handleStart, Description: "Show the welcome message"})
	reg.RegisterCommand("/cancel", commands.Command{Handler: a.handleCancel, Description: "Cancel the current operation"})

	// Any other text is a search query.
	reg.SetTextFallback(a.startLookup)

	routes := router.CommandRoutes(reg)
	routes = append(routes, router.TextRoutes(a.sessions, reg, router.TextOptions{})...)

	return tg.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(a.cfg, nil),
		Routes:      routes,
	}, nil
}

func (a *App) handleStart(c tele.Context) error {
	return tghelpers.SendText(c,
		"Hello! Send me the name of an anime or manga, and I'll fetch its details for you.")
}

func (a *App) handleCancel(c tele.Context) error {
	userID := c.Sender().ID
	if !a.sessions.InProgress(userID) {
		return tghelpers.SendText(c, "Nothing to cancel.")
	}
	a.sessions.End(userID)
	return tghelpers.SendText(c, "Operation cancelled.", clearMarkup())
}
