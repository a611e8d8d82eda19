// Package app assembles the client core: session storage, the global
// store, the REST client, the loop and the chat connection.
package app

import (
	"fmt"

	"github.com/deemkeen/postbox/api"
	"github.com/deemkeen/postbox/chat"
	"github.com/deemkeen/postbox/db"
	"github.com/deemkeen/postbox/request"
	"github.com/deemkeen/postbox/state"
	"github.com/deemkeen/postbox/util"
	"github.com/deemkeen/postbox/view"
	"github.com/sirupsen/logrus"
)

type Options struct {
	// Nav receives navigation requests from the views. Nil drops them.
	Nav view.Navigator
	// NoChat keeps the chat connection closed, for one-shot commands.
	NoChat bool
}

type App struct {
	Conf   *util.AppConfig
	DB     *db.DB
	Loop   *request.Loop
	Global *state.Global
	Client *api.Client
	Env    *view.Env
	Chat   *chat.Client

	check *view.SessionCheck
	log   *logrus.Entry
}

// New opens session storage and builds the core. Nothing touches the
// network until Start.
func New(conf *util.AppConfig, opts Options) (*App, error) {
	log := util.NewLogger("app")

	dbPath := util.ResolveFilePath(conf.Conf.Database)
	store, err := db.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening session storage %s: %w", dbPath, err)
	}

	stored, err := store.LoadSession()
	if err != nil {
		log.WithError(err).Warn("could not read the stored session, starting logged out")
		stored = nil
	}

	global := state.NewGlobal(state.InitialState(stored))
	global.Subscribe(state.PersistSession(store))

	loop := request.NewLoop()
	client := api.NewClient(conf.Conf.ApiUrl, conf.Timeout())
	env := &view.Env{
		Loop:    loop,
		Global:  global,
		Backend: client,
		Nav:     opts.Nav,
	}

	a := &App{
		Conf:   conf,
		DB:     store,
		Loop:   loop,
		Global: global,
		Client: client,
		Env:    env,
		check:  view.NewSessionCheck(env),
		log:    log,
	}
	if !opts.NoChat && conf.Conf.ChatUrl != "" {
		a.Chat = chat.NewClient(loop, global, conf.Conf.ChatUrl, chat.DefaultSettings())
	}
	return a, nil
}

// Start runs the one-time session check and follows the session with the
// chat connection. It returns the check's handle, or nil when no request
// was needed.
func (a *App) Start() *request.Handle {
	var h *request.Handle
	a.Loop.Do(func() {
		if s := a.Global.GetState().Session; s.LoggedIn {
			a.log.WithField("user", s.Username).Info("resuming stored session")
		}
		h = a.check.Run()
		if a.Chat != nil {
			a.Chat.Start()
		}
	})
	return h
}

// Do runs fn on the loop and waits for it.
func (a *App) Do(fn func()) bool {
	return a.Loop.Do(fn)
}

// Post runs fn on the loop without waiting.
func (a *App) Post(fn func()) bool {
	return a.Loop.Post(fn)
}

// Close cancels outstanding work, stops the loop and closes storage.
func (a *App) Close() error {
	a.Loop.Do(func() {
		a.check.Cancel()
		if a.Chat != nil {
			a.Chat.Close()
		}
	})
	a.Loop.Close()

	if err := a.DB.Close(); err != nil {
		return fmt.Errorf("closing session storage: %w", err)
	}
	return nil
}
