// Package appstate builds the application-scoped object graph: the token
// store, the API client, the session, the entity caches and the route guard.
// It is constructed once per process and passed by reference; tests build
// their own isolated instances.
package appstate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/garagekeeper/internal/client/cache"
	"github.com/dmitrijs2005/garagekeeper/internal/client/client"
	"github.com/dmitrijs2005/garagekeeper/internal/client/config"
	"github.com/dmitrijs2005/garagekeeper/internal/client/guard"
	"github.com/dmitrijs2005/garagekeeper/internal/client/policy"
	"github.com/dmitrijs2005/garagekeeper/internal/client/repositories/tokens"
	"github.com/dmitrijs2005/garagekeeper/internal/client/services"
	"github.com/dmitrijs2005/garagekeeper/internal/logging"
)

type State struct {
	Config *config.Config
	Logger logging.Logger

	DB      *sql.DB
	Tokens  tokens.Repository
	API     client.Client
	Session *services.SessionStore
	Cars    *cache.CarCache
	Users   *cache.UserCache
	Guard   *guard.Guard
}

// New opens the token store at cfg.StoragePath and wires every component on
// top of it. The caller owns the result and must Close it.
func New(ctx context.Context, cfg *config.Config, log logging.Logger) (*State, error) {
	if log == nil {
		log = logging.Nop()
	}

	db, err := client.InitDatabase(ctx, cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init token store: %w", err)
	}

	repo := tokens.NewSQLiteRepository(db)
	api := client.NewHTTPClient(client.HTTPClientConfig{
		BaseURL: cfg.APIURL,
		Timeout: cfg.RequestTimeout,
		Tokens:  repo,
		Logger:  log,
	})
	session := services.NewSessionStore(api, repo, log)

	return &State{
		Config:  cfg,
		Logger:  log,
		DB:      db,
		Tokens:  repo,
		API:     api,
		Session: session,
		Cars:    cache.NewCarCache(api, log),
		Users:   cache.NewUserCache(api, log),
		Guard:   guard.New(session.Authenticated()),
	}, nil
}

// Policy is the access decision for the current session user.
func (s *State) Policy() policy.Decision {
	return policy.Decide(s.Session.User())
}

// ResetCaches empties both entity caches, e.g. after the session ends.
func (s *State) ResetCaches() {
	s.Cars.Reset()
	s.Users.Reset()
}

func (s *State) Close() error {
	if err := s.DB.Close(); err != nil {
		return fmt.Errorf("close token store: %w", err)
	}
	return nil
}
