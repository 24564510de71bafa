// Package services contains the client's session store.
//
// SessionStore owns the session: the persisted token pair and the user
// returned by GET /me/. It publishes the user and an authenticated flag as
// replay-latest streams so views and the route guard can follow them.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/garagekeeper/internal/client/client"
	"github.com/dmitrijs2005/garagekeeper/internal/client/models"
	"github.com/dmitrijs2005/garagekeeper/internal/client/observable"
	"github.com/dmitrijs2005/garagekeeper/internal/client/repositories/tokens"
	"github.com/dmitrijs2005/garagekeeper/internal/logging"
)

var (
	// ErrNoSession is returned by operations that need a loaded user.
	ErrNoSession = errors.New("no active session")
	// ErrLoggedOut is returned by Login when Logout ran during the exchange.
	ErrLoggedOut = errors.New("logged out while logging in")
)

type SessionStore struct {
	api    client.AuthAPI
	tokens tokens.Repository
	log    logging.Logger

	user          *observable.Subject[*models.User]
	authenticated *observable.Subject[bool]

	// epoch is bumped by Logout. Login results and who-am-I responses that
	// started under an older epoch are discarded. mu also serialises the
	// session publishes.
	mu    sync.Mutex
	epoch uint64
}

func NewSessionStore(api client.AuthAPI, repo tokens.Repository, log logging.Logger) *SessionStore {
	if log == nil {
		log = logging.Nop()
	}
	return &SessionStore{
		api:           api,
		tokens:        repo,
		log:           log.With("component", "session"),
		user:          observable.NewSubject[*models.User](nil),
		authenticated: observable.NewSubject(false),
	}
}

// CurrentUser streams the session user; nil means no user is loaded.
func (s *SessionStore) CurrentUser() observable.Stream[*models.User] { return s.user }

// Authenticated streams the session flag. It starts false until Bootstrap or
// Login succeeds.
func (s *SessionStore) Authenticated() observable.Stream[bool] { return s.authenticated }

// User returns the current user snapshot, or nil.
func (s *SessionStore) User() *models.User { return s.user.Value() }

func (s *SessionStore) IsAuthenticated() bool { return s.authenticated.Value() }

// HasToken reports whether an access token is persisted.
func (s *SessionStore) HasToken(ctx context.Context) (bool, error) {
	access, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return false, err
	}
	return access != "", nil
}

// Bootstrap restores a session from a persisted token. Without a token it
// does nothing. When who-am-I fails the store stays unauthenticated, the
// token is kept, and the error is returned.
func (s *SessionStore) Bootstrap(ctx context.Context) error {
	ok, err := s.HasToken(ctx)
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	if !ok {
		s.log.Debug(ctx, "no persisted token")
		return nil
	}

	u, err := s.fetchUser(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	s.apply(u, true)
	return nil
}

// Login exchanges credentials for a token pair, persists it and loads the
// current user. Any credential rejection surfaces as client.ErrUnauthorized.
// If the token exchange succeeds but who-am-I fails, the session stays
// authenticated without a user and the error is returned.
//
// A Logout that runs while the token exchange is in flight wins: the pair is
// not persisted and ErrLoggedOut is returned.
func (s *SessionStore) Login(ctx context.Context, creds models.Credentials) error {
	epoch := s.currentEpoch()

	pair, err := s.api.Login(ctx, creds)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return fmt.Errorf("login: %w", ErrLoggedOut)
	}
	if err := s.tokens.Save(ctx, pair); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persist tokens: %w", err)
	}
	s.authenticated.Publish(true)
	s.mu.Unlock()
	s.log.Info(ctx, "logged in", "username", creds.Username)

	if _, err := s.LoadCurrentUser(ctx); err != nil {
		return err
	}
	return nil
}

// Register creates an account. It does not log in.
func (s *SessionStore) Register(ctx context.Context, reg models.Registration) (models.User, error) {
	u, err := s.api.Register(ctx, reg)
	if err != nil {
		return models.User{}, fmt.Errorf("register: %w", err)
	}
	s.log.Info(ctx, "registered", "username", u.Username)
	return u, nil
}

// LoadCurrentUser calls GET /me/ and publishes the result. Callers use it to
// refresh the session copy after editing themselves through the user roster.
func (s *SessionStore) LoadCurrentUser(ctx context.Context) (*models.User, error) {
	u, err := s.fetchUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("load current user: %w", err)
	}
	s.apply(u, false)
	return s.user.Value(), nil
}

// Logout clears the persisted tokens and the in-memory session. It never
// fails: a storage error is logged and the in-memory state is still cleared.
func (s *SessionStore) Logout(ctx context.Context) {
	s.mu.Lock()
	s.epoch++
	if err := s.tokens.Clear(ctx); err != nil {
		s.log.Error(ctx, "failed to clear persisted tokens", "error", err)
	}
	s.user.Publish(nil)
	s.authenticated.Publish(false)
	s.mu.Unlock()

	s.log.Info(ctx, "logged out")
}

// ChangePassword calls PUT /change-password/. The session is unchanged.
func (s *SessionStore) ChangePassword(ctx context.Context, current, next string) error {
	err := s.api.ChangePassword(ctx, models.PasswordChange{OldPassword: current, NewPassword: next})
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

// DeleteAccount deletes the current user's account. It reports success or
// failure only; on success the caller must call Logout.
func (s *SessionStore) DeleteAccount(ctx context.Context) error {
	u := s.user.Value()
	if u == nil {
		return ErrNoSession
	}
	if err := s.api.DeleteAccount(ctx, u.ID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	s.log.Info(ctx, "account deleted", "user_id", u.ID)
	return nil
}

type fetched struct {
	user  models.User
	epoch uint64
}

func (s *SessionStore) fetchUser(ctx context.Context) (fetched, error) {
	epoch := s.currentEpoch()

	u, err := s.api.Me(ctx)
	if err != nil {
		return fetched{}, err
	}
	return fetched{user: u, epoch: epoch}, nil
}

func (s *SessionStore) currentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// apply publishes f, and the authenticated flag when authenticate is set,
// unless a logout happened while f was in flight. Publishing runs under s.mu,
// so session callbacks must not call Logout synchronously.
func (s *SessionStore) apply(f fetched, authenticate bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.epoch != s.epoch {
		return
	}
	u := f.user
	s.user.Publish(&u)
	if authenticate {
		s.authenticated.Publish(true)
	}
}
