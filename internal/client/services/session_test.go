package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/garagekeeper/internal/client/client"
	"github.com/dmitrijs2005/garagekeeper/internal/client/models"
	"github.com/dmitrijs2005/garagekeeper/internal/client/repositories/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthAPI struct {
	me       models.User
	meErr    error
	meCalls  int
	pair     models.TokenPair
	loginErr error

	registerErr error
	changeErr   error
	lastChange  models.PasswordChange
	deleteErr   error
	deletedIDs  []int64

	// onMe and onLogin run inside Me and Login before they return.
	onMe    func()
	onLogin func()
}

func (f *fakeAuthAPI) Me(context.Context) (models.User, error) {
	f.meCalls++
	if f.onMe != nil {
		f.onMe()
	}
	return f.me, f.meErr
}

func (f *fakeAuthAPI) Login(context.Context, models.Credentials) (models.TokenPair, error) {
	if f.onLogin != nil {
		f.onLogin()
	}
	return f.pair, f.loginErr
}

func (f *fakeAuthAPI) Register(_ context.Context, reg models.Registration) (models.User, error) {
	if f.registerErr != nil {
		return models.User{}, f.registerErr
	}
	return models.User{ID: 42, Username: reg.Username, Email: reg.Email}, nil
}

func (f *fakeAuthAPI) ChangePassword(_ context.Context, change models.PasswordChange) error {
	f.lastChange = change
	return f.changeErr
}

func (f *fakeAuthAPI) DeleteAccount(_ context.Context, id int64) error {
	f.deletedIDs = append(f.deletedIDs, id)
	return f.deleteErr
}

type fakeTokens struct {
	pair     models.TokenPair
	saveErr  error
	clearErr error
	cleared  int
}

func (f *fakeTokens) Get(_ context.Context, key string) (string, error) {
	switch key {
	case tokens.KeyAccess:
		return f.pair.Access, nil
	case tokens.KeyRefresh:
		return f.pair.Refresh, nil
	}
	return "", nil
}

func (f *fakeTokens) Save(_ context.Context, pair models.TokenPair) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.pair = pair
	return nil
}

func (f *fakeTokens) AccessToken(ctx context.Context) (string, error) {
	return f.Get(ctx, tokens.KeyAccess)
}

func (f *fakeTokens) Clear(context.Context) error {
	f.cleared++
	if f.clearErr != nil {
		return f.clearErr
	}
	f.pair = models.TokenPair{}
	return nil
}

func TestSessionStore_InitialState(t *testing.T) {
	s := NewSessionStore(&fakeAuthAPI{}, &fakeTokens{}, nil)

	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())

	var seen []bool
	sub := s.Authenticated().Subscribe(func(v bool) { seen = append(seen, v) })
	defer sub.Unsubscribe()
	assert.Equal(t, []bool{false}, seen)
}

func TestSessionStore_BootstrapWithoutTokenSkipsNetwork(t *testing.T) {
	api := &fakeAuthAPI{}
	s := NewSessionStore(api, &fakeTokens{}, nil)

	require.NoError(t, s.Bootstrap(context.Background()))

	assert.Zero(t, api.meCalls)
	assert.False(t, s.IsAuthenticated())
}

func TestSessionStore_BootstrapRestoresSession(t *testing.T) {
	api := &fakeAuthAPI{me: models.User{ID: 7, Username: "ann"}}
	s := NewSessionStore(api, &fakeTokens{pair: models.TokenPair{Access: "a", Refresh: "r"}}, nil)

	require.NoError(t, s.Bootstrap(context.Background()))

	assert.True(t, s.IsAuthenticated())
	require.NotNil(t, s.User())
	assert.Equal(t, int64(7), s.User().ID)
}

func TestSessionStore_BootstrapFailureKeepsToken(t *testing.T) {
	api := &fakeAuthAPI{meErr: client.ErrUnauthorized}
	repo := &fakeTokens{pair: models.TokenPair{Access: "expired", Refresh: "r"}}
	s := NewSessionStore(api, repo, nil)

	err := s.Bootstrap(context.Background())

	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
	assert.Equal(t, "expired", repo.pair.Access)
}

func TestSessionStore_LoginPersistsAndLoadsUser(t *testing.T) {
	api := &fakeAuthAPI{
		pair: models.TokenPair{Access: "acc", Refresh: "ref"},
		me:   models.User{ID: 7, Username: "ann"},
	}
	repo := &fakeTokens{}
	s := NewSessionStore(api, repo, nil)

	require.NoError(t, s.Login(context.Background(), models.Credentials{Username: "ann", Password: "pw"}))

	assert.Equal(t, models.TokenPair{Access: "acc", Refresh: "ref"}, repo.pair)
	assert.True(t, s.IsAuthenticated())
	require.NotNil(t, s.User())
	assert.Equal(t, "ann", s.User().Username)

	ok, err := s.HasToken(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSessionStore_LoginRejected(t *testing.T) {
	api := &fakeAuthAPI{loginErr: client.ErrUnauthorized}
	repo := &fakeTokens{}
	s := NewSessionStore(api, repo, nil)

	err := s.Login(context.Background(), models.Credentials{Username: "ann", Password: "bad"})

	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, repo.pair.Access)
	assert.Zero(t, api.meCalls)
}

func TestSessionStore_LoginPersistFailure(t *testing.T) {
	api := &fakeAuthAPI{pair: models.TokenPair{Access: "acc", Refresh: "ref"}}
	s := NewSessionStore(api, &fakeTokens{saveErr: errors.New("disk full")}, nil)

	err := s.Login(context.Background(), models.Credentials{Username: "ann", Password: "pw"})

	require.ErrorContains(t, err, "persist tokens")
	assert.False(t, s.IsAuthenticated())
}

func TestSessionStore_LoginWhoAmIFailure(t *testing.T) {
	api := &fakeAuthAPI{pair: models.TokenPair{Access: "acc", Refresh: "ref"}, meErr: client.ErrNetwork}
	repo := &fakeTokens{}
	s := NewSessionStore(api, repo, nil)

	err := s.Login(context.Background(), models.Credentials{Username: "ann", Password: "pw"})

	require.ErrorIs(t, err, client.ErrNetwork)
	assert.True(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
	assert.Equal(t, "acc", repo.pair.Access)
}

func TestSessionStore_LogoutAlwaysClears(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, s *SessionStore)
		repo  *fakeTokens
	}{
		{
			name:  "never logged in",
			setup: func(*testing.T, *SessionStore) {},
			repo:  &fakeTokens{},
		},
		{
			name: "logged in",
			setup: func(t *testing.T, s *SessionStore) {
				require.NoError(t, s.Login(context.Background(), models.Credentials{Username: "ann"}))
			},
			repo: &fakeTokens{},
		},
		{
			name: "logged in, storage fails",
			setup: func(t *testing.T, s *SessionStore) {
				require.NoError(t, s.Login(context.Background(), models.Credentials{Username: "ann"}))
			},
			repo: &fakeTokens{clearErr: errors.New("locked")},
		},
		{
			name: "token but no user",
			setup: func(t *testing.T, s *SessionStore) {
				require.Error(t, s.Bootstrap(context.Background()))
			},
			repo: &fakeTokens{pair: models.TokenPair{Access: "stale"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAuthAPI{
				pair: models.TokenPair{Access: "acc", Refresh: "ref"},
				me:   models.User{ID: 7, Username: "ann"},
			}
			if tt.name == "token but no user" {
				api.meErr = client.ErrUnauthorized
			}
			s := NewSessionStore(api, tt.repo, nil)
			tt.setup(t, s)
			calls := api.meCalls

			s.Logout(context.Background())

			assert.False(t, s.IsAuthenticated())
			assert.Nil(t, s.User())
			assert.Equal(t, 1, tt.repo.cleared)
			assert.Equal(t, calls, api.meCalls, "logout makes no network call")
		})
	}
}

func TestSessionStore_LogoutDuringWhoAmIWins(t *testing.T) {
	api := &fakeAuthAPI{me: models.User{ID: 7}}
	s := NewSessionStore(api, &fakeTokens{pair: models.TokenPair{Access: "a"}}, nil)
	api.onMe = func() { s.Logout(context.Background()) }

	require.NoError(t, s.Bootstrap(context.Background()))

	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
}

func TestSessionStore_LogoutDuringLoginWins(t *testing.T) {
	api := &fakeAuthAPI{pair: models.TokenPair{Access: "acc", Refresh: "ref"}, me: models.User{ID: 7}}
	repo := &fakeTokens{}
	s := NewSessionStore(api, repo, nil)
	api.onLogin = func() { s.Logout(context.Background()) }

	err := s.Login(context.Background(), models.Credentials{Username: "ann", Password: "pw"})

	require.ErrorIs(t, err, ErrLoggedOut)
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
	assert.Empty(t, repo.pair.Access)
	assert.Zero(t, api.meCalls)
}

func TestSessionStore_LogoutRightAfterRestoreWins(t *testing.T) {
	api := &fakeAuthAPI{me: models.User{ID: 7}}
	repo := &fakeTokens{pair: models.TokenPair{Access: "a", Refresh: "r"}}
	s := NewSessionStore(api, repo, nil)

	done := make(chan struct{})
	sub := s.CurrentUser().Subscribe(func(u *models.User) {
		if u == nil {
			return
		}
		go func() {
			defer close(done)
			s.Logout(context.Background())
		}()
	})
	defer sub.Unsubscribe()

	require.NoError(t, s.Bootstrap(context.Background()))
	<-done

	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
	assert.Empty(t, repo.pair.Access)
}

func TestSessionStore_Register(t *testing.T) {
	s := NewSessionStore(&fakeAuthAPI{}, &fakeTokens{}, nil)

	u, err := s.Register(context.Background(), models.Registration{Username: "bob", Email: "b@example.com", Password: "pw"})
	require.NoError(t, err)

	assert.Equal(t, "bob", u.Username)
	assert.False(t, s.IsAuthenticated(), "register does not log in")
}

func TestSessionStore_ChangePassword(t *testing.T) {
	api := &fakeAuthAPI{}
	s := NewSessionStore(api, &fakeTokens{}, nil)

	require.NoError(t, s.ChangePassword(context.Background(), "old", "new"))
	assert.Equal(t, models.PasswordChange{OldPassword: "old", NewPassword: "new"}, api.lastChange)

	api.changeErr = client.NewValidationError("old_password", "wrong password")
	assert.ErrorIs(t, s.ChangePassword(context.Background(), "x", "y"), client.ErrValidation)
}

func TestSessionStore_DeleteAccount(t *testing.T) {
	api := &fakeAuthAPI{
		pair: models.TokenPair{Access: "acc", Refresh: "ref"},
		me:   models.User{ID: 7, Username: "ann"},
	}
	s := NewSessionStore(api, &fakeTokens{}, nil)

	require.ErrorIs(t, s.DeleteAccount(context.Background()), ErrNoSession)

	require.NoError(t, s.Login(context.Background(), models.Credentials{Username: "ann"}))
	require.NoError(t, s.DeleteAccount(context.Background()))

	assert.Equal(t, []int64{7}, api.deletedIDs)
	assert.True(t, s.IsAuthenticated(), "the caller logs out")

	s.Logout(context.Background())
	assert.False(t, s.IsAuthenticated())
}

func TestSessionStore_WithSQLiteTokens(t *testing.T) {
	ctx := context.Background()
	db, err := client.InitDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := tokens.NewSQLiteRepository(db)
	api := &fakeAuthAPI{
		pair: models.TokenPair{Access: "acc", Refresh: "ref"},
		me:   models.User{ID: 7, Username: "ann"},
	}

	first := NewSessionStore(api, repo, nil)
	require.NoError(t, first.Login(ctx, models.Credentials{Username: "ann", Password: "pw"}))

	second := NewSessionStore(api, repo, nil)
	require.NoError(t, second.Bootstrap(ctx))
	assert.True(t, second.IsAuthenticated())

	second.Logout(ctx)
	ok, err := second.HasToken(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
