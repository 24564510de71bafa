package cache

import (
	"context"

	"github.com/dmitrijs2005/garagekeeper/internal/client/client"
	"github.com/dmitrijs2005/garagekeeper/internal/client/models"
	"github.com/dmitrijs2005/garagekeeper/internal/client/policy"
	"github.com/dmitrijs2005/garagekeeper/internal/logging"
)

// UserCache mirrors the admin roster at /admin/users/. It is independent of
// the session's own user record: editing the caller here does not refresh
// the session.
type UserCache struct {
	*EntityCache[models.User, models.UserPayload]
	api client.UsersAPI
}

func NewUserCache(api client.UsersAPI, log logging.Logger) *UserCache {
	return &UserCache{
		EntityCache: New[models.User, models.UserPayload]("users", userEndpoint{api: api}, log),
		api:         api,
	}
}

// Get fetches a single user. The result is not written to the cache.
func (c *UserCache) Get(ctx context.Context, id int64) (models.User, error) {
	return c.api.GetUser(ctx, id)
}

type userEndpoint struct {
	api client.UsersAPI
}

func (e userEndpoint) List(ctx context.Context) ([]models.User, error) {
	return e.api.ListUsers(ctx)
}

// Create ignores the variant: the roster has a single create endpoint.
func (e userEndpoint) Create(ctx context.Context, _ policy.WriteVariant, user models.UserPayload) (models.User, error) {
	return e.api.CreateUser(ctx, user)
}

func (e userEndpoint) Update(ctx context.Context, id int64, user models.UserPayload) (models.User, error) {
	return e.api.UpdateUser(ctx, id, user)
}

func (e userEndpoint) Delete(ctx context.Context, id int64) error {
	return e.api.DeleteUser(ctx, id)
}
