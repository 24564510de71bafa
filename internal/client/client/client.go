package client

import (
	"context"

	"github.com/dmitrijs2005/garagekeeper/internal/client/models"
)

// AuthAPI covers session-related endpoints.
type AuthAPI interface {
	Me(ctx context.Context) (models.User, error)
	Login(ctx context.Context, creds models.Credentials) (models.TokenPair, error)
	Register(ctx context.Context, reg models.Registration) (models.User, error)
	ChangePassword(ctx context.Context, change models.PasswordChange) error
	DeleteAccount(ctx context.Context, userID int64) error
}

// CarsAPI covers /cars/. Creating for the caller and creating on behalf of an
// owner are two distinct endpoints.
type CarsAPI interface {
	ListCars(ctx context.Context) ([]models.Car, error)
	CreateCar(ctx context.Context, car models.CarPayload) (models.Car, error)
	CreateCarForOwner(ctx context.Context, ownerID int64, car models.CarPayload) (models.Car, error)
	UpdateCar(ctx context.Context, id int64, car models.CarPayload) (models.Car, error)
	DeleteCar(ctx context.Context, id int64) error
}

// UsersAPI covers the admin roster under /admin/users/.
type UsersAPI interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	CreateUser(ctx context.Context, user models.UserPayload) (models.User, error)
	UpdateUser(ctx context.Context, id int64, user models.UserPayload) (models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type Client interface {
	AuthAPI
	CarsAPI
	UsersAPI
}

// TokenSource yields the access token to attach to outgoing requests. An
// empty token means the request goes out unauthenticated.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}
