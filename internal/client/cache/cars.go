package cache

import (
	"context"

	"github.com/dmitrijs2005/garagekeeper/internal/client/client"
	"github.com/dmitrijs2005/garagekeeper/internal/client/models"
	"github.com/dmitrijs2005/garagekeeper/internal/client/policy"
	"github.com/dmitrijs2005/garagekeeper/internal/logging"
)

// CarCache mirrors GET /cars/. The backend scopes the list to the caller for
// regular users and returns every car for admins.
type CarCache struct {
	*EntityCache[models.Car, models.CarPayload]
}

func NewCarCache(api client.CarsAPI, log logging.Logger) *CarCache {
	return &CarCache{EntityCache: New[models.Car, models.CarPayload]("cars", carEndpoint{api: api}, log)}
}

type carEndpoint struct {
	api client.CarsAPI
}

func (e carEndpoint) List(ctx context.Context) ([]models.Car, error) {
	return e.api.ListCars(ctx)
}

// Create routes WriteForOwner to /cars/owner/{ownerId}/ and everything else to
// /cars/. A for-owner create without an owner is rejected before any request.
func (e carEndpoint) Create(ctx context.Context, variant policy.WriteVariant, car models.CarPayload) (models.Car, error) {
	if variant == policy.WriteForOwner {
		if car.OwnerID <= 0 {
			return models.Car{}, client.NewValidationError("owner_id", "an owner is required")
		}
		return e.api.CreateCarForOwner(ctx, car.OwnerID, car)
	}
	return e.api.CreateCar(ctx, car)
}

func (e carEndpoint) Update(ctx context.Context, id int64, car models.CarPayload) (models.Car, error) {
	return e.api.UpdateCar(ctx, id, car)
}

func (e carEndpoint) Delete(ctx context.Context, id int64) error {
	return e.api.DeleteCar(ctx, id)
}
