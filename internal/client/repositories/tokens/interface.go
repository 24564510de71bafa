package tokens

import (
	"context"

	"github.com/dmitrijs2005/garagekeeper/internal/client/models"
)

const (
	KeyAccess  = "access"
	KeyRefresh = "refresh"
)

type Repository interface {
	// Get returns the stored value for key, or "" when absent.
	Get(ctx context.Context, key string) (string, error)
	// Save stores both tokens atomically.
	Save(ctx context.Context, pair models.TokenPair) error
	// AccessToken is Get(ctx, KeyAccess).
	AccessToken(ctx context.Context) (string, error)
	// Clear removes both tokens.
	Clear(ctx context.Context) error
}
