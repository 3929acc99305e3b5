package repository

import (
	"context"

	"artisanx/internal/domain/entity"
)

// CartRepository persists the cart and favorites of identified users.
// Load returns an empty cart for unknown users.
type CartRepository interface {
	Load(ctx context.Context, userID string) (*entity.Cart, error)
	Save(ctx context.Context, userID string, cart *entity.Cart) error
	Delete(ctx context.Context, userID string) error
}
