package user

import (
	"context"

	"restaurant-reviews/internal/model"
)

type IRepository interface {
	GetById(ctx context.Context, id string) (*model.User, error)
	Create(ctx context.Context, id string, data model.User) error
	// Merge writes the non-nil fields of data, creating the user if needed.
	Merge(ctx context.Context, id string, data model.User) error
	IncrementReviewCount(ctx context.Context, id string) error
	// AddFavorite has set semantics and creates the user if needed.
	AddFavorite(ctx context.Context, id string, reviewId string) error
	RemoveFavorite(ctx context.Context, id string, reviewId string) error
}
