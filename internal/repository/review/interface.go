package review

import (
	"context"

	"restaurant-reviews/internal/model"
	"restaurant-reviews/internal/repository/filter"
)

type ReviewEvent struct {
	Review model.Review
	Err    error
}

type IRepository interface {
	// List returns the reviews matching every predicate, in store iteration order. A nil where is a full scan.
	List(ctx context.Context, where []filter.Where) ([]model.Review, error)
	GetById(ctx context.Context, id string) (*model.Review, error)
	Create(ctx context.Context, data model.Review) (model.Review, error)
	CreateMany(ctx context.Context, data []model.Review) error
	UpdateSentiment(ctx context.Context, id string, sentiment model.Sentiment) error
	// NotifyOnAdded streams reviews added after the call until ctx is done.
	NotifyOnAdded(ctx context.Context) <-chan ReviewEvent
}
