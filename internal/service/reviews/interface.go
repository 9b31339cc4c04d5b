package reviews

import (
	"context"

	"restaurant-reviews/internal/model"
)

type IService interface {
	List(ctx context.Context, filter Filter) ([]model.Review, error)
	Get(ctx context.Context, id string) (*model.Review, error)
	// Create stores the optional photo, then the review, then bumps the author's review count.
	Create(ctx context.Context, payload Payload, photo *Photo) (model.Review, error)
}

// Publisher announces stored reviews to downstream consumers.
type Publisher interface {
	PublishReview(ctx context.Context, msg model.ReviewMessage) error
}
