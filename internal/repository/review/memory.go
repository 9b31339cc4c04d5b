package review

import (
	"context"
	"fmt"
	"sync"
	"time"

	ierr "restaurant-reviews/internal/errors"
	"restaurant-reviews/internal/model"
	"restaurant-reviews/internal/repository/filter"
	"restaurant-reviews/internal/repository/ops"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MemoryRepository keeps reviews in insertion order, which is also its iteration order.
// It backs the service when no Firestore project is configured.
type MemoryRepository struct {
	mu      sync.RWMutex
	reviews []model.Review
	index   map[string]int

	listenersMu sync.RWMutex
	listeners   map[*listener]struct{}
}

type listener struct {
	queue chan model.Review
}

var _ IRepository = (*MemoryRepository)(nil)

func NewMemory() *MemoryRepository {
	return &MemoryRepository{
		index:     make(map[string]int),
		listeners: make(map[*listener]struct{}),
	}
}

func (r *MemoryRepository) List(ctx context.Context, where []filter.Where) ([]model.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	reviews := make([]model.Review, 0, len(r.reviews))
	for _, review := range r.reviews {
		if matches(review, where) {
			reviews = append(reviews, review)
		}
	}
	return reviews, nil
}

func (r *MemoryRepository) GetById(ctx context.Context, id string) (*model.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return nil, fmt.Errorf("get review: %w, id: %s", ierr.NotFound, id)
	}
	review := r.reviews[i]
	return &review, nil
}

func (r *MemoryRepository) Create(ctx context.Context, data model.Review) (model.Review, error) {
	if err := ctx.Err(); err != nil {
		return model.Review{}, fmt.Errorf("create review: %w", err)
	}

	if data.Timestamp.IsZero() {
		data.Timestamp = time.Now().UTC()
	}
	data.Id = uuid.NewString()

	r.mu.Lock()
	r.index[data.Id] = len(r.reviews)
	r.reviews = append(r.reviews, data)
	r.mu.Unlock()

	r.notify(data)
	return data, nil
}

// CreateMany keeps the given ids, which lets sample data reference reviews from user favorites.
func (r *MemoryRepository) CreateMany(ctx context.Context, data []model.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, review := range data {
		if review.Id == "" {
			review.Id = uuid.NewString()
		}
		if review.Timestamp.IsZero() {
			review.Timestamp = time.Now().UTC()
		}
		if i, ok := r.index[review.Id]; ok {
			r.reviews[i] = review
			continue
		}
		r.index[review.Id] = len(r.reviews)
		r.reviews = append(r.reviews, review)
	}
	return nil
}

func (r *MemoryRepository) UpdateSentiment(ctx context.Context, id string, sentiment model.Sentiment) error {
	if sentiment.CreatedAt.IsZero() {
		sentiment.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return fmt.Errorf("update review sentiment: %w, id: %s", ierr.NotFound, id)
	}
	r.reviews[i].Sentiment = &sentiment
	return nil
}

func (r *MemoryRepository) NotifyOnAdded(ctx context.Context) <-chan ReviewEvent {
	ch := make(chan ReviewEvent)
	l := &listener{queue: make(chan model.Review, listenerQueueSize)}

	r.listenersMu.Lock()
	r.listeners[l] = struct{}{}
	r.listenersMu.Unlock()

	go func() {
		defer close(ch)
		defer func() {
			r.listenersMu.Lock()
			delete(r.listeners, l)
			r.listenersMu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case review := <-l.queue:
				select {
				case ch <- ReviewEvent{Review: review}:
				case <-ctx.Done():
					return
				case <-time.After(channelWriteTimeout):
					log.Error().Str("id", review.Id).Msg("review repo: timedout to deliver an added review")
				}
			}
		}
	}()

	return ch
}

func (r *MemoryRepository) notify(review model.Review) {
	r.listenersMu.RLock()
	defer r.listenersMu.RUnlock()

	for l := range r.listeners {
		select {
		case l.queue <- review:
		default:
			log.Warn().Str("id", review.Id).Msg("review repo: listener queue is full, dropping event")
		}
	}
}

func matches(review model.Review, where []filter.Where) bool {
	for _, w := range where {
		value, ok := fieldValue(review, w.Path)
		if !ok || !ops.Apply(w.Op, value, w.Value) {
			return false
		}
	}
	return true
}

func fieldValue(review model.Review, path string) (interface{}, bool) {
	switch path {
	case RestaurantFieldPath:
		return review.Restaurant, true
	case RatingFieldPath:
		return review.Rating, true
	case FoodRatingFieldPath:
		return review.FoodRating, true
	case ServiceRatingFieldPath:
		return review.ServiceRating, true
	case AmbianceRatingFieldPath:
		return review.AmbianceRating, true
	case ReviewFieldPath:
		return review.Review, true
	case UserIdFieldPath:
		return review.UserId, true
	case TimestampFieldPath:
		return review.Timestamp, true
	}
	return nil, false
}
