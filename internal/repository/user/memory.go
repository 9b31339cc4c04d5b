package user

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	ierr "restaurant-reviews/internal/errors"
	"restaurant-reviews/internal/model"
	"restaurant-reviews/internal/utils"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]model.User
}

var _ IRepository = (*MemoryRepository)(nil)

func NewMemory() *MemoryRepository {
	return &MemoryRepository{
		users: make(map[string]model.User),
	}
}

func (r *MemoryRepository) GetById(ctx context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w, id: %s", ierr.NotFound, id)
	}

	user = clone(user)
	user.Id = utils.Ptr(id)
	return &user, nil
}

func (r *MemoryRepository) Create(ctx context.Context, id string, data model.User) error {
	if data.CreatedAt.IsZero() {
		data.CreatedAt = time.Now().UTC()
	}
	if data.Favorites == nil {
		data.Favorites = []string{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[id] = clone(data)
	return nil
}

func (r *MemoryRepository) Merge(ctx context.Context, id string, data model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		user = model.User{Favorites: []string{}}
	}

	if data.Name != nil {
		user.Name = utils.Ptr(*data.Name)
	}
	if data.Email != nil {
		user.Email = utils.Ptr(*data.Email)
	}
	if data.Favorites != nil {
		user.Favorites = slices.Clone(data.Favorites)
	}
	if data.ReviewCount != nil {
		user.ReviewCount = utils.Ptr(*data.ReviewCount)
	}

	r.users[id] = user
	return nil
}

func (r *MemoryRepository) IncrementReviewCount(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("increment review count: %w, id: %s", ierr.NotFound, id)
	}

	count := 1
	if user.ReviewCount != nil {
		count = *user.ReviewCount + 1
	}
	user.ReviewCount = &count
	r.users[id] = user
	return nil
}

func (r *MemoryRepository) AddFavorite(ctx context.Context, id string, reviewId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		user = model.User{Favorites: []string{}}
	}

	if !slices.Contains(user.Favorites, reviewId) {
		user.Favorites = append(slices.Clone(user.Favorites), reviewId)
	}
	r.users[id] = user
	return nil
}

func (r *MemoryRepository) RemoveFavorite(ctx context.Context, id string, reviewId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("remove favorite: %w, id: %s", ierr.NotFound, id)
	}

	user.Favorites = slices.DeleteFunc(slices.Clone(user.Favorites), func(fav string) bool {
		return fav == reviewId
	})
	r.users[id] = user
	return nil
}

func clone(user model.User) model.User {
	if user.Name != nil {
		user.Name = utils.Ptr(*user.Name)
	}
	if user.Email != nil {
		user.Email = utils.Ptr(*user.Email)
	}
	if user.ReviewCount != nil {
		user.ReviewCount = utils.Ptr(*user.ReviewCount)
	}
	user.Favorites = slices.Clone(user.Favorites)
	if user.Favorites == nil {
		user.Favorites = []string{}
	}
	return user
}
