package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	ierr "restaurant-reviews/internal/errors"
	"restaurant-reviews/internal/identity"
	"restaurant-reviews/internal/model"
	userRepository "restaurant-reviews/internal/repository/user"
	"restaurant-reviews/internal/utils"
)

const defaultUserName = "User"

type IService interface {
	// GetOrCreate materializes a profile for subjects the identity provider knows.
	GetOrCreate(ctx context.Context, userId string) (*model.User, error)
	UpdateProfile(ctx context.Context, userId string, callerId string, patch model.User) error
	// AddFavorite does not check the caller. Any caller may change any user's favorites.
	AddFavorite(ctx context.Context, userId string, reviewId string) error
	RemoveFavorite(ctx context.Context, userId string, callerId string, reviewId string) error
}

type Service struct {
	userRepo userRepository.IRepository
	identity identity.IProvider
}

var _ IService = (*Service)(nil)

func New(userRepo userRepository.IRepository, identity identity.IProvider) *Service {
	return &Service{
		userRepo: userRepo,
		identity: identity,
	}
}

func (s *Service) GetOrCreate(ctx context.Context, userId string) (*model.User, error) {

	user, err := s.userRepo.GetById(ctx, userId)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ierr.NotFound) {
		return nil, err
	}

	known, err := s.identity.LookupUser(ctx, userId)
	if err != nil {
		return nil, err
	}

	name := known.DisplayName
	if name == "" {
		name = defaultUserName
	}

	user = &model.User{
		Name:        utils.Ptr(name),
		Email:       utils.Ptr(known.Email),
		Favorites:   []string{},
		ReviewCount: utils.Ptr(0),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, userId, *user); err != nil {
		return nil, err
	}

	user.Id = utils.Ptr(userId)
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userId string, callerId string, patch model.User) error {
	if callerId != userId {
		return fmt.Errorf("%w: cannot update another user's profile", ierr.Forbidden)
	}

	// provider owned and derived fields
	patch.Email = nil
	patch.ReviewCount = nil
	patch.Id = nil

	return s.userRepo.Merge(ctx, userId, patch)
}

func (s *Service) AddFavorite(ctx context.Context, userId string, reviewId string) error {
	if reviewId == "" {
		return fmt.Errorf("%w: review id is required", ierr.InvalidArgument)
	}
	return s.userRepo.AddFavorite(ctx, userId, reviewId)
}

func (s *Service) RemoveFavorite(ctx context.Context, userId string, callerId string, reviewId string) error {
	if callerId != userId {
		return fmt.Errorf("%w: cannot change another user's favorites", ierr.Forbidden)
	}
	return s.userRepo.RemoveFavorite(ctx, userId, reviewId)
}
