package search

import (
	"context"
	"fmt"
	"strings"

	ierr "restaurant-reviews/internal/errors"
	"restaurant-reviews/internal/model"
	reviewRepository "restaurant-reviews/internal/repository/review"
)

type IService interface {
	Search(ctx context.Context, query string) ([]model.Review, error)
}

type Service struct {
	reviewRepo reviewRepository.IRepository
}

var _ IService = (*Service)(nil)

func New(reviewRepo reviewRepository.IRepository) *Service {
	return &Service{reviewRepo: reviewRepo}
}

// Search matches the query case-insensitively against the restaurant name or the review text.
func (s *Service) Search(ctx context.Context, query string) ([]model.Review, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", ierr.InvalidArgument)
	}

	reviews, err := s.reviewRepo.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	matches := make([]model.Review, 0)
	for _, r := range reviews {
		if strings.Contains(strings.ToLower(r.Restaurant), needle) || strings.Contains(strings.ToLower(r.Review), needle) {
			matches = append(matches, r)
		}
	}
	return matches, nil
}
