package trending

import (
	"context"
	"sort"
	"unicode/utf8"

	"restaurant-reviews/internal/model"
	reviewRepository "restaurant-reviews/internal/repository/review"
)

const (
	TopRestaurantsLimit = 6
	RecentActivityLimit = 10
	ActivityTextLimit   = 100

	ReviewedAction = "reviewed"
	ellipsis       = "..."
)

type IService interface {
	// Compute scans every review on each call. Nothing is cached.
	Compute(ctx context.Context) (model.TrendingSnapshot, error)
}

type Service struct {
	reviewRepo reviewRepository.IRepository
}

var _ IService = (*Service)(nil)

func New(reviewRepo reviewRepository.IRepository) *Service {
	return &Service{reviewRepo: reviewRepo}
}

func (s *Service) Compute(ctx context.Context) (model.TrendingSnapshot, error) {
	reviews, err := s.reviewRepo.List(ctx, nil)
	if err != nil {
		return model.TrendingSnapshot{}, err
	}

	return model.TrendingSnapshot{
		TopRestaurants: topRestaurants(reviews),
		RecentActivity: recentActivity(reviews),
	}, nil
}

type accumulator struct {
	restaurant string
	sum        int
	count      int
	photo      *string
	latest     *model.Review
}

// topRestaurants ranks by average rating. Equal averages keep the order in which
// the restaurants were first seen.
func topRestaurants(reviews []model.Review) []model.TopRestaurant {
	order := []*accumulator{}
	byName := map[string]*accumulator{}

	for i := range reviews {
		r := &reviews[i]
		if r.Restaurant == "" {
			continue
		}

		acc, ok := byName[r.Restaurant]
		if !ok {
			acc = &accumulator{restaurant: r.Restaurant}
			byName[r.Restaurant] = acc
			order = append(order, acc)
		}

		acc.sum += r.Rating
		acc.count++
		if acc.photo == nil && r.PhotoUrl != nil && *r.PhotoUrl != "" {
			acc.photo = r.PhotoUrl
		}
		if acc.latest == nil || r.Timestamp.After(acc.latest.Timestamp) {
			acc.latest = r
		}
	}

	top := make([]model.TopRestaurant, 0, len(order))
	for _, acc := range order {
		top = append(top, model.TopRestaurant{
			Restaurant:    acc.restaurant,
			AverageRating: float64(acc.sum) / float64(acc.count),
			ReviewCount:   acc.count,
			PhotoUrl:      acc.photo,
			LatestReview: &model.LatestReview{
				Id:        acc.latest.Id,
				Review:    acc.latest.Review,
				Rating:    acc.latest.Rating,
				Timestamp: acc.latest.Timestamp,
			},
		})
	}

	sort.SliceStable(top, func(i, j int) bool {
		return top[i].AverageRating > top[j].AverageRating
	})

	if len(top) > TopRestaurantsLimit {
		top = top[:TopRestaurantsLimit]
	}
	return top
}

func recentActivity(reviews []model.Review) []model.Activity {
	sorted := make([]model.Review, len(reviews))
	copy(sorted, reviews)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	if len(sorted) > RecentActivityLimit {
		sorted = sorted[:RecentActivityLimit]
	}

	activity := make([]model.Activity, 0, len(sorted))
	for _, r := range sorted {
		activity = append(activity, model.Activity{
			Id:         r.Id,
			Restaurant: r.Restaurant,
			UserName:   r.UserName,
			UserId:     r.UserId,
			Action:     ReviewedAction,
			Rating:     r.Rating,
			Review:     truncate(r.Review, ActivityTextLimit),
			PhotoUrl:   r.PhotoUrl,
			Timestamp:  r.Timestamp,
		})
	}
	return activity
}

func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit]) + ellipsis
}
