package trending

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"restaurant-reviews/internal/model"
	reviewRepository "restaurant-reviews/internal/repository/review"
	"restaurant-reviews/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, reviews []model.Review) *Service {
	t.Helper()
	repo := reviewRepository.NewMemory()
	require.NoError(t, repo.CreateMany(context.Background(), reviews))
	return New(repo)
}

func TestService_Compute_RanksByAverage(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	service := newService(t, []model.Review{
		{Id: "1", Restaurant: "Taco Hut", Rating: 5, Review: "first", Timestamp: base},
		{Id: "2", Restaurant: "Taco Hut", Rating: 3, Review: "second", PhotoUrl: utils.Ptr("https://img/taco.jpg"), Timestamp: base.Add(time.Hour)},
		{Id: "3", Restaurant: "Sushi Go", Rating: 4, Timestamp: base.Add(-time.Hour)},
	})

	snapshot, err := service.Compute(context.Background())
	require.NoError(t, err)

	require.Len(t, snapshot.TopRestaurants, 2)
	first := snapshot.TopRestaurants[0]
	assert.Equal(t, "Taco Hut", first.Restaurant)
	assert.Equal(t, 4.0, first.AverageRating)
	assert.Equal(t, 2, first.ReviewCount)
	assert.Equal(t, "https://img/taco.jpg", *first.PhotoUrl)
	require.NotNil(t, first.LatestReview)
	assert.Equal(t, "2", first.LatestReview.Id)

	second := snapshot.TopRestaurants[1]
	assert.Equal(t, "Sushi Go", second.Restaurant)
	assert.Equal(t, 4.0, second.AverageRating)
	assert.Nil(t, second.PhotoUrl)

	require.Len(t, snapshot.RecentActivity, 3)
	assert.Equal(t, []string{"2", "1", "3"}, []string{
		snapshot.RecentActivity[0].Id, snapshot.RecentActivity[1].Id, snapshot.RecentActivity[2].Id,
	})
	assert.Equal(t, ReviewedAction, snapshot.RecentActivity[0].Action)
}

func TestService_Compute_Caps(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	reviews := []model.Review{}
	for i := 0; i < 30; i++ {
		reviews = append(reviews, model.Review{
			Id:         fmt.Sprintf("r%02d", i),
			Restaurant: fmt.Sprintf("Restaurant %d", i%9),
			Rating:     i % 6,
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
		})
	}
	service := newService(t, reviews)

	snapshot, err := service.Compute(context.Background())
	require.NoError(t, err)

	assert.Len(t, snapshot.TopRestaurants, TopRestaurantsLimit)
	assert.Len(t, snapshot.RecentActivity, RecentActivityLimit)
	assert.Equal(t, "r29", snapshot.RecentActivity[0].Id)

	for i := 1; i < len(snapshot.TopRestaurants); i++ {
		assert.GreaterOrEqual(t, snapshot.TopRestaurants[i-1].AverageRating, snapshot.TopRestaurants[i].AverageRating)
	}
}

func TestService_Compute_AverageMatchesCorpus(t *testing.T) {
	ratings := map[string][]int{"A": {1, 2, 2}, "B": {5}, "C": {3, 4}}
	reviews := []model.Review{}
	for name, rs := range ratings {
		for _, r := range rs {
			reviews = append(reviews, model.Review{Restaurant: name, Rating: r})
		}
	}
	service := newService(t, reviews)

	snapshot, err := service.Compute(context.Background())
	require.NoError(t, err)

	for _, top := range snapshot.TopRestaurants {
		sum := 0
		for _, r := range ratings[top.Restaurant] {
			sum += r
		}
		assert.Equal(t, len(ratings[top.Restaurant]), top.ReviewCount)
		assert.InDelta(t, float64(sum)/float64(top.ReviewCount), top.AverageRating, 1e-9)
	}
}

func TestService_Compute_SkipsUnnamedRestaurants(t *testing.T) {
	service := newService(t, []model.Review{{Id: "x", Rating: 5}})

	snapshot, err := service.Compute(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snapshot.TopRestaurants)
	assert.Len(t, snapshot.RecentActivity, 1)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 100))
	assert.Equal(t, strings.Repeat("a", 100), truncate(strings.Repeat("a", 100), 100))
	assert.Equal(t, strings.Repeat("é", 100)+"...", truncate(strings.Repeat("é", 101), 100))
}
