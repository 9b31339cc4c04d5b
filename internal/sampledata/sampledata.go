package sampledata

import (
	"context"
	"fmt"
	"time"

	"restaurant-reviews/internal/identity"
	"restaurant-reviews/internal/model"
	reviewRepository "restaurant-reviews/internal/repository/review"
	userRepository "restaurant-reviews/internal/repository/user"
	"restaurant-reviews/internal/utils"
)

const day = time.Hour * 24

// Reviews returns the demo corpus, newest first relative to now.
func Reviews(now time.Time) []model.Review {
	return []model.Review{
		{
			Id:             "1",
			Restaurant:     "Delicious Bites",
			Rating:         5,
			FoodRating:     5,
			ServiceRating:  4,
			AmbianceRating: 5,
			Review:         "Amazing food and atmosphere! The staff was very friendly and the dishes were incredibly flavorful.",
			UserId:         "user1",
			UserName:       "John Smith",
			Location:       &model.Location{Lat: 37.7749, Lng: -122.4194},
			Timestamp:      now,
		},
		{
			Id:             "2",
			Restaurant:     "Golden Dragon",
			Rating:         4,
			FoodRating:     4,
			ServiceRating:  3,
			AmbianceRating: 4,
			Review:         "Authentic Chinese cuisine with great flavor. Service was a bit slow but the food made up for it.",
			UserId:         "user2",
			UserName:       "Emily Johnson",
			Location:       &model.Location{Lat: 37.7833, Lng: -122.4167},
			Timestamp:      now.Add(-day),
		},
		{
			Id:             "3",
			Restaurant:     "Pasta Paradise",
			Rating:         5,
			FoodRating:     5,
			ServiceRating:  5,
			AmbianceRating: 4,
			Review:         "Best Italian food in town! The homemade pasta was exceptional and the service was top-notch.",
			UserId:         "user3",
			UserName:       "Michael Brown",
			Location:       &model.Location{Lat: 37.7900, Lng: -122.4000},
			Timestamp:      now.Add(-2 * day),
		},
	}
}

type SampleUser struct {
	Id   string
	User model.User
}

func Users(now time.Time) []SampleUser {
	return []SampleUser{
		{Id: "user1", User: newUser("John Smith", "john@example.com", []string{"2"}, now.Add(-10*day))},
		{Id: "user2", User: newUser("Emily Johnson", "emily@example.com", []string{"1", "3"}, now.Add(-15*day))},
		{Id: "user3", User: newUser("Michael Brown", "michael@example.com", []string{}, now.Add(-20*day))},
	}
}

// Identities lets the static identity provider know the sample users.
func Identities() []identity.Identity {
	identities := []identity.Identity{}
	for _, u := range Users(time.Now()) {
		identities = append(identities, identity.Identity{
			UID:         u.Id,
			DisplayName: *u.User.Name,
			Email:       *u.User.Email,
		})
	}
	return identities
}

func Seed(ctx context.Context, reviewRepo reviewRepository.IRepository, userRepo userRepository.IRepository) error {
	now := time.Now().UTC()

	if err := reviewRepo.CreateMany(ctx, Reviews(now)); err != nil {
		return fmt.Errorf("seed reviews: %w", err)
	}

	for _, u := range Users(now) {
		if err := userRepo.Create(ctx, u.Id, u.User); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
	}
	return nil
}

func newUser(name, email string, favorites []string, createdAt time.Time) model.User {
	return model.User{
		Name:        utils.Ptr(name),
		Email:       utils.Ptr(email),
		Favorites:   favorites,
		ReviewCount: utils.Ptr(1),
		CreatedAt:   createdAt,
	}
}
