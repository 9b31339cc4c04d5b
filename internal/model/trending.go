package model

import "time"

type TrendingSnapshot struct {
	TopRestaurants []TopRestaurant `json:"topRestaurants"`
	RecentActivity []Activity      `json:"recentActivity"`
}

type TopRestaurant struct {
	Restaurant    string        `json:"restaurant"`
	AverageRating float64       `json:"averageRating"`
	ReviewCount   int           `json:"reviewCount"`
	PhotoUrl      *string       `json:"photoUrl"`
	LatestReview  *LatestReview `json:"latestReview"`
}

type LatestReview struct {
	Id        string    `json:"id"`
	Review    string    `json:"review"`
	Rating    int       `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}

type Activity struct {
	Id         string    `json:"id"`
	Restaurant string    `json:"restaurant"`
	UserName   string    `json:"userName"`
	UserId     string    `json:"userId"`
	Action     string    `json:"action"`
	Rating     int       `json:"rating"`
	Review     string    `json:"review"`
	PhotoUrl   *string   `json:"photoUrl"`
	Timestamp  time.Time `json:"timestamp"`
}
