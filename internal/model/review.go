package model

import "time"

const (
	AnonymousUserId   = "anonymous"
	AnonymousUserName = "Anonymous User"
)

type Review struct {
	Id             string     `firestore:"-" json:"id"`
	Restaurant     string     `firestore:"restaurant" json:"restaurant"`
	Rating         int        `firestore:"rating" json:"rating"`
	FoodRating     int        `firestore:"foodRating" json:"foodRating"`
	ServiceRating  int        `firestore:"serviceRating" json:"serviceRating"`
	AmbianceRating int        `firestore:"ambianceRating" json:"ambianceRating"`
	Review         string     `firestore:"review" json:"review"`
	PhotoUrl       *string    `firestore:"photoUrl" json:"photoUrl"`
	UserId         string     `firestore:"userId" json:"userId"`
	UserName       string     `firestore:"userName" json:"userName"`
	Location       *Location  `firestore:"location" json:"location"`
	Sentiment      *Sentiment `firestore:"sentiment,omitempty" json:"sentiment,omitempty"`
	Timestamp      time.Time  `firestore:"timestamp" json:"timestamp"`
}

type Location struct {
	Lat float64 `firestore:"lat" json:"lat"`
	Lng float64 `firestore:"lng" json:"lng"`
}

// Sentiment is the label assigned to a review's text, scored 0 (very negative) to 5 (very positive).
type Sentiment struct {
	Label     string    `firestore:"label" json:"label"`
	Score     int       `firestore:"score" json:"score"`
	CreatedAt time.Time `firestore:"createdAt,omitempty" json:"createdAt"`
}

// ReviewMessage is published to the message broker after a review is stored.
type ReviewMessage struct {
	Type       string    `json:"type"`
	ReviewId   string    `json:"reviewId"`
	Restaurant string    `json:"restaurant"`
	UserId     string    `json:"userId"`
	Rating     int       `json:"rating"`
	Timestamp  time.Time `json:"timestamp"`
}
