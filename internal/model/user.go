package model

import "time"

// User is a profile document keyed by the identity provider's subject.
// Nil pointer fields are left untouched by partial updates.
type User struct {
	Id          *string   `firestore:"-" json:"id"`
	Name        *string   `firestore:"name,omitempty" json:"name,omitempty"`
	Email       *string   `firestore:"email,omitempty" json:"email,omitempty"`
	Favorites   []string  `firestore:"favorites" json:"favorites"`
	ReviewCount *int      `firestore:"reviewCount,omitempty" json:"reviewCount"`
	CreatedAt   time.Time `firestore:"createdAt,omitempty" json:"createdAt"`
}
