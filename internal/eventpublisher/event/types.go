package event

import "restaurant-reviews/internal/model"

type (
	// Event carries either a newly added review or the error that ended the feed.
	Event struct {
		Review model.Review
		Err    error
	}

	EventChannel  chan Event
	EventWChannel chan<- Event
)
