package review

import "time"

const (
	// collection name
	reviewNode string = "reviews"

	// Fields' name and path
	RestaurantFieldPath     string = "restaurant"
	RatingFieldPath         string = "rating"
	FoodRatingFieldPath     string = "foodRating"
	ServiceRatingFieldPath  string = "serviceRating"
	AmbianceRatingFieldPath string = "ambianceRating"
	ReviewFieldPath         string = "review"
	UserIdFieldPath         string = "userId"
	SentimentFieldPath      string = "sentiment"
	TimestampFieldPath      string = "timestamp"

	// It must not exceed the write timeout of the database.firestore.notifyOnChanges
	channelWriteTimeout time.Duration = time.Second * 3

	// pending added-review notifications per in-memory listener
	listenerQueueSize = 64
)
