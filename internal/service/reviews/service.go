package reviews

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"reflect"
	"sort"
	"strings"
	"time"

	"restaurant-reviews/internal/blobstore"
	ierr "restaurant-reviews/internal/errors"
	"restaurant-reviews/internal/model"
	"restaurant-reviews/internal/repository/filter"
	"restaurant-reviews/internal/repository/ops"
	reviewRepository "restaurant-reviews/internal/repository/review"
	userRepository "restaurant-reviews/internal/repository/user"
	"restaurant-reviews/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

const (
	OrderDesc = "desc"

	ReviewCreatedMessage = "review.created"

	publishTimeout = time.Second * 10
)

// ErrRejectedUpload is returned for non-image or oversized photos, before anything is stored.
var ErrRejectedUpload = errors.New("rejected upload")

type Service struct {
	reviewRepo     reviewRepository.IRepository
	userRepo       userRepository.IRepository
	blobs          blobstore.Store
	publisher      Publisher
	validate       *validator.Validate
	maxUploadBytes int64
}

var _ IService = (*Service)(nil)

// New returns the review service. publisher may be nil.
func New(
	reviewRepo reviewRepository.IRepository,
	userRepo userRepository.IRepository,
	blobs blobstore.Store,
	publisher Publisher,
	maxUploadBytes int64) *Service {

	return &Service{
		reviewRepo:     reviewRepo,
		userRepo:       userRepo,
		blobs:          blobs,
		publisher:      publisher,
		validate:       newValidator(),
		maxUploadBytes: maxUploadBytes,
	}
}

func (s *Service) List(ctx context.Context, f Filter) ([]model.Review, error) {

	where := []filter.Where{}
	if f.Restaurant != "" {
		where = append(where, filter.Where{Path: reviewRepository.RestaurantFieldPath, Op: ops.Equal, Value: f.Restaurant})
	}
	if f.MinRating != nil {
		where = append(where, filter.Where{Path: reviewRepository.RatingFieldPath, Op: ops.GreaterOrEqual, Value: *f.MinRating})
	}
	if f.UserId != "" {
		where = append(where, filter.Where{Path: reviewRepository.UserIdFieldPath, Op: ops.Equal, Value: f.UserId})
	}

	reviews, err := s.reviewRepo.List(ctx, where)
	if err != nil {
		return nil, err
	}

	sortReviews(reviews, f.SortBy, f.Order)
	return reviews, nil
}

// sortReviews orders by a numeric field when sortBy names one, otherwise newest first.
func sortReviews(reviews []model.Review, sortBy string, order string) {
	key := sortKey(sortBy)
	if key == nil {
		sort.SliceStable(reviews, func(i, j int) bool {
			return reviews[i].Timestamp.After(reviews[j].Timestamp)
		})
		return
	}

	desc := strings.EqualFold(order, OrderDesc)
	sort.SliceStable(reviews, func(i, j int) bool {
		if desc {
			return key(reviews[i]) > key(reviews[j])
		}
		return key(reviews[i]) < key(reviews[j])
	})
}

func sortKey(field string) func(model.Review) int64 {
	switch field {
	case reviewRepository.RatingFieldPath:
		return func(r model.Review) int64 { return int64(r.Rating) }
	case reviewRepository.FoodRatingFieldPath:
		return func(r model.Review) int64 { return int64(r.FoodRating) }
	case reviewRepository.ServiceRatingFieldPath:
		return func(r model.Review) int64 { return int64(r.ServiceRating) }
	case reviewRepository.AmbianceRatingFieldPath:
		return func(r model.Review) int64 { return int64(r.AmbianceRating) }
	case reviewRepository.TimestampFieldPath:
		return func(r model.Review) int64 { return r.Timestamp.UnixNano() }
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Review, error) {
	return s.reviewRepo.GetById(ctx, id)
}

func (s *Service) Create(ctx context.Context, payload Payload, photo *Photo) (model.Review, error) {

	payload = payload.sanitized()
	if err := s.validate.Struct(payload); err != nil {
		return model.Review{}, fmt.Errorf("%w: %s", ierr.InvalidArgument, validationMessage(err))
	}

	var photoData []byte
	if photo != nil {
		data, err := s.readPhoto(photo)
		if err != nil {
			return model.Review{}, err
		}
		photoData = data
	}

	review := model.Review{
		Restaurant:     payload.Restaurant,
		Rating:         int(payload.Rating),
		FoodRating:     int(payload.FoodRating),
		ServiceRating:  int(payload.ServiceRating),
		AmbianceRating: int(payload.AmbianceRating),
		Review:         payload.Review,
		UserId:         payload.UserId,
		UserName:       payload.UserName,
		Location:       payload.Location,
		Timestamp:      time.Now().UTC(),
	}
	if review.UserId == "" {
		review.UserId = model.AnonymousUserId
	}
	if review.UserName == "" {
		review.UserName = model.AnonymousUserName
	}

	if photo != nil {
		url, err := s.blobs.Put(ctx, blobstore.NewKey(photo.Filename), photo.ContentType, bytes.NewReader(photoData))
		if err != nil {
			return model.Review{}, fmt.Errorf("upload review photo: %w", err)
		}
		review.PhotoUrl = utils.Ptr(url)
	}

	review, err := s.reviewRepo.Create(ctx, review)
	if err != nil {
		return model.Review{}, err
	}

	s.incrementReviewCount(ctx, review.UserId)
	s.publish(ctx, review)

	return review, nil
}

// readPhoto buffers the upload so that a rejected photo never reaches the blob store.
func (s *Service) readPhoto(photo *Photo) ([]byte, error) {
	mediaType, _, err := mime.ParseMediaType(photo.ContentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return nil, fmt.Errorf("%w: only image files are allowed, got %q", ErrRejectedUpload, photo.ContentType)
	}

	if photo.Size > s.maxUploadBytes {
		return nil, fmt.Errorf("%w: file is larger than %d bytes", ErrRejectedUpload, s.maxUploadBytes)
	}

	data, err := io.ReadAll(io.LimitReader(photo.Body, s.maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read review photo: %w", err)
	}
	if int64(len(data)) > s.maxUploadBytes {
		return nil, fmt.Errorf("%w: file is larger than %d bytes", ErrRejectedUpload, s.maxUploadBytes)
	}

	return data, nil
}

// incrementReviewCount is best effort. The review is already stored, so failures are only logged.
func (s *Service) incrementReviewCount(ctx context.Context, userId string) {
	if userId == model.AnonymousUserId {
		return
	}

	if _, err := s.userRepo.GetById(ctx, userId); err != nil {
		if !errors.Is(err, ierr.NotFound) {
			log.Error().Err(err).Str("userId", userId).Msg("review service: failed to read review author")
		}
		return
	}

	if err := s.userRepo.IncrementReviewCount(ctx, userId); err != nil {
		log.Error().Err(err).Str("userId", userId).Msg("review service: failed to increment review count")
	}
}

func (s *Service) publish(ctx context.Context, review model.Review) {
	if s.publisher == nil {
		return
	}

	msg := model.ReviewMessage{
		Type:       ReviewCreatedMessage,
		ReviewId:   review.Id,
		Restaurant: review.Restaurant,
		UserId:     review.UserId,
		Rating:     review.Rating,
		Timestamp:  review.Timestamp,
	}

	// the request may finish before the broker acknowledges
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	go func() {
		defer cancel()
		if err := s.publisher.PublishReview(ctx, msg); err != nil {
			log.Error().Err(err).Str("id", msg.ReviewId).Msg("review service: failed to publish review")
		}
	}()
}

// newValidator reports fields by their json names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "max":
			if fe.Kind() == reflect.String {
				msgs = append(msgs, fmt.Sprintf("%s is too long (maximum %s characters)", fe.Field(), fe.Param()))
				continue
			}
			msgs = append(msgs, fmt.Sprintf("%s must be between 0 and %s", fe.Field(), fe.Param()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}
