package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restaurant-reviews/internal/database"
	"restaurant-reviews/internal/model"
	"restaurant-reviews/internal/repository/filter"
	"restaurant-reviews/internal/repository/helper"
	"restaurant-reviews/internal/repository/ops"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog/log"
)

type ReviewRepository struct {
	db database.Client
}

var _ IRepository = ReviewRepository{}

func New(db database.Client) ReviewRepository {
	return ReviewRepository{
		db: db,
	}
}

func (r ReviewRepository) List(ctx context.Context, where []filter.Where) ([]model.Review, error) {

	query := helper.Where(r.db.Collection(reviewNode).Query, where)
	reviews := make([]model.Review, 0)

	err := r.db.QueryDocs(ctx, query, func(ds *firestore.DocumentSnapshot) error {
		review := model.Review{}
		if err := ds.DataTo(&review); err != nil {
			// a malformed doc must not hide the rest of the collection
			log.Error().Err(err).Str("id", ds.Ref.ID).Msg("review repo: failed to convert doc to review")
			return nil
		}
		review.Id = ds.Ref.ID
		reviews = append(reviews, review)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, nil
}

func (r ReviewRepository) GetById(ctx context.Context, id string) (*model.Review, error) {

	docSnap, err := r.db.GetDoc(ctx, r.db.Collection(reviewNode).Doc(id))
	if err != nil {
		return nil, fmt.Errorf("get review: %w, id: %s", err, id)
	}

	review := &model.Review{}
	if err = docSnap.DataTo(review); err != nil {
		return nil, fmt.Errorf("get review: %w, id: %s", err, id)
	}
	review.Id = docSnap.Ref.ID

	return review, nil
}

func (r ReviewRepository) Create(ctx context.Context, data model.Review) (model.Review, error) {

	if data.Timestamp.IsZero() {
		data.Timestamp = time.Now().UTC()
	}

	docRef := r.db.Collection(reviewNode).NewDoc()
	data.Id = docRef.ID

	if _, err := r.db.SetDoc(ctx, docRef, data); err != nil {
		return model.Review{}, fmt.Errorf("create review: %w, id: %s", err, docRef.ID)
	}

	return data, nil
}

func (r ReviewRepository) CreateMany(ctx context.Context, data []model.Review) error {

	dataBatch := []database.DataBatch{}
	for _, review := range data {
		docRef := r.db.Collection(reviewNode).NewDoc()
		if review.Id != "" {
			docRef = r.db.Collection(reviewNode).Doc(review.Id)
		}
		if review.Timestamp.IsZero() {
			review.Timestamp = time.Now().UTC()
		}
		dataBatch = append(dataBatch, database.DataBatch{
			DocRef: docRef,
			Data:   review,
		})
	}

	if _, err := r.db.SetDocs(ctx, dataBatch); err != nil {
		return fmt.Errorf("create reviews: %w", err)
	}

	return nil
}

func (r ReviewRepository) UpdateSentiment(ctx context.Context, id string, sentiment model.Sentiment) error {

	if sentiment.CreatedAt.IsZero() {
		sentiment.CreatedAt = time.Now().UTC()
	}

	docRef := r.db.Collection(reviewNode).Doc(id)
	_, err := r.db.UpdateDoc(ctx, docRef, []firestore.Update{{
		Path:  SentimentFieldPath,
		Value: sentiment,
	}})
	if err != nil {
		return fmt.Errorf("update review sentiment: %w, id: %s", err, id)
	}
	return nil
}

// NotifyOnAdded only reports reviews stamped after the listener starts, otherwise the
// initial snapshot would replay the whole collection.
func (r ReviewRepository) NotifyOnAdded(ctx context.Context) <-chan ReviewEvent {
	query := r.db.Collection(reviewNode).Query
	where := []filter.Where{{Path: TimestampFieldPath, Op: ops.Greater, Value: time.Now().UTC()}}
	return r.notifyOnChanges(ctx, query, where, firestore.DocumentAdded)
}

func (r ReviewRepository) notifyOnChanges(ctx context.Context, query firestore.Query, where []filter.Where, kind firestore.DocumentChangeKind) <-chan ReviewEvent {

	ch := make(chan ReviewEvent)
	var writeFailureCount, writeFailureThreshold = 0, 3

	go func() {
		defer close(ch)

		helper.NotifyOnChanges(ctx, r.db, query, where, kind, func(dc firestore.DocumentChange, err error) error {

			if writeFailureCount > writeFailureThreshold {
				return fmt.Errorf("write failure threshould reached")
			}

			review := model.Review{}
			if err != nil {
				if !(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
					log.Error().Err(err).Msg("review repo: failed to read review events")
					helper.NonblockingWrite[ReviewEvent](ctx, channelWriteTimeout, ch, ReviewEvent{Review: review, Err: err})
				}
				return err
			}

			if err = dc.Doc.DataTo(&review); err != nil {
				log.Error().Err(err).Msg("review repo: failed to convert doc to review")
				return nil
			}
			review.Id = dc.Doc.Ref.ID

			if err := helper.NonblockingWrite[ReviewEvent](ctx, channelWriteTimeout, ch, ReviewEvent{Review: review}); err != nil {
				writeFailureCount++
			}

			return nil
		})
	}()

	return ch
}
