package user

import (
	"context"
	"fmt"
	"time"

	"restaurant-reviews/internal/database"
	"restaurant-reviews/internal/model"

	"cloud.google.com/go/firestore"
)

type UserRepository struct {
	db database.Client
}

var _ IRepository = UserRepository{}

func New(db database.Client) UserRepository {
	return UserRepository{
		db: db,
	}
}

func (r UserRepository) GetById(ctx context.Context, id string) (*model.User, error) {

	docSnap, err := r.db.GetDoc(ctx, r.db.Collection(userNode).Doc(id))
	if err != nil {
		return nil, fmt.Errorf("get user: %w, id: %s", err, id)
	}

	user := &model.User{}
	if err = docSnap.DataTo(user); err != nil {
		return nil, fmt.Errorf("get user: %w, id: %s", err, id)
	}
	user.Id = &docSnap.Ref.ID
	if user.Favorites == nil {
		user.Favorites = []string{}
	}

	return user, nil
}

func (r UserRepository) Create(ctx context.Context, id string, data model.User) error {

	if data.CreatedAt.IsZero() {
		data.CreatedAt = time.Now().UTC()
	}
	if data.Favorites == nil {
		data.Favorites = []string{}
	}

	docRef := r.db.Collection(userNode).Doc(id)
	if _, err := r.db.SetDoc(ctx, docRef, data); err != nil {
		return fmt.Errorf("create user: %w, id: %s", err, id)
	}
	return nil
}

func (r UserRepository) Merge(ctx context.Context, id string, data model.User) error {

	fields := map[string]interface{}{}
	if data.Name != nil {
		fields[NameFieldPath] = *data.Name
	}
	if data.Email != nil {
		fields[EmailFieldPath] = *data.Email
	}
	if data.Favorites != nil {
		fields[FavoritesFieldPath] = data.Favorites
	}
	if data.ReviewCount != nil {
		fields[ReviewCountFieldPath] = *data.ReviewCount
	}

	if len(fields) == 0 {
		return nil
	}

	docRef := r.db.Collection(userNode).Doc(id)
	if _, err := r.db.SetDoc(ctx, docRef, fields, firestore.MergeAll); err != nil {
		return fmt.Errorf("merge user: %w, id: %s", err, id)
	}
	return nil
}

func (r UserRepository) IncrementReviewCount(ctx context.Context, id string) error {

	docRef := r.db.Collection(userNode).Doc(id)
	_, err := r.db.UpdateDoc(ctx, docRef, []firestore.Update{{
		Path:  ReviewCountFieldPath,
		Value: firestore.Increment(1),
	}})
	if err != nil {
		return fmt.Errorf("increment review count: %w, id: %s", err, id)
	}
	return nil
}

func (r UserRepository) AddFavorite(ctx context.Context, id string, reviewId string) error {

	docRef := r.db.Collection(userNode).Doc(id)
	_, err := r.db.SetDoc(ctx, docRef, map[string]interface{}{
		FavoritesFieldPath: firestore.ArrayUnion(reviewId),
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("add favorite: %w, id: %s", err, id)
	}
	return nil
}

func (r UserRepository) RemoveFavorite(ctx context.Context, id string, reviewId string) error {

	docRef := r.db.Collection(userNode).Doc(id)
	_, err := r.db.UpdateDoc(ctx, docRef, []firestore.Update{{
		Path:  FavoritesFieldPath,
		Value: firestore.ArrayRemove(reviewId),
	}})
	if err != nil {
		return fmt.Errorf("remove favorite: %w, id: %s", err, id)
	}
	return nil
}
