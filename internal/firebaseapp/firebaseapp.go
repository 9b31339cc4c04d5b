package firebaseapp

import (
	"context"
	"encoding/json"
	"fmt"

	"restaurant-reviews/internal/config"
	"restaurant-reviews/internal/database"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// New creates the app from the service account fields of the config.
func New(ctx context.Context, cnf config.Firebase, bucket string) (*firebase.App, error) {
	creds, err := json.Marshal(cnf)
	if err != nil {
		return nil, fmt.Errorf("encode firebase credentials: %w", err)
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cnf.ProjectId,
		StorageBucket: bucket,
	}, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, fmt.Errorf("create firebase app: %w", err)
	}
	return app, nil
}

func NewFirestoreClient(ctx context.Context, app *firebase.App, cnf config.Firebase) (database.FirestoreClient, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return database.FirestoreClient{}, fmt.Errorf("create firestore client: %w", err)
	}
	return database.New(client, cnf.WriteTimeoutSecond), nil
}
