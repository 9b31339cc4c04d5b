package blobstore

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
)

// FirebaseStore writes objects to the project's Cloud Storage bucket and makes them world readable.
type FirebaseStore struct {
	bucket     *storage.BucketHandle
	bucketName string
}

var _ Store = (*FirebaseStore)(nil)

func NewFirebase(ctx context.Context, app *firebase.App, bucketName string) (*FirebaseStore, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase storage client: %w", err)
	}

	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("firebase storage bucket: %w, name: %s", err, bucketName)
	}

	return &FirebaseStore{bucket: bucket, bucketName: bucketName}, nil
}

func (s *FirebaseStore) Put(ctx context.Context, key string, contentType string, body io.Reader) (string, error) {
	// cancelling the writer's context is the only way to abort a partial upload
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	obj := s.bucket.Object(key)
	w := obj.NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, body); err != nil {
		cancel()
		w.Close()
		return "", fmt.Errorf("put object: %w, key: %s", err, key)
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("put object: %w, key: %s", err, key)
	}

	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		return "", fmt.Errorf("make object public: %w, key: %s", err, key)
	}

	return PublicURL(s.bucketName, key), nil
}
