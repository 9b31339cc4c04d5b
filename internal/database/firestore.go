package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	ierr "restaurant-reviews/internal/errors"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type snapEvent struct {
	snap *firestore.QuerySnapshot
	err  error
}

type snapCh chan snapEvent

type FirestoreClient struct {
	*firestore.Client
	writeTimeout time.Duration
}

var _ Client = FirestoreClient{}

func New(client *firestore.Client, writeTimeout time.Duration) FirestoreClient {
	if writeTimeout <= 0 {
		writeTimeout = time.Second * 30
	}
	return FirestoreClient{
		Client:       client,
		writeTimeout: writeTimeout,
	}
}

// NotifyOnChanges listens to the given SnapshotIterator and puts the changes of the given kind on the ChangeEvent channel.
// Up to errToleranceCap listener errors are logged and skipped; the next one is delivered and the channel is closed.
func (c FirestoreClient) NotifyOnChanges(ctx context.Context, it *firestore.QuerySnapshotIterator, kind firestore.DocumentChangeKind) <-chan ChangeEvent {

	ch := make(chan ChangeEvent)
	errToleranceCap := 20
	errCnt := 0

	go func() {
		defer close(ch)

		eventCh := registerEventListener(ctx, it)
		for event := range eventCh {
			if event.err != nil {
				if isContextError(event.err) {
					return
				}

				log.Error().Err(event.err).Msg("error reading events")
				errCnt++
				if errCnt < errToleranceCap {
					continue
				}

				select {
				case ch <- ChangeEvent{Err: event.err}:
				case <-ctx.Done():
				}
				return
			}

			for _, change := range event.snap.Changes {
				if change.Kind != kind || change.Doc == nil || !change.Doc.Exists() {
					continue
				}

				select {
				case ch <- ChangeEvent{Change: change}:
				case <-ctx.Done():
					return
				case <-time.After(time.Minute):
					log.Error().Str("doc", change.Doc.Ref.ID).Msg("timedout to deliver a change to the client")
				}
			}
		}
	}()

	return ch
}

// registerEventListener keeps the listener open until context is cancelled
func registerEventListener(ctx context.Context, it *firestore.QuerySnapshotIterator) <-chan snapEvent {

	threshold := 5
	retry := 0
	c := make(snapCh)
	go func() {
		defer close(c)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if err == iterator.Done {
				return
			}

			select {
			case <-ctx.Done():
				return
			case c <- snapEvent{snap, err}:
				continue
			case <-time.After(time.Second * 10):
				log.Error().Msg("timedout to deliver a snapshot to the client")
				retry++
				if retry > threshold {
					return
				}
			}
		}
	}()

	return c
}

// QueryDocs runs the query and calls fn for every matching doc, in store order.
// Iteration stops at the first error, either from the store or from fn.
func (c FirestoreClient) QueryDocs(ctx context.Context, query firestore.Query, fn func(*firestore.DocumentSnapshot) error) error {
	iter := query.Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return err
		}

		if err := fn(doc); err != nil {
			return err
		}
	}
}

// GetDoc returns ierr.NotFound when the doc does not exist.
func (c FirestoreClient) GetDoc(ctx context.Context, docRef *firestore.DocumentRef) (*firestore.DocumentSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.writeTimeout)
	defer cancel()

	docSnapshot, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: %s", ierr.NotFound, docRef.Path)
		}
		return nil, err
	}

	if !docSnapshot.Exists() {
		return nil, fmt.Errorf("%w: %s", ierr.NotFound, docRef.Path)
	}

	return docSnapshot, nil
}

func (c FirestoreClient) UpdateDoc(ctx context.Context, docRef *firestore.DocumentRef, updates []firestore.Update, preconds ...firestore.Precondition) (_ *firestore.WriteResult, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.writeTimeout)
	defer cancel()

	res, err := docRef.Update(ctx, updates, preconds...)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("%w: %s", ierr.NotFound, docRef.Path)
	}
	return res, err
}

func (c FirestoreClient) SetDoc(ctx context.Context, docRef *firestore.DocumentRef, data interface{}, opts ...firestore.SetOption) (_ *firestore.WriteResult, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.writeTimeout)
	defer cancel()

	return docRef.Set(ctx, data, opts...)
}

func (c FirestoreClient) SetDocs(ctx context.Context, data []DataBatch) (_ []*firestore.WriteResult, err error) {
	if len(data) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.writeTimeout)
	defer cancel()

	batch := c.Client.Batch()
	for _, item := range data {
		batch.Set(item.DocRef, item.Data)
	}

	return batch.Commit(ctx)
}

// The listener errors are not wrapped properly, so errors.Is() does not work
func isContextError(err error) bool {
	return strings.Contains(err.Error(), "context canceled") || strings.Contains(err.Error(), "context deadline exceeded")
}
