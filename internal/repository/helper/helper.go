package helper

import (
	"context"
	"time"

	"restaurant-reviews/internal/database"
	"restaurant-reviews/internal/repository/filter"

	"cloud.google.com/go/firestore"
)

// Where applies the predicates to the query in order.
func Where(query firestore.Query, where []filter.Where) firestore.Query {
	for _, w := range where {
		query = query.Where(w.Path, w.Op, w.Value)
	}
	return query
}

// NotifyOnChanges blocks, calling fn for each change of the given kind until the listener closes,
// fn returns an error, or the listener reports one (which is handed to fn before returning).
func NotifyOnChanges(ctx context.Context, db database.Client, query firestore.Query,
	where []filter.Where, kind firestore.DocumentChangeKind, fn func(firestore.DocumentChange, error) error) {

	query = Where(query, where)
	events := db.NotifyOnChanges(ctx, query.Snapshots(ctx), kind)

	for e := range events {
		if e.Err != nil {
			fn(e.Change, e.Err)
			return
		}

		if err := fn(e.Change, nil); err != nil {
			return
		}
	}
}

// NonblockingWrite is a generic function that can write any type of event to any channel type.
// T is the type parameter for the event.
func NonblockingWrite[T any](ctx context.Context, timeout time.Duration, ch chan<- T, event T) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
