package review

import (
	"context"
	"time"

	"restaurant-reviews/internal/eventpublisher"
	"restaurant-reviews/internal/eventpublisher/common"
	"restaurant-reviews/internal/eventpublisher/event"
	reviewRepository "restaurant-reviews/internal/repository/review"

	"github.com/rs/zerolog/log"
)

const (
	writeTimeout          = time.Second
	writeFailureThreshold = 3
)

type eventFunc func(context.Context) <-chan reviewRepository.ReviewEvent

type ReviewPublisher interface {
	eventpublisher.Publisher
	// Start forwards store events to the subscribers until ctx is done or the store feed ends.
	Start(ctx context.Context) error
}

type reviewPublisher struct {
	eventFn    eventFunc
	submanager *common.SubManager
	publisher  *common.PublisherWithFailureThreshold
}

// OnReviewAdded publishes every review stored after Start is called.
func OnReviewAdded(repo reviewRepository.IRepository) ReviewPublisher {
	return newPublisher(repo.NotifyOnAdded)
}

func newPublisher(fn eventFunc) *reviewPublisher {
	return &reviewPublisher{
		eventFn:    fn,
		submanager: common.NewSubManager(),
		publisher:  common.NewPublisherWithFailureThreshold(writeTimeout, writeFailureThreshold),
	}
}

func (p *reviewPublisher) Subscribe(subscriber event.EventWChannel) {
	p.submanager.Subscribe(subscriber)
}

func (p *reviewPublisher) Unsubscribe(subscriber event.EventWChannel) {
	if p.submanager.Unsubscribe(subscriber) {
		p.publisher.Forget(subscriber)
	}
}

func (p *reviewPublisher) publish(ctx context.Context, reviewEvent reviewRepository.ReviewEvent) {
	p.submanager.OnSubscribers(func(subscriber event.EventWChannel) {
		go func() {
			if err := p.publisher.Publish(ctx,
				subscriber,
				event.Event{Review: reviewEvent.Review, Err: reviewEvent.Err}); err != nil {
				log.Warn().Err(err).Msg("review publisher: dropping slow subscriber")
				p.Unsubscribe(subscriber)
			}
		}()
	})
}

func (p *reviewPublisher) Start(ctx context.Context) error {
	defer p.submanager.UnsubscribeAll()

	eventsCh := p.eventFn(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info().Err(ctx.Err()).Msg("review publisher stopped")
			return ctx.Err()
		case e, ok := <-eventsCh:
			if !ok {
				return nil
			}
			if e.Err == nil {
				log.Debug().Msgf("publish reviewId %s", e.Review.Id)
			}
			p.publish(ctx, e)
		}
	}
}
