package reviewsentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"restaurant-reviews/internal/eventpublisher"
	"restaurant-reviews/internal/eventpublisher/event"
	gpt "restaurant-reviews/internal/gpt"
	"restaurant-reviews/internal/model"
	reviewRepository "restaurant-reviews/internal/repository/review"

	"github.com/rs/zerolog/log"
)

const subscriptionBuffer = 16

// Truncator shortens text to a token budget.
type Truncator interface {
	Truncate(s string, maxTokens int) string
}

// Handler labels every newly added review with a GPT assigned sentiment.
type Handler struct {
	reviewEventPublisher eventpublisher.Publisher
	reviewRepo           reviewRepository.IRepository
	prompter             gpt.Prompter
	tokenizer            Truncator
	maxReviewTokens      int
	reviewSubscriptionCh event.EventChannel
}

func New(
	reviewEventPublisher eventpublisher.Publisher,
	reviewRepo reviewRepository.IRepository,
	prompter gpt.Prompter,
	tokenizer Truncator,
	maxReviewTokens int) *Handler {

	return &Handler{
		reviewEventPublisher: reviewEventPublisher,
		reviewRepo:           reviewRepo,
		prompter:             prompter,
		tokenizer:            tokenizer,
		maxReviewTokens:      maxReviewTokens,
		reviewSubscriptionCh: make(event.EventChannel, subscriptionBuffer),
	}
}

func (h *Handler) EventHandler(ctx context.Context) error {

	h.reviewEventPublisher.Subscribe(h.eventChannel())
	defer h.reviewEventPublisher.Unsubscribe(h.eventChannel())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-h.reviewSubscriptionCh:
			if !ok {
				return nil
			}

			if e.Err != nil {
				// the store feed ends after an error, the closed channel stops this loop
				log.Error().Err(e.Err).Msg("sentiment handler: error reading events")
				continue
			}

			go h.handle(ctx, e.Review)
		}
	}
}

func (h *Handler) eventChannel() chan<- event.Event {
	return h.reviewSubscriptionCh
}

func (h *Handler) handle(ctx context.Context, review model.Review) error {

	if review.Sentiment != nil {
		log.Debug().Msgf("sentiment is already analyzed - reviewId %s", review.Id)
		return nil
	}
	if strings.TrimSpace(review.Review) == "" {
		return nil
	}

	log.Debug().Msgf("sentiment analysis - reviewId %s", review.Id)
	sentiment, err := h.generateSentiment(ctx, review)
	if err != nil {
		log.Error().Err(err).Msgf("review sentiment handler: failed to generate sentiment for %s", review.Id)
		return err
	}

	if err := h.reviewRepo.UpdateSentiment(ctx, review.Id, sentiment); err != nil {
		log.Error().Err(err).Msgf("review sentiment handler: failed to persist %s", review.Id)
		return err
	}

	return nil
}

func (h *Handler) generateSentiment(ctx context.Context, review model.Review) (model.Sentiment, error) {

	text := h.tokenizer.Truncate(review.Review, h.maxReviewTokens)
	response, err := h.prompter.Prompt(ctx, fmt.Sprintf(SENTIMENT_ANALYSIS_INSTRUCTION, text))
	if err != nil {
		return model.Sentiment{}, err
	}

	return responseToSentiment(response)
}

func responseToSentiment(responseAsString string) (model.Sentiment, error) {

	// models sometimes wrap the JSON in a markdown fence
	start, end := strings.Index(responseAsString, "{"), strings.LastIndex(responseAsString, "}")
	if start < 0 || end < start {
		return model.Sentiment{}, fmt.Errorf("no json object in gpt response: %q", responseAsString)
	}

	data := response{}
	if err := json.Unmarshal([]byte(responseAsString[start:end+1]), &data); err != nil {
		return model.Sentiment{}, err
	}

	label, err := normalizeLabel(data.Label)
	if err != nil {
		return model.Sentiment{}, err
	}

	return model.Sentiment{
		Label:     label,
		Score:     max(minScore, min(maxScore, data.Score)),
		CreatedAt: time.Now().UTC(),
	}, nil
}

func normalizeLabel(label string) (string, error) {
	for _, known := range []string{PositiveLabel, NeutralLabel, NegativeLabel} {
		if strings.EqualFold(strings.TrimSpace(label), known) {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown sentiment label: %q", label)
}
