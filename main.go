package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "restaurant-reviews/internal/api/http"
	"restaurant-reviews/internal/blobstore"
	"restaurant-reviews/internal/config"
	reviewEventPublisher "restaurant-reviews/internal/eventpublisher/review"
	"restaurant-reviews/internal/firebaseapp"
	reviewSentimentHandler "restaurant-reviews/internal/handler/reviewsentiment"
	"restaurant-reviews/internal/identity"
	"restaurant-reviews/internal/messaging"
	"restaurant-reviews/internal/ratelimiter"
	reviewRepository "restaurant-reviews/internal/repository/review"
	userRepository "restaurant-reviews/internal/repository/user"
	"restaurant-reviews/internal/sampledata"
	reviewService "restaurant-reviews/internal/service/reviews"
	searchService "restaurant-reviews/internal/service/search"
	trendingService "restaurant-reviews/internal/service/trending"
	userService "restaurant-reviews/internal/service/users"
	"restaurant-reviews/internal/utils"

	gpt "restaurant-reviews/internal/gpt"
	gptutils "restaurant-reviews/internal/gpt/utils"

	firebase "firebase.google.com/go/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type backends struct {
	reviewRepo reviewRepository.IRepository
	userRepo   userRepository.IRepository
	identity   identity.IProvider
	app        *firebase.App
	close      func()
}

func main() {

	cnf := config.LoadConfigOrPanic()
	setupLogger(cnf.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	defer close(sigs)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	b := createBackendsOrPanic(ctx, cnf)
	defer b.close()

	blobs := createBlobStoreOrPanic(ctx, cnf, b.app)

	var publisher reviewService.Publisher
	if len(cnf.Kafka.Brokers) > 0 {
		kafkaPublisher := messaging.NewKafkaPublisher(messaging.NewKafkaWriter(cnf.Kafka.Brokers, cnf.Kafka.Topic))
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	reviewPublisher := reviewEventPublisher.OnReviewAdded(b.reviewRepo)

	group, gctx := errgroup.WithContext(ctx)

	var limiter ratelimiter.Limiter
	if cnf.RateLimiter.Enabled {
		limiter = createRateLimiter(gctx, group, cnf.RateLimiter)
	}

	server := httpapi.New(httpapi.Options{
		Addr:            cnf.Server.Addr,
		AllowedOrigins:  cnf.Server.AllowedOrigins,
		RequestTimeout:  cnf.Server.RequestTimeout,
		StaticDir:       cnf.Server.StaticDir,
		MaxUploadBytes:  cnf.Storage.MaxUploadBytes,
		FirebaseEnabled: cnf.FirebaseEnabled(),
	}, httpapi.Dependencies{
		Reviews:  reviewService.New(b.reviewRepo, b.userRepo, blobs, publisher, cnf.Storage.MaxUploadBytes),
		Trending: trendingService.New(b.reviewRepo),
		Search:   searchService.New(b.reviewRepo),
		Users:    userService.New(b.userRepo, b.identity),
		Identity: b.identity,
		LiveFeed: reviewPublisher,
		Limiter:  limiter,
	})

	group.Go(func() error {
		return server.Run(gctx)
	})
	group.Go(func() error {
		return reviewPublisher.Start(gctx)
	})

	if cnf.SentimentEnabled() {
		rs := createSentimentHandlerOrPanic(cnf.GilasAI, reviewPublisher, b.reviewRepo)
		group.Go(func() error {
			return rs.EventHandler(gctx)
		})
	} else {
		log.Info().Msg("GILAS_API_KEY is not set, review sentiment labelling is disabled")
	}

	select {
	case <-sigs:
		// Received a termination signal, continue to shutdown
	case <-gctx.Done():
		// errgroup encountered an error, continue to shutdown
	}

	cancel() // cancel the root context to signal all the consumers

	done := make(chan error, 1)
	go func() { done <- group.Wait() }()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("shutdown after failure")
			os.Exit(1)
		}
	case <-time.After(time.Second * 5):
		// Give enough time to close all the pending resources
		log.Warn().Msg("forced shutdown")
		os.Exit(1)
	case <-sigs:
		// Forcefully terminate the app with a signal
		os.Exit(1)
	}
}

func setupLogger(cnf config.Log) {
	level, err := zerolog.ParseLevel(cnf.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if cnf.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func createBackendsOrPanic(ctx context.Context, cnf config.Config) backends {
	if !cnf.FirebaseEnabled() {
		log.Warn().Msg("running on the in-memory store with sample data")

		reviewRepo, userRepo := reviewRepository.NewMemory(), userRepository.NewMemory()
		if err := sampledata.Seed(ctx, reviewRepo, userRepo); err != nil {
			panic(err)
		}
		return backends{
			reviewRepo: reviewRepo,
			userRepo:   userRepo,
			identity:   identity.NewStatic(sampledata.Identities()...),
			close:      func() {},
		}
	}

	app, err := firebaseapp.New(ctx, cnf.Firebase, cnf.Storage.Bucket)
	if err != nil {
		panic(err)
	}

	firestoreClient, err := firebaseapp.NewFirestoreClient(ctx, app, cnf.Firebase)
	if err != nil {
		panic(err)
	}

	provider, err := identity.NewFirebase(ctx, app)
	if err != nil {
		panic(err)
	}

	return backends{
		reviewRepo: reviewRepository.New(firestoreClient),
		userRepo:   userRepository.New(firestoreClient),
		identity:   provider,
		app:        app,
		close:      func() { firestoreClient.Close() },
	}
}

func createBlobStoreOrPanic(ctx context.Context, cnf config.Config, app *firebase.App) blobstore.Store {
	switch cnf.Storage.BlobBackend {
	case config.BlobCloudinary:
		store, err := blobstore.NewCloudinary(cnf.Storage.CloudinaryURL, cnf.Storage.CloudinaryFolder)
		if err != nil {
			panic(err)
		}
		return store
	case config.BlobFirebase:
		store, err := blobstore.NewFirebase(ctx, app, cnf.Storage.Bucket)
		if err != nil {
			panic(err)
		}
		return store
	default:
		return blobstore.NewMemory(cnf.Storage.Bucket)
	}
}

func createRateLimiter(ctx context.Context, group *errgroup.Group, cnf config.RateLimiter) ratelimiter.Limiter {
	if cnf.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cnf.RedisAddr})
		group.Go(func() error {
			<-ctx.Done()
			return client.Close()
		})
		return ratelimiter.NewRedisLimiter(client, cnf.Requests, cnf.Window)
	}

	limiter := ratelimiter.NewFixedWindowLimiter(cnf.Requests, cnf.Window)
	group.Go(func() error {
		return limiter.Cleanup(ctx)
	})
	return limiter
}

func createSentimentHandlerOrPanic(
	cnf config.GilasAI,
	publisher reviewEventPublisher.ReviewPublisher,
	reviewRepo reviewRepository.IRepository) *reviewSentimentHandler.Handler {

	tokenizer, err := gptutils.NewTokenzier()
	if err != nil {
		panic(err)
	}

	gptFactory, err := gpt.NewClientFactory(gpt.ClientConfig{
		ApiUrl:      cnf.ApiUrl,
		ApiKey:      cnf.ApiKey,
		Model:       cnf.Model,
		Temperature: utils.Ptr[float32](0.1),
	})
	if err != nil {
		panic(err)
	}

	return reviewSentimentHandler.New(publisher, reviewRepo, gptFactory, tokenizer, cnf.MaxReviewTokens)
}
