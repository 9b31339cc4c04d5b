package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"restaurant-reviews/internal/config"
	"restaurant-reviews/internal/firebaseapp"
	reviewRepository "restaurant-reviews/internal/repository/review"
	userRepository "restaurant-reviews/internal/repository/user"
	"restaurant-reviews/internal/sampledata"
)

// Developer tool: seeds the sample reviews and users into Firestore and, with
// -tail, prints reviews as they are added.
func main() {

	seed := flag.Bool("seed", true, "write the sample reviews and users")
	tail := flag.Bool("tail", false, "print newly added reviews until interrupted")
	flag.Parse()

	cnf := config.LoadConfigOrPanic()
	if !cnf.FirebaseEnabled() {
		fmt.Fprintln(os.Stderr, "STORE_BACKEND must be firestore")
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app, err := firebaseapp.New(ctx, cnf.Firebase, cnf.Storage.Bucket)
	if err != nil {
		panic(err)
	}
	firestoreClient, err := firebaseapp.NewFirestoreClient(ctx, app, cnf.Firebase)
	if err != nil {
		panic(err)
	}
	defer firestoreClient.Close()

	reviewRepo := reviewRepository.New(firestoreClient)
	userRepo := userRepository.New(firestoreClient)

	if *seed {
		if err := sampledata.Seed(ctx, reviewRepo, userRepo); err != nil {
			panic(err)
		}
		fmt.Println("sample data written")
	}

	if !*tail {
		return
	}

	for e := range reviewRepo.NotifyOnAdded(ctx) {
		if e.Err != nil {
			fmt.Println(e.Err)
			continue
		}
		fmt.Printf("Newly added review: %s (%s, %d/5)\n", e.Review.Id, e.Review.Restaurant, e.Review.Rating)
	}
}
