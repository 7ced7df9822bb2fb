package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/siherrmann/influmatch"
	"github.com/siherrmann/influmatch/helper"
	"github.com/siherrmann/influmatch/model"
)

func posts(likes, comments int64, n int) []model.PostStats {
	out := make([]model.PostStats, n)
	for i := range out {
		l := likes + int64(i*3)
		c := comments
		out[i] = model.PostStats{PostNumber: i + 1, LikeCount: &l, CommentCount: &c}
	}
	return out
}

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	modelDir, err := os.MkdirTemp("", "influmatch-models")
	if err != nil {
		log.Fatalf("Failed to create model directory: %v", err)
	}
	defer os.RemoveAll(modelDir)

	engine, err := influmatch.NewInfluMatch(dbConfig, modelDir)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}
	defer engine.Close()

	// Seed a brand population with engagement stats
	fmt.Println("Seeding brands...")
	sectors := []string{"fashion", "tech", "food", "travel", "beauty"}
	for i := 0; i < 15; i++ {
		brand, err := engine.RegisterBrand(fmt.Sprintf("Brand %d", i+1), sectors[i%len(sectors)], "Berlin")
		if err != nil {
			log.Fatalf("Failed to register brand: %v", err)
		}

		_, err = engine.UpdateBrandStats(
			brand.RID,
			fmt.Sprintf("brand_%d", i+1),
			i%2 == 0, true,
			int64(30000+i*2500),
			posts(int64(250+i*15), 20, 8),
		)
		if err != nil {
			log.Fatalf("Failed to update brand stats: %v", err)
		}
	}

	// Seed influencers, including the one we will query for
	fmt.Println("Seeding influencers...")
	userRID := uuid.New()
	if _, err := engine.UpdateInfluencerStats(userRID, "query_influencer", false, true, 2800, posts(420, 55, 10)); err != nil {
		log.Fatalf("Failed to update influencer stats: %v", err)
	}
	for i := 0; i < 14; i++ {
		_, err := engine.UpdateInfluencerStats(
			uuid.New(),
			fmt.Sprintf("influencer_%d", i+1),
			false, i%2 == 0,
			int64(1500+i*200),
			posts(int64(350+i*25), 45, 10),
		)
		if err != nil {
			log.Fatalf("Failed to update influencer stats: %v", err)
		}
	}

	// Run the offline training pipeline
	fmt.Println("\nTraining model...")
	report, err := engine.Train()
	if err != nil {
		log.Fatalf("Failed to train: %v", err)
	}
	fmt.Printf("Training finished: %s\n", report.Message)
	fmt.Printf("Silhouette score: %.4f\n", report.Evaluation.SilhouetteScore)
	fmt.Printf("Clustering accuracy: %.4f\n", report.Evaluation.ClusteringAccuracy)
	fmt.Printf("Encoder artifact: %s\n", report.ModelPaths.EncoderModel)

	// Ask for suggestions
	fmt.Println("\nRequesting suggestions...")
	result, err := engine.Suggest(userRID)
	if err != nil {
		log.Fatalf("Failed to suggest: %v", err)
	}

	fmt.Printf("\nFound %d matching brands:\n", result.SuggestedCount)
	for i, match := range result.SuggestedBrands {
		fmt.Printf("\n--- Match %d ---\n", i+1)
		fmt.Printf("Brand: %s (%s)\n", match.Brand.Name, match.Brand.Sector)
		fmt.Printf("Similarity: %.4f\n", match.Similarity)
	}

	// Decide on the best match and check the history
	if len(result.SuggestedBrands) > 0 {
		best := result.SuggestedBrands[0]
		fmt.Printf("\nAccepting %s...\n", best.Brand.Name)
		if _, err := engine.Respond(userRID, best.Brand.RID, model.DecisionAccept); err != nil {
			log.Fatalf("Failed to respond: %v", err)
		}

		history, err := engine.History(userRID)
		if err != nil {
			log.Fatalf("Failed to fetch history: %v", err)
		}
		fmt.Printf("History entries: %d\n", len(history))
		for _, record := range history {
			fmt.Printf("  %s -> %s at %s\n", record.Brand.Name, record.Decision, record.DecidedAt.Format("15:04:05"))
		}

		// Decided brands are never resurfaced
		again, err := engine.Suggest(userRID)
		if err != nil {
			log.Fatalf("Failed to suggest again: %v", err)
		}
		fmt.Printf("Suggestions after deciding: %d\n", again.SuggestedCount)
	}

	fmt.Println("\nBasic example completed successfully!")
}
