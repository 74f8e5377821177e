package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/certlab/certprep-backend/internal/config"
	"github.com/certlab/certprep-backend/internal/database"
	"github.com/certlab/certprep-backend/internal/logger"
	"github.com/certlab/certprep-backend/internal/model"
	"github.com/certlab/certprep-backend/internal/repository"
)

// seedFile is the JSON import format: one test with its full question pool.
type seedFile struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Questions   []struct {
		Text          string               `json:"text"`
		Choices       map[string]string    `json:"choices"`
		CorrectAnswer string               `json:"correct_answer"`
		Images        model.QuestionImages `json:"images"`
	} `json:"questions"`
}

func main() {
	var path string
	flag.StringVar(&path, "file", "", "Path to the seed JSON file")
	flag.Parse()
	if path == "" {
		fmt.Println("Usage: seed-questions -file <test.json>")
		os.Exit(1)
	}

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Failed to read seed file")
	}

	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse seed file")
	}
	if seed.Slug == "" || seed.Title == "" || len(seed.Questions) == 0 {
		log.Fatal().Msg("Seed file needs slug, title and at least one question")
	}

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	testRepo := repository.NewTestRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)

	fmt.Printf("=== Seeding %q (%d questions) ===\n", seed.Title, len(seed.Questions))

	test, err := testRepo.Upsert(ctx, seed.Slug, seed.Title, seed.Description)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to upsert test")
	}

	questions := make([]model.Question, len(seed.Questions))
	for i, q := range seed.Questions {
		questions[i] = model.Question{
			TestID:        test.ID,
			Text:          q.Text,
			Choices:       q.Choices,
			CorrectAnswer: q.CorrectAnswer,
			Images:        q.Images,
		}
	}

	if err := questionRepo.BulkInsert(ctx, test.ID, questions); err != nil {
		log.Fatal().Err(err).Msg("Failed to insert questions")
	}

	fmt.Printf("Seeded test %s (id=%s) with %d questions\n", test.Slug, test.ID, len(questions))
	fmt.Println("Note: restart the server or wait for cache TTL so the new pool is picked up")
}
