package embedder

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"mspro-labs/brew-notes/internal/db"
)

var logger = log.New(os.Stdout, "EMBEDDER: ", log.LstdFlags)

// Embedder turns text into a stored vector blob and its float values.
type Embedder interface {
	EmbedString(ctx context.Context, text string) ([]byte, []float32, error)
}

// Delay between API calls. Tests set it to zero.
var Delay = 1 * time.Second

// Run finds all tasting notes missing embeddings and processes them.
func Run(ctx context.Context, database *sql.DB, client Embedder) (int, error) {
	// 1. Find work to do
	targets, err := db.GetUnembeddedNotes(database)
	if err != nil {
		return 0, err
	}

	if len(targets) == 0 {
		logger.Println("All notes are already embedded.")
		return 0, nil
	}
	logger.Printf("Found %d notes to embed...", len(targets))

	// 2. Process loop
	count := 0
	for id, textToEmbed := range targets {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		logger.Printf("Embedding note #%d", id)

		blob, _, err := client.EmbedString(ctx, textToEmbed)
		if err != nil {
			logger.Printf("Error embedding note #%d: %v", id, err)
			if err := pause(ctx); err != nil { // Backoff on error
				return count, err
			}
			continue
		}

		if err := db.UpdateNoteEmbedding(database, id, blob); err != nil {
			logger.Printf("Error saving note #%d: %v", id, err)
			continue
		}

		count++
		// Rate limit for free tier safety (approx 60 RPM max)
		if err := pause(ctx); err != nil {
			return count, err
		}
	}

	logger.Printf("Embedded %d notes.", count)
	return count, nil
}

// pause waits Delay, returning early with ctx's error if it is cancelled.
func pause(ctx context.Context) error {
	if Delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(Delay):
		return nil
	}
}
