package searcher

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"sort"

	"mspro-labs/brew-notes/internal/ai"
	"mspro-labs/brew-notes/internal/db"
	"mspro-labs/brew-notes/internal/embedder"
	"mspro-labs/brew-notes/internal/models"
)

var logger = log.New(os.Stdout, "SEARCH: ", log.LstdFlags)

// DefaultLimit caps the number of results returned by Perform.
const DefaultLimit = 5

// Result holds a single search match.
type Result struct {
	Note  models.TastingNote
	Score float32
}

// Perform executes a semantic search over the journal.
func Perform(ctx context.Context, database *sql.DB, client embedder.Embedder, queryText string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	// 1. Get Query Vector (Try cache first, then AI)
	queryVector, err := getQueryVector(ctx, database, client, queryText)
	if err != nil {
		return nil, err
	}

	// 2. Load all note vectors
	notes, err := db.GetNoteVectors(database)
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}

	// 3. Compare and score
	var results []Result
	for _, nv := range notes {
		noteFloats, err := ai.BytesToFloats(nv.Vector)
		if err != nil {
			continue
		}
		score := ai.CosineSimilarity(queryVector, noteFloats)
		results = append(results, Result{Note: nv.Note, Score: score})
	}

	// 4. Sort by descending score
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// getQueryVector handles the "cache-aside" logic for query embeddings.
func getQueryVector(ctx context.Context, database *sql.DB, client embedder.Embedder, text string) ([]float32, error) {
	// A. Try Cache
	blob, err := db.GetCachedQuery(database, text)
	if err == nil {
		return ai.BytesToFloats(blob)
	}

	// B. Cache Miss - Use AI
	logger.Printf("Cache miss for '%s'. Calling Gemini...", text)
	blob, floats, err := client.EmbedString(ctx, text)
	if err != nil {
		return nil, err
	}

	// C. Save to Cache (don't fail the request if cache save fails)
	if err := db.SaveCachedQuery(database, text, blob); err != nil {
		logger.Printf("Warning: failed to save query to cache: %v", err)
	}

	return floats, nil
}
