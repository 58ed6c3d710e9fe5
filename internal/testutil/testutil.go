// Package testutil holds fakes shared by package tests.
package testutil

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"mspro-labs/brew-notes/internal/ai"
	"mspro-labs/brew-notes/internal/db"
	"mspro-labs/brew-notes/internal/models"
)

// OpenDB connects to a fresh database file under t.TempDir.
func OpenDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Connect(filepath.Join(t.TempDir(), "notes.db"))
	if err != nil {
		t.Fatalf("Failed to open test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// KeywordEmbedder builds one vector dimension per keyword: 1 when the text
// mentions it, 0 otherwise.
type KeywordEmbedder struct {
	Keywords []string
	// Fail makes every call return an error.
	Fail bool

	mu    sync.Mutex
	Calls []string
}

func (k *KeywordEmbedder) EmbedString(_ context.Context, text string) ([]byte, []float32, error) {
	k.mu.Lock()
	k.Calls = append(k.Calls, text)
	k.mu.Unlock()

	if k.Fail {
		return nil, nil, errors.New("embedding unavailable")
	}
	lower := strings.ToLower(text)
	vec := make([]float32, len(k.Keywords))
	for i, kw := range k.Keywords {
		if strings.Contains(lower, kw) {
			vec[i] = 1
		}
	}
	blob, err := ai.FloatsToBytes(vec)
	return blob, vec, err
}

// CallCount returns how many times EmbedString ran.
func (k *KeywordEmbedder) CallCount() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.Calls)
}

// LabelReader returns Fields for every extraction and records what it was asked.
type LabelReader struct {
	Fields models.LabelFields
	// Fail makes every call return an error.
	Fail bool

	mu     sync.Mutex
	Texts  []string
	Images [][]byte
	Format string
}

func (l *LabelReader) ExtractLabel(_ context.Context, image []byte, format string) (models.LabelFields, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Images = append(l.Images, image)
	l.Format = format
	if l.Fail {
		return models.LabelFields{}, errors.New("extraction unavailable")
	}
	return l.Fields, nil
}

func (l *LabelReader) ExtractLabelText(_ context.Context, text string) (models.LabelFields, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Texts = append(l.Texts, text)
	if l.Fail {
		return models.LabelFields{}, errors.New("extraction unavailable")
	}
	return l.Fields, nil
}
