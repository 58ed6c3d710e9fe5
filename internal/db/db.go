package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import for side-effects only

	"mspro-labs/brew-notes/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Connect opens a connection to the SQLite database and ensures the schema exists.
// It automatically applies recommended settings for concurrency (WAL mode).
func Connect(dbPath string) (*sql.DB, error) {
	// Use robust connection settings to prevent "database locked" errors
	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL", dbPath)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err = createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return db, nil
}

// createSchema is private as it's only called by Connect.
func createSchema(db *sql.DB) error {
	// Shop listings, with origin and processing matched to catalog ids
	offeringTable := `
	CREATE TABLE IF NOT EXISTS offering (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  url TEXT UNIQUE NOT NULL,
	  name TEXT,
	  price REAL,
	  origin TEXT,
	  country_id TEXT,
	  region TEXT,
	  processing TEXT,
	  process_id TEXT,
	  description TEXT,
	  stock_status TEXT,
	  first_scraped_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	  last_seen_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	  is_active INTEGER DEFAULT 1
	);
	CREATE INDEX IF NOT EXISTS idx_offering_active ON offering(is_active);
	CREATE INDEX IF NOT EXISTS idx_offering_country ON offering(country_id);
	`
	if _, err := db.Exec(offeringTable); err != nil {
		return err
	}

	notesTable := `
	CREATE TABLE IF NOT EXISTS tasting_note (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  coffee_name TEXT NOT NULL,
	  roaster TEXT,
	  country_id TEXT, country_name TEXT,
	  region_id TEXT, region_name TEXT,
	  farm_id TEXT, farm_name TEXT,
	  variety_id TEXT, variety_name TEXT,
	  process_id TEXT, process_name TEXT,
	  roast_id TEXT, roast_name TEXT,
	  rating_aroma INTEGER, rating_flavor INTEGER, rating_aftertaste INTEGER, rating_acidity INTEGER,
	  rating_body INTEGER, rating_sweetness INTEGER, rating_balance INTEGER, rating_overall INTEGER,
	  notes TEXT,
	  offering_url TEXT,
	  created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	  notes_embedding BLOB
	);
	CREATE INDEX IF NOT EXISTS idx_note_country ON tasting_note(country_id);
	`
	if _, err := db.Exec(notesTable); err != nil {
		return err
	}

	// Search History Table (for local caching of AI queries)
	historyTable := `
	CREATE TABLE IF NOT EXISTS search_history (
		query_text TEXT PRIMARY KEY,
		embedding BLOB,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(historyTable); err != nil {
		return err
	}

	return nil
}

// --- Offerings ---

// MarkAllAsInactive sets is_active=0 for all offerings.
// This is called at the start of a scrape run.
func MarkAllAsInactive(db *sql.DB) error {
	_, err := db.Exec(`UPDATE offering SET is_active = 0 WHERE is_active = 1;`)
	if err != nil {
		return fmt.Errorf("failed to mark offerings as inactive: %w", err)
	}
	return nil
}

// SaveOfferings performs a batch UPSERT of offerings into the database.
// It marks saved items as active and updates their 'last_seen_at' timestamp.
func SaveOfferings(db *sql.DB, items []models.Offering) (int64, error) {
	upsertSQL := `
	INSERT INTO offering (
	  url, name, price, origin, country_id, region, processing, process_id, description, stock_status,
	  last_seen_at, is_active
	) VALUES (
	  ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
	  CURRENT_TIMESTAMP, 1
	) ON CONFLICT(url) DO UPDATE SET
	  name = excluded.name,
	  price = excluded.price,
	  origin = excluded.origin,
	  country_id = excluded.country_id,
	  region = excluded.region,
	  processing = excluded.processing,
	  process_id = excluded.process_id,
	  description = excluded.description,
	  stock_status = excluded.stock_status,
	  last_seen_at = CURRENT_TIMESTAMP,
	  is_active = 1;
	`

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	defer stmt.Close()

	var totalAffected int64 = 0
	for _, item := range items {
		res, err := stmt.ExecContext(ctx,
			item.URL,
			item.Name,
			item.Price,
			nullString(item.Origin),
			nullString(item.CountryID),
			nullString(item.Region),
			nullString(item.Processing),
			nullString(item.ProcessID),
			nullString(item.Description),
			nullString(item.StockStatus),
		)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to upsert %s: %w", item.URL, err)
		}
		rows, _ := res.RowsAffected()
		totalAffected += rows
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}

	return totalAffected, nil
}

const offeringColumns = `url, name, price, COALESCE(origin, ''), COALESCE(country_id, ''), COALESCE(region, ''),
	COALESCE(processing, ''), COALESCE(process_id, ''), COALESCE(description, ''), COALESCE(stock_status, '')`

func scanOffering(row interface{ Scan(...any) error }) (models.Offering, error) {
	var o models.Offering
	err := row.Scan(&o.URL, &o.Name, &o.Price, &o.Origin, &o.CountryID, &o.Region,
		&o.Processing, &o.ProcessID, &o.Description, &o.StockStatus)
	return o, err
}

// GetActiveOfferings returns all currently listed offerings, newest first.
func GetActiveOfferings(db *sql.DB) ([]models.Offering, error) {
	rows, err := db.Query(`SELECT ` + offeringColumns + ` FROM offering WHERE is_active = 1 ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Offering
	for rows.Next() {
		o, err := scanOffering(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

// GetOffering returns the offering stored under url.
func GetOffering(db *sql.DB, url string) (models.Offering, error) {
	o, err := scanOffering(db.QueryRow(`SELECT `+offeringColumns+` FROM offering WHERE url = ?`, url))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Offering{}, fmt.Errorf("offering %s: %w", url, ErrNotFound)
	}
	return o, err
}

// --- Tasting notes ---

// SaveNote inserts a new note and sets its ID (and CreatedAt when unset).
func SaveNote(db *sql.DB, n *models.TastingNote) error {
	if err := n.Ratings.Validate(); err != nil {
		return err
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	r := n.Ratings
	res, err := db.Exec(`
	INSERT INTO tasting_note (
	  coffee_name, roaster,
	  country_id, country_name, region_id, region_name, farm_id, farm_name,
	  variety_id, variety_name, process_id, process_name, roast_id, roast_name,
	  rating_aroma, rating_flavor, rating_aftertaste, rating_acidity,
	  rating_body, rating_sweetness, rating_balance, rating_overall,
	  notes, offering_url, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.CoffeeName, n.Roaster,
		n.Country.ID, n.Country.Name, n.Region.ID, n.Region.Name, n.Farm.ID, n.Farm.Name,
		n.Variety.ID, n.Variety.Name, n.Process.ID, n.Process.Name, n.Roast.ID, n.Roast.Name,
		r.Aroma, r.Flavor, r.Aftertaste, r.Acidity,
		r.Body, r.Sweetness, r.Balance, r.Overall,
		n.Notes, nullString(n.OfferingURL), n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	n.ID, err = res.LastInsertId()
	return err
}

const noteColumns = `id, coffee_name, COALESCE(roaster, ''),
	country_id, country_name, region_id, region_name, farm_id, farm_name,
	variety_id, variety_name, process_id, process_name, roast_id, roast_name,
	rating_aroma, rating_flavor, rating_aftertaste, rating_acidity,
	rating_body, rating_sweetness, rating_balance, rating_overall,
	COALESCE(notes, ''), COALESCE(offering_url, ''), created_at`

// scanNote reads noteColumns, followed by any extra selected columns.
func scanNote(row interface{ Scan(...any) error }, extra ...any) (models.TastingNote, error) {
	var n models.TastingNote
	r := &n.Ratings
	dest := []any{&n.ID, &n.CoffeeName, &n.Roaster,
		&n.Country.ID, &n.Country.Name, &n.Region.ID, &n.Region.Name, &n.Farm.ID, &n.Farm.Name,
		&n.Variety.ID, &n.Variety.Name, &n.Process.ID, &n.Process.Name, &n.Roast.ID, &n.Roast.Name,
		&r.Aroma, &r.Flavor, &r.Aftertaste, &r.Acidity,
		&r.Body, &r.Sweetness, &r.Balance, &r.Overall,
		&n.Notes, &n.OfferingURL, &n.CreatedAt}
	err := row.Scan(append(dest, extra...)...)
	return n, err
}

// GetNote returns the note with the given id.
func GetNote(db *sql.DB, id int64) (models.TastingNote, error) {
	n, err := scanNote(db.QueryRow(`SELECT `+noteColumns+` FROM tasting_note WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.TastingNote{}, fmt.Errorf("note %d: %w", id, ErrNotFound)
	}
	return n, err
}

// ListNotes returns the journal, newest first. An empty countryID lists every note.
func ListNotes(db *sql.DB, countryID string) ([]models.TastingNote, error) {
	rows, err := db.Query(`SELECT `+noteColumns+` FROM tasting_note
		WHERE (? = '' OR country_id = ?)
		ORDER BY created_at DESC, id DESC`, countryID, countryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []models.TastingNote
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// DeleteNote removes a note.
func DeleteNote(db *sql.DB, id int64) error {
	res, err := db.Exec(`DELETE FROM tasting_note WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("note %d: %w", id, ErrNotFound)
	}
	return nil
}

// --- Embedding & Search Helpers ---

// GetUnembeddedNotes returns a map of note id -> text for notes missing embeddings.
func GetUnembeddedNotes(db *sql.DB) (map[int64]string, error) {
	rows, err := db.Query(`SELECT ` + noteColumns + ` FROM tasting_note WHERE notes_embedding IS NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make(map[int64]string)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		results[n.ID] = n.EmbeddingText()
	}
	return results, rows.Err()
}

// UpdateNoteEmbedding saves the generated vector blob for a note.
func UpdateNoteEmbedding(db *sql.DB, id int64, embedding []byte) error {
	_, err := db.Exec("UPDATE tasting_note SET notes_embedding = ? WHERE id = ?", embedding, id)
	return err
}

// NoteVector pairs a note with its stored embedding.
type NoteVector struct {
	Note   models.TastingNote
	Vector []byte
}

// GetNoteVectors returns all notes that have embeddings.
func GetNoteVectors(db *sql.DB) ([]NoteVector, error) {
	rows, err := db.Query(`SELECT ` + noteColumns + `, notes_embedding FROM tasting_note WHERE notes_embedding IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []NoteVector
	for rows.Next() {
		var vector []byte
		n, err := scanNote(rows, &vector)
		if err != nil {
			return nil, err
		}
		results = append(results, NoteVector{Note: n, Vector: vector})
	}
	return results, rows.Err()
}

// GetCachedQuery tries to find a previously searched query vector.
func GetCachedQuery(db *sql.DB, text string) ([]byte, error) {
	var blob []byte
	err := db.QueryRow("SELECT embedding FROM search_history WHERE query_text = ?", text).Scan(&blob)
	return blob, err
}

// SaveCachedQuery saves a new query and its vector to the history table.
func SaveCachedQuery(db *sql.DB, text string, blob []byte) error {
	_, err := db.Exec("INSERT OR IGNORE INTO search_history (query_text, embedding) VALUES (?, ?)", text, blob)
	return err
}

// --- History Management for search ---

type HistoryEntry struct {
	QueryText string
	CreatedAt time.Time
}

// ListSearchHistory returns all cached queries, newest first.
func ListSearchHistory(db *sql.DB) ([]HistoryEntry, error) {
	rows, err := db.Query("SELECT query_text, created_at FROM search_history ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.QueryText, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ClearSearchHistory removes a specific query from the cache.
func ClearSearchHistory(db *sql.DB, queryText string) (int64, error) {
	res, err := db.Exec("DELETE FROM search_history WHERE query_text = ?", queryText)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ClearAllSearchHistory wipes the entire cache.
func ClearAllSearchHistory(db *sql.DB) (int64, error) {
	res, err := db.Exec("DELETE FROM search_history")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
