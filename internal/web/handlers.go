package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"mspro-labs/brew-notes/internal/db"
	"mspro-labs/brew-notes/internal/matcher"
	"mspro-labs/brew-notes/internal/models"
	"mspro-labs/brew-notes/internal/prefill"
	"mspro-labs/brew-notes/internal/searcher"
)

// minSearchScore drops weak semantic matches from the results page.
const minSearchScore = 0.2

// MatchResponse is the body of GET /api/match/{category}.
type MatchResponse struct {
	Category matcher.Category     `json:"category"`
	Query    string               `json:"query"`
	Match    *matcher.MatchResult `json:"match"`
	Level    matcher.Level        `json:"level"`
}

// PrefillResponse is the body of POST /api/prefill.
type PrefillResponse struct {
	Form        *prefill.Form      `json:"form"`
	NeedsReview []matcher.Category `json:"needs_review"`
}

// ExtractRequest is the body of POST /api/extract.
type ExtractRequest struct {
	Text string `json:"text"`
}

// ExtractResponse is the body of POST /api/extract: what was read off the
// label and the form it prefills.
type ExtractResponse struct {
	Label       models.LabelFields `json:"label"`
	Form        *prefill.Form      `json:"form"`
	NeedsReview []matcher.Category `json:"needs_review"`
}

// NoteRequest is the body of POST /api/notes: label text plus the cupping.
type NoteRequest struct {
	models.LabelFields
	Ratings     models.Ratings `json:"ratings"`
	OfferingURL string         `json:"offering_url"`
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	c, err := matcher.ParseCategory(mux.Vars(r)["category"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	query := r.URL.Query()
	q := query.Get("q")

	res := s.m.Match(c, q, query.Get("scope"))
	writeJSON(w, http.StatusOK, MatchResponse{
		Category: c,
		Query:    q,
		Match:    res,
		Level:    res.Level(),
	})
}

func (s *Server) handlePrefill(w http.ResponseWriter, r *http.Request) {
	var label models.LabelFields
	if err := json.NewDecoder(r.Body).Decode(&label); err != nil {
		http.Error(w, "Invalid JSON request", http.StatusBadRequest)
		return
	}
	form := prefill.FromLabel(s.m, label)
	writeJSON(w, http.StatusOK, PrefillResponse{Form: form, NeedsReview: form.NeedsReview()})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if s.labels == nil {
		http.Error(w, "Label extraction is not configured", http.StatusServiceUnavailable)
		return
	}
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON request", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	label, err := s.labels.ExtractLabelText(r.Context(), req.Text)
	if err != nil {
		logger.Printf("Extraction error: %v", err)
		http.Error(w, "Extraction failed", http.StatusBadGateway)
		return
	}
	form := prefill.FromLabel(s.m, label)
	writeJSON(w, http.StatusOK, ExtractResponse{Label: label, Form: form, NeedsReview: form.NeedsReview()})
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := db.ListNotes(s.db, r.URL.Query().Get("country"))
	if err != nil {
		logger.Printf("DB error: %v", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if notes == nil {
		notes = []models.TastingNote{}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON request", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if err := req.Ratings.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	note := prefill.Note(s.m, req.LabelFields)
	note.Ratings = req.Ratings
	note.OfferingURL = strings.TrimSpace(req.OfferingURL)
	if err := db.SaveNote(s.db, &note); err != nil {
		logger.Printf("DB error: %v", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}
	note, err := db.GetNote(s.db, id)
	if errors.Is(err, db.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		logger.Printf("DB error: %v", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}
	err := db.DeleteNote(s.db, id)
	if errors.Is(err, db.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		logger.Printf("DB error: %v", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRegions lists region suggestions for a country. Without a country
// it lists every known region.
func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	cat := s.m.Catalog()
	country := r.URL.Query().Get("country")
	if country == "" {
		writeJSON(w, http.StatusOK, nonNil(cat.AllRegions()))
		return
	}
	if !cat.HasRegions(country) {
		http.Error(w, "unknown country", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(cat.Regions(country)))
}

// handleFarms lists farm suggestions for a region. A known region without
// farms gives an empty list; a name that is not a region is a 404.
func (s *Server) handleFarms(w http.ResponseWriter, r *http.Request) {
	cat := s.m.Catalog()
	region := r.URL.Query().Get("region")
	if region == "" {
		writeJSON(w, http.StatusOK, nonNil(cat.AllFarms()))
		return
	}
	if !cat.HasFarms(region) && !slices.Contains(cat.AllRegions(), region) {
		http.Error(w, "unknown region", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(cat.Farms(region)))
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	notes, err := db.ListNotes(s.db, "")
	if err != nil {
		logger.Printf("DB error: %v", err)
		http.Error(w, "Failed to load notes", http.StatusInternalServerError)
		return
	}
	if err := s.pages.Home.ExecuteTemplate(w, "base.html", notes); err != nil {
		logger.Printf("Template error: %v", err)
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if s.ai == nil {
		http.Error(w, "Semantic search is not configured", http.StatusServiceUnavailable)
		return
	}

	results, err := searcher.Perform(r.Context(), s.db, s.ai, query, searcher.DefaultLimit)
	if err != nil {
		logger.Printf("Search error: %v", err)
		http.Error(w, "Search failed", http.StatusInternalServerError)
		return
	}

	var filtered []searcher.Result
	for _, res := range results {
		if res.Score >= minSearchScore {
			filtered = append(filtered, res)
		}
	}

	data := struct {
		Query   string
		Results []searcher.Result
	}{
		Query:   query,
		Results: filtered,
	}
	if err := s.pages.Search.ExecuteTemplate(w, "base.html", data); err != nil {
		logger.Printf("Template error: %v", err)
	}
}

// noteID reads the {id} route variable, answering 400 when it does not fit
// an int64.
func noteID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid note id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Printf("Encode error: %v", err)
	}
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
