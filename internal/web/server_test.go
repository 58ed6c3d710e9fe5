package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mspro-labs/brew-notes/internal/catalog"
	"mspro-labs/brew-notes/internal/embedder"
	"mspro-labs/brew-notes/internal/matcher"
	"mspro-labs/brew-notes/internal/models"
	"mspro-labs/brew-notes/internal/testutil"
)

func newTestServer(t *testing.T, client embedder.Embedder) *Server {
	t.Helper()
	return newServerWith(t, client, nil)
}

func newServerWith(t *testing.T, client embedder.Embedder, labels LabelReader) *Server {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	s, err := NewServer(testutil.OpenDB(t), matcher.New(cat), client, labels)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestMatchEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, "GET", "/api/match/country?q=Ethipia", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp MatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Match)
	assert.Equal(t, "ethiopia", resp.Match.ID)
	assert.Equal(t, 88, resp.Match.Confidence)
	assert.Equal(t, matcher.Medium, resp.Level)
	assert.Equal(t, matcher.Country, resp.Category)
}

func TestMatchEndpoint_Scoped(t *testing.T) {
	s := newTestServer(t, nil)

	target := "/api/match/farm?" + url.Values{"q": {"코체레"}, "scope": {"예가체프"}}.Encode()
	var resp MatchResponse
	rec := do(t, s, "GET", target, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Match)
	assert.Equal(t, "코체레", resp.Match.Name)
	assert.Equal(t, 100, resp.Match.Confidence)

	target = "/api/match/farm?" + url.Values{"q": {"코체레"}, "scope": {"세라도"}}.Encode()
	rec = do(t, s, "GET", target, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Match)
	assert.Equal(t, matcher.None, resp.Level)
	assert.Contains(t, rec.Body.String(), `"match":null`)
}

func TestMatchEndpoint_UnknownCategory(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, "GET", "/api/match/altitude?q=1800", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPrefillEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, "POST", "/api/prefill", models.LabelFields{
		Country: "Ethiopia",
		Region:  "예가체프",
		Farm:    "코체레",
		Process: "워시",
		Variety: "zzzz",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Form map[string]struct {
			Input string               `json:"input"`
			Match *matcher.MatchResult `json:"match"`
		} `json:"form"`
		NeedsReview []matcher.Category `json:"needs_review"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ethiopia", resp.Form["country"].Match.ID)
	assert.Equal(t, "예가체프", resp.Form["region"].Match.Name)
	assert.Equal(t, "코체레", resp.Form["farm"].Match.Name)
	assert.Equal(t, "washed", resp.Form["process"].Match.ID)
	assert.Nil(t, resp.Form["variety"].Match)
	assert.Equal(t, []matcher.Category{matcher.Variety}, resp.NeedsReview)
}

func TestPrefillEndpoint_BadJSON(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest("POST", "/api/prefill", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotesEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, "POST", "/api/notes", NoteRequest{
		LabelFields: models.LabelFields{Name: "Gakuyuini AA", Country: "Kenya", Process: "washed", TastingNotes: "blackcurrant"},
		Ratings:     models.Ratings{Acidity: 5, Overall: 4},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.TastingNote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotZero(t, created.ID)
	assert.Equal(t, "kenya", created.Country.ID)
	assert.Equal(t, "washed", created.Process.ID)
	assert.Equal(t, "blackcurrant", created.Notes)

	rec = do(t, s, "GET", fmt.Sprintf("/api/notes/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.TastingNote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Gakuyuini AA", got.CoffeeName)
	assert.Equal(t, 5, got.Ratings.Acidity)

	var list []models.TastingNote
	rec = do(t, s, "GET", "/api/notes?country=kenya", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = do(t, s, "GET", "/api/notes?country=brazil", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, s, "DELETE", fmt.Sprintf("/api/notes/%d", created.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, "GET", fmt.Sprintf("/api/notes/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateNote_Validation(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, "POST", "/api/notes", NoteRequest{LabelFields: models.LabelFields{Name: "x"}, Ratings: models.Ratings{Body: 9}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, "POST", "/api/notes", NoteRequest{LabelFields: models.LabelFields{Country: "Kenya"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	var regions []string
	rec := do(t, s, "GET", "/api/catalog/regions?country=ethiopia", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &regions))
	require.NotEmpty(t, regions)
	assert.Equal(t, "예가체프", regions[0])

	rec = do(t, s, "GET", "/api/catalog/regions?country=atlantis", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var farms []string
	rec = do(t, s, "GET", "/api/catalog/farms?"+url.Values{"region": {"예가체프"}}.Encode(), nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &farms))
	assert.Contains(t, farms, "코체레")

	// A real region with no farms listed is empty, not missing.
	rec = do(t, s, "GET", "/api/catalog/farms?"+url.Values{"region": {"하라"}}.Encode(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, s, "GET", "/api/catalog/farms?"+url.Values{"region": {"아틀란티스"}}.Encode(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNoteID_Overflow(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, "GET", "/api/notes/99999999999999999999", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, "DELETE", "/api/notes/99999999999999999999", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, "GET", "/api/notes/42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExtractEndpoint(t *testing.T) {
	labels := &testutil.LabelReader{Fields: models.LabelFields{
		Name:    "Kochere",
		Country: "Ethiopia",
		Region:  "예가체프",
		Process: "워시",
	}}
	s := newServerWith(t, nil, labels)

	text := "ETHIOPIA YIRGACHEFFE KOCHERE / WASHED"
	rec := do(t, s, "POST", "/api/extract", ExtractRequest{Text: text})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{text}, labels.Texts)

	var resp struct {
		Label models.LabelFields `json:"label"`
		Form  map[string]struct {
			Match *matcher.MatchResult `json:"match"`
		} `json:"form"`
		NeedsReview []matcher.Category `json:"needs_review"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Kochere", resp.Label.Name)
	assert.Equal(t, "ethiopia", resp.Form["country"].Match.ID)
	assert.Equal(t, "예가체프", resp.Form["region"].Match.Name)
	assert.Equal(t, "washed", resp.Form["process"].Match.ID)
	assert.Empty(t, resp.NeedsReview)
}

func TestExtractEndpoint_Errors(t *testing.T) {
	rec := do(t, newTestServer(t, nil), "POST", "/api/extract", ExtractRequest{Text: "washed"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	labels := &testutil.LabelReader{}
	s := newServerWith(t, nil, labels)
	rec = do(t, s, "POST", "/api/extract", ExtractRequest{Text: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, labels.Texts)

	labels.Fail = true
	rec = do(t, s, "POST", "/api/extract", ExtractRequest{Text: "washed"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestPages(t *testing.T) {
	embedder.Delay = 0
	fake := &testutil.KeywordEmbedder{Keywords: []string{"jasmine", "chocolate"}}
	s := newTestServer(t, fake)

	rec := do(t, s, "POST", "/api/notes", NoteRequest{
		LabelFields: models.LabelFields{Name: "Kochere", Country: "Ethiopia", TastingNotes: "jasmine and bergamot"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, "GET", "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Kochere")

	_, err := embedder.Run(context.Background(), s.db, fake)
	require.NoError(t, err)

	rec = do(t, s, "GET", "/search?q=jasmine", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Kochere")

	rec = do(t, s, "GET", "/search", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestSearchWithoutAI(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, "GET", "/search?q=fruity", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
