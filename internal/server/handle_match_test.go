package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/scorekeep/scorekeep/internal/database"
	"github.com/scorekeep/scorekeep/internal/migrations"
	"github.com/scorekeep/scorekeep/internal/scoring"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "changeme"
)

// testRouter wires the full route tree over an in-memory database, with the
// preset templates and the test admin seeded.
func testRouter(t *testing.T) *chi.Mux {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := NewSQLiteStore(db)
	if err := SeedDefaults(ctx, logger, store, testAdminEmail, testAdminPassword); err != nil {
		t.Fatalf("seeding defaults: %v", err)
	}

	r := chi.NewRouter()
	addRoutes(r, logger, db, nil, store, "")
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) MatchState {
	t.Helper()
	var state MatchState
	if err := json.NewDecoder(w.Body).Decode(&state); err != nil {
		t.Fatalf("decoding match state: %v", err)
	}
	return state
}

// singleGameRules is a tiny format for fast handler tests: one set, one game
// to 3, win by 1.
func singleGameRules(t *testing.T) *scoring.MatchRules {
	t.Helper()
	game, err := scoring.NewGameRules(3, 0, 1)
	if err != nil {
		t.Fatalf("NewGameRules: %v", err)
	}
	set, err := scoring.NewSetRules(1, 0, false, game, nil)
	if err != nil {
		t.Fatalf("NewSetRules: %v", err)
	}
	rules, err := scoring.NewMatchRules(1, 0, false, set, nil)
	if err != nil {
		t.Fatalf("NewMatchRules: %v", err)
	}
	return &rules
}

func createTestMatch(t *testing.T, r http.Handler) MatchState {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/matches", CreateMatchRequest{Scoring: singleGameRules(t)}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create match: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return decodeState(t, w)
}

func TestCreateMatchInlineRules(t *testing.T) {
	r := testRouter(t)

	state := createTestMatch(t, r)
	if state.ID == "" {
		t.Fatal("expected a match id")
	}
	if state.Sport != scoring.SportVolleyball || state.Environment != scoring.EnvironmentIndoor {
		t.Errorf("defaults = %s/%s, want volleyball/indoor", state.Sport, state.Environment)
	}
	if state.HasEnded || len(state.Sets) != 0 {
		t.Errorf("fresh match should have no sets and not be ended: %+v", state)
	}
}

func TestCreateMatchRejectsBadRequests(t *testing.T) {
	r := testRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/matches", CreateMatchRequest{}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty request: expected 400, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/matches", CreateMatchRequest{Scoring: &scoring.MatchRules{}}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("zero rules: expected 400, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/matches", CreateMatchRequest{TemplateID: "missing"}, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown template: expected 404, got %d", w.Code)
	}
}

func TestCreateMatchFromTemplate(t *testing.T) {
	r := testRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/templates", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list templates: expected 200, got %d", w.Code)
	}
	var templates []scoring.Template
	if err := json.NewDecoder(w.Body).Decode(&templates); err != nil {
		t.Fatalf("decoding templates: %v", err)
	}
	if len(templates) == 0 {
		t.Fatal("expected seeded preset templates")
	}

	var tplID string
	for _, tpl := range templates {
		if tpl.Sport == scoring.SportVolleyball {
			tplID = tpl.ID
		}
	}
	if tplID == "" {
		t.Fatal("no volleyball preset seeded")
	}

	w = doJSON(t, r, http.MethodPost, "/api/matches", CreateMatchRequest{TemplateID: tplID}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create from template: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	state := decodeState(t, w)
	if state.TemplateID != tplID {
		t.Errorf("templateId = %q, want %q", state.TemplateID, tplID)
	}
	if state.Scoring.SetScoring.GameScoring.WinScore != 25 {
		t.Errorf("winScore = %d, want 25", state.Scoring.SetScoring.GameScoring.WinScore)
	}

	// Creating a match marks the template used.
	w = doJSON(t, r, http.MethodGet, "/api/templates/"+tplID, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get template: expected 200, got %d", w.Code)
	}
	var tpl scoring.Template
	json.NewDecoder(w.Body).Decode(&tpl)
	if tpl.LastUsedAt == nil {
		t.Error("template lastUsedAt should be set after use")
	}
}

func TestScoreToCompletion(t *testing.T) {
	r := testRouter(t)
	state := createTestMatch(t, r)
	base := "/api/matches/" + state.ID

	w := doJSON(t, r, http.MethodPost, base+"/games", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("start game: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Win the only game 3-1.
	for _, team := range []scoring.Team{scoring.TeamUs, scoring.TeamThem, scoring.TeamUs, scoring.TeamUs} {
		w = doJSON(t, r, http.MethodPost, base+"/score", ScoreRequest{Team: team}, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("score: expected 200, got %d: %s", w.Code, w.Body.String())
		}
	}
	state = decodeState(t, w)

	if state.HasEnded {
		t.Error("scoring must never end the match itself")
	}
	if state.SetsUs != 1 || state.SetsThem != 0 {
		t.Errorf("sets = %d-%d, want 1-0", state.SetsUs, state.SetsThem)
	}
	if state.Sets[0].EndedAt == nil {
		t.Error("the decided set should be stamped ended")
	}
	if state.HasMoreGames {
		t.Error("no more games should remain")
	}

	// Another point in the closed set is a conflict.
	w = doJSON(t, r, http.MethodPost, base+"/score", ScoreRequest{Team: scoring.TeamUs}, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("score after set end: expected 409, got %d", w.Code)
	}

	// So is starting another game when the match is decided.
	w = doJSON(t, r, http.MethodPost, base+"/games", nil, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("start game after decision: expected 409, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, base+"/end", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("end match: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	state = decodeState(t, w)
	if !state.HasEnded || state.Winner != "us" {
		t.Errorf("ended state = hasEnded %v winner %q, want true/us", state.HasEnded, state.Winner)
	}
	if state.Summary != "3-1" {
		t.Errorf("summary = %q, want 3-1", state.Summary)
	}

	// End is idempotent.
	w = doJSON(t, r, http.MethodPost, base+"/end", nil, nil)
	if w.Code != http.StatusOK {
		t.Errorf("second end: expected 200, got %d", w.Code)
	}
}

func TestScoreValidation(t *testing.T) {
	r := testRouter(t)
	state := createTestMatch(t, r)
	base := "/api/matches/" + state.ID

	w := doJSON(t, r, http.MethodPost, base+"/score", ScoreRequest{Team: "left"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad team: expected 400, got %d", w.Code)
	}

	// No game started yet.
	w = doJSON(t, r, http.MethodPost, base+"/score", ScoreRequest{Team: scoring.TeamUs}, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("score before first game: expected 409, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/matches/missing/score", ScoreRequest{Team: scoring.TeamUs}, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown match: expected 404, got %d", w.Code)
	}
}

func TestWarmupFlow(t *testing.T) {
	r := testRouter(t)
	state := createTestMatch(t, r)
	base := "/api/matches/" + state.ID

	w := doJSON(t, r, http.MethodPost, base+"/warmup", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("start warmup: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	state = decodeState(t, w)
	if state.Warmup == nil || state.Warmup.EndedAt != nil {
		t.Fatalf("warmup should be open: %+v", state.Warmup)
	}

	// Starting the first game closes the warmup.
	w = doJSON(t, r, http.MethodPost, base+"/games", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("start game: expected 200, got %d", w.Code)
	}
	state = decodeState(t, w)
	if state.Warmup == nil || state.Warmup.EndedAt == nil {
		t.Error("warmup should be closed once play starts")
	}

	// Warmup once a set exists is a conflict.
	w = doJSON(t, r, http.MethodPost, base+"/warmup", nil, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("warmup after play: expected 409, got %d", w.Code)
	}
}

func TestEndWarmupWithoutWarmup(t *testing.T) {
	r := testRouter(t)
	state := createTestMatch(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/matches/"+state.ID+"/warmup/end", nil, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestGetAndListMatches(t *testing.T) {
	r := testRouter(t)
	state := createTestMatch(t, r)

	w := doJSON(t, r, http.MethodGet, "/api/matches/"+state.ID, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get match: expected 200, got %d", w.Code)
	}
	got := decodeState(t, w)
	if got.ID != state.ID {
		t.Errorf("id = %q, want %q", got.ID, state.ID)
	}

	w = doJSON(t, r, http.MethodGet, "/api/matches", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list matches: expected 200, got %d", w.Code)
	}
	var list []MatchSummary
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if len(list) != 1 || list[0].ID != state.ID {
		t.Errorf("list = %+v, want the one created match", list)
	}

	w = doJSON(t, r, http.MethodGet, "/api/matches/missing", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown match: expected 404, got %d", w.Code)
	}
}

func TestDeleteMatchRequiresAdmin(t *testing.T) {
	r := testRouter(t)
	state := createTestMatch(t, r)
	path := "/api/matches/" + state.ID

	w := doJSON(t, r, http.MethodDelete, path, nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated delete: expected 401, got %d", w.Code)
	}

	cookies := adminLogin(t, r)
	w = doJSON(t, r, http.MethodDelete, path, nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, path, nil, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", w.Code)
	}
}

func TestEventsUnknownMatch(t *testing.T) {
	r := testRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/matches/missing/events", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
