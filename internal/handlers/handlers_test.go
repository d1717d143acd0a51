package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"wordvault-backend/internal/cache"
	"wordvault-backend/internal/database"
	"wordvault-backend/internal/handlers"
	"wordvault-backend/internal/middleware"
	"wordvault-backend/internal/models"
	"wordvault-backend/internal/repository"
	"wordvault-backend/internal/router"
	"wordvault-backend/internal/services"
	"wordvault-backend/internal/websocket"
)

// newTestServer wires the real stack in cache-only mode behind the real router.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cacheStore, err := cache.New(db)
	if err != nil {
		t.Fatalf("failed to create cache store: %v", err)
	}

	docRepo := repository.NewDocumentRepo(cacheStore, "http://localhost:1")
	jwtAuth := middleware.NewJWTAuth("test-secret")
	authService := services.NewAuthService(cacheStore, jwtAuth, "hunter2x")
	wordService := services.NewWordService(docRepo, cacheStore)
	streakService := services.NewStreakService(cacheStore)
	wsHub := websocket.NewHub()

	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	t.Cleanup(authLimiter.Stop)

	return router.New(
		jwtAuth,
		authLimiter,
		handlers.NewAuthHandler(authService),
		handlers.NewWordHandler(wordService, wsHub, 5),
		handlers.NewSetupHandler(docRepo, cacheStore),
		handlers.NewStreakHandler(streakService),
		wsHub,
		"http://localhost:5173",
	)
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func login(t *testing.T, h http.Handler) string {
	t.Helper()

	rr := doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{Password: "hunter2x"})
	if rr.Code != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", rr.Code, rr.Body.String())
	}

	var resp models.LoginResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	return resp.Token
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newTestServer(t)

	rr := doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{Password: "nope"})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rr.Code)
	}
}

func TestLogin_RateLimited(t *testing.T) {
	h := newTestServer(t)

	// httptest.NewRequest gives every request the same RemoteAddr, so all
	// attempts land in one client's window.
	for i := 0; i < 10; i++ {
		rr := doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{Password: "nope"})
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("Expected 401 on attempt %d, got %d", i+1, rr.Code)
		}
	}

	rr := doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{Password: "nope"})
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429 on attempt 11, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header on rate limited response")
	}

	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if resp.Error.Code != "RATE_LIMITED" {
		t.Errorf("Expected RATE_LIMITED, got %q", resp.Error.Code)
	}
}

func TestAddWord_RequiresAuth(t *testing.T) {
	h := newTestServer(t)

	rr := doJSON(t, h, http.MethodPost, "/api/v1/words", "", models.AddWordRequest{Date: "2026-09-01", English: "alpha"})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", rr.Code)
	}

	rr = doJSON(t, h, http.MethodPost, "/api/v1/words", "not-a-token", models.AddWordRequest{Date: "2026-09-01", English: "alpha"})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 with bad token, got %d", rr.Code)
	}
}

func TestWordLifecycle(t *testing.T) {
	h := newTestServer(t)
	token := login(t, h)

	// add
	rr := doJSON(t, h, http.MethodPost, "/api/v1/words", token, map[string]interface{}{
		"date":     "2026-09-01",
		"english":  "ubiquitous",
		"synonyms": "omnipresent, pervasive",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var created struct {
		Word models.Word `json:"word"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode created word: %v", err)
	}
	if created.Word.WordNumber != 1 {
		t.Errorf("Expected wordNumber 1, got %d", created.Word.WordNumber)
	}
	if len(created.Word.Synonyms) != 2 {
		t.Errorf("Expected comma-split synonyms, got %v", created.Word.Synonyms)
	}

	// list
	rr = doJSON(t, h, http.MethodGet, "/api/v1/words?date=2026-09-01", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	var listed struct {
		Words []models.Word `json:"words"`
	}
	json.NewDecoder(rr.Body).Decode(&listed)
	if len(listed.Words) != 1 || listed.Words[0].ID != created.Word.ID {
		t.Errorf("Expected listed word to match created, got %+v", listed.Words)
	}

	// update with a patch omitting synonyms
	rr = doJSON(t, h, http.MethodPut, "/api/v1/words/"+created.Word.ID, token, map[string]interface{}{
		"meaning": "found everywhere",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var updated struct {
		Word models.Word `json:"word"`
	}
	json.NewDecoder(rr.Body).Decode(&updated)
	if updated.Word.Meaning != "found everywhere" {
		t.Errorf("Expected meaning updated, got %q", updated.Word.Meaning)
	}
	if len(updated.Word.Synonyms) != 2 {
		t.Errorf("Expected synonyms untouched, got %v", updated.Word.Synonyms)
	}

	// mark learned, then list again
	rr = doJSON(t, h, http.MethodPost, "/api/v1/words/"+created.Word.ID+"/learned", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	rr = doJSON(t, h, http.MethodGet, "/api/v1/words?date=2026-09-01", "", nil)
	json.NewDecoder(rr.Body).Decode(&listed)
	if !listed.Words[0].IsLearned {
		t.Error("Expected learned flag attached after marking")
	}

	// delete
	rr = doJSON(t, h, http.MethodDelete, "/api/v1/words/"+created.Word.ID, token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	rr = doJSON(t, h, http.MethodDelete, "/api/v1/words/"+created.Word.ID, token, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for double delete, got %d", rr.Code)
	}
}

func TestAddWord_DailyLimit(t *testing.T) {
	h := newTestServer(t)
	token := login(t, h)

	for i := 0; i < 5; i++ {
		rr := doJSON(t, h, http.MethodPost, "/api/v1/words", token, map[string]interface{}{
			"date":    "2026-09-01",
			"english": fmt.Sprintf("word-%d", i),
		})
		if rr.Code != http.StatusCreated {
			t.Fatalf("Expected 201 on word %d, got %d", i, rr.Code)
		}
	}

	rr := doJSON(t, h, http.MethodPost, "/api/v1/words", token, map[string]interface{}{
		"date":    "2026-09-01",
		"english": "one too many",
	})
	if rr.Code != http.StatusConflict {
		t.Errorf("Expected 409 past the daily limit, got %d", rr.Code)
	}

	// other dates are unaffected
	rr = doJSON(t, h, http.MethodPost, "/api/v1/words", token, map[string]interface{}{
		"date":    "2026-09-02",
		"english": "fresh day",
	})
	if rr.Code != http.StatusCreated {
		t.Errorf("Expected 201 for another date, got %d", rr.Code)
	}
}

func TestCountEndpoint(t *testing.T) {
	h := newTestServer(t)
	token := login(t, h)

	rr := doJSON(t, h, http.MethodGet, "/api/v1/words/count?date=2026-09-01", "", nil)
	var count models.WordCountResponse
	json.NewDecoder(rr.Body).Decode(&count)
	if count.Count != 0 || count.LimitReached {
		t.Errorf("Expected empty date to report 0/not-reached, got %+v", count)
	}

	doJSON(t, h, http.MethodPost, "/api/v1/words", token, map[string]interface{}{
		"date":    "2026-09-01",
		"english": "alpha",
	})

	rr = doJSON(t, h, http.MethodGet, "/api/v1/words/count?date=2026-09-01", "", nil)
	json.NewDecoder(rr.Body).Decode(&count)
	if count.Count != 1 || count.Total != 1 {
		t.Errorf("Expected count/total 1/1, got %+v", count)
	}
}

func TestStreakEndpoints(t *testing.T) {
	h := newTestServer(t)

	rr := doJSON(t, h, http.MethodPost, "/api/v1/streak/bump", "", nil)
	var streak models.Streak
	json.NewDecoder(rr.Body).Decode(&streak)
	if streak.Count != 1 {
		t.Errorf("Expected first bump to yield count 1, got %d", streak.Count)
	}

	rr = doJSON(t, h, http.MethodGet, "/api/v1/streak", "", nil)
	json.NewDecoder(rr.Body).Decode(&streak)
	if streak.Count != 1 {
		t.Errorf("Expected persisted count 1, got %d", streak.Count)
	}
}

func TestSetupEndpoints_RequireAuth(t *testing.T) {
	h := newTestServer(t)

	rr := doJSON(t, h, http.MethodPut, "/api/v1/setup/credentials", "", models.SetCredentialsRequest{APIKey: "k", BinID: "b"})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rr.Code)
	}

	token := login(t, h)
	rr = doJSON(t, h, http.MethodPut, "/api/v1/setup/credentials", token, models.SetCredentialsRequest{APIKey: "k", BinID: "b"})
	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestErrorEnvelope_CarriesRequestID(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/words", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for missing date, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("Expected VALIDATION_ERROR, got %q", resp.Error.Code)
	}
	if resp.Error.RequestID != "req-42" {
		t.Errorf("Expected request id echoed, got %q", resp.Error.RequestID)
	}
}
