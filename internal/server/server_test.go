package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/jobboard"
	"github.com/spigell/jobmatch/internal/service"
	"github.com/spigell/jobmatch/internal/store/memory"
)

const testSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

type api struct {
	t       *testing.T
	handler http.Handler
	tokens  *Tokens
	store   *memory.Store
}

func newAPI(t *testing.T, limiter Limiter, limit int) *api {
	t.Helper()
	tokens, err := NewTokens(testSecret, time.Hour)
	require.NoError(t, err)

	st := memory.New()
	board := service.New(st, nil, zap.NewNop())
	srv := New(board, tokens, limiter, Config{RateLimit: RateLimitConfig{Limit: limit, Window: time.Minute}}, zap.NewNop())
	return &api{t: t, handler: srv.Handler(), tokens: tokens, store: st}
}

func (a *api) token(userID uuid.UUID) string {
	a.t.Helper()
	tok, _, err := a.tokens.Issue(userID)
	require.NoError(a.t, err)
	return tok
}

func (a *api) do(method, path string, userID uuid.UUID, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != uuid.Nil {
		req.Header.Set("Authorization", "Bearer "+a.token(userID))
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthIsPublic(t *testing.T) {
	a := newAPI(t, nil, 0)
	rec := a.do(http.MethodGet, "/health", uuid.Nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuthentication(t *testing.T) {
	a := newAPI(t, nil, 0)

	rec := a.do(http.MethodGet, "/profile", uuid.Nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other, err := NewTokens("another-secret", time.Hour)
	require.NoError(t, err)
	forged, _, err := other.Issue(uuid.New())
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodGet, "/profile", uuid.New(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "not found")
}

func TestJobBoardFlow(t *testing.T) {
	a := newAPI(t, nil, 0)
	employer, seeker := uuid.New(), uuid.New()

	rec := a.do(http.MethodPost, "/jobs", employer, map[string]any{"title": "Backend", "description": "APIs", "job_type": "backend"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "company required")

	rec = a.do(http.MethodPost, "/company", employer, map[string]any{"name": "Acme"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	company := decode[jobboard.Company](t, rec)

	rec = a.do(http.MethodPost, "/jobs", employer, map[string]any{"title": "Backend", "description": "APIs", "job_type": "wizard"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/jobs", employer, map[string]any{
		"title":        "Backend",
		"description":  "APIs",
		"job_type":     "backend",
		"location":     "Berlin",
		"requirements": []string{"Go"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	job := decode[jobboard.Job](t, rec)
	assert.Equal(t, company.ID, job.CompanyID)
	assert.True(t, job.IsActive)

	rec = a.do(http.MethodGet, "/jobs", seeker, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[[]map[string]any](t, rec)
	require.Len(t, listed, 1)
	assert.Equal(t, "Acme", listed[0]["company"].(map[string]any)["name"])

	rec = a.do(http.MethodGet, "/jobs/mine", employer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]jobboard.Job](t, rec), 1)

	rec = a.do(http.MethodPost, "/jobs/"+job.ID.String()+"/applications", seeker, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "profile required")

	rec = a.do(http.MethodPost, "/profile", seeker, map[string]any{"name": "Ada", "email": "ada@example.com", "skills": []string{"Go"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	profile := decode[jobboard.Profile](t, rec)
	assert.Equal(t, jobboard.ScoringPending, profile.ScoringStatus)

	rec = a.do(http.MethodPost, "/jobs/"+job.ID.String()+"/applications", seeker, map[string]any{"cover_letter": "hello"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	app := decode[jobboard.Application](t, rec)
	assert.Equal(t, jobboard.StatusPending, app.Status)

	rec = a.do(http.MethodPost, "/jobs/"+job.ID.String()+"/applications", seeker, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodGet, "/jobs/"+job.ID.String()+"/applications", seeker, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodGet, "/jobs/"+job.ID.String()+"/applications", employer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	statusPath := "/applications/" + app.ID.String() + "/status"
	rec = a.do(http.MethodPut, statusPath, employer, map[string]any{"status": "rejected"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = a.do(http.MethodPut, statusPath, employer, map[string]any{"status": "accepted"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = a.do(http.MethodGet, "/applications", seeker, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[[]map[string]any](t, rec)
	require.Len(t, mine, 1)
	assert.Equal(t, "rejected", mine[0]["status"])

	rec = a.do(http.MethodPatch, "/jobs/"+job.ID.String(), employer, map[string]any{"is_active": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, decode[jobboard.Job](t, rec).IsActive)

	rec = a.do(http.MethodGet, "/companies/"+company.ID.String()+"/jobs", seeker, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]jobboard.Job](t, rec))
}

func TestRequestErrors(t *testing.T) {
	a := newAPI(t, nil, 0)
	user := uuid.New()

	rec := a.do(http.MethodGet, "/jobs/not-a-uuid", user, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodGet, "/jobs/"+uuid.NewString(), user, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodPost, "/profile", user, map[string]any{"name": "Ada", "email": "ada@example.com", "shoe_size": 42})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/profile", user, map[string]any{"name": "Ada", "email": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/recommendations/"+uuid.NewString()+"/viewed", user, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecommendationsEndpoints(t *testing.T) {
	a := newAPI(t, nil, 0)
	employer, seeker := uuid.New(), uuid.New()

	rec := a.do(http.MethodPost, "/company", employer, map[string]any{"name": "Acme"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(http.MethodPost, "/jobs", employer, map[string]any{"title": "Backend", "description": "APIs", "job_type": "backend"})
	require.Equal(t, http.StatusCreated, rec.Code)
	job := decode[jobboard.Job](t, rec)
	rec = a.do(http.MethodPost, "/profile", seeker, map[string]any{"name": "Ada", "email": "ada@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[jobboard.Profile](t, rec)

	recommendation := &jobboard.Recommendation{ProfileID: profile.ID, JobID: job.ID, Score: 88, Reasons: []string{"Excellent skill match"}}
	created, err := a.store.CreateRecommendation(context.Background(), recommendation)
	require.NoError(t, err)
	require.True(t, created)

	rec = a.do(http.MethodGet, "/recommendations", seeker, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	recs := decode[[]map[string]any](t, rec)
	require.Len(t, recs, 1)
	assert.EqualValues(t, 88, recs[0]["score"])
	recID := recs[0]["id"].(string)

	rec = a.do(http.MethodPost, "/recommendations/"+recID+"/viewed", employer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodPost, "/recommendations/"+recID+"/viewed", seeker, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimitedEndpoints(t *testing.T) {
	a := newAPI(t, NewMemoryLimiter(), 2)
	user := uuid.New()
	body := map[string]any{"name": "Ada", "email": "ada@example.com"}

	for i := 0; i < 2; i++ {
		rec := a.do(http.MethodPost, "/profile", user, body)
		require.Equal(t, http.StatusOK, rec.Code, fmt.Sprintf("request %d", i))
	}
	rec := a.do(http.MethodPost, "/profile", user, body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = a.do(http.MethodPost, "/profile", uuid.New(), body)
	assert.Equal(t, http.StatusOK, rec.Code, "limits are per user")

	rec = a.do(http.MethodGet, "/profile", user, nil)
	assert.Equal(t, http.StatusOK, rec.Code, "reads are not limited")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("job: %w", jobboard.ErrNotFound), http.StatusNotFound},
		{jobboard.ErrAlreadyExists, http.StatusConflict},
		{jobboard.ErrNotAuthorized, http.StatusForbidden},
		{service.ErrInvalidInput, http.StatusBadRequest},
		{jobboard.ErrInvalidCategory, http.StatusBadRequest},
		{errBadRequest, http.StatusBadRequest},
		{jobboard.ErrInvalidTransition, http.StatusUnprocessableEntity},
		{jobboard.ErrJobNotAvailable, http.StatusUnprocessableEntity},
		{jobboard.ErrProfileRequired, http.StatusUnprocessableEntity},
		{jobboard.ErrCompanyRequired, http.StatusUnprocessableEntity},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, statusFor(tt.err), tt.err.Error())
	}
}
