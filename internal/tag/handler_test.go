// AngelaMos | 2026
// handler_test.go

package tag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/tagback/internal/middleware"
)

func newTestRouter(svc *Service, userID string) http.Handler {
	h := NewHandler(svc)

	authenticator := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
	passthrough := func(next http.Handler) http.Handler { return next }

	r := chi.NewRouter()
	h.RegisterRoutes(r, authenticator)
	h.RegisterAdminRoutes(r, authenticator, passthrough)
	return r
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func do(t *testing.T, h http.Handler, method, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestHandler_ActivateThenMine(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, MemoryTxRunner{Repo: repo}, NewAllocator(), nil)
	owner := uuid.NewString()
	router := newTestRouter(svc, owner)

	rec, env := do(t, router, http.MethodPost, "/admin/tags/"+owner+"/activate")
	require.Equal(t, http.StatusCreated, rec.Code)
	var activation ActivationResponse
	require.NoError(t, json.Unmarshal(env.Data, &activation))
	assert.True(t, activation.Created)
	assert.Equal(t, StatusActive, activation.Tag.Status)

	rec, _ = do(t, router, http.MethodPost, "/admin/tags/"+owner+"/activate")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, router, http.MethodGet, "/tags/me")
	require.Equal(t, http.StatusOK, rec.Code)
	var mine TagResponse
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	assert.Equal(t, activation.Tag.DisplayID, mine.DisplayID)
	assert.Equal(t, activation.Tag.Token, mine.Token)

	rec, env = do(t, router, http.MethodPost, "/admin/tags/"+owner+"/deactivate")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	assert.Equal(t, StatusInactive, mine.Status)
}

func TestHandler_Errors(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, MemoryTxRunner{Repo: repo}, NewAllocator(), nil)
	router := newTestRouter(svc, uuid.NewString())

	rec, env := do(t, router, http.MethodPost, "/admin/tags/not-a-uuid/activate")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)

	rec, _ = do(t, router, http.MethodGet, "/tags/me")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, router, http.MethodPost, "/admin/tags/"+uuid.NewString()+"/deactivate")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_MineRejectsMalformedSubject(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, MemoryTxRunner{Repo: repo}, NewAllocator(), nil)

	for _, subject := range []string{"", "not-a-uuid", "' OR 1=1 --"} {
		rec, env := do(t, newTestRouter(svc, subject), http.MethodGet, "/tags/me")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, subject)
		assert.False(t, env.Success, subject)
	}
}

func TestHandler_Keyspace(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, MemoryTxRunner{Repo: repo}, NewAllocator(), nil)
	router := newTestRouter(svc, "")

	rec, env := do(t, router, http.MethodGet, "/admin/tags/keyspace")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats KeyspaceStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(6955200), stats.Capacity)
	assert.Zero(t, stats.Allocated)
}
