// AngelaMos | 2026
// handler_test.go

package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/tagback/internal/token"
)

var tokenPattern = regexp.MustCompile(`"[0-9a-f]{64}"`)

func newRouter(r *Resolver) http.Handler {
	router := chi.NewRouter()
	NewHandler(r).RegisterRoutes(router, func(next http.Handler) http.Handler { return next })
	return router
}

func postLookup(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/lookup", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_LookupIsIndistinguishable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inactive := f.activate(t, true, true)
	_, err := f.tags.Deactivate(ctx, inactive.OwnerID)
	require.NoError(t, err)
	expired := f.activate(t, true, false)
	live := f.activate(t, true, true)

	healthy := newRouter(f.resolver)
	faulty := newRouter(NewResolver(Config{
		Records: brokenRecords{err: errors.New("store down")},
		Owners:  f.owners,
		Decoys:  f.decoys,
	}))

	cases := []struct {
		name string
		h    http.Handler
		code string
	}{
		{"never issued", healthy, "XYZ789"},
		{"inactive", healthy, inactive.DisplayID},
		{"expired", healthy, expired.DisplayID},
		{"store fault", faulty, live.DisplayID},
		{"eligible", healthy, live.DisplayID},
	}

	var shapes []string
	var headers []http.Header
	for _, tc := range cases {
		rec := postLookup(t, tc.h, `{"code":"`+tc.code+`"}`)

		require.Equal(t, http.StatusOK, rec.Code, tc.name)

		var env struct {
			Success bool `json:"success"`
			Data    struct {
				Token string `json:"token"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), tc.name)
		assert.True(t, env.Success, tc.name)
		assert.True(t, token.IsWellFormed(env.Data.Token), tc.name)

		shapes = append(shapes, tokenPattern.ReplaceAllString(rec.Body.String(), `"<token>"`))
		headers = append(headers, rec.Header())
	}

	for i := 1; i < len(shapes); i++ {
		assert.Equal(t, shapes[0], shapes[i], cases[i].name)
		assert.Equal(t, headers[0], headers[i], cases[i].name)
	}
}

func TestHandler_LookupRealToken(t *testing.T) {
	f := newFixture(t)
	live := f.activate(t, true, true)

	rec := postLookup(t, newRouter(f.resolver), `{"code":"`+live.DisplayID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), live.Token)
}

func TestHandler_LookupMalformedBody(t *testing.T) {
	f := newFixture(t)
	h := newRouter(f.resolver)

	for _, body := range []string{``, `{`, `[]`, `{"code":12}`, `not json`} {
		rec := postLookup(t, h, body)
		assert.Equal(t, http.StatusOK, rec.Code, body)
		assert.Regexp(t, `^\{"success":true,"data":\{"token":"[0-9a-f]{64}"\}\}\n$`, rec.Body.String(), body)
	}
}

func TestHandler_Suggest(t *testing.T) {
	f := newFixture(t)
	h := newRouter(f.resolver)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lookup/suggest?code=v0m493", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data SuggestResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "VOM493", env.Data.Candidate)
	assert.True(t, env.Data.Valid)
	assert.Equal(t, []string{`did you mean "VOM493"?`}, env.Data.Diagnostics)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lookup/suggest?code=abc", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Data.Valid)
	assert.NotEmpty(t, env.Data.Diagnostics)
}
