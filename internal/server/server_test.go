// AngelaMos | 2026
// server_test.go

package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/tagback/internal/config"
)

type drainRecorder struct {
	ready    bool
	shutdown bool
}

func (d *drainRecorder) SetReady(ready bool)       { d.ready = ready }
func (d *drainRecorder) SetShutdown(shutdown bool) { d.shutdown = shutdown }

func newTestServer(d Drainer) *Server {
	return New(Config{
		ServerConfig: config.ServerConfig{
			Host:         "127.0.0.1",
			Port:         0,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
		HealthHandler: d,
	})
}

func TestRouterFallbacks(t *testing.T) {
	srv := newTestServer(nil)
	srv.Router().Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv.Router().Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/ping", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestShutdown_FlipsHealth(t *testing.T) {
	d := &drainRecorder{ready: true}
	srv := newTestServer(d)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, srv.Shutdown(ctx, time.Millisecond))
	assert.False(t, d.ready)
	assert.True(t, d.shutdown)
}

func TestShutdown_ContextCutsDrain(t *testing.T) {
	srv := newTestServer(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_ = srv.Shutdown(ctx, time.Minute)
	assert.Less(t, time.Since(start), 5*time.Second)
}
