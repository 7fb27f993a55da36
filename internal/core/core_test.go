// AngelaMos | 2026
// core_test.go

package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/tagback/internal/config"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestJSONError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", NotFoundError("tag"), http.StatusNotFound, "NOT_FOUND"},
		{"wrapped app error", fmt.Errorf("handler: %w", UnavailableError("busy")), http.StatusServiceUnavailable, "UNAVAILABLE"},
		{"plain error", errors.New("db exploded"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			JSONError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			resp := decode(t, rec)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotContains(t, rec.Body.String(), "db exploded")
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("lookup: %w", NotFoundError("tag"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, IsAppError(err))

	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "tag not found: resource not found", appErr.Error())
}

func TestOKEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, map[string]string{"token": "abc"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"token":"abc"}}`, rec.Body.String())
}

func TestFormatValidationError(t *testing.T) {
	type req struct {
		Message string `validate:"required"`
		ReplyTo string `validate:"omitempty,email"`
	}

	err := validator.New().Struct(req{ReplyTo: "nope"})
	msg := FormatValidationError(err)
	assert.Contains(t, msg, "message is required")
	assert.Contains(t, msg, "replyto must be a valid email")

	assert.Equal(t, "invalid request", FormatValidationError(errors.New("x")))
}

func TestDeriveKey(t *testing.T) {
	secret := []byte(strings.Repeat("k", MinSecretLength))

	a, err := DeriveKey(secret, "purpose a")
	require.NoError(t, err)
	b, err := DeriveKey(secret, "purpose b")
	require.NoError(t, err)
	again, err := DeriveKey(secret, "purpose a")
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.Equal(t, a, again)
	assert.NotEqual(t, a, b)

	_, err = DeriveKey(secret[:MinSecretLength-1], "purpose a")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestFingerprint(t *testing.T) {
	key := []byte("fingerprint-key-0123456789abcdef")

	fp := Fingerprint(key, "secret-token")
	assert.Len(t, fp, 12)
	assert.Equal(t, fp, Fingerprint(key, "secret-token"))
	assert.NotEqual(t, fp, Fingerprint(key, "other-token"))
	assert.NotContains(t, fp, "secret")

	t.Run("keyed", func(t *testing.T) {
		other := []byte("another-key-0123456789abcdef0123")
		assert.NotEqual(t, fp, Fingerprint(other, "secret-token"))

		sum := sha256.Sum256([]byte("secret-token"))
		assert.NotEqual(t, hex.EncodeToString(sum[:])[:12], fp)
	})
}

func TestIsUniqueViolation(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, IsUniqueViolation(dup))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("23505")))
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(0.25, "production").Description(), "TraceIDRatioBased{0.25}")
	assert.Contains(t, samplerFor(0, "production").Description(), "TraceIDRatioBased{0.1}")
	assert.Contains(t, samplerFor(7, "staging").Description(), "TraceIDRatioBased{0.1}")
	assert.Contains(t, samplerFor(0.25, "development").Description(), "AlwaysOnSampler")
}

func TestNewTelemetry_WithoutExporter(t *testing.T) {
	ctx := context.Background()

	tel, err := NewTelemetry(ctx,
		config.OtelConfig{SampleRate: 1},
		config.AppConfig{Name: "tagback", Version: "test", Environment: "production"},
	)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, tel.Shutdown(ctx)) })

	spanCtx, span := tel.Tracer.Start(ctx, "lookup")
	defer span.End()

	assert.Len(t, TraceIDFromContext(spanCtx), 32)
	assert.Empty(t, TraceIDFromContext(ctx))
}

func TestRedisOptions(t *testing.T) {
	opts, err := redisOptions(config.RedisConfig{
		URL:            "redis://localhost:6379/2",
		PoolSize:       8,
		DialTimeout:    time.Second,
		CommandTimeout: 300 * time.Millisecond,
	})
	require.NoError(t, err)

	assert.Equal(t, "tagback", opts.ClientName)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 8, opts.PoolSize)
	assert.Equal(t, time.Second, opts.DialTimeout)
	assert.Equal(t, 300*time.Millisecond, opts.ReadTimeout)
	assert.Equal(t, 300*time.Millisecond, opts.WriteTimeout)
	assert.Equal(t, 1300*time.Millisecond, opts.PoolTimeout)

	_, err = redisOptions(config.RedisConfig{URL: "http://not-redis"})
	require.Error(t, err)
}
