package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"application-auth/internal/models"
	"application-auth/internal/pkg/log"
	"application-auth/internal/roles"

	"github.com/stretchr/testify/require"
)

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// capHandler запоминает контекст запроса и отвечает 200.
type capHandler struct {
	ctx    context.Context
	called bool
}

func (h *capHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.ctx = r.Context()
	h.called = true
	w.WriteHeader(http.StatusOK)
}

func TestLogging_GeneratesRequestID(t *testing.T) {
	t.Parallel()

	h := &capHandler{}
	srv := Logging(silentLogger())(h)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))

	require.True(t, h.called)
	require.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	// Логгер с request_id положен в контекст.
	require.NotEqual(t, slog.Default(), log.From(h.ctx))
}

func TestLogging_PropagatesIncomingRequestID(t *testing.T) {
	t.Parallel()

	h := &capHandler{}
	srv := Logging(silentLogger())(h)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("X-Request-Id", "req-123")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, "req-123", rec.Header().Get("X-Request-Id"))
}

func TestRecover_PanicBecomes500(t *testing.T) {
	t.Parallel()

	srv := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}

func TestTimeout_SetsDeadline(t *testing.T) {
	t.Parallel()

	h := &capHandler{}
	srv := Timeout(50 * time.Millisecond)(h)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))

	dl, ok := h.ctx.Deadline()
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(50*time.Millisecond), dl, 30*time.Millisecond)
}

// validatorFunc — TokenValidator из функции.
type validatorFunc func(ctx context.Context, raw string) (*models.Principal, error)

func (f validatorFunc) ValidateAccessToken(ctx context.Context, raw string) (*models.Principal, error) {
	return f(ctx, raw)
}

func TestAuthenticate_OK(t *testing.T) {
	t.Parallel()

	want := &models.Principal{UserID: 42, Roles: roles.NewSet(roles.User)}

	h := &capHandler{}
	srv := Authenticate(validatorFunc(func(_ context.Context, raw string) (*models.Principal, error) {
		require.Equal(t, "some-access-token", raw)
		return want, nil
	}))(h)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer some-access-token")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	got, ok := PrincipalFromContext(h.ctx)
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestAuthenticate_MissingOrMalformedHeader(t *testing.T) {
	t.Parallel()

	srv := Authenticate(validatorFunc(func(context.Context, string) (*models.Principal, error) {
		t.Fatal("валидатор не должен вызываться без bearer-токена")
		return nil, nil
	}))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	for _, header := range []string{"", "Basic dXNlcg==", "Bearer", "Bearer   "} {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code, "header=%q", header)
	}
}

func TestAuthenticate_ValidatorRejects(t *testing.T) {
	t.Parallel()

	h := &capHandler{}
	srv := Authenticate(validatorFunc(func(context.Context, string) (*models.Principal, error) {
		return nil, errors.New("authentication failed")
	}))(h)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer revoked-token")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, h.called)
	require.JSONEq(t, `{"error":"authentication failed"}`, rec.Body.String())
}

func TestPrincipalFromContext_Empty(t *testing.T) {
	t.Parallel()

	_, ok := PrincipalFromContext(context.Background())
	require.False(t, ok)
}
