package api

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oaiiae/contacts-api/datastores"
)

func serve(t *testing.T, h http.Handler, method, target string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequestWithContext(t.Context(), method, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewRouter(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	store := datastores.NewContactsInmem()
	h := NewRouter(&RouterOptions{EndpointsPrefix: "/api"}, "Contacts", "1.2.3", "abc", "today", store, logger)

	rec := serve(t, h, http.MethodGet, "/liveness")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = serve(t, h, http.MethodGet, "/readiness")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, h, http.MethodPost, "/api/contacts/", "X-Request-Id", "req-1")
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	assert.Equal(t, "req-1", rec.Header().Get("X-Request-Id"))

	contacts, err := store.List(t.Context(), "")
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "/contacts/"+contacts[0].ID.String()+"/edit", rec.Header().Get("Location"))
	assert.Contains(t, logs.String(), "x-request-id=req-1")
	assert.Contains(t, logs.String(), "status=302")

	rec = serve(t, h, http.MethodGet, "/api/contacts/?q=nobody")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = serve(t, h, http.MethodGet, "/api/contacts/"+contacts[0].ID.String()+"x")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = serve(t, h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `build_info{goversion="`)
	assert.Contains(t, body, `version="1.2.3"`)
	assert.Contains(t, body, "contacts 1\n")
	assert.Contains(t, body, `http_requests_total{method="POST",path="/api/contacts/",status="302"} 1`)
}

type unreachable struct{ *datastores.ContactsInmem }

func (unreachable) Ping(context.Context) error { return errors.New("connection refused") }

func TestReadiness(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	h := NewRouter(&RouterOptions{EndpointsPrefix: "/api"}, "Contacts", "dev", "", "",
		unreachable{datastores.NewContactsInmem()}, logger)

	rec := serve(t, h, http.MethodGet, "/readiness")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, logs.String(), "connection refused")
}

func TestRecoverMiddleware(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	_, api := humatest.New(t)
	api.UseMiddleware(ctxlog{}.loggerMiddleware(logger), ctxlog{}.recoverMiddleware(logger))
	huma.Get(api, "/panic", func(context.Context, *struct{}) (*struct{}, error) {
		panic("boom")
	})

	resp := api.Get("/panic")
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, logs.String(), "panic occurred")
	assert.Contains(t, logs.String(), "recovered=boom")
}

func TestErrorHandler(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	handle := ctxlog{}.errorHandler(logger)

	handle(context.Background(), huma.Error404NotFound("id not found"))
	handle(context.Background(), errors.New("disk full"))

	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "level=WARN")
	assert.Contains(t, lines[0], "status=404")
	assert.Contains(t, lines[1], "level=ERROR")
	assert.Contains(t, lines[1], "disk full")
}
