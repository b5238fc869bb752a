package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootAndHealth(t *testing.T) {
	ts := newTestServer(t, map[string]HealthCheck{
		"database": func(context.Context) error { return nil },
	}, nil)

	w := ts.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	w = ts.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","database":"ok"}`, w.Body.String())
}

func TestHealthDegraded(t *testing.T) {
	ts := newTestServer(t, map[string]HealthCheck{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("dial tcp: refused") },
	}, nil)

	w := ts.do(http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"degraded","database":"ok","redis":"unavailable"}`, w.Body.String())
}

func TestRequestIDIsEchoed(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	w := ts.do(http.MethodGet, "/", "", map[string]string{requestIDHeader: "abc-123"})

	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	w := ts.do(http.MethodGet, "/metrics", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestParseForwardedFor(t *testing.T) {
	assert.Equal(t, []string{"1.1.1.1", "2.2.2.2"}, parseForwardedFor(" 1.1.1.1 ,, 2.2.2.2"))
	assert.Empty(t, parseForwardedFor(""))
}
