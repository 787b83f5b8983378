package main

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/docmark/internal/config"
	"github.com/sells-group/docmark/internal/pipeline"
	"github.com/sells-group/docmark/pkg/anthropic"
)

func testProcessor(t *testing.T) *pipeline.Processor {
	t.Helper()
	c := &config.Config{
		Anthropic: config.AnthropicConfig{
			VisionModel: "claude-sonnet-4-5-20250929",
			FormatModel: "claude-haiku-4-5-20251001",
		},
		Extraction: config.ExtractionConfig{MaxVisionCalls: 100, DPI: 300},
	}
	p, err := pipeline.New(c, anthropic.NewClient("test-key"), nil)
	require.NoError(t, err)
	return p
}

func TestServeMux_Health(t *testing.T) {
	mux := newServeMux(testProcessor(t), nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestServeMux_ConvertRejectsEmptyBody(t *testing.T) {
	mux := newServeMux(testProcessor(t), nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader("")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeMux_ConvertRejectsInvalidPDF(t *testing.T) {
	mux := newServeMux(testProcessor(t), nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader("not a pdf")))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestServeMux_RunsWithoutStore(t *testing.T) {
	mux := newServeMux(testProcessor(t), nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs/abc", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview/abc", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGracefulShutdown_DrainsIdleServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &http.Server{Handler: newServeMux(testProcessor(t), nil)}
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	// Shutdown must complete cleanly even though any signal context that
	// triggered it would already be canceled.
	gracefulShutdown(srv)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServeMux_MethodNotAllowed(t *testing.T) {
	mux := newServeMux(testProcessor(t), nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
