package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStatusRecorderWriteTracksAndTruncates(t *testing.T) {
	base := httptest.NewRecorder()
	recorder := &statusRecorder{
		ResponseWriter: base,
		statusCode:     http.StatusOK,
		maxLogBytes:    10,
	}

	payload := []byte("abcdefghijklmnopqrstuvwxyz")
	written, err := recorder.Write(payload)
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if written != len(payload) {
		t.Fatalf("written bytes = %d, want %d", written, len(payload))
	}
	if recorder.bytesWritten != len(payload) {
		t.Fatalf("bytesWritten = %d, want %d", recorder.bytesWritten, len(payload))
	}
	if recorder.logBody.Len() != 10 {
		t.Fatalf("log body length = %d, want 10", recorder.logBody.Len())
	}
	if !recorder.truncated {
		t.Fatalf("expected truncated flag to be true")
	}
}

func TestStatusRecorderHijackRequiresHijacker(t *testing.T) {
	recorder := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	if _, _, err := recorder.Hijack(); err == nil {
		t.Fatalf("expected hijack error for a recorder")
	}
}

func TestLogRequestsLogsFailuresWithBody(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	handler := logRequests(zap.New(core), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/x", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("request failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one failure log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusNotFound) {
		t.Fatalf("status field = %v", fields["status"])
	}
	if fields["response"] != "{\"error\":\"session not found\"}\n" {
		t.Fatalf("response field = %q", fields["response"])
	}
}
