package resp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mocrs/internal/pkg/errs"
)

func TestRespondError_Shape(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	RespondError(rec, req, errs.NewError(errs.ErrUnauthorized))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want 401", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content-type=%q", ct)
	}

	var body map[string]map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"]["message"] != "Unauthorized" {
		t.Fatalf("message=%v", body["error"]["message"])
	}
	if body["error"]["status"] != float64(401) {
		t.Fatalf("status field=%v", body["error"]["status"])
	}
	if len(body["error"]) != 2 {
		t.Fatalf("error body has unexpected fields: %v", body["error"])
	}
}

func TestRespondError_NilIsInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d, want 500", rec.Code)
	}
}

func TestRespondSuccess_WritesPayloadAsIs(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondSuccess(rec, httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"token": "abc"})

	if rec.Body.String() != `{"token":"abc"}` {
		t.Fatalf("body=%s", rec.Body.String())
	}
}
