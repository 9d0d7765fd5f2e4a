package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]string{"id": "g1"})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !body.Success || body.Data["id"] != "g1" {
		t.Errorf("Unexpected body: %+v", body)
	}
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter, string)
		status int
		code   string
	}{
		{"bad request", BadRequest, http.StatusBadRequest, "BAD_REQUEST"},
		{"not found", NotFound, http.StatusNotFound, "NOT_FOUND"},
		{"internal", InternalError, http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"unauthorized", Unauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", Forbidden, http.StatusForbidden, "FORBIDDEN"},
		{"conflict", Conflict, http.StatusConflict, "CONFLICT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec, "boom")

			var body APIResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if rec.Code != tt.status || body.Success || body.Error == nil || body.Error.Code != tt.code || body.Error.Message != "boom" {
				t.Errorf("Unexpected response %d %+v", rec.Code, body)
			}
		})
	}
}
