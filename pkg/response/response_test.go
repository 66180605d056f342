package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestHelpers(t *testing.T) {
	tests := []struct {
		name        string
		write       func(w http.ResponseWriter)
		wantStatus  int
		wantSuccess bool
		wantError   string
	}{
		{name: "success", write: func(w http.ResponseWriter) { Success(w, map[string]int{"n": 1}) }, wantStatus: http.StatusOK, wantSuccess: true},
		{name: "created", write: func(w http.ResponseWriter) { Created(w, "x") }, wantStatus: http.StatusCreated, wantSuccess: true},
		{name: "message", write: func(w http.ResponseWriter) { Message(w, http.StatusOK, "done", nil) }, wantStatus: http.StatusOK, wantSuccess: true},
		{name: "bad request", write: func(w http.ResponseWriter) { BadRequest(w, "bad") }, wantStatus: http.StatusBadRequest, wantError: "bad"},
		{name: "unauthorized", write: func(w http.ResponseWriter) { Unauthorized(w, "who") }, wantStatus: http.StatusUnauthorized, wantError: "who"},
		{name: "forbidden", write: func(w http.ResponseWriter) { Forbidden(w, "no") }, wantStatus: http.StatusForbidden, wantError: "no"},
		{name: "not found", write: func(w http.ResponseWriter) { NotFound(w, "gone") }, wantStatus: http.StatusNotFound, wantError: "gone"},
		{name: "conflict", write: func(w http.ResponseWriter) { Conflict(w, "dup") }, wantStatus: http.StatusConflict, wantError: "dup"},
		{name: "unavailable", write: func(w http.ResponseWriter) { ServiceUnavailable(w, "later") }, wantStatus: http.StatusServiceUnavailable, wantError: "later"},
		{name: "internal", write: func(w http.ResponseWriter) { InternalError(w, "oops") }, wantStatus: http.StatusInternalServerError, wantError: "oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content type = %q", ct)
			}
			resp := decode(t, rec)
			if resp.Success != tt.wantSuccess {
				t.Errorf("success = %v, want %v", resp.Success, tt.wantSuccess)
			}
			if resp.Error != tt.wantError {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantError)
			}
		})
	}
}
