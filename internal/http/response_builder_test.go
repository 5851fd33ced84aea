package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"tally/internal/backup"
	"tally/internal/core"
	"tally/internal/services"
	"tally/internal/store"
)

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Custom", "value").
		Body(map[string]int{"n": 1}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if w.Header().Get("X-Custom") != "value" {
		t.Errorf("Custom header not set")
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if w.Body.String() != "{\"n\":1}\n" {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestJSONResponseBuilder_NoBody(t *testing.T) {
	w := httptest.NewRecorder()
	NoContent(w)

	if w.Code != http.StatusNoContent {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusNoContent)
	}
	if w.Body.Len() != 0 {
		t.Errorf("Body = %q, want empty", w.Body.String())
	}
	if w.Header().Get("Content-Type") != "" {
		t.Error("Content-Type set without a body")
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		builder    *JSONResponseBuilder
		wantStatus int
		wantBody   string
	}{
		{"bad request", BadRequestError("Invalid input"), http.StatusBadRequest, `{"error":"Invalid input"}` + "\n"},
		{"not found", NotFoundError("Resource not found"), http.StatusNotFound, `{"error":"Resource not found"}` + "\n"},
		{"conflict", ConflictError("Taken"), http.StatusConflict, `{"error":"Taken"}` + "\n"},
		{"internal server error", InternalServerError("Something broke"), http.StatusInternalServerError, `{"error":"Something broke"}` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("Body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("update transaction: %w", store.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("add category: %w", store.ErrDuplicateCategory), http.StatusConflict},
		{fmt.Errorf("delete category 6: %w", services.ErrSystemCategory), http.StatusConflict},
		{fmt.Errorf("add budget: %w", store.ErrUnknownCategory), http.StatusBadRequest},
		{fmt.Errorf("import ledger: %w", store.ErrDuplicateID), http.StatusBadRequest},
		{core.ErrInvalidAmount, http.StatusBadRequest},
		{core.ErrInvalidPeriod, http.StatusBadRequest},
		{backup.ErrEmptyDocument, http.StatusBadRequest},
		{badRequest("invalid sort %q", "x"), http.StatusBadRequest},
		{errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWriteError_HidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	writeError(w, r, "test", errors.New("persist ledger: disk full"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d", w.Code)
	}
	if w.Body.String() != `{"error":"internal error"}`+"\n" {
		t.Errorf("Body = %q", w.Body.String())
	}
}
