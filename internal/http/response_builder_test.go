package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"expensetracker/internal/core"
)

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/expenses/1").
		Body(map[string]string{"id": "1"}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("Location"); got != "/api/expenses/1" {
		t.Errorf("Location = %q", got)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Body.String(); got != "{\"id\":\"1\"}\n" {
		t.Errorf("Body = %q", got)
	}
}

func TestJSONResponseBuilder_NoBody(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(w)

	if w.Code != http.StatusNoContent {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusNoContent)
	}
	if w.Body.Len() != 0 {
		t.Errorf("Body = %q, want empty", w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "" {
		t.Errorf("Content-Type = %q, want empty", got)
	}
}

func TestJSONResponseBuilder_EncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Body(map[string]any{"bad": make(chan int)}).Write(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want 500", w.Code)
	}
	if got := w.Body.String(); got != `{"error":"internal server error"}` {
		t.Errorf("Body = %q", got)
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		builder    *JSONResponseBuilder
		wantStatus int
		wantBody   string
	}{
		{
			name:       "bad request",
			builder:    BadRequestError("invalid sort field"),
			wantStatus: http.StatusBadRequest,
			wantBody:   "{\"error\":\"invalid sort field\"}\n",
		},
		{
			name:       "not found",
			builder:    NotFoundError("expense not found"),
			wantStatus: http.StatusNotFound,
			wantBody:   "{\"error\":\"expense not found\"}\n",
		},
		{
			name:       "internal server error hides cause",
			builder:    InternalServerError(),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "{\"error\":\"internal server error\"}\n",
		},
		{
			name:       "custom status",
			builder:    ErrorResponse(http.StatusTooManyRequests, "slow down"),
			wantStatus: http.StatusTooManyRequests,
			wantBody:   "{\"error\":\"slow down\"}\n",
		},
		{
			name:       "validation",
			builder:    ValidationError(core.FieldErrors{core.FieldAmount: core.MsgAmountPositive}),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   "{\"errors\":{\"amount\":\"Amount must be greater than 0\"}}\n",
		},
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
