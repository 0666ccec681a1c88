package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{NotFound("patient not found"), http.StatusNotFound},
		{Conflict("slot overlap"), http.StatusConflict},
		{InvalidArgument("amount must be positive"), http.StatusBadRequest},
		{InvalidState("cannot cancel completed booking"), http.StatusBadRequest},
		{InsufficientFunds("insufficient funds"), http.StatusBadRequest},
		{InsufficientStock("insufficient stock"), http.StatusBadRequest},
		{Validation(FieldError{Field: "email", Message: "required"}), http.StatusBadRequest},
	}

	for _, tt := range tests {
		if got := tt.err.StatusCode(); got != tt.want {
			t.Errorf("%s: StatusCode() = %d, want %d", tt.err.Kind, got, tt.want)
		}
	}
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("book appointment: %w", NotFound("slot not found"))

	var appErr *Error
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As failed to unwrap *Error")
	}
	if appErr.Kind != KindNotFound {
		t.Errorf("Kind = %v, want KindNotFound", appErr.Kind)
	}
}

func handleErr(t *testing.T, err error) (*httptest.ResponseRecorder, errorResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := HTTPErrorHandler(zerolog.Nop(), false)
	handler(err, c)

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	return rec, resp
}

func TestHTTPErrorHandlerDomainError(t *testing.T) {
	rec, resp := handleErr(t, NotFound("Medication not found"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if resp.Success {
		t.Error("success = true, want false")
	}
	if resp.Message != "Medication not found" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestHTTPErrorHandlerValidationDetails(t *testing.T) {
	rec, resp := handleErr(t, Validation(
		FieldError{Field: "email", Message: "must be a valid email"},
		FieldError{Field: "phone", Message: "is required"},
	))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(resp.Details) != 2 {
		t.Fatalf("details = %v, want 2 entries", resp.Details)
	}
	if resp.Details[0].Field != "email" {
		t.Errorf("details[0].field = %q", resp.Details[0].Field)
	}
}

func TestHTTPErrorHandlerUniqueViolation(t *testing.T) {
	rec, resp := handleErr(t, &pgconn.PgError{Code: "23505", ConstraintName: "patients_email_key"})

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	if resp.Message != "Resource already exists" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestHTTPErrorHandlerForeignKeyViolation(t *testing.T) {
	rec, _ := handleErr(t, &pgconn.PgError{Code: "23503"})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHTTPErrorHandlerUnexpectedErrorHidesDetail(t *testing.T) {
	rec, resp := handleErr(t, errors.New("pq: connection reset"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if resp.Message != "Internal Server Error" {
		t.Errorf("message = %q, internal detail must not leak", resp.Message)
	}
}

func TestHTTPErrorHandlerDevModeEchoesDetail(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := HTTPErrorHandler(zerolog.Nop(), true)
	handler(errors.New("boom"), c)

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Message != "boom" {
		t.Errorf("message = %q, want boom in dev mode", resp.Message)
	}
}
