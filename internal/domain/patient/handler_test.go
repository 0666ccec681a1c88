package patient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo, *mockRepo) {
	svc, repo, _ := newTestService()
	return NewHandler(svc), echo.New(), repo
}

func TestHandlerCreate(t *testing.T) {
	h, e, _ := newTestHandler()
	body := `{"name":"Jane Doe","email":"jane@example.com","phone":"5551234567","dateOfBirth":"1990-04-12"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var resp struct {
		Success bool    `json:"success"`
		Message string  `json:"message"`
		Data    Patient `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.Message != "Patient created successfully" {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if resp.Data.Email != "jane@example.com" {
		t.Errorf("unexpected patient payload: %+v", resp.Data)
	}
}

func TestHandlerCreateInvalidBody(t *testing.T) {
	h, e, _ := newTestHandler()
	body := `{"name":"X","email":"not-an-email","phone":"123"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err == nil {
		t.Error("expected validation error")
	}
}

func TestHandlerGet(t *testing.T) {
	h, e, repo := newTestHandler()
	p := validInput()
	repo.Create(nil, p)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandlerGetBadID(t *testing.T) {
	h, e, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.Get(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 HTTPError, got %v", err)
	}
}
