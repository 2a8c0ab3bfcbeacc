package httpjson_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alumlink/alumlink/internal/app/system/apperr"
	"github.com/alumlink/alumlink/internal/app/system/httpjson"
	"go.uber.org/zap"
)

func TestDecode(t *testing.T) {
	var dst struct {
		Email string `json:"email"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.c"}`))
	if err := httpjson.Decode(r, &dst); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if dst.Email != "a@b.c" {
		t.Errorf("expected decoded email, got %q", dst.Email)
	}

	// Empty and malformed bodies are validation errors.
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	if err := httpjson.Decode(r, &dst); !apperr.IsKind(err, apperr.Validation) {
		t.Errorf("expected Validation for an empty body, got %v", err)
	}
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	if err := httpjson.Decode(r, &dst); !apperr.IsKind(err, apperr.Validation) {
		t.Errorf("expected Validation for malformed JSON, got %v", err)
	}
}

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	httpjson.OK(rec, map[string]any{"count": 3})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"success":true`) || !strings.Contains(body, `"count":3`) {
		t.Errorf("unexpected envelope: %s", body)
	}

	rec = httptest.NewRecorder()
	httpjson.Created(rec, nil)
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestError_ClientFacingMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	httpjson.Error(rec, zap.NewNop(), apperr.New(apperr.Conflict, "a connection already exists"))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error":"a connection already exists"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestError_InternalHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	cause := errors.New("mongo: socket was unexpectedly closed")
	httpjson.Error(rec, zap.NewNop(), apperr.Wrap(apperr.Internal, "list jobs", cause))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "mongo") || strings.Contains(body, "list jobs") {
		t.Errorf("internal detail leaked to the client: %s", body)
	}
	if !strings.Contains(body, "something went wrong") {
		t.Errorf("expected the generic message, got %s", body)
	}
}

func TestError_PlainErrorTreatedAsInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	httpjson.Error(rec, zap.NewNop(), errors.New("boom"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Errorf("cause leaked to the client: %s", rec.Body.String())
	}
}
