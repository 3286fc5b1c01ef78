package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/mechanix-app/mechanix-backend/pkg/errors"
)

type signupBody struct {
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
	Password    string `json:"password" validate:"required,min=8"`
}

func jsonRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestDecodeJSONValid(t *testing.T) {
	var body signupBody
	err := DecodeJSON(jsonRequest(`{"phone_number":"+15551234567","password":"correct-horse"}`), &body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.PhoneNumber != "+15551234567" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestDecodeJSONFieldErrors(t *testing.T) {
	var body signupBody
	err := DecodeJSON(jsonRequest(`{"phone_number":"not-a-phone","password":"short"}`), &body)

	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", typed.Details())
	}
	if details["phonenumber"] == "" || details["password"] == "" {
		t.Fatalf("missing field details: %v", details)
	}
}

func TestDecodeJSONRejectsMalformedAndEmpty(t *testing.T) {
	var body signupBody

	err := DecodeJSON(jsonRequest(`{"phone_number":`), &body)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	err = DecodeJSON(jsonRequest(""), &body)
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty body, got %v", err)
	}

	err = DecodeJSON(jsonRequest(`{"phone_number":"+15551234567","password":"correct-horse","extra":1}`), &body)
	if err == nil {
		t.Fatal("expected unknown field rejection")
	}
}

func TestURLParamInt64(t *testing.T) {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", "42")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	id, err := URLParamInt64(req, "id")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected 42, got %d", id)
	}

	routeCtx.URLParams.Add("bad", "-3")
	if _, err := URLParamInt64(req, "bad"); err == nil {
		t.Fatal("expected error for negative id")
	}
}
