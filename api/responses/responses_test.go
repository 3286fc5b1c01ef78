package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/mechanix-app/mechanix-backend/pkg/errors"
	"github.com/mechanix-app/mechanix-backend/pkg/types"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.ErrorEnvelope {
	t.Helper()
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return envelope
}

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, http.StatusCreated, map[string]int{"id": 7})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	data, ok := envelope.Data.(map[string]any)
	if !ok || data["id"] != float64(7) {
		t.Fatalf("unexpected data: %+v", envelope.Data)
	}
}

func TestErrorMapsTypedCodes(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{pkgerrors.New(pkgerrors.CodeValidation, "bad input"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{pkgerrors.New(pkgerrors.CodeNotFound, "gone"), http.StatusNotFound, "NOT_FOUND"},
		{pkgerrors.New(pkgerrors.CodeConflict, "taken"), http.StatusBadRequest, "CONFLICT"},
		{pkgerrors.New(pkgerrors.CodeStateConflict, "bad move"), http.StatusBadRequest, "STATE_CONFLICT"},
		{pkgerrors.New(pkgerrors.CodeRateLimit, "slow down"), http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		Error(context.Background(), rec, nil, tc.err)

		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.code, tc.status, rec.Code)
		}
		envelope := decodeError(t, rec)
		if envelope.Error.Code != tc.code {
			t.Fatalf("expected code %s, got %s", tc.code, envelope.Error.Code)
		}
	}
}

func TestErrorMasksInternalMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(context.Background(), rec, nil, errors.New("pq: connection refused on 10.0.0.3"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	envelope := decodeError(t, rec)
	if envelope.Error.Message != "internal server error" {
		t.Fatalf("internal details leaked: %q", envelope.Error.Message)
	}
}

func TestErrorClientMessagesSurvive(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(context.Background(), rec, nil, pkgerrors.New(pkgerrors.CodeValidation, "rate must be between 1 and 5"))

	envelope := decodeError(t, rec)
	if envelope.Error.Message != "rate must be between 1 and 5" {
		t.Fatalf("unexpected message: %q", envelope.Error.Message)
	}
}
