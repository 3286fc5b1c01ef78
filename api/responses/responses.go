package responses

import (
	"context"
	"encoding/json"
	"net/http"

	pkgerrors "github.com/mechanix-app/mechanix-backend/pkg/errors"
	"github.com/mechanix-app/mechanix-backend/pkg/logger"
	"github.com/mechanix-app/mechanix-backend/pkg/types"
)

// Success writes a data envelope with the given status.
func Success(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Data: data})
}

// NoContent writes an empty 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error translates an error into the wire envelope. Typed errors map to their
// metadata; anything else is a masked 500. Server-side failures are logged,
// client mistakes are not.
func Error(ctx context.Context, w http.ResponseWriter, logg *logger.Logger, err error) {
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	message := typed.Message()
	if meta.HTTPStatus >= http.StatusInternalServerError {
		message = meta.PublicMessage
		if logg != nil {
			logg.Error(logg.WithField(ctx, "diagnostics", pkgerrors.Dump(err)), "request failed", err)
		}
	}

	apiErr := types.APIError{
		Code:    string(typed.Code()),
		Message: message,
	}
	if meta.DetailsAllowed {
		apiErr.Details = typed.Details()
	}

	writeJSON(w, meta.HTTPStatus, types.ErrorEnvelope{Error: apiErr})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
