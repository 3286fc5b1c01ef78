package controllers

import (
	"net/http"

	"github.com/mechanix-app/mechanix-backend/api/middleware"
	"github.com/mechanix-app/mechanix-backend/api/responses"
	pkgerrors "github.com/mechanix-app/mechanix-backend/pkg/errors"
	"github.com/mechanix-app/mechanix-backend/pkg/logger"
	"github.com/mechanix-app/mechanix-backend/pkg/pagination"
)

// requirePrincipal pulls the authenticated caller or writes a 401.
func requirePrincipal(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (middleware.Principal, bool) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		responses.Error(r.Context(), w, logg,
			pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return middleware.Principal{}, false
	}
	return principal, true
}

// queryPagination parses limit/offset or writes a 400.
func queryPagination(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (pagination.Params, bool) {
	params, err := pagination.FromQuery(r.URL.Query())
	if err != nil {
		responses.Error(r.Context(), w, logg,
			pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pagination"))
		return pagination.Params{}, false
	}
	return params, true
}
