package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mechanix-app/mechanix-backend/api/controllers"
	"github.com/mechanix-app/mechanix-backend/pkg/auth"
	"github.com/mechanix-app/mechanix-backend/pkg/config"
	"github.com/mechanix-app/mechanix-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:               "test-secret",
		Issuer:               "mechanix-test",
		AccessExpiryMinutes:  30,
		RefreshExpiryMinutes: 43200,
	}
}

// testRouter mounts the full tree with nil services. Handlers that would hit a
// service are only exercised through middleware rejections here.
func testRouter() http.Handler {
	return New(Deps{
		JWT:         testJWTConfig(),
		Health:      controllers.NewHealthController(nil, nil, nil),
		Auth:        controllers.NewAuthController(nil, nil),
		Cars:        controllers.NewCarController(nil, nil),
		Mechanics:   controllers.NewMechanicController(nil, nil, nil),
		Requests:    controllers.NewRequestController(nil, nil),
		Comments:    controllers.NewCommentController(nil, nil),
		Permissions: controllers.NewPermissionController(nil, nil),
	})
}

func accessToken(t *testing.T, role enums.UserRole) string {
	t.Helper()
	token, err := auth.MintToken(testJWTConfig(), time.Now(), auth.TokenPayload{
		UserID: 3, Role: role, TokenType: enums.TokenTypeAccess,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthRoutes(t *testing.T) {
	router := testRouter()
	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/cars"},
		{http.MethodPost, "/api/v1/mechanic/car/request"},
		{http.MethodGet, "/api/v1/auth/profile"},
		{http.MethodPost, "/api/v1/comments"},
		{http.MethodPost, "/api/v1/permissions"},
	}

	router := testRouter()
	for _, tc := range paths {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestPermissionRoutesRequireAdmin(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/permissions", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken(t, enums.UserRoleUser))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
