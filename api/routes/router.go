package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/mechanix-app/mechanix-backend/api/controllers"
	"github.com/mechanix-app/mechanix-backend/api/middleware"
	"github.com/mechanix-app/mechanix-backend/pkg/config"
	"github.com/mechanix-app/mechanix-backend/pkg/enums"
	"github.com/mechanix-app/mechanix-backend/pkg/logger"
)

// Deps bundles everything the router mounts.
type Deps struct {
	Logger        *logger.Logger
	JWT           config.JWTConfig
	AuthRateLimit config.AuthRateLimitConfig
	Limiter       middleware.Limiter

	Health      *controllers.HealthController
	Auth        *controllers.AuthController
	Cars        *controllers.CarController
	Mechanics   *controllers.MechanicController
	Requests    *controllers.RequestController
	Comments    *controllers.CommentController
	Permissions *controllers.PermissionController
}

// New assembles the HTTP routing tree.
func New(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID(deps.Logger))
	r.Use(middleware.Recoverer(deps.Logger))
	r.Use(middleware.Logging(deps.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", deps.Health.Ready)
	r.Get("/health/live", deps.Health.Live)
	r.Get("/health/ready", deps.Health.Ready)

	authenticated := middleware.Authenticator(deps.JWT, deps.Logger)
	adminOnly := middleware.RequireRoles(deps.Logger, enums.UserRoleAdmin)

	loginLimit := middleware.RateLimitByIP(
		deps.Limiter, deps.Logger, "login", deps.AuthRateLimit.LoginIPLimit, deps.AuthRateLimit.LoginWindow)
	otpLimit := middleware.RateLimitByIP(
		deps.Limiter, deps.Logger, "otp", deps.AuthRateLimit.OTPIPLimit, deps.AuthRateLimit.OTPWindow)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(otpLimit).Post("/signup", deps.Auth.Signup)
			r.With(otpLimit).Post("/signup/verify", deps.Auth.VerifySignup)
			r.With(loginLimit).Post("/login", deps.Auth.Login)
			r.Post("/refresh", deps.Auth.Refresh)
			r.Post("/logout", deps.Auth.Logout)
			r.With(otpLimit).Post("/password/reset", deps.Auth.RequestPasswordReset)
			r.With(otpLimit).Post("/password/reset/confirm", deps.Auth.ConfirmPasswordReset)

			r.Group(func(r chi.Router) {
				r.Use(authenticated)
				r.Get("/profile", deps.Auth.Profile)
				r.Patch("/profile", deps.Auth.UpdateProfile)
				r.Delete("/profile", deps.Auth.DeleteAccount)
			})
		})

		r.Route("/cars", func(r chi.Router) {
			r.Use(authenticated)
			r.Post("/", deps.Cars.Create)
			r.Get("/", deps.Cars.List)
			r.Get("/{id}", deps.Cars.Get)
			r.Patch("/{id}", deps.Cars.Update)
			r.Delete("/{id}", deps.Cars.Delete)
		})

		r.Route("/mechanics", func(r chi.Router) {
			// Workshop discovery is public.
			r.Get("/", deps.Mechanics.List)
			r.Get("/{id}", deps.Mechanics.Get)
			r.Get("/{id}/rating", deps.Mechanics.Rating)
			r.Get("/{id}/comments", deps.Mechanics.Comments)

			r.Group(func(r chi.Router) {
				r.Use(authenticated)
				r.Post("/", deps.Mechanics.Create)
				r.Patch("/me", deps.Mechanics.Update)
				r.Delete("/{id}", deps.Mechanics.Delete)
			})
		})

		r.Route("/mechanic/car/request", func(r chi.Router) {
			r.Use(authenticated)
			r.Post("/", deps.Requests.Create)
			r.Get("/", deps.Requests.List)
			r.Patch("/user/{id}", deps.Requests.UpdateByUser)
			r.Patch("/mechanic-user/{id}", deps.Requests.UpdateByMechanic)
			r.Delete("/{id}", deps.Requests.Delete)
			r.Get("/{id}/comments", deps.Comments.ListByRequest)
		})

		r.Route("/comments", func(r chi.Router) {
			r.Use(authenticated)
			r.Post("/", deps.Comments.Create)
			r.Delete("/{id}", deps.Comments.Delete)
		})

		r.Route("/permissions", func(r chi.Router) {
			r.Use(authenticated)
			r.Use(adminOnly)
			r.Post("/", deps.Permissions.Issue)
			r.Get("/key/{key}", deps.Permissions.GetByKey)
			r.Get("/user/{id}", deps.Permissions.ListByUser)
		})
	})

	return r
}
