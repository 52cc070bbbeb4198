package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventscout/internal/delivery/http/controllers"
	"eventscout/internal/delivery/http/middleware"
	"eventscout/internal/domain"
)

// Controllers bundles everything the router mounts.
type Controllers struct {
	Events   *controllers.EventController
	Speakers *controllers.SpeakerController
	Users    *controllers.UserController
	Admin    *controllers.AdminController
	Auth     *controllers.AuthController
	Upload   *controllers.UploadController
}

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(c Controllers, verifier domain.TokenVerifier) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(verifier)
	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return auth(middleware.RequireRole(string(domain.RoleAdmin))(next))
	}

	// Events
	mux.HandleFunc("GET /events", c.Events.List)
	mux.HandleFunc("GET /events/{id}", c.Events.Get)
	mux.HandleFunc("POST /events", auth(c.Events.Create))
	mux.HandleFunc("PUT /events/{id}", auth(c.Events.Update))
	mux.HandleFunc("DELETE /events/{id}", auth(c.Events.Delete))
	mux.HandleFunc("POST /events/{id}/register", c.Events.Register)

	// Speakers
	mux.HandleFunc("GET /speakers", c.Speakers.List)
	mux.HandleFunc("GET /speakers/{id}", c.Speakers.Get)
	mux.HandleFunc("POST /speakers/apply", c.Speakers.Apply)
	mux.HandleFunc("POST /speakers/{id}/follow", auth(c.Speakers.Follow))
	mux.HandleFunc("DELETE /speakers/{id}/follow", auth(c.Speakers.Unfollow))
	mux.HandleFunc("GET /speakers/{id}/follow", auth(c.Speakers.FollowingStatus))
	mux.HandleFunc("GET /speakers/{id}/events", c.Speakers.Events)
	mux.HandleFunc("GET /speakers/{id}/dashboard", auth(c.Speakers.Dashboard))

	// Users
	mux.HandleFunc("GET /users/me/dashboard", auth(c.Users.Dashboard))
	mux.HandleFunc("GET /users/me/saved-events", auth(c.Users.SavedEvents))
	mux.HandleFunc("POST /users/me/saved-events/{eventID}", auth(c.Users.SaveEvent))
	mux.HandleFunc("DELETE /users/me/saved-events/{eventID}", auth(c.Users.RemoveSavedEvent))

	// Admin
	mux.HandleFunc("GET /admin/overview", admin(c.Admin.Overview))
	mux.HandleFunc("POST /admin/events", admin(c.Admin.CreateEvent))
	mux.HandleFunc("GET /admin/categories", admin(c.Admin.ListCategories))
	mux.HandleFunc("PUT /admin/categories/{id}", admin(c.Admin.UpdateCategory))
	mux.HandleFunc("GET /admin/ads", admin(c.Admin.ListAds))
	mux.HandleFunc("POST /admin/ads", admin(c.Admin.CreateAd))
	mux.HandleFunc("PUT /admin/ads/{id}", admin(c.Admin.UpdateAd))
	mux.HandleFunc("DELETE /admin/ads/{id}", admin(c.Admin.DeleteAd))
	mux.HandleFunc("GET /admin/speaker-applications", admin(c.Admin.SpeakerApplications))

	// Auth
	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("POST /auth/register", c.Auth.Register)
	mux.HandleFunc("GET /auth/me", c.Auth.Me)
	mux.HandleFunc("POST /auth/refresh", c.Auth.Refresh)
	mux.HandleFunc("POST /auth/logout", c.Auth.Logout)
	mux.HandleFunc("POST /auth/forgot-password", c.Auth.ForgotPassword)
	mux.HandleFunc("POST /auth/reset-password", c.Auth.ResetPassword)
	mux.HandleFunc("GET /auth/reset-password/verify", c.Auth.VerifyResetToken)

	// Uploads
	mux.HandleFunc("POST /upload/image", auth(c.Upload.UploadImage))
	mux.HandleFunc("POST /upload/file", auth(c.Upload.UploadFile))
	mux.HandleFunc("DELETE /upload/{id}", auth(c.Upload.DeleteFile))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
