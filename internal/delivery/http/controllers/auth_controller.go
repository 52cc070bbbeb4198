package controllers

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	h "eventscout/internal/delivery/http/helpers"
	"eventscout/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// LoginRequest is the request body for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember,omitempty"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(l.Email) == "" {
		errs = append(errs, "email is required")
	}
	if l.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// RegisterUserRequest is the request body for POST /auth/register
type RegisterUserRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	AcceptPrivacy bool   `json:"acceptPrivacy"`
}

// Validate implements Validator.
func (s RegisterUserRequest) Validate() []string {
	var errs []string
	email := strings.TrimSpace(strings.ToLower(s.Email))
	if email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegexp.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	if s.Password == "" {
		errs = append(errs, "password is required")
	} else if len(s.Password) < 8 {
		errs = append(errs, "password must be at least 8 characters")
	}
	if !s.AcceptPrivacy {
		errs = append(errs, "the privacy policy must be accepted")
	}
	return errs
}

// ForgotPasswordRequest is the request body for POST /auth/forgot-password
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// Validate implements Validator.
func (f ForgotPasswordRequest) Validate() []string {
	if strings.TrimSpace(f.Email) == "" {
		return []string{"email is required"}
	}
	return nil
}

// ResetPasswordRequest is the request body for POST /auth/reset-password
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (rp ResetPasswordRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(rp.Token) == "" {
		errs = append(errs, "token is required")
	}
	if rp.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

type AuthController struct {
	Logger        *slog.Logger
	Service       domain.AuthService
	PasswordReset domain.PasswordResetService
}

func NewAuthController(logger *slog.Logger, svc domain.AuthService, reset domain.PasswordResetService) *AuthController {
	return &AuthController{
		Logger:        logger,
		Service:       svc,
		PasswordReset: reset,
	}
}

// Login godoc
// @Summary Log in
// @Description Authenticate with email and password. Remember selects the durable token scope.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} helpers.APIResponse "data contains the user profile"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.Login(r.Context(), &domain.Credentials{
		Email:    strings.TrimSpace(strings.ToLower(req.Email)),
		Password: req.Password,
		Remember: req.Remember,
	})
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, user)
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param body body RegisterUserRequest true "Registration data"
// @Success 201 {object} helpers.APIResponse "data contains the user profile"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /auth/register [post]
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.Register(r.Context(), &domain.RegisterPayload{
		Name:          req.Name,
		Email:         strings.TrimSpace(strings.ToLower(req.Email)),
		Password:      req.Password,
		AcceptPrivacy: req.AcceptPrivacy,
	})
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, user)
}

// Me returns the current user, or null when anonymous.
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	user, err := c.Service.CurrentUser(r.Context())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, user)
}

// Refresh re-validates the session. A failed refresh has already forced
// logout by the time the error surfaces.
func (c *AuthController) Refresh(w http.ResponseWriter, r *http.Request) {
	tokens, err := c.Service.Refresh(r.Context())
	if err != nil {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "session expired")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, tokens)
}

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	c.Service.Logout(r.Context())
	h.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"loggedOut": true})
}

// ForgotPassword godoc
// @Summary Request a password reset email
// @Description Always succeeds for well-formed input so the endpoint does not leak which emails have accounts.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body ForgotPasswordRequest true "Account email"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /auth/forgot-password [post]
func (c *AuthController) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.PasswordReset.ForgotPassword(r.Context(), strings.TrimSpace(strings.ToLower(req.Email))); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"sent": true})
}

func (c *AuthController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.PasswordReset.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"reset": true})
}

func (c *AuthController) VerifyResetToken(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "token is required")
		return
	}
	valid, err := c.PasswordReset.VerifyResetToken(r.Context(), token)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"valid": valid})
}
