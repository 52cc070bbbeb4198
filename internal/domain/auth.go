package domain

import (
	"context"
	"time"
)

// AuthTokens is the token triple owned exclusively by the token store.
// ExpiresAt is epoch milliseconds; zero means the token never expires
// (a liveness assumption, not a correctness guarantee).
type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresAt    int64  `json:"expiresAt,omitempty"`
}

// TokenStore persists the process-wide token slot in one of two scopes:
// durable (survives restart) or session (process lifetime only).
// Reads must find a value regardless of which scope it was written to.
type TokenStore interface {
	Save(tokens AuthTokens, persist bool) error
	Clear()
	AccessToken() string
	RefreshToken() string
	ExpiresAt() int64
	IsExpired(tolerance time.Duration) bool
}

// Credentials is the login input. Remember selects the durable token scope.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember,omitempty"`
}

// RegisterPayload is the registration input.
type RegisterPayload struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	AcceptPrivacy bool   `json:"acceptPrivacy"`
}

// AuthService drives the authentication lifecycle:
// anonymous -> authenticating -> authenticated, and back to anonymous on
// logout or irrecoverable refresh failure. Profile and tokens populate
// atomically; a failed login writes nothing.
type AuthService interface {
	Login(ctx context.Context, creds *Credentials) (*UserProfile, error)
	Register(ctx context.Context, payload *RegisterPayload) (*UserProfile, error)
	// CurrentUser returns the authenticated profile, or nil when anonymous.
	CurrentUser(ctx context.Context) (*UserProfile, error)
	// Refresh re-validates the session. On failure it forces logout and
	// returns the error so the caller can redirect to login.
	Refresh(ctx context.Context) (*AuthTokens, error)
	Logout(ctx context.Context)
	// Bootstrap restores a session from stored tokens at process start.
	// Any failure silently resolves to anonymous; it never returns an error.
	Bootstrap(ctx context.Context)
	IsAuthenticated() bool
}

// PasswordResetService drives the forgot/reset password flow.
type PasswordResetService interface {
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	VerifyResetToken(ctx context.Context, token string) (bool, error)
}

// TokenVerifier checks a bearer token and extracts its subject and role.
type TokenVerifier interface {
	Verify(token string) (userID, role string, err error)
}

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// PasswordResetEmailData holds data for the password reset email.
type PasswordResetEmailData struct {
	Email            string
	ResetLink        string
	ExpiresInMinutes int
}

// WelcomeEmailData holds data for the welcome email.
type WelcomeEmailData struct {
	Email string
	Name  string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendPasswordReset(ctx context.Context, data *PasswordResetEmailData) error
	SendWelcome(ctx context.Context, data *WelcomeEmailData) error
}
