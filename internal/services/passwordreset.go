package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"eventscout/internal/apiclient"
	"eventscout/internal/domain"
	"eventscout/internal/secondary"
)

type passwordResetService struct {
	client         *apiclient.Client
	identity       *secondary.Identity
	email          domain.EmailService
	appBaseURL     string
	tokenExpiry    time.Duration
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewPasswordResetService returns a PasswordResetService. Reset tokens are
// issued by the identity subsystem and delivered by email; when the
// identity subsystem is unavailable the flow is delegated to the primary
// API instead.
func NewPasswordResetService(client *apiclient.Client, identity *secondary.Identity, email domain.EmailService, appBaseURL string, tokenExpiry time.Duration, logger *slog.Logger, timeout time.Duration) domain.PasswordResetService {
	return &passwordResetService{
		client:         client,
		identity:       identity,
		email:          email,
		appBaseURL:     appBaseURL,
		tokenExpiry:    tokenExpiry,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// ForgotPassword issues a reset token and emails the reset link. Unknown
// addresses resolve successfully so the endpoint does not leak which
// emails have accounts.
func (s *passwordResetService) ForgotPassword(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if s.identity == nil {
		return s.client.Post(ctx, "/auth/forgot-password", map[string]string{"email": email}, nil)
	}

	token, err := s.identity.CreateResetToken(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Info("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("create reset token: %w", err)
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.appBaseURL, url.QueryEscape(token))
	if err := s.email.SendPasswordReset(ctx, &domain.PasswordResetEmailData{
		Email:            email,
		ResetLink:        resetLink,
		ExpiresInMinutes: int(s.tokenExpiry.Minutes()),
	}); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// ResetPassword consumes the token and sets the new password.
func (s *passwordResetService) ResetPassword(ctx context.Context, token, password string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if s.identity == nil {
		body := map[string]string{"token": token, "password": password}
		return s.client.Post(ctx, "/auth/reset-password", body, nil)
	}
	return s.identity.ResetPassword(ctx, token, password)
}

// VerifyResetToken reports whether a reset token is still usable.
func (s *passwordResetService) VerifyResetToken(ctx context.Context, token string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if s.identity == nil {
		var out struct {
			Valid bool `json:"valid"`
		}
		err := s.client.Get(ctx, "/auth/reset-password/verify", map[string]string{"token": token}, &out)
		if err != nil {
			return false, err
		}
		return out.Valid, nil
	}
	return s.identity.VerifyResetToken(ctx, token)
}
