package services

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"eventscout/internal/apiclient"
	"eventscout/internal/domain"
	"eventscout/internal/secondary"
)

// expiryTolerance is how early a token counts as expired, covering clock
// skew between this process and the token issuer.
const expiryTolerance = 30 * time.Second

type authState int

const (
	stateAnonymous authState = iota
	stateAuthenticating
	stateAuthenticated
)

// authService drives the authentication lifecycle. The identity subsystem
// of the managed store is authoritative: it is tried first, and its domain
// rejections (wrong password, duplicate registration, and so on) propagate
// unchanged. Only infrastructure failures fall through to the primary API.
// Tokens and profile populate atomically under the mutex; a failed attempt
// writes nothing.
type authService struct {
	client         *apiclient.Client
	identity       *secondary.Identity
	tokens         domain.TokenStore
	email          domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration

	mu      sync.Mutex
	state   authState
	profile *domain.UserProfile
}

// NewAuthService returns an AuthService. A nil identity means the managed
// store is unavailable and every attempt goes straight to the primary API.
func NewAuthService(client *apiclient.Client, identity *secondary.Identity, tokens domain.TokenStore, email domain.EmailService, logger *slog.Logger, timeout time.Duration) domain.AuthService {
	return &authService{
		client:         client,
		identity:       identity,
		tokens:         tokens,
		email:          email,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// sessionPayload is the token+profile response shape of the primary API's
// auth endpoints.
type sessionPayload struct {
	User         *domain.UserProfile `json:"user"`
	AccessToken  string              `json:"accessToken"`
	RefreshToken string              `json:"refreshToken"`
	ExpiresAt    int64               `json:"expiresAt"`
}

func (s *authService) Login(ctx context.Context, creds *domain.Credentials) (*domain.UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	s.setState(stateAuthenticating)
	session, err := s.openSession(ctx, "auth.login",
		func(ctx context.Context) (*secondary.Session, error) {
			return s.identity.SignIn(ctx, creds.Email, creds.Password)
		},
		func(ctx context.Context) (*sessionPayload, error) {
			var payload sessionPayload
			if err := s.client.Post(ctx, "/auth/login", creds, &payload); err != nil {
				return nil, err
			}
			return &payload, nil
		},
	)
	if err != nil {
		s.setState(stateAnonymous)
		return nil, err
	}
	s.establish(session, creds.Remember)
	return session.User, nil
}

func (s *authService) Register(ctx context.Context, payload *domain.RegisterPayload) (*domain.UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	s.setState(stateAuthenticating)
	session, err := s.openSession(ctx, "auth.register",
		func(ctx context.Context) (*secondary.Session, error) {
			return s.identity.SignUp(ctx, payload.Email, payload.Password, payload.Name)
		},
		func(ctx context.Context) (*sessionPayload, error) {
			var out sessionPayload
			if err := s.client.Post(ctx, "/auth/register", payload, &out); err != nil {
				return nil, err
			}
			return &out, nil
		},
	)
	if err != nil {
		s.setState(stateAnonymous)
		return nil, err
	}
	s.establish(session, false)

	if s.email != nil {
		if err := s.email.SendWelcome(ctx, &domain.WelcomeEmailData{
			Email: session.User.Email,
			Name:  session.User.Name,
		}); err != nil {
			s.logger.Warn("failed to send welcome email", "error", err)
		}
	}
	return session.User, nil
}

// openSession tries the identity subsystem and falls back to the primary
// API. Identity rejections short-circuit: they are answers, not outages.
func (s *authService) openSession(ctx context.Context, op string,
	viaIdentity func(context.Context) (*secondary.Session, error),
	viaPrimary func(context.Context) (*sessionPayload, error),
) (*sessionPayload, error) {
	if s.identity != nil {
		session, err := viaIdentity(ctx)
		if err == nil {
			return &sessionPayload{
				User:         profileFromAccount(session.Account),
				AccessToken:  session.AccessToken,
				RefreshToken: session.RefreshToken,
				ExpiresAt:    session.ExpiresAt,
			}, nil
		}
		if domain.IsAuthRejection(err) {
			return nil, err
		}
		s.logger.Warn("identity subsystem failed, falling back to primary API", "op", op, "error", err)
	}
	return viaPrimary(ctx)
}

func (s *authService) setState(st authState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

// establish writes tokens and profile atomically.
func (s *authService) establish(session *sessionPayload, persist bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tokens.Save(domain.AuthTokens{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresAt:    session.ExpiresAt,
	}, persist); err != nil {
		s.logger.Warn("failed to persist tokens durably, keeping session scope", "error", err)
	}
	s.profile = session.User
	s.state = stateAuthenticated
}

func (s *authService) CurrentUser(ctx context.Context) (*domain.UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	s.mu.Lock()
	if s.state == stateAuthenticated && s.profile != nil {
		profile := *s.profile
		s.mu.Unlock()
		return &profile, nil
	}
	s.mu.Unlock()

	accessToken := s.tokens.AccessToken()
	if accessToken == "" {
		return nil, nil
	}

	profile, err := s.resolveUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.profile = profile
	s.state = stateAuthenticated
	s.mu.Unlock()
	return profile, nil
}

func (s *authService) resolveUser(ctx context.Context, accessToken string) (*domain.UserProfile, error) {
	if s.identity != nil {
		account, err := s.identity.SessionUser(ctx, accessToken)
		if err == nil {
			return profileFromAccount(account), nil
		}
		s.logger.Warn("identity subsystem failed, falling back to primary API", "op", "auth.current_user", "error", err)
	}
	var profile domain.UserProfile
	err := s.client.Get(ctx, "/auth/me", nil, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *authService) Refresh(ctx context.Context) (*domain.AuthTokens, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	refreshToken := s.tokens.RefreshToken()
	if refreshToken == "" {
		s.Logout(ctx)
		return nil, domain.ErrNotAuthenticated
	}

	session, err := s.openSession(ctx, "auth.refresh",
		func(ctx context.Context) (*secondary.Session, error) {
			return s.identity.Refresh(ctx, refreshToken)
		},
		func(ctx context.Context) (*sessionPayload, error) {
			var payload sessionPayload
			body := map[string]string{"refreshToken": refreshToken}
			if err := s.client.Post(ctx, "/auth/refresh", body, &payload); err != nil {
				return nil, err
			}
			return &payload, nil
		},
	)
	if err != nil {
		// An unusable refresh token is irrecoverable; drop the session
		// before surfacing the error.
		s.Logout(ctx)
		return nil, err
	}

	// The old refresh token was consumed, so rewrite the durable slot;
	// otherwise a restart would resurrect it.
	s.establish(session, true)
	return &domain.AuthTokens{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresAt:    session.ExpiresAt,
	}, nil
}

func (s *authService) Logout(ctx context.Context) {
	refreshToken := s.tokens.RefreshToken()
	if refreshToken != "" {
		if s.identity != nil {
			if err := s.identity.SignOut(ctx, refreshToken); err != nil {
				s.logger.Warn("failed to discard identity session", "error", err)
			}
		} else {
			_, err := s.client.Do(ctx, apiclient.RequestOptions{
				Method: http.MethodPost,
				Path:   "/auth/logout",
				Body:   map[string]string{"refreshToken": refreshToken},
			})
			if err != nil {
				s.logger.Warn("failed to notify primary API of logout", "error", err)
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens.Clear()
	s.profile = nil
	s.state = stateAnonymous
}

func (s *authService) Bootstrap(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if s.tokens.AccessToken() == "" {
		return
	}
	if s.tokens.IsExpired(expiryTolerance) {
		if _, err := s.Refresh(ctx); err != nil {
			s.logger.Info("stored session could not be refreshed, starting anonymous", "error", err)
		}
		return
	}
	if _, err := s.CurrentUser(ctx); err != nil {
		s.logger.Info("stored session could not be restored, starting anonymous", "error", err)
		s.Logout(ctx)
	}
}

func (s *authService) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateAuthenticated
}
