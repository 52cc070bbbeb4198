package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventscout/internal/apiclient"
	"eventscout/internal/domain"
	"eventscout/internal/secondary"
	"eventscout/internal/tokens"
)

func newTokenStore(t *testing.T) *tokens.Store {
	t.Helper()
	return tokens.NewStore(filepath.Join(t.TempDir(), "tokens.json"), testLogger())
}

// fakeEmailService records sent emails.
type fakeEmailService struct {
	welcomes []domain.WelcomeEmailData
	resets   []domain.PasswordResetEmailData
	err      error
}

func (f *fakeEmailService) SendPasswordReset(ctx context.Context, data *domain.PasswordResetEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.resets = append(f.resets, *data)
	return nil
}

func (f *fakeEmailService) SendWelcome(ctx context.Context, data *domain.WelcomeEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.welcomes = append(f.welcomes, *data)
	return nil
}

func writeSession(w http.ResponseWriter, accessToken string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"user":         map[string]string{"id": "u1", "name": "Ada", "email": "ada@example.com", "role": "user"},
		"accessToken":  accessToken,
		"refreshToken": "refresh-1",
		"expiresAt":    time.Now().Add(time.Hour).UnixMilli(),
	})
}

func TestAuthServiceLoginViaPrimary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		var creds domain.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "ada@example.com", creds.Email)
		writeSession(w, "access-1")
	}))
	defer server.Close()

	store := newTokenStore(t)
	svc := NewAuthService(apiclient.New(server.URL, time.Second), nil, store, nil, testLogger(), time.Second)

	profile, err := svc.Login(context.Background(), &domain.Credentials{
		Email:    "ada@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.Name)
	assert.True(t, svc.IsAuthenticated())
	assert.Equal(t, "access-1", store.AccessToken())
	assert.Equal(t, "refresh-1", store.RefreshToken())
}

func TestAuthServiceLoginRememberSelectsDurableScope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeSession(w, "access-1")
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "tokens.json")
	store := tokens.NewStore(path, testLogger())
	svc := NewAuthService(apiclient.New(server.URL, time.Second), nil, store, nil, testLogger(), time.Second)

	_, err := svc.Login(context.Background(), &domain.Credentials{
		Email:    "ada@example.com",
		Password: "password123",
		Remember: true,
	})
	require.NoError(t, err)

	// A store over the same path sees the tokens after a restart.
	restarted := tokens.NewStore(path, testLogger())
	assert.Equal(t, "access-1", restarted.AccessToken())
}

func TestAuthServiceFailedLoginWritesNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "wrong password", http.StatusUnauthorized)
	}))
	defer server.Close()

	store := newTokenStore(t)
	svc := NewAuthService(apiclient.New(server.URL, time.Second), nil, store, nil, testLogger(), time.Second)

	_, err := svc.Login(context.Background(), &domain.Credentials{
		Email:    "ada@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.False(t, svc.IsAuthenticated())
	assert.Empty(t, store.AccessToken())
}

func TestAuthServiceFailedRegisterResolvesAnonymous(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "email taken", http.StatusConflict)
	}))
	defer server.Close()

	store := newTokenStore(t)
	svc := NewAuthService(apiclient.New(server.URL, time.Second), nil, store, nil, testLogger(), time.Second)

	_, err := svc.Register(context.Background(), &domain.RegisterPayload{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "password123",
	})
	require.Error(t, err)
	assert.False(t, svc.IsAuthenticated())
	assert.Empty(t, store.AccessToken())
}

func TestAuthServiceIdentityRejectionDoesNotFallBack(t *testing.T) {
	var primaryCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		primaryCalls.Add(1)
		writeSession(w, "never-used")
	}))
	defer server.Close()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectQuery(`SELECT (.+) FROM accounts WHERE email = \$1`).
		WillReturnError(sql.ErrNoRows)

	identity := secondary.NewIdentity(db, "secret", time.Hour)
	store := newTokenStore(t)
	svc := NewAuthService(apiclient.New(server.URL, time.Second), identity, store, nil, testLogger(), time.Second)

	_, err = svc.Login(context.Background(), &domain.Credentials{
		Email:    "nobody@example.com",
		Password: "password123",
	})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Equal(t, int32(0), primaryCalls.Load(), "a rejection is an answer, not an outage")
	assert.False(t, svc.IsAuthenticated())
	assert.Empty(t, store.AccessToken())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthServiceIdentityOutageFallsBackToPrimary(t *testing.T) {
	var primaryCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		primaryCalls.Add(1)
		writeSession(w, "access-1")
	}))
	defer server.Close()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectQuery(`SELECT (.+) FROM accounts WHERE email = \$1`).
		WillReturnError(errors.New("connection refused"))

	identity := secondary.NewIdentity(db, "secret", time.Hour)
	store := newTokenStore(t)
	svc := NewAuthService(apiclient.New(server.URL, time.Second), identity, store, nil, testLogger(), time.Second)

	profile, err := svc.Login(context.Background(), &domain.Credentials{
		Email:    "ada@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", profile.ID)
	assert.Equal(t, int32(1), primaryCalls.Load())
	assert.True(t, svc.IsAuthenticated())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthServiceRegisterSendsWelcomeEmail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/register", r.URL.Path)
		writeSession(w, "access-1")
	}))
	defer server.Close()

	email := &fakeEmailService{}
	store := newTokenStore(t)
	svc := NewAuthService(apiclient.New(server.URL, time.Second), nil, store, email, testLogger(), time.Second)

	profile, err := svc.Register(context.Background(), &domain.RegisterPayload{
		Name:          "Ada",
		Email:         "ada@example.com",
		Password:      "password123",
		AcceptPrivacy: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.Name)
	require.Len(t, email.welcomes, 1)
	assert.Equal(t, "ada@example.com", email.welcomes[0].Email)
}

func TestAuthServiceRegisterSucceedsWhenWelcomeEmailFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeSession(w, "access-1")
	}))
	defer server.Close()

	email := &fakeEmailService{err: errors.New("smtp down")}
	store := newTokenStore(t)
	svc := NewAuthService(apiclient.New(server.URL, time.Second), nil, store, email, testLogger(), time.Second)

	_, err := svc.Register(context.Background(), &domain.RegisterPayload{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.True(t, svc.IsAuthenticated())
}

func TestAuthServiceCurrentUser(t *testing.T) {
	t.Run("anonymous resolves nil without error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		}))
		defer server.Close()

		svc := NewAuthService(apiclient.New(server.URL, time.Second), nil, newTokenStore(t), nil, testLogger(), time.Second)
		profile, err := svc.CurrentUser(context.Background())
		require.NoError(t, err)
		assert.Nil(t, profile)
	})

	t.Run("stored token resolves via the primary and caches", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			require.Equal(t, "/auth/me", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"id": "u1", "name": "Ada", "email": "ada@example.com", "role": "user"})
		}))
		defer server.Close()

		store := newTokenStore(t)
		require.NoError(t, store.Save(domain.AuthTokens{AccessToken: "access-1"}, false))
		svc := NewAuthService(apiclient.New(server.URL, time.Second), nil, store, nil, testLogger(), time.Second)

		profile, err := svc.CurrentUser(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "u1", profile.ID)

		_, err = svc.CurrentUser(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int32(1), calls.Load(), "the second call is served from the cached profile")
	})
}

func TestAuthServiceRefresh(t *testing.T) {
	t.Run("no refresh token resolves anonymous", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		store := newTokenStore(t)
		svc := NewAuthService(apiclient.New(server.URL, time.Second), nil, store, nil, testLogger(), time.Second)

		_, err := svc.Refresh(context.Background())
		require.ErrorIs(t, err, domain.ErrNotAuthenticated)
		assert.False(t, svc.IsAuthenticated())
	})

	t.Run("failure forces logout before surfacing the error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/auth/refresh" {
				http.Error(w, "stale token", http.StatusUnauthorized)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		store := newTokenStore(t)
		require.NoError(t, store.Save(domain.AuthTokens{AccessToken: "a", RefreshToken: "stale"}, false))
		svc := NewAuthService(apiclient.New(server.URL, time.Second), nil, store, nil, testLogger(), time.Second)

		_, err := svc.Refresh(context.Background())
		require.Error(t, err)
		assert.False(t, svc.IsAuthenticated())
		assert.Empty(t, store.AccessToken())
		assert.Empty(t, store.RefreshToken())
	})

	t.Run("success rewrites the durable slot", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/auth/refresh", r.URL.Path)
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "refresh-old", body["refreshToken"])
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"user":         map[string]string{"id": "u1", "name": "Ada", "email": "ada@example.com", "role": "user"},
				"accessToken":  "access-new",
				"refreshToken": "refresh-new",
				"expiresAt":    time.Now().Add(time.Hour).UnixMilli(),
			})
		}))
		defer server.Close()

		path := filepath.Join(t.TempDir(), "tokens.json")
		store := tokens.NewStore(path, testLogger())
		require.NoError(t, store.Save(domain.AuthTokens{AccessToken: "access-old", RefreshToken: "refresh-old"}, true))
		svc := NewAuthService(apiclient.New(server.URL, time.Second), nil, store, nil, testLogger(), time.Second)

		refreshed, err := svc.Refresh(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "access-new", refreshed.AccessToken)

		// The consumed token must not survive a restart.
		restarted := tokens.NewStore(path, testLogger())
		assert.Equal(t, "refresh-new", restarted.RefreshToken())
	})
}

func TestAuthServiceLogoutClearsEverything(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			writeSession(w, "access-1")
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := newTokenStore(t)
	svc := NewAuthService(apiclient.New(server.URL, time.Second), nil, store, nil, testLogger(), time.Second)

	_, err := svc.Login(context.Background(), &domain.Credentials{Email: "ada@example.com", Password: "password123"})
	require.NoError(t, err)
	require.True(t, svc.IsAuthenticated())

	svc.Logout(context.Background())
	assert.False(t, svc.IsAuthenticated())
	assert.Empty(t, store.AccessToken())

	profile, err := svc.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestAuthServiceBootstrap(t *testing.T) {
	t.Run("no stored tokens stays anonymous without any request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		}))
		defer server.Close()

		svc := NewAuthService(apiclient.New(server.URL, time.Second), nil, newTokenStore(t), nil, testLogger(), time.Second)
		svc.Bootstrap(context.Background())
		assert.False(t, svc.IsAuthenticated())
	})

	t.Run("valid stored token restores the session", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/auth/me", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"id": "u1", "name": "Ada", "email": "ada@example.com", "role": "user"})
		}))
		defer server.Close()

		store := newTokenStore(t)
		require.NoError(t, store.Save(domain.AuthTokens{
			AccessToken: "access-1",
			ExpiresAt:   time.Now().Add(time.Hour).UnixMilli(),
		}, false))
		svc := NewAuthService(apiclient.New(server.URL, time.Second), nil, store, nil, testLogger(), time.Second)

		svc.Bootstrap(context.Background())
		assert.True(t, svc.IsAuthenticated())
	})

	t.Run("expired stored token refreshes instead of resolving", func(t *testing.T) {
		var refreshed atomic.Bool
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/auth/refresh", r.URL.Path)
			refreshed.Store(true)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"user":         map[string]string{"id": "u1", "name": "Ada", "email": "ada@example.com", "role": "user"},
				"accessToken":  "access-new",
				"refreshToken": "refresh-new",
				"expiresAt":    time.Now().Add(time.Hour).UnixMilli(),
			})
		}))
		defer server.Close()

		store := newTokenStore(t)
		require.NoError(t, store.Save(domain.AuthTokens{
			AccessToken:  "access-old",
			RefreshToken: "refresh-old",
			ExpiresAt:    time.Now().Add(-time.Minute).UnixMilli(),
		}, false))
		svc := NewAuthService(apiclient.New(server.URL, time.Second), nil, store, nil, testLogger(), time.Second)

		svc.Bootstrap(context.Background())
		assert.True(t, refreshed.Load())
		assert.True(t, svc.IsAuthenticated())
		assert.Equal(t, "access-new", store.AccessToken())
	})

	t.Run("unrestorable session silently resolves anonymous", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid token", http.StatusUnauthorized)
		}))
		defer server.Close()

		store := newTokenStore(t)
		require.NoError(t, store.Save(domain.AuthTokens{
			AccessToken: "stale",
			ExpiresAt:   time.Now().Add(time.Hour).UnixMilli(),
		}, false))
		svc := NewAuthService(apiclient.New(server.URL, time.Second), nil, store, nil, testLogger(), time.Second)

		svc.Bootstrap(context.Background())
		assert.False(t, svc.IsAuthenticated())
		assert.Empty(t, store.AccessToken())
	})
}
