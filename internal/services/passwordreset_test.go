package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventscout/internal/apiclient"
	"eventscout/internal/secondary"
)

func newResetIdentity(t *testing.T) (*secondary.Identity, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return secondary.NewIdentity(db, "secret", time.Hour), mock
}

func TestForgotPasswordSendsResetLink(t *testing.T) {
	identity, mock := newResetIdentity(t)
	mock.ExpectQuery(`SELECT id FROM accounts WHERE email = \$1`).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u1"))
	mock.ExpectExec(`INSERT INTO password_resets`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	email := &fakeEmailService{}
	svc := NewPasswordResetService(nil, identity, email, "https://app.example.com", time.Hour, testLogger(), time.Second)

	require.NoError(t, svc.ForgotPassword(context.Background(), "ada@example.com"))
	require.Len(t, email.resets, 1)
	assert.Equal(t, "ada@example.com", email.resets[0].Email)
	assert.True(t, strings.HasPrefix(email.resets[0].ResetLink, "https://app.example.com/reset-password?token="))
	assert.Equal(t, 60, email.resets[0].ExpiresInMinutes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestForgotPasswordHidesUnknownEmails(t *testing.T) {
	identity, mock := newResetIdentity(t)
	mock.ExpectQuery(`SELECT id FROM accounts WHERE email = \$1`).
		WillReturnError(sql.ErrNoRows)

	email := &fakeEmailService{}
	svc := NewPasswordResetService(nil, identity, email, "https://app.example.com", time.Hour, testLogger(), time.Second)

	require.NoError(t, svc.ForgotPassword(context.Background(), "nobody@example.com"))
	assert.Empty(t, email.resets, "no email goes out for unknown addresses")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestForgotPasswordDelegatesWhenIdentityUnavailable(t *testing.T) {
	var gotEmail string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/forgot-password", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotEmail = body["email"]
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewPasswordResetService(apiclient.New(server.URL, time.Second), nil, nil, "https://app.example.com", time.Hour, testLogger(), time.Second)
	require.NoError(t, svc.ForgotPassword(context.Background(), "ada@example.com"))
	assert.Equal(t, "ada@example.com", gotEmail)
}

func TestVerifyResetToken(t *testing.T) {
	t.Run("via identity", func(t *testing.T) {
		identity, mock := newResetIdentity(t)
		mock.ExpectQuery(`SELECT account_id FROM password_resets`).
			WillReturnRows(sqlmock.NewRows([]string{"account_id"}).AddRow("u1"))

		svc := NewPasswordResetService(nil, identity, nil, "https://app.example.com", time.Hour, testLogger(), time.Second)
		valid, err := svc.VerifyResetToken(context.Background(), "token")
		require.NoError(t, err)
		assert.True(t, valid)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("via primary", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/auth/reset-password/verify", r.URL.Path)
			assert.Equal(t, "token", r.URL.Query().Get("token"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"valid":false}`))
		}))
		defer server.Close()

		svc := NewPasswordResetService(apiclient.New(server.URL, time.Second), nil, nil, "https://app.example.com", time.Hour, testLogger(), time.Second)
		valid, err := svc.VerifyResetToken(context.Background(), "token")
		require.NoError(t, err)
		assert.False(t, valid)
	})
}

func TestResetPasswordViaIdentity(t *testing.T) {
	identity, mock := newResetIdentity(t)
	mock.ExpectQuery(`DELETE FROM password_resets`).
		WillReturnRows(sqlmock.NewRows([]string{"account_id"}).AddRow("u1"))
	mock.ExpectExec(`UPDATE accounts SET password_hash`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	svc := NewPasswordResetService(nil, identity, nil, "https://app.example.com", time.Hour, testLogger(), time.Second)
	require.NoError(t, svc.ResetPassword(context.Background(), "token", "newpassword123"))
	require.NoError(t, mock.ExpectationsWereMet())
}
