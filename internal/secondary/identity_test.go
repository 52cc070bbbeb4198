package secondary

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventscout/internal/domain"
)

const testSecret = "test-secret"

func newTestIdentity(t *testing.T) (*Identity, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewIdentity(db, testSecret, time.Hour), mock
}

func accountColumns() []string {
	return []string{"id", "email", "name", "role", "avatar_url", "email_confirmed", "created_at", "updated_at"}
}

func TestIdentitySignUp(t *testing.T) {
	t.Run("rejects malformed email", func(t *testing.T) {
		identity, mock := newTestIdentity(t)
		_, err := identity.SignUp(context.Background(), "not-an-email", "password123", "Ada")
		require.ErrorIs(t, err, domain.ErrInvalidEmail)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects short password", func(t *testing.T) {
		identity, mock := newTestIdentity(t)
		_, err := identity.SignUp(context.Background(), "ada@example.com", "short", "Ada")
		require.ErrorIs(t, err, domain.ErrPasswordTooShort)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation maps to already registered", func(t *testing.T) {
		identity, mock := newTestIdentity(t)
		mock.ExpectQuery(`INSERT INTO accounts`).
			WillReturnError(&pq.Error{Code: "23505"})

		_, err := identity.SignUp(context.Background(), "ada@example.com", "password123", "Ada")
		require.ErrorIs(t, err, domain.ErrAlreadyRegistered)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("creates account and opens a session", func(t *testing.T) {
		identity, mock := newTestIdentity(t)
		now := time.Now()
		mock.ExpectQuery(`INSERT INTO accounts`).
			WillReturnRows(sqlmock.NewRows(accountColumns()).
				AddRow("u1", "ada@example.com", "Ada", "user", nil, true, now, now))
		mock.ExpectExec(`INSERT INTO identity_sessions`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		session, err := identity.SignUp(context.Background(), "Ada@Example.com ", "password123", "Ada")
		require.NoError(t, err)
		assert.NotEmpty(t, session.AccessToken)
		assert.NotEmpty(t, session.RefreshToken)
		assert.Greater(t, session.ExpiresAt, time.Now().UnixMilli())
		assert.Equal(t, "ada@example.com", session.Account.Email)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIdentitySignIn(t *testing.T) {
	salt := "abc123"
	hash, err := hashPassword(salt, "password123")
	require.NoError(t, err)

	signInRow := func(confirmed bool) *sqlmock.Rows {
		now := time.Now()
		return sqlmock.NewRows([]string{
			"id", "email", "password_hash", "salt", "name", "role",
			"avatar_url", "email_confirmed", "created_at", "updated_at",
		}).AddRow("u1", "ada@example.com", hash, salt, "Ada", "user", nil, confirmed, now, now)
	}

	t.Run("unknown email maps to invalid credentials", func(t *testing.T) {
		identity, mock := newTestIdentity(t)
		mock.ExpectQuery(`SELECT (.+) FROM accounts WHERE email = \$1`).
			WithArgs("nobody@example.com").
			WillReturnError(sql.ErrNoRows)

		_, err := identity.SignIn(context.Background(), "nobody@example.com", "password123")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wrong password maps to invalid credentials", func(t *testing.T) {
		identity, mock := newTestIdentity(t)
		mock.ExpectQuery(`SELECT (.+) FROM accounts WHERE email = \$1`).
			WithArgs("ada@example.com").
			WillReturnRows(signInRow(true))

		_, err := identity.SignIn(context.Background(), "ada@example.com", "wrongpassword")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unconfirmed email is rejected", func(t *testing.T) {
		identity, mock := newTestIdentity(t)
		mock.ExpectQuery(`SELECT (.+) FROM accounts WHERE email = \$1`).
			WithArgs("ada@example.com").
			WillReturnRows(signInRow(false))

		_, err := identity.SignIn(context.Background(), "ada@example.com", "password123")
		require.ErrorIs(t, err, domain.ErrEmailNotConfirmed)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("valid credentials open a session", func(t *testing.T) {
		identity, mock := newTestIdentity(t)
		mock.ExpectQuery(`SELECT (.+) FROM accounts WHERE email = \$1`).
			WithArgs("ada@example.com").
			WillReturnRows(signInRow(true))
		mock.ExpectExec(`INSERT INTO identity_sessions`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		session, err := identity.SignIn(context.Background(), "ADA@example.com", "password123")
		require.NoError(t, err)
		assert.NotEmpty(t, session.AccessToken)
		assert.NotEmpty(t, session.RefreshToken)
		assert.Equal(t, "u1", session.Account.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIdentitySessionUser(t *testing.T) {
	t.Run("garbage token maps to not authenticated", func(t *testing.T) {
		identity, mock := newTestIdentity(t)
		_, err := identity.SessionUser(context.Background(), "not-a-jwt")
		require.ErrorIs(t, err, domain.ErrNotAuthenticated)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("valid token loads its account", func(t *testing.T) {
		identity, mock := newTestIdentity(t)
		now := time.Now()

		// Issue a real token through SignUp so the round trip uses the
		// same signing path as production.
		mock.ExpectQuery(`INSERT INTO accounts`).
			WillReturnRows(sqlmock.NewRows(accountColumns()).
				AddRow("u1", "ada@example.com", "Ada", "user", nil, true, now, now))
		mock.ExpectExec(`INSERT INTO identity_sessions`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		session, err := identity.SignUp(context.Background(), "ada@example.com", "password123", "Ada")
		require.NoError(t, err)

		mock.ExpectQuery(`SELECT (.+) FROM accounts WHERE id = \$1`).
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows(accountColumns()).
				AddRow("u1", "ada@example.com", "Ada", "user", nil, true, now, now))

		account, err := identity.SessionUser(context.Background(), session.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "u1", account.ID)
		assert.Equal(t, "ada@example.com", account.Email)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		now := time.Now()

		other := NewIdentity(db, "other-secret", time.Hour)
		mock.ExpectQuery(`INSERT INTO accounts`).
			WillReturnRows(sqlmock.NewRows(accountColumns()).
				AddRow("u1", "ada@example.com", "Ada", "user", nil, true, now, now))
		mock.ExpectExec(`INSERT INTO identity_sessions`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		session, err := other.SignUp(context.Background(), "ada@example.com", "password123", "Ada")
		require.NoError(t, err)

		identity := NewIdentity(db, testSecret, time.Hour)
		_, err = identity.SessionUser(context.Background(), session.AccessToken)
		require.ErrorIs(t, err, domain.ErrNotAuthenticated)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIdentityRefresh(t *testing.T) {
	t.Run("unknown token maps to not authenticated", func(t *testing.T) {
		identity, mock := newTestIdentity(t)
		mock.ExpectQuery(`DELETE FROM identity_sessions`).
			WillReturnError(sql.ErrNoRows)

		_, err := identity.Refresh(context.Background(), "stale-token")
		require.ErrorIs(t, err, domain.ErrNotAuthenticated)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rotation consumes the old session and issues a new one", func(t *testing.T) {
		identity, mock := newTestIdentity(t)
		now := time.Now()
		mock.ExpectQuery(`DELETE FROM identity_sessions WHERE token_hash = \$1 AND expires_at > NOW\(\) RETURNING account_id`).
			WithArgs(hashToken("old-token")).
			WillReturnRows(sqlmock.NewRows([]string{"account_id"}).AddRow("u1"))
		mock.ExpectQuery(`SELECT (.+) FROM accounts WHERE id = \$1`).
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows(accountColumns()).
				AddRow("u1", "ada@example.com", "Ada", "user", nil, true, now, now))
		mock.ExpectExec(`INSERT INTO identity_sessions`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		session, err := identity.Refresh(context.Background(), "old-token")
		require.NoError(t, err)
		assert.NotEmpty(t, session.RefreshToken)
		assert.NotEqual(t, "old-token", session.RefreshToken)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIdentityPasswordReset(t *testing.T) {
	t.Run("unknown email maps to not found", func(t *testing.T) {
		identity, mock := newTestIdentity(t)
		mock.ExpectQuery(`SELECT id FROM accounts WHERE email = \$1`).
			WithArgs("nobody@example.com").
			WillReturnError(sql.ErrNoRows)

		_, err := identity.CreateResetToken(context.Background(), "nobody@example.com")
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("token is stored hashed", func(t *testing.T) {
		identity, mock := newTestIdentity(t)
		mock.ExpectQuery(`SELECT id FROM accounts WHERE email = \$1`).
			WithArgs("ada@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u1"))
		mock.ExpectExec(`INSERT INTO password_resets`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		token, err := identity.CreateResetToken(context.Background(), "ada@example.com")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("verify reports unknown tokens without error", func(t *testing.T) {
		identity, mock := newTestIdentity(t)
		mock.ExpectQuery(`SELECT account_id FROM password_resets`).
			WillReturnError(sql.ErrNoRows)

		valid, err := identity.VerifyResetToken(context.Background(), "stale")
		require.NoError(t, err)
		assert.False(t, valid)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reset rejects short passwords before touching the store", func(t *testing.T) {
		identity, mock := newTestIdentity(t)
		err := identity.ResetPassword(context.Background(), "token", "short")
		require.ErrorIs(t, err, domain.ErrPasswordTooShort)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reset consumes the token and rewrites the password", func(t *testing.T) {
		identity, mock := newTestIdentity(t)
		mock.ExpectQuery(`DELETE FROM password_resets WHERE token_hash = \$1 AND expires_at > NOW\(\) RETURNING account_id`).
			WithArgs(hashToken("token")).
			WillReturnRows(sqlmock.NewRows([]string{"account_id"}).AddRow("u1"))
		mock.ExpectExec(`UPDATE accounts SET password_hash = \$1, salt = \$2, updated_at = NOW\(\) WHERE id = \$3`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, identity.ResetPassword(context.Background(), "token", "newpassword123"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("consumed or expired token maps to not found", func(t *testing.T) {
		identity, mock := newTestIdentity(t)
		mock.ExpectQuery(`DELETE FROM password_resets`).
			WillReturnError(sql.ErrNoRows)

		err := identity.ResetPassword(context.Background(), "stale", "newpassword123")
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
