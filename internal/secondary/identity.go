package secondary

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"eventscout/internal/domain"
)

const (
	bcryptCost         = 10
	minPasswordLen     = 8
	refreshTokenExpiry = 30 * 24 * time.Hour
	resetTokenExpiry   = time.Hour
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Session is a token pair issued by the identity subsystem. ExpiresAt is
// epoch milliseconds. Services mirror these into the token store so the
// caller cannot tell which backend authenticated them.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64
	Account      *AccountRow
}

// Identity is the managed store's own authentication subsystem: account
// storage, credential checks, session issuance, and password resets.
// Its rejections (invalid credentials, duplicate registration, unconfirmed
// email) are domain errors that must not trigger any further fallback.
type Identity struct {
	DB     *sql.DB
	secret []byte
	expiry time.Duration
}

func NewIdentity(db *sql.DB, secret string, expiry time.Duration) *Identity {
	return &Identity{DB: db, secret: []byte(secret), expiry: expiry}
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Password hashing: salt+password through SHA256, then bcrypt, which
// sidesteps bcrypt's 72-byte input limit.
func generateSalt() (string, error) {
	saltBytes := make([]byte, 32)
	if _, err := rand.Read(saltBytes); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(saltBytes), nil
}

func hashPassword(salt, password string) (string, error) {
	sum := sha256.Sum256([]byte(salt + password))
	hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(sum[:])), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func comparePassword(hash, salt, password string) error {
	sum := sha256.Sum256([]byte(salt + password))
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(hex.EncodeToString(sum[:])))
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// SignUp creates an account and opens a session for it.
func (i *Identity) SignUp(ctx context.Context, email, password, name string) (*Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return nil, domain.ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return nil, domain.ErrPasswordTooShort
	}
	salt, err := generateSalt()
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(salt, password)
	if err != nil {
		return nil, err
	}

	account := &AccountRow{}
	query := `
		INSERT INTO accounts (email, password_hash, salt, name, role, email_confirmed)
		VALUES ($1, $2, $3, $4, 'user', TRUE)
		RETURNING id, email, name, role, avatar_url, email_confirmed, created_at, updated_at
	`
	err = i.DB.QueryRowContext(ctx, query, email, hash, salt, strings.TrimSpace(name)).
		Scan(&account.ID, &account.Email, &account.Name, &account.Role,
			&account.AvatarURL, &account.EmailConfirmed, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, domain.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return i.openSession(ctx, account)
}

// SignIn checks credentials and opens a session.
func (i *Identity) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	var account AccountRow
	var hash, salt string
	query := `
		SELECT id, email, password_hash, salt, name, role, avatar_url, email_confirmed, created_at, updated_at
		FROM accounts
		WHERE email = $1
	`
	err := i.DB.QueryRowContext(ctx, query, email).
		Scan(&account.ID, &account.Email, &hash, &salt, &account.Name, &account.Role,
			&account.AvatarURL, &account.EmailConfirmed, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	if err := comparePassword(hash, salt, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !account.EmailConfirmed {
		return nil, domain.ErrEmailNotConfirmed
	}
	return i.openSession(ctx, &account)
}

func (i *Identity) openSession(ctx context.Context, account *AccountRow) (*Session, error) {
	now := time.Now()
	expiresAt := now.Add(i.expiry)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: account.Email,
		Role:  account.Role,
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	refreshToken, err := randomToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	_, err = i.DB.ExecContext(ctx, `
		INSERT INTO identity_sessions (account_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, account.ID, hashToken(refreshToken), now.Add(refreshTokenExpiry))
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt.UnixMilli(),
		Account:      account,
	}, nil
}

// SessionUser verifies an access token and loads its account.
func (i *Identity) SessionUser(ctx context.Context, accessToken string) (*AccountRow, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(accessToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrNotAuthenticated
	}
	account := &AccountRow{}
	query := `
		SELECT id, email, name, role, avatar_url, email_confirmed, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`
	err = i.DB.QueryRowContext(ctx, query, claims.Subject).
		Scan(&account.ID, &account.Email, &account.Name, &account.Role,
			&account.AvatarURL, &account.EmailConfirmed, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotAuthenticated
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

// Refresh rotates a refresh token: the old session is consumed and a new
// session is issued. An unknown or expired token fails with
// domain.ErrNotAuthenticated.
func (i *Identity) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	var accountID string
	err := i.DB.QueryRowContext(ctx, `
		DELETE FROM identity_sessions
		WHERE token_hash = $1 AND expires_at > NOW()
		RETURNING account_id
	`, hashToken(refreshToken)).Scan(&accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotAuthenticated
		}
		return nil, fmt.Errorf("consume session: %w", err)
	}
	account := &AccountRow{}
	query := `
		SELECT id, email, name, role, avatar_url, email_confirmed, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`
	err = i.DB.QueryRowContext(ctx, query, accountID).
		Scan(&account.ID, &account.Email, &account.Name, &account.Role,
			&account.AvatarURL, &account.EmailConfirmed, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return i.openSession(ctx, account)
}

// SignOut discards the session behind the refresh token. Best-effort.
func (i *Identity) SignOut(ctx context.Context, refreshToken string) error {
	_, err := i.DB.ExecContext(ctx,
		`DELETE FROM identity_sessions WHERE token_hash = $1`, hashToken(refreshToken))
	return err
}

// CreateResetToken stores a hashed one-hour reset token for the account.
// Unknown emails fail with domain.ErrNotFound so callers can decide
// whether to reveal that.
func (i *Identity) CreateResetToken(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	var accountID string
	err := i.DB.QueryRowContext(ctx, `SELECT id FROM accounts WHERE email = $1`, email).Scan(&accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get account: %w", err)
	}
	token, err := randomToken()
	if err != nil {
		return "", err
	}
	_, err = i.DB.ExecContext(ctx, `
		INSERT INTO password_resets (account_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, accountID, hashToken(token), time.Now().Add(resetTokenExpiry))
	if err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}
	return token, nil
}

// VerifyResetToken reports whether the reset token is known and unexpired.
func (i *Identity) VerifyResetToken(ctx context.Context, token string) (bool, error) {
	var accountID string
	err := i.DB.QueryRowContext(ctx, `
		SELECT account_id FROM password_resets
		WHERE token_hash = $1 AND expires_at > NOW()
	`, hashToken(token)).Scan(&accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ResetPassword consumes the reset token and replaces the password.
func (i *Identity) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return domain.ErrPasswordTooShort
	}
	var accountID string
	err := i.DB.QueryRowContext(ctx, `
		DELETE FROM password_resets
		WHERE token_hash = $1 AND expires_at > NOW()
		RETURNING account_id
	`, hashToken(token)).Scan(&accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("consume reset token: %w", err)
	}
	salt, err := generateSalt()
	if err != nil {
		return err
	}
	hash, err := hashPassword(salt, newPassword)
	if err != nil {
		return err
	}
	_, err = i.DB.ExecContext(ctx, `
		UPDATE accounts SET password_hash = $1, salt = $2, updated_at = NOW()
		WHERE id = $3
	`, hash, salt, accountID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
