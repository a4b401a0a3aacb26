package userservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenIssuer signs HS256 bearer tokens. A signature alone does not make a
// token valid: its jti must also still be present in access_tokens, which is
// what lets logout revoke tokens before they expire.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

type tokenClaims struct {
	jwt.RegisteredClaims
}

func NewTokenIssuer(secret, issuer string, ttl time.Duration) (*TokenIssuer, error) {
	if len(secret) < 16 {
		return nil, errors.New("token secret must be at least 16 characters")
	}

	if ttl <= 0 {
		ttl = AccessTokenTime
	}

	return &TokenIssuer{secret: []byte(secret), issuer: issuer, ttl: ttl}, nil
}

func (ti *TokenIssuer) issue(userID int, name tokenName) (*AccessToken, error) {
	now := time.Now()

	token := &AccessToken{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
		Expiry: now.Add(ti.ttl).Truncate(time.Second),
	}

	c := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        token.ID.String(),
			Subject:   strconv.Itoa(userID),
			Issuer:    ti.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(token.Expiry),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(ti.secret)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}
	token.Plain = signed

	return token, nil
}

// parse verifies the signature, issuer and expiry and returns the jti and the
// subject user id.
func (ti *TokenIssuer) parse(plain string) (uuid.UUID, int, error) {
	var c tokenClaims

	_, err := jwt.ParseWithClaims(plain, &c, func(t *jwt.Token) (any, error) {
		return ti.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(ti.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return uuid.Nil, 0, ErrInvalidToken
	}

	id, err := uuid.Parse(c.ID)
	if err != nil {
		return uuid.Nil, 0, ErrInvalidToken
	}

	userID, err := strconv.Atoi(c.Subject)
	if err != nil || userID < 1 {
		return uuid.Nil, 0, ErrInvalidToken
	}

	return id, userID, nil
}

func (m *DBModel) insertToken(ctx context.Context, token *AccessToken) error {
	query := `
		INSERT INTO access_tokens (id, user_id, name, expires_at)
		VALUES ($1, $2, $3, $4)`

	_, err := m.db.ExecContext(ctx, query, token.ID, token.UserID, string(token.Name), token.Expiry)
	return err
}

// getUserForToken returns the owner of a live token row.
func (m *DBModel) getUserForToken(ctx context.Context, id uuid.UUID, userID int) (*User, error) {
	query := `
		SELECT u.id, u.name, u.email, u.password, u.phone_number, u.created_at, u.updated_at
		FROM users u
		INNER JOIN access_tokens t ON u.id = t.user_id
		WHERE t.id = $1 AND t.user_id = $2 AND t.expires_at > $3`

	u, err := m.scanUser(m.db.QueryRowContext(ctx, query, id, userID, time.Now()))
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			return nil, ErrInvalidToken
		default:
			return nil, err
		}
	}

	return u, nil
}

func (m *DBModel) deleteTokensForUser(ctx context.Context, userID int) (int64, error) {
	res, err := m.db.ExecContext(ctx, `DELETE FROM access_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
