package userservice

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestIssuer(t *testing.T) *TokenIssuer {
	ti, err := NewTokenIssuer(testSecret, "blogauth-test", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	return ti
}

func TestNewTokenIssuer(t *testing.T) {
	_, err := NewTokenIssuer("short", "blogauth", time.Hour)
	assert.Error(t, err)

	ti, err := NewTokenIssuer(testSecret, "blogauth", 0)
	assert.NoError(t, err)
	assert.Equal(t, AccessTokenTime, ti.ttl)
}

func TestIssueAndParse(t *testing.T) {
	ti := newTestIssuer(t)

	token, err := ti.issue(42, TokenNameLogin)
	assert.NoError(t, err)
	assert.NotEmpty(t, token.Plain)
	assert.NotEqual(t, uuid.Nil, token.ID)
	assert.Equal(t, 42, token.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.Expiry, 2*time.Second)

	id, userID, err := ti.parse(token.Plain)
	assert.NoError(t, err)
	assert.Equal(t, token.ID, id)
	assert.Equal(t, 42, userID)
}

func TestIssueUniqueTokens(t *testing.T) {
	ti := newTestIssuer(t)

	a, err := ti.issue(1, TokenNameLogin)
	assert.NoError(t, err)
	b, err := ti.issue(1, TokenNameRefresh)
	assert.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.Plain, b.Plain)
}

func TestParseRejects(t *testing.T) {
	ti := newTestIssuer(t)

	valid, err := ti.issue(7, TokenNameLogin)
	assert.NoError(t, err)

	other, err := NewTokenIssuer("another-secret-of-enough-length", "blogauth-test", time.Hour)
	assert.NoError(t, err)
	foreign, err := other.issue(7, TokenNameLogin)
	assert.NoError(t, err)

	otherIssuer, err := NewTokenIssuer(testSecret, "someone-else", time.Hour)
	assert.NoError(t, err)
	wrongIssuer, err := otherIssuer.issue(7, TokenNameLogin)
	assert.NoError(t, err)

	expiredIssuer := newTestIssuer(t)
	expiredIssuer.ttl = -time.Minute
	expired, err := expiredIssuer.issue(7, TokenNameLogin)
	assert.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, tokenClaims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   "7",
		Issuer:    "blogauth-test",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	assert.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   "not-a-number",
		Issuer:    "blogauth-test",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}).SignedString([]byte(testSecret))
	assert.NoError(t, err)

	testCases := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt"},
		{name: "tampered", token: valid.Plain + "x"},
		{name: "foreign secret", token: foreign.Plain},
		{name: "wrong issuer", token: wrongIssuer.Plain},
		{name: "expired", token: expired.Plain},
		{name: "alg none", token: none},
		{name: "bad subject", token: badSubject},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ti.parse(tc.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
