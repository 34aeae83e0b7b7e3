package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, CheckPassword(hash, "correct horse"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong horse"), ErrInvalidCredentials)
}

func TestHashPasswordLength(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = HashPassword(strings.Repeat("a", MaxPasswordLength+1))
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = HashPassword(strings.Repeat("a", MaxPasswordLength))
	assert.NoError(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Hour)
	require.NoError(t, err)

	token, expiresAt, err := issuer.Issue(42)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	userID, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, userID)
}

func TestParseRejects(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Hour)
	require.NoError(t, err)
	token, _, err := issuer.Issue(7)
	require.NoError(t, err)

	t.Run("other secret", func(t *testing.T) {
		other, err := NewTokenIssuer("other", time.Hour)
		require.NoError(t, err)
		_, err = other.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := *issuer
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Parse("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		claims := Claims{UserID: 7, RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   "7",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = issuer.Parse(forged)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("no expiry", func(t *testing.T) {
		claims := Claims{UserID: 7, RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer, Subject: "7"}}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = issuer.Parse(forged)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		claims := Claims{UserID: 7, RegisteredClaims: jwt.RegisteredClaims{
			Issuer: Issuer, Subject: "7", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = issuer.Parse(forged)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer("", time.Hour)
	assert.Error(t, err)

	issuer, err := NewTokenIssuer("s", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, issuer.ttl)
}
