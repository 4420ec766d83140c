package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseSessionToken(t *testing.T) {
	manager := JWTManager{Secret: []byte("secret"), Issuer: "authflow", TokenTTL: time.Hour}

	token, ttl, err := manager.IssueSessionToken(SessionClaims{
		Role:               "USER",
		Name:               "Jo",
		Email:              "jo@example.com",
		IsTwoFactorEnabled: true,
		RegisteredClaims:   jwt.RegisteredClaims{Subject: "some-user-id"},
	})
	require.NoError(t, err)
	assert.Equal(t, time.Hour, ttl)

	claims, err := manager.ParseSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "some-user-id", claims.Subject)
	assert.Equal(t, "authflow", claims.Issuer)
	assert.Equal(t, "jo@example.com", claims.Email)
	assert.True(t, claims.IsTwoFactorEnabled)
	assert.False(t, claims.IsOAuth)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer := JWTManager{Secret: []byte("secret-a"), TokenTTL: time.Hour}
	verifier := JWTManager{Secret: []byte("secret-b"), TokenTTL: time.Hour}

	token, _, err := issuer.IssueSessionToken(SessionClaims{})
	require.NoError(t, err)

	_, err = verifier.ParseSessionToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsUnsignedToken(t *testing.T) {
	manager := JWTManager{Secret: []byte("secret"), TokenTTL: time.Hour}

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = manager.ParseSessionToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	manager := JWTManager{Secret: []byte("secret"), TokenTTL: time.Hour}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	raw, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = manager.ParseSessionToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
