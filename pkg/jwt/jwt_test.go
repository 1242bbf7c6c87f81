package jwt

import (
	"testing"
	"time"

	"employee-role-api/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(secret string) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:        secret,
		AccessExpiry:  10 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
	})
}

func TestAccessToken_RoundTrip(t *testing.T) {
	svc := newTestService("secret")

	token, err := svc.GenerateAccessToken("TESTMNG", []string{"ROLE_MANAGER"}, "http://localhost/api/v1/login")
	require.NoError(t, err)

	claims, err := svc.ValidateTokenOfType(token, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "TESTMNG", claims.Subject)
	assert.Equal(t, []string{"ROLE_MANAGER"}, claims.Roles)
	assert.Equal(t, "http://localhost/api/v1/login", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestRefreshToken_HasExpiryAndNoRoles(t *testing.T) {
	svc := newTestService("secret")

	token, err := svc.GenerateRefreshToken("TESTMNG", "issuer")
	require.NoError(t, err)

	claims, err := svc.ValidateTokenOfType(token, RefreshToken)
	require.NoError(t, err)
	assert.Empty(t, claims.Roles)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestValidateTokenOfType_RejectsWrongType(t *testing.T) {
	svc := newTestService("secret")

	refresh, err := svc.GenerateRefreshToken("TESTMNG", "issuer")
	require.NoError(t, err)

	_, err = svc.ValidateTokenOfType(refresh, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestValidateToken_RejectsForeignSignature(t *testing.T) {
	issuer := newTestService("other-secret")
	verifier := newTestService("secret")

	token, err := issuer.GenerateAccessToken("TESTMNG", nil, "issuer")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_RejectsExpired(t *testing.T) {
	svc := newTestService("secret")
	past := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return past }

	token, err := svc.GenerateAccessToken("TESTMNG", nil, "issuer")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_RejectsMalformed(t *testing.T) {
	svc := newTestService("secret")

	_, err := svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_RejectsNoneAlgorithm(t *testing.T) {
	svc := newTestService("secret")

	claims := Claims{
		TokenType: AccessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "TESTMNG",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_RejectsMissingExpiry(t *testing.T) {
	svc := newTestService("secret")

	claims := Claims{
		TokenType:        RefreshToken,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "TESTMNG"},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
