package services_test

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zakaz/internal/services"
)

const (
	testSecret   = "test_jwt_secret"
	testIssuer   = "zakaz-test"
	testAudience = "zakaz-test-api"
)

func newTokenService() *services.TokenService {
	return services.NewTokenService(testSecret, testIssuer, testAudience)
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTokenService()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	token, err := svc.Issue("user-123", []string{"user", "admin"}, now)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Identity)
	assert.Equal(t, []string{"user", "admin"}, claims.Roles)
}

func TestValidateTamperedToken(t *testing.T) {
	svc := newTokenService()
	now := time.Now()

	token, err := svc.Issue("user-123", []string{"user"}, now)
	require.NoError(t, err)

	// Flipping any byte of the signature must invalidate the token.
	raw := []byte(token)
	raw[len(raw)-1] ^= 0x01
	_, err = svc.Validate(string(raw), now)
	assert.Error(t, err)

	// Same for the payload.
	raw = []byte(token)
	raw[len(raw)/2] ^= 0x01
	_, err = svc.Validate(string(raw), now)
	assert.Error(t, err)
}

func TestValidateWrongKey(t *testing.T) {
	now := time.Now()
	token, err := services.NewTokenService("another_secret", testIssuer, testAudience).Issue("user-123", nil, now)
	require.NoError(t, err)

	_, err = newTokenService().Validate(token, now)
	assert.ErrorIs(t, err, services.ErrBadSignature)
}

func TestValidateExpiry(t *testing.T) {
	svc := newTokenService()
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	token, err := svc.Issue("user-123", []string{"user"}, issued)
	require.NoError(t, err)

	// Just before expiry the token is still good.
	_, err = svc.Validate(token, issued.Add(services.TokenLifetime-time.Second))
	assert.NoError(t, err)

	// The expiry instant itself is already outside the validity window.
	_, err = svc.Validate(token, issued.Add(services.TokenLifetime))
	assert.ErrorIs(t, err, services.ErrTokenExpired)

	_, err = svc.Validate(token, issued.Add(3*time.Hour))
	assert.ErrorIs(t, err, services.ErrTokenExpired)

	// A token from the future is rejected as well.
	_, err = svc.Validate(token, issued.Add(-time.Minute))
	assert.ErrorIs(t, err, services.ErrTokenNotYetValid)
}

func TestValidateIssuerAndAudience(t *testing.T) {
	now := time.Now()
	token, err := newTokenService().Issue("user-123", nil, now)
	require.NoError(t, err)

	_, err = services.NewTokenService(testSecret, "other-issuer", testAudience).Validate(token, now)
	assert.ErrorIs(t, err, services.ErrIssuerMismatch)

	_, err = services.NewTokenService(testSecret, testIssuer, "other-audience").Validate(token, now)
	assert.ErrorIs(t, err, services.ErrAudienceMismatch)
}

func TestValidateRejectsNoneAlgorithm(t *testing.T) {
	svc := newTokenService()
	now := time.Now()

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":   "user-123",
		"roles": []string{"admin"},
		"iss":   testIssuer,
		"aud":   testAudience,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	})
	tokenString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Validate(tokenString, now)
	assert.Error(t, err)
}

func TestValidateRejectsMissingSubject(t *testing.T) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": testIssuer,
		"aud": testAudience,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	})
	tokenString, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = newTokenService().Validate(tokenString, now)
	assert.Error(t, err)
}

func TestValidateGarbage(t *testing.T) {
	_, err := newTokenService().Validate("not.a.token", time.Now())
	assert.Error(t, err)

	_, err = newTokenService().Validate("", time.Now())
	assert.Error(t, err)
}
