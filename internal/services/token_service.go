package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"

	"zakaz/internal/authz"
	"zakaz/internal/domain"
)

// Token validation failures. All of them map to UNAUTHENTICATED on the wire;
// the distinct values exist for logging and tests.
var (
	ErrBadToken         = fmt.Errorf("%w: malformed token", domain.ErrUnauthenticated)
	ErrBadSignature     = fmt.Errorf("%w: signature verification failed", domain.ErrUnauthenticated)
	ErrTokenExpired     = fmt.Errorf("%w: token expired", domain.ErrUnauthenticated)
	ErrTokenNotYetValid = fmt.Errorf("%w: token used before issued", domain.ErrUnauthenticated)
	ErrIssuerMismatch   = fmt.Errorf("%w: issuer mismatch", domain.ErrUnauthenticated)
	ErrAudienceMismatch = fmt.Errorf("%w: audience mismatch", domain.ErrUnauthenticated)
)

// TokenLifetime is how long an issued token stays valid.
const TokenLifetime = 2 * time.Hour

// TokenService issues and validates signed bearer tokens. The signing key is
// injected at construction and read-only afterwards.
type TokenService struct {
	key      []byte
	issuer   string
	audience string
	lifetime time.Duration
}

// NewTokenService creates a TokenService around a shared HMAC key.
func NewTokenService(secret, issuer, audience string) *TokenService {
	return &TokenService{
		key:      []byte(secret),
		issuer:   issuer,
		audience: audience,
		lifetime: TokenLifetime,
	}
}

// Issue signs a token for the given identity. The caller supplies now so the
// clock stays injectable in tests.
func (s *TokenService) Issue(identity string, roles []string, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   identity,
		"roles": roles,
		"iss":   s.issuer,
		"aud":   s.audience,
		"iat":   now.Unix(),
		"exp":   now.Add(s.lifetime).Unix(),
	})

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies the signature and the registered claims against the
// configured issuer/audience and the supplied clock. Only HMAC signing
// methods are accepted; an alg header of "none" or anything else fails before
// the key is ever used.
func (s *TokenService) Validate(tokenString string, now time.Time) (*authz.Claims, error) {
	parser := jwt.Parser{SkipClaimsValidation: true} // claims are checked explicitly below
	token, err := parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorSignatureInvalid != 0 {
			return nil, ErrBadSignature
		}
		return nil, ErrBadToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrBadToken
	}

	// A token is valid within [iat, exp): expiry itself is already too late.
	exp, ok := unixClaim(claims["exp"])
	if !ok || now.Unix() >= exp {
		return nil, ErrTokenExpired
	}
	iat, ok := unixClaim(claims["iat"])
	if !ok || now.Unix() < iat {
		return nil, ErrTokenNotYetValid
	}
	if !claims.VerifyIssuer(s.issuer, true) {
		return nil, ErrIssuerMismatch
	}
	if !claims.VerifyAudience(s.audience, true) {
		return nil, ErrAudienceMismatch
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrBadToken
	}

	return &authz.Claims{Identity: sub, Roles: rolesFromClaim(claims["roles"])}, nil
}

func unixClaim(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}

func rolesFromClaim(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	roles := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			roles = append(roles, s)
		}
	}
	return roles
}
