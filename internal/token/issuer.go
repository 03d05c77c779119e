package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dentallab/backend/internal/domain"
)

const refreshTokenType = "refresh"

// Config holds signing configuration. Access and refresh tokens use
// independent secrets so a compromised access secret cannot forge
// refresh tokens.
type Config struct {
	AccessSecret    string
	RefreshSecret   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Issuer          string
	Audience        string
}

// Issuer creates and verifies the two token kinds. It has no persistence;
// all operations are pure crypto.
type Issuer struct {
	cfg *Config
}

// NewIssuer creates a token issuer, applying defaults for zero TTLs.
func NewIssuer(cfg *Config) *Issuer {
	if cfg.AccessTokenTTL == 0 {
		cfg.AccessTokenTTL = time.Hour
	}
	if cfg.RefreshTokenTTL == 0 {
		cfg.RefreshTokenTTL = 30 * 24 * time.Hour
	}
	return &Issuer{cfg: cfg}
}

// AccessTokenTTL returns the configured access token lifetime.
func (i *Issuer) AccessTokenTTL() time.Duration {
	return i.cfg.AccessTokenTTL
}

// RefreshTokenTTL returns the configured refresh token lifetime.
func (i *Issuer) RefreshTokenTTL() time.Duration {
	return i.cfg.RefreshTokenTTL
}

type accessClaims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

type refreshClaims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// IssueAccessToken creates a signed access token carrying the user id,
// email and role names. A zero ttl uses the configured default.
func (i *Issuer) IssueAccessToken(userID, email string, roles []string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = i.cfg.AccessTokenTTL
	}
	if roles == nil {
		roles = []string{}
	}

	now := time.Now()
	claims := accessClaims{
		Email: email,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    i.cfg.Issuer,
			Audience:  jwt.ClaimStrings{i.cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(i.cfg.AccessSecret))
}

// IssueRefreshToken creates a signed refresh token carrying only the user
// id and a fixed type discriminator.
func (i *Issuer) IssueRefreshToken(userID string) (string, error) {
	now := time.Now()
	claims := refreshClaims{
		TokenType: refreshTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    i.cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.cfg.RefreshTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(i.cfg.RefreshSecret))
}

// VerifyAccessToken checks signature and expiry, returning the identity
// encoded in the token. Expired tokens fail with ErrTokenExpired so the
// HTTP layer can tell clients to refresh.
func (i *Issuer) VerifyAccessToken(tokenString string) (*domain.Identity, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrTokenMalformed
		}
		return []byte(i.cfg.AccessSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenMalformed
	}
	if !token.Valid {
		return nil, domain.ErrTokenMalformed
	}

	roles := claims.Roles
	if roles == nil {
		roles = []string{}
	}
	return &domain.Identity{
		ID:    claims.Subject,
		Email: claims.Email,
		Roles: roles,
	}, nil
}

// VerifyRefreshToken checks signature, expiry and the type discriminator,
// returning the user id the token was issued for.
func (i *Issuer) VerifyRefreshToken(tokenString string) (string, error) {
	claims := &refreshClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrTokenMalformed
		}
		return []byte(i.cfg.RefreshSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrTokenExpired
		}
		return "", domain.ErrTokenMalformed
	}
	if !token.Valid {
		return "", domain.ErrTokenMalformed
	}

	if claims.TokenType != refreshTokenType {
		return "", domain.ErrInvalidTokenKind
	}
	return claims.Subject, nil
}
