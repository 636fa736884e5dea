package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer = "viralscript"

	audienceAccess  = "access"
	audienceRefresh = "refresh"
)

var errInvalidClaims = errors.New("invalid token claims")

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type AccessClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// RefreshClaims carry the id of the Redis entry that keeps the token alive.
type RefreshClaims struct {
	UserID  string `json:"uid"`
	TokenID string `json:"tid"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies HS256 tokens. Access and refresh tokens use
// separate secrets and audiences so neither passes as the other.
type JWTManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewJWTManager(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration) *JWTManager {
	return &JWTManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// GenerateTokenPair returns a fresh pair and the refresh token's id.
func (m *JWTManager) GenerateTokenPair(userID, email string) (*TokenPair, string, error) {
	now := time.Now()

	accessStr, err := sign(m.accessSecret, AccessClaims{
		UserID:           userID,
		Email:            email,
		RegisteredClaims: registered(userID, audienceAccess, now, m.accessExpiry),
	})
	if err != nil {
		return nil, "", fmt.Errorf("signing access token: %w", err)
	}

	tokenID := uuid.NewString()
	refresh := RefreshClaims{
		UserID:           userID,
		TokenID:          tokenID,
		RegisteredClaims: registered(userID, audienceRefresh, now, m.refreshExpiry),
	}
	refresh.ID = tokenID
	refreshStr, err := sign(m.refreshSecret, refresh)
	if err != nil {
		return nil, "", fmt.Errorf("signing refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessStr,
		RefreshToken: refreshStr,
		ExpiresIn:    int64(m.accessExpiry.Seconds()),
	}, tokenID, nil
}

func (m *JWTManager) ValidateAccessToken(tokenStr string) (*AccessClaims, error) {
	claims, err := parse(tokenStr, m.accessSecret, audienceAccess, &AccessClaims{})
	if err != nil {
		return nil, fmt.Errorf("parsing access token: %w", err)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("parsing access token: %w", errInvalidClaims)
	}
	return claims, nil
}

func (m *JWTManager) ValidateRefreshToken(tokenStr string) (*RefreshClaims, error) {
	claims, err := parse(tokenStr, m.refreshSecret, audienceRefresh, &RefreshClaims{})
	if err != nil {
		return nil, fmt.Errorf("parsing refresh token: %w", err)
	}
	if claims.UserID == "" || claims.TokenID == "" {
		return nil, fmt.Errorf("parsing refresh token: %w", errInvalidClaims)
	}
	return claims, nil
}

func (m *JWTManager) RefreshExpiry() time.Duration {
	return m.refreshExpiry
}

func registered(subject, audience string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func sign(secret []byte, claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func parse[T jwt.Claims](tokenStr string, secret []byte, audience string, claims T) (T, error) {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return claims, err
	}
	if !token.Valid {
		return claims, errInvalidClaims
	}
	return claims, nil
}
