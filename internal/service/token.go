package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

const (
	accessTokenTTL  = 5 * time.Minute
	refreshTokenTTL = 365 * 24 * time.Hour

	randomAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// TokenClaims are the claims carried by issued tokens. Access tokens set
// UserID; refresh tokens carry only a random Data value, identity is
// recovered through the stored token pair.
type TokenClaims struct {
	UserID uint   `json:"user_id,omitempty"`
	Data   string `json:"data,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed tokens with a process-wide secret.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a new TokenService instance
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// IssueAccessToken creates a short-lived access token embedding the user id.
// The random jti keeps tokens minted within the same second distinct, so
// replacing a pair always invalidates the previous access token.
func (s *TokenService) IssueAccessToken(userID uint) (string, error) {
	jti, err := RandomString(10)
	if err != nil {
		return "", err
	}
	claims := &TokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// IssueRefreshToken creates a long-lived refresh token. It carries no user
// identity, only a random value to make each token unique.
func (s *TokenService) IssueRefreshToken() (string, error) {
	data, err := RandomString(10)
	if err != nil {
		return "", err
	}
	claims := &TokenClaims{
		Data: data,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(refreshTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// DecodeToken verifies the signature and expiry of a token and returns its
// claims. Expired tokens fail with ErrTokenExpired, everything else with
// ErrInvalidToken.
func (s *TokenService) DecodeToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RandomString returns a random string of exactly length characters drawn
// uniformly from uppercase letters and digits. Bytes at or above the
// largest multiple of the alphabet size are rejected to avoid modulo bias.
func RandomString(length int) (string, error) {
	const limit = 256 - 256%len(randomAlphabet)

	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, randomAlphabet[int(b)%len(randomAlphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}
