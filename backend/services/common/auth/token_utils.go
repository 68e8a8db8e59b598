package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const TokenTypeAccess = "access"

var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is what a verified access token says about its bearer.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// TokenManager signs and verifies HS256 tokens with claims sub, email, role, typ.
type TokenManager struct {
	secretKey []byte
	accessTTL time.Duration
	now       func() time.Time
}

func NewTokenManager(secret string, accessTTL time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret not configured")
	}
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	return &TokenManager{secretKey: []byte(secret), accessTTL: accessTTL, now: time.Now}, nil
}

// IssueAccessToken returns a signed token and its expiry.
func (m *TokenManager) IssueAccessToken(id Identity) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.accessTTL)
	claims := jwt.MapClaims{
		"sub":   id.UserID,
		"email": id.Email,
		"role":  id.Role,
		"typ":   TokenTypeAccess,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// ParseAndValidateToken verifies signature, expiry and, when expectedType is
// non-empty, the "typ" claim.
func (m *TokenManager) ParseAndValidateToken(tokenStr, expectedType string) (*Identity, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	})
	if err != nil || token == nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if expectedType != "" {
		if typ, _ := claims["typ"].(string); typ != expectedType {
			return nil, fmt.Errorf("invalid token type")
		}
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	return &Identity{UserID: sub, Email: email, Role: role}, nil
}
