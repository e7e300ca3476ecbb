// backend/src/security/auth_service.go
package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService validates the bearer tokens issued by the suite's central
// auth. Reconciliation only needs the business-unit claim out of them; user
// management lives elsewhere.
type AuthService struct {
	secret []byte
}

func NewAuthService(jwtSecret string) *AuthService {
	return &AuthService{secret: []byte(jwtSecret)}
}

// IssueToken creates a signed HS256 token carrying the business-unit claim.
func (s *AuthService) IssueToken(unitID string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"unit": unitID,
		"iat":  now.Unix(),
		"exp":  now.Add(expiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken verifies signature and expiry and returns the unit claim.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	unitID, ok := claims["unit"].(string)
	if !ok || unitID == "" {
		return "", ErrInvalidToken
	}
	return unitID, nil
}
