package utils

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the JWT payload for access and refresh tokens. Older
// token issuers set a singular role, newer ones a roles array; both shapes
// are accepted and normalized via RoleSet.
type TokenClaims struct {
	UserID uint     `json:"uid"`
	Email  string   `json:"email"`
	Role   string   `json:"role,omitempty"`
	Roles  []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// RoleSet folds the singular and plural claim shapes into one set.
func (c *TokenClaims) RoleSet() map[string]bool {
	set := make(map[string]bool, len(c.Roles)+1)
	if c.Role != "" {
		set[c.Role] = true
	}
	for _, r := range c.Roles {
		if r != "" {
			set[r] = true
		}
	}
	return set
}

func SignToken(userID uint, email, role, secret string, ttl time.Duration) (string, error) {
	claims := TokenClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(tokenStr, secret string) (*TokenClaims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := t.Claims.(*TokenClaims)
	if !ok || !t.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
