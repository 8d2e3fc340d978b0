package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func Issue(secret string, userID uuid.UUID, ttlHours int) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(time.Duration(ttlHours) * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// Subject extracts the user id from claims verified by the jwt middleware.
func Subject(claims jwt.MapClaims) (uuid.UUID, error) {
	s, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("sub missing in claims")
	}
	return uuid.Parse(s)
}
