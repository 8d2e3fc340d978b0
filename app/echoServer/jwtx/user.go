// app/echoServer/jwtx/user.go
package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	jwtutil "github.com/n1x9s/library/util/jwt"
)

// UserIDFromContext reads the authenticated user id placed in the echo
// context by the jwt middleware.
func UserIDFromContext(c echo.Context) (uuid.UUID, error) {
	if id, ok := c.Get("user_id").(uuid.UUID); ok {
		return id, nil
	}

	tok, ok := c.Get("user").(*jwt.Token)
	if !ok || tok == nil {
		return uuid.Nil, errors.New("no jwt token in context")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid jwt claims")
	}
	return jwtutil.Subject(claims)
}
