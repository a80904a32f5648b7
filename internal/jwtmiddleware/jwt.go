package jwtmiddleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// RequireUser validates the HS256 bearer token issued by the identity
// provider and stores the subject user id in the echo context under
// "user_id".
func RequireUser(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, err := parseUserID(c.Request().Header.Get("Authorization"), secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
			}
			c.Set("user_id", userID)
			return next(c)
		}
	}
}

func parseUserID(header string, secret []byte) (uint, error) {
	if !strings.HasPrefix(header, "Bearer ") {
		return 0, fmt.Errorf("missing bearer token")
	}
	raw := strings.TrimPrefix(header, "Bearer ")
	if raw == "" {
		return 0, fmt.Errorf("missing bearer token")
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("unexpected claims type")
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("subject claim: %w", err)
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("subject %q is not a user id", sub)
	}
	return uint(id), nil
}

// UserID reads the authenticated user id placed by RequireUser.
func UserID(c echo.Context) (uint, error) {
	v, ok := c.Get("user_id").(uint)
	if !ok || v == 0 {
		return 0, fmt.Errorf("unauthorized")
	}
	return v, nil
}
