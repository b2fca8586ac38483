package middleware // middleware provides reusable HTTP middleware for the API

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects the caller's identity into the request context.
// Token issuance lives in the identity service; this engine only
// verifies. The subject claim is parsed into a numeric user id stored
// under "user_id", the raw subject string is stored under "actor"
// (used verbatim on audit log rows), and the "role" claim is stored
// under "role" for RequireRole.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				// Only HMAC-signed tokens are accepted.
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			actor, userID := subjectOf(claims)
			if actor == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing subject"})
			}
			c.Set("actor", actor)
			c.Set("user_id", userID)
			if role, ok := claims["role"].(string); ok {
				c.Set("role", role)
			}
			return next(c)
		}
	}
}

// subjectOf extracts the subject claim as both the raw actor string
// and, when it is numeric, the user id. Tokens encode the subject
// either as a JSON string or a number depending on the issuer.
func subjectOf(claims jwt.MapClaims) (string, uint64) {
	switch v := claims["sub"].(type) {
	case string:
		id, _ := strconv.ParseUint(v, 10, 64)
		return v, id
	case float64:
		id := uint64(v)
		return strconv.FormatUint(id, 10), id
	}
	return "", 0
}
