package middleware

import (
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
)

// RequireAuth returns a middleware that verifies Firebase credentials. It
// accepts either the session cookie set at login or a bearer ID token, and
// responds 401 JSON for API clients.
func RequireAuth(authClient *auth.Client) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if authClient == nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "authentication is not configured")
			}

			ctx := c.Request().Context()

			// Bearer token takes precedence for API clients.
			if header := c.Request().Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
				token, err := authClient.VerifyIDToken(ctx, strings.TrimPrefix(header, "Bearer "))
				if err != nil {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				setClaims(c, token)
				return next(c)
			}

			cookie, err := c.Cookie("session")
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}

			decodedToken, err := authClient.VerifySessionCookie(ctx, cookie.Value)
			if err != nil {
				// Invalid session, clear cookie
				clearCookie := &http.Cookie{
					Name:     "session",
					Value:    "",
					MaxAge:   -1,
					HttpOnly: true,
					Path:     "/",
				}
				c.SetCookie(clearCookie)
				return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
			}

			setClaims(c, decodedToken)
			return next(c)
		}
	}
}

func setClaims(c echo.Context, token *auth.Token) {
	c.Set("userUID", token.UID)
	if email, ok := token.Claims["email"].(string); ok {
		c.Set("userEmail", email)
	}
	if name, ok := token.Claims["name"].(string); ok {
		c.Set("userName", name)
	}
}
