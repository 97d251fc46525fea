package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
)

const firebaseTokenContextKey = "firebaseToken"

// TokenVerifier verifies a federated ID token. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseAuthMiddleware verifies Firebase ID tokens for routes that accept
// federated identities directly instead of a local JWT. The verified token is
// stored in the context for FirebaseToken.
func FirebaseAuthMiddleware(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is missing")
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header must be in Bearer format")
			}

			token, err := verifier.VerifyIDToken(c.Request().Context(), tokenParts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired ID token")
			}

			c.Set(firebaseTokenContextKey, token)
			c.Set("firebaseUID", token.UID)
			return next(c)
		}
	}
}

// FirebaseToken returns the verified federated token, or nil when the request
// did not pass FirebaseAuthMiddleware
func FirebaseToken(c echo.Context) *auth.Token {
	token, _ := c.Get(firebaseTokenContextKey).(*auth.Token)
	return token
}
