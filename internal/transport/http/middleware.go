package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/njprem/fitcity-account-service/internal/util"
)

const (
	contextClaimsKey = "auth.claims"
	contextTokenKey  = "auth.token"
)

// SessionVerifier checks a bearer token.
type SessionVerifier interface {
	Authenticate(token string) (*util.Claims, error)
}

func RequireAuth(auth SessionVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if strings.TrimSpace(authHeader) == "" {
				return c.JSON(http.StatusUnauthorized, util.Error("missing authorization header"))
			}
			token, ok := bearerToken(authHeader)
			if !ok {
				return c.JSON(http.StatusUnauthorized, util.Error("invalid authorization header"))
			}
			claims, err := auth.Authenticate(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, util.Error(err.Error()))
			}
			c.Set(contextClaimsKey, claims)
			c.Set(contextTokenKey, token)
			return next(c)
		}
	}
}

func CurrentClaims(c echo.Context) (*util.Claims, bool) {
	claims, ok := c.Get(contextClaimsKey).(*util.Claims)
	return claims, ok && claims != nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
