package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"example.com/layali/planner-gateway/internal/models"
)

const (
	ContextUserIDKey = "user_id"
	ContextRoleKey   = "user_role"
	ContextTokenKey  = "access_token"
)

// JWTMiddleware проверяет access-токен и сохраняет пользователя в контексте.
// Токен сохраняется как есть: им же подписываются запросы к маркетплейсу.
func JWTMiddleware(verifier *Verifier, allowed ...models.Role) echo.MiddlewareFunc {
	roles := make(map[models.Role]struct{}, len(allowed))
	for _, role := range allowed {
		roles[role] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			tokenString := strings.TrimSpace(parts[1])
			if tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := verifier.ParseAccessToken(tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			if len(roles) > 0 {
				if _, ok := roles[claims.Role]; !ok {
					return echo.NewHTTPError(http.StatusForbidden, "role is not allowed")
				}
			}

			c.Set(ContextUserIDKey, claims.Subject)
			c.Set(ContextRoleKey, claims.Role)
			c.Set(ContextTokenKey, tokenString)
			return next(c)
		}
	}
}

// UserIDFromContext извлекает идентификатор пользователя из контекста.
func UserIDFromContext(c echo.Context) (string, bool) {
	userID, ok := c.Get(ContextUserIDKey).(string)
	return userID, ok && userID != ""
}

func RoleFromContext(c echo.Context) (models.Role, bool) {
	role, ok := c.Get(ContextRoleKey).(models.Role)
	return role, ok
}

// TokenFromContext возвращает исходный bearer-токен запроса.
func TokenFromContext(c echo.Context) (string, bool) {
	token, ok := c.Get(ContextTokenKey).(string)
	return token, ok && token != ""
}
