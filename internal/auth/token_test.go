package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/layali/planner-gateway/internal/models"
)

// TestParseAccessToken проверяет выпуск и разбор токена.
func TestParseAccessToken(t *testing.T) {
	verifier := NewVerifier("secret", "layali")

	token, _, err := verifier.NewAccessToken("64f0c2", models.RolePersonal, time.Minute)
	require.NoError(t, err)

	claims, err := verifier.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "64f0c2", claims.Subject)
	assert.Equal(t, models.RolePersonal, claims.Role)
}

// TestParseAccessTokenRejects проверяет отказ для чужого секрета, издателя и просроченного токена.
func TestParseAccessTokenRejects(t *testing.T) {
	verifier := NewVerifier("secret", "layali")

	other := NewVerifier("other", "layali")
	token, _, err := other.NewAccessToken("u1", models.RolePersonal, time.Minute)
	require.NoError(t, err)
	_, err = verifier.ParseAccessToken(token)
	assert.Error(t, err)

	foreign := NewVerifier("secret", "somebody")
	token, _, err = foreign.NewAccessToken("u1", models.RolePersonal, time.Minute)
	require.NoError(t, err)
	_, err = verifier.ParseAccessToken(token)
	assert.Error(t, err)

	expired := NewVerifier("secret", "layali")
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err = expired.NewAccessToken("u1", models.RolePersonal, time.Minute)
	require.NoError(t, err)
	_, err = verifier.ParseAccessToken(token)
	assert.Error(t, err)
}

// TestParseRefreshTokenRejected проверяет, что refresh-токен не принимается как access.
func TestParseRefreshTokenRejected(t *testing.T) {
	verifier := NewVerifier("secret", "")

	claims := Claims{
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = verifier.ParseAccessToken(token)
	assert.ErrorIs(t, err, ErrTokenType)
}

// TestMissingRoleDefaultsToPersonal проверяет роль по умолчанию.
func TestMissingRoleDefaultsToPersonal(t *testing.T) {
	verifier := NewVerifier("secret", "")

	token, _, err := verifier.NewAccessToken("u1", "", time.Minute)
	require.NoError(t, err)

	claims, err := verifier.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.RolePersonal, claims.Role)
}

// TestJWTMiddleware проверяет заголовок, роли и значения в контексте.
func TestJWTMiddleware(t *testing.T) {
	verifier := NewVerifier("secret", "layali")
	e := echo.New()

	var gotUser, gotToken string
	handler := JWTMiddleware(verifier, models.RolePersonal)(func(c echo.Context) error {
		gotUser, _ = UserIDFromContext(c)
		gotToken, _ = TokenFromContext(c)
		return c.NoContent(http.StatusNoContent)
	})

	personal, _, err := verifier.NewAccessToken("u1", models.RolePersonal, time.Minute)
	require.NoError(t, err)
	vendor, _, err := verifier.NewAccessToken("u2", models.RoleVendor, time.Minute)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing", header: "", status: http.StatusUnauthorized},
		{name: "scheme", header: "Basic " + personal, status: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "vendor", header: "Bearer " + vendor, status: http.StatusForbidden},
		{name: "personal", header: "Bearer " + personal, status: http.StatusNoContent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			err := handler(e.NewContext(req, rec))
			if tc.status == http.StatusNoContent {
				require.NoError(t, err)
				assert.Equal(t, tc.status, rec.Code)
				return
			}

			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tc.status, httpErr.Code)
		})
	}

	assert.Equal(t, "u1", gotUser)
	assert.Equal(t, personal, gotToken)
}
