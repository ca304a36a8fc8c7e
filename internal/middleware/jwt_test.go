package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const jwtTestSecret = "middleware-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func jwtApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", JWTProtected(jwtTestSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"id":    c.Locals(LocalUserID),
			"role":  c.Locals(LocalUserRole),
			"email": c.Locals(LocalUserEmail),
		})
	})
	return app
}

func callWithToken(t *testing.T, app *fiber.App, header string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set(fiber.HeaderAuthorization, header)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestJWTProtectedExposesClaims(t *testing.T) {
	token := signToken(t, jwtTestSecret, jwt.MapClaims{
		"sub":   "user-1",
		"email": "alice@campus.test",
		"role":  "Student",
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	resp := callWithToken(t, jwtApp(), "Bearer "+token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "user-1", body["id"])
	require.Equal(t, "student", body["role"])
	require.Equal(t, "alice@campus.test", body["email"])
}

func TestJWTProtectedRejectsBadTokens(t *testing.T) {
	app := jwtApp()
	expired := signToken(t, jwtTestSecret, jwt.MapClaims{"sub": "u1", "role": "student", "exp": time.Now().Add(-time.Minute).Unix()})
	forged := signToken(t, "other-secret", jwt.MapClaims{"sub": "u1", "role": "student", "exp": time.Now().Add(time.Hour).Unix()})
	noExpiry := signToken(t, jwtTestSecret, jwt.MapClaims{"sub": "u1", "role": "student"})
	noRole := signToken(t, jwtTestSecret, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(time.Hour).Unix()})

	cases := map[string]string{
		"missing":   "",
		"scheme":    "Basic abc",
		"expired":   "Bearer " + expired,
		"forged":    "Bearer " + forged,
		"no expiry": "Bearer " + noExpiry,
		"no role":   "Bearer " + noRole,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			resp := callWithToken(t, app, header)
			require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}
