package auth

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nihar004/spring-and-coil-manufacturing/internal/config"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/dbtest"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCfg = &config.Config{JWTSecret: "0123456789abcdef0123456789abcdef"}

func newApp() *fiber.App {
	app := fiber.New()
	app.Post("/register-admin", RegisterAdminHandler())
	app.Post("/login", LoginHandler(testCfg))

	protected := app.Group("", JWTMiddleware(testCfg))
	protected.Get("/me", MeHandler())
	protected.Get("/admin-only", RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestRegisterLoginMe(t *testing.T) {
	dbtest.Open(t)
	app := newApp()

	status, _ := postJSON(t, app, "/register-admin", `{"name":"Priya","email":"Priya@Plant.example ","password":"s3cret"}`)
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = postJSON(t, app, "/register-admin", `{"name":"Other","email":"other@plant.example","password":"x"}`)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = postJSON(t, app, "/login", `{"email":"priya@plant.example","password":"wrong"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body := postJSON(t, app, "/login", `{"email":"priya@plant.example","password":"s3cret"}`)
	require.Equal(t, fiber.StatusOK, status)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("GET", "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestMiddlewareRejectsBadTokens(t *testing.T) {
	app := newApp()

	for _, header := range []string{"", "Token abc", "Bearer not-a-jwt"} {
		req := httptest.NewRequest("GET", "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, header)
	}
}

func TestRequireRole(t *testing.T) {
	app := newApp()

	token, err := GenerateToken(testCfg.JWTSecret, &models.User{ID: 5, Name: "Op", Role: models.RoleOperator})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
