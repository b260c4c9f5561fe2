package admin

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nihar004/spring-and-coil-manufacturing/internal/dbtest"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateAndListUsers(t *testing.T) {
	db := dbtest.Open(t)

	app := fiber.New()
	app.Post("/users", CreateUserHandler())
	app.Get("/users", ListUsersHandler())

	post := func(body string) int {
		req := httptest.NewRequest("POST", "/users", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusCreated, post(`{"name":"Ravi","email":" Ravi@Plant.example","password":"pw","role":"operator"}`))
	assert.Equal(t, fiber.StatusCreated, post(`{"name":"Meena","email":"meena@plant.example","password":"pw","role":"supervisor"}`))
	assert.Equal(t, fiber.StatusConflict, post(`{"name":"Ravi 2","email":"ravi@plant.example","password":"pw","role":"operator"}`))
	assert.Equal(t, fiber.StatusBadRequest, post(`{"name":"Boss","email":"boss@plant.example","password":"pw","role":"admin"}`))
	assert.Equal(t, fiber.StatusBadRequest, post(`{"name":"","email":"x@plant.example","password":"pw","role":"operator"}`))

	var stored models.User
	require.NoError(t, db.Where("email = ?", "ravi@plant.example").First(&stored).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pw")))

	resp, err := app.Test(httptest.NewRequest("GET", "/users?role=operator", nil), -1)
	require.NoError(t, err)
	var users []UserResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&users))
	require.Len(t, users, 1)
	assert.Equal(t, "Ravi", users[0].Name)
	assert.Equal(t, models.RoleOperator, users[0].Role)
}
