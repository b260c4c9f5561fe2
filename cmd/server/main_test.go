package main

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nihar004/spring-and-coil-manufacturing/internal/config"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/dbtest"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type client struct {
	t     *testing.T
	app   *fiber.App
	token string
}

func (cl client) call(method, path, body string) (int, map[string]any) {
	cl.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}
	resp, err := cl.app.Test(req, -1)
	require.NoError(cl.t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestCardLifecycle(t *testing.T) {
	db := dbtest.Open(t)
	cfg := &config.Config{JWTSecret: "0123456789abcdef0123456789abcdef", CORSOrigins: "http://localhost:3000"}
	cl := client{t: t, app: newApp(cfg, zap.NewNop())}

	status, _ := cl.call("POST", "/api/auth/register-admin", `{"name":"Asha","email":"asha@plant.example","password":"pw"}`)
	require.Equal(t, fiber.StatusCreated, status)
	status, body := cl.call("POST", "/api/auth/login", `{"email":"asha@plant.example","password":"pw"}`)
	require.Equal(t, fiber.StatusOK, status)
	cl.token = body["token"].(string)

	status, body = cl.call("GET", "/api/setups", "")
	assert.Equal(t, fiber.StatusOK, status)

	status, body = cl.call("POST", "/api/setups", `{"machine_no":"S-02","date":"2024-06-15"}`)
	require.Equal(t, fiber.StatusCreated, status)
	setupID := uint(body["id"].(float64))

	var entry models.ProductionEntry
	require.NoError(t, db.Where("setup_id = ?", setupID).First(&entry).Error)

	edit := fmt.Sprintf(`{"path":"production.%d.customer","value":"Acme Springs"}`, entry.ID)
	status, _ = cl.call("PATCH", fmt.Sprintf("/api/setups/%d/fields", setupID), edit)
	require.Equal(t, fiber.StatusOK, status)

	status, body = cl.call("GET", fmt.Sprintf("/api/setups/%d/production?customer=ACME&machine_no=s-02", setupID), "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Showing 1 of 1", body["summary"])
	assert.EqualValues(t, 2, body["active_filters"])

	// the edit was audited and can be undone
	var logs []models.AuditLog
	require.NoError(t, db.Where("entity_type = ?", "production_entry").Find(&logs).Error)
	require.Len(t, logs, 1)
	status, _ = cl.call("POST", fmt.Sprintf("/api/audit-logs/%d/undo", logs[0].ID), "")
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, db.First(&entry, entry.ID).Error)
	assert.Equal(t, "", entry.Customer)

	status, body = cl.call("GET", "/api/nothing-here", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.NotEmpty(t, body["error"])
}

func signedIn(t *testing.T) client {
	t.Helper()
	cfg := &config.Config{JWTSecret: "0123456789abcdef0123456789abcdef"}
	cl := client{t: t, app: newApp(cfg, zap.NewNop())}

	status, _ := cl.call("POST", "/api/auth/register-admin", `{"name":"Asha","email":"asha@plant.example","password":"pw"}`)
	require.Equal(t, fiber.StatusCreated, status)
	status, body := cl.call("POST", "/api/auth/login", `{"email":"asha@plant.example","password":"pw"}`)
	require.Equal(t, fiber.StatusOK, status)
	cl.token = body["token"].(string)
	return cl
}

func lastLog(t *testing.T, db *gorm.DB, entityType string, action models.AuditAction) models.AuditLog {
	t.Helper()
	var l models.AuditLog
	require.NoError(t, db.Where("entity_type = ? AND action = ?", entityType, action).Order("id DESC").First(&l).Error)
	return l
}

func TestUndoSetupDeleteBringsBackCard(t *testing.T) {
	db := dbtest.Open(t)
	cl := signedIn(t)

	status, body := cl.call("POST", "/api/setups", `{"machine_no":"S-02","date":"2024-06-15"}`)
	require.Equal(t, fiber.StatusCreated, status)
	setupID := uint(body["id"].(float64))
	status, _ = cl.call("POST", fmt.Sprintf("/api/setups/%d/rejections", setupID), `{"coil_no":"C-3","total_rejection":"4"}`)
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = cl.call("DELETE", fmt.Sprintf("/api/setups/%d", setupID), "")
	require.Equal(t, fiber.StatusNoContent, status)

	deleted := lastLog(t, db, "setup", models.AuditActionDelete)
	status, _ = cl.call("POST", fmt.Sprintf("/api/audit-logs/%d/undo", deleted.ID), "")
	require.Equal(t, fiber.StatusOK, status)

	status, body = cl.call("GET", fmt.Sprintf("/api/setups/%d/production", setupID), "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Showing 1 of 1", body["summary"])

	var rejections, sheets int64
	db.Model(&models.RejectionEntry{}).Where("setup_id = ?", setupID).Count(&rejections)
	db.Model(&models.Verification{}).Where("setup_id = ?", setupID).Count(&sheets)
	assert.EqualValues(t, 1, rejections)
	assert.EqualValues(t, 1, sheets)
}

func TestUndoCannotRemoveLastProductionEntry(t *testing.T) {
	db := dbtest.Open(t)
	cl := signedIn(t)

	status, body := cl.call("POST", "/api/setups", `{"machine_no":"S-02"}`)
	require.Equal(t, fiber.StatusCreated, status)
	setupID := uint(body["id"].(float64))
	var original models.ProductionEntry
	require.NoError(t, db.Where("setup_id = ?", setupID).First(&original).Error)

	status, _ = cl.call("POST", fmt.Sprintf("/api/setups/%d/production", setupID), "")
	require.Equal(t, fiber.StatusCreated, status)
	status, _ = cl.call("DELETE", fmt.Sprintf("/api/production/%d", original.ID), "")
	require.Equal(t, fiber.StatusNoContent, status)

	created := lastLog(t, db, "production_entry", models.AuditActionCreate)
	status, _ = cl.call("POST", fmt.Sprintf("/api/audit-logs/%d/undo", created.ID), "")
	assert.Equal(t, fiber.StatusConflict, status)

	var count int64
	db.Model(&models.ProductionEntry{}).Where("setup_id = ?", setupID).Count(&count)
	assert.EqualValues(t, 1, count)

	status, _ = cl.call("POST", "/api/audit-logs/9999/undo", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestRoutesRequireToken(t *testing.T) {
	dbtest.Open(t)
	cfg := &config.Config{JWTSecret: "0123456789abcdef0123456789abcdef"}
	cl := client{t: t, app: newApp(cfg, zap.NewNop())}

	status, body := cl.call("GET", "/api/setups", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.NotEmpty(t, body["error"])
}
