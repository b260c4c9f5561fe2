package verification

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nihar004/spring-and-coil-manufacturing/internal/dbtest"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerificationRoundTrip(t *testing.T) {
	db := dbtest.Open(t)
	s := models.Setup{Reference: "r1", MachineNo: "S-02"}
	require.NoError(t, db.Create(&s).Error)

	app := fiber.New()
	app.Get("/setups/:id/verification", GetVerificationHandler())
	app.Put("/setups/:id/verification", UpdateVerificationHandler())
	path := fmt.Sprintf("/setups/%d/verification", s.ID)

	resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var blank models.Verification
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&blank))
	assert.Len(t, blank.FirstOff, models.SampleRows)
	assert.Zero(t, blank.ID)

	body := `{"machine_no":"S-02","part_no":"SPR-10","first_off":[{"fl":"F","od_id":"12.1","nc":"8","time":"08:15"}],"pressure":"140","abnormality":"wire break"}`
	req := httptest.NewRequest("PUT", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stored models.Verification
	require.NoError(t, db.Where("setup_id = ?", s.ID).First(&stored).Error)
	assert.Equal(t, "SPR-10", stored.PartNo)
	require.Len(t, stored.FirstOff, models.SampleRows)
	assert.Equal(t, "12.1", stored.FirstOff[0].ODID)
	assert.Len(t, stored.LastOff, models.SampleRows)
	assert.Equal(t, "wire break", stored.Abnormality)

	tooMany := `{"last_off":[{},{},{},{},{},{}]}`
	req = httptest.NewRequest("PUT", path, strings.NewReader(tooMany))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/setups/404/verification", nil), -1)
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
