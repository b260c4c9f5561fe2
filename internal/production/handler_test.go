package production

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nihar004/spring-and-coil-manufacturing/internal/dbtest"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func newApp() *fiber.App {
	app := fiber.New()
	app.Get("/setups/:id/production", ListSetupProductionHandler())
	app.Get("/setups/:id/production/export", ExportProductionHandler())
	app.Post("/setups/:id/production", CreateProductionHandler())
	app.Get("/production", ListProductionHandler())
	app.Put("/production/:id", UpdateProductionHandler())
	app.Delete("/production/:id", DeleteProductionHandler())
	return app
}

// seed creates two setups: S-02 on 2024-06-15 with two coils, S-03 on
// 2024-07-01 with one.
func seed(t *testing.T, db *gorm.DB) (models.Setup, models.Setup) {
	t.Helper()

	s1 := models.Setup{Reference: "r1", MachineNo: "S-02", Date: "2024-06-15", Shift: "A"}
	s2 := models.Setup{Reference: "r2", MachineNo: "S-03", Date: "2024-07-01", Shift: "B"}
	require.NoError(t, db.Create(&s1).Error)
	require.NoError(t, db.Create(&s2).Error)

	entries := []models.ProductionEntry{
		{SetupID: s1.ID, CoilNo: "C-1001", Customer: "Acme Corp", PartNo: "SPR-10", InspectionStatus: models.InspectionPassed},
		{SetupID: s1.ID, CoilNo: "C-1002", Customer: "Globex", PartNo: "SPR-20", InspectionStatus: models.InspectionFailed},
		{SetupID: s2.ID, CoilNo: "C-2001", Customer: "acme industries", PartNo: "CMP-10", InspectionStatus: models.InspectionPending},
	}
	require.NoError(t, db.Create(&entries).Error)
	return s1, s2
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode(t *testing.T, raw []byte) FilteredResponse {
	t.Helper()
	var out FilteredResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func coils(res FilteredResponse) []string {
	out := make([]string, 0, len(res.Entries))
	for _, e := range res.Entries {
		out = append(out, e.CoilNo)
	}
	return out
}

func TestListSetupProduction(t *testing.T) {
	db := dbtest.Open(t)
	s1, _ := seed(t, db)
	app := newApp()
	base := "/setups/" + itoa(s1.ID) + "/production"

	status, raw := do(t, app, "GET", base, "")
	require.Equal(t, fiber.StatusOK, status)
	res := decode(t, raw)
	assert.Equal(t, []string{"C-1001", "C-1002"}, coils(res))
	assert.Equal(t, "Showing 2 of 2", res.Summary)
	assert.Equal(t, 0, res.ActiveFilters)

	_, raw = do(t, app, "GET", base+"?customer=ACME&date_from=2024-01-01", "")
	res = decode(t, raw)
	assert.Equal(t, []string{"C-1001"}, coils(res))
	assert.Equal(t, 2, res.ActiveFilters)
	assert.Equal(t, "Showing 1 of 2", res.Summary)

	// machine and date belong to the setup: all or nothing
	_, raw = do(t, app, "GET", base+"?machine_no=s-02", "")
	assert.Equal(t, []string{"C-1001", "C-1002"}, coils(decode(t, raw)))
	_, raw = do(t, app, "GET", base+"?date_from=2024-06-16", "")
	assert.Empty(t, decode(t, raw).Entries)

	_, raw = do(t, app, "GET", base+"?status=failed", "")
	assert.Equal(t, []string{"C-1002"}, coils(decode(t, raw)))

	status, _ = do(t, app, "GET", base+"?status=rework", "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = do(t, app, "GET", "/setups/999/production", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestListSetupProduction_Preset(t *testing.T) {
	db := dbtest.Open(t)
	s1, _ := seed(t, db)
	app := newApp()

	prev := now
	now = func() time.Time { return time.Date(2024, 6, 20, 9, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = prev })

	_, raw := do(t, app, "GET", "/setups/"+itoa(s1.ID)+"/production?preset=last_7_days", "")
	res := decode(t, raw)
	assert.Len(t, res.Entries, 2)
	assert.Equal(t, "2024-06-13", res.Criteria.DateRange.From)

	_, raw = do(t, app, "GET", "/setups/"+itoa(s1.ID)+"/production?preset=today", "")
	assert.Empty(t, decode(t, raw).Entries)
}

func TestListProductionAcrossSetups(t *testing.T) {
	db := dbtest.Open(t)
	seed(t, db)
	app := newApp()

	_, raw := do(t, app, "GET", "/production?customer=acme", "")
	res := decode(t, raw)
	assert.Equal(t, []string{"C-1001", "C-2001"}, coils(res))
	assert.Equal(t, 3, res.Total)

	_, raw = do(t, app, "GET", "/production?customer=acme&date_to=2024-06-30", "")
	assert.Equal(t, []string{"C-1001"}, coils(decode(t, raw)))

	_, raw = do(t, app, "GET", "/production?machine_no=S-03", "")
	assert.Equal(t, []string{"C-2001"}, coils(decode(t, raw)))
}

func TestCreateUpdateDeleteProduction(t *testing.T) {
	db := dbtest.Open(t)
	_, s2 := seed(t, db)
	app := newApp()

	status, raw := do(t, app, "POST", "/setups/"+itoa(s2.ID)+"/production", "")
	require.Equal(t, fiber.StatusCreated, status)
	var blank models.ProductionEntry
	require.NoError(t, json.Unmarshal(raw, &blank))
	assert.Equal(t, models.InspectionPending, blank.InspectionStatus)
	assert.Empty(t, blank.CoilNo)

	body := `{"coil_no":"C-2002","customer":"Initech","observations":{"start":{"length":"42.5"}},"inspection_status":"passed"}`
	status, raw = do(t, app, "PUT", "/production/"+itoa(blank.ID), body)
	require.Equal(t, fiber.StatusOK, status)
	var updated models.ProductionEntry
	require.NoError(t, json.Unmarshal(raw, &updated))
	assert.Equal(t, "C-2002", updated.CoilNo)
	assert.Equal(t, "42.5", updated.Observations.Start.Length)
	assert.Equal(t, models.InspectionPassed, updated.InspectionStatus)

	var stored models.ProductionEntry
	require.NoError(t, db.First(&stored, blank.ID).Error)
	assert.Equal(t, "42.5", stored.Observations.Start.Length)

	status, _ = do(t, app, "PUT", "/production/"+itoa(blank.ID), `{"inspection_status":"maybe"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = do(t, app, "DELETE", "/production/"+itoa(blank.ID), "")
	assert.Equal(t, fiber.StatusNoContent, status)

	// one entry left on s2
	var last models.ProductionEntry
	require.NoError(t, db.Where("setup_id = ?", s2.ID).First(&last).Error)
	status, _ = do(t, app, "DELETE", "/production/"+itoa(last.ID), "")
	assert.Equal(t, fiber.StatusConflict, status)

	status, _ = do(t, app, "DELETE", "/production/9999", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestExportProduction(t *testing.T) {
	db := dbtest.Open(t)
	s1, _ := seed(t, db)
	app := newApp()

	req := httptest.NewRequest("GET", "/setups/"+itoa(s1.ID)+"/production/export?status=passed", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "production-")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	machine, err := f.GetCellValue(exportSheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "S-02", machine)

	summary, err := f.GetCellValue(exportSheet, "A4")
	require.NoError(t, err)
	assert.Equal(t, "Showing 1 of 2", summary)

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, headerRow+1)
	assert.Equal(t, "C-1001", rows[headerRow][0])
	assert.Equal(t, "passed", rows[headerRow][len(exportHeader)-1])
}

func itoa(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
