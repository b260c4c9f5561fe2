package production

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nihar004/spring-and-coil-manufacturing/internal/audit"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/database"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/filter"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// clock for date presets
var now = time.Now

type ProductionRequest struct {
	CoilNo           string              `json:"coil_no"`
	Customer         string              `json:"customer"`
	PartNo           string              `json:"part_no"`
	WireGrade        string              `json:"wire_grade"`
	WireDia          string              `json:"wire_dia"`
	UTSRa            string              `json:"uts_ra"`
	HeatNo           string              `json:"heat_no"`
	CoilWeight       string              `json:"coil_weight"`
	Observations     models.Observations `json:"observations"`
	Quantity         string              `json:"quantity"`
	OperatorSign     string              `json:"operator_sign"`
	SupervisorSign   string              `json:"supervisor_sign"`
	SectionHeadSign  string              `json:"section_head_sign"`
	InspectionStatus string              `json:"inspection_status"`
}

func (r ProductionRequest) apply(e *models.ProductionEntry) error {
	status := models.InspectionStatus(strings.ToLower(strings.TrimSpace(r.InspectionStatus)))
	if status == "" {
		status = models.InspectionPending
	}
	if !status.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "inspection_status must be passed, failed or pending")
	}

	e.CoilNo = r.CoilNo
	e.Customer = r.Customer
	e.PartNo = r.PartNo
	e.WireGrade = r.WireGrade
	e.WireDia = r.WireDia
	e.UTSRa = r.UTSRa
	e.HeatNo = r.HeatNo
	e.CoilWeight = r.CoilWeight
	e.Observations = r.Observations
	e.Quantity = r.Quantity
	e.OperatorSign = r.OperatorSign
	e.SupervisorSign = r.SupervisorSign
	e.SectionHeadSign = r.SectionHeadSign
	e.InspectionStatus = status
	return nil
}

// FilteredResponse is a filtered list with the counts of the list header.
type FilteredResponse struct {
	Entries       []*models.ProductionEntry `json:"entries"`
	Shown         int                       `json:"shown"`
	Total         int                       `json:"total"`
	ActiveFilters int                       `json:"active_filters"`
	Summary       string                    `json:"summary"`
	Criteria      filter.Criteria           `json:"criteria"`
}

func newFilteredResponse(res filter.Result, c filter.Criteria) FilteredResponse {
	return FilteredResponse{
		Entries:       res.Entries,
		Shown:         res.Shown,
		Total:         res.Total,
		ActiveFilters: res.ActiveFilters,
		Summary:       res.Summary(),
		Criteria:      c,
	}
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}
	return uint(id), nil
}

func criteriaFromQuery(c *fiber.Ctx) (filter.Criteria, error) {
	crit, err := filter.FromQuery(func(key string) string { return c.Query(key) }, now())
	if err != nil {
		return filter.Criteria{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return crit, nil
}

// loadSetupEntries reads one setup and its production entries in id order.
func loadSetupEntries(id uint) (models.Setup, []*models.ProductionEntry, error) {
	var s models.Setup
	if err := database.DB.First(&s, id).Error; err != nil {
		return s, nil, err
	}
	var entries []*models.ProductionEntry
	if err := database.DB.Where("setup_id = ?", id).Order("id ASC").Find(&entries).Error; err != nil {
		return s, nil, err
	}
	return s, entries, nil
}

func lookupError(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusNotFound, what+" not found")
	}
	return fiber.NewError(fiber.StatusInternalServerError, what+" could not be read")
}

// GET /api/setups/:id/production?date_from=&date_to=&customer=&part_no=&batch_no=&status=&machine_no=&preset=
func ListSetupProductionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		crit, err := criteriaFromQuery(c)
		if err != nil {
			return err
		}

		s, entries, err := loadSetupEntries(id)
		if err != nil {
			return lookupError(err, "Setup")
		}

		return c.JSON(newFilteredResponse(filter.Apply(entries, s, crit), crit))
	}
}

// GET /api/production?...same filters...
// Every entry is matched against the setup it was recorded under.
func ListProductionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		crit, err := criteriaFromQuery(c)
		if err != nil {
			return err
		}

		var setups []models.Setup
		err = database.DB.
			Preload("ProductionEntries", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
			Order("id ASC").
			Find(&setups).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Production entries could not be listed")
		}

		cards := make([]filter.Card, 0, len(setups))
		for i := range setups {
			entries := make([]*models.ProductionEntry, len(setups[i].ProductionEntries))
			for j := range setups[i].ProductionEntries {
				entries[j] = &setups[i].ProductionEntries[j]
			}
			cards = append(cards, filter.Card{Setup: setups[i], Entries: entries})
		}

		return c.JSON(newFilteredResponse(filter.ApplyCards(cards, crit), crit))
	}
}

// POST /api/setups/:id/production
// The body is optional; without one a blank pending entry is added.
func CreateProductionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		setupID, err := parseID(c)
		if err != nil {
			return err
		}

		var body ProductionRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
			}
		}

		var s models.Setup
		if err := database.DB.First(&s, setupID).Error; err != nil {
			return lookupError(err, "Setup")
		}

		entry := models.NewProductionEntry(setupID)
		if err := body.apply(&entry); err != nil {
			return err
		}
		if err := database.DB.Create(&entry).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Production entry could not be created")
		}

		audit.Record(c, audit.LogOptions{
			SetupID:     &setupID,
			EntityType:  audit.EntityProduction,
			EntityID:    entry.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Production entry added: coil %s", entry.CoilNo),
			After:       entry,
		})

		return c.Status(fiber.StatusCreated).JSON(entry)
	}
}

// PUT /api/production/:id
func UpdateProductionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var body ProductionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var entry models.ProductionEntry
		if err := database.DB.First(&entry, id).Error; err != nil {
			return lookupError(err, "Production entry")
		}
		before := entry

		if err := body.apply(&entry); err != nil {
			return err
		}
		if err := database.DB.Save(&entry).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Production entry could not be updated")
		}

		audit.Record(c, audit.LogOptions{
			SetupID:     &entry.SetupID,
			EntityType:  audit.EntityProduction,
			EntityID:    entry.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Production entry updated: coil %s, %s", entry.CoilNo, entry.InspectionStatus),
			Before:      before,
			After:       entry,
		})

		return c.JSON(entry)
	}
}

// DELETE /api/production/:id
// A card always keeps at least one production row.
func DeleteProductionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var entry models.ProductionEntry
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&entry, id).Error; err != nil {
				return err
			}
			var count int64
			if err := tx.Model(&models.ProductionEntry{}).Where("setup_id = ?", entry.SetupID).Count(&count).Error; err != nil {
				return err
			}
			if count <= 1 {
				return errLastEntry
			}
			return tx.Delete(&entry).Error
		})
		switch {
		case err == nil:
		case errors.Is(err, errLastEntry):
			return fiber.NewError(fiber.StatusConflict, "The last production entry of a setup cannot be deleted")
		default:
			return lookupError(err, "Production entry")
		}

		audit.Record(c, audit.LogOptions{
			SetupID:     &entry.SetupID,
			EntityType:  audit.EntityProduction,
			EntityID:    entry.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Production entry deleted: coil %s", entry.CoilNo),
			Before:      entry,
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}

var errLastEntry = errors.New("last production entry")
