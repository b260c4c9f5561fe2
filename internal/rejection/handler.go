package rejection

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nihar004/spring-and-coil-manufacturing/internal/audit"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/database"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type RejectionRequest struct {
	CoilNo         string                 `json:"coil_no"`
	PartNo         string                 `json:"part_no"`
	JobSetting     string                 `json:"job_setting"`
	Causes         models.RejectionCauses `json:"causes"`
	TotalRejection string                 `json:"total_rejection"`
	Remarks        string                 `json:"remarks"`
}

func (r RejectionRequest) apply(e *models.RejectionEntry) {
	e.CoilNo = r.CoilNo
	e.PartNo = r.PartNo
	e.JobSetting = r.JobSetting
	e.Causes = r.Causes
	e.TotalRejection = r.TotalRejection
	e.Remarks = r.Remarks
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}
	return uint(id), nil
}

func notFoundOr500(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusNotFound, what+" not found")
	}
	return fiber.NewError(fiber.StatusInternalServerError, what+" could not be read")
}

func listForSetup(setupID uint) ([]models.RejectionEntry, error) {
	var s models.Setup
	if err := database.DB.First(&s, setupID).Error; err != nil {
		return nil, err
	}
	var entries []models.RejectionEntry
	err := database.DB.Where("setup_id = ?", setupID).Order("id ASC").Find(&entries).Error
	return entries, err
}

// Filled keeps the entries that name a coil; blank rows of the form are
// left out of the summary.
func Filled(entries []models.RejectionEntry) []models.RejectionEntry {
	out := make([]models.RejectionEntry, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.CoilNo) != "" {
			out = append(out, e)
		}
	}
	return out
}

// GET /api/setups/:id/rejections
func ListRejectionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		setupID, err := parseID(c)
		if err != nil {
			return err
		}
		entries, err := listForSetup(setupID)
		if err != nil {
			return notFoundOr500(err, "Setup")
		}
		return c.JSON(entries)
	}
}

// GET /api/setups/:id/rejections/summary
func RejectionSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		setupID, err := parseID(c)
		if err != nil {
			return err
		}
		entries, err := listForSetup(setupID)
		if err != nil {
			return notFoundOr500(err, "Setup")
		}
		return c.JSON(Filled(entries))
	}
}

// POST /api/setups/:id/rejections
func CreateRejectionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		setupID, err := parseID(c)
		if err != nil {
			return err
		}

		var body RejectionRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
			}
		}

		var s models.Setup
		if err := database.DB.First(&s, setupID).Error; err != nil {
			return notFoundOr500(err, "Setup")
		}

		entry := models.RejectionEntry{SetupID: setupID}
		body.apply(&entry)
		if err := database.DB.Create(&entry).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rejection entry could not be created")
		}

		audit.Record(c, audit.LogOptions{
			SetupID:     &setupID,
			EntityType:  audit.EntityRejection,
			EntityID:    entry.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Rejection added: coil %s, total %s", entry.CoilNo, entry.TotalRejection),
			After:       entry,
		})

		return c.Status(fiber.StatusCreated).JSON(entry)
	}
}

// PUT /api/rejections/:id
func UpdateRejectionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var body RejectionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var entry models.RejectionEntry
		if err := database.DB.First(&entry, id).Error; err != nil {
			return notFoundOr500(err, "Rejection entry")
		}
		before := entry

		body.apply(&entry)
		if err := database.DB.Save(&entry).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rejection entry could not be updated")
		}

		audit.Record(c, audit.LogOptions{
			SetupID:     &entry.SetupID,
			EntityType:  audit.EntityRejection,
			EntityID:    entry.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Rejection updated: coil %s, total %s", entry.CoilNo, entry.TotalRejection),
			Before:      before,
			After:       entry,
		})

		return c.JSON(entry)
	}
}

// DELETE /api/rejections/:id
func DeleteRejectionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var entry models.RejectionEntry
		if err := database.DB.First(&entry, id).Error; err != nil {
			return notFoundOr500(err, "Rejection entry")
		}
		if err := database.DB.Delete(&entry).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rejection entry could not be deleted")
		}

		audit.Record(c, audit.LogOptions{
			SetupID:     &entry.SetupID,
			EntityType:  audit.EntityRejection,
			EntityID:    entry.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Rejection deleted: coil %s", entry.CoilNo),
			Before:      entry,
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
