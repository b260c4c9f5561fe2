package verification

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/nihar004/spring-and-coil-manufacturing/internal/audit"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/database"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type VerificationRequest struct {
	MachineNo   string             `json:"machine_no"`
	PartNo      string             `json:"part_no"`
	FirstOff    []models.OffSample `json:"first_off"`
	LastOff     []models.OffSample `json:"last_off"`
	Pressure    string             `json:"pressure"`
	Temperature string             `json:"temperature"`
	Voltage     string             `json:"voltage"`
	Abnormality string             `json:"abnormality"`
}

func parseSetupID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid setup id")
	}
	return uint(id), nil
}

// rows pads a sample table to the five rows of the paper form.
func rows(in []models.OffSample) ([]models.OffSample, error) {
	if len(in) > models.SampleRows {
		return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("at most %d sample rows", models.SampleRows))
	}
	out := make([]models.OffSample, models.SampleRows)
	copy(out, in)
	return out, nil
}

// load returns the sheet of a setup, or a blank unsaved one.
func load(setupID uint) (models.Verification, error) {
	var s models.Setup
	if err := database.DB.First(&s, setupID).Error; err != nil {
		return models.Verification{}, err
	}

	var v models.Verification
	err := database.DB.Where("setup_id = ?", setupID).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewVerification(setupID), nil
	}
	return v, err
}

// GET /api/setups/:id/verification
func GetVerificationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		setupID, err := parseSetupID(c)
		if err != nil {
			return err
		}

		v, err := load(setupID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Setup not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Verification could not be read")
		}
		return c.JSON(v)
	}
}

// PUT /api/setups/:id/verification
func UpdateVerificationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		setupID, err := parseSetupID(c)
		if err != nil {
			return err
		}

		var body VerificationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		firstOff, err := rows(body.FirstOff)
		if err != nil {
			return err
		}
		lastOff, err := rows(body.LastOff)
		if err != nil {
			return err
		}

		v, err := load(setupID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Setup not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Verification could not be read")
		}
		before := v

		v.MachineNo = body.MachineNo
		v.PartNo = body.PartNo
		v.FirstOff = firstOff
		v.LastOff = lastOff
		v.Pressure = body.Pressure
		v.Temperature = body.Temperature
		v.Voltage = body.Voltage
		v.Abnormality = body.Abnormality

		if err := database.DB.Save(&v).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Verification could not be saved")
		}

		audit.Record(c, audit.LogOptions{
			SetupID:     &setupID,
			EntityType:  audit.EntityVerification,
			EntityID:    v.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Verification updated: machine %s, part %s", v.MachineNo, v.PartNo),
			Before:      before,
			After:       v,
		})

		return c.JSON(v)
	}
}
