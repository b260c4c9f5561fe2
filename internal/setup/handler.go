package setup

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/nihar004/spring-and-coil-manufacturing/internal/audit"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/auth"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/database"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/filter"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/formstate"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SetupRequest struct {
	WorkCentre         string             `json:"work_centre"`
	MachineNo          string             `json:"machine_no"`
	Date               string             `json:"date"` // "2024-06-15"
	Shift              string             `json:"shift"`
	SetupCardIssueDate string             `json:"setup_card_issue_date"`
	SetupParams        models.SetupParams `json:"setup_params"`
	ApprovedParams     models.SetupParams `json:"approved_params"`
	OperatorName       string             `json:"operator_name"`
	OperatorTime       string             `json:"operator_time"`
	SupervisorName     string             `json:"supervisor_name"`
	SupervisorTime     string             `json:"supervisor_time"`
	Result             models.SetupResult `json:"result"`
}

func (r SetupRequest) apply(s *models.Setup) {
	s.WorkCentre = r.WorkCentre
	s.MachineNo = r.MachineNo
	s.Date = r.Date
	s.Shift = r.Shift
	s.SetupCardIssueDate = r.SetupCardIssueDate
	s.SetupParams = r.SetupParams
	s.ApprovedParams = r.ApprovedParams
	s.OperatorName = r.OperatorName
	s.OperatorTime = r.OperatorTime
	s.SupervisorName = r.SupervisorName
	s.SupervisorTime = r.SupervisorTime
	s.Result = r.Result
}

type FieldEditRequest struct {
	Path  string `json:"path"`
	Value string `json:"value"`
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}
	return uint(id), nil
}

func validResult(r models.SetupResult) bool {
	return r == "" || r == models.SetupResultOK || r == models.SetupResultNotOK
}

// POST /api/setups
// Creates the card with one blank production entry and a blank verification sheet.
func CreateSetupHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SetupRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
			}
		}
		if !validResult(body.Result) {
			return fiber.NewError(fiber.StatusBadRequest, "result must be OK or NOT_OK")
		}

		s := models.Setup{Reference: uuid.NewString()}
		body.apply(&s)
		if userID, _, ok := auth.CurrentUser(c); ok {
			s.CreatedByID = &userID
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Omit(clause.Associations).Create(&s).Error; err != nil {
				return err
			}
			entry := models.NewProductionEntry(s.ID)
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			v := models.NewVerification(s.ID)
			if err := tx.Create(&v).Error; err != nil {
				return err
			}
			s.ProductionEntries = []models.ProductionEntry{entry}
			s.Verification = &v
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Setup could not be created")
		}

		audit.Record(c, audit.LogOptions{
			SetupID:     &s.ID,
			EntityType:  audit.EntitySetup,
			EntityID:    s.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Setup created: machine %s, %s", s.MachineNo, s.Date),
			After:       s,
		})

		return c.Status(fiber.StatusCreated).JSON(s)
	}
}

// GET /api/setups?date_from=2024-06-01&date_to=2024-06-30&machine_no=S-02
// Uses the same date and machine rules as the production filter.
func ListSetupsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		r := filter.DateRange{From: c.Query("date_from"), To: c.Query("date_to")}
		machine := c.Query("machine_no")

		var setups []models.Setup
		if err := database.DB.Order("id ASC").Find(&setups).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Setups could not be listed")
		}

		out := make([]models.Setup, 0, len(setups))
		for _, s := range setups {
			if filter.MatchesDateRange(s.Date, r) && filter.MatchesSubstring(s.MachineNo, machine) {
				out = append(out, s)
			}
		}
		return c.JSON(out)
	}
}

// GET /api/setups/:id
func GetSetupHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		card, err := LoadCard(database.DB, id)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Setup not found")
		}

		return c.JSON(cardSnapshot(card))
	}
}

// PUT /api/setups/:id
func UpdateSetupHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var body SetupRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if !validResult(body.Result) {
			return fiber.NewError(fiber.StatusBadRequest, "result must be OK or NOT_OK")
		}

		var s models.Setup
		if err := database.DB.First(&s, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Setup not found")
		}
		before := s

		body.apply(&s)
		if err := database.DB.Omit(clause.Associations).Save(&s).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Setup could not be updated")
		}

		audit.Record(c, audit.LogOptions{
			SetupID:     &s.ID,
			EntityType:  audit.EntitySetup,
			EntityID:    s.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Setup updated: machine %s, %s", s.MachineNo, s.Date),
			Before:      before,
			After:       s,
		})

		return c.JSON(s)
	}
}

// PATCH /api/setups/:id/fields
// Body: {"path": "production.12.observations.start.length", "value": "42.5"}
func PatchFieldHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var body FieldEditRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if formstate.Section(body.Path) == "filters" {
			return fiber.NewError(fiber.StatusBadRequest, "Filters are query parameters and are not stored")
		}

		var saved savedSection
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			card, err := LoadCard(tx, id)
			if err != nil {
				return err
			}
			next, err := formstate.Apply(card, body.Path, body.Value)
			if err != nil {
				return err
			}
			saved, err = saveSection(tx, card, next, body.Path)
			return err
		})
		switch {
		case err == nil:
		case errors.Is(err, gorm.ErrRecordNotFound):
			return fiber.NewError(fiber.StatusNotFound, "Setup not found")
		case errors.Is(err, formstate.ErrEntryNotFound):
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		case errors.Is(err, formstate.ErrUnknownPath),
			errors.Is(err, formstate.ErrInvalidResult),
			errors.Is(err, filter.ErrInvalidStatus),
			errors.Is(err, filter.ErrUnknownField):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(fiber.StatusInternalServerError, "Field could not be saved")
		}

		audit.Record(c, audit.LogOptions{
			SetupID:     &id,
			EntityType:  saved.EntityType,
			EntityID:    saved.EntityID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("%s = %q", body.Path, body.Value),
			Before:      saved.Before,
			After:       saved.After,
		})

		return c.JSON(saved.After)
	}
}

// DELETE /api/setups/:id
func DeleteSetupHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		card, err := LoadCard(database.DB, id)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Setup not found")
		}
		s := card.Setup

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			for _, child := range []any{&models.ProductionEntry{}, &models.RejectionEntry{}, &models.Verification{}} {
				if err := tx.Where("setup_id = ?", id).Delete(child).Error; err != nil {
					return err
				}
			}
			return tx.Delete(&s).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Setup could not be deleted")
		}

		audit.Record(c, audit.LogOptions{
			SetupID:     &s.ID,
			EntityType:  audit.EntitySetup,
			EntityID:    s.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Setup deleted: machine %s, %s", s.MachineNo, s.Date),
			Before:      cardSnapshot(card),
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
