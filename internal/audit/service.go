package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nihar004/spring-and-coil-manufacturing/internal/auth"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/database"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	EntitySetup        = "setup"
	EntityProduction   = "production_entry"
	EntityVerification = "verification"
	EntityRejection    = "rejection_entry"
)

var (
	ErrAlreadyUndone = errors.New("already undone")
	ErrNotUndoable   = errors.New("this action cannot be undone")
	ErrLastEntry     = errors.New("the last production entry of a setup cannot be removed")
)

type LogOptions struct {
	SetupID     *uint
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func WriteLog(opts LogOptions) error {
	// jsonb wants a JSON null, not an empty string
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	entry := models.AuditLog{
		SetupID:     opts.SetupID,
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := database.DB.Create(&entry).Error; err != nil {
		return fmt.Errorf("writing audit log: %w", err)
	}
	return nil
}

// Record writes a log for the signed-in user of c. Requests without a user
// are not logged; a failed write is logged and otherwise ignored.
func Record(c *fiber.Ctx, opts LogOptions) {
	userID, userName, ok := auth.CurrentUser(c)
	if !ok {
		return
	}
	opts.UserID = userID
	opts.UserName = userName
	if err := WriteLog(opts); err != nil {
		zap.L().Warn("audit log not written",
			zap.String("path", c.Path()),
			zap.String("entity_type", opts.EntityType),
			zap.Uint("entity_id", opts.EntityID),
			zap.Error(err),
		)
	}
}

// UndoLog reverts the change recorded by a log entry and records the undo.
func UndoLog(logID uint, userID uint, userName string) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		var entry models.AuditLog
		if err := tx.First(&entry, "id = ?", logID).Error; err != nil {
			return fmt.Errorf("log not found: %w", err)
		}
		if entry.IsUndone {
			return ErrAlreadyUndone
		}

		var err error
		switch entry.Action {
		case models.AuditActionCreate:
			err = deleteEntity(tx, entry.EntityType, entry.EntityID)
		case models.AuditActionUpdate, models.AuditActionDelete:
			err = restoreEntity(tx, entry.EntityType, entry.BeforeData)
		default:
			err = ErrNotUndoable
		}
		if err != nil {
			return err
		}

		now := time.Now()
		entry.IsUndone = true
		entry.UndoneBy = &userID
		entry.UndoneAt = &now
		if err := tx.Save(&entry).Error; err != nil {
			return fmt.Errorf("updating log: %w", err)
		}

		undo := models.AuditLog{
			SetupID:     entry.SetupID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  entry.EntityType,
			EntityID:    entry.EntityID,
			Action:      models.AuditActionUndo,
			Description: fmt.Sprintf("Undone: %s", entry.Description),
			BeforeData:  entry.AfterData,
			AfterData:   entry.BeforeData,
		}
		if err := tx.Create(&undo).Error; err != nil {
			return fmt.Errorf("writing undo log: %w", err)
		}
		return nil
	})
}

func deleteEntity(tx *gorm.DB, entityType string, id uint) error {
	switch entityType {
	case EntityProduction:
		var entry models.ProductionEntry
		if err := tx.First(&entry, id).Error; err != nil {
			return fmt.Errorf("production entry %d: %w", id, err)
		}
		var count int64
		if err := tx.Model(&models.ProductionEntry{}).Where("setup_id = ?", entry.SetupID).Count(&count).Error; err != nil {
			return err
		}
		if count <= 1 {
			return ErrLastEntry
		}
		return tx.Delete(&entry).Error
	case EntityRejection:
		return tx.Delete(&models.RejectionEntry{}, "id = ?", id).Error
	}
	return fmt.Errorf("%w: %s", ErrNotUndoable, entityType)
}

// restoreEntity writes a snapshot back, recreating the row when it was
// deleted. The original id is kept.
func restoreEntity(tx *gorm.DB, entityType, data string) error {
	if data == "" || data == "null" {
		return ErrNotUndoable
	}

	var target any
	switch entityType {
	case EntitySetup:
		target = &models.Setup{}
	case EntityProduction:
		target = &models.ProductionEntry{}
	case EntityVerification:
		target = &models.Verification{}
	case EntityRejection:
		target = &models.RejectionEntry{}
	default:
		return fmt.Errorf("%w: %s", ErrNotUndoable, entityType)
	}

	if err := json.Unmarshal([]byte(data), target); err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}
	if s, ok := target.(*models.Setup); ok {
		return restoreSetup(tx, s)
	}
	return tx.Omit(clause.Associations).Save(target).Error
}

// restoreSetup writes back a setup and whatever sections its snapshot
// carries. Delete snapshots hold the whole card; update snapshots hold the
// setup alone.
func restoreSetup(tx *gorm.DB, s *models.Setup) error {
	production, rejections, verification := s.ProductionEntries, s.RejectionEntries, s.Verification
	s.ProductionEntries = nil
	s.RejectionEntries = nil
	s.Verification = nil

	if err := tx.Omit(clause.Associations).Save(s).Error; err != nil {
		return fmt.Errorf("restoring setup: %w", err)
	}
	for i := range production {
		production[i].SetupID = s.ID
		if err := tx.Save(&production[i]).Error; err != nil {
			return fmt.Errorf("restoring production entry: %w", err)
		}
	}
	for i := range rejections {
		rejections[i].SetupID = s.ID
		if err := tx.Save(&rejections[i]).Error; err != nil {
			return fmt.Errorf("restoring rejection entry: %w", err)
		}
	}
	if verification != nil {
		verification.SetupID = s.ID
		if err := tx.Save(verification).Error; err != nil {
			return fmt.Errorf("restoring verification: %w", err)
		}
	}
	return nil
}
