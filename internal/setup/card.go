package setup

import (
	"errors"
	"fmt"

	"github.com/nihar004/spring-and-coil-manufacturing/internal/audit"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/formstate"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoadCard reads a setup with all of its sections, entries in id order.
// A missing verification sheet comes back blank.
func LoadCard(db *gorm.DB, id uint) (formstate.Card, error) {
	var s models.Setup
	err := db.
		Preload("ProductionEntries", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("RejectionEntries", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Verification").
		First(&s, id).Error
	if err != nil {
		return formstate.Card{}, err
	}

	card := formstate.Card{
		Production: s.ProductionEntries,
		Rejections: s.RejectionEntries,
	}
	if s.Verification != nil {
		card.Verification = *s.Verification
	} else {
		card.Verification = models.NewVerification(s.ID)
	}

	s.ProductionEntries = nil
	s.RejectionEntries = nil
	s.Verification = nil
	card.Setup = s
	return card, nil
}

// cardSnapshot folds the sections back into the setup, so one log entry
// can bring the whole card back.
func cardSnapshot(card formstate.Card) models.Setup {
	s := card.Setup
	s.ProductionEntries = card.Production
	s.RejectionEntries = card.Rejections
	v := card.Verification
	s.Verification = &v
	return s
}

// savedSection is what a path edit changed, for the response and the audit log.
type savedSection struct {
	EntityType string
	EntityID   uint
	Before     any
	After      any
}

// saveSection persists the part of next that a path edit touched.
func saveSection(tx *gorm.DB, prev, next formstate.Card, path string) (savedSection, error) {
	switch formstate.Section(path) {
	case "setup":
		s := next.Setup
		if err := tx.Omit(clause.Associations).Save(&s).Error; err != nil {
			return savedSection{}, fmt.Errorf("saving setup: %w", err)
		}
		return savedSection{audit.EntitySetup, s.ID, prev.Setup, s}, nil

	case "verification":
		v := next.Verification
		if err := tx.Save(&v).Error; err != nil {
			return savedSection{}, fmt.Errorf("saving verification: %w", err)
		}
		return savedSection{audit.EntityVerification, v.ID, prev.Verification, v}, nil

	case "production":
		id, _ := formstate.EntryID(path)
		for _, e := range next.Production {
			if e.ID != id {
				continue
			}
			if err := tx.Save(&e).Error; err != nil {
				return savedSection{}, fmt.Errorf("saving production entry: %w", err)
			}
			return savedSection{audit.EntityProduction, e.ID, findProduction(prev, id), e}, nil
		}

	case "rejection":
		id, _ := formstate.EntryID(path)
		for _, r := range next.Rejections {
			if r.ID != id {
				continue
			}
			if err := tx.Save(&r).Error; err != nil {
				return savedSection{}, fmt.Errorf("saving rejection entry: %w", err)
			}
			return savedSection{audit.EntityRejection, r.ID, findRejection(prev, id), r}, nil
		}
	}
	return savedSection{}, errors.New("nothing to save for " + path)
}

func findProduction(c formstate.Card, id uint) any {
	for _, e := range c.Production {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func findRejection(c formstate.Card, id uint) any {
	for _, r := range c.Rejections {
		if r.ID == id {
			return r
		}
	}
	return nil
}
