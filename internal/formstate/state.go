// Package formstate holds a process card as one value and updates it through
// pure functions: each update takes the previous card and returns a new one.
package formstate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nihar004/spring-and-coil-manufacturing/internal/filter"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/models"
)

var (
	ErrUnknownPath   = errors.New("unknown field path")
	ErrEntryNotFound = errors.New("entry not found")
	ErrInvalidResult = errors.New("result must be OK or NOT_OK")
)

// Card is the whole form: setup, production, verification, rejections and
// the active filters of the production list.
type Card struct {
	Setup        models.Setup
	Production   []models.ProductionEntry
	Verification models.Verification
	Rejections   []models.RejectionEntry
	Filters      filter.Criteria
}

// Filtered runs the filter engine over the card's production entries.
func (c Card) Filtered() filter.Result {
	entries := make([]*models.ProductionEntry, len(c.Production))
	for i := range c.Production {
		entries[i] = &c.Production[i]
	}
	return filter.Apply(entries, c.Setup, c.Filters)
}

// Apply sets the field named by a dotted path, e.g.
//
//	setup.machine_no
//	setup.approved_params.helix
//	production.12.observations.start.length
//	verification.first_off.0.od_id
//	rejection.4.causes.wire_bend
//	filters.date_range.from
func Apply(card Card, path, value string) (Card, error) {
	parts := strings.Split(path, ".")
	if len(parts) < 2 {
		return card, fmt.Errorf("%w: %q", ErrUnknownPath, path)
	}

	prev := card
	var err error
	switch parts[0] {
	case "setup":
		card.Setup, err = setSetup(card.Setup, parts[1:], value)
	case "production":
		card.Production, err = setProduction(card.Production, parts[1:], value)
	case "verification":
		card.Verification, err = setVerification(card.Verification, parts[1:], value)
	case "rejection":
		card.Rejections, err = setRejection(card.Rejections, parts[1:], value)
	case "filters":
		card.Filters, err = setFilter(card.Filters, parts[1:], value)
	default:
		err = ErrUnknownPath
	}
	if err != nil {
		return prev, fmt.Errorf("%s: %w", path, err)
	}
	return card, nil
}

// Section returns the first segment of a path ("setup", "production", ...).
func Section(path string) string {
	section, _, _ := strings.Cut(path, ".")
	return section
}

// EntryID returns the id segment of a production or rejection path.
func EntryID(path string) (uint, bool) {
	parts := strings.Split(path, ".")
	if len(parts) < 3 || (parts[0] != "production" && parts[0] != "rejection") {
		return 0, false
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func AddProductionEntry(card Card, id uint) Card {
	entry := models.NewProductionEntry(card.Setup.ID)
	entry.ID = id
	card.Production = append(cloneSlice(card.Production), entry)
	return card
}

func RemoveProductionEntry(card Card, id uint) Card {
	out := make([]models.ProductionEntry, 0, len(card.Production))
	for _, e := range card.Production {
		if e.ID != id {
			out = append(out, e)
		}
	}
	card.Production = out
	return card
}

func AddRejectionEntry(card Card, id uint) Card {
	card.Rejections = append(cloneSlice(card.Rejections), models.RejectionEntry{ID: id, SetupID: card.Setup.ID})
	return card
}

func RemoveRejectionEntry(card Card, id uint) Card {
	out := make([]models.RejectionEntry, 0, len(card.Rejections))
	for _, e := range card.Rejections {
		if e.ID != id {
			out = append(out, e)
		}
	}
	card.Rejections = out
	return card
}

func ResetFilters(card Card) Card {
	card.Filters = filter.Criteria{}
	return card
}

func cloneSlice[T any](s []T) []T {
	out := make([]T, len(s), len(s)+1)
	copy(out, s)
	return out
}
