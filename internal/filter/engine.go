package filter

import (
	"fmt"

	"github.com/nihar004/spring-and-coil-manufacturing/internal/models"
)

// Result is the filtered subset plus the counts shown above the list.
type Result struct {
	Entries       []*models.ProductionEntry
	Shown         int
	Total         int
	ActiveFilters int
}

func (r Result) Summary() string {
	return fmt.Sprintf("Showing %d of %d", r.Shown, r.Total)
}

// Card pairs a setup with the production entries recorded under it.
type Card struct {
	Setup   models.Setup
	Entries []*models.ProductionEntry
}

// Apply keeps the entries that satisfy every dimension of c, in input order.
//
// Date and machine number live on the setup, not on the entries, so for a
// single setup those two dimensions pass or fail for all entries at once.
func Apply(records []*models.ProductionEntry, setup models.Setup, c Criteria) Result {
	out := make([]*models.ProductionEntry, 0, len(records))
	for _, r := range records {
		if matches(r, &setup, &c) {
			out = append(out, r)
		}
	}
	return Result{
		Entries:       out,
		Shown:         len(out),
		Total:         len(records),
		ActiveFilters: ActiveCount(c),
	}
}

// ApplyCards filters several cards, each against its own setup, and
// concatenates the survivors in card order.
func ApplyCards(cards []Card, c Criteria) Result {
	res := Result{
		Entries:       []*models.ProductionEntry{},
		ActiveFilters: ActiveCount(c),
	}
	for i := range cards {
		part := Apply(cards[i].Entries, cards[i].Setup, c)
		res.Entries = append(res.Entries, part.Entries...)
		res.Total += part.Total
	}
	res.Shown = len(res.Entries)
	return res
}

func matches(r *models.ProductionEntry, setup *models.Setup, c *Criteria) bool {
	if r == nil {
		return false
	}
	return MatchesDateRange(setup.Date, c.DateRange) &&
		MatchesSubstring(r.Customer, c.Customer) &&
		MatchesSubstring(r.PartNo, c.PartNo) &&
		MatchesSubstring(r.CoilNo, c.BatchNo) &&
		MatchesSubstring(setup.MachineNo, c.MachineNo) &&
		MatchesEnum(r.InspectionStatus, c.InspectionStatus)
}
