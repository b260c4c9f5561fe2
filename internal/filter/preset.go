package filter

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the ISO-8601 calendar date used by setups and filters.
const DateLayout = "2006-01-02"

const (
	PresetToday     = "today"
	PresetLast7Days = "last_7_days"
	PresetThisMonth = "this_month"
)

var ErrUnknownPreset = errors.New("unknown date preset")

// Preset returns the quick date range of the filter bar, relative to now.
// Dates are UTC calendar dates.
func Preset(name string, now time.Time) (DateRange, error) {
	now = now.UTC()
	today := now.Format(DateLayout)
	switch name {
	case PresetToday:
		return DateRange{From: today, To: today}, nil
	case PresetLast7Days:
		return DateRange{From: now.AddDate(0, 0, -7).Format(DateLayout), To: today}, nil
	case PresetThisMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return DateRange{From: first.Format(DateLayout), To: today}, nil
	}
	return DateRange{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}
