// Package filter narrows the production entries of process cards by the
// criteria of the filter bar: a date range, substrings on customer, part,
// batch and machine, and an exact inspection status.
package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nihar004/spring-and-coil-manufacturing/internal/models"
)

var (
	ErrUnknownField  = errors.New("unknown filter field")
	ErrInvalidStatus = errors.New("invalid inspection status")
)

// Field names, shared by query parameters and form state paths.
const (
	FieldDateFrom         = "date_from"
	FieldDateTo           = "date_to"
	FieldCustomer         = "customer"
	FieldPartNo           = "part_no"
	FieldBatchNo          = "batch_no"
	FieldInspectionStatus = "status"
	FieldMachineNo        = "machine_no"
	FieldPreset           = "preset"
)

// DateRange bounds are inclusive; a blank bound is unbounded.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (r DateRange) IsBlank() bool {
	return isBlank(r.From) && isBlank(r.To)
}

// Criteria is a value: every update returns a copy.
type Criteria struct {
	DateRange        DateRange               `json:"date_range"`
	Customer         string                  `json:"customer"`
	PartNo           string                  `json:"part_no"`
	BatchNo          string                  `json:"batch_no"`
	InspectionStatus models.InspectionStatus `json:"inspection_status"`
	MachineNo        string                  `json:"machine_no"`
}

// Set returns c with one field replaced.
func (c Criteria) Set(field, value string) (Criteria, error) {
	switch field {
	case FieldDateFrom:
		c.DateRange.From = value
	case FieldDateTo:
		c.DateRange.To = value
	case FieldCustomer:
		c.Customer = value
	case FieldPartNo:
		c.PartNo = value
	case FieldBatchNo:
		c.BatchNo = value
	case FieldMachineNo:
		c.MachineNo = value
	case FieldInspectionStatus:
		status := models.InspectionStatus(strings.ToLower(strings.TrimSpace(value)))
		if status != "" && !status.Valid() {
			return c, fmt.Errorf("%w: %q", ErrInvalidStatus, value)
		}
		c.InspectionStatus = status
	default:
		return c, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return c, nil
}

// IsEmpty reports whether no dimension is active.
func (c Criteria) IsEmpty() bool {
	return ActiveCount(c) == 0
}

var queryFields = []string{
	FieldDateFrom,
	FieldDateTo,
	FieldCustomer,
	FieldPartNo,
	FieldBatchNo,
	FieldInspectionStatus,
	FieldMachineNo,
}

// FromQuery builds criteria from request parameters. A preset, when given,
// replaces date_from and date_to.
func FromQuery(get func(key string) string, now time.Time) (Criteria, error) {
	var c Criteria
	var err error
	for _, f := range queryFields {
		if v := get(f); v != "" {
			if c, err = c.Set(f, v); err != nil {
				return Criteria{}, err
			}
		}
	}

	if name := get(FieldPreset); name != "" {
		r, err := Preset(name, now)
		if err != nil {
			return Criteria{}, err
		}
		c.DateRange = r
	}
	return c, nil
}

// ActiveCount is the number of top-level dimensions with a value. The date
// range is one dimension, so it adds at most one even with both bounds set.
func ActiveCount(c Criteria) int {
	n := 0
	if !c.DateRange.IsBlank() {
		n++
	}
	for _, v := range []string{c.Customer, c.PartNo, c.BatchNo, string(c.InspectionStatus), c.MachineNo} {
		if !isBlank(v) {
			n++
		}
	}
	return n
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
