package formstate

import (
	"strconv"
	"strings"

	"github.com/nihar004/spring-and-coil-manufacturing/internal/filter"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/models"
)

func setupFields(s *models.Setup) map[string]*string {
	return map[string]*string{
		"work_centre":           &s.WorkCentre,
		"machine_no":            &s.MachineNo,
		"date":                  &s.Date,
		"shift":                 &s.Shift,
		"setup_card_issue_date": &s.SetupCardIssueDate,
		"operator_name":         &s.OperatorName,
		"operator_time":         &s.OperatorTime,
		"supervisor_name":       &s.SupervisorName,
		"supervisor_time":       &s.SupervisorTime,
	}
}

func paramFields(p *models.SetupParams) map[string]*string {
	return map[string]*string{
		"helix": &p.Helix,
		"lo":    &p.LO,
		"od_id": &p.ODID,
		"nc":    &p.NC,
		"ends":  &p.Ends,
	}
}

func productionFields(e *models.ProductionEntry) map[string]*string {
	return map[string]*string{
		"coil_no":           &e.CoilNo,
		"customer":          &e.Customer,
		"part_no":           &e.PartNo,
		"wire_grade":        &e.WireGrade,
		"wire_dia":          &e.WireDia,
		"uts_ra":            &e.UTSRa,
		"heat_no":           &e.HeatNo,
		"coil_weight":       &e.CoilWeight,
		"quantity":          &e.Quantity,
		"operator_sign":     &e.OperatorSign,
		"supervisor_sign":   &e.SupervisorSign,
		"section_head_sign": &e.SectionHeadSign,
	}
}

func observationFields(o *models.Observation) map[string]*string {
	return map[string]*string{
		"length":     &o.Length,
		"diameter":   &o.Diameter,
		"coil_count": &o.CoilCount,
		"ends":       &o.Ends,
	}
}

func verificationFields(v *models.Verification) map[string]*string {
	return map[string]*string{
		"machine_no":  &v.MachineNo,
		"part_no":     &v.PartNo,
		"pressure":    &v.Pressure,
		"temperature": &v.Temperature,
		"voltage":     &v.Voltage,
		"abnormality": &v.Abnormality,
	}
}

func sampleFields(s *models.OffSample) map[string]*string {
	return map[string]*string{
		"fl":    &s.FL,
		"od_id": &s.ODID,
		"nc":    &s.NC,
		"time":  &s.Time,
	}
}

func rejectionFields(r *models.RejectionEntry) map[string]*string {
	return map[string]*string{
		"coil_no":         &r.CoilNo,
		"part_no":         &r.PartNo,
		"job_setting":     &r.JobSetting,
		"total_rejection": &r.TotalRejection,
		"remarks":         &r.Remarks,
	}
}

func causeFields(c *models.RejectionCauses) map[string]*string {
	return map[string]*string{
		"id_od":        &c.IDOD,
		"nc":           &c.NC,
		"wire_bend":    &c.WireBend,
		"power_cut":    &c.PowerCut,
		"wire_cut_fit": &c.WireCutFit,
	}
}

func assign(fields map[string]*string, key, value string) error {
	p, ok := fields[key]
	if !ok {
		return ErrUnknownPath
	}
	*p = value
	return nil
}

// s is a copy, so writing through its fields is safe.
func setSetup(s models.Setup, parts []string, value string) (models.Setup, error) {
	var err error
	switch {
	case len(parts) == 1 && parts[0] == "result":
		r := models.SetupResult(value)
		if r != "" && r != models.SetupResultOK && r != models.SetupResultNotOK {
			return s, ErrInvalidResult
		}
		s.Result = r
	case len(parts) == 1:
		err = assign(setupFields(&s), parts[0], value)
	case len(parts) == 2 && parts[0] == "setup_params":
		err = assign(paramFields(&s.SetupParams), parts[1], value)
	case len(parts) == 2 && parts[0] == "approved_params":
		err = assign(paramFields(&s.ApprovedParams), parts[1], value)
	default:
		err = ErrUnknownPath
	}
	return s, err
}

func setProduction(entries []models.ProductionEntry, parts []string, value string) ([]models.ProductionEntry, error) {
	idx, err := indexByID(len(entries), parts[0], func(i int) uint { return entries[i].ID })
	if err != nil {
		return entries, err
	}
	out := cloneSlice(entries)
	e := &out[idx]

	rest := parts[1:]
	switch {
	case len(rest) == 1 && rest[0] == "inspection_status":
		status := models.InspectionStatus(strings.ToLower(strings.TrimSpace(value)))
		if !status.Valid() {
			return entries, filter.ErrInvalidStatus
		}
		e.InspectionStatus = status
	case len(rest) == 1:
		err = assign(productionFields(e), rest[0], value)
	case len(rest) == 3 && rest[0] == "observations":
		var o *models.Observation
		switch rest[1] {
		case "start":
			o = &e.Observations.Start
		case "middle":
			o = &e.Observations.Middle
		case "end":
			o = &e.Observations.End
		default:
			return entries, ErrUnknownPath
		}
		err = assign(observationFields(o), rest[2], value)
	default:
		err = ErrUnknownPath
	}
	if err != nil {
		return entries, err
	}
	return out, nil
}

func setVerification(v models.Verification, parts []string, value string) (models.Verification, error) {
	if len(parts) == 1 {
		return v, assign(verificationFields(&v), parts[0], value)
	}
	if len(parts) != 3 {
		return v, ErrUnknownPath
	}

	var rows *[]models.OffSample
	switch parts[0] {
	case "first_off":
		rows = &v.FirstOff
	case "last_off":
		rows = &v.LastOff
	default:
		return v, ErrUnknownPath
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil || n < 0 || n >= models.SampleRows {
		return v, ErrUnknownPath
	}

	// grow to the full table, copying so the caller's rows stay untouched
	grown := make([]models.OffSample, models.SampleRows)
	copy(grown, *rows)
	*rows = grown
	return v, assign(sampleFields(&grown[n]), parts[2], value)
}

func setRejection(entries []models.RejectionEntry, parts []string, value string) ([]models.RejectionEntry, error) {
	idx, err := indexByID(len(entries), parts[0], func(i int) uint { return entries[i].ID })
	if err != nil {
		return entries, err
	}
	out := cloneSlice(entries)
	r := &out[idx]

	rest := parts[1:]
	switch {
	case len(rest) == 1:
		err = assign(rejectionFields(r), rest[0], value)
	case len(rest) == 2 && rest[0] == "causes":
		err = assign(causeFields(&r.Causes), rest[1], value)
	default:
		err = ErrUnknownPath
	}
	if err != nil {
		return entries, err
	}
	return out, nil
}

func setFilter(c filter.Criteria, parts []string, value string) (filter.Criteria, error) {
	if len(parts) == 2 && parts[0] == "date_range" {
		switch parts[1] {
		case "from":
			return c.Set(filter.FieldDateFrom, value)
		case "to":
			return c.Set(filter.FieldDateTo, value)
		}
		return c, ErrUnknownPath
	}
	if len(parts) != 1 {
		return c, ErrUnknownPath
	}
	if parts[0] == "inspection_status" {
		return c.Set(filter.FieldInspectionStatus, value)
	}
	return c.Set(parts[0], value)
}

func indexByID(n int, raw string, idAt func(int) uint) (int, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, ErrUnknownPath
	}
	for i := 0; i < n; i++ {
		if idAt(i) == uint(id) {
			return i, nil
		}
	}
	return 0, ErrEntryNotFound
}
