package production

import (
	"fmt"

	"github.com/nihar004/spring-and-coil-manufacturing/internal/filter"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Production"

var exportHeader = []string{
	"Coil No", "Customer", "Part No", "Wire Grade", "Wire Dia", "UTS / Ra%", "Heat No", "Coil Wt",
	"Start Lo", "Start OD", "Start Nc", "Start Ends",
	"Middle Lo", "Middle OD", "Middle Nc", "Middle Ends",
	"End Lo", "End OD", "End Nc", "End Ends",
	"Qty", "Operator", "Supervisor", "Section Head", "Status",
}

// headerRow is the row of column titles; the rows above describe the setup.
const headerRow = 6

// BuildWorkbook writes the setup details and the filtered entries to a new
// workbook.
func BuildWorkbook(s models.Setup, res filter.Result) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		f.Close()
		return nil, err
	}

	info := [][]any{
		{"Machine No", s.MachineNo, "Work Centre", s.WorkCentre},
		{"Date", s.Date, "Shift", s.Shift},
		{"Setup Result", string(s.Result), "Reference", s.Reference},
		{res.Summary(), "", "Active filters", res.ActiveFilters},
	}
	for i, row := range info {
		if err := setRow(f, i+1, row); err != nil {
			f.Close()
			return nil, err
		}
	}

	header := make([]any, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := setRow(f, headerRow, header); err != nil {
		f.Close()
		return nil, err
	}

	for i, e := range res.Entries {
		o := e.Observations
		row := []any{
			e.CoilNo, e.Customer, e.PartNo, e.WireGrade, e.WireDia, e.UTSRa, e.HeatNo, e.CoilWeight,
			o.Start.Length, o.Start.Diameter, o.Start.CoilCount, o.Start.Ends,
			o.Middle.Length, o.Middle.Diameter, o.Middle.CoilCount, o.Middle.Ends,
			o.End.Length, o.End.Diameter, o.End.CoilCount, o.End.Ends,
			e.Quantity, e.OperatorSign, e.SupervisorSign, e.SectionHeadSign, string(e.InspectionStatus),
		}
		if err := setRow(f, headerRow+1+i, row); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(exportSheet, cell, &values)
}

// GET /api/setups/:id/production/export?...filters...
func ExportProductionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		crit, err := criteriaFromQuery(c)
		if err != nil {
			return err
		}

		s, entries, err := loadSetupEntries(id)
		if err != nil {
			return lookupError(err, "Setup")
		}

		f, err := BuildWorkbook(s, filter.Apply(entries, s, crit))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Workbook could not be built")
		}
		defer f.Close()

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Workbook could not be written")
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="production-%d.xlsx"`, s.ID))
		return c.Send(buf.Bytes())
	}
}
