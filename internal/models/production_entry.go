package models

import "time"

type InspectionStatus string

const (
	InspectionPending InspectionStatus = "pending"
	InspectionPassed  InspectionStatus = "passed"
	InspectionFailed  InspectionStatus = "failed"
)

func (s InspectionStatus) Valid() bool {
	switch s {
	case InspectionPending, InspectionPassed, InspectionFailed:
		return true
	}
	return false
}

// Observation: Lo (length), OD (diameter), Nc (coil count), ends
type Observation struct {
	Length    string `gorm:"size:50" json:"length"`
	Diameter  string `gorm:"size:50" json:"diameter"`
	CoilCount string `gorm:"size:50" json:"coil_count"`
	Ends      string `gorm:"size:50" json:"ends"`
}

type Observations struct {
	Start  Observation `gorm:"embedded;embeddedPrefix:start_" json:"start"`
	Middle Observation `gorm:"embedded;embeddedPrefix:middle_" json:"middle"`
	End    Observation `gorm:"embedded;embeddedPrefix:end_" json:"end"`
}

// ProductionEntry: one coil produced under a setup
type ProductionEntry struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	SetupID uint `gorm:"index;not null" json:"setup_id"`

	CoilNo     string `gorm:"size:100;index" json:"coil_no"`
	Customer   string `gorm:"size:200" json:"customer"`
	PartNo     string `gorm:"size:100;index" json:"part_no"`
	WireGrade  string `gorm:"size:50" json:"wire_grade"`
	WireDia    string `gorm:"size:50" json:"wire_dia"`
	UTSRa      string `gorm:"size:50" json:"uts_ra"`
	HeatNo     string `gorm:"size:50" json:"heat_no"`
	CoilWeight string `gorm:"size:50" json:"coil_weight"`

	Observations Observations `gorm:"embedded;embeddedPrefix:obs_" json:"observations"`

	Quantity        string `gorm:"size:50" json:"quantity"`
	OperatorSign    string `gorm:"size:100" json:"operator_sign"`
	SupervisorSign  string `gorm:"size:100" json:"supervisor_sign"`
	SectionHeadSign string `gorm:"size:100" json:"section_head_sign"`

	InspectionStatus InspectionStatus `gorm:"size:20;index" json:"inspection_status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProductionEntry returns a blank entry with the default inspection status.
func NewProductionEntry(setupID uint) ProductionEntry {
	return ProductionEntry{
		SetupID:          setupID,
		InspectionStatus: InspectionPending,
	}
}
