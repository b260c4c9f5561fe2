package models

import "time"

type SetupResult string

const (
	SetupResultOK    SetupResult = "OK"
	SetupResultNotOK SetupResult = "NOT_OK"
)

// SetupParams: helix / L.O / OD-ID / N.C / ends readings of a setup
type SetupParams struct {
	Helix string `gorm:"size:50" json:"helix"`
	LO    string `gorm:"size:50" json:"lo"`
	ODID  string `gorm:"size:50" json:"od_id"`
	NC    string `gorm:"size:50" json:"nc"`
	Ends  string `gorm:"size:50" json:"ends"`
}

// Setup is the header of a process card. Production entries, the
// verification sheet and rejection entries all hang off one setup and share
// its date and machine number.
type Setup struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Reference string `gorm:"size:36;uniqueIndex" json:"reference"`

	WorkCentre         string `gorm:"size:100" json:"work_centre"`
	MachineNo          string `gorm:"size:50;index" json:"machine_no"`
	Date               string `gorm:"size:20;index" json:"date"` // "2024-06-15", not validated
	Shift              string `gorm:"size:20" json:"shift"`
	SetupCardIssueDate string `gorm:"size:20" json:"setup_card_issue_date"`

	SetupParams    SetupParams `gorm:"embedded;embeddedPrefix:setup_" json:"setup_params"`
	ApprovedParams SetupParams `gorm:"embedded;embeddedPrefix:approved_" json:"approved_params"`

	// Approval
	OperatorName   string      `gorm:"size:100" json:"operator_name"`
	OperatorTime   string      `gorm:"size:20" json:"operator_time"`
	SupervisorName string      `gorm:"size:100" json:"supervisor_name"`
	SupervisorTime string      `gorm:"size:20" json:"supervisor_time"`
	Result         SetupResult `gorm:"size:10" json:"result"`

	CreatedByID *uint     `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	ProductionEntries []ProductionEntry `gorm:"constraint:OnDelete:CASCADE" json:"production_entries,omitempty"`
	RejectionEntries  []RejectionEntry  `gorm:"constraint:OnDelete:CASCADE" json:"rejection_entries,omitempty"`
	Verification      *Verification     `gorm:"constraint:OnDelete:CASCADE" json:"verification,omitempty"`
}
