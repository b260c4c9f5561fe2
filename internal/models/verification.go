package models

import "time"

// OffSample is one row of the first-off or last-off table.
type OffSample struct {
	FL   string `json:"fl"`
	ODID string `json:"od_id"`
	NC   string `json:"nc"`
	Time string `json:"time"`
}

// SampleRows: the paper form has five rows per table
const SampleRows = 5

// Verification: first-off / last-off sheet of a setup
type Verification struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	SetupID uint `gorm:"uniqueIndex;not null" json:"setup_id"`

	MachineNo string `gorm:"size:50" json:"machine_no"`
	PartNo    string `gorm:"size:100" json:"part_no"`

	FirstOff []OffSample `gorm:"type:text;serializer:json" json:"first_off"`
	LastOff  []OffSample `gorm:"type:text;serializer:json" json:"last_off"`

	// Machine readings: press 120-160 kg, temp below 60°C, volt 380-440 V
	Pressure    string `gorm:"size:20" json:"pressure"`
	Temperature string `gorm:"size:20" json:"temperature"`
	Voltage     string `gorm:"size:20" json:"voltage"`

	// Machine jam, wire break, power failure, parameter drift
	Abnormality string `gorm:"type:text" json:"abnormality"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewVerification returns a sheet with empty sample rows.
func NewVerification(setupID uint) Verification {
	return Verification{
		SetupID:  setupID,
		FirstOff: make([]OffSample, SampleRows),
		LastOff:  make([]OffSample, SampleRows),
	}
}
