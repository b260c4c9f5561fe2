package models

import "time"

type RejectionCauses struct {
	IDOD       string `gorm:"size:50" json:"id_od"`
	NC         string `gorm:"size:50" json:"nc"`
	WireBend   string `gorm:"size:50" json:"wire_bend"`
	PowerCut   string `gorm:"size:50" json:"power_cut"`
	WireCutFit string `gorm:"size:50" json:"wire_cut_fit"`
}

// RejectionEntry: rejected quantity of a coil, split by cause
type RejectionEntry struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	SetupID uint `gorm:"index;not null" json:"setup_id"`

	CoilNo     string          `gorm:"size:100" json:"coil_no"`
	PartNo     string          `gorm:"size:100" json:"part_no"`
	JobSetting string          `gorm:"size:100" json:"job_setting"`
	Causes     RejectionCauses `gorm:"embedded;embeddedPrefix:cause_" json:"causes"`

	TotalRejection string `gorm:"size:50" json:"total_rejection"` // as entered, never summed
	Remarks        string `gorm:"size:500" json:"remarks"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
