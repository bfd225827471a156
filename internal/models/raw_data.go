package models

import (
	"encoding/json"
	"time"
)

// RawData is one staged vendor payload. The triple (business unit, report
// type, date) is unique; re-collection overwrites the payload and resets
// Processed. The downstream processor owns Processed after creation.
type RawData struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	BusinessUnitID int             `gorm:"uniqueIndex:idx_unit_type_date" json:"business_unit_id"`
	ReportType     string          `gorm:"uniqueIndex:idx_unit_type_date" json:"report_type"`
	ReportDate     string          `gorm:"uniqueIndex:idx_unit_type_date" json:"report_date"` // YYYY-MM-DD
	Payload        json.RawMessage `gorm:"type:jsonb" json:"-"`
	RecordCount    int             `json:"record_count"`
	Processed      bool            `json:"processed"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
