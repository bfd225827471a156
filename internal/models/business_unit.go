package models

import "time"

// BusinessUnit is one bar. VendorUnitID is the unit's account id on the
// vendor back office (the "emp" parameter); the credentials belong to the
// back-office user the pipeline logs in as.
type BusinessUnit struct {
	ID             uint `gorm:"primaryKey"`
	Name           string
	VendorUnitID   int
	VendorEmail    string
	VendorPassword string
	Active         bool `gorm:"default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
