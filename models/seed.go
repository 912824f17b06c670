// models/seed.go
package models

import "time"

// SeedRecord marks a catalog seed as applied at a given version.
type SeedRecord struct {
	Name      string    `gorm:"primaryKey;size:64" json:"name"`
	Version   int       `json:"version"`
	AppliedAt time.Time `json:"appliedAt"`
}
