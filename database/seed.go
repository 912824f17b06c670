// database/seed.go - one-time catalog seeding
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ingresosgo/achievements"
	"ingresosgo/models"
	"ingresosgo/tournament"
)

const (
	catalogSeedName = "catalog"
	// CatalogSeedVersion is bumped whenever new system badges, challenges or
	// tournaments are added.
	CatalogSeedVersion = 1
)

// Seed inserts the system badges, challenges and tournaments that are missing.
// It returns false when the current version was already applied.
func Seed(conn *gorm.DB, now time.Time) (bool, error) {
	applied := false
	err := conn.Transaction(func(tx *gorm.DB) error {
		var rec models.SeedRecord
		res := tx.Where("name = ?", catalogSeedName).Limit(1).Find(&rec)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 && rec.Version >= CatalogSeedVersion {
			return nil
		}

		badges := achievements.SystemBadges()
		for i := range badges {
			badges[i].CreatedAt = now
		}
		if err := insertMissing(tx, &badges); err != nil {
			return fmt.Errorf("seed badges: %w", err)
		}
		challenges := achievements.SystemChallenges(now)
		if err := insertMissing(tx, &challenges); err != nil {
			return fmt.Errorf("seed challenges: %w", err)
		}
		tournaments := tournament.SystemTournaments(now)
		if err := insertMissing(tx, &tournaments); err != nil {
			return fmt.Errorf("seed tournaments: %w", err)
		}

		rec = models.SeedRecord{Name: catalogSeedName, Version: CatalogSeedVersion, AppliedAt: now}
		if err := tx.Save(&rec).Error; err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if applied {
		log.Printf("🌱 Catalog seeded (version %d)", CatalogSeedVersion)
	}
	return applied, nil
}

func insertMissing[T any](tx *gorm.DB, rows *[]T) error {
	if len(*rows) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(rows).Error
}
