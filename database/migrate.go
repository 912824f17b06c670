// database/migrate.go - Database Migration Runner
package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"ingresosgo/models"
)

// RunMigrations migrates the global database and stops the process on failure.
func RunMigrations() {
	log.Println("🔄 Running database migrations...")
	if err := Migrate(GetDB()); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}
	log.Println("✅ All migrations completed successfully")
}

// Migrate creates or updates every table and index.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&models.User{},
		&models.PartProgress{},
		&models.PartResult{},
		&models.QuizResult{},
		&models.Badge{},
		&models.Challenge{},
		&models.ChallengeCompletion{},
		&models.ChallengeProgress{},
		&models.Tournament{},
		&models.TournamentParticipant{},
		&models.Subscription{},
		&models.SeedRecord{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return createIndexes(conn)
}

func createIndexes(conn *gorm.DB) error {
	stmts := []string{
		// Ranking
		"CREATE INDEX IF NOT EXISTS idx_users_total_points ON users(total_points DESC)",
		"CREATE INDEX IF NOT EXISTS idx_users_last_login ON users(last_login)",

		// Result history
		"CREATE INDEX IF NOT EXISTS idx_part_results_user_completed ON part_results(user_id, completed_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_quiz_results_user_completed ON quiz_results(user_id, completed_at DESC)",

		// Tournaments
		"CREATE INDEX IF NOT EXISTS idx_tournament_participants_order ON tournament_participants(tournament_id, score DESC, seq)",

		// Subscriptions
		"CREATE INDEX IF NOT EXISTS idx_subscriptions_user_status ON subscriptions(user_id, status)",
	}
	for _, stmt := range stmts {
		if err := conn.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
