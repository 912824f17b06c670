package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ingresosgo/config"
	"ingresosgo/database"
	"ingresosgo/models"
)

// Collections written by the file-based server, one JSON array per file.
const (
	usersFile         = "users.json"
	progressFile      = "user_progress.json"
	quizResultsFile   = "quiz_results.json"
	partResultsFile   = "part_results.json"
	subscriptionsFile = "subscriptions.json"
)

// hashCost is used for legacy passwords that were stored in plain text.
var hashCost = bcrypt.DefaultCost

type legacyUser struct {
	models.User
	Password  string     `json:"password"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type legacyProgress struct {
	models.PartProgress
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type legacyPartResult struct {
	models.PartResult
	Metadata struct {
		PartCompleted    bool `json:"partCompleted"`
		NextPartUnlocked bool `json:"nextPartUnlocked"`
		Attempts         int  `json:"attempts"`
		BestScore        int  `json:"bestScore"`
	} `json:"metadata"`
}

type legacySubscription struct {
	models.Subscription
	PurchaseToken string `json:"purchaseToken"`
}

func main() {
	cfg := config.Load()
	dir := "./data"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	now := time.Now().UTC()
	steps := []struct {
		file string
		run  func(*gorm.DB, []byte, time.Time) (int, int, error)
	}{
		{usersFile, importUsers},
		{progressFile, importProgress},
		{quizResultsFile, importQuizResults},
		{partResultsFile, importPartResults},
		{subscriptionsFile, importSubscriptions},
	}
	for _, step := range steps {
		data, err := os.ReadFile(filepath.Join(dir, step.file))
		if errors.Is(err, os.ErrNotExist) {
			fmt.Printf("%s: not found, skipped\n", step.file)
			continue
		}
		if err != nil {
			log.Fatalf("Failed to read %s: %v", step.file, err)
		}
		read, inserted, err := step.run(db, data, now)
		if err != nil {
			log.Fatalf("Failed to import %s: %v", step.file, err)
		}
		fmt.Printf("%s: %d records, %d inserted, %d already present\n", step.file, read, inserted, read-inserted)
	}
	fmt.Println("\n✓ Import completed successfully!")
}

// insert creates rows in batches and leaves existing ones untouched, so the
// import can be repeated.
func insert[T any](db *gorm.DB, rows []T) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&rows, 500)
	return int(res.RowsAffected), res.Error
}

func decode[T any](data []byte) ([]T, error) {
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return out, nil
}

func importUsers(db *gorm.DB, data []byte, now time.Time) (int, int, error) {
	legacy, err := decode[legacyUser](data)
	if err != nil {
		return 0, 0, err
	}
	users := make([]models.User, 0, len(legacy))
	for _, l := range legacy {
		u := l.User
		if u.ID == "" || u.Username == "" {
			continue
		}
		if l.Password != "" {
			hash, err := passwordHash(l.Password)
			if err != nil {
				return 0, 0, fmt.Errorf("user %s: %w", u.ID, err)
			}
			u.PasswordHash = &hash
		}
		u.CreatedAt = orNow(l.CreatedAt, now)
		u.UpdatedAt = orNow(l.UpdatedAt, now)
		if u.SubjectScores == nil {
			u.SubjectScores = map[string]models.SubjectScore{}
		}
		if u.Badges == nil {
			u.Badges = []models.UnlockedBadge{}
		}
		users = append(users, u)
	}
	n, err := insert(db, users)
	return len(legacy), n, err
}

func importProgress(db *gorm.DB, data []byte, now time.Time) (int, int, error) {
	legacy, err := decode[legacyProgress](data)
	if err != nil {
		return 0, 0, err
	}
	records := make([]models.PartProgress, 0, len(legacy))
	for _, l := range legacy {
		rec := l.PartProgress
		rec.ID = 0
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = orNow(l.CreatedAt, now)
		}
		if rec.UpdatedAt.IsZero() {
			rec.UpdatedAt = orNow(l.UpdatedAt, now)
		}
		records = append(records, rec)
	}
	n, err := insert(db, records)
	return len(legacy), n, err
}

func importQuizResults(db *gorm.DB, data []byte, _ time.Time) (int, int, error) {
	results, err := decode[models.QuizResult](data)
	if err != nil {
		return 0, 0, err
	}
	n, err := insert(db, results)
	return len(results), n, err
}

func importPartResults(db *gorm.DB, data []byte, _ time.Time) (int, int, error) {
	legacy, err := decode[legacyPartResult](data)
	if err != nil {
		return 0, 0, err
	}
	results := make([]models.PartResult, 0, len(legacy))
	for _, l := range legacy {
		r := l.PartResult
		r.PartCompleted = l.Metadata.PartCompleted
		r.NextPartUnlocked = l.Metadata.NextPartUnlocked
		r.Attempts = l.Metadata.Attempts
		r.BestScore = l.Metadata.BestScore
		results = append(results, r)
	}
	n, err := insert(db, results)
	return len(legacy), n, err
}

func importSubscriptions(db *gorm.DB, data []byte, now time.Time) (int, int, error) {
	legacy, err := decode[legacySubscription](data)
	if err != nil {
		return 0, 0, err
	}
	subs := make([]models.Subscription, 0, len(legacy))
	for _, l := range legacy {
		s := l.Subscription
		s.PurchaseToken = l.PurchaseToken
		if s.Platform == "" {
			s.Platform = "android"
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		if s.UpdatedAt.IsZero() {
			s.UpdatedAt = now
		}
		subs = append(subs, s)
	}
	n, err := insert(db, subs)
	return len(legacy), n, err
}

// passwordHash keeps bcrypt hashes as they are and hashes anything else.
func passwordHash(password string) (string, error) {
	if _, err := bcrypt.Cost([]byte(password)); err == nil {
		return password, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	return string(hash), err
}

func orNow(t *time.Time, now time.Time) time.Time {
	if t == nil || t.IsZero() {
		return now
	}
	return t.UTC()
}
