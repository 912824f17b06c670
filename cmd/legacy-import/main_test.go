package main

import (
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"ingresosgo/config"
	"ingresosgo/database"
	"ingresosgo/models"
)

func newImportDB(t *testing.T) *gorm.DB {
	t.Helper()
	hashCost = bcrypt.MinCost
	conn, err := database.Open(config.Database{
		Driver:   "sqlite",
		Path:     filepath.Join(t.TempDir(), "import.db"),
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := database.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return conn
}

func runTwice(t *testing.T, db *gorm.DB, run func(*gorm.DB, []byte, time.Time) (int, int, error), data string, want int) {
	t.Helper()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, wantInserted := range []int{want, 0} {
		read, inserted, err := run(db, []byte(data), now)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if read != want || inserted != wantInserted {
			t.Fatalf("run %d: got %d read %d inserted want %d/%d", i, read, inserted, want, wantInserted)
		}
	}
}

func TestImportUsers(t *testing.T) {
	db := newImportDB(t)
	hashed, err := bcrypt.GenerateFromPassword([]byte("clave123"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	data := `[
		{"id": "u1", "username": "carlos", "name": "Carlos", "password": "` + string(hashed) + `",
		 "dailyPoints": 40, "totalPoints": 900, "loginStreak": 0, "canChooseSubject": false,
		 "created_at": "2023-05-01T10:00:00Z"},
		{"id": "u2", "username": "maria", "name": "María", "password": "secreto",
		 "dailyPoints": 120, "loginStreak": 5, "canChooseSubject": true, "canTakeGeneralExam": true},
		{"id": "u3", "username": "luis", "name": "Luis"}
	]`
	runTwice(t, db, importUsers, data, 3)

	tests := []struct {
		id       string
		password string
		choose   bool
		streak   int
		general  bool
	}{
		{"u1", "clave123", false, 0, false},
		{"u2", "secreto", true, 5, true},
		{"u3", "", false, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			var u models.User
			if err := db.First(&u, "id = ?", tt.id).Error; err != nil {
				t.Fatal(err)
			}
			if u.CanChooseSubject != tt.choose || u.LoginStreak != tt.streak || u.CanTakeGeneralExam != tt.general {
				t.Fatalf("got choose=%v streak=%d general=%v want %v/%d/%v",
					u.CanChooseSubject, u.LoginStreak, u.CanTakeGeneralExam, tt.choose, tt.streak, tt.general)
			}
			if tt.password == "" {
				if u.HasPassword() {
					t.Fatalf("unexpected password hash %q", *u.PasswordHash)
				}
				return
			}
			if !u.HasPassword() {
				t.Fatal("password hash missing")
			}
			if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(tt.password)); err != nil {
				t.Fatalf("stored hash does not match: %v", err)
			}
		})
	}

	var u1 models.User
	if err := db.First(&u1, "id = ?", "u1").Error; err != nil {
		t.Fatal(err)
	}
	if *u1.PasswordHash != string(hashed) {
		t.Fatal("existing bcrypt hash was rehashed")
	}
	if !u1.CreatedAt.Equal(time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("got createdAt %v", u1.CreatedAt)
	}
}

func TestImportProgress(t *testing.T) {
	db := newImportDB(t)
	data := `[
		{"userId": "u1", "subject": "Matemáticas", "examType": "normal",
		 "progress": {
			"parte1": {"completed": true, "unlocked": true, "score": 10, "attempts": 2, "bestScore": 10},
			"parte2": {"completed": false, "unlocked": true, "score": 0, "attempts": 0, "bestScore": 0}
		 },
		 "created_at": "2023-06-01T08:00:00Z"},
		{"userId": "u1", "subject": "Legislación", "examType": "general",
		 "progress": {"parte1": {"completed": false, "unlocked": true}}}
	]`
	runTwice(t, db, importProgress, data, 2)

	var rec models.PartProgress
	if err := db.First(&rec, "user_id = ? AND subject = ?", "u1", "Matemáticas").Error; err != nil {
		t.Fatal(err)
	}
	p1, p2 := rec.Parts["parte1"], rec.Parts["parte2"]
	if !p1.Completed || p1.Attempts != 2 || p1.BestScore != 10 || !p2.Unlocked || p2.Completed {
		t.Fatalf("unexpected parts %+v", rec.Parts)
	}
	if !rec.CreatedAt.Equal(time.Date(2023, 6, 1, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("got createdAt %v", rec.CreatedAt)
	}
}

func TestImportPartResults(t *testing.T) {
	db := newImportDB(t)
	data := `[
		{"id": "result_1700000000000_abc123def", "userId": "u1", "subject": "Matemáticas",
		 "examType": "normal", "partNumber": 1, "score": 10, "totalQuestions": 12, "accuracy": 83,
		 "timeSpent": 300, "answers": [], "completedAt": "2023-06-01T08:10:00Z",
		 "metadata": {"partCompleted": true, "nextPartUnlocked": true, "attempts": 2, "bestScore": 10}},
		{"id": "result_1700000000001_xyz987uvw", "userId": "u1", "subject": "Matemáticas",
		 "examType": "normal", "partNumber": 2, "score": 3, "totalQuestions": 12, "accuracy": 25,
		 "completedAt": "2023-06-01T08:30:00Z",
		 "metadata": {"partCompleted": false, "nextPartUnlocked": false, "attempts": 1, "bestScore": 3}}
	]`
	runTwice(t, db, importPartResults, data, 2)

	tests := []struct {
		id        string
		completed bool
		unlocked  bool
		attempts  int
		best      int
	}{
		{"result_1700000000000_abc123def", true, true, 2, 10},
		{"result_1700000000001_xyz987uvw", false, false, 1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			var r models.PartResult
			if err := db.First(&r, "id = ?", tt.id).Error; err != nil {
				t.Fatal(err)
			}
			if r.PartCompleted != tt.completed || r.NextPartUnlocked != tt.unlocked ||
				r.Attempts != tt.attempts || r.BestScore != tt.best {
				t.Fatalf("got %+v", r)
			}
		})
	}
}

func TestPasswordHash(t *testing.T) {
	hashCost = bcrypt.MinCost
	hashed, err := bcrypt.GenerateFromPassword([]byte("x"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		input string
		same  bool
	}{
		{"bcrypt hash kept", string(hashed), true},
		{"plain text hashed", "secreto", false},
		{"dollar prefix but not bcrypt", "$notahash", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := passwordHash(tt.input)
			if err != nil {
				t.Fatal(err)
			}
			if (got == tt.input) != tt.same {
				t.Fatalf("got %q for %q", got, tt.input)
			}
			if !tt.same {
				if err := bcrypt.CompareHashAndPassword([]byte(got), []byte(tt.input)); err != nil {
					t.Fatalf("hash does not verify: %v", err)
				}
			}
		})
	}
}
