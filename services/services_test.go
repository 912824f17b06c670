package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"ingresosgo/apperr"
	"ingresosgo/cache"
	"ingresosgo/config"
	"ingresosgo/database"
	"ingresosgo/models"
	"ingresosgo/progress"
	"ingresosgo/questions"
	"ingresosgo/scoring"
	"ingresosgo/store"
)

var epoch = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// mathBank returns n Matemáticas questions whose correct answer is always "A".
func mathBank(n int) []models.Question {
	qs := make([]models.Question, n)
	for i := range qs {
		qs[i] = models.Question{
			ID:            fmt.Sprintf("mat_%03d", i+1),
			Question:      fmt.Sprintf("Pregunta %d", i+1),
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: "A",
			Subject:       "Matemáticas",
			Type:          models.ExamTypeNormal,
			Difficulty:    1,
		}
	}
	return qs
}

func newTestDeps(t *testing.T) (Deps, *testClock) {
	t.Helper()
	conn, err := database.Open(config.Database{
		Driver:   "sqlite",
		Path:     filepath.Join(t.TempDir(), "services.db"),
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := database.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := database.Seed(conn, epoch); err != nil {
		t.Fatalf("seed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	catalog := questions.NewCatalog(t.TempDir(), nil)
	catalog.Replace(mathBank(24))

	clock := &testClock{t: epoch.Add(time.Hour)}
	return Deps{
		Store:      store.New(conn),
		Catalog:    catalog,
		Board:      cache.Noop{},
		Scoring:    scoring.DefaultRules(),
		Progress:   progress.DefaultRules(),
		BcryptCost: 4,
		Now:        clock.Now,
	}, clock
}

func register(t *testing.T, d Deps, username string) *models.User {
	t.Helper()
	u, err := NewUserService(d).Register(context.Background(), RegisterInput{
		Username: username,
		Password: "secreto",
		Name:     "Jugador " + username,
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return u
}

func wantKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", kind)
	}
	if got := apperr.KindOf(err); got != kind {
		t.Fatalf("got %v (%v) want %v", got, err, kind)
	}
}
