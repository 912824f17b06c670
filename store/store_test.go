package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"ingresosgo/apperr"
	"ingresosgo/config"
	"ingresosgo/database"
	"ingresosgo/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	conn, err := database.Open(config.Database{
		Driver:   "sqlite",
		Path:     filepath.Join(t.TempDir(), "store.db"),
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
	return New(conn)
}

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	k := NewKeyedMutex()
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.LockAll([]string{"b", "a", "b"})
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
			unlock()
		}()
	}
	wg.Wait()
	if counter != 50 {
		t.Fatalf("got %d want 50", counter)
	}
	if k.size() != 0 {
		t.Fatalf("got %d live locks want 0", k.size())
	}
}

func TestUpdateRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Update(ctx, []string{UserKey("u1")}, func(tx *Tx) error {
		if err := tx.CreateUser(&models.User{ID: "u1", Username: "ana", Name: "Ana"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v want boom", err)
	}

	err = s.View(ctx, func(tx *Tx) error {
		_, err := tx.User("u1")
		return err
	})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("got %v want not found", err)
	}
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	create := func(id string) error {
		return s.Update(ctx, []string{UserKey(id)}, func(tx *Tx) error {
			return tx.CreateUser(&models.User{ID: id, Username: "ana", Name: "Ana"})
		})
	}
	if err := create("u1"); err != nil {
		t.Fatal(err)
	}
	if err := create("u2"); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("got %v want conflict", err)
	}
}

func TestCreateUserKeepsZeroValues(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		choose bool
		streak int
	}{
		{"no subject choice and no streak", false, 0},
		{"subject choice and streak", true, 4},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := fmt.Sprintf("u%d", i)
			err := s.Update(ctx, []string{UserKey(id)}, func(tx *Tx) error {
				return tx.CreateUser(&models.User{
					ID:               id,
					Username:         "jugador" + id,
					Name:             "Jugador",
					CanChooseSubject: tt.choose,
					LoginStreak:      tt.streak,
				})
			})
			if err != nil {
				t.Fatal(err)
			}

			var got *models.User
			err = s.View(ctx, func(tx *Tx) error {
				var err error
				got, err = tx.User(id)
				return err
			})
			if err != nil {
				t.Fatal(err)
			}
			if got.CanChooseSubject != tt.choose || got.LoginStreak != tt.streak {
				t.Fatalf("got canChooseSubject=%v loginStreak=%d want %v/%d",
					got.CanChooseSubject, got.LoginStreak, tt.choose, tt.streak)
			}
		})
	}
}

func TestConcurrentPointAwardsAreNotLost(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.Update(ctx, nil, func(tx *Tx) error {
		return tx.CreateUser(&models.User{ID: "u1", Username: "ana", Name: "Ana"})
	}); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Update(ctx, []string{UserKey("u1")}, func(tx *Tx) error {
				u, err := tx.User("u1")
				if err != nil {
					return err
				}
				u.TotalPoints++
				return tx.SaveUser(u)
			})
			if err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	var got int
	s.View(ctx, func(tx *Tx) error {
		u, err := tx.User("u1")
		if err == nil {
			got = u.TotalPoints
		}
		return err
	})
	if got != 20 {
		t.Fatalf("got %d want 20", got)
	}
}

func TestProgressRoundTripAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	key := models.ProgressKey{UserID: "u1", Subject: "Matemáticas", ExamType: models.ExamTypeNormal}
	done := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	err := s.Update(ctx, []string{key.String()}, func(tx *Tx) error {
		_, found, err := tx.Progress(key)
		if err != nil || found {
			t.Fatalf("fresh key found=%v err=%v", found, err)
		}
		return tx.SaveProgress(&models.PartProgress{
			UserID: key.UserID, Subject: key.Subject, ExamType: key.ExamType,
			Parts: map[string]models.PartState{
				"parte1": {Completed: true, Unlocked: true, Score: 9, BestScore: 9, Attempts: 1, CompletedAt: &done},
				"parte2": {Unlocked: true},
			},
		})
	})
	if err != nil {
		t.Fatal(err)
	}

	s.View(ctx, func(tx *Tx) error {
		rec, found, err := tx.Progress(key)
		if err != nil || !found {
			t.Fatalf("found=%v err=%v", found, err)
		}
		p1 := rec.Parts["parte1"]
		if !p1.Completed || p1.BestScore != 9 || p1.CompletedAt == nil || !p1.CompletedAt.Equal(done) {
			t.Fatalf("parte1 stored as %+v", p1)
		}
		return nil
	})

	for i := 0; i < 2; i++ {
		if err := s.Update(ctx, []string{key.String()}, func(tx *Tx) error {
			return tx.DeleteProgress(key)
		}); err != nil {
			t.Fatalf("delete %d: %v", i, err)
		}
	}
}

func TestChallengeCompletionOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	add := func() error {
		return s.Update(ctx, []string{ChallengeKey("c1")}, func(tx *Tx) error {
			return tx.AddChallengeCompletion(&models.ChallengeCompletion{ChallengeID: "c1", UserID: "u1", CompletedAt: time.Now()})
		})
	}
	if err := add(); err != nil {
		t.Fatal(err)
	}
	if err := add(); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("got %v want validation", err)
	}
	s.View(ctx, func(tx *Tx) error {
		counts, err := tx.CountCompletions()
		if err != nil || counts["c1"] != 1 {
			t.Fatalf("counts %v err %v", counts, err)
		}
		return nil
	})
}

func TestExpireDue(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	subs := []models.Subscription{
		{ID: "s1", UserID: "u1", ProductID: "p", PurchaseToken: "t1", Status: models.SubscriptionActive, ExpirationDate: now.Add(-time.Hour)},
		{ID: "s2", UserID: "u2", ProductID: "p", PurchaseToken: "t2", Status: models.SubscriptionActive, ExpirationDate: now.Add(time.Hour)},
	}
	err := s.Update(ctx, nil, func(tx *Tx) error {
		for i := range subs {
			if err := tx.CreateSubscription(&subs[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	var expired []string
	s.Update(ctx, nil, func(tx *Tx) error {
		expired, err = tx.ExpireDue(now)
		return err
	})
	if len(expired) != 1 || expired[0] != "u1" {
		t.Fatalf("got %v want [u1]", expired)
	}
}
