// store/store.go - keyed read-modify-write transactions over gorm
package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ingresosgo/apperr"
	"ingresosgo/models"
)

// Store serializes read-modify-write work per natural key. Inside a process the
// keyed mutex orders writers; on PostgreSQL rows are also read FOR UPDATE so
// several processes stay consistent.
type Store struct {
	db    *gorm.DB
	locks *KeyedMutex
}

func New(db *gorm.DB) *Store {
	return &Store{db: db, locks: NewKeyedMutex()}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// Update runs fn in one database transaction while holding the locks for keys.
// Any error rolls the whole transaction back.
func (s *Store) Update(ctx context.Context, keys []string, fn func(*Tx) error) error {
	unlock := s.locks.LockAll(keys)
	defer unlock()

	lockRows := s.db.Dialector.Name() == "postgres"
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Tx{db: tx, forUpdate: lockRows})
	})
}

// View runs fn without locks or a write transaction.
func (s *Store) View(ctx context.Context, fn func(*Tx) error) error {
	return fn(&Tx{db: s.db.WithContext(ctx)})
}

// Tx is the record access surface available inside Update and View.
type Tx struct {
	db        *gorm.DB
	forUpdate bool
}

func (t *Tx) locking() *gorm.DB {
	if t.forUpdate {
		return t.db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return t.db
}

// Key helpers name the lock for each natural key.
func UserKey(id string) string { return "user:" + id }

func ProgressKey(userID, subject, examType string) string {
	return models.ProgressKey{UserID: userID, Subject: subject, ExamType: examType}.String()
}

func ChallengeKey(id string) string  { return "challenge:" + id }
func TournamentKey(id string) string { return "tournament:" + id }
func UsernameKey(name string) string { return "username:" + name }

// findOne loads one row into dest and reports whether it existed.
func findOne(db *gorm.DB, dest any, query string, args ...any) (bool, error) {
	res := db.Where(query, args...).Limit(1).Find(dest)
	if res.Error != nil {
		return false, apperr.Internal("Error interno del servidor", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func internal(err error) error {
	if err == nil {
		return nil
	}
	return apperr.Internal("Error interno del servidor", err)
}
