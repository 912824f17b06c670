// store/results.go - append-only result logs
package store

import (
	"time"

	"ingresosgo/models"
)

func (t *Tx) AddPartResult(r *models.PartResult) error {
	return internal(t.db.Create(r).Error)
}

func (t *Tx) AddQuizResult(r *models.QuizResult) error {
	return internal(t.db.Create(r).Error)
}

// PartResults returns a user's part attempts, newest first.
func (t *Tx) PartResults(userID string) ([]models.PartResult, error) {
	var rs []models.PartResult
	if err := t.db.Where("user_id = ?", userID).Order("completed_at DESC").Find(&rs).Error; err != nil {
		return nil, internal(err)
	}
	return rs, nil
}

// PartPointsSince sums the points a user earned from parts since the given time.
func (t *Tx) PartPointsSince(userID string, since time.Time) (int, error) {
	var total int
	err := t.db.Model(&models.PartResult{}).
		Select("COALESCE(SUM(points_earned), 0)").
		Where("user_id = ? AND completed_at >= ?", userID, since).
		Scan(&total).Error
	return total, internal(err)
}

// QuizResults returns quiz results newest first. An empty userID or subject
// means no filter; limit <= 0 means no limit.
func (t *Tx) QuizResults(userID, subject string, limit int) ([]models.QuizResult, error) {
	q := t.db.Model(&models.QuizResult{})
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	if subject != "" {
		q = q.Where("LOWER(subject) = LOWER(?)", subject)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rs []models.QuizResult
	if err := q.Order("completed_at DESC").Find(&rs).Error; err != nil {
		return nil, internal(err)
	}
	return rs, nil
}

// AllPartResults is used by global statistics.
func (t *Tx) AllPartResults() ([]models.PartResult, error) {
	var rs []models.PartResult
	if err := t.db.Order("completed_at DESC").Find(&rs).Error; err != nil {
		return nil, internal(err)
	}
	return rs, nil
}
