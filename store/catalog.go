// store/catalog.go - badges and challenges
package store

import (
	"time"

	"gorm.io/gorm/clause"

	"ingresosgo/apperr"
	"ingresosgo/models"
)

func (t *Tx) Badges() ([]models.Badge, error) {
	var bs []models.Badge
	if err := t.db.Order("created_at").Order("id").Find(&bs).Error; err != nil {
		return nil, internal(err)
	}
	return bs, nil
}

func (t *Tx) Challenges() ([]models.Challenge, error) {
	var cs []models.Challenge
	if err := t.db.Order("start_date").Order("id").Find(&cs).Error; err != nil {
		return nil, internal(err)
	}
	return cs, nil
}

func (t *Tx) Challenge(id string) (*models.Challenge, error) {
	var c models.Challenge
	found, err := findOne(t.locking(), &c, "id = ?", id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperr.NotFound("Desafío no encontrado")
	}
	return &c, nil
}

// CompletedChallenges returns the ids of the challenges a user has completed.
func (t *Tx) CompletedChallenges(userID string) (map[string]time.Time, error) {
	var rows []models.ChallengeCompletion
	if err := t.db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, internal(err)
	}
	out := make(map[string]time.Time, len(rows))
	for _, r := range rows {
		out[r.ChallengeID] = r.CompletedAt
	}
	return out, nil
}

func (t *Tx) ChallengeCompleted(challengeID, userID string) (bool, error) {
	var n int64
	err := t.db.Model(&models.ChallengeCompletion{}).
		Where("challenge_id = ? AND user_id = ?", challengeID, userID).
		Count(&n).Error
	if err != nil {
		return false, internal(err)
	}
	return n > 0, nil
}

// CountCompletions returns how many users completed each challenge.
func (t *Tx) CountCompletions() (map[string]int, error) {
	var rows []struct {
		ChallengeID string
		N           int
	}
	err := t.db.Model(&models.ChallengeCompletion{}).
		Select("challenge_id, COUNT(*) AS n").
		Group("challenge_id").
		Scan(&rows).Error
	if err != nil {
		return nil, internal(err)
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.ChallengeID] = r.N
	}
	return out, nil
}

// AddChallengeCompletion records a completion; a second one for the same pair
// is rejected by the unique index.
func (t *Tx) AddChallengeCompletion(c *models.ChallengeCompletion) error {
	if err := t.db.Create(c).Error; err != nil {
		if isUniqueViolation(err) {
			return apperr.Validation("Ya has completado este desafío")
		}
		return internal(err)
	}
	return nil
}

// SaveChallengeProgress upserts the advisory progress snapshot.
func (t *Tx) SaveChallengeProgress(p *models.ChallengeProgress) error {
	return internal(t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "challenge_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"snapshot", "updated_at"}),
	}).Create(p).Error)
}
