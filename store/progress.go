// store/progress.go
package store

import (
	"ingresosgo/models"
)

// Progress loads the part progress record for key. found is false when the
// user has never opened that subject and exam type.
func (t *Tx) Progress(key models.ProgressKey) (*models.PartProgress, bool, error) {
	var rec models.PartProgress
	found, err := findOne(t.locking(), &rec,
		"user_id = ? AND subject = ? AND exam_type = ?", key.UserID, key.Subject, key.ExamType)
	if err != nil || !found {
		return nil, false, err
	}
	if rec.Parts == nil {
		rec.Parts = map[string]models.PartState{}
	}
	return &rec, true, nil
}

// SaveProgress inserts a new record or updates an existing one.
func (t *Tx) SaveProgress(rec *models.PartProgress) error {
	return internal(t.db.Save(rec).Error)
}

// DeleteProgress removes the record if present. It is not an error when it is absent.
func (t *Tx) DeleteProgress(key models.ProgressKey) error {
	return internal(t.db.
		Where("user_id = ? AND subject = ? AND exam_type = ?", key.UserID, key.Subject, key.ExamType).
		Delete(&models.PartProgress{}).Error)
}

// ProgressForUser returns every progress record of a user, ordered by subject.
func (t *Tx) ProgressForUser(userID string) ([]models.PartProgress, error) {
	var recs []models.PartProgress
	if err := t.db.Where("user_id = ?", userID).Order("subject").Order("exam_type").Find(&recs).Error; err != nil {
		return nil, internal(err)
	}
	return recs, nil
}
