// store/tournaments.go
package store

import (
	"gorm.io/gorm"

	"ingresosgo/apperr"
	"ingresosgo/models"
)

func participantsBySeq(db *gorm.DB) *gorm.DB {
	return db.Order("seq")
}

func (t *Tx) Tournaments() ([]models.Tournament, error) {
	var ts []models.Tournament
	if err := t.db.Preload("Participants", participantsBySeq).Order("start_date").Order("id").Find(&ts).Error; err != nil {
		return nil, internal(err)
	}
	return ts, nil
}

// Tournament loads a tournament with its participants in join order.
func (t *Tx) Tournament(id string) (*models.Tournament, error) {
	var tr models.Tournament
	found, err := findOne(t.locking().Preload("Participants", participantsBySeq), &tr, "id = ?", id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperr.NotFound("Torneo no encontrado")
	}
	return &tr, nil
}

func (t *Tx) AddParticipant(p *models.TournamentParticipant) error {
	if err := t.db.Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return apperr.Validation("Ya estás participando en este torneo")
		}
		return internal(err)
	}
	return nil
}

func (t *Tx) SaveParticipant(p *models.TournamentParticipant) error {
	return internal(t.db.Save(p).Error)
}
