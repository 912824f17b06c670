// store/users.go
package store

import (
	"time"

	"ingresosgo/apperr"
	"ingresosgo/models"
)

// User loads a user row, locked for update inside Update on PostgreSQL.
func (t *Tx) User(id string) (*models.User, error) {
	var u models.User
	found, err := findOne(t.locking(), &u, "id = ?", id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperr.NotFound("Usuario no encontrado")
	}
	return &u, nil
}

// UserByUsername returns nil without error when nobody has that username.
func (t *Tx) UserByUsername(username string) (*models.User, error) {
	var u models.User
	found, err := findOne(t.locking(), &u, "username = ?", username)
	if err != nil || !found {
		return nil, err
	}
	return &u, nil
}

func (t *Tx) UsernameTaken(username string) (bool, error) {
	var n int64
	if err := t.db.Model(&models.User{}).Where("username = ?", username).Count(&n).Error; err != nil {
		return false, internal(err)
	}
	return n > 0, nil
}

func (t *Tx) CreateUser(u *models.User) error {
	if err := t.db.Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("El nombre de usuario ya está en uso")
		}
		return internal(err)
	}
	return nil
}

func (t *Tx) SaveUser(u *models.User) error {
	if err := t.db.Save(u).Error; err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("El nombre de usuario ya está en uso")
		}
		return internal(err)
	}
	return nil
}

// DeleteUser removes the user and everything recorded for them.
func (t *Tx) DeleteUser(id string) (bool, error) {
	res := t.db.Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return false, internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	for _, model := range []any{
		&models.PartProgress{},
		&models.PartResult{},
		&models.QuizResult{},
		&models.ChallengeCompletion{},
		&models.ChallengeProgress{},
		&models.TournamentParticipant{},
		&models.Subscription{},
	} {
		if err := t.db.Where("user_id = ?", id).Delete(model).Error; err != nil {
			return false, internal(err)
		}
	}
	return true, nil
}

// Users lists every user, best total first.
func (t *Tx) Users() ([]models.User, error) {
	var users []models.User
	if err := t.db.Order("total_points DESC").Order("created_at").Find(&users).Error; err != nil {
		return nil, internal(err)
	}
	return users, nil
}

// UsersByIDs returns the users that exist among ids, keyed by id.
func (t *Tx) UsersByIDs(ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := t.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, internal(err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (t *Tx) CountUsers() (int64, error) {
	var n int64
	if err := t.db.Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, internal(err)
	}
	return n, nil
}

// CountActiveSince counts users whose last login is at or after since.
func (t *Tx) CountActiveSince(since time.Time) (int64, error) {
	var n int64
	if err := t.db.Model(&models.User{}).Where("last_login >= ?", since).Count(&n).Error; err != nil {
		return 0, internal(err)
	}
	return n, nil
}
