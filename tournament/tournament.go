// tournament/tournament.go - participation, scoring and standings
package tournament

import (
	"slices"
	"time"

	"ingresosgo/apperr"
	"ingresosgo/models"
)

const day = 24 * time.Hour

const defaultAvatar = "👤"

// SystemTournaments is the built-in tournament catalog relative to now.
func SystemTournaments(now time.Time) []models.Tournament {
	return []models.Tournament{
		{
			ID:              "weekly_math",
			Name:            "Torneo Semanal de Matemáticas",
			Description:     "Competencia semanal para demostrar tus habilidades matemáticas",
			Subject:         "Matemáticas",
			Type:            "weekly",
			StartDate:       now,
			EndDate:         now.Add(7 * day),
			MaxParticipants: 100,
			Prize:           models.TournamentPrize{First: 500, Second: 300, Third: 200},
			Rules: []string{
				"Solo se permite una participación por usuario",
				"Se evaluará la puntuación total obtenida en quizzes del tema",
				"En caso de empate, gana quien haya completado primero",
			},
		},
		{
			ID:              "monthly_general",
			Name:            "Torneo Mensual General",
			Description:     "El gran torneo mensual con todas las materias",
			Subject:         "General",
			Type:            "monthly",
			StartDate:       now.Add(7 * day),
			EndDate:         now.Add(30 * day),
			MaxParticipants: 200,
			Prize:           models.TournamentPrize{First: 1000, Second: 600, Third: 400},
			Rules: []string{
				"Competencia con todas las materias",
				"Se suma la puntuación de todas las materias",
				"Duración: todo el mes",
			},
		},
		{
			ID:              "speed_challenge",
			Name:            "Desafío de Velocidad",
			Description:     "Torneo especial de velocidad y precisión",
			Subject:         "General",
			Type:            "special",
			StartDate:       now.Add(-14 * day),
			EndDate:         now.Add(-7 * day),
			MaxParticipants: 50,
			Prize:           models.TournamentPrize{First: 300, Second: 200, Third: 100},
			Rules: []string{
				"Máximo tiempo por quiz: 3 minutos",
				"Se prioriza velocidad y precisión",
				"Solo 1 intento por participante",
			},
		},
	}
}

// Join appends u to the tournament's participants.
func Join(t *models.Tournament, u *models.User, now time.Time) (*models.TournamentParticipant, error) {
	if t.Status(now) != models.StatusActive {
		return nil, apperr.Validation("El torneo no está activo")
	}
	seq := 0
	for _, p := range t.Participants {
		if p.UserID == u.ID {
			return nil, apperr.Validation("Ya estás participando en este torneo")
		}
		seq = max(seq, p.Seq)
	}
	if t.MaxParticipants > 0 && len(t.Participants) >= t.MaxParticipants {
		return nil, apperr.Validation("Torneo lleno")
	}
	avatar := u.Avatar
	if avatar == "" {
		avatar = defaultAvatar
	}
	t.Participants = append(t.Participants, models.TournamentParticipant{
		TournamentID: t.ID,
		UserID:       u.ID,
		Name:         u.Name,
		Avatar:       avatar,
		Seq:          seq + 1,
		JoinedAt:     now,
	})
	return &t.Participants[len(t.Participants)-1], nil
}

// AddScore accumulates delta onto the user's score and returns the new score
// and the user's 1-based position.
func AddScore(t *models.Tournament, userID string, delta int, now time.Time) (int, int, error) {
	if delta < 0 {
		return 0, 0, apperr.Validation("La puntuación no puede ser negativa")
	}
	idx := slices.IndexFunc(t.Participants, func(p models.TournamentParticipant) bool {
		return p.UserID == userID
	})
	if idx < 0 {
		return 0, 0, apperr.Validation("No estás participando en este torneo")
	}
	p := &t.Participants[idx]
	p.Score += delta
	ts := now
	p.LastUpdate = &ts
	newScore := p.Score

	Sort(t.Participants)
	for _, s := range Leaderboard(t.Participants) {
		if s.UserID == userID {
			return newScore, s.Position, nil
		}
	}
	return newScore, 0, nil
}

// Sort orders participants by score descending. Equal scores go to whoever
// reached the score first, then to join order.
func Sort(ps []models.TournamentParticipant) {
	slices.SortStableFunc(ps, func(a, b models.TournamentParticipant) int {
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		if c := compareReached(a.LastUpdate, b.LastUpdate); c != 0 {
			return c
		}
		return a.Seq - b.Seq
	})
}

func compareReached(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(*b)
}

type Standing struct {
	models.TournamentParticipant
	Position int `json:"position"`
}

// Leaderboard returns sorted standings without modifying ps.
func Leaderboard(ps []models.TournamentParticipant) []Standing {
	sorted := slices.Clone(ps)
	Sort(sorted)
	out := make([]Standing, len(sorted))
	for i, p := range sorted {
		out[i] = Standing{TournamentParticipant: p, Position: i + 1}
	}
	return out
}
