// achievements/challenges.go
package achievements

import (
	"time"

	"ingresosgo/models"
)

const day = 24 * time.Hour

// SystemChallenges is the built-in challenge catalog with windows starting at now.
func SystemChallenges(now time.Time) []models.Challenge {
	window := func(c models.Challenge, d time.Duration) models.Challenge {
		c.StartDate = now
		c.EndDate = now.Add(d)
		return c
	}
	return []models.Challenge{
		window(models.Challenge{
			ID: "daily_streak", Name: "Racha Diaria", Icon: "🔥",
			Description:  "Mantén una racha de login de 7 días consecutivos",
			Type:         models.ChallengeTypeStreak,
			Difficulty:   "medium",
			Requirements: models.ChallengeRequirements{LoginStreak: 7},
			Rewards:      models.ChallengeRewards{Points: 100, Experience: 50},
		}, 30*day),
		window(models.Challenge{
			ID: "quiz_master", Name: "Maestro del Quiz", Icon: "🎯",
			Description:  "Completa 20 partes con al menos 80% de precisión promedio",
			Type:         models.ChallengeTypePerformance,
			Difficulty:   "hard",
			Requirements: models.ChallengeRequirements{QuizzesCompleted: 20, MinAccuracy: 0.8},
			Rewards:      models.ChallengeRewards{Points: 200, Experience: 100},
		}, 30*day),
		window(models.Challenge{
			ID: "perfect_week", Name: "Semana Perfecta", Icon: "⭐",
			Description:  "Obtén 100% en 5 partes durante una semana",
			Type:         models.ChallengeTypePerformance,
			Difficulty:   "hard",
			Requirements: models.ChallengeRequirements{PerfectQuizzes: 5, Timeframe: 7},
			Rewards:      models.ChallengeRewards{Points: 300, Experience: 150},
		}, 7*day),
		window(models.Challenge{
			ID: "subject_specialist", Name: "Especialista en Matemáticas", Icon: "🔢",
			Description:  "Completa 15 partes de Matemáticas con 90% de precisión",
			Type:         models.ChallengeTypeSubject,
			Difficulty:   "medium",
			Requirements: models.ChallengeRequirements{Subject: "Matemáticas", QuizzesCompleted: 15, MinAccuracy: 0.9},
			Rewards:      models.ChallengeRewards{Points: 250, Experience: 120},
		}, 30*day),
		window(models.Challenge{
			ID: "speed_demon", Name: "Demonio de la Velocidad", Icon: "⚡",
			Description:  "Completa 3 partes con 70% o más en menos de 2 minutos",
			Type:         models.ChallengeTypeSpeed,
			Difficulty:   "hard",
			Requirements: models.ChallengeRequirements{FastQuizzes: 3, MaxTime: 120, MinAccuracy: 0.7},
			Rewards:      models.ChallengeRewards{Points: 400, Experience: 200},
		}, 14*day),
		window(models.Challenge{
			ID: "knowledge_explorer", Name: "Explorador del Conocimiento", Icon: "🌟",
			Description: "Completa al menos 1 parte en cada materia",
			Type:        models.ChallengeTypeExploration,
			Difficulty:  "easy",
			Requirements: models.ChallengeRequirements{
				Subjects:          []string{"Matemáticas", "Castellano y Guaraní", "Historia y Geografía", "Legislación"},
				MinQuizPerSubject: 1,
			},
			Rewards: models.ChallengeRewards{Points: 150, Experience: 80},
		}, 30*day),
	}
}

// CanComplete reports whether the challenge window is open and the user has
// not completed it yet.
func CanComplete(c models.Challenge, alreadyCompleted bool, now time.Time) bool {
	return !alreadyCompleted && c.Status(now) == models.StatusActive
}

// MeetsRequirements re-derives the completion decision from live statistics.
func MeetsRequirements(c models.Challenge, s Snapshot, now time.Time) bool {
	req := c.Requirements
	switch c.Type {
	case models.ChallengeTypeStreak:
		return s.LoginStreak >= req.LoginStreak
	case models.ChallengeTypePerformance:
		if req.QuizzesCompleted > 0 {
			return s.PartsCompleted >= req.QuizzesCompleted && s.PartAccuracy >= req.MinAccuracy
		}
		if req.PerfectQuizzes > 0 {
			return perfectCount(req, s, now) >= req.PerfectQuizzes
		}
	case models.ChallengeTypeSubject:
		ps, ok := s.PartSubjects[req.Subject]
		return ok && ps.Completed >= req.QuizzesCompleted && ps.Accuracy >= req.MinAccuracy
	case models.ChallengeTypeSpeed:
		return s.FastParts(req.MaxTime, req.MinAccuracy) >= req.FastQuizzes
	case models.ChallengeTypeExploration:
		if len(req.Subjects) == 0 {
			return false
		}
		for _, subj := range req.Subjects {
			if s.PartSubjects[subj].Completed < req.MinQuizPerSubject {
				return false
			}
		}
		return true
	}
	return false
}

// ProgressFor builds the display-only progress snapshot for a challenge.
func ProgressFor(c models.Challenge, s Snapshot, now time.Time) map[string]any {
	req := c.Requirements
	p := make(map[string]any)
	switch c.Type {
	case models.ChallengeTypeStreak:
		p["currentLoginStreak"] = s.LoginStreak
	case models.ChallengeTypePerformance:
		if req.QuizzesCompleted > 0 {
			p["quizzesCompleted"] = s.PartsCompleted
			p["averageAccuracy"] = s.PartAccuracy
		}
		if req.PerfectQuizzes > 0 {
			p["perfectQuizzes"] = perfectCount(req, s, now)
		}
	case models.ChallengeTypeSubject:
		ps := s.PartSubjects[req.Subject]
		p["subjectQuizzes"] = ps.Completed
		p["subjectAccuracy"] = ps.Accuracy
	case models.ChallengeTypeSpeed:
		p["fastQuizzes"] = s.FastParts(req.MaxTime, req.MinAccuracy)
	case models.ChallengeTypeExploration:
		subjects := make(map[string]int, len(req.Subjects))
		for _, subj := range req.Subjects {
			subjects[subj] = s.PartSubjects[subj].Completed
		}
		p["subjects"] = subjects
	}
	return p
}

func perfectCount(req models.ChallengeRequirements, s Snapshot, now time.Time) int {
	if req.Timeframe > 0 {
		return s.PerfectAttemptsSince(now.Add(-time.Duration(req.Timeframe) * day))
	}
	return s.PerfectParts
}

// RewardPoints converts challenge rewards into user points. Experience is
// folded into totalPoints at half value and does not count as daily points.
func RewardPoints(r models.ChallengeRewards) (total, daily int) {
	total = max(r.Points, 0) + max(r.Experience, 0)/2
	daily = max(r.Points, 0)
	return total, daily
}
