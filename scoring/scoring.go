// scoring/scoring.go - login streak, daily points and capability flags
package scoring

import (
	"math"
	"time"

	"ingresosgo/models"
)

// LegacyGeneralExamMinStreak is the streak some older clients still assume.
const LegacyGeneralExamMinStreak = 4

type Rules struct {
	DailyPointsToChooseSubject int
	GeneralExamMinPoints       int
	GeneralExamMinStreak       int
}

func DefaultRules() Rules {
	return Rules{
		DailyPointsToChooseSubject: 100,
		GeneralExamMinPoints:       180,
		GeneralExamMinStreak:       3,
	}
}

// LoginChange describes what a login did to the streak.
type LoginChange string

const (
	LoginSameDay   LoginChange = "same_day"
	LoginContinued LoginChange = "continued"
	LoginReset     LoginChange = "reset"
)

// ApplyLogin updates the streak and daily points for a login at now, then
// recomputes the capability flags. A lastLogin in the future counts as same day.
func ApplyLogin(u *models.User, now time.Time, r Rules) LoginChange {
	change := LoginSameDay
	diffHours := now.Sub(u.LastLogin).Hours()
	switch {
	case u.LastLogin.IsZero() || diffHours > 48:
		u.LoginStreak = 1
		u.DailyPoints = 0
		change = LoginReset
	case diffHours > 24:
		u.LoginStreak++
		u.DailyPoints = 0
		change = LoginContinued
	}
	if u.LoginStreak < 1 {
		u.LoginStreak = 1
	}
	u.LastLogin = now
	RefreshFlags(u, r)
	return change
}

func RefreshFlags(u *models.User, r Rules) {
	u.CanChooseSubject = u.DailyPoints >= r.DailyPointsToChooseSubject
	u.CanTakeGeneralExam = u.HasVipAccess ||
		(u.TotalPoints >= r.GeneralExamMinPoints && u.LoginStreak >= r.GeneralExamMinStreak)
}

// AwardPoints adds n to both totals. Non-positive awards are ignored so
// totalPoints stays monotonic.
func AwardPoints(u *models.User, n int) {
	if n <= 0 {
		return
	}
	u.TotalPoints += n
	u.DailyPoints += n
}

// RecordSubjectResult folds one quiz into the user's per-subject aggregate.
func RecordSubjectResult(u *models.User, subject string, points, correct int) {
	if subject == "" {
		return
	}
	if u.SubjectScores == nil {
		u.SubjectScores = make(map[string]models.SubjectScore)
	}
	s := u.SubjectScores[subject]
	s.Score += max(points, 0)
	s.GamesPlayed++
	s.CorrectAnswers += max(correct, 0)
	s.BestScore = max(s.BestScore, points)
	u.SubjectScores[subject] = s
}

// QuizPoints scores one correct answer, with up to a 50% bonus for fast answers.
func QuizPoints(difficulty, timeSpent int) int {
	bonus := float64(60-timeSpent) / 60
	bonus = math.Max(0, math.Min(bonus, 0.5))
	return int(math.Round(float64(difficulty) * 10 * (1 + bonus)))
}
