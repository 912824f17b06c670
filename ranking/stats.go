// ranking/stats.go - ranking overview, user and global statistics
package ranking

import (
	"fmt"
	"math"
	"slices"
	"time"

	"ingresosgo/models"
	"ingresosgo/progress"
)

const (
	activeWindow   = 24 * time.Hour
	activityDays   = 30
	recentWindow   = 3 * 24 * time.Hour
	maxRecommended = 5
	topUsersCount  = 10
)

type GeneralOverview struct {
	TotalUsers       int `json:"totalUsers"`
	TotalQuestions   int `json:"totalQuestions"`
	ActiveUsers      int `json:"activeUsers"`
	TotalGamesPlayed int `json:"totalGamesPlayed"`
}

type SubjectOverview struct {
	Questions        int     `json:"questions"`
	PlayersCount     int     `json:"playersCount"`
	TotalGamesPlayed int     `json:"totalGamesPlayed"`
	AverageScore     float64 `json:"averageScore"`
}

type Overview struct {
	General   GeneralOverview            `json:"general"`
	BySubject map[string]SubjectOverview `json:"bySubject"`
}

// ComputeOverview summarizes players and the question bank. questionsBySubject
// holds the bank size per subject.
func ComputeOverview(users []models.User, questionsBySubject map[string]int, now time.Time) Overview {
	o := Overview{BySubject: map[string]SubjectOverview{}}
	o.General.TotalUsers = len(users)
	for _, n := range questionsBySubject {
		o.General.TotalQuestions += n
	}
	for _, u := range users {
		if d := now.Sub(u.LastLogin); d.Abs() <= activeWindow {
			o.General.ActiveUsers++
		}
		for _, s := range u.SubjectScores {
			o.General.TotalGamesPlayed += s.GamesPlayed
		}
	}

	for subject, n := range questionsBySubject {
		so := SubjectOverview{Questions: n}
		scoreSum := 0
		for _, u := range users {
			s, ok := u.SubjectScores[subject]
			if !ok {
				continue
			}
			so.PlayersCount++
			so.TotalGamesPlayed += s.GamesPlayed
			scoreSum += s.Score
		}
		if so.PlayersCount > 0 {
			so.AverageScore = float64(scoreSum) / float64(so.PlayersCount)
		}
		o.BySubject[subject] = so
	}
	return o
}

type UserSubjectStats struct {
	QuizzesCompleted int     `json:"quizzesCompleted"`
	AverageAccuracy  float64 `json:"averageAccuracy"`
	BestScore        int     `json:"bestScore"`
	AverageScore     float64 `json:"averageScore"`
	TotalTimeSpent   int     `json:"totalTimeSpent"`
}

type UserSummary struct {
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
	TotalPoints int    `json:"totalPoints"`
	LoginStreak int    `json:"loginStreak"`
}

type UserStats struct {
	TotalQuizzes    int                         `json:"totalQuizzes"`
	AverageAccuracy float64                     `json:"averageAccuracy"`
	TotalSessions   int                         `json:"totalSessions"`
	TotalTimeSpent  int                         `json:"totalTimeSpent"` // minutes
	SubjectStats    map[string]UserSubjectStats `json:"subjectStats"`
	DailyActivity   map[string]int              `json:"dailyActivity"`
	Recommendations []string                    `json:"recommendations"`
	User            UserSummary                 `json:"user"`
}

// questionCount treats legacy results without a question count as ten-question quizzes.
func questionCount(r models.QuizResult) int {
	if r.TotalQuestions > 0 {
		return r.TotalQuestions
	}
	return quizLength
}

func dateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func subjectResultStats(results []models.QuizResult, subject string) UserSubjectStats {
	var st UserSubjectStats
	correct, questions, scoreSum := 0, 0, 0
	for _, r := range results {
		if r.Subject != subject {
			continue
		}
		st.QuizzesCompleted++
		correct += r.CorrectAnswers
		questions += questionCount(r)
		scoreSum += r.TotalScore
		st.TotalTimeSpent += r.TimeSpent
		st.BestScore = max(st.BestScore, r.TotalScore)
	}
	if questions > 0 {
		st.AverageAccuracy = float64(correct) / float64(questions)
	}
	if st.QuizzesCompleted > 0 {
		st.AverageScore = float64(scoreSum) / float64(st.QuizzesCompleted)
	}
	return st
}

// ComputeUserStats summarizes a user's quiz history up to now.
func ComputeUserStats(u models.User, results []models.QuizResult, now time.Time) UserStats {
	st := UserStats{
		TotalQuizzes:  len(results),
		SubjectStats:  map[string]UserSubjectStats{},
		DailyActivity: make(map[string]int, activityDays),
		User: UserSummary{
			Name:        u.Name,
			Avatar:      u.Avatar,
			TotalPoints: u.TotalPoints,
			LoginStreak: u.LoginStreak,
		},
	}

	correct, questions, seconds := 0, 0, 0
	sessions := map[string]bool{}
	for _, r := range results {
		correct += r.CorrectAnswers
		questions += questionCount(r)
		seconds += r.TimeSpent
		if !r.CompletedAt.IsZero() {
			sessions[dateKey(r.CompletedAt)] = true
		}
	}
	if questions > 0 {
		st.AverageAccuracy = float64(correct) / float64(questions)
	}
	st.TotalSessions = len(sessions)
	st.TotalTimeSpent = int(math.Round(float64(seconds) / 60))

	for i := 0; i < activityDays; i++ {
		st.DailyActivity[dateKey(now.Add(-time.Duration(i)*24*time.Hour))] = 0
	}
	for _, r := range results {
		if r.CompletedAt.IsZero() {
			continue
		}
		if _, ok := st.DailyActivity[dateKey(r.CompletedAt)]; ok {
			st.DailyActivity[dateKey(r.CompletedAt)]++
		}
	}

	for _, subject := range progress.Subjects() {
		st.SubjectStats[subject] = subjectResultStats(results, subject)
	}
	st.Recommendations = Recommendations(u, st.SubjectStats, results, now)
	return st
}

// Recommendations returns at most five study hints for the user.
func Recommendations(u models.User, bySubject map[string]UserSubjectStats, results []models.QuizResult, now time.Time) []string {
	var recs []string
	subjects := progress.Subjects()

	for _, subject := range subjects {
		s := bySubject[subject]
		if s.QuizzesCompleted > 0 && s.AverageAccuracy < 0.7 {
			recs = append(recs, fmt.Sprintf("Practica más %s para mejorar tu precisión (%.1f%%)", subject, s.AverageAccuracy*100))
		}
	}

	switch {
	case u.LoginStreak < 3:
		recs = append(recs, "¡Mantén una racha de login diaria para obtener bonificaciones!")
	case u.LoginStreak >= 7:
		recs = append(recs, "¡Excelente racha de login! Sigue así para mantener tu progreso.")
	}

	recent := 0
	for _, r := range results {
		if !r.CompletedAt.IsZero() && r.CompletedAt.After(now.Add(-recentWindow)) {
			recent++
		}
	}
	switch {
	case recent == 0:
		recs = append(recs, "¡Es hora de practicar! No has jugado en los últimos días.")
	case recent > 10:
		recs = append(recs, "¡Excelente actividad! Estás en el camino correcto.")
	}

	least := slices.MinFunc(subjects, func(a, b string) int {
		return bySubject[a].QuizzesCompleted - bySubject[b].QuizzesCompleted
	})
	if bySubject[least].QuizzesCompleted < 5 {
		recs = append(recs, fmt.Sprintf("Considera practicar %s - es tu materia menos practicada.", least))
	}

	if len(recs) == 0 {
		recs = append(recs, "¡Sigue practicando! Tu progreso es consistente.")
	}
	if len(recs) > maxRecommended {
		recs = recs[:maxRecommended]
	}
	return recs
}

type TopUser struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
	TotalPoints int    `json:"totalPoints"`
}

type GlobalSubjectStats struct {
	TotalQuizzes    int     `json:"totalQuizzes"`
	AverageAccuracy float64 `json:"averageAccuracy"`
	AverageScore    float64 `json:"averageScore"`
}

type GlobalStats struct {
	TotalUsers     int                           `json:"totalUsers"`
	TotalQuizzes   int                           `json:"totalQuizzes"`
	GlobalAccuracy float64                       `json:"globalAccuracy"`
	TopUsers       []TopUser                     `json:"topUsers"`
	SubjectStats   map[string]GlobalSubjectStats `json:"subjectStats"`
}

func ComputeGlobalStats(users []models.User, results []models.QuizResult) GlobalStats {
	g := GlobalStats{
		TotalUsers:   len(users),
		TotalQuizzes: len(results),
		TopUsers:     []TopUser{},
		SubjectStats: map[string]GlobalSubjectStats{},
	}
	correct, questions := 0, 0
	for _, r := range results {
		correct += r.CorrectAnswers
		questions += questionCount(r)
	}
	if questions > 0 {
		g.GlobalAccuracy = float64(correct) / float64(questions)
	}
	for _, e := range Global(users, topUsersCount) {
		g.TopUsers = append(g.TopUsers, TopUser{ID: e.ID, Name: e.Name, Avatar: e.Avatar, TotalPoints: e.TotalPoints})
	}
	for _, subject := range progress.Subjects() {
		s := subjectResultStats(results, subject)
		g.SubjectStats[subject] = GlobalSubjectStats{
			TotalQuizzes:    s.QuizzesCompleted,
			AverageAccuracy: s.AverageAccuracy,
			AverageScore:    s.AverageScore,
		}
	}
	return g
}
