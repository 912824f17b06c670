// ranking/ranking.go - global and per-subject rankings over user aggregates
package ranking

import (
	"cmp"
	"math"
	"slices"
	"time"

	"ingresosgo/models"
)

// quizLength is the question count assumed when turning correct answers
// into a subject accuracy.
const quizLength = 10

// LeaderboardSize is the length of a subject leaderboard.
const LeaderboardSize = 20

type GlobalEntry struct {
	Position    int       `json:"position"`
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Avatar      string    `json:"avatar"`
	TotalPoints int       `json:"totalPoints"`
	DailyPoints int       `json:"dailyPoints"`
	LoginStreak int       `json:"loginStreak"`
	LastLogin   time.Time `json:"lastLogin"`
}

type SubjectEntry struct {
	Position    int        `json:"position"`
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Avatar      string     `json:"avatar"`
	Score       int        `json:"score"`
	GamesPlayed int        `json:"gamesPlayed"`
	BestScore   int        `json:"bestScore"`
	Accuracy    float64    `json:"accuracy"`
	LastPlayed  *time.Time `json:"lastPlayed,omitempty"`
}

// SortByPoints orders users by total points, keeping the input order on ties.
func SortByPoints(users []models.User) []models.User {
	sorted := slices.Clone(users)
	slices.SortStableFunc(sorted, func(a, b models.User) int {
		return cmp.Compare(b.TotalPoints, a.TotalPoints)
	})
	return sorted
}

// Global returns the top limit users by total points. limit <= 0 returns everyone.
func Global(users []models.User, limit int) []GlobalEntry {
	sorted := SortByPoints(users)
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	out := make([]GlobalEntry, len(sorted))
	for i, u := range sorted {
		out[i] = GlobalEntry{
			Position:    i + 1,
			ID:          u.ID,
			Name:        u.Name,
			Avatar:      u.Avatar,
			TotalPoints: u.TotalPoints,
			DailyPoints: u.DailyPoints,
			LoginStreak: u.LoginStreak,
			LastLogin:   u.LastLogin,
		}
	}
	return out
}

func subjectPlayers(users []models.User, subject string) []models.User {
	var players []models.User
	for _, u := range users {
		if _, ok := u.SubjectScores[subject]; ok {
			players = append(players, u)
		}
	}
	slices.SortStableFunc(players, func(a, b models.User) int {
		return cmp.Compare(b.SubjectScores[subject].Score, a.SubjectScores[subject].Score)
	})
	return players
}

// SubjectAccuracy is correct answers over gamesPlayed quizzes of ten questions, in percent.
func SubjectAccuracy(s models.SubjectScore) float64 {
	if s.GamesPlayed <= 0 {
		return 0
	}
	return float64(s.CorrectAnswers) / float64(s.GamesPlayed*quizLength) * 100
}

// BySubject ranks the users that played subject. The leaderboard variant
// rounds accuracy and reports when each player was last seen.
func BySubject(users []models.User, subject string, limit int, leaderboard bool) []SubjectEntry {
	players := subjectPlayers(users, subject)
	if limit > 0 && len(players) > limit {
		players = players[:limit]
	}
	out := make([]SubjectEntry, len(players))
	for i, u := range players {
		s := u.SubjectScores[subject]
		e := SubjectEntry{
			Position:    i + 1,
			ID:          u.ID,
			Name:        u.Name,
			Avatar:      u.Avatar,
			Score:       s.Score,
			GamesPlayed: s.GamesPlayed,
			BestScore:   s.BestScore,
			Accuracy:    SubjectAccuracy(s),
		}
		if leaderboard {
			e.Accuracy = math.Round(e.Accuracy)
			updated := u.UpdatedAt
			e.LastPlayed = &updated
		}
		out[i] = e
	}
	return out
}

type Position struct {
	UserID     string `json:"userId"`
	Name       string `json:"name"`
	Position   int    `json:"position"`
	TotalUsers int    `json:"totalUsers"`
	Subject    string `json:"subject"`
	Score      int    `json:"score"`
}

// UserPosition locates a user in the global ranking, or in the subject
// ranking when subject is set. Position is 0 when the user has not played
// the subject. ok is false when the user does not exist.
func UserPosition(users []models.User, userID, subject string) (Position, bool) {
	idx := slices.IndexFunc(users, func(u models.User) bool { return u.ID == userID })
	if idx < 0 {
		return Position{}, false
	}
	u := users[idx]
	p := Position{UserID: u.ID, Name: u.Name, Subject: "global"}

	ranked := SortByPoints(users)
	p.Score = u.TotalPoints
	if subject != "" {
		ranked = subjectPlayers(users, subject)
		p.Subject = subject
		p.Score = u.SubjectScores[subject].Score
	}
	p.TotalUsers = len(ranked)
	p.Position = slices.IndexFunc(ranked, func(r models.User) bool { return r.ID == userID }) + 1
	return p, true
}
