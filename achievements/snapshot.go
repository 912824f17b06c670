// achievements/snapshot.go - user statistics consumed by badge and challenge predicates
package achievements

import (
	"time"

	"ingresosgo/models"
	"ingresosgo/progress"
)

// defaultQuizLength is assumed for legacy quiz results stored without totalQuestions.
const defaultQuizLength = 10

// SubjectStats describes quiz activity in one subject.
type SubjectStats struct {
	GamesPlayed int     `json:"gamesPlayed"`
	Accuracy    float64 `json:"accuracy"`
	correct     int
	questions   int
}

// PartSubjectStats describes completed parts in one subject.
type PartSubjectStats struct {
	Completed int     `json:"completed"`
	Accuracy  float64 `json:"accuracy"`
	score     int
	possible  int
}

// Snapshot is the read-only statistics view evaluated by badges and challenges.
type Snapshot struct {
	TotalGames    int                     `json:"totalGames"`
	TotalPoints   int                     `json:"totalPoints"`
	LoginStreak   int                     `json:"loginStreak"`
	Subjects      map[string]SubjectStats `json:"subjectStats"`
	HasPerfectRun bool                    `json:"hasPerfectRun"`

	PartsCompleted    int                         `json:"partsCompleted"`
	PartAccuracy      float64                     `json:"partAccuracy"`
	PerfectParts      int                         `json:"perfectParts"`
	HighAccuracyParts int                         `json:"highAccuracyParts"`
	PartSubjects      map[string]PartSubjectStats `json:"partSubjects"`

	attempts []models.PartResult
}

// BuildSnapshot derives a Snapshot. Quiz results and part attempts both count as games.
func BuildSnapshot(u *models.User, quizzes []models.QuizResult, records []models.PartProgress, attempts []models.PartResult) Snapshot {
	s := Snapshot{
		Subjects:     make(map[string]SubjectStats),
		PartSubjects: make(map[string]PartSubjectStats),
		attempts:     attempts,
	}
	if u != nil {
		s.TotalPoints = u.TotalPoints
		s.LoginStreak = u.LoginStreak
	}

	addGame := func(subject string, correct, total int) {
		if total <= 0 {
			total = defaultQuizLength
		}
		s.TotalGames++
		if correct >= total {
			s.HasPerfectRun = true
		}
		st := s.Subjects[subject]
		st.GamesPlayed++
		st.correct += correct
		st.questions += total
		s.Subjects[subject] = st
	}
	for _, q := range quizzes {
		addGame(q.Subject, q.CorrectAnswers, q.TotalQuestions)
	}
	for _, a := range attempts {
		addGame(a.Subject, a.Score, a.TotalQuestions)
	}
	for name, st := range s.Subjects {
		st.Accuracy = ratio(st.correct, st.questions)
		s.Subjects[name] = st
	}

	var score, possible int
	for _, rec := range records {
		cfg := progress.ConfigFor(rec.Subject)
		for _, part := range rec.Parts {
			if !part.Completed {
				continue
			}
			size := part.TotalQuestions
			if size <= 0 {
				size = cfg.QuestionsPerPart
			}
			best := min(part.BestScore, size)
			s.PartsCompleted++
			score += best
			possible += size
			if best == size {
				s.PerfectParts++
			}
			if ratio(best, size) >= cfg.UnlockThreshold {
				s.HighAccuracyParts++
			}
			ps := s.PartSubjects[rec.Subject]
			ps.Completed++
			ps.score += best
			ps.possible += size
			s.PartSubjects[rec.Subject] = ps
		}
	}
	s.PartAccuracy = ratio(score, possible)
	for name, ps := range s.PartSubjects {
		ps.Accuracy = ratio(ps.score, ps.possible)
		s.PartSubjects[name] = ps
	}
	return s
}

// PerfectAttemptsSince counts perfect part attempts completed at or after since.
func (s Snapshot) PerfectAttemptsSince(since time.Time) int {
	n := 0
	for _, a := range s.attempts {
		if a.TotalQuestions > 0 && a.Score == a.TotalQuestions && !a.CompletedAt.Before(since) {
			n++
		}
	}
	return n
}

// FastParts counts distinct parts cleared with at least minAccuracy within
// maxTime seconds. Attempts without a reported time are not counted.
func (s Snapshot) FastParts(maxTime int, minAccuracy float64) int {
	type partID struct {
		subject, examType string
		number            int
	}
	seen := make(map[partID]bool)
	for _, a := range s.attempts {
		if a.TotalQuestions <= 0 || a.TimeSpent <= 0 {
			continue
		}
		if maxTime > 0 && a.TimeSpent > maxTime {
			continue
		}
		if ratio(a.Score, a.TotalQuestions) < minAccuracy {
			continue
		}
		seen[partID{a.Subject, a.ExamType, a.PartNumber}] = true
	}
	return len(seen)
}

func ratio(n, d int) float64 {
	if d <= 0 {
		return 0
	}
	return float64(n) / float64(d)
}
