// questions/quiz.go - quiz assembly and answer grading
package questions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"ingresosgo/models"
	"ingresosgo/progress"
	"ingresosgo/scoring"
)

type Quiz struct {
	ID             string            `json:"id"`
	Subject        string            `json:"subject"`
	ExamType       string            `json:"examType"`
	Questions      []models.Question `json:"questions"`
	TotalQuestions int               `json:"totalQuestions"`
	StartTime      time.Time         `json:"startTime"`
	TimeLimit      int               `json:"timeLimit"`
	HasTimeLimit   bool              `json:"hasTimeLimit"`
}

// NewQuiz assembles a quiz from qs, optionally shuffled with rng and limited
// to count questions (count < 0 keeps all).
func NewQuiz(id, subject, examType string, qs []models.Question, shuffle bool, count int, rng *rand.Rand, now time.Time) Quiz {
	selected := append([]models.Question(nil), qs...)
	if shuffle {
		if rng == nil {
			rng = rand.New(rand.NewPCG(uint64(now.UnixNano()), 0))
		}
		rng.Shuffle(len(selected), func(i, j int) {
			selected[i], selected[j] = selected[j], selected[i]
		})
	}
	if count >= 0 && count < len(selected) {
		selected = selected[:count]
	}
	cfg := progress.ConfigFor(subject)
	return Quiz{
		ID:             id,
		Subject:        subject,
		ExamType:       examType,
		Questions:      selected,
		TotalQuestions: len(selected),
		StartTime:      now,
		TimeLimit:      cfg.TimeLimit,
		HasTimeLimit:   cfg.HasTimeLimit,
	}
}

// Selection is a submitted answer: either the option text or its 0-based index.
type Selection struct {
	Text  string
	Index int
	IsIdx bool
}

func (s *Selection) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &s.Text)
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("selectedAnswer must be a string or an integer index")
	}
	s.Index, s.IsIdx = n, true
	return nil
}

func (s Selection) MarshalJSON() ([]byte, error) {
	if s.IsIdx {
		return json.Marshal(s.Index)
	}
	return json.Marshal(s.Text)
}

type Answer struct {
	QuestionID     string    `json:"questionId"`
	SelectedAnswer Selection `json:"selectedAnswer"`
	TimeSpent      int       `json:"timeSpent,omitempty"`
}

type GradedAnswer struct {
	QuestionID    string    `json:"questionId"`
	UserAnswer    Selection `json:"userAnswer"`
	CorrectAnswer *string   `json:"correctAnswer"`
	IsCorrect     bool      `json:"isCorrect"`
	Points        int       `json:"points"`
	Question      string    `json:"question,omitempty"`
}

type Grade struct {
	Answers        []GradedAnswer `json:"answers"`
	TotalQuestions int            `json:"totalQuestions"`
	CorrectAnswers int            `json:"correctAnswers"`
	TotalScore     int            `json:"totalScore"`
	Accuracy       int            `json:"accuracy"`
}

// Lookup finds a question by id.
type Lookup interface {
	Get(id string) (models.Question, bool)
}

// GradeAnswers scores answers against the catalog. Unknown questions count as
// wrong. Per-answer time wins over the quiz-level timeSpent.
func GradeAnswers(lookup Lookup, answers []Answer, timeSpent int) Grade {
	g := Grade{Answers: make([]GradedAnswer, 0, len(answers)), TotalQuestions: len(answers)}
	for _, a := range answers {
		ga := GradedAnswer{QuestionID: a.QuestionID, UserAnswer: a.SelectedAnswer}
		q, ok := lookup.Get(a.QuestionID)
		if ok {
			correct := q.CorrectAnswer
			ga.CorrectAnswer = &correct
			ga.Question = q.Question
			if a.SelectedAnswer.IsIdx {
				ga.IsCorrect = a.SelectedAnswer.Index == q.CorrectIndex()
			} else {
				ga.IsCorrect = CleanText(a.SelectedAnswer.Text) == q.CorrectAnswer
			}
		}
		if ga.IsCorrect {
			t := timeSpent
			if a.TimeSpent > 0 {
				t = a.TimeSpent
			}
			ga.Points = scoring.QuizPoints(max(q.Difficulty, 1), t)
			g.CorrectAnswers++
			g.TotalScore += ga.Points
		}
		g.Answers = append(g.Answers, ga)
	}
	if g.TotalQuestions > 0 {
		g.Accuracy = int(math.Round(float64(g.CorrectAnswers) / float64(g.TotalQuestions) * 100))
	}
	return g
}
