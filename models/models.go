// models/models.go - question catalog entries and result logs
package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ExamTypeNormal  = "normal"
	ExamTypeGeneral = "general"
)

// Question is immutable content served from the question catalog.
type Question struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Subject       string   `json:"subject"`
	Type          string   `json:"type"`
	Difficulty    int      `json:"difficulty"`
	Explanation   string   `json:"explanation,omitempty"`
}

// CorrectIndex returns the position of the correct answer in Options, or -1.
func (q Question) CorrectIndex() int {
	for i, o := range q.Options {
		if o == q.CorrectAnswer {
			return i
		}
	}
	return -1
}

// QuizResult is one submitted free quiz.
type QuizResult struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	UserID         string         `gorm:"not null;size:36;index" json:"userId"`
	QuizID         string         `gorm:"size:64" json:"quizId"`
	Subject        string         `gorm:"size:100;index" json:"subject"`
	TotalQuestions int            `json:"totalQuestions"`
	CorrectAnswers int            `json:"correctAnswers"`
	TotalScore     int            `json:"totalScore"`
	TimeSpent      int            `json:"timeSpent"`
	Accuracy       int            `json:"accuracy"`
	Answers        datatypes.JSON `json:"answers"`
	CompletedAt    time.Time      `gorm:"index" json:"completedAt"`
}

// PartResult is one part attempt, kept for history and activity stats.
type PartResult struct {
	ID               string         `gorm:"primaryKey;size:36" json:"id"`
	UserID           string         `gorm:"not null;size:36;index" json:"userId"`
	Subject          string         `gorm:"size:100" json:"subject"`
	ExamType         string         `gorm:"size:20" json:"examType"`
	PartNumber       int            `json:"partNumber"`
	Score            int            `json:"score"`
	TotalQuestions   int            `json:"totalQuestions"`
	Accuracy         int            `json:"accuracy"`
	TimeSpent        int            `json:"timeSpent"`
	PointsEarned     int            `json:"pointsEarned"`
	PartCompleted    bool           `json:"partCompleted"`
	NextPartUnlocked bool           `json:"nextPartUnlocked"`
	Attempts         int            `json:"attempts"`
	BestScore        int            `json:"bestScore"`
	Answers          datatypes.JSON `json:"answers"`
	CompletedAt      time.Time      `gorm:"index" json:"completedAt"`
}
