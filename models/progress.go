// models/progress.go
package models

import (
	"fmt"
	"time"
)

// PartState is the stored state of one part of a subject's question bank.
type PartState struct {
	Completed      bool       `json:"completed"`
	Unlocked       bool       `json:"unlocked"`
	Score          int        `json:"score"`
	Attempts       int        `json:"attempts"`
	BestScore      int        `json:"bestScore"`
	TotalQuestions int        `json:"totalQuestions,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

// PartProgress is the unlock state machine instance for one (user, subject, examType).
type PartProgress struct {
	ID        uint                 `gorm:"primaryKey" json:"-"`
	UserID    string               `gorm:"not null;size:36;uniqueIndex:idx_progress_key" json:"userId"`
	Subject   string               `gorm:"not null;size:100;uniqueIndex:idx_progress_key" json:"subject"`
	ExamType  string               `gorm:"not null;size:20;uniqueIndex:idx_progress_key" json:"examType"`
	Parts     map[string]PartState `gorm:"serializer:json;type:text" json:"progress"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

func (PartProgress) TableName() string {
	return "user_progress"
}

// ProgressKey is the natural key of a PartProgress record.
type ProgressKey struct {
	UserID   string
	Subject  string
	ExamType string
}

func (k ProgressKey) String() string {
	return fmt.Sprintf("progress:%s:%s:%s", k.UserID, k.Subject, k.ExamType)
}

func (p *PartProgress) Key() ProgressKey {
	return ProgressKey{UserID: p.UserID, Subject: p.Subject, ExamType: p.ExamType}
}
