// models/challenge.go - challenge catalog and per-user state
package models

import (
	"time"
)

const (
	ChallengeTypeStreak      = "streak"
	ChallengeTypePerformance = "performance"
	ChallengeTypeSubject     = "subject"
	ChallengeTypeSpeed       = "speed"
	ChallengeTypeExploration = "exploration"
)

// Window status shared by challenges and tournaments.
const (
	StatusUpcoming = "upcoming"
	StatusActive   = "active"
	StatusFinished = "finished"
)

type ChallengeRequirements struct {
	LoginStreak       int      `json:"loginStreak,omitempty"`
	QuizzesCompleted  int      `json:"quizzesCompleted,omitempty"`
	MinAccuracy       float64  `json:"minAccuracy,omitempty"`
	PerfectQuizzes    int      `json:"perfectQuizzes,omitempty"`
	Timeframe         int      `json:"timeframe,omitempty"` // days
	Subject           string   `json:"subject,omitempty"`
	FastQuizzes       int      `json:"fastQuizzes,omitempty"`
	MaxTime           int      `json:"maxTime,omitempty"` // seconds
	Subjects          []string `json:"subjects,omitempty"`
	MinQuizPerSubject int      `json:"minQuizPerSubject,omitempty"`
}

type ChallengeRewards struct {
	Points     int `json:"points"`
	Experience int `json:"experience"`
}

// Challenge is a catalog row. Status is derived from the date window, never stored.
type Challenge struct {
	ID           string                `gorm:"primaryKey;size:64" json:"id"`
	Name         string                `gorm:"not null" json:"name"`
	Description  string                `json:"description"`
	Icon         string                `json:"icon"`
	Type         string                `gorm:"size:20;index" json:"type"`
	Difficulty   string                `gorm:"size:20" json:"difficulty"`
	Requirements ChallengeRequirements `gorm:"serializer:json;type:text" json:"requirements"`
	Rewards      ChallengeRewards      `gorm:"serializer:json;type:text" json:"rewards"`
	StartDate    time.Time             `json:"startDate"`
	EndDate      time.Time             `json:"endDate"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// ChallengeCompletion is one member of a challenge's completedBy set.
type ChallengeCompletion struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	ChallengeID string    `gorm:"not null;size:64;uniqueIndex:idx_challenge_user" json:"challengeId"`
	UserID      string    `gorm:"not null;size:36;uniqueIndex:idx_challenge_user;index" json:"userId"`
	CompletedAt time.Time `json:"completedAt"`
}

// ChallengeProgress is the advisory, display-only snapshot for one user.
type ChallengeProgress struct {
	ID          uint           `gorm:"primaryKey" json:"-"`
	ChallengeID string         `gorm:"not null;size:64;uniqueIndex:idx_challenge_progress" json:"challengeId"`
	UserID      string         `gorm:"not null;size:36;uniqueIndex:idx_challenge_progress" json:"userId"`
	Snapshot    map[string]any `gorm:"serializer:json;type:text" json:"snapshot"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func (Challenge) TableName() string {
	return "challenges"
}

func (ChallengeCompletion) TableName() string {
	return "challenge_completions"
}

func (ChallengeProgress) TableName() string {
	return "challenge_progress"
}

// WindowStatus derives the status of a dated window at now. Both ends are inclusive.
func WindowStatus(start, end, now time.Time) string {
	switch {
	case now.Before(start):
		return StatusUpcoming
	case now.After(end):
		return StatusFinished
	default:
		return StatusActive
	}
}

func (c Challenge) Status(now time.Time) string {
	return WindowStatus(c.StartDate, c.EndDate, now)
}
