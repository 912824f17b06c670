// models/user.go
package models

import (
	"time"
)

// SubjectScore is the per-subject aggregate kept on the user row.
type SubjectScore struct {
	Score          int `json:"score"`
	GamesPlayed    int `json:"gamesPlayed"`
	CorrectAnswers int `json:"correctAnswers"`
	BestScore      int `json:"bestScore"`
}

// UnlockedBadge records when a badge was earned. UnlockedAt never changes once set.
type UnlockedBadge struct {
	BadgeID    string    `json:"id"`
	UnlockedAt time.Time `json:"unlockedAt"`
}

type User struct {
	ID           string  `gorm:"primaryKey;size:36" json:"id"`
	Username     string  `gorm:"uniqueIndex;not null;size:100" json:"username"`
	PasswordHash *string `gorm:"column:password_hash" json:"-"`
	Name         string  `gorm:"not null;size:150" json:"name"`
	Avatar       string  `json:"avatar"`
	Gender       string  `gorm:"size:20;default:'other'" json:"gender"`
	Email        string  `gorm:"size:200" json:"email"`
	IsAdmin      bool    `gorm:"default:false" json:"isAdmin"`

	// Progress aggregate
	TotalPoints   int                     `gorm:"default:0;index" json:"totalPoints"`
	DailyPoints   int                     `gorm:"default:0" json:"dailyPoints"`
	LoginStreak   int                     `json:"loginStreak"`
	LastLogin     time.Time               `json:"lastLogin"`
	SubjectScores map[string]SubjectScore `gorm:"serializer:json;type:text" json:"subjectScores"`
	Badges        []UnlockedBadge         `gorm:"serializer:json;type:text" json:"badges"`

	// Derived capability flags
	CanChooseSubject   bool `json:"canChooseSubject"`
	CanTakeGeneralExam bool `gorm:"default:false" json:"canTakeGeneralExam"`

	// Subscription
	HasVipAccess       bool       `gorm:"default:false" json:"hasVipAccess"`
	IsPremium          bool       `gorm:"default:false" json:"isPremium"`
	SubscriptionExpiry *time.Time `json:"subscriptionExpiry"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasBadge reports whether badgeID is already in the unlocked set.
func (u *User) HasBadge(badgeID string) bool {
	for _, b := range u.Badges {
		if b.BadgeID == badgeID {
			return true
		}
	}
	return false
}

// HasPassword is false for players created without credentials.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
