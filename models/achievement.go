// models/achievement.go - badge catalog
package models

import "time"

const (
	BadgeTypeAchievement = "achievement"
	BadgeTypeStreak      = "streak"
	BadgeTypeSubject     = "subject"
	BadgeTypeScore       = "score"
	BadgeTypePerformance = "performance"
)

// BadgeRequirements holds the predicate parameters; which fields apply depends on the badge type.
type BadgeRequirements struct {
	GamesPlayed int     `json:"gamesPlayed,omitempty"`
	LoginStreak int     `json:"loginStreak,omitempty"`
	Subject     string  `json:"subject,omitempty"`
	Accuracy    float64 `json:"accuracy,omitempty"`
	TotalPoints int     `json:"totalPoints,omitempty"`
	PerfectQuiz bool    `json:"perfectQuiz,omitempty"`
}

type Badge struct {
	ID           string            `gorm:"primaryKey;size:64" json:"id"`
	Name         string            `gorm:"not null" json:"name"`
	Description  string            `json:"description"`
	Icon         string            `json:"icon"`
	Rarity       string            `gorm:"size:20;index" json:"rarity"`
	Type         string            `gorm:"size:20" json:"type"`
	Requirements BadgeRequirements `gorm:"serializer:json;type:text" json:"requirements"`
	CreatedAt    time.Time         `json:"createdAt"`
}
