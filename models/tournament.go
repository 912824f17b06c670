// models/tournament.go
package models

import "time"

type TournamentPrize struct {
	First  int `json:"first"`
	Second int `json:"second"`
	Third  int `json:"third"`
}

type Tournament struct {
	ID              string                  `gorm:"primaryKey;size:64" json:"id"`
	Name            string                  `gorm:"not null" json:"name"`
	Description     string                  `json:"description"`
	Subject         string                  `gorm:"size:100" json:"subject"`
	Type            string                  `gorm:"size:20" json:"type"`
	StartDate       time.Time               `json:"startDate"`
	EndDate         time.Time               `json:"endDate"`
	MaxParticipants int                     `json:"maxParticipants"`
	Prize           TournamentPrize         `gorm:"serializer:json;type:text" json:"prize"`
	Rules           []string                `gorm:"serializer:json;type:text" json:"rules"`
	Participants    []TournamentParticipant `gorm:"foreignKey:TournamentID" json:"participants"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

type TournamentParticipant struct {
	ID           uint       `gorm:"primaryKey" json:"-"`
	TournamentID string     `gorm:"not null;size:64;uniqueIndex:idx_tournament_user" json:"-"`
	UserID       string     `gorm:"not null;size:36;uniqueIndex:idx_tournament_user" json:"userId"`
	Name         string     `json:"name"`
	Avatar       string     `json:"avatar"`
	Score        int        `gorm:"default:0" json:"score"`
	Seq          int        `gorm:"not null" json:"-"`
	JoinedAt     time.Time  `json:"joinedAt"`
	LastUpdate   *time.Time `json:"lastUpdate,omitempty"`
}

func (t Tournament) Status(now time.Time) string {
	return WindowStatus(t.StartDate, t.EndDate, now)
}
