// models/subscription.go
package models

import "time"

const (
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
	SubscriptionExpired   = "expired"
)

type Subscription struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	UserID         string     `gorm:"not null;size:36;index" json:"userId"`
	ProductID      string     `gorm:"not null;size:100" json:"productId"`
	PurchaseToken  string     `gorm:"not null;type:text" json:"-"`
	OrderID        string     `gorm:"size:100" json:"orderId,omitempty"`
	Platform       string     `gorm:"size:20;default:'android'" json:"platform"`
	Status         string     `gorm:"size:20;index" json:"status"`
	StartDate      time.Time  `json:"startDate"`
	ExpirationDate time.Time  `gorm:"index" json:"expirationDate"`
	CancelledAt    *time.Time `json:"cancelledAt,omitempty"`
	CancelReason   string     `json:"cancelReason,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}
