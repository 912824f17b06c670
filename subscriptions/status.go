// subscriptions/status.go
package subscriptions

import (
	"math"
	"slices"
	"time"

	"ingresosgo/models"
)

const (
	ProductMonthly = "premium_monthly"
	ProductYearly  = "premium_yearly"
)

// DefaultExpiry is used when the store did not report an expiry time.
func DefaultExpiry(productID string, now time.Time) time.Time {
	if productID == ProductYearly {
		return now.AddDate(1, 0, 0)
	}
	return now.AddDate(0, 1, 0)
}

type PremiumStatus struct {
	IsPremium     bool
	Subscription  *models.Subscription
	DaysRemaining int
}

// Status evaluates the newest active subscription at now. Days remaining
// are rounded up.
func Status(active *models.Subscription, now time.Time) PremiumStatus {
	if active == nil {
		return PremiumStatus{}
	}
	st := PremiumStatus{Subscription: active}
	if now.Before(active.ExpirationDate) {
		st.IsPremium = true
		st.DaysRemaining = int(math.Ceil(active.ExpirationDate.Sub(now).Hours() / 24))
	}
	return st
}

type ProductBreakdown struct {
	Monthly int `json:"monthly"`
	Yearly  int `json:"yearly"`
}

type RecentSubscription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type Stats struct {
	TotalSubscriptions     int                  `json:"totalSubscriptions"`
	ActiveSubscriptions    int                  `json:"activeSubscriptions"`
	CancelledSubscriptions int                  `json:"cancelledSubscriptions"`
	ExpiredSubscriptions   int                  `json:"expiredSubscriptions"`
	TotalUsers             int                  `json:"totalUsers"`
	PremiumUsers           int                  `json:"premiumUsers"`
	SubscriptionRate       float64              `json:"subscriptionRate"` // percent, two decimals
	ProductBreakdown       ProductBreakdown     `json:"productBreakdown"`
	RecentSubscriptions    []RecentSubscription `json:"recentSubscriptions"`
}

func ComputeStats(subs []models.Subscription, users []models.User, now time.Time) Stats {
	st := Stats{
		TotalSubscriptions:  len(subs),
		TotalUsers:          len(users),
		RecentSubscriptions: []RecentSubscription{},
	}
	for _, s := range subs {
		switch {
		case s.Status == models.SubscriptionActive && now.Before(s.ExpirationDate):
			st.ActiveSubscriptions++
		case s.Status == models.SubscriptionCancelled:
			st.CancelledSubscriptions++
		case s.Status == models.SubscriptionExpired || s.Status == models.SubscriptionActive:
			st.ExpiredSubscriptions++
		}
		switch s.ProductID {
		case ProductMonthly:
			st.ProductBreakdown.Monthly++
		case ProductYearly:
			st.ProductBreakdown.Yearly++
		}
	}
	for _, u := range users {
		if u.IsPremium {
			st.PremiumUsers++
		}
	}
	if len(users) > 0 {
		st.SubscriptionRate = math.Round(float64(st.ActiveSubscriptions)/float64(len(users))*100*100) / 100
	}

	recent := slices.Clone(subs)
	slices.SortStableFunc(recent, func(a, b models.Subscription) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(recent) > 10 {
		recent = recent[:10]
	}
	for _, s := range recent {
		st.RecentSubscriptions = append(st.RecentSubscriptions, RecentSubscription{
			ID: s.ID, UserID: s.UserID, ProductID: s.ProductID, Status: s.Status, CreatedAt: s.CreatedAt,
		})
	}
	return st
}
