// store/subscriptions.go
package store

import (
	"time"

	"ingresosgo/models"
)

func (t *Tx) CreateSubscription(s *models.Subscription) error {
	return internal(t.db.Create(s).Error)
}

// ActiveSubscription returns the newest active subscription of a user, or nil.
func (t *Tx) ActiveSubscription(userID string) (*models.Subscription, error) {
	var s models.Subscription
	found, err := findOne(t.locking().Order("expiration_date DESC"), &s,
		"user_id = ? AND status = ?", userID, models.SubscriptionActive)
	if err != nil || !found {
		return nil, err
	}
	return &s, nil
}

// CancelActive marks every active subscription of a user as cancelled and
// returns how many rows changed.
func (t *Tx) CancelActive(userID, reason string, now time.Time) (int64, error) {
	res := t.db.Model(&models.Subscription{}).
		Where("user_id = ? AND status = ?", userID, models.SubscriptionActive).
		Updates(map[string]any{
			"status":        models.SubscriptionCancelled,
			"cancelled_at":  now,
			"cancel_reason": reason,
			"updated_at":    now,
		})
	return res.RowsAffected, internal(res.Error)
}

func (t *Tx) Subscriptions(userID string) ([]models.Subscription, error) {
	q := t.db.Order("created_at DESC")
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	var ss []models.Subscription
	if err := q.Find(&ss).Error; err != nil {
		return nil, internal(err)
	}
	return ss, nil
}

// ExpireDue flips active subscriptions past their expiration date to expired
// and returns the affected user ids.
func (t *Tx) ExpireDue(now time.Time) ([]string, error) {
	var due []models.Subscription
	if err := t.db.Where("status = ? AND expiration_date < ?", models.SubscriptionActive, now).Find(&due).Error; err != nil {
		return nil, internal(err)
	}
	if len(due) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(due))
	seen := map[string]bool{}
	subIDs := make([]string, 0, len(due))
	for _, s := range due {
		subIDs = append(subIDs, s.ID)
		if !seen[s.UserID] {
			seen[s.UserID] = true
			ids = append(ids, s.UserID)
		}
	}
	err := t.db.Model(&models.Subscription{}).
		Where("id IN ?", subIDs).
		Updates(map[string]any{"status": models.SubscriptionExpired, "updated_at": now}).Error
	if err != nil {
		return nil, internal(err)
	}
	return ids, nil
}
