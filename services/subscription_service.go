// services/subscription_service.go - premium subscriptions
package services

import (
	"context"
	"log"

	"github.com/google/uuid"

	"ingresosgo/apperr"
	"ingresosgo/models"
	"ingresosgo/store"
	"ingresosgo/subscriptions"
)

const (
	defaultPlatform     = "android"
	defaultCancelReason = "Usuario solicitó cancelación"
	replacedReason      = "Reemplazada por una nueva compra"
)

// InvalidPurchaseError is a rejected purchase token. It classifies as a
// validation error and carries the store's reason as details.
type InvalidPurchaseError struct {
	Details string
	err     error
}

func newInvalidPurchase(details string) *InvalidPurchaseError {
	return &InvalidPurchaseError{Details: details, err: apperr.Validation("Compra inválida o no verificada")}
}

func (e *InvalidPurchaseError) Error() string { return e.err.Error() + ": " + e.Details }
func (e *InvalidPurchaseError) Unwrap() error { return e.err }

type SubscriptionService struct {
	deps     Deps
	verifier subscriptions.Verifier
}

func NewSubscriptionService(d Deps, v subscriptions.Verifier) *SubscriptionService {
	return &SubscriptionService{deps: d, verifier: v}
}

type VerifyInput struct {
	UserID        string `json:"userId"`
	PurchaseToken string `json:"purchaseToken"`
	ProductID     string `json:"productId"`
	Platform      string `json:"platform"`
}

// Verify checks the purchase with the store, replaces the user's previous
// subscriptions and marks the user premium.
func (s *SubscriptionService) Verify(ctx context.Context, in VerifyInput) (*models.Subscription, error) {
	if in.UserID == "" || in.PurchaseToken == "" || in.ProductID == "" {
		return nil, apperr.Validation("Faltan parámetros requeridos")
	}
	v, err := s.verifier.VerifySubscription(ctx, in.ProductID, in.PurchaseToken)
	if err != nil {
		return nil, apperr.Internal("No se pudo verificar la suscripción", err)
	}
	if !v.Valid {
		return nil, newInvalidPurchase(v.Reason)
	}

	now := s.deps.now()
	start := v.StartTime
	if start.IsZero() {
		start = now
	}
	expiry := v.ExpiryTime
	if expiry.IsZero() {
		expiry = subscriptions.DefaultExpiry(in.ProductID, now)
	}
	platform := in.Platform
	if platform == "" {
		platform = defaultPlatform
	}

	sub := &models.Subscription{
		ID:             uuid.NewString(),
		UserID:         in.UserID,
		ProductID:      in.ProductID,
		PurchaseToken:  in.PurchaseToken,
		OrderID:        v.OrderID,
		Platform:       platform,
		Status:         models.SubscriptionActive,
		StartDate:      start.UTC(),
		ExpirationDate: expiry.UTC(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err = s.deps.Store.Update(ctx, []string{store.UserKey(in.UserID)}, func(tx *store.Tx) error {
		u, err := tx.User(in.UserID)
		if err != nil {
			return err
		}
		if _, err := tx.CancelActive(in.UserID, replacedReason, now); err != nil {
			return err
		}
		if err := tx.CreateSubscription(sub); err != nil {
			return err
		}
		u.IsPremium = true
		u.SubscriptionExpiry = &sub.ExpirationDate
		u.UpdatedAt = now
		return tx.SaveUser(u)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("💳 Subscription %s activated for user %s until %s", sub.ProductID, sub.UserID, sub.ExpirationDate.Format("2006-01-02"))
	return sub, nil
}

// UserStatus expires overdue subscriptions and reports the user's premium state.
func (s *SubscriptionService) UserStatus(ctx context.Context, userID string) (subscriptions.PremiumStatus, error) {
	if userID == "" {
		return subscriptions.PremiumStatus{}, apperr.Validation("ID de usuario requerido")
	}
	if _, err := s.ExpireDue(ctx); err != nil {
		return subscriptions.PremiumStatus{}, err
	}
	var active *models.Subscription
	err := s.deps.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		active, err = tx.ActiveSubscription(userID)
		return err
	})
	if err != nil {
		return subscriptions.PremiumStatus{}, err
	}
	return subscriptions.Status(active, s.deps.now()), nil
}

// Cancel cancels every active subscription of the user and drops premium.
func (s *SubscriptionService) Cancel(ctx context.Context, userID, reason string) error {
	if userID == "" {
		return apperr.Validation("ID de usuario requerido")
	}
	if reason == "" {
		reason = defaultCancelReason
	}
	now := s.deps.now()
	return s.deps.Store.Update(ctx, []string{store.UserKey(userID)}, func(tx *store.Tx) error {
		u, err := tx.User(userID)
		if err != nil {
			return err
		}
		if _, err := tx.CancelActive(userID, reason, now); err != nil {
			return err
		}
		u.IsPremium = false
		u.UpdatedAt = now
		return tx.SaveUser(u)
	})
}

func (s *SubscriptionService) Stats(ctx context.Context) (subscriptions.Stats, error) {
	var (
		subs  []models.Subscription
		users []models.User
	)
	err := s.deps.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		if subs, err = tx.Subscriptions(""); err != nil {
			return err
		}
		users, err = tx.Users()
		return err
	})
	if err != nil {
		return subscriptions.Stats{}, err
	}
	return subscriptions.ComputeStats(subs, users, s.deps.now()), nil
}

// ExpireDue marks overdue subscriptions expired and removes premium from
// users left without an active subscription. It returns how many users lost it.
func (s *SubscriptionService) ExpireDue(ctx context.Context) (int, error) {
	now := s.deps.now()
	var userIDs []string
	err := s.deps.Store.Update(ctx, []string{"subscriptions:expiry"}, func(tx *store.Tx) error {
		var err error
		userIDs, err = tx.ExpireDue(now)
		return err
	})
	if err != nil {
		return 0, err
	}

	downgraded := 0
	for _, id := range userIDs {
		err := s.deps.Store.Update(ctx, []string{store.UserKey(id)}, func(tx *store.Tx) error {
			active, err := tx.ActiveSubscription(id)
			if err != nil || active != nil {
				return err
			}
			u, err := tx.User(id)
			if err != nil {
				return err
			}
			if !u.IsPremium {
				return nil
			}
			u.IsPremium = false
			u.UpdatedAt = now
			downgraded++
			return tx.SaveUser(u)
		})
		if err != nil && apperr.KindOf(err) != apperr.KindNotFound {
			return downgraded, err
		}
	}
	return downgraded, nil
}
