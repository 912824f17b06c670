// handlers/subscriptions.go - premium purchases
package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"ingresosgo/services"
	"ingresosgo/utils"
)

type CancelSubscriptionRequest struct {
	UserID string `json:"userId"`
	Reason string `json:"reason"`
}

// VerifySubscription validates a store purchase and activates premium
// POST /api/subscriptions/verify
func VerifySubscription(c *fiber.Ctx) error {
	var req services.VerifyInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	sub, err := subscriptionService.Verify(c.UserContext(), req)
	if err != nil {
		var invalid *services.InvalidPurchaseError
		if errors.As(err, &invalid) {
			return utils.JSON(c, fiber.StatusBadRequest, fiber.Map{
				"success": false,
				"error":   "Compra inválida o no verificada",
				"details": invalid.Details,
			})
		}
		return utils.Fail(c, err)
	}
	return utils.JSON(c, fiber.StatusOK, fiber.Map{
		"success": true,
		"message": "Suscripción verificada y activada",
		"subscription": fiber.Map{
			"id":             sub.ID,
			"status":         sub.Status,
			"expirationDate": sub.ExpirationDate.Format(time.RFC3339),
			"productId":      sub.ProductID,
		},
	})
}

// GetUserSubscription reports the player's premium state
// GET /api/subscriptions/user/:userId
func GetUserSubscription(c *fiber.Ctx) error {
	st, err := subscriptionService.UserStatus(c.UserContext(), c.Params("userId"))
	if err != nil {
		return utils.Fail(c, err)
	}
	var sub interface{}
	if s := st.Subscription; s != nil {
		sub = fiber.Map{
			"id":             s.ID,
			"productId":      s.ProductID,
			"status":         s.Status,
			"startDate":      s.StartDate.Format(time.RFC3339),
			"expirationDate": s.ExpirationDate.Format(time.RFC3339),
			"daysRemaining":  st.DaysRemaining,
		}
	}
	return utils.JSONSuccess(c, fiber.Map{
		"hasSubscription": st.Subscription != nil,
		"isPremium":       st.IsPremium,
		"subscription":    sub,
	})
}

// CancelSubscription cancels the active subscription and drops premium
// POST /api/subscriptions/cancel
func CancelSubscription(c *fiber.Ctx) error {
	var req CancelSubscriptionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := subscriptionService.Cancel(c.UserContext(), req.UserID, req.Reason); err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONMessage(c, fiber.StatusOK, "Suscripción cancelada exitosamente", nil)
}

// GetSubscriptionStats counts subscriptions by state and product
// GET /api/subscriptions/stats
func GetSubscriptionStats(c *fiber.Ctx) error {
	st, err := subscriptionService.Stats(c.UserContext())
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONSuccess(c, st)
}
