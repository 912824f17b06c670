// handlers/admin/maintenance.go - catalog reloads and background jobs on demand
package admin

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"ingresosgo/apperr"
	"ingresosgo/services"
	"ingresosgo/utils"
)

// ReloadQuestions rereads the question files without a restart
func ReloadQuestions(c *fiber.Ctx) error {
	report, err := catalog.Load(c.UserContext())
	if err != nil {
		return utils.Fail(c, apperr.Internal("Error recargando preguntas", err))
	}
	log.Printf("📚 Question catalog reloaded by %v: %d loaded, %d skipped", c.Locals("username"), report.Loaded, report.Skipped)
	return utils.JSONMessage(c, fiber.StatusOK, "Preguntas recargadas", report)
}

// GetSubscriptionStats counts subscriptions by state and product
func GetSubscriptionStats(c *fiber.Ctx) error {
	st, err := subscriptionService.Stats(c.UserContext())
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONSuccess(c, st)
}

// ManualCleanup runs the subscription expiry sweep now
func ManualCleanup(c *fiber.Ctx) error {
	svc := services.GetCleanupService()
	if svc == nil {
		return utils.JSONError(c, fiber.StatusServiceUnavailable, "Servicio no disponible")
	}
	n, err := svc.RunOnce(c.UserContext())
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONMessage(c, fiber.StatusOK, "Limpieza ejecutada", fiber.Map{"downgradedUsers": n})
}

// RebuildRanking reloads the cached leaderboard from the database
func RebuildRanking(c *fiber.Ctx) error {
	if err := rankingService.RebuildCache(c.UserContext()); err != nil {
		return utils.Fail(c, apperr.Internal("Error reconstruyendo el ranking", err))
	}
	return utils.JSONMessage(c, fiber.StatusOK, "Ranking reconstruido", nil)
}
