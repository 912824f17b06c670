// handlers/stats.go - per-player and global quiz statistics
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"ingresosgo/utils"
)

// GetUserStats aggregates a player's quiz history
// GET /api/stats/user/:userId
func GetUserStats(c *fiber.Ctx) error {
	st, err := rankingService.UserStats(c.UserContext(), c.Params("userId"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONSuccess(c, st)
}

// GetGlobalStats aggregates every stored quiz
// GET /api/stats/global
func GetGlobalStats(c *fiber.Ctx) error {
	st, err := rankingService.GlobalStats(c.UserContext())
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONSuccess(c, st)
}
