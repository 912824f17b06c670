// handlers/badges.go - badge catalog and unlocking
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"ingresosgo/utils"
)

// GetSystemBadges lists every badge with its rarity decoration
// GET /api/badges/system
func GetSystemBadges(c *fiber.Ctx) error {
	badges, err := achievementService.SystemBadges(c.UserContext())
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONSuccess(c, badges)
}

// GetUserBadges groups the catalog by rarity with the player's unlocks
// GET /api/badges/user/:userId
func GetUserBadges(c *fiber.Ctx) error {
	out, err := achievementService.UserBadges(c.UserContext(), c.Params("userId"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONSuccess(c, out)
}

// CheckBadges unlocks whatever the player's statistics now satisfy
// POST /api/badges/check/:userId
func CheckBadges(c *fiber.Ctx) error {
	out, err := achievementService.CheckBadges(c.UserContext(), c.Params("userId"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONSuccess(c, out)
}
