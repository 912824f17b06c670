// handlers/challenges.go - timed challenges
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"ingresosgo/utils"
)

type CompleteChallengeRequest struct {
	UserID string `json:"userId"`
}

// GetChallenges lists challenges with their derived status
// GET /api/challenges?status=active|upcoming|expired
func GetChallenges(c *fiber.Ctx) error {
	cs, err := achievementService.Challenges(c.UserContext(), c.Query("status"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONSuccess(c, cs)
}

// GetUserChallenges returns every challenge with the player's progress
// GET /api/challenges/user/:userId
func GetUserChallenges(c *fiber.Ctx) error {
	cs, err := achievementService.UserChallenges(c.UserContext(), c.Params("userId"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONSuccess(c, cs)
}

// CompleteChallenge claims the rewards of a challenge
// POST /api/challenges/:id/complete
func CompleteChallenge(c *fiber.Ctx) error {
	var req CompleteChallengeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	out, err := achievementService.CompleteChallenge(c.UserContext(), c.Params("id"), req.UserID)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONMessage(c, fiber.StatusOK, "Desafío completado exitosamente", out)
}

// UpdateChallengeProgress refreshes the player's progress snapshots
// POST /api/challenges/update-progress/:userId
func UpdateChallengeProgress(c *fiber.Ctx) error {
	out, err := achievementService.UpdateProgress(c.UserContext(), c.Params("userId"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONSuccess(c, out)
}
