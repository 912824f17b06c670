// handlers/users.go - login streak and score updates for a player
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"ingresosgo/services"
	"ingresosgo/utils"
)

// CheckLogin applies the streak rule for a login happening now
// POST /api/users/:id/check-login
func CheckLogin(c *fiber.Ctx) error {
	u, change, err := userService.CheckLogin(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.Map{
		"data":        u,
		"streakState": change,
	})
}

// RecordQuizResult folds an externally graded quiz into the player's scores
// POST /api/users/:id/quiz-result
func RecordQuizResult(c *fiber.Ctx) error {
	var req services.QuizScoreInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	u, err := userService.RecordQuizScore(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONMessage(c, fiber.StatusOK, "Puntuación actualizada exitosamente", fiber.Map{
		"user":           u,
		"scoreAdded":     req.Score,
		"newTotalPoints": u.TotalPoints,
	})
}
