// handlers/ranking.go - global and per-subject rankings
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"ingresosgo/utils"
)

// GetRanking ranks players by total points, or by subject score when
// ?subject is given
// GET /api/ranking?limit=&subject=
func GetRanking(c *fiber.Ctx) error {
	limit := utils.QueryInt(c, "limit", 10)
	subject := c.Query("subject")

	var (
		data  interface{}
		count int
		total int
		err   error
	)
	if subject != "" {
		entries, n, e := rankingService.BySubject(c.UserContext(), subject, limit)
		data, count, total, err = entries, len(entries), n, e
	} else {
		entries, n, e := rankingService.Global(c.UserContext(), limit)
		data, count, total, err = entries, len(entries), n, e
		subject = "global"
	}
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.Map{
		"count":   count,
		"total":   total,
		"subject": subject,
		"data":    data,
	})
}

// GetUserRanking reports where a player stands
// GET /api/ranking/user/:id?subject=
func GetUserRanking(c *fiber.Ctx) error {
	pos, err := rankingService.UserPosition(c.UserContext(), c.Params("id"), c.Query("subject"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONSuccess(c, pos)
}

// GetRankingStats summarizes players and subjects
// GET /api/ranking/stats
func GetRankingStats(c *fiber.Ctx) error {
	ov, err := rankingService.Overview(c.UserContext())
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONSuccess(c, ov)
}

// GetSubjectLeaderboard returns the top of one subject
// GET /api/ranking/leaderboard/:subject?period=
func GetSubjectLeaderboard(c *fiber.Ctx) error {
	subject := decodedParam(c, "subject")
	entries, err := rankingService.SubjectLeaderboard(c.UserContext(), subject)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.Map{
		"subject": subject,
		"period":  c.Query("period", "all"),
		"count":   len(entries),
		"data":    entries,
	})
}
