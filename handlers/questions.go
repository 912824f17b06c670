// handlers/questions.go - read-only access to the question catalog
package handlers

import (
	"math/rand/v2"

	"github.com/gofiber/fiber/v2"

	"ingresosgo/apperr"
	"ingresosgo/utils"
)

// GetQuestions lists catalog questions
// GET /api/questions?subject=&type=&limit=&random=
func GetQuestions(c *fiber.Ctx) error {
	subject := c.Query("subject")
	examType := c.Query("type")
	qs := catalog.Filter(subject, examType)

	if c.Query("random") == "true" {
		rand.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
	}
	if limit := utils.QueryInt(c, "limit", -1); limit >= 0 && limit < len(qs) {
		qs = qs[:limit]
	}

	return utils.JSONSuccess(c, fiber.Map{
		"count": len(qs),
		"data":  qs,
		"filters": fiber.Map{
			"subject": subject,
			"type":    examType,
			"limit":   c.Query("limit"),
			"random":  c.Query("random"),
		},
	})
}

// GetSubjects lists the subjects present in the catalog
// GET /api/questions/subjects
func GetSubjects(c *fiber.Ctx) error {
	subjects := catalog.Subjects()
	return utils.JSONSuccess(c, fiber.Map{
		"count": len(subjects),
		"data":  subjects,
	})
}

// GetQuestionStats counts questions by subject and exam type
// GET /api/questions/stats
func GetQuestionStats(c *fiber.Ctx) error {
	return utils.JSONSuccess(c, catalog.Statistics())
}

// GetQuestion returns a single question
// GET /api/questions/:id
func GetQuestion(c *fiber.Ctx) error {
	q, ok := catalog.Get(decodedParam(c, "id"))
	if !ok {
		return utils.Fail(c, apperr.NotFound("Pregunta no encontrada"))
	}
	return utils.JSONSuccess(c, q)
}
