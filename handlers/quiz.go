// handlers/quiz.go - free quizzes outside the part flow
package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"ingresosgo/services"
	"ingresosgo/utils"
)

// GenerateQuiz builds a quiz from the subject bank
// POST /api/quiz/generate
func GenerateQuiz(c *fiber.Ctx) error {
	var req services.GenerateQuizInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	quiz, err := quizService.Generate(c.UserContext(), req)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONMessage(c, fiber.StatusOK, fmt.Sprintf("Quiz generado con %d preguntas", quiz.TotalQuestions), quiz)
}

// SubmitQuiz grades the answers and credits the player
// POST /api/quiz/submit
func SubmitQuiz(c *fiber.Ctx) error {
	var req services.SubmitQuizInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	sub, err := quizService.Submit(c.UserContext(), req)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONMessage(c, fiber.StatusOK, "Resultado de quiz procesado exitosamente", sub)
}

// GetQuizResults lists stored results, newest first
// GET /api/quiz/results/:userId?limit=&subject=
func GetQuizResults(c *fiber.Ctx) error {
	rs, err := quizService.Results(c.UserContext(), c.Params("userId"), c.Query("subject"), utils.QueryInt(c, "limit", 10))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.Map{
		"count": len(rs),
		"data":  rs,
	})
}
