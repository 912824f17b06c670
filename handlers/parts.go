// handlers/parts.go - part-by-part progression through a subject bank
package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"ingresosgo/apperr"
	"ingresosgo/services"
	"ingresosgo/utils"
)

type GeneratePartRequest struct {
	Subject    string `json:"subject"`
	ExamType   string `json:"examType"`
	PartNumber int    `json:"partNumber"`
	UserID     string `json:"userId"`
}

type CompletePartRequest struct {
	UserID         string          `json:"userId"`
	Subject        string          `json:"subject"`
	ExamType       string          `json:"examType"`
	PartNumber     int             `json:"partNumber"`
	Score          *int            `json:"score"`
	TotalQuestions int             `json:"totalQuestions"`
	TimeSpent      int             `json:"timeSpent"`
	Answers        json.RawMessage `json:"answers"`
}

type ResetProgressRequest struct {
	UserID   string `json:"userId"`
	Subject  string `json:"subject"`
	ExamType string `json:"examType"`
}

// GetPartsInfo lists the parts of a subject with the player's progress
// GET /api/parts/:subject/:examType?userId=
func GetPartsInfo(c *fiber.Ctx) error {
	info, err := progressService.PartsInfo(c.UserContext(), c.Query("userId"), decodedParam(c, "subject"), c.Params("examType"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONSuccess(c, info)
}

// GeneratePartQuiz serves the questions of an unlocked part
// POST /api/parts/generate
func GeneratePartQuiz(c *fiber.Ctx) error {
	var req GeneratePartRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	quiz, err := progressService.GeneratePartQuiz(c.UserContext(), req.UserID, req.Subject, req.ExamType, req.PartNumber)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONMessage(c, fiber.StatusOK, fmt.Sprintf("Quiz generado para %s", quiz.PartTitle), quiz)
}

// CompletePart records an attempt and unlocks the next part when it passes
// POST /api/parts/complete
func CompletePart(c *fiber.Ctx) error {
	var req CompletePartRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Score == nil {
		return utils.Fail(c, apperr.Validation("Faltan campos requeridos: userId, subject, examType, partNumber, score, totalQuestions"))
	}
	out, err := progressService.CompletePart(c.UserContext(), services.CompletePartInput{
		UserID:         req.UserID,
		Subject:        req.Subject,
		ExamType:       req.ExamType,
		PartNumber:     req.PartNumber,
		Score:          *req.Score,
		TotalQuestions: req.TotalQuestions,
		TimeSpent:      req.TimeSpent,
		Answers:        req.Answers,
	})
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONMessage(c, fiber.StatusOK, out.Message(), out)
}

// GetProgressStats aggregates every subject the player has started
// GET /api/parts/progress/:userId
func GetProgressStats(c *fiber.Ctx) error {
	st, err := progressService.Stats(c.UserContext(), c.Params("userId"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONSuccess(c, st)
}

// ResetProgress drops the progress of one subject
// DELETE /api/parts/reset
func ResetProgress(c *fiber.Ctx) error {
	var req ResetProgressRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := progressService.Reset(c.UserContext(), req.UserID, req.Subject, req.ExamType); err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONMessage(c, fiber.StatusOK, fmt.Sprintf("Progreso reseteado para %s - %s", req.Subject, req.ExamType), nil)
}

// GetTotalPoints reports part points overall and for today
// GET /api/parts/user/:userId/total-points
func GetTotalPoints(c *fiber.Ctx) error {
	sum, err := progressService.TotalPoints(c.UserContext(), c.Params("userId"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONSuccess(c, sum)
}
