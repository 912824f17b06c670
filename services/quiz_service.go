// services/quiz_service.go - free quizzes outside the part flow
package services

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"ingresosgo/apperr"
	"ingresosgo/models"
	"ingresosgo/questions"
	"ingresosgo/scoring"
	"ingresosgo/store"
)

type QuizService struct {
	deps Deps
	// newRand is nil in production; tests inject a seeded source.
	newRand func() *rand.Rand
}

func NewQuizService(d Deps) *QuizService {
	return &QuizService{deps: d}
}

type GenerateQuizInput struct {
	Subject       string `json:"subject"`
	QuestionCount *int   `json:"questionCount"`
	ExamType      string `json:"examType"`
	Random        *bool  `json:"random"`
}

// Generate assembles a quiz. A missing or negative questionCount keeps every question.
func (s *QuizService) Generate(ctx context.Context, in GenerateQuizInput) (questions.Quiz, error) {
	if strings.TrimSpace(in.Subject) == "" {
		return questions.Quiz{}, apperr.Validation("Se requiere especificar la materia (subject)")
	}
	examType := models.ExamTypeNormal
	if in.ExamType == models.ExamTypeGeneral {
		examType = models.ExamTypeGeneral
	}
	qs := s.deps.Catalog.Filter(in.Subject, examType)
	if len(qs) == 0 {
		return questions.Quiz{}, apperr.NotFound("No se encontraron preguntas para %s - %s", in.Subject, examType)
	}

	count := -1
	if in.QuestionCount != nil {
		count = *in.QuestionCount
	}
	shuffle := in.Random == nil || *in.Random
	var rng *rand.Rand
	if s.newRand != nil {
		rng = s.newRand()
	}
	return questions.NewQuiz(uuid.NewString(), in.Subject, examType, qs, shuffle, count, rng, s.deps.now()), nil
}

type SubmitQuizInput struct {
	UserID    string             `json:"userId"`
	QuizID    string             `json:"quizId"`
	Subject   string             `json:"subject"`
	Answers   []questions.Answer `json:"answers"`
	TimeSpent int                `json:"timeSpent"`
}

type QuizSummary struct {
	TotalQuestions int `json:"totalQuestions"`
	CorrectAnswers int `json:"correctAnswers"`
	Accuracy       int `json:"accuracy"`
	TotalScore     int `json:"totalScore"`
	TimeSpent      int `json:"timeSpent"`
}

type QuizSubmission struct {
	Result  models.QuizResult `json:"result"`
	Summary QuizSummary       `json:"summary"`
}

// Submit grades the answers, stores the result and credits the user in one transaction.
func (s *QuizService) Submit(ctx context.Context, in SubmitQuizInput) (*QuizSubmission, error) {
	if in.UserID == "" || in.QuizID == "" || in.Subject == "" || in.Answers == nil {
		return nil, apperr.Validation("Faltan campos requeridos: userId, quizId, subject, answers")
	}

	grade := questions.GradeAnswers(s.deps.Catalog, in.Answers, in.TimeSpent)
	detail, err := json.Marshal(grade.Answers)
	if err != nil {
		return nil, apperr.Internal("Error procesando resultado del quiz", err)
	}

	now := s.deps.now()
	sub := &QuizSubmission{
		Result: models.QuizResult{
			ID:             uuid.NewString(),
			UserID:         in.UserID,
			QuizID:         in.QuizID,
			Subject:        in.Subject,
			TotalQuestions: grade.TotalQuestions,
			CorrectAnswers: grade.CorrectAnswers,
			TotalScore:     grade.TotalScore,
			TimeSpent:      max(in.TimeSpent, 0),
			Accuracy:       grade.Accuracy,
			Answers:        datatypes.JSON(detail),
			CompletedAt:    now,
		},
		Summary: QuizSummary{
			TotalQuestions: grade.TotalQuestions,
			CorrectAnswers: grade.CorrectAnswers,
			Accuracy:       grade.Accuracy,
			TotalScore:     grade.TotalScore,
			TimeSpent:      max(in.TimeSpent, 0),
		},
	}

	var u *models.User
	err = s.deps.Store.Update(ctx, []string{store.UserKey(in.UserID)}, func(tx *store.Tx) error {
		var err error
		if u, err = tx.User(in.UserID); err != nil {
			return err
		}
		if err := tx.AddQuizResult(&sub.Result); err != nil {
			return err
		}
		scoring.RecordSubjectResult(u, in.Subject, grade.TotalScore, grade.CorrectAnswers)
		scoring.AwardPoints(u, grade.TotalScore)
		scoring.RefreshFlags(u, s.deps.Scoring)
		u.UpdatedAt = now
		return tx.SaveUser(u)
	})
	if err != nil {
		return nil, err
	}
	s.deps.publishPoints(ctx, u)
	return sub, nil
}

// Results lists a user's quiz results newest first.
func (s *QuizService) Results(ctx context.Context, userID, subject string, limit int) ([]models.QuizResult, error) {
	var rs []models.QuizResult
	err := s.deps.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		rs, err = tx.QuizResults(userID, subject, limit)
		return err
	})
	return rs, err
}
