// services/progress_service.go - part unlock flow over the record store
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"ingresosgo/apperr"
	"ingresosgo/models"
	"ingresosgo/progress"
	"ingresosgo/questions"
	"ingresosgo/scoring"
	"ingresosgo/store"
)

const (
	NextPartAvailable = "next_part_available"
	RetryOrContinue   = "retry_or_continue"
)

type ProgressService struct {
	deps Deps
}

func NewProgressService(d Deps) *ProgressService {
	return &ProgressService{deps: d}
}

type PartsOverview struct {
	Subject          string              `json:"subject"`
	ExamType         string              `json:"examType"`
	TotalQuestions   int                 `json:"totalQuestions"`
	QuestionsPerPart int                 `json:"questionsPerPart"`
	UnlockThreshold  int                 `json:"unlockThreshold"`
	Parts            []progress.PartInfo `json:"parts"`
}

// bank returns the subject's questions and the configuration of the subject
// they actually belong to, so "matematicas" resolves to Matemáticas.
func (s *ProgressService) bank(subject, examType string) ([]models.Question, progress.SubjectConfig, error) {
	qs := s.deps.Catalog.Filter(subject, examType)
	if len(qs) == 0 {
		return nil, progress.SubjectConfig{}, apperr.NotFound("No se encontraron preguntas para %s - %s", subject, examType)
	}
	return qs, progress.ConfigFor(qs[0].Subject), nil
}

func percent(threshold float64) int {
	return int(math.Round(threshold * 100))
}

// loadOrCreate returns the record for key, inserting the initial one when missing.
// It fails with NotFound for a user id that is not registered.
func loadOrCreate(tx *store.Tx, key models.ProgressKey) (*models.PartProgress, error) {
	rec, found, err := tx.Progress(key)
	if err != nil {
		return nil, err
	}
	if found {
		return rec, nil
	}
	// Only registered players get a record.
	if _, err := tx.User(key.UserID); err != nil {
		return nil, err
	}
	rec = progress.NewRecord(key.UserID, key.Subject, key.ExamType)
	if err := tx.SaveProgress(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// PartsInfo lists the parts of a subject bank merged with the user's progress.
func (s *ProgressService) PartsInfo(ctx context.Context, userID, subject, examType string) (*PartsOverview, error) {
	if userID == "" {
		return nil, apperr.Validation("Se requiere userId como parámetro de query")
	}
	qs, cfg, err := s.bank(subject, examType)
	if err != nil {
		return nil, err
	}

	key := models.ProgressKey{UserID: userID, Subject: subject, ExamType: examType}
	var rec *models.PartProgress
	err = s.deps.Store.Update(ctx, []string{key.String()}, func(tx *store.Tx) error {
		rec, err = loadOrCreate(tx, key)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &PartsOverview{
		Subject:          subject,
		ExamType:         examType,
		TotalQuestions:   len(qs),
		QuestionsPerPart: cfg.QuestionsPerPart,
		UnlockThreshold:  percent(cfg.UnlockThreshold),
		Parts:            progress.PartsInfo(rec, cfg, len(qs)),
	}, nil
}

type PartQuizMetadata struct {
	UserID         string `json:"userId"`
	QuestionsRange string `json:"questionsRange"`
	Attempts       int    `json:"attempts"`
	IsRetake       bool   `json:"isRetake"`
}

type PartQuiz struct {
	questions.Quiz
	PartNumber int              `json:"partNumber"`
	PartTitle  string           `json:"partTitle"`
	Metadata   PartQuizMetadata `json:"metadata"`
}

// GeneratePartQuiz serves the exact slice of the bank for an unlocked part.
func (s *ProgressService) GeneratePartQuiz(ctx context.Context, userID, subject, examType string, partNumber int) (*PartQuiz, error) {
	if userID == "" || subject == "" || examType == "" || partNumber <= 0 {
		return nil, apperr.Validation("Faltan campos requeridos: subject, examType, partNumber, userId")
	}

	key := models.ProgressKey{UserID: userID, Subject: subject, ExamType: examType}
	var rec *models.PartProgress
	err := s.deps.Store.Update(ctx, []string{key.String()}, func(tx *store.Tx) error {
		var err error
		rec, err = loadOrCreate(tx, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !progress.IsUnlocked(rec, partNumber) {
		return nil, apperr.Forbidden("Esta parte aún no está desbloqueada")
	}

	qs, cfg, err := s.bank(subject, examType)
	if err != nil {
		return nil, err
	}
	partQs := progress.QuestionsForPart(qs, partNumber, cfg)
	if len(partQs) == 0 {
		return nil, apperr.NotFound("La parte %d no tiene preguntas disponibles", partNumber)
	}

	now := s.deps.now()
	state := rec.Parts[progress.PartKey(partNumber)]
	id := fmt.Sprintf("part_%d_%s", now.UnixMilli(), uuid.NewString()[:8])
	quiz := questions.NewQuiz(id, subject, examType, partQs, false, -1, nil, now)
	quiz.TimeLimit, quiz.HasTimeLimit = cfg.TimeLimit, cfg.HasTimeLimit

	return &PartQuiz{
		Quiz:       quiz,
		PartNumber: partNumber,
		PartTitle:  fmt.Sprintf("%s %s - Parte %d", subject, examType, partNumber),
		Metadata: PartQuizMetadata{
			UserID:         userID,
			QuestionsRange: progress.QuestionsRange(partNumber, len(qs), cfg),
			Attempts:       state.Attempts + 1,
			IsRetake:       state.Attempts > 0,
		},
	}, nil
}

type CompletePartInput struct {
	UserID         string
	Subject        string
	ExamType       string
	PartNumber     int
	Score          int
	TotalQuestions int
	TimeSpent      int
	Answers        json.RawMessage
}

type PartOutcome struct {
	Result            models.PartResult   `json:"result"`
	Progress          progress.Result     `json:"progress"`
	UpdatedParts      []progress.PartInfo `json:"updatedParts"`
	PointsEarned      int                 `json:"pointsEarned"`
	AllPartsCompleted bool                `json:"allPartsCompleted"`
	TotalParts        int                 `json:"totalParts"`
	CompletedParts    int                 `json:"completedParts"`
	NextAction        string              `json:"nextAction"`
	User              *models.User        `json:"-"`

	bonus     int
	threshold int
}

// Message is the player-facing summary of the attempt.
func (o *PartOutcome) Message() string {
	var msg string
	if o.Progress.PartCompleted {
		msg = fmt.Sprintf("¡Parte %d completada exitosamente! +%d puntos", o.Result.PartNumber, o.PointsEarned)
	} else {
		msg = fmt.Sprintf("Parte %d completada. Necesitas %d%% para desbloquear la siguiente.", o.Result.PartNumber, o.threshold)
	}
	if o.AllPartsCompleted {
		msg += fmt.Sprintf(" 🎉 ¡Completaste todas las partes de %s!", o.Result.Subject)
		if o.bonus > 0 {
			msg += fmt.Sprintf(" Bonificación: +%d puntos.", o.bonus)
		}
	}
	return msg
}

// CompletePart applies an attempt, awards its points and logs it in one
// transaction over the progress record and the user.
func (s *ProgressService) CompletePart(ctx context.Context, in CompletePartInput) (*PartOutcome, error) {
	if in.UserID == "" || in.Subject == "" || in.ExamType == "" || in.PartNumber <= 0 || in.TotalQuestions <= 0 {
		return nil, apperr.Validation("Faltan campos requeridos: userId, subject, examType, partNumber, score, totalQuestions")
	}
	qs, cfg, err := s.bank(in.Subject, in.ExamType)
	if err != nil {
		return nil, err
	}

	now := s.deps.now()
	key := models.ProgressKey{UserID: in.UserID, Subject: in.Subject, ExamType: in.ExamType}
	out := &PartOutcome{threshold: percent(cfg.UnlockThreshold)}
	var rec *models.PartProgress

	err = s.deps.Store.Update(ctx, []string{key.String(), store.UserKey(in.UserID)}, func(tx *store.Tx) error {
		u, err := tx.User(in.UserID)
		if err != nil {
			return err
		}
		rec, _, err = tx.Progress(key)
		if err != nil {
			return err
		}
		if rec == nil {
			rec = progress.NewRecord(in.UserID, in.Subject, in.ExamType)
		}

		res, err := progress.CompletePart(rec, progress.Completion{
			PartNumber:     in.PartNumber,
			Score:          in.Score,
			TotalQuestions: in.TotalQuestions,
			BankSize:       len(qs),
		}, cfg, s.deps.Progress, now)
		if err != nil {
			return err
		}
		if err := tx.SaveProgress(rec); err != nil {
			return err
		}

		scoring.AwardPoints(u, res.PointsEarned)
		scoring.RecordSubjectResult(u, in.Subject, res.PointsEarned, in.Score)
		scoring.RefreshFlags(u, s.deps.Scoring)
		if err := tx.SaveUser(u); err != nil {
			return err
		}

		answers := datatypes.JSON("[]")
		if len(in.Answers) > 0 {
			answers = datatypes.JSON(in.Answers)
		}
		out.Result = models.PartResult{
			ID:               uuid.NewString(),
			UserID:           in.UserID,
			Subject:          in.Subject,
			ExamType:         in.ExamType,
			PartNumber:       in.PartNumber,
			Score:            in.Score,
			TotalQuestions:   in.TotalQuestions,
			Accuracy:         res.Accuracy,
			TimeSpent:        max(in.TimeSpent, 0),
			PointsEarned:     res.PointsEarned,
			PartCompleted:    res.PartCompleted,
			NextPartUnlocked: res.NextPartUnlocked,
			Attempts:         res.Attempts,
			BestScore:        res.BestScore,
			Answers:          answers,
			CompletedAt:      now,
		}
		if err := tx.AddPartResult(&out.Result); err != nil {
			return err
		}

		out.Progress = res
		out.User = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.deps.publishPoints(ctx, out.User)

	res := out.Progress
	out.UpdatedParts = progress.PartsInfo(rec, cfg, len(qs))
	out.PointsEarned = res.PointsEarned
	out.AllPartsCompleted = res.AllPartsCompleted
	out.TotalParts = res.TotalParts
	out.CompletedParts = res.CompletedParts
	out.NextAction = RetryOrContinue
	if res.NextPartUnlocked {
		out.NextAction = NextPartAvailable
	}
	if res.FirstCompletion {
		out.bonus = res.PointsEarned - s.deps.Progress.PointsPerPart
	} else {
		out.bonus = res.PointsEarned
	}
	return out, nil
}

// Stats aggregates every progress record of the user.
func (s *ProgressService) Stats(ctx context.Context, userID string) (progress.Stats, error) {
	var recs []models.PartProgress
	err := s.deps.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		recs, err = tx.ProgressForUser(userID)
		return err
	})
	if err != nil {
		return progress.Stats{}, err
	}
	return progress.Aggregate(recs), nil
}

// Reset deletes the record. Resetting a subject that was never started succeeds.
func (s *ProgressService) Reset(ctx context.Context, userID, subject, examType string) error {
	if userID == "" || subject == "" || examType == "" {
		return apperr.Validation("Faltan campos requeridos: userId, subject, examType")
	}
	key := models.ProgressKey{UserID: userID, Subject: subject, ExamType: examType}
	return s.deps.Store.Update(ctx, []string{key.String()}, func(tx *store.Tx) error {
		return tx.DeleteProgress(key)
	})
}

type PointsSummary struct {
	TotalPoints     int `json:"totalPoints"`
	TodayPoints     int `json:"todayPoints"`
	UserTotalPoints int `json:"userTotalPoints"`
}

// TotalPoints reports the points earned from parts overall and since UTC midnight.
func (s *ProgressService) TotalPoints(ctx context.Context, userID string) (PointsSummary, error) {
	now := s.deps.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var sum PointsSummary
	err := s.deps.Store.View(ctx, func(tx *store.Tx) error {
		u, err := tx.User(userID)
		if err != nil {
			return err
		}
		sum.UserTotalPoints = u.TotalPoints
		if sum.TotalPoints, err = tx.PartPointsSince(userID, time.Time{}); err != nil {
			return err
		}
		sum.TodayPoints, err = tx.PartPointsSince(userID, midnight)
		return err
	})
	return sum, err
}
