// progress/engine.go - part unlock state machine
package progress

import (
	"fmt"
	"math"
	"time"

	"ingresosgo/apperr"
	"ingresosgo/models"
)

const thresholdEpsilon = 1e-9

// PartInfo is a part's static metadata merged with the user's stored state.
type PartInfo struct {
	PartNumber     int        `json:"partNumber"`
	PartKey        string     `json:"partKey"`
	Title          string     `json:"title"`
	QuestionsRange string     `json:"questionsRange"`
	TotalQuestions int        `json:"totalQuestions"`
	Completed      bool       `json:"completed"`
	Unlocked       bool       `json:"unlocked"`
	Score          int        `json:"score"`
	Attempts       int        `json:"attempts"`
	BestScore      int        `json:"bestScore"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

// Completion is one submitted part attempt.
type Completion struct {
	PartNumber     int
	Score          int
	TotalQuestions int // questions in the attempted part
	BankSize       int // questions in the whole subject bank
}

type Result struct {
	PartCompleted     bool `json:"partCompleted"`
	NextPartUnlocked  bool `json:"nextPartUnlocked"`
	Accuracy          int  `json:"accuracy"`
	Attempts          int  `json:"attempts"`
	BestScore         int  `json:"bestScore"`
	PointsEarned      int  `json:"pointsEarned"`
	AllPartsCompleted bool `json:"allPartsCompleted"`
	TotalParts        int  `json:"totalParts"`
	CompletedParts    int  `json:"completedParts"`
	FirstCompletion   bool `json:"firstCompletion"`
}

func PartKey(partNumber int) string {
	return fmt.Sprintf("parte%d", partNumber)
}

func TotalParts(bankSize int, cfg SubjectConfig) int {
	if bankSize <= 0 || cfg.QuestionsPerPart <= 0 {
		return 0
	}
	return (bankSize + cfg.QuestionsPerPart - 1) / cfg.QuestionsPerPart
}

// PartSize is the number of questions in a part; the last part may be shorter.
func PartSize(partNumber, bankSize int, cfg SubjectConfig) int {
	start := (partNumber - 1) * cfg.QuestionsPerPart
	if partNumber < 1 || start >= bankSize {
		return 0
	}
	return min(cfg.QuestionsPerPart, bankSize-start)
}

// QuestionsRange is the 1-based inclusive range label, e.g. "13-24".
func QuestionsRange(partNumber, bankSize int, cfg SubjectConfig) string {
	start := (partNumber-1)*cfg.QuestionsPerPart + 1
	end := min(partNumber*cfg.QuestionsPerPart, bankSize)
	return fmt.Sprintf("%d-%d", start, end)
}

// NewRecord creates the initial progress record with only part 1 unlocked.
func NewRecord(userID, subject, examType string) *models.PartProgress {
	return &models.PartProgress{
		UserID:   userID,
		Subject:  subject,
		ExamType: examType,
		Parts: map[string]models.PartState{
			PartKey(1): {Unlocked: true},
		},
	}
}

// ensureFirstPart repairs records written without a part 1 entry.
func ensureFirstPart(rec *models.PartProgress) {
	if rec.Parts == nil {
		rec.Parts = make(map[string]models.PartState)
	}
	first := rec.Parts[PartKey(1)]
	if !first.Unlocked {
		first.Unlocked = true
		rec.Parts[PartKey(1)] = first
	}
}

// PartsInfo lists every part of a bank of bankSize questions.
func PartsInfo(rec *models.PartProgress, cfg SubjectConfig, bankSize int) []PartInfo {
	total := TotalParts(bankSize, cfg)
	infos := make([]PartInfo, 0, total)
	for n := 1; n <= total; n++ {
		key := PartKey(n)
		state := models.PartState{}
		if rec != nil {
			state = rec.Parts[key]
		}
		if n == 1 {
			state.Unlocked = true
		}
		infos = append(infos, PartInfo{
			PartNumber:     n,
			PartKey:        key,
			Title:          fmt.Sprintf("Parte %d", n),
			QuestionsRange: QuestionsRange(n, bankSize, cfg),
			TotalQuestions: PartSize(n, bankSize, cfg),
			Completed:      state.Completed,
			Unlocked:       state.Unlocked,
			Score:          state.Score,
			Attempts:       state.Attempts,
			BestScore:      state.BestScore,
			CompletedAt:    state.CompletedAt,
		})
	}
	return infos
}

// QuestionsForPart returns the part's slice of the bank in bank order.
func QuestionsForPart[T any](all []T, partNumber int, cfg SubjectConfig) []T {
	if partNumber < 1 || cfg.QuestionsPerPart <= 0 {
		return nil
	}
	start := (partNumber - 1) * cfg.QuestionsPerPart
	if start >= len(all) {
		return nil
	}
	end := min(start+cfg.QuestionsPerPart, len(all))
	return all[start:end]
}

// IsUnlocked reports whether the user may attempt the part.
func IsUnlocked(rec *models.PartProgress, partNumber int) bool {
	if partNumber == 1 {
		return true
	}
	if rec == nil {
		return false
	}
	return rec.Parts[PartKey(partNumber)].Unlocked
}

// CompletePart applies one attempt to rec in place.
func CompletePart(rec *models.PartProgress, c Completion, cfg SubjectConfig, rules Rules, now time.Time) (Result, error) {
	totalParts := TotalParts(c.BankSize, cfg)
	if totalParts == 0 {
		return Result{}, apperr.NotFound("No se encontraron preguntas para %s - %s", rec.Subject, rec.ExamType)
	}
	if c.PartNumber < 1 || c.PartNumber > totalParts {
		return Result{}, apperr.Validation("La parte %d no existe (1-%d)", c.PartNumber, totalParts)
	}
	if c.TotalQuestions <= 0 {
		return Result{}, apperr.Validation("totalQuestions debe ser mayor que 0")
	}
	if c.Score < 0 || c.Score > c.TotalQuestions {
		return Result{}, apperr.Validation("score debe estar entre 0 y %d", c.TotalQuestions)
	}

	ensureFirstPart(rec)
	if !IsUnlocked(rec, c.PartNumber) {
		return Result{}, apperr.Forbidden("Esta parte aún no está desbloqueada")
	}

	allBefore := countCompleted(rec, totalParts) == totalParts

	key := PartKey(c.PartNumber)
	part := rec.Parts[key]
	part.Unlocked = true
	part.Attempts++
	part.Score = c.Score
	part.BestScore = max(part.BestScore, c.Score)
	part.TotalQuestions = c.TotalQuestions

	accuracy := float64(c.Score) / float64(c.TotalQuestions)
	passed := accuracy+thresholdEpsilon >= cfg.UnlockThreshold
	switch rules.Policy {
	case PolicyOverwrite:
		part.Completed = passed
	default:
		part.Completed = part.Completed || passed
	}

	res := Result{
		Accuracy:   int(math.Round(accuracy * 100)),
		TotalParts: totalParts,
	}
	if part.Completed && part.CompletedAt == nil {
		t := now
		part.CompletedAt = &t
		res.FirstCompletion = true
		res.PointsEarned += rules.PointsPerPart
	}
	rec.Parts[key] = part

	if part.Completed && c.PartNumber < totalParts {
		nextKey := PartKey(c.PartNumber + 1)
		next := rec.Parts[nextKey]
		next.Unlocked = true
		rec.Parts[nextKey] = next
		res.NextPartUnlocked = true
	}

	res.CompletedParts = countCompleted(rec, totalParts)
	res.AllPartsCompleted = res.CompletedParts == totalParts
	if res.AllPartsCompleted && !allBefore && res.FirstCompletion {
		res.PointsEarned += rules.AllPartsBonus
	}

	res.PartCompleted = part.Completed
	res.Attempts = part.Attempts
	res.BestScore = part.BestScore
	return res, nil
}

func countCompleted(rec *models.PartProgress, totalParts int) int {
	n := 0
	for i := 1; i <= totalParts; i++ {
		if rec.Parts[PartKey(i)].Completed {
			n++
		}
	}
	return n
}
