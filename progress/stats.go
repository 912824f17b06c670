// progress/stats.go
package progress

import (
	"math"

	"ingresosgo/models"
)

type SubjectStats struct {
	Subject        string `json:"subject"`
	ExamType       string `json:"examType"`
	CompletedParts int    `json:"completedParts"`
	TotalParts     int    `json:"totalParts"`
	AverageScore   int    `json:"averageScore"`
	TotalAttempts  int    `json:"totalAttempts"`
}

type Stats struct {
	TotalSubjects  int                     `json:"totalSubjects"`
	CompletedParts int                     `json:"completedParts"`
	TotalParts     int                     `json:"totalParts"`
	AverageScore   int                     `json:"averageScore"`
	Subjects       map[string]SubjectStats `json:"subjects"`
}

// Aggregate summarises a user's progress records. TotalParts counts parts
// the user has reached, not the size of the bank.
func Aggregate(records []models.PartProgress) Stats {
	stats := Stats{
		TotalSubjects: len(records),
		Subjects:      make(map[string]SubjectStats, len(records)),
	}
	var scoreSum float64
	for _, rec := range records {
		s := SubjectStats{Subject: rec.Subject, ExamType: rec.ExamType}
		best := 0
		for _, p := range rec.Parts {
			if p.Completed {
				s.CompletedParts++
			}
			best += p.BestScore
			s.TotalAttempts += p.Attempts
		}
		s.TotalParts = len(rec.Parts)
		var avg float64
		if s.TotalParts > 0 {
			avg = float64(best) / float64(s.TotalParts)
		}
		s.AverageScore = int(math.Round(avg))
		scoreSum += avg

		stats.CompletedParts += s.CompletedParts
		stats.TotalParts += s.TotalParts
		stats.Subjects[rec.Subject+"_"+rec.ExamType] = s
	}
	if len(records) > 0 {
		stats.AverageScore = int(math.Round(scoreSum / float64(len(records))))
	}
	return stats
}
