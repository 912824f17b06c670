package progress

import (
	"testing"

	"ingresosgo/models"
)

func TestAggregate(t *testing.T) {
	records := []models.PartProgress{
		{UserID: "u1", Subject: "Matemáticas", ExamType: "normal", Parts: map[string]models.PartState{
			"parte1": {Completed: true, Unlocked: true, BestScore: 12, Attempts: 2},
			"parte2": {Unlocked: true, BestScore: 6, Attempts: 1},
		}},
		{UserID: "u1", Subject: "Legislación", ExamType: "general", Parts: map[string]models.PartState{
			"parte1": {Completed: true, Unlocked: true, BestScore: 20, Attempts: 1},
		}},
	}
	got := Aggregate(records)
	if got.TotalSubjects != 2 || got.CompletedParts != 2 || got.TotalParts != 3 {
		t.Fatalf("totals got %+v", got)
	}
	// (9 + 20) / 2
	if got.AverageScore != 15 {
		t.Fatalf("averageScore got %d want 15", got.AverageScore)
	}
	mat := got.Subjects["Matemáticas_normal"]
	if mat.AverageScore != 9 || mat.TotalAttempts != 3 || mat.CompletedParts != 1 {
		t.Fatalf("math stats got %+v", mat)
	}
	if _, ok := got.Subjects["Legislación_general"]; !ok {
		t.Fatal("missing Legislación_general entry")
	}
}

func TestAggregateEmpty(t *testing.T) {
	got := Aggregate(nil)
	if got.TotalSubjects != 0 || got.AverageScore != 0 || got.Subjects == nil {
		t.Fatalf("got %+v", got)
	}
}
