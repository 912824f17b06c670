package achievements

import (
	"testing"

	"ingresosgo/models"
)

func TestBuildSnapshot(t *testing.T) {
	u := &models.User{TotalPoints: 250, LoginStreak: 4}
	quizzes := []models.QuizResult{
		{Subject: "Matemáticas", CorrectAnswers: 9, TotalQuestions: 10},
		{Subject: "Matemáticas", CorrectAnswers: 10, TotalQuestions: 10},
		{Subject: "Legislación", CorrectAnswers: 5},
	}
	records := []models.PartProgress{
		{Subject: "Matemáticas", ExamType: "normal", Parts: map[string]models.PartState{
			"parte1": {Completed: true, BestScore: 12, TotalQuestions: 12},
			"parte2": {Completed: true, BestScore: 9},
			"parte3": {Unlocked: true, BestScore: 4, TotalQuestions: 12},
		}},
	}
	s := BuildSnapshot(u, quizzes, records, nil)

	if s.TotalGames != 3 || s.TotalPoints != 250 || s.LoginStreak != 4 {
		t.Fatalf("totals got %+v", s)
	}
	if !s.HasPerfectRun {
		t.Fatal("10/10 quiz should count as a perfect run")
	}
	if got := s.Subjects["Matemáticas"]; got.GamesPlayed != 2 || got.Accuracy != 0.95 {
		t.Fatalf("math stats got %+v", got)
	}
	// legacy result without totalQuestions assumes 10
	if got := s.Subjects["Legislación"].Accuracy; got != 0.5 {
		t.Fatalf("legislación accuracy got %v", got)
	}
	if s.PartsCompleted != 2 || s.PerfectParts != 1 || s.HighAccuracyParts != 2 {
		t.Fatalf("part stats got %+v", s)
	}
	if got := s.PartSubjects["Matemáticas"]; got.Completed != 2 || got.Accuracy != 21.0/24.0 {
		t.Fatalf("part subject stats got %+v", got)
	}
}

func TestSnapshotAttemptHelpers(t *testing.T) {
	attempts := []models.PartResult{
		{Subject: "Matemáticas", ExamType: "normal", PartNumber: 1, Score: 12, TotalQuestions: 12, TimeSpent: 90, CompletedAt: now.Add(-2 * day)},
		{Subject: "Matemáticas", ExamType: "normal", PartNumber: 1, Score: 12, TotalQuestions: 12, TimeSpent: 80, CompletedAt: now.Add(-1 * day)},
		{Subject: "Matemáticas", ExamType: "normal", PartNumber: 2, Score: 12, TotalQuestions: 12, TimeSpent: 200, CompletedAt: now.Add(-10 * day)},
		{Subject: "Legislación", ExamType: "normal", PartNumber: 1, Score: 10, TotalQuestions: 20, TimeSpent: 60, CompletedAt: now},
		{Subject: "Legislación", ExamType: "normal", PartNumber: 2, Score: 20, TotalQuestions: 20, CompletedAt: now},
	}
	s := BuildSnapshot(&models.User{}, nil, nil, attempts)
	if got := s.PerfectAttemptsSince(now.Add(-7 * day)); got != 3 {
		t.Fatalf("perfect attempts in a week got %d want 3", got)
	}
	if got := s.FastParts(120, 0.7); got != 1 {
		t.Fatalf("fast parts got %d want 1", got)
	}
	if got := s.FastParts(0, 0.7); got != 2 {
		t.Fatalf("fast parts without time cap got %d want 2", got)
	}
	if s.TotalGames != 5 {
		t.Fatalf("part attempts should count as games, got %d", s.TotalGames)
	}
}

func TestSnapshotNilUser(t *testing.T) {
	s := BuildSnapshot(nil, nil, nil, nil)
	if s.TotalGames != 0 || s.PartAccuracy != 0 || s.Subjects == nil {
		t.Fatalf("got %+v", s)
	}
}
