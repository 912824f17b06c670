package achievements

import (
	"testing"
	"time"

	"ingresosgo/models"
)

func challengeByID(t *testing.T, id string) models.Challenge {
	t.Helper()
	for _, c := range SystemChallenges(now.Add(-day)) {
		if c.ID == id {
			return c
		}
	}
	t.Fatalf("challenge %s not in catalog", id)
	return models.Challenge{}
}

func TestSystemChallengesWindows(t *testing.T) {
	cs := SystemChallenges(now)
	if len(cs) != 6 {
		t.Fatalf("got %d challenges want 6", len(cs))
	}
	for _, c := range cs {
		if c.Status(now) != models.StatusActive {
			t.Fatalf("%s not active at seed time", c.ID)
		}
		if c.Status(now.Add(31*day)) != models.StatusFinished {
			t.Fatalf("%s still open after 31 days", c.ID)
		}
	}
	if got := cs[2].EndDate.Sub(cs[2].StartDate); got != 7*day {
		t.Fatalf("perfect_week window got %v", got)
	}
}

func TestDailyStreakChallenge(t *testing.T) {
	c := challengeByID(t, "daily_streak")
	if MeetsRequirements(c, Snapshot{LoginStreak: 5}, now) {
		t.Fatal("streak 5 should not meet daily_streak")
	}
	if !MeetsRequirements(c, Snapshot{LoginStreak: 7}, now) {
		t.Fatal("streak 7 should meet daily_streak")
	}
	if !CanComplete(c, false, now) {
		t.Fatal("active and not completed should be completable")
	}
	if CanComplete(c, true, now) {
		t.Fatal("completed challenge must not be completable again")
	}
	if CanComplete(c, false, c.EndDate.Add(time.Second)) {
		t.Fatal("finished challenge must not be completable")
	}
	if CanComplete(c, false, c.StartDate.Add(-time.Second)) {
		t.Fatal("upcoming challenge must not be completable")
	}
}

func TestMeetsRequirements(t *testing.T) {
	perfect := make([]models.PartResult, 5)
	for i := range perfect {
		perfect[i] = models.PartResult{Subject: "Matemáticas", PartNumber: i + 1, Score: 12, TotalQuestions: 12, TimeSpent: 100, CompletedAt: now.Add(-time.Duration(i) * day)}
	}
	stale := make([]models.PartResult, 5)
	for i := range stale {
		stale[i] = models.PartResult{Subject: "Matemáticas", PartNumber: i + 1, Score: 12, TotalQuestions: 12, CompletedAt: now.Add(-30 * day)}
	}
	tests := []struct {
		name      string
		challenge string
		snap      Snapshot
		want      bool
	}{
		{"quiz master met", "quiz_master", Snapshot{PartsCompleted: 20, PartAccuracy: 0.8}, true},
		{"quiz master low accuracy", "quiz_master", Snapshot{PartsCompleted: 25, PartAccuracy: 0.79}, false},
		{"perfect week", "perfect_week", Snapshot{attempts: perfect}, true},
		{"perfect week outside timeframe", "perfect_week", Snapshot{PerfectParts: 5, attempts: stale}, false},
		{"specialist", "subject_specialist", Snapshot{PartSubjects: map[string]PartSubjectStats{"Matemáticas": {Completed: 15, Accuracy: 0.95}}}, true},
		{"specialist other subject", "subject_specialist", Snapshot{PartSubjects: map[string]PartSubjectStats{"Legislación": {Completed: 30, Accuracy: 1}}}, false},
		{"speed demon", "speed_demon", Snapshot{attempts: perfect}, true},
		{"explorer missing one", "knowledge_explorer", Snapshot{PartSubjects: map[string]PartSubjectStats{
			"Matemáticas": {Completed: 1}, "Castellano y Guaraní": {Completed: 2}, "Historia y Geografía": {Completed: 1},
		}}, false},
		{"explorer all", "knowledge_explorer", Snapshot{PartSubjects: map[string]PartSubjectStats{
			"Matemáticas": {Completed: 1}, "Castellano y Guaraní": {Completed: 2}, "Historia y Geografía": {Completed: 1}, "Legislación": {Completed: 1},
		}}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := MeetsRequirements(challengeByID(t, tc.challenge), tc.snap, now); got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestProgressFor(t *testing.T) {
	snap := Snapshot{LoginStreak: 4, PartsCompleted: 6, PartAccuracy: 0.75, PartSubjects: map[string]PartSubjectStats{"Matemáticas": {Completed: 3, Accuracy: 0.9}}}
	p := ProgressFor(challengeByID(t, "daily_streak"), snap, now)
	if p["currentLoginStreak"] != 4 {
		t.Fatalf("streak progress got %v", p)
	}
	p = ProgressFor(challengeByID(t, "quiz_master"), snap, now)
	if p["quizzesCompleted"] != 6 || p["averageAccuracy"] != 0.75 {
		t.Fatalf("quiz master progress got %v", p)
	}
	p = ProgressFor(challengeByID(t, "knowledge_explorer"), snap, now)
	subjects := p["subjects"].(map[string]int)
	if len(subjects) != 4 || subjects["Matemáticas"] != 3 || subjects["Legislación"] != 0 {
		t.Fatalf("explorer progress got %v", subjects)
	}
}

func TestRewardPoints(t *testing.T) {
	total, daily := RewardPoints(models.ChallengeRewards{Points: 100, Experience: 51})
	if total != 125 || daily != 100 {
		t.Fatalf("got total %d daily %d", total, daily)
	}
}
