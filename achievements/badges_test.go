package achievements

import (
	"reflect"
	"testing"
	"time"

	"ingresosgo/models"
)

var now = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func TestSystemBadgesCatalog(t *testing.T) {
	badges := SystemBadges()
	if len(badges) != 13 {
		t.Fatalf("got %d badges want 13", len(badges))
	}
	ids := make(map[string]bool)
	for _, b := range badges {
		if ids[b.ID] {
			t.Fatalf("duplicate badge id %s", b.ID)
		}
		ids[b.ID] = true
		if RarityName(b.Rarity) == "Desconocido" {
			t.Fatalf("badge %s has unknown rarity %q", b.ID, b.Rarity)
		}
	}
}

func TestBadgeEarned(t *testing.T) {
	byID := make(map[string]models.Badge)
	for _, b := range SystemBadges() {
		byID[b.ID] = b
	}
	tests := []struct {
		name  string
		badge string
		snap  Snapshot
		want  bool
	}{
		{"first quiz", "first_quiz", Snapshot{TotalGames: 1}, true},
		{"no games", "first_quiz", Snapshot{}, false},
		{"streak 3", "login_streak_3", Snapshot{LoginStreak: 3}, true},
		{"streak 6 short of 7", "login_streak_7", Snapshot{LoginStreak: 6}, false},
		{"math master", "math_master", Snapshot{Subjects: map[string]SubjectStats{"Matemáticas": {GamesPlayed: 10, Accuracy: 0.9}}}, true},
		{"math master low accuracy", "math_master", Snapshot{Subjects: map[string]SubjectStats{"Matemáticas": {GamesPlayed: 12, Accuracy: 0.89}}}, false},
		{"math master few games", "math_master", Snapshot{Subjects: map[string]SubjectStats{"Matemáticas": {GamesPlayed: 9, Accuracy: 1}}}, false},
		{"score boundary", "score_500", Snapshot{TotalPoints: 500}, true},
		{"score below", "score_1000", Snapshot{TotalPoints: 999}, false},
		{"perfect", "perfect_quiz", Snapshot{HasPerfectRun: true}, true},
		{"marathon", "quiz_marathon", Snapshot{TotalGames: 49}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := BadgeEarned(byID[tc.badge], tc.snap); got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
	if BadgeEarned(models.Badge{Type: "mystery"}, Snapshot{TotalGames: 100}) {
		t.Fatal("unknown badge type unlocked")
	}
}

func TestEvaluateBadgesIsIdempotent(t *testing.T) {
	snap := Snapshot{TotalGames: 3, LoginStreak: 4, TotalPoints: 120}
	catalog := SystemBadges()

	first := EvaluateBadges(catalog, nil, snap, now)
	var ids []string
	for _, b := range first {
		ids = append(ids, b.BadgeID)
	}
	want := []string{"first_quiz", "login_streak_3", "score_100"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("first pass got %v want %v", ids, want)
	}

	second := EvaluateBadges(catalog, first, snap, now.Add(time.Hour))
	if len(second) != 0 {
		t.Fatalf("second pass unlocked %v", second)
	}
}

func TestEvaluateBadgesKeepsUnlockTime(t *testing.T) {
	earlier := now.Add(-48 * time.Hour)
	unlocked := []models.UnlockedBadge{{BadgeID: "first_quiz", UnlockedAt: earlier}}
	got := EvaluateBadges(SystemBadges(), unlocked, Snapshot{TotalGames: 5}, now)
	if len(got) != 0 {
		t.Fatalf("got %v", got)
	}
	views := BadgeViews(SystemBadges(), unlocked)
	for _, v := range views {
		if v.ID == "first_quiz" && (!v.IsUnlocked || !v.UnlockedAt.Equal(earlier)) {
			t.Fatalf("view got %+v", v)
		}
		if v.ID != "first_quiz" && v.IsUnlocked {
			t.Fatalf("%s shown as unlocked", v.ID)
		}
	}
}

func TestRarityDisplay(t *testing.T) {
	if RarityColor("epic") != "#9C27B0" || RarityName("epic") != "Épico" {
		t.Fatal("epic rarity mismatch")
	}
	if RarityColor("bogus") != "#8D8D8D" || RarityName("bogus") != "Desconocido" {
		t.Fatal("unknown rarity fallback mismatch")
	}
}

func TestComputeBadgeStats(t *testing.T) {
	unlocked := []models.UnlockedBadge{{BadgeID: "first_quiz"}, {BadgeID: "score_100"}, {BadgeID: "retired_badge"}}
	st := ComputeBadgeStats(SystemBadges(), unlocked)
	if st.Total != 13 || st.Unlocked != 2 || st.Remaining != 11 {
		t.Fatalf("got %+v", st)
	}
	if st.CompletionPercentage != 15.4 {
		t.Fatalf("completion got %v want 15.4", st.CompletionPercentage)
	}
	groups := GroupByRarity(BadgeViews(SystemBadges(), unlocked))
	if len(groups["rare"]) != 5 || len(groups["epic"]) != 2 {
		t.Fatalf("rare %d epic %d", len(groups["rare"]), len(groups["epic"]))
	}
}
