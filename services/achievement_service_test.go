package services

import (
	"context"
	"testing"
	"time"

	"ingresosgo/apperr"
	"ingresosgo/models"
)

func addStreakChallenge(t *testing.T, d Deps, id string, streak int, start, end time.Time) {
	t.Helper()
	c := models.Challenge{
		ID:           id,
		Name:         "Racha corta",
		Type:         models.ChallengeTypeStreak,
		Difficulty:   "easy",
		Requirements: models.ChallengeRequirements{LoginStreak: streak},
		Rewards:      models.ChallengeRewards{Points: 50, Experience: 20},
		StartDate:    start,
		EndDate:      end,
	}
	if err := d.Store.DB().Create(&c).Error; err != nil {
		t.Fatal(err)
	}
}

func TestCompleteChallengeOnce(t *testing.T) {
	d, clock := newTestDeps(t)
	u := register(t, d, "ana")
	addStreakChallenge(t, d, "racha2", 2, epoch, epoch.Add(7*24*time.Hour))
	s := NewAchievementService(d)
	ctx := context.Background()

	_, err := s.CompleteChallenge(ctx, "racha2", u.ID)
	wantKind(t, err, apperr.KindValidation)

	clock.Advance(30 * time.Hour)
	if _, err := NewUserService(d).Login(ctx, "ana", "secreto"); err != nil {
		t.Fatal(err)
	}

	out, err := s.CompleteChallenge(ctx, "racha2", u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if out.Rewards.PointsEarned != 60 || out.NewTotalPoints != 60 {
		t.Fatalf("rewards %+v total %d", out.Rewards, out.NewTotalPoints)
	}
	got, _ := NewUserService(d).Get(ctx, u.ID)
	if got.DailyPoints != 50 {
		t.Fatalf("daily points %d want 50", got.DailyPoints)
	}

	_, err = s.CompleteChallenge(ctx, "racha2", u.ID)
	wantKind(t, err, apperr.KindValidation)

	views, err := s.Challenges(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range views {
		if v.ID == "racha2" && v.CompletedCount != 1 {
			t.Fatalf("completed count %d", v.CompletedCount)
		}
	}
}

func TestCompleteChallengeOutsideWindow(t *testing.T) {
	d, _ := newTestDeps(t)
	u := register(t, d, "ana")
	addStreakChallenge(t, d, "pasado", 1, epoch.Add(-72*time.Hour), epoch.Add(-24*time.Hour))

	_, err := NewAchievementService(d).CompleteChallenge(context.Background(), "pasado", u.ID)
	wantKind(t, err, apperr.KindValidation)
	_, err = NewAchievementService(d).CompleteChallenge(context.Background(), "no_existe", u.ID)
	wantKind(t, err, apperr.KindNotFound)
}

func TestUserChallengesReportsRequirements(t *testing.T) {
	d, _ := newTestDeps(t)
	u := register(t, d, "ana")
	addStreakChallenge(t, d, "racha1", 1, epoch, epoch.Add(24*time.Hour))

	out, err := NewAchievementService(d).UpdateProgress(context.Background(), u.ID)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, c := range out.CompletedChallenges {
		if c.ID == "racha1" {
			found = c.CanComplete
		}
	}
	if !found {
		t.Fatalf("racha1 should be completable: %+v", out.CompletedChallenges)
	}
}

func TestCheckBadgesAwardsOnce(t *testing.T) {
	d, _ := newTestDeps(t)
	u := register(t, d, "ana")
	s := NewAchievementService(d)
	ctx := context.Background()

	if _, err := NewUserService(d).RecordQuizScore(ctx, u.ID, QuizScoreInput{Subject: "Matemáticas", Score: 500, CorrectAnswers: 5, TotalQuestions: 5}); err != nil {
		t.Fatal(err)
	}
	first, err := s.CheckBadges(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.CheckBadges(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(second.NewBadges) != 0 || second.TotalBadges != first.TotalBadges {
		t.Fatalf("second check awarded again: first=%+v second=%+v", first, second)
	}

	badges, err := s.UserBadges(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if badges.Stats.Unlocked != first.TotalBadges {
		t.Fatalf("stats %+v want %d unlocked", badges.Stats, first.TotalBadges)
	}
}
