// services/achievement_service.go - badges and challenges
package services

import (
	"context"
	"time"

	"ingresosgo/achievements"
	"ingresosgo/apperr"
	"ingresosgo/models"
	"ingresosgo/scoring"
	"ingresosgo/store"
)

type AchievementService struct {
	deps Deps
}

func NewAchievementService(d Deps) *AchievementService {
	return &AchievementService{deps: d}
}

// snapshotFor gathers everything the badge and challenge predicates read.
func snapshotFor(tx *store.Tx, u *models.User) (achievements.Snapshot, error) {
	quizzes, err := tx.QuizResults(u.ID, "", 0)
	if err != nil {
		return achievements.Snapshot{}, err
	}
	records, err := tx.ProgressForUser(u.ID)
	if err != nil {
		return achievements.Snapshot{}, err
	}
	attempts, err := tx.PartResults(u.ID)
	if err != nil {
		return achievements.Snapshot{}, err
	}
	return achievements.BuildSnapshot(u, quizzes, records, attempts), nil
}

// SystemBadges returns the catalog decorated for display.
func (s *AchievementService) SystemBadges(ctx context.Context) ([]achievements.BadgeView, error) {
	var catalog []models.Badge
	err := s.deps.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		catalog, err = tx.Badges()
		return err
	})
	if err != nil {
		return nil, err
	}
	return achievements.BadgeViews(catalog, nil), nil
}

type UserBadges struct {
	BadgesByRarity map[string][]achievements.BadgeView `json:"badgesByRarity"`
	Stats          achievements.BadgeStats              `json:"stats"`
}

func (s *AchievementService) UserBadges(ctx context.Context, userID string) (*UserBadges, error) {
	var (
		catalog []models.Badge
		u       *models.User
	)
	err := s.deps.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		if u, err = tx.User(userID); err != nil {
			return err
		}
		catalog, err = tx.Badges()
		return err
	})
	if err != nil {
		return nil, err
	}
	return &UserBadges{
		BadgesByRarity: achievements.GroupByRarity(achievements.BadgeViews(catalog, u.Badges)),
		Stats:          achievements.ComputeBadgeStats(catalog, u.Badges),
	}, nil
}

type BadgeCheck struct {
	NewBadges   []achievements.BadgeView `json:"newBadges"`
	TotalBadges int                      `json:"totalBadges"`
}

// CheckBadges evaluates the catalog against live statistics and stores the
// union of old and new badges.
func (s *AchievementService) CheckBadges(ctx context.Context, userID string) (*BadgeCheck, error) {
	out := &BadgeCheck{NewBadges: []achievements.BadgeView{}}
	err := s.deps.Store.Update(ctx, []string{store.UserKey(userID)}, func(tx *store.Tx) error {
		u, err := tx.User(userID)
		if err != nil {
			return err
		}
		catalog, err := tx.Badges()
		if err != nil {
			return err
		}
		snap, err := snapshotFor(tx, u)
		if err != nil {
			return err
		}
		earned := achievements.EvaluateBadges(catalog, u.Badges, snap, s.deps.now())
		out.TotalBadges = len(u.Badges) + len(earned)
		if len(earned) == 0 {
			return nil
		}

		u.Badges = append(u.Badges, earned...)
		for _, v := range achievements.BadgeViews(catalog, earned) {
			if v.IsUnlocked {
				out.NewBadges = append(out.NewBadges, v)
			}
		}
		return tx.SaveUser(u)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type ChallengeView struct {
	models.Challenge
	Status         string `json:"status"`
	CompletedCount int    `json:"completedCount"`
}

// Challenges lists the catalog with derived status, optionally filtered by it.
func (s *AchievementService) Challenges(ctx context.Context, status string) ([]ChallengeView, error) {
	var (
		cs     []models.Challenge
		counts map[string]int
	)
	err := s.deps.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		if cs, err = tx.Challenges(); err != nil {
			return err
		}
		counts, err = tx.CountCompletions()
		return err
	})
	if err != nil {
		return nil, err
	}

	now := s.deps.now()
	views := make([]ChallengeView, 0, len(cs))
	for _, c := range cs {
		st := c.Status(now)
		if status != "" && st != status {
			continue
		}
		views = append(views, ChallengeView{Challenge: c, Status: st, CompletedCount: counts[c.ID]})
	}
	return views, nil
}

type UserChallenge struct {
	models.Challenge
	Status       string         `json:"status"`
	UserProgress map[string]any `json:"userProgress"`
	IsCompleted  bool           `json:"isCompleted"`
	CanComplete  bool           `json:"canComplete"`
	Completable  bool           `json:"meetsRequirements"`
}

// refreshChallenges recomputes and stores the progress snapshot of every
// challenge the user has not completed yet.
func (s *AchievementService) refreshChallenges(tx *store.Tx, userID string, now time.Time) ([]UserChallenge, error) {
	u, err := tx.User(userID)
	if err != nil {
		return nil, err
	}
	cs, err := tx.Challenges()
	if err != nil {
		return nil, err
	}
	done, err := tx.CompletedChallenges(userID)
	if err != nil {
		return nil, err
	}
	snap, err := snapshotFor(tx, u)
	if err != nil {
		return nil, err
	}

	out := make([]UserChallenge, 0, len(cs))
	for _, c := range cs {
		_, completed := done[c.ID]
		uc := UserChallenge{
			Challenge:    c,
			Status:       c.Status(now),
			UserProgress: map[string]any{},
			IsCompleted:  completed,
			CanComplete:  achievements.CanComplete(c, completed, now),
		}
		if !completed {
			uc.UserProgress = achievements.ProgressFor(c, snap, now)
			uc.Completable = achievements.MeetsRequirements(c, snap, now)
			err := tx.SaveChallengeProgress(&models.ChallengeProgress{
				ChallengeID: c.ID,
				UserID:      userID,
				Snapshot:    uc.UserProgress,
				UpdatedAt:   now,
			})
			if err != nil {
				return nil, err
			}
		}
		out = append(out, uc)
	}
	return out, nil
}

// UserChallenges returns every challenge with the user's fresh progress.
func (s *AchievementService) UserChallenges(ctx context.Context, userID string) ([]UserChallenge, error) {
	var out []UserChallenge
	err := s.deps.Store.Update(ctx, []string{store.UserKey(userID)}, func(tx *store.Tx) error {
		var err error
		out, err = s.refreshChallenges(tx, userID, s.deps.now())
		return err
	})
	return out, err
}

type ChallengeRefresh struct {
	UpdatedChallenges   []UserChallenge `json:"updatedChallenges"`
	CompletedChallenges []UserChallenge `json:"completedChallenges"`
}

// UpdateProgress refreshes the snapshots and lists the challenges whose
// requirements are now met.
func (s *AchievementService) UpdateProgress(ctx context.Context, userID string) (*ChallengeRefresh, error) {
	all, err := s.UserChallenges(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &ChallengeRefresh{UpdatedChallenges: all, CompletedChallenges: []UserChallenge{}}
	for _, c := range all {
		if !c.IsCompleted && c.Completable {
			out.CompletedChallenges = append(out.CompletedChallenges, c)
		}
	}
	return out, nil
}

type ChallengeRewards struct {
	Points       int `json:"points"`
	Experience   int `json:"experience"`
	PointsEarned int `json:"pointsEarned"`
}

type ChallengeCompletion struct {
	Rewards        ChallengeRewards `json:"rewards"`
	Challenge      models.Challenge `json:"challenge"`
	NewTotalPoints int              `json:"newTotalPoints"`
}

// CompleteChallenge records the completion and grants the rewards exactly once.
func (s *AchievementService) CompleteChallenge(ctx context.Context, challengeID, userID string) (*ChallengeCompletion, error) {
	if userID == "" {
		return nil, apperr.Validation("ID de usuario requerido")
	}
	now := s.deps.now()
	var (
		out = &ChallengeCompletion{}
		u   *models.User
	)
	err := s.deps.Store.Update(ctx, []string{store.ChallengeKey(challengeID), store.UserKey(userID)}, func(tx *store.Tx) error {
		c, err := tx.Challenge(challengeID)
		if err != nil {
			return err
		}
		if u, err = tx.User(userID); err != nil {
			return err
		}
		completed, err := tx.ChallengeCompleted(challengeID, userID)
		if err != nil {
			return err
		}
		if completed {
			return apperr.Validation("Ya has completado este desafío")
		}
		if !achievements.CanComplete(*c, false, now) {
			return apperr.Validation("El desafío no está activo")
		}
		snap, err := snapshotFor(tx, u)
		if err != nil {
			return err
		}
		if !achievements.MeetsRequirements(*c, snap, now) {
			return apperr.Validation("No cumples los requisitos para completar este desafío")
		}

		if err := tx.AddChallengeCompletion(&models.ChallengeCompletion{
			ChallengeID: challengeID,
			UserID:      userID,
			CompletedAt: now,
		}); err != nil {
			return err
		}

		total, daily := achievements.RewardPoints(c.Rewards)
		scoring.AwardPoints(u, daily)
		u.TotalPoints += total - daily
		scoring.RefreshFlags(u, s.deps.Scoring)
		u.UpdatedAt = now
		if err := tx.SaveUser(u); err != nil {
			return err
		}

		out.Challenge = *c
		out.Rewards = ChallengeRewards{Points: c.Rewards.Points, Experience: c.Rewards.Experience, PointsEarned: total}
		out.NewTotalPoints = u.TotalPoints
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.deps.publishPoints(ctx, u)
	return out, nil
}
