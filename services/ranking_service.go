// services/ranking_service.go - rankings and statistics
package services

import (
	"context"
	"errors"
	"log"

	"ingresosgo/cache"
	"ingresosgo/models"
	"ingresosgo/ranking"
	"ingresosgo/store"
)

type RankingService struct {
	deps Deps
}

func NewRankingService(d Deps) *RankingService {
	return &RankingService{deps: d}
}

func (s *RankingService) users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.deps.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		users, err = tx.Users()
		return err
	})
	return users, err
}

// Global returns the top limit players by total points and the number of
// registered players. The cached leaderboard is used when it is available.
func (s *RankingService) Global(ctx context.Context, limit int) ([]ranking.GlobalEntry, int, error) {
	if entries, total, err := s.globalFromCache(ctx, limit); err == nil {
		return entries, total, nil
	} else if !errors.Is(err, cache.ErrUnavailable) {
		log.Printf("⚠️  ranking cache read failed, using database: %v", err)
	}
	users, err := s.users(ctx)
	if err != nil {
		return nil, 0, err
	}
	return ranking.Global(users, limit), len(users), nil
}

func (s *RankingService) globalFromCache(ctx context.Context, limit int) ([]ranking.GlobalEntry, int, error) {
	if s.deps.Board == nil {
		return nil, 0, cache.ErrUnavailable
	}
	top, err := s.deps.Board.Top(ctx, int64(limit))
	if err != nil {
		return nil, 0, err
	}
	ids := make([]string, len(top))
	for i, e := range top {
		ids[i] = e.UserID
	}

	var (
		byID  map[string]models.User
		total int64
	)
	err = s.deps.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		if byID, err = tx.UsersByIDs(ids); err != nil {
			return err
		}
		total, err = tx.CountUsers()
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]ranking.GlobalEntry, 0, len(top))
	for _, e := range top {
		u, ok := byID[e.UserID]
		if !ok {
			continue
		}
		out = append(out, ranking.GlobalEntry{
			Position:    len(out) + 1,
			ID:          u.ID,
			Name:        u.Name,
			Avatar:      u.Avatar,
			TotalPoints: u.TotalPoints,
			DailyPoints: u.DailyPoints,
			LoginStreak: u.LoginStreak,
			LastLogin:   u.LastLogin,
		})
	}
	return out, int(total), nil
}

// BySubject ranks the players of one subject.
func (s *RankingService) BySubject(ctx context.Context, subject string, limit int) ([]ranking.SubjectEntry, int, error) {
	users, err := s.users(ctx)
	if err != nil {
		return nil, 0, err
	}
	return ranking.BySubject(users, subject, limit, false), len(users), nil
}

func (s *RankingService) UserPosition(ctx context.Context, userID, subject string) (*ranking.Position, error) {
	users, err := s.users(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := ranking.UserPosition(users, userID, subject)
	if !ok {
		return nil, errUserNotFound()
	}
	return &p, nil
}

func (s *RankingService) Overview(ctx context.Context) (ranking.Overview, error) {
	users, err := s.users(ctx)
	if err != nil {
		return ranking.Overview{}, err
	}
	counts := map[string]int{}
	for subject, tc := range s.deps.Catalog.Statistics().BySubject {
		counts[subject] = tc.Total
	}
	return ranking.ComputeOverview(users, counts, s.deps.now()), nil
}

// SubjectLeaderboard is the top of a subject with rounded accuracy.
func (s *RankingService) SubjectLeaderboard(ctx context.Context, subject string) ([]ranking.SubjectEntry, error) {
	users, err := s.users(ctx)
	if err != nil {
		return nil, err
	}
	return ranking.BySubject(users, subject, ranking.LeaderboardSize, true), nil
}

func (s *RankingService) UserStats(ctx context.Context, userID string) (*ranking.UserStats, error) {
	var (
		u       *models.User
		results []models.QuizResult
	)
	err := s.deps.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		if u, err = tx.User(userID); err != nil {
			return err
		}
		results, err = tx.QuizResults(userID, "", 0)
		return err
	})
	if err != nil {
		return nil, err
	}
	st := ranking.ComputeUserStats(*u, results, s.deps.now())
	return &st, nil
}

func (s *RankingService) GlobalStats(ctx context.Context) (*ranking.GlobalStats, error) {
	var (
		users   []models.User
		results []models.QuizResult
	)
	err := s.deps.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		if users, err = tx.Users(); err != nil {
			return err
		}
		results, err = tx.QuizResults("", "", 0)
		return err
	})
	if err != nil {
		return nil, err
	}
	st := ranking.ComputeGlobalStats(users, results)
	return &st, nil
}

// RebuildCache reloads the cached leaderboard from the database.
func (s *RankingService) RebuildCache(ctx context.Context) error {
	if _, noop := s.deps.Board.(cache.Noop); noop || s.deps.Board == nil {
		return nil
	}
	users, err := s.users(ctx)
	if err != nil {
		return err
	}
	points := make(map[string]int, len(users))
	for _, u := range users {
		points[u.ID] = u.TotalPoints
	}
	if err := s.deps.Board.Rebuild(ctx, points); err != nil {
		return err
	}
	log.Printf("🏆 Ranking cache rebuilt with %d users", len(points))
	return nil
}
