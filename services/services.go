// services/services.go - shared dependencies of the business services
package services

import (
	"context"
	"log"
	"time"

	"ingresosgo/apperr"
	"ingresosgo/cache"
	"ingresosgo/config"
	"ingresosgo/models"
	"ingresosgo/progress"
	"ingresosgo/questions"
	"ingresosgo/scoring"
	"ingresosgo/store"
)

// Deps is what every service needs. Now may be replaced in tests.
type Deps struct {
	Store      *store.Store
	Catalog    *questions.Catalog
	Board      cache.Leaderboard
	Scoring    scoring.Rules
	Progress   progress.Rules
	BcryptCost int
	Now        func() time.Time
}

// NewDeps builds Deps from configuration. board may be nil.
func NewDeps(st *store.Store, catalog *questions.Catalog, board cache.Leaderboard, cfg config.Config) (Deps, error) {
	policy, err := progress.ParsePolicy(cfg.Rules.CompletionPolicy)
	if err != nil {
		return Deps{}, err
	}
	if board == nil {
		board = cache.Noop{}
	}
	return Deps{
		Store:   st,
		Catalog: catalog,
		Board:   board,
		Scoring: scoring.Rules{
			DailyPointsToChooseSubject: cfg.Rules.DailyPointsToChooseSubject,
			GeneralExamMinPoints:       cfg.Rules.GeneralExamMinPoints,
			GeneralExamMinStreak:       cfg.Rules.GeneralExamMinStreak,
		},
		Progress: progress.Rules{
			Policy:        policy,
			PointsPerPart: cfg.Rules.PointsPerPart,
			AllPartsBonus: cfg.Rules.AllPartsBonus,
		},
		BcryptCost: cfg.Auth.BcryptCost,
		Now:        time.Now,
	}, nil
}

// now is always UTC so stored timestamps compare correctly on SQLite.
func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

// publishPoints mirrors the user's total into the ranking cache. A failed
// write is logged and the cache is rebuilt on the next start.
func (d Deps) publishPoints(ctx context.Context, users ...*models.User) {
	if d.Board == nil {
		return
	}
	for _, u := range users {
		if u == nil {
			continue
		}
		if err := d.Board.SetPoints(ctx, u.ID, u.TotalPoints); err != nil {
			log.Printf("⚠️  ranking cache update failed for %s: %v", u.ID, err)
		}
	}
}

func errUserNotFound() error {
	return apperr.NotFound("Usuario no encontrado")
}
