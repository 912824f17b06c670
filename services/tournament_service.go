// services/tournament_service.go - tournament enrollment and scores
package services

import (
	"context"

	"ingresosgo/apperr"
	"ingresosgo/models"
	"ingresosgo/store"
	"ingresosgo/tournament"
)

const MessageLeaderboard = "leaderboard"

type TournamentService struct {
	deps Deps
	hub  *LiveHub
}

// NewTournamentService broadcasts leaderboard changes on hub when it is not nil.
func NewTournamentService(d Deps, hub *LiveHub) *TournamentService {
	return &TournamentService{deps: d, hub: hub}
}

type TournamentView struct {
	models.Tournament
	Status           string `json:"status"`
	ParticipantCount int    `json:"participantCount"`
}

func (s *TournamentService) view(t models.Tournament) TournamentView {
	tournament.Sort(t.Participants)
	return TournamentView{Tournament: t, Status: t.Status(s.deps.now()), ParticipantCount: len(t.Participants)}
}

func (s *TournamentService) List(ctx context.Context, status string) ([]TournamentView, error) {
	var ts []models.Tournament
	err := s.deps.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		ts, err = tx.Tournaments()
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]TournamentView, 0, len(ts))
	for _, t := range ts {
		v := s.view(t)
		if status != "" && v.Status != status {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *TournamentService) Get(ctx context.Context, id string) (*TournamentView, error) {
	var t *models.Tournament
	err := s.deps.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		t, err = tx.Tournament(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	v := s.view(*t)
	return &v, nil
}

// Join enrolls the user once while the tournament is active and not full.
func (s *TournamentService) Join(ctx context.Context, id, userID string) (*TournamentView, error) {
	if userID == "" {
		return nil, apperr.Validation("ID de usuario requerido")
	}
	var t *models.Tournament
	err := s.deps.Store.Update(ctx, []string{store.TournamentKey(id)}, func(tx *store.Tx) error {
		u, err := tx.User(userID)
		if err != nil {
			return err
		}
		if t, err = tx.Tournament(id); err != nil {
			return err
		}
		p, err := tournament.Join(t, u, s.deps.now())
		if err != nil {
			return err
		}
		return tx.AddParticipant(p)
	})
	if err != nil {
		return nil, err
	}
	v := s.view(*t)
	s.broadcast(&v)
	return &v, nil
}

type ScoreUpdate struct {
	NewScore int `json:"newScore"`
	Position int `json:"position"`
}

// AddScore accumulates delta onto the participant's tournament score.
func (s *TournamentService) AddScore(ctx context.Context, id, userID string, delta int) (*ScoreUpdate, error) {
	if userID == "" {
		return nil, apperr.Validation("ID de usuario y puntuación requeridos")
	}
	var (
		t   *models.Tournament
		out ScoreUpdate
	)
	err := s.deps.Store.Update(ctx, []string{store.TournamentKey(id)}, func(tx *store.Tx) error {
		var err error
		if t, err = tx.Tournament(id); err != nil {
			return err
		}
		out.NewScore, out.Position, err = tournament.AddScore(t, userID, delta, s.deps.now())
		if err != nil {
			return err
		}
		for i := range t.Participants {
			if t.Participants[i].UserID == userID {
				return tx.SaveParticipant(&t.Participants[i])
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	v := s.view(*t)
	s.broadcast(&v)
	return &out, nil
}

type TournamentSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type TournamentLeaderboard struct {
	Tournament  TournamentSummary     `json:"tournament"`
	Leaderboard []tournament.Standing `json:"leaderboard"`
}

func leaderboardOf(v *TournamentView) TournamentLeaderboard {
	return TournamentLeaderboard{
		Tournament:  TournamentSummary{ID: v.ID, Name: v.Name, Status: v.Status},
		Leaderboard: tournament.Leaderboard(v.Participants),
	}
}

func (s *TournamentService) Leaderboard(ctx context.Context, id string) (*TournamentLeaderboard, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	lb := leaderboardOf(v)
	return &lb, nil
}

func (s *TournamentService) broadcast(v *TournamentView) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(v.ID, MessageLeaderboard, leaderboardOf(v))
}
