package tournament

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"ingresosgo/apperr"
	"ingresosgo/models"
)

var now = time.Date(2025, 4, 7, 9, 0, 0, 0, time.UTC)

func activeTournament(capacity int) *models.Tournament {
	return &models.Tournament{
		ID:              "t1",
		StartDate:       now.Add(-time.Hour),
		EndDate:         now.Add(time.Hour),
		MaxParticipants: capacity,
	}
}

func user(id string) *models.User {
	return &models.User{ID: id, Name: "Jugador " + id}
}

func TestSystemTournamentStatuses(t *testing.T) {
	want := map[string]string{
		"weekly_math":     models.StatusActive,
		"monthly_general": models.StatusUpcoming,
		"speed_challenge": models.StatusFinished,
	}
	for _, tr := range SystemTournaments(now) {
		if got := tr.Status(now); got != want[tr.ID] {
			t.Fatalf("%s status got %s want %s", tr.ID, got, want[tr.ID])
		}
	}
}

func TestJoin(t *testing.T) {
	tr := activeTournament(2)
	p, err := Join(tr, user("a"), now)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if p.Avatar != "👤" || p.Seq != 1 || p.Score != 0 {
		t.Fatalf("participant got %+v", p)
	}
	if _, err := Join(tr, user("a"), now); !errors.Is(err, apperr.ErrValidation) || apperr.Message(err) != "Ya estás participando en este torneo" {
		t.Fatalf("second join got %v", err)
	}
	if _, err := Join(tr, user("b"), now); err != nil {
		t.Fatalf("Join b: %v", err)
	}
	if _, err := Join(tr, user("c"), now); apperr.Message(err) != "Torneo lleno" {
		t.Fatalf("full join got %v", err)
	}
	if len(tr.Participants) != 2 {
		t.Fatalf("participants %d", len(tr.Participants))
	}
}

func TestJoinInactive(t *testing.T) {
	tr := activeTournament(10)
	if _, err := Join(tr, user("a"), now.Add(2*time.Hour)); apperr.Message(err) != "El torneo no está activo" {
		t.Fatalf("got %v", err)
	}
	if _, err := Join(tr, user("a"), now.Add(-2*time.Hour)); apperr.Message(err) != "El torneo no está activo" {
		t.Fatalf("got %v", err)
	}
}

func TestAddScoreAndTieBreak(t *testing.T) {
	tr := activeTournament(10)
	for _, id := range []string{"a", "b", "c"} {
		if _, err := Join(tr, user(id), now); err != nil {
			t.Fatal(err)
		}
	}
	steps := []struct {
		user     string
		delta    int
		score    int
		position int
	}{
		{"b", 50, 50, 1},
		{"c", 50, 50, 2},
		{"a", 30, 30, 3},
		{"a", 20, 50, 3},
		{"c", 1, 51, 1},
	}
	for i, s := range steps {
		score, pos, err := AddScore(tr, s.user, s.delta, now.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if score != s.score || pos != s.position {
			t.Fatalf("step %d: got score %d pos %d want %d %d", i, score, pos, s.score, s.position)
		}
	}
	board := Leaderboard(tr.Participants)
	var order string
	for _, st := range board {
		order += fmt.Sprintf("%s%d ", st.UserID, st.Position)
	}
	if order != "c1 b2 a3 " {
		t.Fatalf("leaderboard got %q", order)
	}
}

func TestAddScoreRejects(t *testing.T) {
	tr := activeTournament(10)
	if _, _, err := AddScore(tr, "ghost", 10, now); apperr.Message(err) != "No estás participando en este torneo" {
		t.Fatalf("got %v", err)
	}
	Join(tr, user("a"), now)
	if _, _, err := AddScore(tr, "a", -5, now); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("negative delta got %v", err)
	}
}

func TestLeaderboardDoesNotMutate(t *testing.T) {
	ps := []models.TournamentParticipant{
		{UserID: "x", Score: 1, Seq: 1},
		{UserID: "y", Score: 9, Seq: 2},
	}
	board := Leaderboard(ps)
	if board[0].UserID != "y" || ps[0].UserID != "x" {
		t.Fatalf("board %v input %v", board, ps)
	}
}
