// handlers/tournaments.go - tournaments and their live leaderboard
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"ingresosgo/apperr"
	"ingresosgo/services"
	"ingresosgo/utils"
)

const (
	writeWait  = 10 * time.Second // Time allowed to write a message
	pongWait   = 60 * time.Second // Time allowed to read the next pong
	pingPeriod = 15 * time.Second // Send pings at this interval
)

type JoinTournamentRequest struct {
	UserID string `json:"userId"`
}

type TournamentScoreRequest struct {
	UserID string `json:"userId"`
	Score  *int   `json:"score"`
}

// GetTournaments lists tournaments, optionally by status
// GET /api/tournaments?status=active|upcoming|finished
func GetTournaments(c *fiber.Ctx) error {
	ts, err := tournamentService.List(c.UserContext(), c.Query("status"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONSuccess(c, ts)
}

// GetTournament returns one tournament with its sorted participants
// GET /api/tournaments/:id
func GetTournament(c *fiber.Ctx) error {
	t, err := tournamentService.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONSuccess(c, t)
}

// JoinTournament enrolls a player
// POST /api/tournaments/:id/join
func JoinTournament(c *fiber.Ctx) error {
	var req JoinTournamentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	t, err := tournamentService.Join(c.UserContext(), c.Params("id"), req.UserID)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONMessage(c, fiber.StatusOK, "Te has unido al torneo exitosamente", t)
}

// AddTournamentScore accumulates a score for an enrolled player
// POST /api/tournaments/:id/score
func AddTournamentScore(c *fiber.Ctx) error {
	var req TournamentScoreRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Score == nil {
		return utils.Fail(c, apperr.Validation("ID de usuario y puntuación requeridos"))
	}
	out, err := tournamentService.AddScore(c.UserContext(), c.Params("id"), req.UserID, *req.Score)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONMessage(c, fiber.StatusOK, "Puntuación actualizada", out)
}

// GetTournamentLeaderboard returns the ranked participants
// GET /api/tournaments/:id/leaderboard
func GetTournamentLeaderboard(c *fiber.Ctx) error {
	lb, err := tournamentService.Leaderboard(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.JSONSuccess(c, lb)
}

// TournamentLiveUpgrade rejects plain HTTP requests to the live feed and
// checks the tournament exists before the upgrade.
// GET /api/tournaments/:id/live
func TournamentLiveUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if _, err := tournamentService.Get(c.UserContext(), c.Params("id")); err != nil {
		return utils.Fail(c, err)
	}
	return c.Next()
}

// TournamentLive streams the leaderboard after every change.
var TournamentLive = websocket.New(serveTournamentLive)

func serveTournamentLive(conn *websocket.Conn) {
	id := conn.Params("id")
	sub := liveHub.Subscribe(id)
	log.Printf("📡 Live feed opened for tournament %s (%d watching)", id, liveHub.Subscribers(id))

	done := make(chan struct{})
	go func() {
		defer close(done)
		readPump(conn)
	}()

	defer func() {
		liveHub.Unsubscribe(sub)
		conn.Close()
		log.Printf("📴 Live feed closed for tournament %s", id)
	}()

	// The first frame carries the current standings.
	if lb, err := tournamentService.Leaderboard(context.Background(), id); err == nil {
		if err := writeJSON(conn, services.LiveMessage{Type: services.MessageLeaderboard, Payload: lb}); err != nil {
			return
		}
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-sub.Messages():
			if !ok {
				return
			}
			if err := writeJSON(conn, msg); err != nil {
				log.Printf("⚠️ Live write failed for tournament %s: %v", id, err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// readPump discards client frames and returns once the peer goes away.
func readPump(conn *websocket.Conn) {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("⚠️ Live read error: %v", err)
			}
			return
		}
	}
}

func writeJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}
