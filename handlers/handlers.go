// handlers/handlers.go - service wiring for the player-facing API
package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"ingresosgo/questions"
	"ingresosgo/services"
)

// Services is everything the handlers call into.
type Services struct {
	Users         *services.UserService
	Progress      *services.ProgressService
	Quiz          *services.QuizService
	Achievements  *services.AchievementService
	Tournaments   *services.TournamentService
	Ranking       *services.RankingService
	Subscriptions *services.SubscriptionService
	Catalog       *questions.Catalog
	Hub           *services.LiveHub
}

var (
	userService         *services.UserService
	progressService     *services.ProgressService
	quizService         *services.QuizService
	achievementService  *services.AchievementService
	tournamentService   *services.TournamentService
	rankingService      *services.RankingService
	subscriptionService *services.SubscriptionService
	catalog             *questions.Catalog
	liveHub             *services.LiveHub
)

// InitHandlers sets the services used by every handler in this package.
func InitHandlers(s Services) {
	userService = s.Users
	progressService = s.Progress
	quizService = s.Quiz
	achievementService = s.Achievements
	tournamentService = s.Tournaments
	rankingService = s.Ranking
	subscriptionService = s.Subscriptions
	catalog = s.Catalog
	liveHub = s.Hub
}

// parseBody decodes the JSON body, answering 400 on malformed input.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de solicitud inválido")
	}
	return nil
}

// decodedParam returns a path parameter with percent-escapes resolved, so
// "Matem%C3%A1ticas" reaches the services as "Matemáticas".
func decodedParam(c *fiber.Ctx, key string) string {
	raw := c.Params(key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
