// handlers/routes.go - player-facing routes under /api
package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts every player route on api. authLimiter guards the
// auth group when it is not nil.
func RegisterRoutes(api fiber.Router, authLimiter fiber.Handler) {
	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	if authLimiter != nil {
		authGroup.Use(authLimiter)
	}
	authGroup.Post("/register", Register)
	authGroup.Post("/login", Login)
	authGroup.Post("/check", CheckUser)
	authGroup.Get("/me/:id", GetMe)
	authGroup.Put("/change-password/:id", ChangePassword)

	userGroup := api.Group("/users")
	userGroup.Post("/:id/check-login", CheckLogin)
	userGroup.Post("/:id/quiz-result", RecordQuizResult)

	// Part progression
	partsGroup := api.Group("/parts")
	partsGroup.Post("/generate", GeneratePartQuiz)
	partsGroup.Post("/complete", CompletePart)
	partsGroup.Get("/progress/:userId", GetProgressStats)
	partsGroup.Delete("/reset", ResetProgress)
	partsGroup.Get("/user/:userId/total-points", GetTotalPoints)
	partsGroup.Get("/:subject/:examType", GetPartsInfo)

	questionGroup := api.Group("/questions")
	questionGroup.Get("/", GetQuestions)
	questionGroup.Get("/subjects", GetSubjects)
	questionGroup.Get("/stats", GetQuestionStats)
	questionGroup.Get("/:id", GetQuestion)

	quizGroup := api.Group("/quiz")
	quizGroup.Post("/generate", GenerateQuiz)
	quizGroup.Post("/submit", SubmitQuiz)
	quizGroup.Get("/results/:userId", GetQuizResults)

	badgeGroup := api.Group("/badges")
	badgeGroup.Get("/system", GetSystemBadges)
	badgeGroup.Get("/user/:userId", GetUserBadges)
	badgeGroup.Post("/check/:userId", CheckBadges)

	challengeGroup := api.Group("/challenges")
	challengeGroup.Get("/", GetChallenges)
	challengeGroup.Get("/user/:userId", GetUserChallenges)
	challengeGroup.Post("/update-progress/:userId", UpdateChallengeProgress)
	challengeGroup.Post("/:id/complete", CompleteChallenge)

	tournamentGroup := api.Group("/tournaments")
	tournamentGroup.Get("/", GetTournaments)
	tournamentGroup.Get("/:id", GetTournament)
	tournamentGroup.Get("/:id/leaderboard", GetTournamentLeaderboard)
	tournamentGroup.Get("/:id/live", TournamentLiveUpgrade, TournamentLive)
	tournamentGroup.Post("/:id/join", JoinTournament)
	tournamentGroup.Post("/:id/score", AddTournamentScore)

	rankingGroup := api.Group("/ranking")
	rankingGroup.Get("/", GetRanking)
	rankingGroup.Get("/stats", GetRankingStats)
	rankingGroup.Get("/user/:id", GetUserRanking)
	rankingGroup.Get("/leaderboard/:subject", GetSubjectLeaderboard)

	statsGroup := api.Group("/stats")
	statsGroup.Get("/user/:userId", GetUserStats)
	statsGroup.Get("/global", GetGlobalStats)

	subscriptionGroup := api.Group("/subscriptions")
	subscriptionGroup.Post("/verify", VerifySubscription)
	subscriptionGroup.Post("/cancel", CancelSubscription)
	subscriptionGroup.Get("/user/:userId", GetUserSubscription)
	subscriptionGroup.Get("/stats", GetSubscriptionStats)
}
