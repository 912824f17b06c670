// handlers/admin/admin.go - dashboard API wiring
package admin

import (
	"github.com/gofiber/fiber/v2"

	"ingresosgo/middleware"
	"ingresosgo/questions"
	"ingresosgo/services"
)

var (
	userService         *services.UserService
	subscriptionService *services.SubscriptionService
	rankingService      *services.RankingService
	catalog             *questions.Catalog
	adminAuth           *middleware.AdminAuth
)

// Init sets the services the admin handlers call into.
func Init(users *services.UserService, subs *services.SubscriptionService, ranking *services.RankingService, cat *questions.Catalog, auth *middleware.AdminAuth) {
	userService = users
	subscriptionService = subs
	rankingService = ranking
	catalog = cat
	adminAuth = auth
}

// RegisterRoutes mounts /admin on api. Everything but login needs an admin token.
func RegisterRoutes(api fiber.Router) {
	adminGroup := api.Group("/admin")
	adminGroup.Post("/login", Login)
	adminGroup.Post("/logout", Logout)

	// Protected admin routes
	adminProtected := adminGroup.Group("")
	adminProtected.Use(adminAuth.Middleware())
	adminProtected.Get("/verify", VerifyToken)
	adminProtected.Get("/users", GetUsers)
	adminProtected.Post("/users", CreateUser)
	adminProtected.Get("/users/:id", GetUser)
	adminProtected.Put("/users/:id", UpdateUser)
	adminProtected.Delete("/users/:id", DeleteUser)
	adminProtected.Post("/questions/reload", ReloadQuestions)
	adminProtected.Get("/subscriptions/stats", GetSubscriptionStats)
	adminProtected.Post("/cleanup/manual", ManualCleanup)
	adminProtected.Post("/ranking/rebuild", RebuildRanking)
}
