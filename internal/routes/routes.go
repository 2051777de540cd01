package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/conradkoh/goals-sub001/internal/handlers"
	"github.com/conradkoh/goals-sub001/internal/middleware"
)

func Setup(app *fiber.App) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handlers.Register)
	auth.Post("/login", handlers.Login)

	protected := api.Group("/", middleware.Protected())

	protected.Get("/weeks/available", handlers.ListAvailableWeeks)

	moves := protected.Group("/moves")
	moves.Post("/week", handlers.MoveWeek)
	moves.Post("/day", handlers.MoveDay)
	moves.Post("/quarter", handlers.MoveQuarter)

	goals := protected.Group("/goals")
	goals.Post("/", handlers.CreateGoal)
	goals.Post("/adhoc", handlers.CreateAdhocGoal)
	goals.Post("/adhoc/move", handlers.MoveAdhocGoals)
	goals.Post("/:id/move-quarter", handlers.MoveQuarterlyGoal)
	goals.Post("/:id/complete", handlers.CompleteGoal)
	goals.Put("/:id/fire", handlers.SetFireFlag)
	goals.Delete("/:id/fire", handlers.ClearFireFlag)
	goals.Delete("/:id", handlers.DeleteGoal)

	domains := protected.Group("/domains")
	domains.Get("/", handlers.GetDomains)
	domains.Post("/", handlers.CreateDomain)
	domains.Put("/:id", handlers.UpdateDomain)
	domains.Delete("/:id", handlers.DeleteDomain)
}
