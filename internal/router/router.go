package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/aptfolio/backend/api/handler"
)

type Handlers struct {
	Auth       *apiHandler.AuthHandler
	Building   *apiHandler.BuildingHandler
	Escalation *apiHandler.EscalationHandler
	Health     *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Portfolio routes
	r.POST("/api/v1/buildings", authMiddleware(handlers.Building.Create))
	r.GET("/api/v1/buildings", authMiddleware(handlers.Building.List))
	r.GET("/api/v1/buildings/{id}", authMiddleware(handlers.Building.Get))
	r.PUT("/api/v1/buildings/{id}/apartments/{apartmentNumber}", authMiddleware(handlers.Building.UpdateApartment))
	r.DELETE("/api/v1/buildings/{id}/apartments/{apartmentNumber}", authMiddleware(handlers.Building.ClearApartment))

	// Escalation routes
	r.POST("/api/v1/escalations/run", authMiddleware(handlers.Escalation.Run))
	r.GET("/api/v1/escalations/runs", authMiddleware(handlers.Escalation.Runs))

	return r
}
