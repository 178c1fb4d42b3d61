package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/bahatiirene/xrpl-lottery-backend/internal/config"
	"github.com/bahatiirene/xrpl-lottery-backend/internal/handlers"
	"github.com/bahatiirene/xrpl-lottery-backend/internal/middleware"
)

// HandlerDependencies carries the handlers the router wires up
type HandlerDependencies struct {
	CategoryHandler *handlers.CategoryHandler
	DrawHandler     *handlers.DrawHandler
	TicketHandler   *handlers.TicketHandler
	WinnerHandler   *handlers.WinnerHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	api := router.Group("/api/v1")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		categories := api.Group("/categories")
		{
			categories.GET("", deps.CategoryHandler.GetCategories)
			categories.GET("/:id", deps.CategoryHandler.GetCategoryByID)
			categories.POST("", deps.CategoryHandler.CreateCategory)
			categories.PUT("/:id", deps.CategoryHandler.UpdateCategory)
			categories.GET("/:id/draws", deps.DrawHandler.GetDrawHistory)
			categories.GET("/:id/rollovers", deps.CategoryHandler.GetRolloverHistory)
		}

		draws := api.Group("/draws")
		{
			draws.POST("/schedule", deps.DrawHandler.ScheduleDraw)
			draws.POST("/process-due", deps.DrawHandler.ProcessDueDraws)
			draws.POST("/verify-picks", deps.DrawHandler.VerifyPicks)
			draws.GET("/:id", deps.DrawHandler.GetDrawByID)
			draws.GET("/:id/tickets", deps.TicketHandler.GetTicketsByDraw)
			draws.POST("/:id/open", deps.DrawHandler.OpenDraw)
			draws.POST("/:id/close", deps.DrawHandler.CloseDraw)
		}

		tickets := api.Group("/tickets")
		{
			tickets.POST("/buy", deps.TicketHandler.BuyTickets)
		}

		winners := api.Group("/winners")
		{
			winners.GET("/recent", deps.WinnerHandler.GetRecentWinners)
		}
	}

	return router
}
