package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"zenstream/internal/handler"
	"zenstream/internal/middleware"
)

func New(
	timerHandler *handler.TimerHandler,
	shopHandler *handler.ShopHandler,
	settingsHandler *handler.SettingsHandler,
	corsOrigins []string,
	logger *slog.Logger,
) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}

	engine := gin.New()
	engine.Use(middleware.RequestLogger(logger), gin.Recovery(), middleware.CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")

	timer := api.Group("/timer")
	timer.GET("/state", timerHandler.GetState)
	timer.POST("/start", timerHandler.Start)
	timer.POST("/stop", timerHandler.Stop)
	timer.GET("/events", timerHandler.Events)
	timer.GET("/history", timerHandler.GetHistory)

	api.GET("/settings", settingsHandler.Get)
	api.PUT("/settings", settingsHandler.Update)

	api.GET("/progress", shopHandler.GetProgress)

	shop := api.Group("/shop")
	shop.GET("/catalog", shopHandler.GetCatalog)
	shop.POST("/purchase", shopHandler.Purchase)
	shop.GET("/purchases", shopHandler.ListPurchases)

	return engine
}
