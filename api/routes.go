package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"flyer-studio/telemetry"
	"flyer-studio/utils"
)

// NewRouter builds the gin engine with every flyer route registered.
func NewRouter(h *Handler, metrics *telemetry.Metrics, logger *utils.Logger) *gin.Engine {
	router := gin.New()
	router.Use(ginLogger(logger))
	router.Use(gin.Recovery())

	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/api/v1")

	flyers := v1.Group("/flyers")
	flyers.POST("", h.GenerateFlyer)
	flyers.POST("/render", h.RenderFlyer)
	flyers.POST("/export", h.ExportFlyer)

	v1.GET("/styles", h.ListStyles)
	v1.POST("/analyze", h.AnalyzeMarkup)

	learning := v1.Group("/learning")
	learning.GET("/status", h.LearningStatus)
	learning.GET("/patterns", h.LearningPatterns)

	return router
}

func ginLogger(logger *utils.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.Info("[http] %s %s %d %s %v",
			method, path, c.Writer.Status(), c.ClientIP(), time.Since(start))
	}
}
