package service

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type CorsConfig struct {
	// AllowOrigins empty allows every origin.
	AllowOrigins []string `json:"allow_origins" envconfig:"ALLOW_ORIGINS"`
}

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

// NewRouter creates the http handler of the service.
func NewRouter(s AvailabilityService, corsConfig CorsConfig) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(newCorsMiddleware(corsConfig))
	engine.Use(s.requestLogger())

	addRoutes(engine, []route{
		{Method: http.MethodGet, Path: "/", Handler: s.Welcome},
		{Method: http.MethodGet, Path: "/health", Handler: s.Health},
		{Method: http.MethodPost, Path: "/availability/check", Handler: s.Check},
		{Method: http.MethodGet, Path: "/availability/history", Handler: s.History},
		{Method: http.MethodGet, Path: "/availability/history/:id", Handler: s.HistoryEntry},
	})
	return engine
}

func newCorsMiddleware(config CorsConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(config.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = config.AllowOrigins
	}
	return cors.New(corsConfig)
}

func (s AvailabilityService) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.tel.ReportDebug(
			report_http_request,
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start).String(),
		)
	}
}

func addRoutes(g gin.IRoutes, routes []route) {
	for _, r := range routes {
		g.Handle(r.Method, r.Path, r.Handler)
	}
}
