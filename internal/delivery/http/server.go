package http

import (
	"github.com/gin-gonic/gin"
	"github.com/ilindan-dev/slot-watcher/internal/config"
	"github.com/rs/zerolog"
	"net/http"
)

// Server is a wrapper for the HTTP server.
type Server struct {
	*http.Server
	logger zerolog.Logger
}

// NewServer creates and configures a new Gin server.
func NewServer(cfg *config.Config, handlers *Handlers, logger *zerolog.Logger) *Server {
	log := logger.With().Str("layer", "http_server").Logger()
	log.Info().Msg("initializing http server")

	log.Info().Str("mode", cfg.HTTP.GinMode).Msg("setting gin mode")
	gin.SetMode(cfg.HTTP.GinMode)

	return &Server{
		Server: &http.Server{
			Addr:    cfg.HTTP.Port,
			Handler: NewRouter(handlers),
		},
		logger: log,
	}
}

// NewRouter builds the gin engine with the status routes and the health check.
func NewRouter(handlers *Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	handlers.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
