package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shapedtime/releasegrade/internal/feedback"
	"github.com/shapedtime/releasegrade/internal/metrics"
	"github.com/shapedtime/releasegrade/internal/service"
)

// ServiceName and Version are reported by the health endpoint
const (
	ServiceName = "Torrent Quality Predictor"
	Version     = "1.0.0"
)

// Server represents the REST API server
type Server struct {
	router       *gin.Engine
	predictor    *service.Predictor
	feedbackRepo *feedback.Repository

	// Optional: trainer is nil when the classifier is disabled
	trainer   *service.Trainer
	metrics   *metrics.Metrics
	startedAt time.Time
}

// NewServer creates a new API server
func NewServer(
	predictor *service.Predictor,
	feedbackRepo *feedback.Repository,
	trainer *service.Trainer, // Can be nil when model.enabled is false
	m *metrics.Metrics,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:       gin.New(),
		predictor:    predictor,
		feedbackRepo: feedbackRepo,
		trainer:      trainer,
		metrics:      m,
		startedAt:    time.Now(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.router.Use(gin.Recovery())

	// Logging middleware
	s.router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("API request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	})

	// CORS for development
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")

	api.GET("/health", s.getHealth)

	// Prediction
	api.POST("/predict", s.predict)
	api.POST("/predict/batch", s.predictBatch)

	// Feedback
	api.POST("/feedback", s.submitFeedback)
	api.GET("/feedback", s.listFeedback)
	api.GET("/feedback/:id", s.getFeedback)
	api.DELETE("/feedback/:id", s.deleteFeedback)

	// Model
	api.POST("/model/retrain", s.retrainModel)

	// Status
	api.GET("/stats", s.getStats)
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Error response helper
func errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}
