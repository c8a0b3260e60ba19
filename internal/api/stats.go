package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shapedtime/releasegrade/internal/quality"
	"github.com/shapedtime/releasegrade/internal/service"
)

type HealthResponse struct {
	Status      string    `json:"status"`
	Service     string    `json:"service"`
	Version     string    `json:"version"`
	ModelLoaded bool      `json:"model_loaded"`
	Timestamp   time.Time `json:"timestamp"`
}

type StatsResponse struct {
	ModelLoaded       bool                       `json:"model_loaded"`
	FeedbackCount     int64                      `json:"feedback_count"`
	FeedbackByRating  map[quality.Category]int64 `json:"feedback_by_rating"`
	QualityThresholds quality.Thresholds         `json:"quality_thresholds"`
	UptimeSeconds     float64                    `json:"uptime_seconds"`
}

// getHealth reports liveness and whether a classifier is active
// GET /api/health
func (s *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:      "healthy",
		Service:     ServiceName,
		Version:     Version,
		ModelLoaded: s.predictor.ModelLoaded(),
		Timestamp:   time.Now().UTC(),
	})
}

// getStats returns feedback counts and scoring settings
// GET /api/stats
func (s *Server) getStats(c *gin.Context) {
	stats, err := s.feedbackRepo.Stats(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		ModelLoaded:       s.predictor.ModelLoaded(),
		FeedbackCount:     stats.Total,
		FeedbackByRating:  stats.ByRating,
		QualityThresholds: s.predictor.Config().Thresholds(),
		UptimeSeconds:     time.Since(s.startedAt).Seconds(),
	})
}

// retrainModel retrains the classifier synchronously
// POST /api/model/retrain
func (s *Server) retrainModel(c *gin.Context) {
	if s.trainer == nil {
		errorResponse(c, http.StatusServiceUnavailable, "Trained model is disabled")
		return
	}

	m, err := s.trainer.Retrain(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotEnoughFeedback):
			errorResponse(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrRetrainInProgress):
			errorResponse(c, http.StatusConflict, err.Error())
		default:
			slog.Error("Manual retrain failed", "error", err)
			errorResponse(c, http.StatusInternalServerError, "Retrain failed")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"samples":    m.Samples,
		"labels":     m.Labels,
		"trained_at": m.TrainedAt,
	})
}
