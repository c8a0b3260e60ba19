package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shapedtime/releasegrade/internal/feedback"
	"github.com/shapedtime/releasegrade/internal/quality"
)

type FeedbackRequest struct {
	CandidateRequest
	Rating string `json:"rating" binding:"required"`
}

type FeedbackResponse struct {
	ID                int64                   `json:"id"`
	Torrent           quality.CandidateRecord `json:"torrent"`
	InfoHash          string                  `json:"info_hash,omitempty"`
	Rating            quality.Category        `json:"rating"`
	PredictedScore    *float64                `json:"predicted_score,omitempty"`
	PredictedCategory quality.Category        `json:"predicted_category,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
}

type SubmitFeedbackResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	ID               int64  `json:"id"`
	FeedbackCount    int64  `json:"feedback_count"`
	RetrainScheduled bool   `json:"retrain_scheduled"`
}

// submitFeedback stores a user rating and retrains when enough have accumulated
// POST /api/feedback
func (s *Server) submitFeedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "No feedback data provided")
		return
	}

	rating, ok := quality.ParseCategory(req.Rating)
	if !ok {
		errorResponse(c, http.StatusBadRequest, feedback.ErrInvalidRating.Error())
		return
	}

	rec, infoHash, err := resolveCandidate(req.CandidateRequest)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	// Record what the predictor thought at submission time
	verdict := quality.Classify(rec, s.predictor.Config())
	entry := &feedback.Entry{
		Candidate:         rec,
		InfoHash:          infoHash,
		Rating:            rating,
		PredictedScore:    &verdict.QualityScore,
		PredictedCategory: verdict.QualityCategory,
	}

	ctx := c.Request.Context()
	if err := s.feedbackRepo.Create(ctx, entry); err != nil {
		slog.Error("Failed to store feedback", "error", err)
		errorResponse(c, http.StatusInternalServerError, "Failed to store feedback")
		return
	}
	s.metrics.ObserveFeedback(rating)

	count, err := s.feedbackRepo.Count(ctx)
	if err != nil {
		slog.Error("Failed to count feedback", "error", err)
		errorResponse(c, http.StatusInternalServerError, "Failed to count feedback")
		return
	}

	var scheduled bool
	if s.trainer != nil {
		scheduled = s.trainer.MaybeRetrain(count)
	}

	c.JSON(http.StatusOK, SubmitFeedbackResponse{
		Success:          true,
		Message:          "Feedback received",
		ID:               entry.ID,
		FeedbackCount:    count,
		RetrainScheduled: scheduled,
	})
}

// listFeedback returns stored feedback, newest first
// GET /api/feedback?limit=50&offset=0
func (s *Server) listFeedback(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		errorResponse(c, http.StatusBadRequest, "Invalid limit")
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		errorResponse(c, http.StatusBadRequest, "Invalid offset")
		return
	}

	entries, err := s.feedbackRepo.List(c.Request.Context(), limit, offset)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	response := make([]FeedbackResponse, len(entries))
	for i, e := range entries {
		response[i] = entryToResponse(e)
	}

	c.JSON(http.StatusOK, gin.H{"feedback": response})
}

// getFeedback returns a single feedback entry
// GET /api/feedback/:id
func (s *Server) getFeedback(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid feedback ID")
		return
	}

	entry, err := s.feedbackRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, feedback.ErrFeedbackNotFound) {
			errorResponse(c, http.StatusNotFound, "Feedback not found")
			return
		}
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, entryToResponse(entry))
}

// deleteFeedback removes a feedback entry
// DELETE /api/feedback/:id
func (s *Server) deleteFeedback(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid feedback ID")
		return
	}

	if err := s.feedbackRepo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, feedback.ErrFeedbackNotFound) {
			errorResponse(c, http.StatusNotFound, "Feedback not found")
			return
		}
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func entryToResponse(e *feedback.Entry) FeedbackResponse {
	return FeedbackResponse{
		ID:                e.ID,
		Torrent:           e.Candidate,
		InfoHash:          e.InfoHash,
		Rating:            e.Rating,
		PredictedScore:    e.PredictedScore,
		PredictedCategory: e.PredictedCategory,
		CreatedAt:         e.CreatedAt,
	}
}
