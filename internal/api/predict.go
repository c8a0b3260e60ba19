package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shapedtime/releasegrade/internal/quality"
	"github.com/shapedtime/releasegrade/internal/torrent"
)

// maxBatchSize caps the number of candidates in one batch request
const maxBatchSize = 100

// CandidateRequest carries one search result. Magnet is optional; its
// display name is used when Torrent has no title.
type CandidateRequest struct {
	Torrent *quality.CandidateRecord `json:"torrent"`
	Magnet  string                   `json:"magnet,omitempty"`
}

type PredictResponse struct {
	Success    bool                   `json:"success"`
	Prediction quality.QualityVerdict `json:"prediction"`
	InfoHash   string                 `json:"info_hash,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

type BatchPredictRequest struct {
	Candidates []CandidateRequest `json:"candidates" binding:"required"`
}

type BatchPredictResponse struct {
	Success     bool              `json:"success"`
	Predictions []PredictResponse `json:"predictions"`
	BestIndex   int               `json:"best_index"`
	Timestamp   time.Time         `json:"timestamp"`
}

var errNoTorrent = errors.New("no torrent data provided")

// resolveCandidate validates a request and fills the title from the magnet
// display name when needed. It returns the candidate and the info hash.
func resolveCandidate(req CandidateRequest) (quality.CandidateRecord, string, error) {
	var rec quality.CandidateRecord
	if req.Torrent != nil {
		rec = *req.Torrent
	}
	// An empty torrent object carries nothing to grade
	hasTorrent := rec != quality.CandidateRecord{}

	var infoHash string
	if req.Magnet != "" {
		info, err := torrent.ParseMagnet(req.Magnet)
		if err != nil {
			return rec, "", err
		}
		infoHash = info.InfoHash
		if rec.Title == "" {
			rec.Title = info.DisplayName
		}
	}

	if !hasTorrent && req.Magnet == "" {
		return rec, "", errNoTorrent
	}

	return rec, infoHash, nil
}

// predict grades a single candidate
// POST /api/predict
func (s *Server) predict(c *gin.Context) {
	var req CandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "No data provided")
		return
	}

	rec, infoHash, err := resolveCandidate(req)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, PredictResponse{
		Success:    true,
		Prediction: s.predictor.Predict(rec),
		InfoHash:   infoHash,
		Timestamp:  time.Now().UTC(),
	})
}

// predictBatch grades candidates and points at the best non-fake one
// POST /api/predict/batch
func (s *Server) predictBatch(c *gin.Context) {
	var req BatchPredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "No data provided")
		return
	}
	if len(req.Candidates) == 0 {
		errorResponse(c, http.StatusBadRequest, "No candidates provided")
		return
	}
	if len(req.Candidates) > maxBatchSize {
		errorResponse(c, http.StatusBadRequest, "Too many candidates")
		return
	}

	recs := make([]quality.CandidateRecord, len(req.Candidates))
	hashes := make([]string, len(req.Candidates))
	for i, cr := range req.Candidates {
		rec, infoHash, err := resolveCandidate(cr)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		recs[i], hashes[i] = rec, infoHash
	}

	verdicts, best := s.predictor.PredictBatch(recs)
	now := time.Now().UTC()

	resp := BatchPredictResponse{
		Success:     true,
		Predictions: make([]PredictResponse, len(verdicts)),
		BestIndex:   best,
		Timestamp:   now,
	}
	for i, v := range verdicts {
		resp.Predictions[i] = PredictResponse{
			Success:    true,
			Prediction: v,
			InfoHash:   hashes[i],
			Timestamp:  now,
		}
	}

	c.JSON(http.StatusOK, resp)
}
