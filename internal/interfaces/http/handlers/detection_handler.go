package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crawlmeter/crawlmeter/internal/application/valuation"
)

// DetectionHandler serves the single-access processing endpoint.
type DetectionHandler struct {
	svc *valuation.Service
}

// NewDetectionHandler constructs a DetectionHandler.
func NewDetectionHandler(svc *valuation.Service) *DetectionHandler {
	return &DetectionHandler{svc: svc}
}

type recordDetectionRequest struct {
	UserAgent string `json:"user_agent" binding:"required"`
	Locator   string `json:"locator"`
	SourceID  string `json:"source_id"`

	WordCount      int  `json:"word_count"`
	QualityScore   int  `json:"quality_score"`
	PublishAgeDays *int `json:"publish_age_days"`
	ForceRefresh   bool `json:"force_refresh"`
}

// Record classifies, extracts, and prices one access, returning the full
// detection with its valuation breakdown.
func (h *DetectionHandler) Record(c *gin.Context) {
	var req recordDetectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "user_agent is required")
		return
	}

	d, err := h.svc.Process(c.Request.Context(), valuation.ProcessRequest{
		UserAgent:      req.UserAgent,
		Locator:        req.Locator,
		SourceID:       req.SourceID,
		WordCount:      req.WordCount,
		QualityScore:   req.QualityScore,
		PublishAgeDays: req.PublishAgeDays,
		ForceRefresh:   req.ForceRefresh,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, d)
}
