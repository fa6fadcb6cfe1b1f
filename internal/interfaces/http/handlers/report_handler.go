package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crawlmeter/crawlmeter/internal/application/reporting"
)

// ReportHandler serves portfolio summaries and raw detection exports.
type ReportHandler struct {
	svc *reporting.Service
}

// NewReportHandler constructs a ReportHandler.
func NewReportHandler(svc *reporting.Service) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// PortfolioSummary aggregates stored detections over a time window.
func (h *ReportHandler) PortfolioSummary(c *gin.Context) {
	from, to, err := parseTimeWindow(c)
	if err != nil {
		respondError(c, err)
		return
	}

	report, err := h.svc.PortfolioReport(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Export streams the detections in a time window as JSON or CSV.
func (h *ReportHandler) Export(c *gin.Context) {
	from, to, err := parseTimeWindow(c)
	if err != nil {
		respondError(c, err)
		return
	}

	format := c.DefaultQuery("format", reporting.FormatJSON)
	switch format {
	case reporting.FormatJSON, reporting.FormatCSV:
	default:
		respondBadRequest(c, "format must be json or csv")
		return
	}

	detections, err := h.svc.ListWindow(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	if format == reporting.FormatCSV {
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", `attachment; filename="detections.csv"`)
	} else {
		c.Header("Content-Type", "application/json")
	}

	c.Status(http.StatusOK)
	if err := h.svc.Export(c.Writer, detections, format); err != nil {
		// Headers are already sent; all we can do is log via the error
		// middleware path and cut the stream.
		_ = c.Error(err)
	}
}
