package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"investment-research/collector"
	"investment-research/report"
	"investment-research/services"
)

type AnalysisRequest struct {
	Ticker       string `json:"ticker" binding:"required"`
	ReportFormat string `json:"report_format"`
}

type RegenerateRequest struct {
	ReportFormat string `json:"report_format"`
}

func (h *Handler) format(requested string) (report.Format, error) {
	if requested == "" {
		return h.defaultFormat, nil
	}
	return report.ParseFormat(requested)
}

func analysisResponse(out *services.Outcome) gin.H {
	an := out.Analysis
	return gin.H{
		"success": true,
		"message": fmt.Sprintf("Analysis completed for %s", an.CompanyName),
		"data": gin.H{
			"session_id":         out.Session.ID,
			"ticker":             an.Ticker,
			"company_name":       an.CompanyName,
			"overall_score":      an.OverallScore,
			"recommendation":     an.Recommendation.Action,
			"analysis_timestamp": an.AnalysisTimestamp,
			"model_used":         an.ModelUsed,
			"sections":           an.Sections(),
		},
		"report_id":     out.ReportID,
		"report_path":   out.Document.Path,
		"report_format": out.Document.Format,
	}
}

// Analyze runs collection, cleaning, narrative and rendering for a ticker.
func (h *Handler) Analyze(c *gin.Context) {
	var req AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ticker symbol required"})
		return
	}
	format, err := h.format(req.ReportFormat)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := h.research.Analyze(c.Request.Context(), userID(c), req.Ticker, format)
	if err != nil {
		if errors.Is(err, collector.ErrNoBasicInfo) {
			ticker, _ := services.NormalizeTicker(req.Ticker)
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Could not collect data for ticker %s", ticker)})
			return
		}
		h.fail(c, err, "Analysis not found")
		return
	}
	c.JSON(http.StatusOK, analysisResponse(out))
}

// Regenerate rebuilds narrative and report from a stored session without
// collecting data again.
func (h *Handler) Regenerate(c *gin.Context) {
	var req RegenerateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}
	format, err := h.format(req.ReportFormat)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := h.research.Regenerate(c.Request.Context(), userID(c), c.Param("session_id"), format)
	if err != nil {
		h.fail(c, err, "Analysis not found")
		return
	}
	c.JSON(http.StatusOK, analysisResponse(out))
}

// Details returns one of the caller's sessions with its stored result.
func (h *Handler) Details(c *gin.Context) {
	d, err := h.store.Details(c.Request.Context(), c.Param("session_id"), userID(c))
	if err != nil {
		h.fail(c, err, "Analysis not found")
		return
	}

	body := gin.H{"session": d.Session}
	if d.Result != nil {
		body["result"] = d.Result
		if d.Result.AnalysisJSON != "" {
			body["analysis_data"] = json.RawMessage(d.Result.AnalysisJSON)
		}
	}
	c.JSON(http.StatusOK, body)
}

// TickerData returns the cleaned dataset for a ticker without narrative.
func (h *Handler) TickerData(c *gin.Context) {
	clean, err := h.research.Clean(c.Request.Context(), c.Param("ticker"))
	if err != nil {
		if errors.Is(err, collector.ErrNoBasicInfo) {
			ticker, _ := services.NormalizeTicker(c.Param("ticker"))
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Could not collect data for ticker %s", ticker)})
			return
		}
		h.fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, clean)
}
