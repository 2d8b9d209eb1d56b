package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"investment-research/database"
)

// FilterParams are the history query parameters.
type FilterParams struct {
	Ticker         string  `form:"ticker"`
	Recommendation string  `form:"recommendation"`
	Status         string  `form:"status"`
	MinScore       float64 `form:"min_score" binding:"min=0,max=100"`
	Limit          int     `form:"limit" binding:"min=0,max=100"`
}

// History lists the caller's analyses, newest first.
func (h *Handler) History(c *gin.Context) {
	var f FilterParams
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter: " + err.Error()})
		return
	}

	history, err := h.store.History(c.Request.Context(), userID(c), database.HistoryFilter{
		Ticker:         f.Ticker,
		Recommendation: f.Recommendation,
		Status:         f.Status,
		MinScore:       f.MinScore,
		Limit:          f.Limit,
	})
	if err != nil {
		h.fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history, "count": len(history)})
}

// Stats summarises the caller's analyses.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func limitParam(c *gin.Context, def int) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if err != nil || limit <= 0 {
		return def
	}
	return limit
}
