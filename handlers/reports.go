package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"investment-research/report"
)

func (h *Handler) ListReports(c *gin.Context) {
	reports, err := h.store.UserReports(c.Request.Context(), userID(c), limitParam(c, 20))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports, "count": len(reports)})
}

func (h *Handler) DownloadReport(c *gin.Context) {
	rep, err := h.store.ReportContent(c.Request.Context(), c.Param("report_id"), userID(c))
	if err != nil {
		h.fail(c, err, "Report not found")
		return
	}

	contentType := "application/octet-stream"
	if f, err := report.ParseFormat(rep.ReportType); err == nil {
		contentType = f.ContentType()
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, rep.Filename))
	c.Data(http.StatusOK, contentType, rep.FileContent)
}

func (h *Handler) DeleteReport(c *gin.Context) {
	if err := h.store.DeleteReport(c.Request.Context(), c.Param("report_id"), userID(c)); err != nil {
		h.fail(c, err, "Report not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Report deleted"})
}

// ClearReports deletes every report of the caller.
func (h *Handler) ClearReports(c *gin.Context) {
	n, err := h.store.CleanupUserReports(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": n})
}
