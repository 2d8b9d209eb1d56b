package handlers

import (
	"github.com/gin-gonic/gin"

	"investment-research/auth"
)

// Router wires every route onto a new gin engine.
func (h *Handler) Router(corsOrigins []string) (*gin.Engine, error) {
	corsMW, err := CORS(corsOrigins)
	if err != nil {
		return nil, err
	}
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(h.logger), corsMW)

	r.GET("/", h.Status)
	r.GET("/health", h.Health)
	r.POST("/auth/login", h.Login)

	protected := r.Group("/", auth.RequireAuth(h.tokens))
	protected.GET("/auth/me", h.Me)

	api := protected.Group("/api")
	{
		api.POST("/analyze", h.Analyze)
		api.GET("/analysis/history", h.History)
		api.GET("/analysis/ticker/:ticker", h.TickerData)
		api.GET("/analysis/:session_id", h.Details)
		api.POST("/analysis/:session_id/regenerate", h.Regenerate)

		api.GET("/reports", h.ListReports)
		api.DELETE("/reports", h.ClearReports)
		api.GET("/reports/:report_id/download", h.DownloadReport)
		api.DELETE("/reports/:report_id", h.DeleteReport)

		api.GET("/stats", h.Stats)
		api.GET("/models", h.Models)
	}
	return r, nil
}
