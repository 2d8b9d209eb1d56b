// Package handlers exposes the research pipeline over HTTP with gin.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ternarybob/arbor"

	"investment-research/auth"
	"investment-research/collector"
	"investment-research/database"
	"investment-research/llm"
	"investment-research/logging"
	"investment-research/report"
	"investment-research/services"
)

// Handler carries the dependencies shared by every route.
type Handler struct {
	research      *services.Research
	store         *database.Store
	tokens        *auth.Manager
	provider      llm.Provider
	defaultFormat report.Format
	version       string
	logger        arbor.ILogger
}

type Options struct {
	Research      *services.Research
	Store         *database.Store
	Tokens        *auth.Manager
	Provider      llm.Provider
	DefaultFormat report.Format
	Version       string
	Logger        arbor.ILogger
}

func New(o Options) *Handler {
	if o.Logger == nil {
		o.Logger = logging.Get()
	}
	if o.Provider == nil {
		o.Provider = llm.Offline{}
	}
	if o.DefaultFormat == "" {
		o.DefaultFormat = report.FormatPDF
	}
	return &Handler{
		research:      o.Research,
		store:         o.Store,
		tokens:        o.Tokens,
		provider:      o.Provider,
		defaultFormat: o.DefaultFormat,
		version:       o.Version,
		logger:        o.Logger,
	}
}

// userID is the subject of the authenticated request.
func userID(c *gin.Context) string {
	if claims := auth.CurrentUser(c); claims != nil {
		return claims.Subject
	}
	return ""
}

// fail maps err to a status code and writes the error body.
func (h *Handler) fail(c *gin.Context, err error, notFoundMsg string) {
	status := http.StatusInternalServerError
	msg := err.Error()
	switch {
	case errors.Is(err, services.ErrEmptyTicker):
		status = http.StatusBadRequest
	case errors.Is(err, collector.ErrNoBasicInfo):
		status = http.StatusNotFound
	case errors.Is(err, database.ErrNotFound):
		status = http.StatusNotFound
		msg = notFoundMsg
	case errors.Is(err, services.ErrNoCleanData):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	}
	c.JSON(status, gin.H{"error": msg})
}
