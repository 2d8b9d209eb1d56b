// Package services runs the research pipeline: collect, clean, narrate,
// render and persist.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"investment-research/cleaner"
	"investment-research/collector"
	"investment-research/database"
	"investment-research/llm"
	"investment-research/logging"
	"investment-research/models"
	"investment-research/report"
)

var (
	ErrEmptyTicker = errors.New("ticker symbol required")
	ErrNoCleanData = errors.New("analysis has no stored dataset")
)

// Store is the persistence the pipeline needs.
type Store interface {
	CreateSession(ctx context.Context, userID, ticker string) (*models.AnalysisSession, error)
	UpdateSession(ctx context.Context, id, status, companyName, errMsg string) error
	Details(ctx context.Context, sessionID, userID string) (*database.Details, error)
	SaveResult(ctx context.Context, r *models.AnalysisResult) error
	SaveReport(ctx context.Context, r *models.Report) error
}

type Research struct {
	source    collector.Source
	cleaner   *cleaner.Cleaner
	agent     *llm.Agent
	reports   *report.Generator
	store     Store
	retention time.Duration
	logger    arbor.ILogger
	now       func() time.Time
}

func NewResearch(source collector.Source, c *cleaner.Cleaner, agent *llm.Agent, reports *report.Generator,
	store Store, retention time.Duration, logger arbor.ILogger) *Research {
	if logger == nil {
		logger = logging.Get()
	}
	return &Research{
		source:    source,
		cleaner:   c,
		agent:     agent,
		reports:   reports,
		store:     store,
		retention: retention,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Outcome is what one pipeline run produced.
type Outcome struct {
	Session  *models.AnalysisSession
	Clean    *cleaner.CleanDataset
	Analysis *llm.Analysis
	Document *report.Document
	ReportID string
}

// NormalizeTicker upper-cases and trims a ticker symbol.
func NormalizeTicker(ticker string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if t == "" {
		return "", ErrEmptyTicker
	}
	return t, nil
}

// Clean collects and cleans a ticker without narrative or persistence.
func (r *Research) Clean(ctx context.Context, ticker string) (*cleaner.CleanDataset, error) {
	t, err := NormalizeTicker(ticker)
	if err != nil {
		return nil, err
	}
	raw, err := r.source.Collect(ctx, t)
	if err != nil {
		return nil, err
	}
	return r.process(raw), nil
}

func (r *Research) process(raw *cleaner.RawDataset) *cleaner.CleanDataset {
	clean := r.cleaner.Process(raw)
	s := clean.InvestmentScores
	r.logger.Info().
		Str("ticker", clean.Ticker).
		Str("company", clean.CompanyName).
		Str("score", fmt.Sprintf("%.1f", s.OverallScore)).
		Str("grade", s.OverallGrade).
		Str("recommendation", string(s.Recommendation)).
		Int("sources_clean", clean.DataQuality.Count()).
		Msg("Dataset cleaned")
	return clean
}

// Analyze runs the full pipeline for a user. Once the session exists any
// failure marks it failed.
func (r *Research) Analyze(ctx context.Context, userID, ticker string, format report.Format) (*Outcome, error) {
	t, err := NormalizeTicker(ticker)
	if err != nil {
		return nil, err
	}

	sess, err := r.store.CreateSession(ctx, userID, t)
	if err != nil {
		return nil, err
	}
	out := &Outcome{Session: sess}

	if err := r.run(ctx, userID, out, format, func() (*cleaner.CleanDataset, error) {
		raw, err := r.source.Collect(ctx, t)
		if err != nil {
			return nil, err
		}
		return r.process(raw), nil
	}); err != nil {
		return out, err
	}
	return out, nil
}

// Regenerate re-runs narrative and report from the dataset stored with an
// earlier session.
func (r *Research) Regenerate(ctx context.Context, userID, sessionID string, format report.Format) (*Outcome, error) {
	d, err := r.store.Details(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if d.Result == nil || d.Result.CleanDataJSON == "" {
		return nil, ErrNoCleanData
	}
	var clean cleaner.CleanDataset
	if err := json.Unmarshal([]byte(d.Result.CleanDataJSON), &clean); err != nil {
		return nil, fmt.Errorf("decode stored dataset: %w", err)
	}

	out := &Outcome{Session: d.Session}
	if err := r.run(ctx, userID, out, format, func() (*cleaner.CleanDataset, error) {
		return &clean, nil
	}); err != nil {
		return out, err
	}
	return out, nil
}

func (r *Research) run(ctx context.Context, userID string, out *Outcome, format report.Format,
	dataset func() (*cleaner.CleanDataset, error)) error {
	id := out.Session.ID
	if err := r.store.UpdateSession(ctx, id, models.StatusProcessing, "", ""); err != nil {
		return r.fail(ctx, out, err)
	}

	clean, err := dataset()
	if err != nil {
		return r.fail(ctx, out, err)
	}
	out.Clean = clean
	out.Analysis = r.agent.Analyze(ctx, clean)

	doc, err := r.reports.Generate(out.Analysis, format)
	if err != nil {
		return r.fail(ctx, out, err)
	}
	out.Document = doc

	now := r.now()
	rep := &models.Report{
		UserID:      userID,
		SessionID:   id,
		Ticker:      clean.Ticker,
		CompanyName: clean.CompanyName,
		ReportType:  doc.Format.FileType(),
		Filename:    doc.Filename,
		FileContent: doc.Data,
		CreatedAt:   now,
		ExpiresAt:   now.Add(r.retention),
	}
	if err := r.store.SaveReport(ctx, rep); err != nil {
		return r.fail(ctx, out, err)
	}
	out.ReportID = rep.ID

	analysisJSON, err := json.Marshal(out.Analysis)
	if err != nil {
		return r.fail(ctx, out, fmt.Errorf("encode analysis: %w", err))
	}
	cleanJSON, err := json.Marshal(clean)
	if err != nil {
		return r.fail(ctx, out, fmt.Errorf("encode dataset: %w", err))
	}
	rec := out.Analysis.Recommendation
	if err := r.store.SaveResult(ctx, &models.AnalysisResult{
		SessionID:                id,
		OverallScore:             out.Analysis.OverallScore,
		RecommendationAction:     string(rec.Action),
		RecommendationConfidence: string(rec.ConfidenceLevel),
		ModelUsed:                out.Analysis.ModelUsed,
		AnalysisJSON:             string(analysisJSON),
		CleanDataJSON:            string(cleanJSON),
		ReportPath:               doc.Path,
		CreatedAt:                now,
	}); err != nil {
		return r.fail(ctx, out, err)
	}

	if err := r.store.UpdateSession(ctx, id, models.StatusCompleted, clean.CompanyName, ""); err != nil {
		return r.fail(ctx, out, err)
	}
	out.Session.Status = models.StatusCompleted
	out.Session.CompanyName = clean.CompanyName

	r.logger.Info().
		Str("session_id", id).
		Str("ticker", clean.Ticker).
		Str("report", doc.Filename).
		Str("model", out.Analysis.ModelUsed).
		Msg("Analysis completed")
	return nil
}

// fail records err on the session. The update runs even after ctx is cancelled.
func (r *Research) fail(ctx context.Context, out *Outcome, err error) error {
	out.Session.Status = models.StatusFailed
	out.Session.ErrorMessage = err.Error()
	if uerr := r.store.UpdateSession(context.WithoutCancel(ctx), out.Session.ID, models.StatusFailed, "", err.Error()); uerr != nil {
		r.logger.Error().Err(uerr).Str("session_id", out.Session.ID).Msg("Failed to mark session failed")
	}
	r.logger.Warn().Err(err).Str("session_id", out.Session.ID).Str("ticker", out.Session.Ticker).Msg("Analysis failed")
	return err
}
