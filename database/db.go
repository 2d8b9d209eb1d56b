// Package database persists users, analysis sessions, results and reports
// in SQLite through gorm.
package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"investment-research/logging"
	"investment-research/models"
)

var (
	ErrNotFound   = fmt.Errorf("record not found: %w", gorm.ErrRecordNotFound)
	ErrUserExists = errors.New("username already taken")
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
	defaultReportLimit  = 20
)

type Store struct {
	db     *gorm.DB
	logger arbor.ILogger
	now    func() time.Time
}

func utcNow() time.Time { return time.Now().UTC() }

// Open connects to the SQLite database at path and migrates the schema.
func Open(path string, logger arbor.ILogger) (*Store, error) {
	if logger == nil {
		logger = logging.Get()
	}
	if dir := filepath.Dir(path); !strings.HasPrefix(path, "file:") && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: utcNow,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.AnalysisSession{}, &models.AnalysisResult{}, &models.Report{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	logger.Info().Str("path", path).Msg("Database connected")
	return &Store{db: db, logger: logger, now: utcNow}, nil
}

func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Users

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", u.Username).Count(&n).Error; err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if n > 0 {
		return ErrUserExists
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) User(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// Sessions

func (s *Store) CreateSession(ctx context.Context, userID, ticker string) (*models.AnalysisSession, error) {
	sess := &models.AnalysisSession{
		ID:     uuid.NewString(),
		UserID: userID,
		Ticker: strings.ToUpper(ticker),
		Status: models.StatusPending,
	}
	if err := s.db.WithContext(ctx).Create(sess).Error; err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.logger.Debug().Str("session_id", sess.ID).Str("user_id", userID).Str("ticker", sess.Ticker).Msg("Analysis session created")
	return sess, nil
}

// UpdateSession sets the status. Completing a session stamps completed_at;
// empty companyName and errMsg leave the stored values alone.
func (s *Store) UpdateSession(ctx context.Context, id, status, companyName, errMsg string) error {
	updates := map[string]any{"status": status}
	if companyName != "" {
		updates["company_name"] = companyName
	}
	if errMsg != "" {
		updates["error_message"] = errMsg
	}
	if status == models.StatusCompleted {
		updates["completed_at"] = s.now()
		updates["error_message"] = ""
	}

	res := s.db.WithContext(ctx).Model(&models.AnalysisSession{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Session(ctx context.Context, id, userID string) (*models.AnalysisSession, error) {
	var sess models.AnalysisSession
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&sess).Error; err != nil {
		return nil, notFound(err)
	}
	return &sess, nil
}

// Results

// SaveResult stores the result of a session, replacing an earlier one.
func (s *Store) SaveResult(ctx context.Context, r *models.AnalysisResult) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"overall_score", "recommendation_action", "recommendation_confidence", "model_used", "analysis_json", "clean_data_json", "report_path", "created_at"}),
	}).Create(r).Error
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

func (s *Store) Result(ctx context.Context, sessionID string) (*models.AnalysisResult, error) {
	var r models.AnalysisResult
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&r).Error; err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

// Details is a session with its result, if one was saved.
type Details struct {
	Session *models.AnalysisSession
	Result  *models.AnalysisResult
}

// Details returns the session only when it belongs to userID.
func (s *Store) Details(ctx context.Context, sessionID, userID string) (*Details, error) {
	sess, err := s.Session(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	d := &Details{Session: sess}
	r, err := s.Result(ctx, sessionID)
	switch {
	case err == nil:
		d.Result = r
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}
	return d, nil
}

// HistoryFilter narrows History. Zero values disable a filter.
type HistoryFilter struct {
	Ticker         string
	Recommendation string
	Status         string
	MinScore       float64
	Limit          int
}

func (s *Store) History(ctx context.Context, userID string, f HistoryFilter) ([]models.HistoryEntry, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	query := s.db.WithContext(ctx).Table("analysis_sessions AS s").
		Select("s.id AS session_id, s.ticker, s.company_name, s.status, s.created_at, s.completed_at, " +
			"r.overall_score, r.recommendation_action, r.report_path").
		Joins("LEFT JOIN analysis_results r ON r.session_id = s.id").
		Where("s.user_id = ?", userID)

	if f.Ticker != "" {
		query = query.Where("s.ticker = ?", strings.ToUpper(f.Ticker))
	}
	if f.Recommendation != "" {
		query = query.Where("r.recommendation_action = ?", strings.ToUpper(f.Recommendation))
	}
	if f.Status != "" {
		query = query.Where("s.status = ?", strings.ToLower(f.Status))
	}
	if f.MinScore > 0 {
		query = query.Where("r.overall_score >= ?", f.MinScore)
	}

	entries := []models.HistoryEntry{}
	if err := query.Order("s.created_at DESC").Limit(limit).Scan(&entries).Error; err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return entries, nil
}

type recommendationCount struct {
	Action string
	Count  int64
}

func (s *Store) Stats(ctx context.Context, userID string) (*models.Stats, error) {
	db := s.db.WithContext(ctx)
	stats := &models.Stats{ByRecommendation: map[string]int64{}}

	sessions := func() *gorm.DB {
		return db.Model(&models.AnalysisSession{}).Where("user_id = ?", userID)
	}
	results := func() *gorm.DB {
		return db.Table("analysis_results AS r").
			Joins("JOIN analysis_sessions s ON s.id = r.session_id").
			Where("s.user_id = ?", userID)
	}

	if err := sessions().Count(&stats.TotalAnalyses).Error; err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}
	if err := sessions().Where("status = ?", models.StatusCompleted).Count(&stats.Completed).Error; err != nil {
		return nil, fmt.Errorf("count completed: %w", err)
	}
	if err := sessions().Where("status = ?", models.StatusFailed).Count(&stats.Failed).Error; err != nil {
		return nil, fmt.Errorf("count failed: %w", err)
	}
	if err := sessions().Distinct("ticker").Count(&stats.DistinctTickers).Error; err != nil {
		return nil, fmt.Errorf("count tickers: %w", err)
	}
	if err := results().Select("COALESCE(AVG(r.overall_score), 0)").Scan(&stats.AvgScore).Error; err != nil {
		return nil, fmt.Errorf("average score: %w", err)
	}

	var counts []recommendationCount
	if err := results().Select("r.recommendation_action AS action, COUNT(*) AS count").
		Group("r.recommendation_action").Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("count recommendations: %w", err)
	}
	for _, c := range counts {
		stats.ByRecommendation[c.Action] = c.Count
	}

	if err := db.Model(&models.Report{}).Where("user_id = ? AND expires_at > ?", userID, s.now()).
		Count(&stats.ActiveReports).Error; err != nil {
		return nil, fmt.Errorf("count reports: %w", err)
	}
	return stats, nil
}

// Reports

func (s *Store) SaveReport(ctx context.Context, r *models.Report) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	r.FileSize = int64(len(r.FileContent))
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	s.logger.Info().
		Str("report_id", r.ID).
		Str("user_id", r.UserID).
		Str("ticker", r.Ticker).
		Str("type", r.ReportType).
		Int64("size", r.FileSize).
		Msg("Report saved")
	return nil
}

// UserReports lists the unexpired reports of a user, newest first.
func (s *Store) UserReports(ctx context.Context, userID string, limit int) ([]models.ReportSummary, error) {
	if limit <= 0 {
		limit = defaultReportLimit
	}
	reports := []models.ReportSummary{}
	err := s.db.WithContext(ctx).Table("reports AS p").
		Select("p.id AS report_id, p.ticker, p.company_name, p.report_type, p.filename, p.file_size, "+
			"p.created_at, p.expires_at, r.overall_score, r.recommendation_action, r.model_used").
		Joins("LEFT JOIN analysis_results r ON r.session_id = p.session_id").
		Where("p.user_id = ? AND p.expires_at > ?", userID, s.now()).
		Order("p.created_at DESC").
		Limit(limit).
		Scan(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// ReportContent returns an unexpired report owned by userID.
func (s *Store) ReportContent(ctx context.Context, reportID, userID string) (*models.Report, error) {
	var r models.Report
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND expires_at > ?", reportID, userID, s.now()).
		First(&r).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *Store) DeleteReport(ctx context.Context, reportID, userID string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", reportID, userID).Delete(&models.Report{})
	if res.Error != nil {
		return fmt.Errorf("delete report: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CleanupUserReports(ctx context.Context, userID string) (int64, error) {
	res := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Report{})
	if res.Error != nil {
		return 0, fmt.Errorf("cleanup user reports: %w", res.Error)
	}
	s.logger.Info().Str("user_id", userID).Int64("deleted", res.RowsAffected).Msg("User reports cleaned up")
	return res.RowsAffected, nil
}

func (s *Store) CleanupExpiredReports(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now()).Delete(&models.Report{})
	if res.Error != nil {
		return 0, fmt.Errorf("cleanup expired reports: %w", res.Error)
	}
	s.logger.Info().Int64("deleted", res.RowsAffected).Msg("Expired reports cleaned up")
	return res.RowsAffected, nil
}
