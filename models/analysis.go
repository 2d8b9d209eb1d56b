package models

import "time"

// Session statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

type User struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type AnalysisSession struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	UserID       string     `json:"user_id" gorm:"index"`
	Ticker       string     `json:"ticker" gorm:"index"`
	CompanyName  string     `json:"company_name"`
	Status       string     `json:"analysis_status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// AnalysisResult holds the outcome of one session. AnalysisJSON and
// CleanDataJSON keep the narrative and the cleaned dataset as JSON.
type AnalysisResult struct {
	ID                       string    `json:"id" gorm:"primaryKey"`
	SessionID                string    `json:"session_id" gorm:"uniqueIndex"`
	OverallScore             float64   `json:"overall_score"`
	RecommendationAction     string    `json:"recommendation_action"`
	RecommendationConfidence string    `json:"recommendation_confidence"`
	ModelUsed                string    `json:"model_used"`
	AnalysisJSON             string    `json:"-"`
	CleanDataJSON            string    `json:"-"`
	ReportPath               string    `json:"report_path"`
	CreatedAt                time.Time `json:"created_at"`
}

type Report struct {
	ID          string    `json:"report_id" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"index"`
	SessionID   string    `json:"session_id" gorm:"index"`
	Ticker      string    `json:"ticker"`
	CompanyName string    `json:"company_name"`
	ReportType  string    `json:"report_type"`
	Filename    string    `json:"filename"`
	FileContent []byte    `json:"-"`
	FileSize    int64     `json:"file_size"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at" gorm:"index"`
}

// HistoryEntry is a session joined with its result, if any.
type HistoryEntry struct {
	SessionID            string     `json:"id"`
	Ticker               string     `json:"ticker"`
	CompanyName          string     `json:"company_name"`
	Status               string     `json:"analysis_status"`
	CreatedAt            time.Time  `json:"created_at"`
	CompletedAt          *time.Time `json:"completed_at"`
	OverallScore         *float64   `json:"overall_score"`
	RecommendationAction string     `json:"recommendation_action"`
	ReportPath           string     `json:"report_path"`
}

type ReportSummary struct {
	ReportID             string    `json:"report_id"`
	Ticker               string    `json:"ticker"`
	CompanyName          string    `json:"company_name"`
	ReportType           string    `json:"report_type"`
	Filename             string    `json:"filename"`
	FileSize             int64     `json:"file_size"`
	CreatedAt            time.Time `json:"created_at"`
	ExpiresAt            time.Time `json:"expires_at"`
	OverallScore         *float64  `json:"overall_score"`
	RecommendationAction string    `json:"recommendation_action"`
	ModelUsed            string    `json:"model_used"`
}

type Stats struct {
	TotalAnalyses    int64            `json:"total_analyses"`
	Completed        int64            `json:"completed"`
	Failed           int64            `json:"failed"`
	AvgScore         float64          `json:"avg_score"`
	ByRecommendation map[string]int64 `json:"by_recommendation"`
	ActiveReports    int64            `json:"active_reports"`
	DistinctTickers  int64            `json:"distinct_tickers"`
}
