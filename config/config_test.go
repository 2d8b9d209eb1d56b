package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, "none", cfg.LLM.Provider)
	assert.Equal(t, 4, cfg.Data.PeerLimit)
	assert.Equal(t, "pdf", cfg.Reports.DefaultFormat)
	assert.InDelta(t, 0.30, cfg.Scoring.Weights.FinancialHealth, 1e-12)
	assert.InDelta(t, 0.20, cfg.Scoring.Weights.MarketPosition, 1e-12)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("RESEARCH_SERVER_PORT", "9001")
	t.Setenv("RESEARCH_LLM_PROVIDER", "claude")
	t.Setenv("EODHD_API_KEY", "eod-key")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, "claude", cfg.LLM.Provider)
	assert.Equal(t, "eod-key", cfg.Data.EODHDAPIKey)
	assert.Equal(t, "sk-ant", cfg.LLM.APIKey)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "research.toml")
	content := `
[server]
port = 8100

[llm]
provider = "gemini"
model = "gemini-2.5-flash"

[reports]
retention = "48h"

[scoring.weights]
financial_health = 0.4
market_sentiment = 0.2
peer_performance = 0.2
market_position = 0.2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8100, cfg.Server.Port)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.Equal(t, 48*time.Hour, cfg.Reports.Retention)
	assert.InDelta(t, 0.4, cfg.Scoring.Weights.FinancialHealth, 1e-12)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown provider", map[string]string{"RESEARCH_LLM_PROVIDER": "gpt-9"}},
		{"short secret", map[string]string{"RESEARCH_AUTH_JWT_SECRET": "short"}},
		{"weights do not sum to one", map[string]string{"RESEARCH_SCORING_WEIGHTS_FINANCIAL_HEALTH": "0.9"}},
		{"bad port", map[string]string{"RESEARCH_SERVER_PORT": "70000"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestConfig_CheckServe(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		secret  string
		wantErr bool
	}{
		{"release with placeholder", "release", DefaultJWTSecret, true},
		{"release with private secret", "release", "s3cr3t-value", false},
		{"debug with placeholder", "debug", DefaultJWTSecret, false},
		{"empty secret", "debug", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Server: ServerConfig{Mode: tt.mode}, Auth: AuthConfig{JWTSecret: tt.secret}}
			err := cfg.CheckServe()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInsecureSecret)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_DefaultsAreNotServable(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.CheckServe(), ErrInsecureSecret)

	t.Setenv("JWT_SECRET", "from-environment")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.NoError(t, cfg.CheckServe())
}
