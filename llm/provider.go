// Package llm turns a cleaned dataset into a sectioned investment narrative
// using a pluggable text generation backend.
package llm

import (
	"context"
	"fmt"
	"time"

	"investment-research/config"
)

const systemPrompt = "You are a professional investment analyst with deep expertise in financial markets."

// Provider generates text for a single prompt.
type Provider interface {
	Name() string
	Model() string
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Settings are the generation parameters shared by every backend.
type Settings struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

func settingsFrom(cfg config.LLMConfig, defaultModel string) Settings {
	s := Settings{
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
	}
	if s.Model == "" {
		s.Model = defaultModel
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = 800
	}
	if s.Timeout <= 0 {
		s.Timeout = 60 * time.Second
	}
	return s
}

// NewProvider builds the backend named by cfg.Provider. Without an API key
// every provider degrades to Offline.
func NewProvider(ctx context.Context, cfg config.LLMConfig) (Provider, error) {
	if cfg.Provider == "" || cfg.Provider == "none" || cfg.APIKey == "" {
		return Offline{}, nil
	}
	switch cfg.Provider {
	case "deepseek":
		return NewChatCompletions("deepseek", firstNonEmpty(cfg.BaseURL, DeepSeekBaseURL), cfg.APIKey,
			settingsFrom(cfg, "deepseek-chat")), nil
	case "openrouter":
		return NewChatCompletions("openrouter", firstNonEmpty(cfg.BaseURL, OpenRouterBaseURL), cfg.APIKey,
			settingsFrom(cfg, "deepseek/deepseek-chat")), nil
	case "claude":
		return NewClaude(cfg.APIKey, settingsFrom(cfg, DefaultClaudeModel)), nil
	case "gemini":
		return NewGemini(ctx, cfg.APIKey, settingsFrom(cfg, DefaultGeminiModel))
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// OfflineText is returned for every prompt when no backend is configured.
const OfflineText = "No AI backend available"

// Offline is the provider used when no API key is configured.
type Offline struct{}

func (Offline) Name() string  { return "none" }
func (Offline) Model() string { return "No Model" }

func (Offline) Generate(ctx context.Context, system, prompt string) (string, error) {
	return OfflineText, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
