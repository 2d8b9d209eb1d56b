package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	DeepSeekBaseURL   = "https://api.deepseek.com/v1"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
)

type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatResponse struct {
	Choices []Choice `json:"choices"`
}

type Choice struct {
	Message Message `json:"message"`
}

// ChatCompletions talks to any OpenAI-compatible /chat/completions endpoint
// (DeepSeek, OpenRouter).
type ChatCompletions struct {
	name       string
	baseURL    string
	apiKey     string
	settings   Settings
	httpClient *http.Client
}

func NewChatCompletions(name, baseURL, apiKey string, s Settings) *ChatCompletions {
	return &ChatCompletions{
		name:       name,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		settings:   s,
		httpClient: &http.Client{Timeout: s.Timeout},
	}
}

func (c *ChatCompletions) Name() string  { return c.name }
func (c *ChatCompletions) Model() string { return c.settings.Model }

func (c *ChatCompletions) Generate(ctx context.Context, system, prompt string) (string, error) {
	requestBody := ChatRequest{
		Model: c.settings.Model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.settings.MaxTokens,
		Temperature: c.settings.Temperature,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%s API error %d: %s", c.name, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var response ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response from %s", c.name)
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}
