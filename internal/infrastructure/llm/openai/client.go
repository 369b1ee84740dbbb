// Package openai is the OpenAI-compatible chat completion client. It is
// deliberately thin: the dashboard forwards chat exchanges mostly verbatim
// and relies on the shared resilience executor for rate-limit retries.
package openai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/regdesk/regdesk/internal/core/domain"
	"github.com/regdesk/regdesk/internal/infrastructure/resilience"
)

type Config struct {
	BaseURL string
	APIKey  string
	// Model is used when the request does not name one.
	Model string
	// Temperature is applied when the request does not carry one.
	Temperature float64
	Timeout     time.Duration

	// DevStubEnabled substitutes a canned reply when no API key is set.
	// Off by default so a misconfigured production deploy fails loudly
	// instead of serving stub content.
	DevStubEnabled bool
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	exec       *resilience.Executor
	logger     *slog.Logger
}

func New(cfg Config, exec *resilience.Executor, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		exec:       exec,
		logger:     logger,
	}
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type completionResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message wireMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete forwards one chat exchange to the provider. Rate-limited calls
// are retried by the executor with doubling backoff; every other failure is
// returned on the first attempt.
func (c *Client) Complete(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error) {
	if len(req.Messages) == 0 {
		return domain.ChatResponse{}, domain.WrapError(domain.ErrInvalidInput, "openai.complete",
			fmt.Errorf("messages must not be empty"))
	}

	if c.cfg.APIKey == "" {
		if c.cfg.DevStubEnabled {
			return c.stubResponse(req), nil
		}
		return domain.ChatResponse{}, domain.WrapError(domain.ErrConfiguration, "openai.complete",
			fmt.Errorf("OPENAI_API_KEY is not set"))
	}

	model := req.Model
	if model == "" {
		model = c.cfg.Model
	}
	wireReq := completionRequest{
		Model:    model,
		Messages: make([]wireMessage, 0, len(req.Messages)),
	}
	for _, m := range req.Messages {
		wireReq.Messages = append(wireReq.Messages, wireMessage{Role: m.Role, Content: m.Content})
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.cfg.Temperature
	}
	if temperature != 0 {
		wireReq.Temperature = &temperature
	}

	var wireResp completionResponse
	err := c.exec.Execute(ctx, "chat_completion", func(ctx context.Context) error {
		return c.postJSON(ctx, "/chat/completions", wireReq, &wireResp, "chat_completion")
	}, classifyChatError)
	if err != nil {
		return domain.ChatResponse{}, err
	}

	if len(wireResp.Choices) == 0 {
		return domain.ChatResponse{}, domain.WrapError(domain.ErrTemporary, "openai.complete",
			fmt.Errorf("provider returned no choices"))
	}

	choice := wireResp.Choices[0]
	return domain.ChatResponse{
		ID: wireResp.ID,
		Message: domain.ChatMessage{
			Role:    choice.Message.Role,
			Content: choice.Message.Content,
		},
		Usage: domain.ChatUsage{
			PromptTokens:     wireResp.Usage.PromptTokens,
			CompletionTokens: wireResp.Usage.CompletionTokens,
			TotalTokens:      wireResp.Usage.TotalTokens,
		},
	}, nil
}

// stubResponse is the keyless development reply. The content carries the
// stub marker so the analysis pipeline recognizes and refuses it.
func (c *Client) stubResponse(req domain.ChatRequest) domain.ChatResponse {
	c.logger.Warn("openai_dev_stub_served", "messages", len(req.Messages))
	return domain.ChatResponse{
		ID: "chatcmpl-dev-stub",
		Message: domain.ChatMessage{
			Role: "assistant",
			Content: "[development stub] No model credentials are configured; " +
				"this canned reply stands in for a real completion.",
		},
	}
}
