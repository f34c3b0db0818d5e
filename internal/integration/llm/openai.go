package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/visionhq/backlog-backend/internal/config"
	"github.com/visionhq/backlog-backend/internal/entity"
	"github.com/visionhq/backlog-backend/internal/integration/common"
	pkghttp "github.com/visionhq/backlog-backend/pkg/http"
	"go.uber.org/zap"
)

// Connector speaks the OpenAI chat-completions wire format. Grok exposes the
// same API, so both providers share this connector with different base URLs.
type Connector struct {
	config    config.LLMProviderConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(cfg config.LLMProviderConfig, logger *zap.Logger) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Call sends one chat completion request bounded by timeout. A deadline hit
// is reported as entity.ErrLLMTimeout so the generation loop can tell it
// apart from other failures.
func (c *Connector) Call(ctx context.Context, systemPrompt, userPrompt, model string, timeout time.Duration) (string, entity.LLMUsage, error) {
	if model == "" {
		model = c.config.Model
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ctxzap.Info(ctx, "calling chat completions API",
		zap.String("model", model),
		zap.Duration("timeout", timeout),
	)

	req := chatCompletionRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: c.config.Temperature,
	}

	var resp chatCompletionResponse
	err := retry.Do(
		func() error {
			return c.connector.DoRequest(ctx, http.MethodPost, c.config.CompletionsEndpoint, req, &resp)
		},
		append(c.config.Retry.ToRetryOptions(),
			retry.Context(ctx),
			retry.LastErrorOnly(true),
			retry.RetryIf(isTransient),
		)...,
	)
	if err != nil {
		if pkghttp.IsTimeout(err) {
			return "", entity.LLMUsage{}, fmt.Errorf("%w: %v", entity.ErrLLMTimeout, err)
		}
		return "", entity.LLMUsage{}, fmt.Errorf("chat completion failed: %w", err)
	}

	usage := entity.LLMUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", usage, entity.ErrEmptyLLMResponse
	}

	ctxzap.Info(ctx, "chat completion received",
		zap.Int("prompt_tokens", usage.PromptTokens),
		zap.Int("completion_tokens", usage.CompletionTokens),
	)

	return resp.Choices[0].Message.Content, usage, nil
}
