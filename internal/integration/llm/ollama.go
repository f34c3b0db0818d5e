package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/visionhq/backlog-backend/internal/config"
	"github.com/visionhq/backlog-backend/internal/entity"
	"github.com/visionhq/backlog-backend/internal/integration/common"
	pkghttp "github.com/visionhq/backlog-backend/pkg/http"
	"go.uber.org/zap"
)

// OllamaConnector talks to a local Ollama server. Model selection is driven
// by the generation loop's fallback manager, so no retry policy is applied
// here: each call is exactly one attempt against one model.
type OllamaConnector struct {
	config    config.OllamaConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewOllamaConnector(cfg config.OllamaConfig, logger *zap.Logger) *OllamaConnector {
	return &OllamaConnector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type ollamaChatResponse struct {
	Message         chatMessage `json:"message"`
	PromptEvalCount int         `json:"prompt_eval_count"`
	EvalCount       int         `json:"eval_count"`
}

func (c *OllamaConnector) Call(ctx context.Context, systemPrompt, userPrompt, model string, timeout time.Duration) (string, entity.LLMUsage, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ctxzap.Info(ctx, "calling ollama",
		zap.String("model", model),
		zap.Duration("timeout", timeout),
	)

	req := ollamaChatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream: false,
	}

	var resp ollamaChatResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, c.config.ChatEndpoint, req, &resp); err != nil {
		if pkghttp.IsTimeout(err) {
			return "", entity.LLMUsage{}, fmt.Errorf("%w: %v", entity.ErrLLMTimeout, err)
		}
		return "", entity.LLMUsage{}, fmt.Errorf("ollama chat failed: %w", err)
	}

	usage := entity.LLMUsage{
		PromptTokens:     resp.PromptEvalCount,
		CompletionTokens: resp.EvalCount,
	}

	if resp.Message.Content == "" {
		return "", usage, entity.ErrEmptyLLMResponse
	}

	return resp.Message.Content, usage, nil
}

// isTransient decides whether a failed call is worth retrying: server-side
// HTTP errors and non-timeout network errors are, everything else is not.
func isTransient(err error) bool {
	if pkghttp.IsTimeout(err) {
		return false
	}

	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500 || httpErr.StatusCode == http.StatusTooManyRequests
	}

	var netErr *pkghttp.NetworkError
	return errors.As(err, &netErr)
}
