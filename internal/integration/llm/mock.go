package llm

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/visionhq/backlog-backend/internal/entity"
	"go.uber.org/zap"
)

// MockConnector is the LLM stand-in for local development (ENABLE_MOCKS).
// It echoes significant words from the prompt back into generated candidates
// so that the lexical quality rubric sees domain overlap and accepts them.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{logger: logger}
}

func (m *MockConnector) Call(ctx context.Context, _, userPrompt, model string, _ time.Duration) (string, entity.LLMUsage, error) {
	ctxzap.Info(ctx, "[MOCK] generating candidates", zap.String("model", model))

	anchors := promptAnchors(userPrompt, 6)
	anchorText := strings.Join(anchors, " ")

	candidates := []entity.WorkItemCandidate{
		{
			Title:       "Develop " + titleFrom(anchors, 0) + " management platform",
			Description: "Develop and implement a service platform that will optimize " + anchorText + " workflows for every user and operator, integrate the existing system landscape and reduce manual effort across the team.",
			Priority:    "high",
			Complexity:  "medium",
			AcceptanceCriteria: []string{
				"core workflows are automated end to end",
				"operators can verify processing status in the dashboard",
			},
		},
		{
			Title:       "Implement " + titleFrom(anchors, 1) + " reporting dashboard",
			Description: "Implement a reporting dashboard with api integration that will improve visibility of " + anchorText + " for every manager and stakeholder, increase decision speed and streamline the workflow.",
			Priority:    "medium",
			Complexity:  "medium",
			AcceptanceCriteria: []string{
				"reports cover all tracked metrics",
			},
		},
		{
			Title:       "Build " + titleFrom(anchors, 2) + " integration service",
			Description: "Build and deploy an integration service with a database-backed pipeline that will enhance " + anchorText + " data exchange for each customer and administrator and minimize synchronization errors in the platform.",
			Priority:    "medium",
			Complexity:  "high",
		},
	}

	payload, err := json.Marshal(candidates)
	if err != nil {
		return "", entity.LLMUsage{}, err
	}

	usage := entity.LLMUsage{
		PromptTokens:     len(strings.Fields(userPrompt)),
		CompletionTokens: len(payload) / 4,
	}

	return "```json\n" + string(payload) + "\n```", usage, nil
}

// promptAnchors picks up to n distinct significant words from the prompt.
func promptAnchors(prompt string, n int) []string {
	seen := make(map[string]struct{})
	var anchors []string
	for _, w := range strings.Fields(strings.ToLower(prompt)) {
		w = strings.Trim(w, ".,;:!?()\"'{}[]")
		if len(w) <= 5 || strings.ContainsAny(w, "\"{}<>|/") {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		anchors = append(anchors, w)
		if len(anchors) == n {
			break
		}
	}
	if len(anchors) == 0 {
		anchors = []string{"operations"}
	}
	return anchors
}

func titleFrom(anchors []string, i int) string {
	return anchors[i%len(anchors)]
}
