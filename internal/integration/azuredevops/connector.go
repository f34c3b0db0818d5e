package azuredevops

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/visionhq/backlog-backend/internal/config"
	"github.com/visionhq/backlog-backend/internal/entity"
	"github.com/visionhq/backlog-backend/internal/integration/common"
	pkghttp "github.com/visionhq/backlog-backend/pkg/http"
	"go.uber.org/zap"
)

// Work item types per backlog kind, matching the Agile process template.
var workItemTypes = map[entity.WorkItemKind]string{
	entity.KindEpic:      "Epic",
	entity.KindFeature:   "Feature",
	entity.KindUserStory: "User Story",
	entity.KindTask:      "Task",
}

// Connector uploads accepted work items to Azure DevOps. The generation core
// never calls this; only the backlog usecase does, after acceptance.
type Connector struct {
	config    config.AzureDevOpsConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(cfg config.AzureDevOpsConfig, logger *zap.Logger) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

type patchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

type workItemResponse struct {
	ID int `json:"id"`
}

// CreateWorkItem creates one work item and returns its Azure DevOps id.
// parentExternalID, when non-zero, links the item under its parent.
func (c *Connector) CreateWorkItem(ctx context.Context, project string, item *entity.WorkItem, parentExternalID int) (int, error) {
	itemType, ok := workItemTypes[item.Kind]
	if !ok {
		return 0, fmt.Errorf("%w: kind %s has no azure devops mapping", entity.ErrInvalidParameter, item.Kind)
	}

	ops := []patchOp{
		{Op: "add", Path: "/fields/System.Title", Value: item.Title},
		{Op: "add", Path: "/fields/System.Description", Value: item.Description},
	}
	if item.Priority != "" {
		ops = append(ops, patchOp{Op: "add", Path: "/fields/Microsoft.VSTS.Common.Priority", Value: priorityValue(item.Priority)})
	}
	if parentExternalID != 0 {
		ops = append(ops, patchOp{
			Op:   "add",
			Path: "/relations/-",
			Value: map[string]any{
				"rel": "System.LinkTypes.Hierarchy-Reverse",
				"url": fmt.Sprintf("%s/_apis/wit/workItems/%d", c.config.Url, parentExternalID),
			},
		})
	}

	endpoint := fmt.Sprintf("/%s/_apis/wit/workitems/$%s?api-version=%s",
		url.PathEscape(project), url.PathEscape(itemType), c.config.APIVersion)

	var resp workItemResponse
	err := c.connector.DoRequest(ctx, http.MethodPost, endpoint, ops, &resp,
		pkghttp.WithContentType("application/json-patch+json"),
		pkghttp.WithHeader("Authorization", "Basic "+basicAuth(c.config.PersonalAccessToken)),
	)
	if err != nil {
		return 0, fmt.Errorf("create %s work item: %w", itemType, err)
	}

	ctxzap.Info(ctx, "work item created in azure devops",
		zap.String("kind", string(item.Kind)),
		zap.Int("external_id", resp.ID),
	)

	return resp.ID, nil
}

// basicAuth encodes a PAT the way Azure DevOps expects: empty user, PAT as
// password.
func basicAuth(pat string) string {
	return base64.StdEncoding.EncodeToString([]byte(":" + pat))
}

func priorityValue(priority string) int {
	switch priority {
	case "high":
		return 1
	case "medium":
		return 2
	case "low":
		return 3
	default:
		return 2
	}
}
