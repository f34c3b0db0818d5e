package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visionhq/backlog-backend/internal/entity"
)

func TestRenderBacklogHierarchy(t *testing.T) {
	job := &entity.BacklogJob{
		Vision: "Streamline warehouse dispatch.",
		Domain: "logistics",
	}
	epicID := "epic-1"
	featureID := "feature-1"
	items := []entity.WorkItem{
		{
			ID:          epicID,
			Kind:        entity.KindEpic,
			Title:       "Warehouse tracking",
			Description: "Track inventory across warehouses.",
			Priority:    "high",
			Position:    0,
		},
		{
			ID:          featureID,
			ParentID:    &epicID,
			Kind:        entity.KindFeature,
			Title:       "Pallet scanning",
			Description: "Scan pallets at the dock.",
			Position:    0,
		},
		{
			ID:                 "story-1",
			ParentID:           &featureID,
			Kind:               entity.KindUserStory,
			Title:              "Scan on arrival",
			Description:        "As a dock worker, I want to scan arriving pallets.",
			Position:           1,
			AcceptanceCriteria: []string{"scan completes in under two seconds"},
		},
	}

	out := RenderBacklog(job, items)

	assert.Contains(t, out, "Vision: Streamline warehouse dispatch.")
	assert.Contains(t, out, "Domain: logistics")
	assert.Contains(t, out, "Epic 1: Warehouse tracking")
	assert.Contains(t, out, "  Feature 1: Pallet scanning")
	assert.Contains(t, out, "    User Story 2: Scan on arrival")
	assert.Contains(t, out, "- scan completes in under two seconds")

	// The epic has a priority line, the feature does not.
	assert.Contains(t, out, "Priority: high")
	assert.Equal(t, 1, strings.Count(out, "Priority:"))

	// Parents render before their children.
	assert.Less(t, strings.Index(out, "Warehouse tracking"), strings.Index(out, "Pallet scanning"))
	assert.Less(t, strings.Index(out, "Pallet scanning"), strings.Index(out, "Scan on arrival"))
}

func TestRenderBacklogSkipsOrphans(t *testing.T) {
	missing := "never-persisted"
	items := []entity.WorkItem{
		{ID: "a", Kind: entity.KindEpic, Title: "Kept", Description: "d"},
		{ID: "b", ParentID: &missing, Kind: entity.KindFeature, Title: "Orphan", Description: "d"},
	}

	out := RenderBacklog(&entity.BacklogJob{Vision: "v", Domain: "d"}, items)

	assert.Contains(t, out, "Kept")
	assert.NotContains(t, out, "Orphan")
}

func TestMarkdownFormatter(t *testing.T) {
	mf := NewMarkdownFormatter()

	out, err := mf.Format("Epic 1: Warehouse tracking")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(out), "# Product Backlog\n"))
	assert.Contains(t, string(out), "Epic 1: Warehouse tracking")
	assert.Equal(t, "text/markdown; charset=utf-8", mf.ContentType())
	assert.Equal(t, ".md", mf.FileExtension())
}
