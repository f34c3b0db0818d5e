package backlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visionhq/backlog-backend/internal/entity"
)

func TestToItemTree(t *testing.T) {
	epicID := "epic-1"
	featureID := "feature-1"
	items := []entity.WorkItem{
		{ID: epicID, Kind: entity.KindEpic, Title: "Epic"},
		{ID: featureID, ParentID: &epicID, Kind: entity.KindFeature, Title: "Feature"},
		{ID: "story-1", ParentID: &featureID, Kind: entity.KindUserStory, Title: "Story A"},
		{ID: "story-2", ParentID: &featureID, Kind: entity.KindUserStory, Title: "Story B"},
	}

	roots := toItemTree(items)

	require.Len(t, roots, 1)
	assert.Equal(t, "Epic", roots[0].Title)
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, "Feature", roots[0].Children[0].Title)
	require.Len(t, roots[0].Children[0].Children, 2)
	assert.Equal(t, "Story A", roots[0].Children[0].Children[0].Title)
	assert.Equal(t, "Story B", roots[0].Children[0].Children[1].Title)
}

func TestToItemTreeOrphanBecomesRoot(t *testing.T) {
	missing := "not-in-slice"
	items := []entity.WorkItem{
		{ID: "a", Kind: entity.KindEpic, Title: "Epic"},
		{ID: "b", ParentID: &missing, Kind: entity.KindFeature, Title: "Orphan"},
	}

	roots := toItemTree(items)

	require.Len(t, roots, 2)
	assert.Equal(t, "Epic", roots[0].Title)
	assert.Equal(t, "Orphan", roots[1].Title)
}

func TestToItemTreeEmpty(t *testing.T) {
	assert.Empty(t, toItemTree(nil))
}
