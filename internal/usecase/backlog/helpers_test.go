package backlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visionhq/backlog-backend/internal/entity"
)

func TestOrderParentsFirst(t *testing.T) {
	epicA := "epic-a"
	epicB := "epic-b"
	featureA := "feature-a"
	items := []entity.WorkItem{
		{ID: "story-1", ParentID: &featureA, Kind: entity.KindUserStory},
		{ID: featureA, ParentID: &epicA, Kind: entity.KindFeature},
		{ID: epicB, Kind: entity.KindEpic},
		{ID: epicA, Kind: entity.KindEpic},
	}

	ordered := orderParentsFirst(items)

	require.Len(t, ordered, 4)
	index := make(map[string]int, len(ordered))
	for i, item := range ordered {
		index[item.ID] = i
	}
	assert.Less(t, index[epicA], index[featureA])
	assert.Less(t, index[featureA], index["story-1"])
	// Root order follows input order.
	assert.Less(t, index[epicB], index[epicA])
}

func TestOrderParentsFirstEmpty(t *testing.T) {
	assert.Empty(t, orderParentsFirst(nil))
}

func TestTargetCount(t *testing.T) {
	uc := &BacklogUsecase{}
	uc.genCfg.FeaturesPerEpic = 4
	uc.genCfg.StoriesPerFeature = 3
	uc.genCfg.TasksPerStory = 2
	job := &entity.BacklogJob{EpicCount: 5}

	assert.Equal(t, 5, uc.targetCount(entity.KindEpic, job))
	assert.Equal(t, 4, uc.targetCount(entity.KindFeature, job))
	assert.Equal(t, 3, uc.targetCount(entity.KindUserStory, job))
	assert.Equal(t, 2, uc.targetCount(entity.KindTask, job))
	assert.Equal(t, 1, uc.targetCount(entity.KindVision, job))
}
