package quality_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/visionhq/backlog-backend/internal/entity"
	"github.com/visionhq/backlog-backend/internal/quality"
)

func TestRatingFromScore(t *testing.T) {
	tests := []struct {
		score    int
		expected entity.Rating
	}{
		{100, entity.RatingExcellent},
		{80, entity.RatingExcellent},
		{79, entity.RatingGood},
		{70, entity.RatingGood},
		{69, entity.RatingFair},
		{50, entity.RatingFair},
		{49, entity.RatingPoor},
		{0, entity.RatingPoor},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, quality.RatingFromScore(tt.score), "score %d", tt.score)
	}
}

func TestIsAcceptable(t *testing.T) {
	cfg := quality.DefaultConfig()

	assert.True(t, cfg.IsAcceptable(100))
	assert.True(t, cfg.IsAcceptable(quality.DefaultMinimumScore))
	assert.False(t, cfg.IsAcceptable(quality.DefaultMinimumScore-1))
	assert.False(t, cfg.IsAcceptable(0))
}

func TestIsAcceptableCustomThreshold(t *testing.T) {
	cfg := quality.Config{MinimumScore: 50}

	assert.True(t, cfg.IsAcceptable(50))
	assert.False(t, cfg.IsAcceptable(49))
}

func TestAcceptableRatings(t *testing.T) {
	// Default minimum of 75 sits inside the GOOD band, so both EXCELLENT and
	// GOOD contain acceptable scores.
	ratings := quality.DefaultConfig().AcceptableRatings()
	assert.Equal(t, []entity.Rating{entity.RatingExcellent, entity.RatingGood}, ratings)

	ratings = quality.Config{MinimumScore: 85}.AcceptableRatings()
	assert.Equal(t, []entity.Rating{entity.RatingExcellent}, ratings)

	ratings = quality.Config{MinimumScore: 40}.AcceptableRatings()
	assert.Len(t, ratings, 4)
}
