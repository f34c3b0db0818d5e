package quality

import "github.com/visionhq/backlog-backend/internal/entity"

// Global score band table. Acceptance semantics depend on these exact
// boundaries, so they are fixed here and only the minimum is configurable.
const (
	DefaultMinimumScore = 75

	excellentFloor = 80
	goodFloor      = 70
	fairFloor      = 50
)

// Config holds the acceptance threshold for the quality gate.
type Config struct {
	MinimumScore int
}

func DefaultConfig() Config {
	return Config{MinimumScore: DefaultMinimumScore}
}

// RatingFromScore maps a 0-100 score to its rating band.
func RatingFromScore(score int) entity.Rating {
	switch {
	case score >= excellentFloor:
		return entity.RatingExcellent
	case score >= goodFloor:
		return entity.RatingGood
	case score >= fairFloor:
		return entity.RatingFair
	default:
		return entity.RatingPoor
	}
}

// IsAcceptable reports whether a score passes the quality gate.
func (c Config) IsAcceptable(score int) bool {
	return score >= c.MinimumScore
}

// AcceptableRatings lists the rating bands that contain at least one
// acceptable score under the configured minimum.
func (c Config) AcceptableRatings() []entity.Rating {
	ratings := []entity.Rating{entity.RatingExcellent}
	if c.MinimumScore < excellentFloor {
		ratings = append(ratings, entity.RatingGood)
	}
	if c.MinimumScore < goodFloor {
		ratings = append(ratings, entity.RatingFair)
	}
	if c.MinimumScore < fairFloor {
		ratings = append(ratings, entity.RatingPoor)
	}
	return ratings
}
