package model

import (
	"time"

	"github.com/google/uuid"
)

// InfluencerStats is the stored social engagement state of an influencer,
// keyed by the authenticated user it belongs to.
type InfluencerStats struct {
	ID           int64     `json:"id"`
	UserRID      uuid.UUID `json:"user_rid"`
	Username     string    `json:"username"`
	Verified     bool      `json:"verified"`
	Professional bool      `json:"professional"`
	Followers    int64     `json:"followers"`
	AvgLikes     float64   `json:"avg_likes"`
	AvgComments  float64   `json:"avg_comments"`
	Features     []float64 `json:"features"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// InfluencerSnapshot is the training-time view of an influencer: identity plus
// the current feature vector.
type InfluencerSnapshot struct {
	UserRID  uuid.UUID `json:"user_rid"`
	Username string    `json:"username"`
	Features []float64 `json:"features"`
}
