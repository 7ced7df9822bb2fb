package model

import (
	"time"

	"github.com/google/uuid"
)

// Brand is the identity row for a brand.
type Brand struct {
	ID        int64     `json:"id"`
	RID       uuid.UUID `json:"rid"`
	Name      string    `json:"name"`
	Sector    string    `json:"sector,omitempty"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BrandStats is the stored social engagement state of a brand. The feature
// vector is recomputed whenever fresh post data arrives.
type BrandStats struct {
	ID           int64     `json:"id"`
	BrandID      int64     `json:"brand_id"`
	Username     string    `json:"username"`
	Verified     bool      `json:"verified"`
	Professional bool      `json:"professional"`
	Followers    int64     `json:"followers"`
	AvgLikes     float64   `json:"avg_likes"`
	AvgComments  float64   `json:"avg_comments"`
	Features     []float64 `json:"features"`
	HighestPost  Metadata  `json:"highest_post,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BrandFeatureSnapshot is the per-request view of a brand used by the matcher:
// identity plus the current feature vector. It is recomputed from the stored
// stats on every request and never cached across requests.
type BrandFeatureSnapshot struct {
	BrandID  int64     `json:"brand_id"`
	RID      uuid.UUID `json:"rid"`
	Name     string    `json:"name"`
	Sector   string    `json:"sector,omitempty"`
	Location string    `json:"location,omitempty"`
	Features []float64 `json:"features"`
}

// BrandMatch is one ranked suggestion returned by the matcher.
type BrandMatch struct {
	Brand      *BrandFeatureSnapshot `json:"brand"`
	Similarity float64               `json:"similarity"`
}
