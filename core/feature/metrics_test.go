package feature

import (
	"math"
	"testing"

	"github.com/siherrmann/influmatch/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func TestNewEngagementAggregate(t *testing.T) {
	t.Run("Averages over complete posts only", func(t *testing.T) {
		posts := []model.PostStats{
			{PostNumber: 1, LikeCount: int64Ptr(100), CommentCount: int64Ptr(10)},
			{PostNumber: 2, LikeCount: int64Ptr(200), CommentCount: int64Ptr(30)},
			{PostNumber: 3, LikeCount: int64Ptr(500)}, // missing comment count
			{PostNumber: 4},                           // missing both
		}

		agg := NewEngagementAggregate(posts, 1000, false, false)

		assert.Equal(t, 2, agg.SampledPosts, "Expected incomplete posts to be excluded")
		assert.Equal(t, 150.0, agg.AvgLikes, "Expected average over complete posts only")
		assert.Equal(t, 20.0, agg.AvgComments, "Expected average over complete posts only")
	})

	t.Run("No complete posts yields zero averages", func(t *testing.T) {
		posts := []model.PostStats{
			{PostNumber: 1, LikeCount: int64Ptr(100)},
		}

		agg := NewEngagementAggregate(posts, 500, true, false)

		assert.Equal(t, 0, agg.SampledPosts)
		assert.Equal(t, 0.0, agg.AvgLikes)
		assert.Equal(t, 0.0, agg.AvgComments)
	})

	t.Run("Caps at the maximum post count", func(t *testing.T) {
		posts := make([]model.PostStats, 20)
		for i := range posts {
			posts[i] = model.PostStats{
				PostNumber:   i + 1,
				LikeCount:    int64Ptr(10),
				CommentCount: int64Ptr(1),
			}
		}

		agg := NewEngagementAggregate(posts, 1000, false, false)

		assert.Equal(t, model.MaxPostsPerEntity, agg.SampledPosts, "Expected only the first 12 posts to be sampled")
	})
}

func TestComputeFeatures(t *testing.T) {
	t.Run("Computes the ordered feature vector", func(t *testing.T) {
		agg := model.EngagementAggregate{
			Followers:   1000,
			AvgLikes:    100,
			AvgComments: 20,
		}

		features := ComputeFeatures(agg)

		require.Len(t, features, model.FeatureDim)
		assert.Equal(t, 1000.0, features[0], "followers")
		assert.InDelta(t, 0.7*100+0.3*20, features[1], 1e-12, "engagement_score")
		assert.InDelta(t, 120.0/1000.0, features[2], 1e-12, "engagement_per_follower")

		wantReach := math.Pow(1000, 0.6) * math.Pow(120, 0.4) * 100
		assert.InDelta(t, wantReach, features[3], 1e-9, "estimated_reach")
		assert.InDelta(t, wantReach*1.5, features[4], 1e-9, "estimated_impression")
		assert.InDelta(t, wantReach/1000, features[5], 1e-9, "reach_ratio")
	})

	t.Run("Verified and professional multipliers", func(t *testing.T) {
		agg := model.EngagementAggregate{
			Followers:   1000,
			AvgLikes:    100,
			AvgComments: 20,
		}
		base := ComputeFeatures(agg)

		agg.Verified = true
		verified := ComputeFeatures(agg)
		assert.InDelta(t, base[3]*1.2, verified[3], 1e-9, "Expected verified accounts to get a 1.2x reach boost")

		agg.Professional = true
		both := ComputeFeatures(agg)
		assert.InDelta(t, base[3]*1.2*1.1, both[3], 1e-9, "Expected professional accounts to get an extra 1.1x boost")
	})

	t.Run("Zero followers produces NaN sentinel and zero ratio without panicking", func(t *testing.T) {
		agg := model.EngagementAggregate{
			Followers:   0,
			AvgLikes:    50,
			AvgComments: 5,
		}

		features := ComputeFeatures(agg)

		require.Len(t, features, model.FeatureDim)
		assert.Equal(t, 0.0, features[0], "followers")
		assert.True(t, math.IsNaN(features[2]), "Expected engagement_per_follower to be the NaN sentinel")
		assert.Equal(t, 0.0, features[3], "Expected zero reach for zero followers")
		assert.Equal(t, 0.0, features[5], "Expected reach_ratio to fall back to 0")
	})

	t.Run("Deterministic for identical input", func(t *testing.T) {
		agg := model.EngagementAggregate{
			Followers:    123456,
			Verified:     true,
			Professional: true,
			AvgLikes:     321.5,
			AvgComments:  12.25,
		}

		assert.Equal(t, ComputeFeatures(agg), ComputeFeatures(agg))
	})
}
