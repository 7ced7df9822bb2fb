package feature

import (
	"math"

	"github.com/siherrmann/influmatch/model"
)

// Engagement feature weights and multipliers. These constants are part of the
// external contract of the feature vector.
const (
	likeWeight             = 0.7
	commentWeight          = 0.3
	reachFollowerExponent  = 0.6
	reachActivityExponent  = 0.4
	reachScale             = 100.0
	impressionFactor       = 1.5
	verifiedMultiplier     = 1.2
	professionalMultiplier = 1.1
)

// NewEngagementAggregate reduces up to MaxPostsPerEntity post records to
// per-post averages. Posts missing either counter are excluded from the
// averages, not zero-filled.
func NewEngagementAggregate(posts []model.PostStats, followers int64, verified bool, professional bool) model.EngagementAggregate {
	if len(posts) > model.MaxPostsPerEntity {
		posts = posts[:model.MaxPostsPerEntity]
	}

	var totalLikes, totalComments int64
	sampled := 0
	for i := range posts {
		if !posts[i].Complete() {
			continue
		}
		totalLikes += *posts[i].LikeCount
		totalComments += *posts[i].CommentCount
		sampled++
	}

	agg := model.EngagementAggregate{
		Followers:    followers,
		Verified:     verified,
		Professional: professional,
		SampledPosts: sampled,
	}
	if sampled > 0 {
		agg.AvgLikes = float64(totalLikes) / float64(sampled)
		agg.AvgComments = float64(totalComments) / float64(sampled)
	}
	return agg
}

// ComputeFeatures derives the ordered 6-feature vector from an engagement
// aggregate. It is deterministic and side-effect-free.
//
// engagement_per_follower is undefined for accounts with zero followers and is
// returned as NaN; callers must exclude or impute it before normalization.
// reach_ratio falls back to 0 for zero followers.
func ComputeFeatures(agg model.EngagementAggregate) []float64 {
	engagementScore := likeWeight*agg.AvgLikes + commentWeight*agg.AvgComments

	activity := agg.AvgLikes + agg.AvgComments
	engagementPerFollower := math.NaN()
	if agg.Followers > 0 {
		engagementPerFollower = activity / float64(agg.Followers)
	}

	estimatedReach := math.Pow(float64(agg.Followers), reachFollowerExponent) *
		math.Pow(activity, reachActivityExponent) * reachScale
	if agg.Verified {
		estimatedReach *= verifiedMultiplier
	}
	if agg.Professional {
		estimatedReach *= professionalMultiplier
	}

	estimatedImpression := estimatedReach * impressionFactor

	reachRatio := 0.0
	if agg.Followers > 0 {
		reachRatio = estimatedReach / float64(agg.Followers)
	}

	return []float64{
		float64(agg.Followers),
		engagementScore,
		engagementPerFollower,
		estimatedReach,
		estimatedImpression,
		reachRatio,
	}
}
