package model

// MaxPostsPerEntity caps how many recent posts feed the engagement aggregate.
const MaxPostsPerEntity = 12

// PostStats carries the raw counters of a single post. Both counters are
// optional because third-party sources omit them on some media types; a post
// missing either counter is excluded from averages, never zero-filled.
type PostStats struct {
	PostNumber   int    `json:"post_number"`
	LikeCount    *int64 `json:"like_count,omitempty"`
	CommentCount *int64 `json:"comment_count,omitempty"`
}

// Complete reports whether the post carries both counters.
func (p *PostStats) Complete() bool {
	return p.LikeCount != nil && p.CommentCount != nil
}

// EngagementAggregate is the per-entity reduction of post-level counters plus
// account-level attributes. The six derived features are a pure function of
// this aggregate.
type EngagementAggregate struct {
	Followers    int64   `json:"followers"`
	Verified     bool    `json:"verified"`
	Professional bool    `json:"professional"`
	AvgLikes     float64 `json:"avg_likes"`
	AvgComments  float64 `json:"avg_comments"`
	SampledPosts int     `json:"sampled_posts"`
}
