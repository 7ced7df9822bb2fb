package influmatch

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/siherrmann/influmatch/core/feature"
	"github.com/siherrmann/influmatch/core/matching"
	"github.com/siherrmann/influmatch/core/neural"
	"github.com/siherrmann/influmatch/core/training"
	"github.com/siherrmann/influmatch/database"
	"github.com/siherrmann/influmatch/helper"
	"github.com/siherrmann/influmatch/model"
	loadSql "github.com/siherrmann/influmatch/sql"
)

// InfluMatch provides a unified interface to the matching engine: brand and
// influencer stats storage, offline training and online suggestions.
type InfluMatch struct {
	DB          *helper.Database
	Brands      *database.BrandsDBHandler
	Influencers *database.InfluencersDBHandler
	Decisions   *database.DecisionsDBHandler
	Trainer     *training.Pipeline
	Matcher     *matching.Matcher
	// TrainingConfig is used by Train. Callers may adjust it before training.
	TrainingConfig model.TrainingConfig

	models *matching.ModelHolder
	log    *slog.Logger
}

// NewInfluMatch creates a new InfluMatch instance with all handlers
// initialized. Model artifacts are published to and loaded from modelDir.
func NewInfluMatch(config *helper.DatabaseConfiguration, modelDir string) (*InfluMatch, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db := helper.NewDatabase("influmatch", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Create all handlers in the correct order (brands first, the ledger
	// references them). force=false to not reload if functions already exist.
	brands, err := database.NewBrandsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create brands handler", err)
	}

	influencers, err := database.NewInfluencersDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create influencers handler", err)
	}

	decisions, err := database.NewDecisionsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create decisions handler", err)
	}

	store := neural.NewArtifactStore(modelDir)

	return &InfluMatch{
		DB:             db,
		Brands:         brands,
		Influencers:    influencers,
		Decisions:      decisions,
		Trainer:        training.NewPipeline(store, logger),
		Matcher:        matching.NewMatcher(model.DefaultMatchConfig(), logger),
		TrainingConfig: model.DefaultTrainingConfig(),
		models:         matching.NewModelHolder(store),
		log:            logger,
	}, nil
}

// Close closes the database connection
func (i *InfluMatch) Close() error {
	if i.DB != nil && i.DB.Instance != nil {
		return i.DB.Instance.Close()
	}
	return nil
}

// RegisterBrand inserts a new brand identity.
func (i *InfluMatch) RegisterBrand(name, sector, location string) (*model.Brand, error) {
	if name == "" {
		return nil, helper.NewError("register brand", &model.ValidationError{Field: "name", Reason: "must not be empty"})
	}

	brand := &model.Brand{
		Name:     name,
		Sector:   sector,
		Location: location,
	}
	if err := i.Brands.InsertBrand(brand); err != nil {
		return nil, helper.NewError("insert brand", err)
	}

	i.log.Info("Registered brand", slog.String("brand_rid", brand.RID.String()), slog.String("name", brand.Name))

	return brand, nil
}

// UpdateBrandStats reduces raw post counters to the engagement aggregate and
// stores the derived feature vector for the brand. Undefined components are
// imputed to 0 before storage so the stored vector is always a valid member
// of the matching population.
func (i *InfluMatch) UpdateBrandStats(brandRID uuid.UUID, username string, verified, professional bool, followers int64, posts []model.PostStats) (*model.BrandStats, error) {
	brand, err := i.Brands.SelectBrandByRID(brandRID)
	if err != nil {
		return nil, helper.NewError("select brand", err)
	}

	agg := feature.NewEngagementAggregate(posts, followers, verified, professional)
	features := feature.ImputeUndefined(feature.ComputeFeatures(agg))

	stats := &model.BrandStats{
		BrandID:      brand.ID,
		Username:     username,
		Verified:     verified,
		Professional: professional,
		Followers:    followers,
		AvgLikes:     agg.AvgLikes,
		AvgComments:  agg.AvgComments,
		Features:     features,
		HighestPost:  highestPost(posts),
	}
	if err := i.Brands.UpsertBrandStats(stats); err != nil {
		return nil, helper.NewError("upsert brand stats", err)
	}

	i.log.Info("Updated brand stats", slog.String("brand_rid", brandRID.String()), slog.Int("sampled_posts", agg.SampledPosts))

	return stats, nil
}

// UpdateInfluencerStats reduces raw post counters to the engagement aggregate
// and stores the derived feature vector for the authenticated user.
func (i *InfluMatch) UpdateInfluencerStats(userRID uuid.UUID, username string, verified, professional bool, followers int64, posts []model.PostStats) (*model.InfluencerStats, error) {
	agg := feature.NewEngagementAggregate(posts, followers, verified, professional)
	features := feature.ImputeUndefined(feature.ComputeFeatures(agg))

	stats := &model.InfluencerStats{
		UserRID:      userRID,
		Username:     username,
		Verified:     verified,
		Professional: professional,
		Followers:    followers,
		AvgLikes:     agg.AvgLikes,
		AvgComments:  agg.AvgComments,
		Features:     features,
	}
	if err := i.Influencers.UpsertInfluencerStats(stats); err != nil {
		return nil, helper.NewError("upsert influencer stats", err)
	}

	i.log.Info("Updated influencer stats", slog.String("user_rid", userRID.String()), slog.Int("sampled_posts", agg.SampledPosts))

	return stats, nil
}

// Train runs the offline pipeline on the current brand and influencer
// populations and publishes the resulting model. The serving cache is
// invalidated afterwards so the next suggestion uses the fresh encoder.
func (i *InfluMatch) Train() (*model.TrainingReport, error) {
	brands, err := i.Brands.SelectBrandSnapshots()
	if err != nil {
		return nil, helper.NewError("select brand snapshots", err)
	}
	influencers, err := i.Influencers.SelectInfluencerSnapshots()
	if err != nil {
		return nil, helper.NewError("select influencer snapshots", err)
	}

	records := make([]model.EntityRecord, 0, len(brands)+len(influencers))
	for _, b := range brands {
		records = append(records, model.EntityRecord{
			EntityType: model.EntityTypeBrand,
			EntityName: b.Name,
			TrueLabel:  model.EntityTypeBrand.Label(),
			Features:   b.Features,
		})
	}
	for _, inf := range influencers {
		records = append(records, model.EntityRecord{
			EntityType: model.EntityTypeInfluencer,
			EntityName: inf.Username,
			TrueLabel:  model.EntityTypeInfluencer.Label(),
			Features:   inf.Features,
		})
	}

	report, err := i.Trainer.Run(records, i.TrainingConfig)
	if err != nil {
		return nil, helper.NewError("run training pipeline", err)
	}

	i.models.Invalidate()

	return report, nil
}

// Suggest embeds the caller's stored engagement vector and returns all brands
// with cosine similarity at or above the threshold, descending, excluding
// brands the caller has already decided on. The response carries the feature
// vector the match used, keyed by feature name.
func (i *InfluMatch) Suggest(userRID uuid.UUID) (*model.SuggestionResult, error) {
	stats, err := i.Influencers.SelectInfluencerStats(userRID)
	if err != nil {
		return nil, helper.NewError("select influencer stats", err)
	}

	// The query vector is derived from the stored aggregate, not the stored
	// vector, so a zero-followers account surfaces its undefined component in
	// the profile metrics.
	query := feature.ComputeFeatures(model.EngagementAggregate{
		Followers:    stats.Followers,
		Verified:     stats.Verified,
		Professional: stats.Professional,
		AvgLikes:     stats.AvgLikes,
		AvgComments:  stats.AvgComments,
	})

	encoder, err := i.models.Encoder()
	if err != nil {
		return nil, helper.NewError("load encoder", err)
	}

	snapshots, err := i.Brands.SelectBrandSnapshots()
	if err != nil {
		return nil, helper.NewError("select brand snapshots", err)
	}
	if len(snapshots) == 0 {
		return nil, helper.NewError("select brand snapshots", model.ErrNoBrandData)
	}

	decided, err := i.Decisions.SelectDecidedBrandIDs(userRID)
	if err != nil {
		return nil, helper.NewError("select decided brands", err)
	}
	excluded := make(map[int64]bool, len(decided))
	for _, id := range decided {
		excluded[id] = true
	}

	eligible := make([]*model.BrandFeatureSnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if excluded[s.BrandID] {
			continue
		}
		eligible = append(eligible, s)
	}

	result := &model.SuggestionResult{
		UserProfileMetrics: model.FeaturesAsMap(query),
		SuggestedBrands:    []*model.BrandMatch{},
	}
	if len(eligible) == 0 {
		return result, nil
	}

	matches, err := i.Matcher.Match(encoder.Encode, query, eligible)
	if err != nil {
		return nil, helper.NewError("match brands", err)
	}

	result.SuggestedCount = len(matches)
	result.SuggestedBrands = matches

	i.log.Info("Suggested brands", slog.String("user_rid", userRID.String()), slog.Int("suggested_count", len(matches)))

	return result, nil
}

// Respond records the caller's decision on a brand. A repeated call for the
// same brand overwrites the earlier decision; either way the brand is never
// suggested to this caller again.
func (i *InfluMatch) Respond(userRID uuid.UUID, brandRID uuid.UUID, decision model.Decision) (*model.SuggestionDecision, error) {
	if err := decision.Validate(); err != nil {
		return nil, helper.NewError("validate decision", err)
	}

	brand, err := i.Brands.SelectBrandByRID(brandRID)
	if err != nil {
		return nil, helper.NewError("select brand", err)
	}

	record := &model.SuggestionDecision{
		UserRID:  userRID,
		BrandID:  brand.ID,
		Decision: decision,
	}
	if err := i.Decisions.UpsertDecision(record); err != nil {
		return nil, helper.NewError("upsert decision", err)
	}

	i.log.Info("Recorded decision",
		slog.String("user_rid", userRID.String()),
		slog.String("brand_rid", brandRID.String()),
		slog.String("decision", string(decision)),
	)

	return record, nil
}

// History returns the caller's decisions with brand detail, newest first.
func (i *InfluMatch) History(userRID uuid.UUID) ([]*model.DecisionRecord, error) {
	records, err := i.Decisions.SelectDecisionsByUser(userRID)
	if err != nil {
		return nil, helper.NewError("select decisions", err)
	}
	return records, nil
}

// ChangeIndexType changes the vector index type on brand features between
// HNSW and IVFFlat.
func (i *InfluMatch) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	if i.Brands == nil {
		return helper.NewError("change index type", fmt.Errorf("brands handler not initialized"))
	}
	return i.Brands.ChangeIndexType(ctx, indexType, params)
}

// highestPost picks the complete post with the most likes, as optional
// metadata on the brand stats row.
func highestPost(posts []model.PostStats) model.Metadata {
	var best *model.PostStats
	for idx := range posts {
		if !posts[idx].Complete() {
			continue
		}
		if best == nil || *posts[idx].LikeCount > *best.LikeCount {
			best = &posts[idx]
		}
	}
	if best == nil {
		return model.Metadata{}
	}
	return model.Metadata{
		"post_number":   best.PostNumber,
		"like_count":    *best.LikeCount,
		"comment_count": *best.CommentCount,
	}
}
