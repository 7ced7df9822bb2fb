package influmatch

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/siherrmann/influmatch/helper"
	"github.com/siherrmann/influmatch/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPosts(likes, comments int64, n int) []model.PostStats {
	posts := make([]model.PostStats, n)
	for i := range posts {
		l := likes + int64(i)
		c := comments
		posts[i] = model.PostStats{PostNumber: i + 1, LikeCount: &l, CommentCount: &c}
	}
	return posts
}

func initInfluMatch(t *testing.T) *InfluMatch {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	dbConfig, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err, "failed to create database configuration")

	engine, err := NewInfluMatch(dbConfig, t.TempDir())
	require.NoError(t, err, "failed to create engine")
	require.NotNil(t, engine, "expected engine to be non-nil")

	// Shorter budgets keep the end-to-end run fast; the semantics are the same.
	engine.TrainingConfig.Epochs = 20
	engine.TrainingConfig.MaxIter = 150
	engine.TrainingConfig.UpdateInterval = 50

	t.Cleanup(func() {
		engine.Close()
	})

	return engine
}

// seedPopulation registers brands with stats and influencer stats so a
// training run has a population to learn from.
func seedPopulation(t *testing.T, engine *InfluMatch, run string, brandCount, influencerCount int) []*model.Brand {
	t.Helper()

	brands := make([]*model.Brand, brandCount)
	for i := 0; i < brandCount; i++ {
		brand, err := engine.RegisterBrand(fmt.Sprintf("%s Brand %d", run, i), "retail", "Munich")
		require.NoError(t, err)
		brands[i] = brand

		_, err = engine.UpdateBrandStats(
			brand.RID, fmt.Sprintf("%s_brand_%d", run, i), true, true,
			int64(40000+i*1000), testPosts(int64(300+i*10), 25, 8),
		)
		require.NoError(t, err)
	}

	for i := 0; i < influencerCount; i++ {
		_, err := engine.UpdateInfluencerStats(
			uuid.New(), fmt.Sprintf("%s_influencer_%d", run, i), false, true,
			int64(2000+i*100), testPosts(int64(400+i*20), 60, 10),
		)
		require.NoError(t, err)
	}

	return brands
}

func TestNewInfluMatch(t *testing.T) {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	dbConfig, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err)

	t.Run("Valid call NewInfluMatch", func(t *testing.T) {
		engine, err := NewInfluMatch(dbConfig, t.TempDir())
		require.NoError(t, err, "Expected NewInfluMatch to not return an error")
		require.NotNil(t, engine, "Expected NewInfluMatch to return a non-nil instance")
		assert.NotNil(t, engine.DB, "Expected engine to have a database instance")
		assert.NotNil(t, engine.Brands, "Expected engine to have a brands handler")
		assert.NotNil(t, engine.Influencers, "Expected engine to have an influencers handler")
		assert.NotNil(t, engine.Decisions, "Expected engine to have a decisions handler")
		assert.NotNil(t, engine.Trainer, "Expected engine to have a trainer")
		assert.NotNil(t, engine.Matcher, "Expected engine to have a matcher")

		err = engine.Close()
		assert.NoError(t, err, "Expected Close to not return an error")
	})

	t.Run("Engine with nil database handles Close gracefully", func(t *testing.T) {
		engine := &InfluMatch{}

		err := engine.Close()
		assert.NoError(t, err, "Expected Close to handle nil DB gracefully")
	})
}

func TestRegisterBrand(t *testing.T) {
	engine := initInfluMatch(t)

	t.Run("Register brand", func(t *testing.T) {
		brand, err := engine.RegisterBrand("Register Test Brand", "beauty", "Cologne")
		require.NoError(t, err)
		assert.NotEmpty(t, brand.ID)
		assert.NotEqual(t, uuid.Nil, brand.RID)
	})

	t.Run("Register brand with empty name", func(t *testing.T) {
		_, err := engine.RegisterBrand("", "beauty", "Cologne")
		require.Error(t, err)
		validationError := &model.ValidationError{}
		assert.ErrorAs(t, err, &validationError)
	})
}

func TestUpdateStats(t *testing.T) {
	engine := initInfluMatch(t)

	t.Run("Update brand stats from posts", func(t *testing.T) {
		brand, err := engine.RegisterBrand("Stats Update Brand", "tech", "Berlin")
		require.NoError(t, err)

		stats, err := engine.UpdateBrandStats(brand.RID, "statsbrand", true, false, 10000, testPosts(100, 10, 5))
		require.NoError(t, err)
		assert.Equal(t, brand.ID, stats.BrandID)
		assert.Len(t, stats.Features, model.FeatureDim)
		assert.InDelta(t, 102, stats.AvgLikes, 0.001, "Expected the mean over the sampled posts")
		assert.NotEmpty(t, stats.HighestPost, "Expected the top post metadata to be kept")
	})

	t.Run("Update brand stats for unknown brand", func(t *testing.T) {
		_, err := engine.UpdateBrandStats(uuid.New(), "ghost", false, false, 100, testPosts(10, 1, 3))
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("Update influencer stats with zero followers", func(t *testing.T) {
		stats, err := engine.UpdateInfluencerStats(uuid.New(), "zerofollowers", false, false, 0, testPosts(50, 5, 4))
		require.NoError(t, err, "Expected the zero-followers path to not fail")
		assert.Equal(t, 0.0, stats.Features[2], "Expected the undefined component to be imputed before storage")
		assert.Equal(t, 0.0, stats.Features[5], "Expected reach_ratio 0 for zero followers")
	})
}

func TestTrainAndSuggest(t *testing.T) {
	engine := initInfluMatch(t)

	userRID := uuid.New()
	_, err := engine.UpdateInfluencerStats(userRID, "main_influencer", false, true, 2500, testPosts(450, 60, 10))
	require.NoError(t, err)

	t.Run("Suggest before training", func(t *testing.T) {
		_, err := engine.Suggest(userRID)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrModelUnavailable, "Expected ModelUnavailable before the first training run")
	})

	seedPopulation(t, engine, "TrainSuggest", 10, 10)

	t.Run("Train publishes a report", func(t *testing.T) {
		report, err := engine.Train()
		require.NoError(t, err)
		assert.NotEmpty(t, report.Message)
		assert.FileExists(t, report.ModelPaths.EncoderModel)
		assert.FileExists(t, report.ModelPaths.DECModel)
		assert.NotEmpty(t, report.Evaluation.PredictedClusters)
		assert.LessOrEqual(t, len(report.LossHistory), 5)
	})

	t.Run("Suggest returns ranked brands and profile metrics", func(t *testing.T) {
		result, err := engine.Suggest(userRID)
		require.NoError(t, err)

		assert.Len(t, result.UserProfileMetrics, model.FeatureDim)
		assert.Contains(t, result.UserProfileMetrics, "engagement_score")
		assert.Equal(t, len(result.SuggestedBrands), result.SuggestedCount)

		for i, match := range result.SuggestedBrands {
			assert.GreaterOrEqual(t, match.Similarity, 0.95, "Expected only brands above the threshold")
			if i > 0 {
				assert.GreaterOrEqual(t, result.SuggestedBrands[i-1].Similarity, match.Similarity, "Expected descending order")
			}
		}
	})

	t.Run("Suggest for unknown user", func(t *testing.T) {
		_, err := engine.Suggest(uuid.New())
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("Identical brands receive identical similarity in input order", func(t *testing.T) {
		twinA, err := engine.RegisterBrand("Twin Brand A", "sports", "Vienna")
		require.NoError(t, err)
		twinB, err := engine.RegisterBrand("Twin Brand B", "sports", "Vienna")
		require.NoError(t, err)

		// Same stats as the querying influencer, so the pair scores sim 1.
		_, err = engine.UpdateBrandStats(twinA.RID, "twin_a", false, true, 2500, testPosts(450, 60, 10))
		require.NoError(t, err)
		_, err = engine.UpdateBrandStats(twinB.RID, "twin_b", false, true, 2500, testPosts(450, 60, 10))
		require.NoError(t, err)

		result, err := engine.Suggest(userRID)
		require.NoError(t, err)

		var posA, posB = -1, -1
		for i, match := range result.SuggestedBrands {
			switch match.Brand.BrandID {
			case twinA.ID:
				posA = i
			case twinB.ID:
				posB = i
			}
		}
		require.NotEqual(t, -1, posA, "Expected the identical twin brand A to be suggested")
		require.NotEqual(t, -1, posB, "Expected the identical twin brand B to be suggested")
		assert.Equal(t, result.SuggestedBrands[posA].Similarity, result.SuggestedBrands[posB].Similarity, "Expected identical brands to share a score")
		assert.Less(t, posA, posB, "Expected the stable tiebreak to preserve population order")
	})

	t.Run("Suggest with zero-followers profile does not fail", func(t *testing.T) {
		zeroRID := uuid.New()
		_, err := engine.UpdateInfluencerStats(zeroRID, "zero_profile", false, false, 0, testPosts(50, 5, 4))
		require.NoError(t, err)

		result, err := engine.Suggest(zeroRID)
		require.NoError(t, err, "Expected the undefined engagement rate to be handled")
		assert.Nil(t, result.UserProfileMetrics["engagement_per_follower"], "Expected the undefined component to serialize as null")
	})
}

func TestRespondAndHistory(t *testing.T) {
	engine := initInfluMatch(t)

	userRID := uuid.New()
	_, err := engine.UpdateInfluencerStats(userRID, "decider", false, true, 2500, testPosts(450, 60, 10))
	require.NoError(t, err)

	seedPopulation(t, engine, "Respond", 10, 10)

	_, err = engine.Train()
	require.NoError(t, err)

	t.Run("Decided brand is excluded from later suggestions", func(t *testing.T) {
		// A brand identical to the caller scores 1.0 and must appear first.
		match, err := engine.RegisterBrand("Respond Match Brand", "travel", "Zurich")
		require.NoError(t, err)
		_, err = engine.UpdateBrandStats(match.RID, "respond_match", false, true, 2500, testPosts(450, 60, 10))
		require.NoError(t, err)

		before, err := engine.Suggest(userRID)
		require.NoError(t, err)
		require.NotEmpty(t, before.SuggestedBrands)

		var seen bool
		for _, m := range before.SuggestedBrands {
			if m.Brand.BrandID == match.ID {
				seen = true
				assert.InDelta(t, 1.0, m.Similarity, 1e-9, "Expected the identical brand to score a perfect match")
			}
		}
		require.True(t, seen, "Expected the identical brand to be suggested before any decision")

		_, err = engine.Respond(userRID, match.RID, model.DecisionDecline)
		require.NoError(t, err)

		after, err := engine.Suggest(userRID)
		require.NoError(t, err)
		for _, m := range after.SuggestedBrands {
			assert.NotEqual(t, match.ID, m.Brand.BrandID, "Expected a decided brand to never be resurfaced")
		}
	})

	t.Run("Respond to unknown brand", func(t *testing.T) {
		_, err := engine.Respond(userRID, uuid.New(), model.DecisionAccept)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("Respond with invalid decision", func(t *testing.T) {
		brand, err := engine.RegisterBrand("Respond Invalid Brand", "travel", "Zurich")
		require.NoError(t, err)

		_, err = engine.Respond(userRID, brand.RID, model.Decision("maybe"))
		require.Error(t, err)
		validationError := &model.ValidationError{}
		assert.ErrorAs(t, err, &validationError)
	})

	t.Run("History is newest first and allows re-deciding", func(t *testing.T) {
		first, err := engine.RegisterBrand("Respond History Brand A", "food", "Graz")
		require.NoError(t, err)
		second, err := engine.RegisterBrand("Respond History Brand B", "food", "Graz")
		require.NoError(t, err)

		_, err = engine.Respond(userRID, first.RID, model.DecisionAccept)
		require.NoError(t, err)
		_, err = engine.Respond(userRID, second.RID, model.DecisionAccept)
		require.NoError(t, err)
		_, err = engine.Respond(userRID, first.RID, model.DecisionDecline)
		require.NoError(t, err)

		history, err := engine.History(userRID)
		require.NoError(t, err)
		require.NotEmpty(t, history)

		assert.Equal(t, first.ID, history[0].Brand.ID, "Expected the re-decided brand to lead the history")
		assert.Equal(t, model.DecisionDecline, history[0].Decision, "Expected the later decision to supersede")

		for i := 1; i < len(history); i++ {
			assert.True(t, !history[i-1].DecidedAt.Before(history[i].DecidedAt), "Expected descending timestamps")
		}
	})
}
