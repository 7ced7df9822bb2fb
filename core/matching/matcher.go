// Package matching ranks brands against an influencer embedding at serving time.
package matching

import (
	"log/slog"
	"math"
	"sort"

	"github.com/siherrmann/influmatch/core/feature"
	"github.com/siherrmann/influmatch/helper"
	"github.com/siherrmann/influmatch/model"
)

// EncodeFunc maps a standardized feature vector to its latent embedding.
type EncodeFunc func(features []float64) []float64

// Matcher scores an influencer against the eligible brand population.
type Matcher struct {
	config model.MatchConfig
	log    *slog.Logger
}

// NewMatcher creates a matcher with the given similarity threshold.
func NewMatcher(config model.MatchConfig, log *slog.Logger) *Matcher {
	return &Matcher{
		config: config,
		log:    log,
	}
}

// Match embeds the query vector and every eligible brand with the same encoder
// and normalizer, then returns all brands with cosine similarity at or above
// the threshold, ordered by descending similarity. The sort is stable, so
// brands with identical scores keep their input order.
//
// The normalizer is fit over the eligible brand population of this request;
// callers must exclude already-decided brands before passing the snapshots.
func (m *Matcher) Match(encode EncodeFunc, query []float64, brands []*model.BrandFeatureSnapshot) ([]*model.BrandMatch, error) {
	if len(brands) == 0 {
		return nil, helper.NewError("Match", model.ErrNoBrandData)
	}

	queryFeatures := feature.ImputeUndefined(query)
	if err := model.ValidateFeatures(queryFeatures); err != nil {
		return nil, helper.NewError("Match", err)
	}

	population := make([][]float64, len(brands))
	for i, b := range brands {
		imputed := feature.ImputeUndefined(b.Features)
		if err := model.ValidateFeatures(imputed); err != nil {
			return nil, helper.NewError("Match", err)
		}
		population[i] = imputed
	}

	normalizer, err := feature.FitNormalizer(population)
	if err != nil {
		return nil, helper.NewError("Match", err)
	}

	queryEmbedding := encode(normalizer.Transform(queryFeatures))

	matches := []*model.BrandMatch{}
	for i, b := range brands {
		embedding := encode(normalizer.Transform(population[i]))
		similarity := CosineSimilarity(queryEmbedding, embedding)
		if similarity < m.config.SimilarityThreshold {
			continue
		}
		matches = append(matches, &model.BrandMatch{
			Brand:      b,
			Similarity: similarity,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	m.log.Debug("matched brands", "eligible", len(brands), "suggested", len(matches))

	return matches, nil
}

// CosineSimilarity returns the cosine of the angle between two vectors.
// It returns 0 if either vector has zero norm.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	dot, normA, normB := 0.0, 0.0, 0.0
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
