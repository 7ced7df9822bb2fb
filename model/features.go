package model

import (
	"fmt"
	"math"
)

// FeatureDim is the number of engagement features every entity carries.
const FeatureDim = 6

// FeatureNames lists the engagement features in their fixed order.
var FeatureNames = [FeatureDim]string{
	"followers",
	"engagement_score",
	"engagement_per_follower",
	"estimated_reach",
	"estimated_impression",
	"reach_ratio",
}

// EntityType distinguishes the two sides of the matching problem.
type EntityType string

const (
	EntityTypeBrand      EntityType = "brand"
	EntityTypeInfluencer EntityType = "influencer"
)

// Label returns the numeric training label for the entity type.
func (e EntityType) Label() int {
	if e == EntityTypeInfluencer {
		return 1
	}
	return 0
}

// EntityRecord is one training row for a brand or influencer.
type EntityRecord struct {
	EntityType EntityType `json:"entity_type"`
	EntityName string     `json:"entity_name"`
	TrueLabel  int        `json:"true_label"`
	Features   []float64  `json:"features"`
}

// ValidateFeatures checks that a feature vector has exactly FeatureDim defined
// components. It returns a ValidationError naming the offending feature.
func ValidateFeatures(features []float64) error {
	if len(features) != FeatureDim {
		return &ValidationError{
			Field:  "features",
			Reason: fmt.Sprintf("expected %d features, got %d", FeatureDim, len(features)),
		}
	}
	for i, v := range features {
		if math.IsNaN(v) {
			return &ValidationError{Field: FeatureNames[i], Reason: "value is undefined"}
		}
		if math.IsInf(v, 0) {
			return &ValidationError{Field: FeatureNames[i], Reason: "value is infinite"}
		}
	}
	return nil
}

// FeaturesAsMap returns the feature vector keyed by feature name.
// Undefined components are reported as nil so they serialize cleanly.
func FeaturesAsMap(features []float64) map[string]interface{} {
	m := make(map[string]interface{}, len(features))
	for i, v := range features {
		if i >= FeatureDim {
			break
		}
		if math.IsNaN(v) {
			m[FeatureNames[i]] = nil
			continue
		}
		m[FeatureNames[i]] = v
	}
	return m
}
