package feature

import (
	"errors"
	"math"

	"github.com/siherrmann/influmatch/helper"
	"github.com/siherrmann/influmatch/model"
)

// Normalizer standardizes feature vectors to zero mean and unit variance.
// The fit state is immutable once produced: brands and the query influencer of
// one comparison must be transformed by the same fitted instance.
type Normalizer struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// FitNormalizer computes per-feature mean and standard deviation over the
// given population. Every vector must have exactly model.FeatureDim components.
func FitNormalizer(population [][]float64) (*Normalizer, error) {
	if len(population) == 0 {
		return nil, helper.NewError("fit normalizer", errors.New("population is empty"))
	}

	mean := make([]float64, model.FeatureDim)
	std := make([]float64, model.FeatureDim)

	for _, v := range population {
		if err := model.ValidateFeatures(v); err != nil {
			return nil, helper.NewError("fit normalizer", err)
		}
		for i, x := range v {
			mean[i] += x
		}
	}
	n := float64(len(population))
	for i := range mean {
		mean[i] /= n
	}

	for _, v := range population {
		for i, x := range v {
			d := x - mean[i]
			std[i] += d * d
		}
	}
	for i := range std {
		std[i] = math.Sqrt(std[i] / n)
	}

	return &Normalizer{Mean: mean, Std: std}, nil
}

// Transform standardizes a single vector. Features with zero standard
// deviation in the fitted population map to 0 instead of dividing by zero.
func (n *Normalizer) Transform(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		if n.Std[i] == 0 {
			out[i] = 0
			continue
		}
		out[i] = (x - n.Mean[i]) / n.Std[i]
	}
	return out
}

// ImputeUndefined replaces undefined (NaN) components with 0 so the vector can
// be fed to FitNormalizer and Transform. The zero-followers sentinel in
// engagement_per_follower is the only producer of undefined components.
func ImputeUndefined(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		if math.IsNaN(x) {
			out[i] = 0
			continue
		}
		out[i] = x
	}
	return out
}

// TransformAll standardizes a batch of vectors.
func (n *Normalizer) TransformAll(vs [][]float64) [][]float64 {
	out := make([][]float64, len(vs))
	for i, v := range vs {
		out[i] = n.Transform(v)
	}
	return out
}
