package database

import "github.com/pgvector/pgvector-go"

// featureVector converts a feature slice to the pgvector wire type. The
// stored vectors are float32; the precision loss is irrelevant for cosine
// ranking of engagement metrics.
func featureVector(features []float64) pgvector.Vector {
	converted := make([]float32, len(features))
	for i, v := range features {
		converted[i] = float32(v)
	}
	return pgvector.NewVector(converted)
}

// featureSlice converts a stored pgvector value back to a feature slice.
func featureSlice(v pgvector.Vector) []float64 {
	stored := v.Slice()
	features := make([]float64, len(stored))
	for i, x := range stored {
		features[i] = float64(x)
	}
	return features
}
