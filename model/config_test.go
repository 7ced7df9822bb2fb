package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTrainingConfig(t *testing.T) {
	t.Run("Returns correct default values", func(t *testing.T) {
		config := DefaultTrainingConfig()

		assert.Equal(t, FeatureDim, config.InputDim, "Default InputDim should match the feature count")
		assert.Equal(t, 8, config.HiddenDim, "Default HiddenDim should be 8")
		assert.Equal(t, 4, config.LatentDim, "Default LatentDim should be 4")
		assert.Equal(t, 50, config.Epochs, "Default Epochs should be 50")
		assert.Equal(t, 16, config.BatchSize, "Default BatchSize should be 16")
		assert.Equal(t, 1e-3, config.LearningRate, "Default LearningRate should be 1e-3")
		assert.Equal(t, 2, config.Clusters, "Default Clusters should be 2")
		assert.Equal(t, 1.0, config.Alpha, "Default Alpha should be 1.0")
		assert.Equal(t, 1000, config.MaxIter, "Default MaxIter should be 1000")
		assert.Equal(t, 140, config.UpdateInterval, "Default UpdateInterval should be 140")
		assert.Equal(t, 0.3, config.TestFraction, "Default TestFraction should be 0.3")
		assert.Equal(t, int64(42), config.Seed, "Default Seed should be 42")
	})

	t.Run("Can be modified after creation", func(t *testing.T) {
		config := DefaultTrainingConfig()

		config.Epochs = 100
		config.LatentDim = 2

		assert.Equal(t, 100, config.Epochs)
		assert.Equal(t, 2, config.LatentDim)
	})
}

func TestDefaultMatchConfig(t *testing.T) {
	t.Run("Similarity threshold is part of the external contract", func(t *testing.T) {
		config := DefaultMatchConfig()

		assert.Equal(t, 0.95, config.SimilarityThreshold, "Default SimilarityThreshold should be exactly 0.95")
	})
}
