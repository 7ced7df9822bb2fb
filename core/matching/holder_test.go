package matching

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/siherrmann/influmatch/core/neural"
	"github.com/siherrmann/influmatch/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publishTestModel(t *testing.T, store *neural.ArtifactStore) {
	t.Helper()

	config := model.DefaultTrainingConfig()
	rng := rand.New(rand.NewSource(config.Seed))
	ae := neural.NewAutoencoder(config, rng)

	centers := make([][]float64, config.Clusters)
	for i := range centers {
		centers[i] = make([]float64, config.LatentDim)
		for d := range centers[i] {
			centers[i][d] = rng.NormFloat64()
		}
	}

	_, err := store.Publish(&neural.DECModel{
		Encoder: ae.Encoder,
		Head:    neural.NewClusteringHead(centers, config.Alpha),
	})
	require.NoError(t, err)
}

func TestModelHolderEncoder(t *testing.T) {
	t.Run("No published artifact", func(t *testing.T) {
		holder := NewModelHolder(neural.NewArtifactStore(t.TempDir()))

		_, err := holder.Encoder()

		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrModelUnavailable)
	})

	t.Run("Caches the loaded encoder", func(t *testing.T) {
		store := neural.NewArtifactStore(t.TempDir())
		publishTestModel(t, store)
		holder := NewModelHolder(store)

		first, err := holder.Encoder()
		require.NoError(t, err)
		second, err := holder.Encoder()
		require.NoError(t, err)

		assert.Same(t, first, second, "Expected the same cached instance on repeated loads")
	})

	t.Run("Concurrent loads share one encoder", func(t *testing.T) {
		store := neural.NewArtifactStore(t.TempDir())
		publishTestModel(t, store)
		holder := NewModelHolder(store)

		encoders := make([]*neural.Encoder, 8)
		var wg sync.WaitGroup
		for i := range encoders {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				encoder, err := holder.Encoder()
				assert.NoError(t, err)
				encoders[i] = encoder
			}(i)
		}
		wg.Wait()

		for i := 1; i < len(encoders); i++ {
			assert.Same(t, encoders[0], encoders[i])
		}
	})

	t.Run("Invalidate forces a reload", func(t *testing.T) {
		store := neural.NewArtifactStore(t.TempDir())
		publishTestModel(t, store)
		holder := NewModelHolder(store)

		first, err := holder.Encoder()
		require.NoError(t, err)

		holder.Invalidate()

		second, err := holder.Encoder()
		require.NoError(t, err)
		assert.NotSame(t, first, second, "Expected a fresh instance after invalidation")

		x := []float64{0.1, 0.5, -0.2, 0.9, 0.0, -0.4}
		assert.Equal(t, first.Encode(x), second.Encode(x), "Expected identical weights after reload")
	})
}
