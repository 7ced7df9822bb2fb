package neural

import (
	"errors"
	"math"
	"math/rand"

	"github.com/siherrmann/influmatch/helper"
)

// KMeans clusters the given vectors into k groups with Lloyd's algorithm.
// Initial centers are drawn from the data with the seeded rng, so results are
// reproducible for a fixed seed. Returns the cluster centers and the final
// assignment of every vector.
func KMeans(vectors [][]float64, k int, maxIter int, rng *rand.Rand) ([][]float64, []int, error) {
	if k <= 0 {
		return nil, nil, helper.NewError("kmeans", errors.New("cluster count must be positive"))
	}
	if len(vectors) < k {
		return nil, nil, helper.NewError("kmeans", errors.New("fewer vectors than clusters"))
	}
	dim := len(vectors[0])

	// Initial centers: k distinct random samples.
	centers := make([][]float64, k)
	picked := rng.Perm(len(vectors))[:k]
	for j, idx := range picked {
		centers[j] = append([]float64(nil), vectors[idx]...)
	}

	labels := make([]int, len(vectors))
	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, v := range vectors {
			best := 0
			bestDist := math.MaxFloat64
			for j, c := range centers {
				if d := sqDist(v, c); d < bestDist {
					bestDist = d
					best = j
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		counts := make([]int, k)
		sums := make([][]float64, k)
		for j := range sums {
			sums[j] = make([]float64, dim)
		}
		for i, v := range vectors {
			counts[labels[i]]++
			for d, x := range v {
				sums[labels[i]][d] += x
			}
		}
		for j := range centers {
			if counts[j] == 0 {
				// Reseed an empty cluster to a random sample.
				centers[j] = append([]float64(nil), vectors[rng.Intn(len(vectors))]...)
				continue
			}
			for d := range centers[j] {
				centers[j][d] = sums[j][d] / float64(counts[j])
			}
		}
	}

	return centers, labels, nil
}

func sqDist(a, b []float64) float64 {
	sum := 0.0
	for i, x := range a {
		d := x - b[i]
		sum += d * d
	}
	return sum
}
