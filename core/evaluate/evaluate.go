// Package evaluate scores a refined clustering model on held-out samples.
package evaluate

import (
	"math"

	"github.com/siherrmann/influmatch/core/neural"
	"github.com/siherrmann/influmatch/helper"
	"github.com/siherrmann/influmatch/model"
)

// Silhouette computes the mean silhouette score over all samples: for each
// sample (b-a)/max(a,b) with a the mean intra-cluster distance and b the mean
// distance to the nearest other cluster. Samples in singleton clusters score 0.
// Returns 0 if fewer than two clusters are populated.
func Silhouette(vectors [][]float64, labels []int) float64 {
	if len(vectors) < 2 || len(vectors) != len(labels) {
		return 0
	}

	clusters := map[int][]int{}
	for i, l := range labels {
		clusters[l] = append(clusters[l], i)
	}
	if len(clusters) < 2 {
		return 0
	}

	total := 0.0
	for i, v := range vectors {
		own := clusters[labels[i]]
		if len(own) < 2 {
			continue
		}

		a := 0.0
		for _, j := range own {
			if j == i {
				continue
			}
			a += euclidean(v, vectors[j])
		}
		a /= float64(len(own) - 1)

		b := math.Inf(1)
		for l, members := range clusters {
			if l == labels[i] {
				continue
			}
			d := 0.0
			for _, j := range members {
				d += euclidean(v, vectors[j])
			}
			d /= float64(len(members))
			if d < b {
				b = d
			}
		}

		if m := math.Max(a, b); m > 0 {
			total += (b - a) / m
		}
	}
	return total / float64(len(vectors))
}

// ConfusionMatrix counts (true label, predicted cluster) pairs in a k×k matrix.
func ConfusionMatrix(trueLabels, predicted []int, k int) [][]int {
	matrix := make([][]int, k)
	for i := range matrix {
		matrix[i] = make([]int, k)
	}
	for i, t := range trueLabels {
		matrix[t][predicted[i]]++
	}
	return matrix
}

// ClusterAccuracy scores predicted cluster ids against true labels under the
// best one-to-one relabeling. Cluster ids carry no meaning on their own, so the
// confusion matrix is solved as a linear assignment problem (negated counts,
// Hungarian algorithm) and accuracy is the matched count over the total.
func ClusterAccuracy(trueLabels, predicted []int, k int) float64 {
	if len(trueLabels) == 0 || len(trueLabels) != len(predicted) {
		return 0
	}

	confusion := ConfusionMatrix(trueLabels, predicted, k)
	cost := make([][]float64, k)
	for i := range cost {
		cost[i] = make([]float64, k)
		for j := range cost[i] {
			cost[i][j] = -float64(confusion[i][j])
		}
	}

	assignment := solveAssignment(cost)
	matched := 0
	for t, p := range assignment {
		matched += confusion[t][p]
	}
	return float64(matched) / float64(len(trueLabels))
}

// solveAssignment returns the cost-minimizing column for every row of a square
// cost matrix (Hungarian method with potentials, O(n³)). Rows and columns are
// shifted by one internally so index 0 serves as the virtual start of each
// augmenting path.
func solveAssignment(cost [][]float64) []int {
	n := len(cost)
	u := make([]float64, n+1)
	v := make([]float64, n+1)
	rowOf := make([]int, n+1)
	way := make([]int, n+1)

	for i := 1; i <= n; i++ {
		rowOf[0] = i
		minTo := make([]float64, n+1)
		used := make([]bool, n+1)
		for j := range minTo {
			minTo[j] = math.Inf(1)
		}

		j0 := 0
		for {
			used[j0] = true
			i0 := rowOf[j0]
			delta := math.Inf(1)
			j1 := 0
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				reduced := cost[i0-1][j-1] - u[i0] - v[j]
				if reduced < minTo[j] {
					minTo[j] = reduced
					way[j] = j0
				}
				if minTo[j] < delta {
					delta = minTo[j]
					j1 = j
				}
			}
			for j := 0; j <= n; j++ {
				if used[j] {
					u[rowOf[j]] += delta
					v[j] -= delta
				} else {
					minTo[j] -= delta
				}
			}
			j0 = j1
			if rowOf[j0] == 0 {
				break
			}
		}

		for j0 != 0 {
			j1 := way[j0]
			rowOf[j0] = rowOf[j1]
			j0 = j1
		}
	}

	assignment := make([]int, n)
	for j := 1; j <= n; j++ {
		if rowOf[j] != 0 {
			assignment[rowOf[j]-1] = j - 1
		}
	}
	return assignment
}

// Evaluate scores the refined model on held-out records. The records carry the
// true entity labels; their features are embedded, hard-labeled and compared
// against the true labels under the best cluster relabeling.
func Evaluate(dec *neural.DECModel, records []model.EntityRecord) (model.Evaluation, error) {
	if len(records) == 0 {
		return model.Evaluation{}, helper.NewError("Evaluate", model.ErrNoBrandData)
	}

	latents := make([][]float64, len(records))
	predicted := make([]int, len(records))
	trueLabels := make([]int, len(records))
	testRecords := make([]model.TestRecord, len(records))

	for i, r := range records {
		if err := model.ValidateFeatures(r.Features); err != nil {
			return model.Evaluation{}, helper.NewError("Evaluate", err)
		}
		z := dec.Encoder.Encode(r.Features)
		q := dec.Head.Assign(z)

		latents[i] = z
		predicted[i] = neural.HardLabel(q)
		trueLabels[i] = r.TrueLabel
		testRecords[i] = model.TestRecord{
			EntityType: r.EntityType,
			EntityName: r.EntityName,
			TrueLabel:  r.TrueLabel,
			Cluster:    predicted[i],
			Features:   r.Features,
		}
	}

	return model.Evaluation{
		SilhouetteScore:    Silhouette(latents, predicted),
		ClusteringAccuracy: ClusterAccuracy(trueLabels, predicted, dec.Head.K),
		PredictedClusters:  predicted,
		TestRecords:        testRecords,
	}, nil
}

func euclidean(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return math.Sqrt(s)
}
