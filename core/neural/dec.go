package neural

import (
	"log/slog"
	"math"

	"github.com/siherrmann/influmatch/model"
)

// ClusteringHead computes Student-t soft cluster assignments over latent
// vectors, as in Deep Embedded Clustering.
type ClusteringHead struct {
	K       int         `json:"k"`
	Dim     int         `json:"dim"`
	Alpha   float64     `json:"alpha"`
	Centers [][]float64 `json:"centers"`
}

// NewClusteringHead creates a head from initial cluster centers.
func NewClusteringHead(centers [][]float64, alpha float64) *ClusteringHead {
	dim := 0
	if len(centers) > 0 {
		dim = len(centers[0])
	}
	return &ClusteringHead{
		K:       len(centers),
		Dim:     dim,
		Alpha:   alpha,
		Centers: centers,
	}
}

// Assign returns the normalized soft assignment q over all clusters for a
// latent vector: q_j ∝ (1 + ||z-c_j||²/alpha)^(-(alpha+1)/2).
func (h *ClusteringHead) Assign(z []float64) []float64 {
	q := make([]float64, h.K)
	sum := 0.0
	for j, c := range h.Centers {
		v := math.Pow(1.0+sqDist(z, c)/h.Alpha, -(h.Alpha+1.0)/2.0)
		q[j] = v
		sum += v
	}
	for j := range q {
		q[j] /= sum
	}
	return q
}

// DECModel couples the encoder with its clustering head. After refinement the
// two form a single artifact: the encoder weights were optimized against this
// head and must not be treated as separable.
type DECModel struct {
	Encoder *Encoder        `json:"encoder"`
	Head    *ClusteringHead `json:"head"`
}

// Predict returns the soft cluster assignment of a raw standardized vector.
func (m *DECModel) Predict(x []float64) []float64 {
	return m.Head.Assign(m.Encoder.Encode(x))
}

// PredictAll returns soft assignments for a batch.
func (m *DECModel) PredictAll(batch [][]float64) [][]float64 {
	q := make([][]float64, len(batch))
	for i, x := range batch {
		q[i] = m.Predict(x)
	}
	return q
}

// HardLabel returns the argmax cluster of a soft assignment.
func HardLabel(q []float64) int {
	best := 0
	for j, v := range q {
		if v > q[best] {
			best = j
		}
	}
	return best
}

// TargetDistribution derives the sharpened self-training target from soft
// assignments: p_ij = (q_ij²/f_j) / Σ_j(q_ij²/f_j) with f_j = Σ_i q_ij.
// It amplifies high-confidence assignments, normalizing per cluster and then
// per sample.
func TargetDistribution(q [][]float64) [][]float64 {
	if len(q) == 0 {
		return nil
	}
	k := len(q[0])

	freq := make([]float64, k)
	for _, qi := range q {
		for j, v := range qi {
			freq[j] += v
		}
	}

	p := make([][]float64, len(q))
	for i, qi := range q {
		pi := make([]float64, k)
		sum := 0.0
		for j, v := range qi {
			w := v * v / freq[j]
			pi[j] = w
			sum += w
		}
		for j := range pi {
			pi[j] /= sum
		}
		p[i] = pi
	}
	return p
}

// Refine runs the DEC self-training loop: every UpdateInterval steps the
// target distribution is recomputed over the full training set, and every step
// performs one joint Adam update of encoder weights and cluster centers
// against the KL divergence between current assignments and the cached
// target. The encoder is mutated in place. Returns the per-step loss history.
func (m *DECModel) Refine(trainX [][]float64, config model.TrainingConfig, log *slog.Logger) []float64 {
	layers := m.Encoder.Layers
	opt := NewAdam(config.LearningRate)

	wSlots := make([]int, len(layers))
	bSlots := make([]int, len(layers))
	gw := make([][]float64, len(layers))
	gb := make([][]float64, len(layers))
	for l, layer := range layers {
		wSlots[l] = opt.Register(len(layer.W))
		bSlots[l] = opt.Register(len(layer.B))
		gw[l] = make([]float64, len(layer.W))
		gb[l] = make([]float64, len(layer.B))
	}
	centerSlots := make([]int, m.Head.K)
	gc := make([][]float64, m.Head.K)
	for j := range m.Head.Centers {
		centerSlots[j] = opt.Register(m.Head.Dim)
		gc[j] = make([]float64, m.Head.Dim)
	}

	coef := (m.Head.Alpha + 1.0) / m.Head.Alpha

	var target [][]float64
	losses := make([]float64, 0, config.MaxIter)
	for ite := 0; ite < config.MaxIter; ite++ {
		if ite%config.UpdateInterval == 0 {
			target = TargetDistribution(m.PredictAll(trainX))
			log.Info("Updated target distribution", slog.Int("iteration", ite))
		}

		for l := range layers {
			clear(gw[l])
			clear(gb[l])
		}
		for j := range gc {
			clear(gc[j])
		}

		loss := 0.0
		for i, x := range trainX {
			ins := make([][]float64, len(layers))
			pres := make([][]float64, len(layers))
			z := x
			for l, layer := range layers {
				ins[l] = z
				z, pres[l] = layer.forward(z)
			}

			q := m.Head.Assign(z)
			p := target[i]

			for j, pj := range p {
				if pj > 0 {
					loss += pj * math.Log(pj/q[j])
				}
			}

			dz := make([]float64, len(z))
			for j, c := range m.Head.Centers {
				w := 1.0 / (1.0 + sqDist(z, c)/m.Head.Alpha)
				g := coef * w * (p[j] - q[j])
				for d := range z {
					diff := z[d] - c[d]
					dz[d] += g * diff
					gc[j][d] -= g * diff
				}
			}

			dOut := dz
			for l := len(layers) - 1; l >= 0; l-- {
				dOut = layers[l].backward(ins[l], pres[l], dOut, gw[l], gb[l])
			}
		}

		scale := 1.0 / float64(len(trainX))
		opt.Begin()
		for l, layer := range layers {
			scaleInPlace(gw[l], scale)
			scaleInPlace(gb[l], scale)
			opt.Update(wSlots[l], layer.W, gw[l])
			opt.Update(bSlots[l], layer.B, gb[l])
		}
		for j := range m.Head.Centers {
			scaleInPlace(gc[j], scale)
			opt.Update(centerSlots[j], m.Head.Centers[j], gc[j])
		}

		loss *= scale
		losses = append(losses, loss)
		log.Debug("Refinement step finished", slog.Int("iteration", ite+1), slog.Float64("loss", loss))
	}

	return losses
}
