package neural

import (
	"log/slog"
	"math/rand"

	"github.com/siherrmann/influmatch/model"
)

// Autoencoder is a symmetric feed-forward autoencoder trained to reconstruct
// standardized feature vectors through a low-dimensional bottleneck.
type Autoencoder struct {
	Encoder *Encoder
	Decoder []*Dense
}

// NewAutoencoder builds the encoder (input → hidden → latent) and the mirror
// decoder (latent → hidden → input) with seeded weight initialization.
func NewAutoencoder(config model.TrainingConfig, rng *rand.Rand) *Autoencoder {
	return &Autoencoder{
		Encoder: &Encoder{
			Layers: []*Dense{
				NewDense(config.InputDim, config.HiddenDim, true, rng),
				NewDense(config.HiddenDim, config.LatentDim, true, rng),
			},
		},
		Decoder: []*Dense{
			NewDense(config.LatentDim, config.HiddenDim, true, rng),
			NewDense(config.HiddenDim, config.InputDim, false, rng),
		},
	}
}

// layers returns encoder and decoder layers as one stack.
func (a *Autoencoder) layers() []*Dense {
	layers := make([]*Dense, 0, len(a.Encoder.Layers)+len(a.Decoder))
	layers = append(layers, a.Encoder.Layers...)
	return append(layers, a.Decoder...)
}

// Reconstruct runs a vector through encoder and decoder.
func (a *Autoencoder) Reconstruct(x []float64) []float64 {
	cur := x
	for _, l := range a.layers() {
		cur = l.Forward(cur)
	}
	return cur
}

// Train minimizes mean squared reconstruction error with Adam over shuffled
// mini-batches. It returns the mean loss per epoch.
func (a *Autoencoder) Train(trainX [][]float64, config model.TrainingConfig, rng *rand.Rand, log *slog.Logger) []float64 {
	layers := a.layers()
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

	idx := make([]int, len(trainX))
	for i := range idx {
		idx[i] = i
	}

	epochLosses := make([]float64, 0, config.Epochs)
	for epoch := 0; epoch < config.Epochs; epoch++ {
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		epochLoss := 0.0
		batches := 0
		for start := 0; start < len(idx); start += config.BatchSize {
			end := start + config.BatchSize
			if end > len(idx) {
				end = len(idx)
			}
			batch := idx[start:end]

			for l := range layers {
				clear(gw[l])
				clear(gb[l])
			}

			batchLoss := 0.0
			for _, sample := range batch {
				x := trainX[sample]

				ins := make([][]float64, len(layers))
				pres := make([][]float64, len(layers))
				cur := x
				for l, layer := range layers {
					ins[l] = cur
					cur, pres[l] = layer.forward(cur)
				}

				dOut := make([]float64, len(cur))
				for i, y := range cur {
					d := y - x[i]
					batchLoss += d * d
					dOut[i] = 2 * d / float64(len(cur))
				}
				for l := len(layers) - 1; l >= 0; l-- {
					dOut = layers[l].backward(ins[l], pres[l], dOut, gw[l], gb[l])
				}
			}

			scale := 1.0 / float64(len(batch))
			opt.Begin()
			for l, layer := range layers {
				scaleInPlace(gw[l], scale)
				scaleInPlace(gb[l], scale)
				opt.Update(wSlots[l], layer.W, gw[l])
				opt.Update(bSlots[l], layer.B, gb[l])
			}

			epochLoss += batchLoss / float64(len(batch)*config.InputDim)
			batches++
		}

		epochLoss /= float64(batches)
		epochLosses = append(epochLosses, epochLoss)
		log.Debug("Autoencoder epoch finished", slog.Int("epoch", epoch+1), slog.Float64("loss", epochLoss))
	}

	return epochLosses
}

func scaleInPlace(v []float64, s float64) {
	for i := range v {
		v[i] *= s
	}
}
