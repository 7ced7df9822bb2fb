package neural

import (
	"math"
	"math/rand"
)

// Dense is a fully connected layer with optional ReLU activation.
// Weights are stored row-major as [out*in].
type Dense struct {
	In   int       `json:"in"`
	Out  int       `json:"out"`
	W    []float64 `json:"w"`
	B    []float64 `json:"b"`
	ReLU bool      `json:"relu"`
}

// NewDense creates a layer with glorot-uniform initialized weights.
func NewDense(in, out int, relu bool, rng *rand.Rand) *Dense {
	limit := math.Sqrt(6.0 / float64(in+out))
	w := make([]float64, in*out)
	for i := range w {
		w[i] = (rng.Float64()*2 - 1) * limit
	}
	return &Dense{
		In:   in,
		Out:  out,
		W:    w,
		B:    make([]float64, out),
		ReLU: relu,
	}
}

// Forward applies the layer. It does not mutate the layer and is safe for
// concurrent use once training is finished.
func (l *Dense) Forward(x []float64) []float64 {
	out, _ := l.forward(x)
	return out
}

// forward returns both activation and preactivation for backpropagation.
// For linear layers the two alias the same slice.
func (l *Dense) forward(x []float64) (out, pre []float64) {
	pre = make([]float64, l.Out)
	for o := 0; o < l.Out; o++ {
		sum := l.B[o]
		row := l.W[o*l.In : (o+1)*l.In]
		for i, xi := range x {
			sum += row[i] * xi
		}
		pre[o] = sum
	}
	if !l.ReLU {
		return pre, pre
	}
	out = make([]float64, l.Out)
	for o, v := range pre {
		if v > 0 {
			out[o] = v
		}
	}
	return out, pre
}

// backward accumulates parameter gradients into gw/gb and returns the
// gradient with respect to the layer input. x and pre must come from the
// forward pass of the same sample.
func (l *Dense) backward(x, pre, dOut, gw, gb []float64) []float64 {
	dIn := make([]float64, l.In)
	for o := 0; o < l.Out; o++ {
		if l.ReLU && pre[o] <= 0 {
			continue
		}
		d := dOut[o]
		gb[o] += d
		row := l.W[o*l.In : (o+1)*l.In]
		g := gw[o*l.In : (o+1)*l.In]
		for i, xi := range x {
			g[i] += d * xi
			dIn[i] += d * row[i]
		}
	}
	return dIn
}

// Encoder maps a standardized feature vector to its latent embedding.
type Encoder struct {
	Layers []*Dense `json:"layers"`
}

// Encode runs the feature vector through all encoder layers.
func (e *Encoder) Encode(x []float64) []float64 {
	cur := x
	for _, l := range e.Layers {
		cur = l.Forward(cur)
	}
	return cur
}

// LatentDim returns the dimensionality of the latent embedding.
func (e *Encoder) LatentDim() int {
	return e.Layers[len(e.Layers)-1].Out
}
