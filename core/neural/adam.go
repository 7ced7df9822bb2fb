package neural

import "math"

// Adam implements the Adam update rule over a fixed set of parameter tensors.
// Tensors are registered once; Begin advances the shared timestep before the
// per-tensor updates of one optimization step.
type Adam struct {
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64

	step int
	m    [][]float64
	v    [][]float64
}

// NewAdam creates an optimizer with the usual moment defaults.
func NewAdam(learningRate float64) *Adam {
	return &Adam{
		LearningRate: learningRate,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-8,
	}
}

// Register allocates moment buffers for a tensor of the given size and
// returns its slot.
func (a *Adam) Register(size int) int {
	a.m = append(a.m, make([]float64, size))
	a.v = append(a.v, make([]float64, size))
	return len(a.m) - 1
}

// Begin advances the timestep. Call once per optimization step, before Update.
func (a *Adam) Begin() {
	a.step++
}

// Update applies one bias-corrected Adam step to params using grad.
func (a *Adam) Update(slot int, params, grad []float64) {
	c1 := 1 - math.Pow(a.Beta1, float64(a.step))
	c2 := 1 - math.Pow(a.Beta2, float64(a.step))
	m := a.m[slot]
	v := a.v[slot]
	for i := range params {
		g := grad[i]
		m[i] = a.Beta1*m[i] + (1-a.Beta1)*g
		v[i] = a.Beta2*v[i] + (1-a.Beta2)*g*g
		params[i] -= a.LearningRate * (m[i] / c1) / (math.Sqrt(v[i]/c2) + a.Epsilon)
	}
}
