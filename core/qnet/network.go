// Package qnet provides function approximators registered under the
// "function_approximator" family. Variants resolve to partially applied
// callables; the owning agent completes them with in_dim and out_dim once the
// environment is known.
package qnet

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Activation is applied elementwise after every hidden layer.
type Activation func(float64) float64

var activations = map[string]Activation{
	"relu":     func(x float64) float64 { return math.Max(0, x) },
	"tanh":     math.Tanh,
	"sigmoid":  func(x float64) float64 { return 1 / (1 + math.Exp(-x)) },
	"identity": func(x float64) float64 { return x },
}

// LookupActivation returns the activation called name.
func LookupActivation(name string) (Activation, error) {
	if name == "" {
		name = "relu"
	}
	a, ok := activations[name]
	if !ok {
		return nil, fmt.Errorf("unknown activation %q", name)
	}
	return a, nil
}

type layer struct {
	w *mat.Dense
	b *mat.VecDense
}

// Network is a fully connected feed-forward network. The output layer is
// linear and its weights and bias share one backing slice so optimizers can
// update them in place.
type Network struct {
	hidden     []layer
	out        layer
	outParams  []float64
	activation Activation
	inDim      int
}

// NewNetwork builds a network with the given hidden layer sizes. Weights are
// drawn uniformly in ±1/sqrt(fan_in).
func NewNetwork(inDim, outDim int, hiddenUnits []int, act Activation, seed int64) (*Network, error) {
	if inDim <= 0 || outDim <= 0 {
		return nil, fmt.Errorf("network dimensions must be positive, got in=%d out=%d", inDim, outDim)
	}
	if act == nil {
		act = activations["relu"]
	}
	rng := rand.New(rand.NewSource(seed))
	n := &Network{activation: act, inDim: inDim}
	fanIn := inDim
	for i, units := range hiddenUnits {
		if units <= 0 {
			return nil, fmt.Errorf("hidden layer %d: units must be positive, got %d", i, units)
		}
		w := mat.NewDense(units, fanIn, uniform(rng, units*fanIn, fanIn))
		b := mat.NewVecDense(units, uniform(rng, units, fanIn))
		n.hidden = append(n.hidden, layer{w: w, b: b})
		fanIn = units
	}
	n.outParams = uniform(rng, outDim*fanIn+outDim, fanIn)
	n.out = layer{
		w: mat.NewDense(outDim, fanIn, n.outParams[:outDim*fanIn]),
		b: mat.NewVecDense(outDim, n.outParams[outDim*fanIn:]),
	}
	return n, nil
}

func uniform(rng *rand.Rand, n, fanIn int) []float64 {
	bound := 1 / math.Sqrt(float64(fanIn))
	out := make([]float64, n)
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * bound
	}
	return out
}

// InDim is the expected input size.
func (n *Network) InDim() int { return n.inDim }

// OutDim is the output size.
func (n *Network) OutDim() int {
	r, _ := n.out.w.Dims()
	return r
}

// Features returns the activation of the last hidden layer, or the input
// itself for a network without hidden layers.
func (n *Network) Features(x []float64) ([]float64, error) {
	if len(x) != n.inDim {
		return nil, fmt.Errorf("input has %d values, network expects %d", len(x), n.inDim)
	}
	h := mat.NewVecDense(len(x), append([]float64(nil), x...))
	for _, l := range n.hidden {
		r, _ := l.w.Dims()
		next := mat.NewVecDense(r, nil)
		next.MulVec(l.w, h)
		next.AddVec(next, l.b)
		for i := 0; i < r; i++ {
			next.SetVec(i, n.activation(next.AtVec(i)))
		}
		h = next
	}
	return h.RawVector().Data, nil
}

// Forward returns the network output for x.
func (n *Network) Forward(x []float64) ([]float64, error) {
	f, err := n.Features(x)
	if err != nil {
		return nil, err
	}
	return n.head(f), nil
}

func (n *Network) head(features []float64) []float64 {
	r, _ := n.out.w.Dims()
	y := mat.NewVecDense(r, nil)
	y.MulVec(n.out.w, mat.NewVecDense(len(features), features))
	y.AddVec(y, n.out.b)
	return y.RawVector().Data
}

// OutputParams exposes the output layer weights (row-major) followed by its
// bias. Writes are visible to the network.
func (n *Network) OutputParams() []float64 { return n.outParams }

// OutputGradient returns the gradient of scale*y[index] with respect to
// OutputParams, given the features the output was computed from.
func (n *Network) OutputGradient(features []float64, index int, scale float64) []float64 {
	r, c := n.out.w.Dims()
	grad := make([]float64, len(n.outParams))
	if index < 0 || index >= r {
		return grad
	}
	row := grad[index*c : (index+1)*c]
	for j, f := range features {
		row[j] = scale * f
	}
	grad[r*c+index] = scale
	return grad
}
