package base

import (
	"math"

	"github.com/gopxml/plt/core/weight"
)

// Optimizer identifies which update rule Base.Train uses for online
// training, or selects the batch LibLinear-style path (spec §4.2).
type Optimizer int

const (
	SGD Optimizer = iota
	AdaGrad
	LibLinear
)

func (o Optimizer) String() string {
	switch o {
	case SGD:
		return "sgd"
	case AdaGrad:
		return "adagrad"
	case LibLinear:
		return "liblinear"
	default:
		return "unknown"
	}
}

// ParseOptimizer maps a configuration string to an Optimizer.
func ParseOptimizer(name string) (Optimizer, bool) {
	switch name {
	case "sgd":
		return SGD, true
	case "adagrad":
		return AdaGrad, true
	case "liblinear":
		return LibLinear, true
	default:
		return 0, false
	}
}

const adagradEpsilon = 1e-8

// sgdUpdate applies a plain gradient-descent step: w -= eta * grad * x, over
// every feature touched by this example.
func sgdUpdate(w *weight.Vector, features []weight.Feature, grad, eta float64) {
	for _, f := range features {
		w.InsertD(f.Index, w.At(f.Index)-eta*grad*f.Value)
	}
}

// adagradUpdate applies AdaGrad's per-coordinate adaptive step, maintaining
// the running squared-gradient sum in g.
func adagradUpdate(w, g *weight.Vector, features []weight.Feature, grad, eta float64) {
	for _, f := range features {
		coordGrad := grad * f.Value
		accum := g.At(f.Index) + coordGrad*coordGrad
		g.InsertD(f.Index, accum)
		step := eta / (math.Sqrt(accum) + adagradEpsilon)
		w.InsertD(f.Index, w.At(f.Index)-step*coordGrad)
	}
}
