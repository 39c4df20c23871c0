package base

import (
	"math"

	"github.com/gopxml/plt/core/weight"
)

// Problem is the batch training input handed to a Solver, mirroring the
// LibLinear calling convention described in spec §9: a set of examples with
// {0,1} labels, sparse features, and per-example weights.
type Problem struct {
	Labels          []int
	Features        [][]weight.Feature
	InstanceWeights []float64
	NumFeatures     int
}

// Parameter configures a Solver invocation.
type Parameter struct {
	C          float64
	SquaredLoss bool // true selects an L2-loss (squared hinge) SVM variant
	MaxIter    int
	Tol        float64
}

// Model is a Solver's output: one weight per feature (no implicit bias
// column; the caller shifts indices to make room for one, per spec §4.2),
// plus which label value the weights predict positively.
type Model struct {
	Label     []int // Label[0] is the class encoded by a positive W·x
	W         []float64
	NrClass   int
	NrFeature int
}

// Solver is the external batch linear solver collaborator (spec §9): any
// implementation matching this (problem, parameter) -> model contract may
// be substituted for LibLinear itself, which is out of scope (spec §1).
type Solver interface {
	Solve(problem Problem, param Parameter) (*Model, error)
}

// DefaultSolver is an in-process substitute for LibLinear: full-batch
// gradient descent over the whole problem, in the style of scigo's
// LogisticRegression.fitBinary, generalized to sparse feature rows and an
// optional squared-hinge loss. It exists so Base.Train's liblinear path is
// runnable without an external dependency; a production deployment may
// swap in a real LibLinear binding via the Solver interface.
type DefaultSolver struct{}

func (DefaultSolver) Solve(problem Problem, param Parameter) (*Model, error) {
	labels := distinctLabels(problem.Labels)
	if len(labels) <= 1 {
		class := 0
		if len(labels) == 1 {
			class = labels[0]
		}
		return &Model{Label: []int{class}, NrClass: 1, NrFeature: problem.NumFeatures}, nil
	}

	n := problem.NumFeatures
	w := make([]float64, n)

	maxIter := param.MaxIter
	if maxIter <= 0 {
		maxIter = 200
	}
	tol := param.Tol
	if tol <= 0 {
		tol = 1e-4
	}
	lambda := 0.0
	if param.C > 0 {
		lambda = 1.0 / param.C
	}

	m := len(problem.Labels)
	loss := Logistic
	if param.SquaredLoss {
		loss = SquaredHinge
	}

	learningRate := 1.0
	for iter := 0; iter < maxIter; iter++ {
		grad := make([]float64, n)
		for i, features := range problem.Features {
			pred := dotDense(w, features)
			g := lossGrad(loss, problem.Labels[i], pred, 1.0)
			weight := 1.0
			if problem.InstanceWeights != nil {
				weight = problem.InstanceWeights[i]
			}
			g *= weight
			for _, f := range features {
				if f.Index >= 0 && f.Index < n {
					grad[f.Index] += g * f.Value
				}
			}
		}
		for j := range grad {
			grad[j] /= float64(m)
			grad[j] += lambda * w[j]
		}

		rate := learningRate / (1.0 + 0.1*float64(iter))
		maxGrad := 0.0
		for j := range w {
			w[j] -= rate * grad[j]
			if a := math.Abs(grad[j]); a > maxGrad {
				maxGrad = a
			}
		}
		if maxGrad < tol {
			break
		}
	}

	// w is indexed by feature index; Model.W follows the LibLinear layout in
	// which W[i] is the weight of feature index i+1, so drop the slot of the
	// reserved index 0.
	if len(w) > 0 {
		w = w[1:]
	}
	return &Model{Label: []int{1, 0}, W: w, NrClass: 2, NrFeature: n}, nil
}

func dotDense(w []float64, features []weight.Feature) float64 {
	var sum float64
	for _, f := range features {
		if f.Index >= 0 && f.Index < len(w) {
			sum += w[f.Index] * f.Value
		}
	}
	return sum
}

func distinctLabels(labels []int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}
