package base

import (
	"testing"

	"github.com/gopxml/plt/core/weight"
)

func TestSGDUpdateMovesTowardNegativeGradient(t *testing.T) {
	w := weight.NewDense(3)
	features := []weight.Feature{{Index: 1, Value: 1}, {Index: 2, Value: 2}}
	sgdUpdate(w, features, 1.0, 0.1)

	if got := w.At(1); got != -0.1 {
		t.Errorf("w[1] = %v, want -0.1", got)
	}
	if got := w.At(2); got != -0.2 {
		t.Errorf("w[2] = %v, want -0.2", got)
	}
}

func TestAdaGradAccumulatesSquaredGradient(t *testing.T) {
	w := weight.NewDense(3)
	g := weight.NewDense(3)
	features := []weight.Feature{{Index: 1, Value: 1}}

	adagradUpdate(w, g, features, 2.0, 1.0)
	if got := g.At(1); got != 4.0 {
		t.Errorf("g[1] = %v, want 4.0", got)
	}

	adagradUpdate(w, g, features, 2.0, 1.0)
	if got := g.At(1); got != 8.0 {
		t.Errorf("g[1] = %v, want 8.0 after second update", got)
	}
}

func TestParseOptimizer(t *testing.T) {
	tests := []struct {
		name string
		want Optimizer
		ok   bool
	}{
		{"sgd", SGD, true},
		{"adagrad", AdaGrad, true},
		{"liblinear", LibLinear, true},
		{"nope", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseOptimizer(tt.name)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseOptimizer(%q) = (%v,%v), want (%v,%v)", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}
