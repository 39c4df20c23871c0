package predict

import (
	"math"
	"testing"

	"github.com/gopxml/plt/core/tree"
	"github.com/gopxml/plt/core/weight"
)

// fixedScorer always returns the same probability, independent of the
// input features, so tests can hand-pick per-node probabilities.
type fixedScorer float64

func (f fixedScorer) PredictProbability(_ []weight.Feature) float64 { return float64(f) }

func TestTopKMatchesFixedTinyModel(t *testing.T) {
	// Spec scenario S6: k=4 labels, complete binary tree, per-node
	// probabilities chosen so leaf scores come out to (0.72,0.12,0.10,0.06).
	tr, err := tree.BuildComplete(4, 2, false, nil)
	if err != nil {
		t.Fatalf("BuildComplete: %v", err)
	}
	// Node layout: 0 root; 1,2 internal; 3,4 children of 1 (labels 0,1);
	// 5,6 children of 2 (labels 2,3).
	bases := make([]Scorer, tr.NumNodes())
	bases[0] = fixedScorer(1.0)
	bases[1] = fixedScorer(0.8) // path to leaves 3,4: 0.8*0.9=0.72, 0.8*0.15=0.12
	bases[2] = fixedScorer(0.16)
	bases[3] = fixedScorer(0.9)
	bases[4] = fixedScorer(0.15)
	bases[5] = fixedScorer(0.625) // 0.16*0.625=0.10
	bases[6] = fixedScorer(0.375) // 0.16*0.375=0.06

	p, err := New(tr, bases)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got := p.TopK(nil, 2)
	if len(got) != 2 {
		t.Fatalf("TopK returned %d predictions, want 2", len(got))
	}
	if got[0].Label != 0 || math.Abs(got[0].Probability-0.72) > 1e-9 {
		t.Errorf("first prediction = %+v, want label=0 prob=0.72", got[0])
	}
	if got[1].Label != 1 || math.Abs(got[1].Probability-0.12) > 1e-9 {
		t.Errorf("second prediction = %+v, want label=1 prob=0.12", got[1])
	}
}

func TestTopKMonotoneAndSortedDescending(t *testing.T) {
	tr, err := tree.BuildComplete(8, 2, false, nil)
	if err != nil {
		t.Fatalf("BuildComplete: %v", err)
	}
	bases := make([]Scorer, tr.NumNodes())
	for i := range bases {
		// Deterministic pseudo-random probabilities in (0,1).
		bases[i] = fixedScorer(0.3 + 0.6*float64((i*37)%11)/10.0)
	}
	p, err := New(tr, bases)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got := p.TopK(nil, 8)
	for i := 1; i < len(got); i++ {
		if got[i].Probability > got[i-1].Probability {
			t.Errorf("predictions not sorted descending at %d: %v > %v", i, got[i].Probability, got[i-1].Probability)
		}
	}
}

func TestTopKStopsAtRequestedCount(t *testing.T) {
	tr, err := tree.BuildComplete(4, 2, false, nil)
	if err != nil {
		t.Fatalf("BuildComplete: %v", err)
	}
	bases := make([]Scorer, tr.NumNodes())
	for i := range bases {
		bases[i] = fixedScorer(0.5)
	}
	p, err := New(tr, bases)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := p.TopK(nil, 0); got != nil {
		t.Errorf("TopK(k=0) = %v, want nil", got)
	}
	if got := p.TopK(nil, 2); len(got) != 2 {
		t.Errorf("TopK(k=2) returned %d predictions, want 2", len(got))
	}
}

func TestNewRejectsBaseCountMismatch(t *testing.T) {
	tr, err := tree.BuildComplete(4, 2, false, nil)
	if err != nil {
		t.Fatalf("BuildComplete: %v", err)
	}
	if _, err := New(tr, make([]Scorer, 3)); err == nil {
		t.Fatal("New: want error for mismatched base count, got nil")
	}
}
