package base

import (
	"bytes"
	"testing"

	"github.com/gopxml/plt/core/weight"
	plterrors "github.com/gopxml/plt/pkg/errors"
)

func TestTrainDegenerateEmptyDataset(t *testing.T) {
	b := New()
	if err := b.Train(3, nil, nil, nil); err != nil {
		t.Fatalf("Train: %v", err)
	}
	if b.ClassCount != 0 {
		t.Errorf("ClassCount = %d, want 0", b.ClassCount)
	}
	if got := b.PredictValue([]weight.Feature{{Index: 1, Value: 1}}); got != -10 {
		t.Errorf("PredictValue = %v, want -10", got)
	}
}

func TestTrainDegenerateAllOnesLabels(t *testing.T) {
	b := New()
	labels := []int{1, 1, 1}
	features := [][]weight.Feature{
		{{Index: 1, Value: 1}},
		{{Index: 1, Value: 1}},
		{{Index: 1, Value: 1}},
	}
	if err := b.Train(3, labels, features, nil); err != nil {
		t.Fatalf("Train: %v", err)
	}
	if b.ClassCount != 1 {
		t.Errorf("ClassCount = %d, want 1", b.ClassCount)
	}
	if b.FirstClass != 1 {
		t.Errorf("FirstClass = %d, want 1", b.FirstClass)
	}
	if got := b.PredictValue([]weight.Feature{{Index: 1, Value: 1}}); got != 10 {
		t.Errorf("PredictValue = %v, want 10", got)
	}
}

func TestTrainDegenerateCasesRaiseDegenerateNodeWarning(t *testing.T) {
	var got []error
	restore := setWarningHandlerForTest(func(w error) { got = append(got, w) })
	defer restore()

	b := New()
	if err := b.Train(3, nil, nil, nil, WithNodeIndex(7)); err != nil {
		t.Fatalf("Train: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("warnings = %v, want exactly 1", got)
	}
	dw, ok := got[0].(*plterrors.DegenerateNodeWarning)
	if !ok {
		t.Fatalf("warning type = %T, want *DegenerateNodeWarning", got[0])
	}
	if dw.NodeIndex != 7 {
		t.Errorf("NodeIndex = %d, want 7", dw.NodeIndex)
	}

	got = nil
	b2 := New()
	if err := b2.Train(3, []int{0, 0, 0}, [][]weight.Feature{
		{{Index: 1, Value: 1}}, {{Index: 1, Value: 1}}, {{Index: 1, Value: 1}},
	}, nil, WithNodeIndex(9)); err != nil {
		t.Fatalf("Train: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("warnings = %v, want exactly 1", got)
	}
	dw2, ok := got[0].(*plterrors.DegenerateNodeWarning)
	if !ok {
		t.Fatalf("warning type = %T, want *DegenerateNodeWarning", got[0])
	}
	if dw2.NodeIndex != 9 || dw2.Reason != "zero positive examples" {
		t.Errorf("warning = %+v, want NodeIndex=9 Reason=\"zero positive examples\"", dw2)
	}
}

func setWarningHandlerForTest(handler func(error)) (restore func()) {
	plterrors.SetWarningHandler(handler)
	return func() { plterrors.SetWarningHandler(nil) }
}

func TestTrainOnlineSGDConvergesOnConstantExample(t *testing.T) {
	// Spec scenario S1: a single repeated example biased toward label 0.
	const n = 100
	labels := make([]int, n)
	features := make([][]weight.Feature, n)
	for i := range labels {
		labels[i] = 0
		features[i] = []weight.Feature{{Index: 1, Value: 1}}
	}
	// Flip one example to the opposite label so the dataset isn't
	// degenerate (all-same-label short-circuits before any training).
	labels[0] = 1

	b := New()
	err := b.Train(3, labels, features, nil,
		WithOptimizer(SGD), WithLoss(Logistic), WithEpochs(50), WithEta(0.5))
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if b.ClassCount != 2 {
		t.Fatalf("ClassCount = %d, want 2", b.ClassCount)
	}

	prob := b.PredictProbability([]weight.Feature{{Index: 1, Value: 1}})
	// FirstClass defaults to 1 for online training; the dominant label is
	// 0, so the probability of FirstClass should end up low.
	if b.FirstClass == 1 && prob > 0.1 {
		t.Errorf("PredictProbability = %v, want < 0.1 for the dominant-0 example", prob)
	}
}

func TestPruneWeightsPreservesBias(t *testing.T) {
	b := New()
	b.ClassCount = 2
	b.W = weight.NewMap(5)
	b.W.InsertD(1, 0.0002) // bias, tiny
	b.W.InsertD(2, 0.9)
	b.W.InsertD(3, 0.0001)

	b.pruneWeights(1e-3)

	if b.W.At(1) != 0.0002 {
		t.Errorf("bias = %v, want preserved 0.0002", b.W.At(1))
	}
	if b.W.At(3) != 0 {
		t.Errorf("index 3 = %v, want pruned", b.W.At(3))
	}
}

func TestSetFirstClassInvertsWeights(t *testing.T) {
	b := New()
	b.ClassCount = 2
	b.FirstClass = 1
	b.W = weight.NewDense(3)
	b.W.InsertD(1, 0.5)
	b.W.InsertD(2, -0.25)

	b.setFirstClass(0)

	if b.FirstClass != 0 {
		t.Errorf("FirstClass = %d, want 0", b.FirstClass)
	}
	if b.W.At(1) != -0.5 || b.W.At(2) != 0.25 {
		t.Errorf("W not inverted: At(1)=%v At(2)=%v", b.W.At(1), b.W.At(2))
	}
}

func TestCopyInvertedIsIndependentAndFlipped(t *testing.T) {
	b := New()
	b.ClassCount = 2
	b.FirstClass = 1
	b.W = weight.NewDense(3)
	b.W.InsertD(1, 0.5)

	cp := b.CopyInverted()
	if cp.FirstClass != 0 {
		t.Errorf("CopyInverted FirstClass = %d, want 0", cp.FirstClass)
	}
	if cp.W.At(1) != -0.5 {
		t.Errorf("CopyInverted W.At(1) = %v, want -0.5", cp.W.At(1))
	}
	if b.W.At(1) != 0.5 {
		t.Errorf("original W mutated: At(1) = %v, want 0.5", b.W.At(1))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	b := New()
	labels := []int{0, 1, 0, 1, 1}
	features := [][]weight.Feature{
		{{Index: 1, Value: 1}, {Index: 2, Value: 0.5}},
		{{Index: 1, Value: 1}, {Index: 3, Value: -1}},
		{{Index: 1, Value: 1}, {Index: 2, Value: 0.2}},
		{{Index: 1, Value: 1}, {Index: 3, Value: -0.8}},
		{{Index: 1, Value: 1}, {Index: 3, Value: -0.6}},
	}
	if err := b.Train(4, labels, features, nil, WithOptimizer(AdaGrad), WithEpochs(5)); err != nil {
		t.Fatalf("Train: %v", err)
	}

	var buf bytes.Buffer
	if err := b.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.ClassCount != b.ClassCount || loaded.FirstClass != b.FirstClass || loaded.LossType != b.LossType {
		t.Fatalf("metadata mismatch: got %+v, want ClassCount=%d FirstClass=%d LossType=%v",
			loaded, b.ClassCount, b.FirstClass, b.LossType)
	}
	for i := 0; i < 4; i++ {
		if loaded.W.At(i) != b.W.At(i) {
			t.Errorf("W.At(%d) = %v, want %v", i, loaded.W.At(i), b.W.At(i))
		}
	}
}

func TestSaveDegenerateBaseOmitsWeightBlob(t *testing.T) {
	b := New()
	if err := b.Train(3, nil, nil, nil); err != nil {
		t.Fatalf("Train: %v", err)
	}
	var buf bytes.Buffer
	if err := b.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.ClassCount != 0 || loaded.W != nil {
		t.Errorf("loaded = %+v, want ClassCount=0 and nil W", loaded)
	}
}
