package hsm

import (
	"testing"

	"github.com/gopxml/plt/core/assign"
	"github.com/gopxml/plt/core/weight"
)

func TestIsSingleLabel(t *testing.T) {
	single := []assign.Row{
		{Labels: []int{0}},
		{Labels: []int{1}},
	}
	if !IsSingleLabel(single) {
		t.Error("IsSingleLabel(single-label rows) = false, want true")
	}

	multi := []assign.Row{
		{Labels: []int{0}},
		{Labels: []int{1, 2}},
	}
	if IsSingleLabel(multi) {
		t.Error("IsSingleLabel(multi-label rows) = true, want false")
	}

	empty := []assign.Row{{Labels: nil}}
	if IsSingleLabel(empty) {
		t.Error("IsSingleLabel(empty-label row) = true, want false")
	}
}

func TestNewRejectsMultiLabelRows(t *testing.T) {
	rows := []assign.Row{
		{Labels: []int{0, 1}, Features: []weight.Feature{{Index: 1, Value: 1}}},
	}
	if _, _, err := New(rows, 4, 2, false, nil); err == nil {
		t.Fatal("New: want error for multi-label rows, got nil")
	}
}

func TestNewBuildsTreeAndBuckets(t *testing.T) {
	rows := []assign.Row{
		{Labels: []int{0}, Features: []weight.Feature{{Index: 1, Value: 1}}},
		{Labels: []int{1}, Features: []weight.Feature{{Index: 1, Value: 1}, {Index: 2, Value: 1}}},
		{Labels: []int{2}, Features: []weight.Feature{{Index: 1, Value: 1}, {Index: 3, Value: 1}}},
		{Labels: []int{3}, Features: []weight.Feature{{Index: 1, Value: 1}, {Index: 4, Value: 1}}},
	}
	tr, buckets, err := New(rows, 4, 2, false, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tr.NumNodes() != 7 {
		t.Errorf("NumNodes() = %d, want 7", tr.NumNodes())
	}
	if buckets.NumNodes() != tr.NumNodes() {
		t.Errorf("buckets.NumNodes() = %d, want %d", buckets.NumNodes(), tr.NumNodes())
	}
	// Root sees every row as positive.
	if len(buckets.BinLabels[tr.Root]) != len(rows) {
		t.Errorf("root bucket has %d entries, want %d", len(buckets.BinLabels[tr.Root]), len(rows))
	}
}
