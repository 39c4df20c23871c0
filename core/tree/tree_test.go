package tree

import (
	"bytes"
	"strings"
	"testing"
)

func TestBuildCompleteArithmetic(t *testing.T) {
	tests := []struct {
		k, a   int
		wantT  int
		wantTi int
	}{
		{1, 2, 1, 0},
		{2, 2, 3, 1},
		{7, 2, 13, 6},
		{8, 2, 15, 7},
		// k=9 is an exact power of arity 3 (3^2 = 9): a perfect ternary tree
		// of depth 2 has 1+3+9 = 13 nodes, 4 of them internal.
		{9, 3, 13, 4},
		// k=100, arity 4: floor(log4(100)) = 3, so the formula's full
		// 4-ary layer below depth 3 has a=64 slots, b=36 leaves overflow
		// into an extra layer of c=12 parents, giving t=133, ti=33.
		{100, 4, 133, 33},
	}

	for _, tt := range tests {
		tr, err := BuildComplete(tt.k, tt.a, false, nil)
		if err != nil {
			t.Fatalf("BuildComplete(%d,%d): %v", tt.k, tt.a, err)
		}

		if tr.NumNodes() != tt.wantT {
			t.Errorf("k=%d a=%d: NumNodes()=%d, want %d", tt.k, tt.a, tr.NumNodes(), tt.wantT)
		}
		if gotTi := tr.NumNodes() - tt.k; gotTi != tt.wantTi {
			t.Errorf("k=%d a=%d: internal node count=%d, want %d", tt.k, tt.a, gotTi, tt.wantTi)
		}

		if tr.NumLabels() != tt.k {
			t.Errorf("k=%d a=%d: NumLabels()=%d, want %d", tt.k, tt.a, tr.NumLabels(), tt.k)
		}
		if len(tr.Leaves) != tt.k {
			t.Errorf("k=%d a=%d: len(Leaves)=%d, want %d", tt.k, tt.a, len(tr.Leaves), tt.k)
		}

		rootCount := 0
		for _, n := range tr.Nodes {
			if n.Parent == NoParent {
				rootCount++
			} else {
				if n.Parent < 0 || n.Parent >= len(tr.Nodes) {
					t.Errorf("node %d has out-of-range parent %d", n.Index, n.Parent)
				}
			}
		}
		if rootCount != 1 {
			t.Errorf("k=%d a=%d: found %d nodes with no parent, want exactly 1", tt.k, tt.a, rootCount)
		}
	}
}

func TestBuildCompleteBinaryTreeShape(t *testing.T) {
	// Spec scenario S2: k=4 labels, complete binary tree => t=7, root index
	// 0, leaves at indices 3..6.
	tr, err := BuildComplete(4, 2, false, nil)
	if err != nil {
		t.Fatalf("BuildComplete: %v", err)
	}
	if tr.NumNodes() != 7 {
		t.Fatalf("NumNodes() = %d, want 7", tr.NumNodes())
	}
	if tr.Root != 0 {
		t.Fatalf("Root = %d, want 0", tr.Root)
	}
	for i := 3; i <= 6; i++ {
		if !tr.Nodes[i].IsLeaf() {
			t.Errorf("node %d should be a leaf", i)
		}
	}
	for i := 0; i < 3; i++ {
		if tr.Nodes[i].IsLeaf() {
			t.Errorf("node %d should be internal", i)
		}
	}
}

func TestBuildCompleteRandomizePermutesLabels(t *testing.T) {
	tr, err := BuildComplete(8, 2, true, nil)
	if err != nil {
		t.Fatalf("BuildComplete: %v", err)
	}
	seen := make(map[int]bool)
	for label := range tr.Leaves {
		seen[label] = true
	}
	for i := 0; i < 8; i++ {
		if !seen[i] {
			t.Errorf("label %d missing from randomized leaves", i)
		}
	}
}

func TestLoadExternal(t *testing.T) {
	// Spec scenario S3.
	input := "4 7\n-1 0 -1\n0 1 -1\n0 2 -1\n1 3 0\n1 4 1\n2 5 2\n2 6 3\n"
	tr, err := LoadExternal(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadExternal: %v", err)
	}
	if tr.Root != 0 {
		t.Errorf("Root = %d, want 0", tr.Root)
	}
	if len(tr.Leaves) != 4 {
		t.Fatalf("len(Leaves) = %d, want 4", len(tr.Leaves))
	}
	for label := 0; label < 4; label++ {
		if _, ok := tr.Leaves[label]; !ok {
			t.Errorf("missing leaf for label %d", label)
		}
	}
	if tr.Nodes[1].Parent != 0 || tr.Nodes[2].Parent != 0 {
		t.Errorf("expected nodes 1 and 2 to have parent 0")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	original, err := BuildComplete(9, 3, false, nil)
	if err != nil {
		t.Fatalf("BuildComplete: %v", err)
	}

	var buf bytes.Buffer
	if err := original.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.NumNodes() != original.NumNodes() || loaded.NumLabels() != original.NumLabels() {
		t.Fatalf("loaded tree shape mismatch: nodes %d/%d labels %d/%d",
			loaded.NumNodes(), original.NumNodes(), loaded.NumLabels(), original.NumLabels())
	}
	if loaded.Root != original.Root {
		t.Errorf("Root = %d, want %d", loaded.Root, original.Root)
	}
	for i := range original.Nodes {
		o, l := original.Nodes[i], loaded.Nodes[i]
		if o.Label != l.Label || o.Parent != l.Parent {
			t.Errorf("node %d mismatch: original %+v loaded %+v", i, o, l)
		}
	}
}
