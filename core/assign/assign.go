// Package assign implements the Assignment Engine (spec §4.4): for each
// training row it computes the set of tree nodes that row makes positive or
// negative, and accumulates per-node binary training subproblems that the
// Trainer then hands to one Base per node.
package assign

import (
	"github.com/gopxml/plt/core/tree"
	"github.com/gopxml/plt/core/weight"
)

// Row is one training example: a label set and its sparse feature vector.
type Row struct {
	Labels   []int
	Features []weight.Feature
}

// Assign computes the positive and negative node sets for one row's label
// set against tr, per spec §4.4.
//
// P is the union of root-to-leaf paths for every label in labels. N is
// computed by walking down from the root through P only: every child of a
// node in P that is not itself in P is negative, and its subtree is not
// explored further. If labels is empty, P is empty and N is {root}.
func Assign(tr *tree.Tree, labels []int) (positives, negatives []int) {
	if len(labels) == 0 {
		return nil, []int{tr.Root}
	}

	inP := make(map[int]bool)
	for _, y := range labels {
		leaf, ok := tr.LeafForLabel(y)
		if !ok {
			continue
		}
		for n := leaf; n != tree.NoParent; {
			if inP[n] {
				break
			}
			inP[n] = true
			n = tr.Nodes[n].Parent
		}
	}

	positives = make([]int, 0, len(inP))
	for n := range inP {
		positives = append(positives, n)
	}

	queue := []int{tr.Root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, c := range tr.Nodes[n].Children {
			if inP[c] {
				queue = append(queue, c)
			} else {
				negatives = append(negatives, c)
			}
		}
	}

	return positives, negatives
}

// Buckets accumulates per-node binary training subproblems across many
// rows: for node i, BinLabels[i][j]/BinFeatures[i][j] is one (label,
// features) training example, and Weights[i][j] its instance weight.
//
// It also keeps pltree.cpp's per-row positive/negative-node bookkeeping
// (points, nodes touched, labels seen) so the Trainer can log the
// end-of-training summary without re-walking every row.
type Buckets struct {
	BinLabels   [][]int
	BinFeatures [][][]weight.Feature
	Weights     [][]float64

	points      int
	nodesTotal  int
	labelsTotal int
}

// NewBuckets allocates empty buckets for a tree with numNodes nodes.
func NewBuckets(numNodes int) *Buckets {
	return &Buckets{
		BinLabels:   make([][]int, numNodes),
		BinFeatures: make([][][]weight.Feature, numNodes),
		Weights:     make([][]float64, numNodes),
	}
}

// AddRow assigns row against tr and appends the resulting positive/negative
// training examples into the corresponding node buckets.
func (b *Buckets) AddRow(tr *tree.Tree, row Row) {
	positives, negatives := Assign(tr, row.Labels)
	for _, p := range positives {
		b.append(p, 1, row.Features)
	}
	for _, n := range negatives {
		b.append(n, 0, row.Features)
	}

	b.points++
	b.nodesTotal += len(positives) + len(negatives)
	b.labelsTotal += len(row.Labels)
}

func (b *Buckets) append(node, label int, features []weight.Feature) {
	b.BinLabels[node] = append(b.BinLabels[node], label)
	b.BinFeatures[node] = append(b.BinFeatures[node], features)
	b.Weights[node] = append(b.Weights[node], 1)
}

// NumNodes returns the number of node buckets.
func (b *Buckets) NumNodes() int { return len(b.BinLabels) }

// PointsCount returns the number of training rows folded into these
// buckets via AddRow.
func (b *Buckets) PointsCount() int { return b.points }

// NodesPerPoint returns the mean number of positive-or-negative tree nodes
// touched per training row, or 0 if no rows have been added.
func (b *Buckets) NodesPerPoint() float64 {
	if b.points == 0 {
		return 0
	}
	return float64(b.nodesTotal) / float64(b.points)
}

// LabelsPerPoint returns the mean number of labels per training row, or 0
// if no rows have been added.
func (b *Buckets) LabelsPerPoint() float64 {
	if b.points == 0 {
		return 0
	}
	return float64(b.labelsTotal) / float64(b.points)
}
