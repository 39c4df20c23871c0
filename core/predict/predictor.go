// Package predict implements the best-first top-K Predictor (spec §4.6):
// given a feature vector, a tree, and one loaded Base per node, it walks
// the tree via a max-priority queue over cumulative path probability and
// emits the top-K labels under the PLT product-of-probabilities
// decomposition.
package predict

import (
	"container/heap"

	"github.com/gopxml/plt/core/tree"
	"github.com/gopxml/plt/core/weight"
	plterrors "github.com/gopxml/plt/pkg/errors"
)

// Scorer is the probability-producing surface a node's classifier must
// expose to the Predictor. *base.Base satisfies it; tests may substitute a
// fixed-probability stub.
type Scorer interface {
	PredictProbability(features []weight.Feature) float64
}

// Prediction is one emitted (label, probability) pair.
type Prediction struct {
	Label       int
	Probability float64
}

// item is one entry of the priority queue: a candidate node reached with
// cumulative probability Prob along the path from the root.
type item struct {
	node int
	prob float64
}

type priorityQueue []item

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].prob > pq[j].prob }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(item)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	popped := old[n-1]
	*pq = old[:n-1]
	return popped
}

// Predictor walks a fitted tree's Bases to produce top-K predictions.
type Predictor struct {
	Tree  *tree.Tree
	Bases []Scorer // indexed by node index
}

// New builds a Predictor over tr, using bases (one per node index, in the
// order tr enumerates nodes).
func New(tr *tree.Tree, bases []Scorer) (*Predictor, error) {
	if tr.NumNodes() == 0 {
		return nil, plterrors.ErrEmptyTree
	}
	if len(bases) != tr.NumNodes() {
		return nil, plterrors.Newf("predict: got %d bases, want %d (one per tree node)", len(bases), tr.NumNodes())
	}
	return &Predictor{Tree: tr, Bases: bases}, nil
}

// TopK returns the k highest-probability labels for features, in
// descending probability order, per spec §4.6's best-first algorithm.
func (p *Predictor) TopK(features []weight.Feature, k int) []Prediction {
	if k <= 0 {
		return nil
	}

	pq := &priorityQueue{}
	heap.Init(pq)
	heap.Push(pq, item{node: p.Tree.Root, prob: p.Bases[p.Tree.Root].PredictProbability(features)})

	var out []Prediction
	for pq.Len() > 0 && len(out) < k {
		top := heap.Pop(pq).(item)
		n := p.Tree.Nodes[top.node]

		if n.IsLeaf() {
			out = append(out, Prediction{Label: n.Label, Probability: top.prob})
			continue
		}

		for _, child := range n.Children {
			childProb := top.prob * p.Bases[child].PredictProbability(features)
			heap.Push(pq, item{node: child, prob: childProb})
		}
	}

	return out
}
