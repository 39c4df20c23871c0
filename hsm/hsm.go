// Package hsm exposes Hierarchical Softmax as a named entry point over the
// PLT engine (spec §4.7): HSM is structurally the same Predictor and
// Assignment Engine restricted to rows carrying exactly one label, so the
// positive path per row is a single deterministic root-to-leaf walk and its
// siblings are the only negatives.
package hsm

import (
	"math/rand"

	"github.com/gopxml/plt/core/assign"
	"github.com/gopxml/plt/core/tree"
	plterrors "github.com/gopxml/plt/pkg/errors"
)

// IsSingleLabel reports whether every row carries exactly one label, the
// precondition for treating a dataset as HSM rather than general PLT.
func IsSingleLabel(rows []assign.Row) bool {
	for _, r := range rows {
		if len(r.Labels) != 1 {
			return false
		}
	}
	return true
}

// New builds the complete balanced tree and per-node training buckets for
// an HSM run: labelCount leaves, the given arity, optionally randomized
// label placement. It returns ErrSingleLabelRequired if any row in rows
// carries zero or multiple labels.
func New(rows []assign.Row, labelCount, arity int, randomize bool, rng *rand.Rand) (*tree.Tree, *assign.Buckets, error) {
	if !IsSingleLabel(rows) {
		return nil, nil, plterrors.ErrSingleLabelRequired
	}

	tr, err := tree.BuildComplete(labelCount, arity, randomize, rng)
	if err != nil {
		return nil, nil, err
	}

	buckets := assign.NewBuckets(tr.NumNodes())
	for _, row := range rows {
		buckets.AddRow(tr, row)
	}
	return tr, buckets, nil
}
