// Package train implements the Trainer (spec §4.5): given per-node binary
// subproblems from the Assignment Engine, it dispatches one Base.Train call
// per tree node across a bounded worker pool and persists each result to
// disk atomically.
package train

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gopxml/plt/core/assign"
	"github.com/gopxml/plt/core/base"
	"github.com/gopxml/plt/core/parallel"
	"github.com/gopxml/plt/core/tree"
	plterrors "github.com/gopxml/plt/pkg/errors"
	plog "github.com/gopxml/plt/pkg/log"
)

// Config bundles the knobs a Trainer run needs beyond the tree and buckets
// it trains against.
type Config struct {
	NumFeatures int
	Threads     int // pool size; <=0 means unbounded
	OutputDir   string
	BaseOptions []base.Option
	Logger      plog.Logger
}

// Run trains one Base per node of tr from buckets and writes node_<i>.bin
// into cfg.OutputDir for every node. Per spec §7's propagation policy, a
// failure on any node is surfaced only after every task has finished; the
// caller must treat cfg.OutputDir as containing no valid model on error.
func Run(ctx context.Context, tr *tree.Tree, buckets *assign.Buckets, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = plog.Nop()
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return plterrors.NewIOError("mkdir", cfg.OutputDir, err)
	}

	numNodes := tr.NumNodes()
	tasks := make([]func() error, numNodes)
	for i := 0; i < numNodes; i++ {
		nodeIndex := i
		tasks[nodeIndex] = func() error {
			b := base.New()
			labels := buckets.BinLabels[nodeIndex]
			features := buckets.BinFeatures[nodeIndex]
			weights := buckets.Weights[nodeIndex]

			nodeOpts := append(append([]base.Option(nil), cfg.BaseOptions...), base.WithNodeIndex(nodeIndex))
			if err := b.Train(cfg.NumFeatures, labels, features, weights, nodeOpts...); err != nil {
				return plterrors.NewTrainingError(nodeIndex, err)
			}

			if err := saveNodeAtomic(cfg.OutputDir, nodeIndex, b); err != nil {
				return plterrors.NewTrainingError(nodeIndex, err)
			}

			logger.Debug("node trained",
				"node_index", nodeIndex,
				"class_count", b.ClassCount,
				"examples", len(labels))
			return nil
		}
	}

	if err := parallel.Run(ctx, cfg.Threads, tasks); err != nil {
		return err
	}

	logger.Info("training run summary",
		"points_count", buckets.PointsCount(),
		"nodes_per_point", buckets.NodesPerPoint(),
		"labels_per_point", buckets.LabelsPerPoint())

	return nil
}

// saveNodeAtomic writes b to a temp file in dir and renames it into place,
// so a reader never observes a partially-written node_<index>.bin.
func saveNodeAtomic(dir string, index int, b *base.Base) error {
	path := filepath.Join(dir, fmt.Sprintf("node_%d.bin", index))
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return plterrors.NewIOError("create", tmp, err)
	}
	if err := b.Save(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return plterrors.NewIOError("write", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return plterrors.NewIOError("close", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return plterrors.NewIOError("rename", path, err)
	}
	return nil
}
