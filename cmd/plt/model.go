package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gopxml/plt/config"
	"github.com/gopxml/plt/core/base"
	"github.com/gopxml/plt/core/predict"
	"github.com/gopxml/plt/core/tree"
	plterrors "github.com/gopxml/plt/pkg/errors"
)

// loadModel reads the args.bin/tree.bin/node_<i>.bin artifacts a prior
// train run wrote into dir (spec §6).
func loadModel(dir string) (*config.Args, *tree.Tree, []predict.Scorer, error) {
	argsFile, err := os.Open(filepath.Join(dir, "args.bin"))
	if err != nil {
		return nil, nil, nil, plterrors.NewIOError("open", filepath.Join(dir, "args.bin"), err)
	}
	args, err := config.Load(argsFile)
	argsFile.Close()
	if err != nil {
		return nil, nil, nil, err
	}

	treeFile, err := os.Open(filepath.Join(dir, "tree.bin"))
	if err != nil {
		return nil, nil, nil, plterrors.NewIOError("open", filepath.Join(dir, "tree.bin"), err)
	}
	tr, err := tree.Load(treeFile)
	treeFile.Close()
	if err != nil {
		return nil, nil, nil, err
	}

	bases := make([]predict.Scorer, tr.NumNodes())
	for i := 0; i < tr.NumNodes(); i++ {
		path := filepath.Join(dir, fmt.Sprintf("node_%d.bin", i))
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, nil, plterrors.NewIOError("open", path, err)
		}
		b, err := base.Load(f)
		f.Close()
		if err != nil {
			return nil, nil, nil, err
		}
		bases[i] = b
	}

	return args, tr, bases, nil
}
