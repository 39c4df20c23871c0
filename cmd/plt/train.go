package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"github.com/gopxml/plt/config"
	"github.com/gopxml/plt/core/assign"
	"github.com/gopxml/plt/core/base"
	"github.com/gopxml/plt/core/train"
	"github.com/gopxml/plt/core/tree"
	"github.com/gopxml/plt/data"
	plterrors "github.com/gopxml/plt/pkg/errors"
	plog "github.com/gopxml/plt/pkg/log"
)

func runTrain(argv []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	input := fs.String("input", "", "training data path (required)")
	output := fs.String("output", "", "output model directory (required)")
	labelCount := fs.Int("labels", 0, "number of labels (required unless -tree is given)")
	featureCount := fs.Int("features", 0, "number of features (required)")
	arity := fs.Int("arity", 2, "complete tree arity")
	randomize := fs.Bool("randomize", false, "shuffle label placement across leaves")
	treePath := fs.String("tree", "", "external tree file, overrides -labels/-arity")
	threads := fs.Int("threads", 1, "worker pool size, 0 for unbounded")
	optimizer := fs.String("optimizer", "sgd", "sgd|adagrad|liblinear")
	loss := fs.String("loss", "logistic", "logistic|squaredHinge|pwLogistic")
	epochs := fs.Int("epochs", 1, "online training epochs / batch solver iterations")
	eta := fs.Float64("eta", 0.1, "online learning rate")
	tmax := fs.Int("tmax", -1, "max online SGD steps per node, -1 unbounded")
	inbalance := fs.Bool("inbalance-weighting", false, "reweight the minority class")
	autoCLog := fs.Bool("auto-c-log", false, "scale C logarithmically by reference-count/m")
	autoCLin := fs.Bool("auto-c-lin", false, "scale C linearly by reference-count/m")
	c := fs.Float64("c", 1.0, "batch solver inverse regularization strength")
	referenceCount := fs.Float64("reference-count", 0, "positive-instance rate normalizer for autoC")
	pruneThreshold := fs.Float64("prune", 0, "post-training weight prune threshold, 0 disables")
	logLevel := fs.String("log-level", "info", "debug|info|warn|error")
	if err := fs.Parse(argv); err != nil {
		return err
	}

	logger := plog.SetupLogger(*logLevel)

	if *input == "" || *output == "" || *featureCount == 0 {
		return plterrors.NewConfigurationError("train", "flags", "-input, -output and -features are required")
	}
	if *treePath == "" && *labelCount == 0 {
		return plterrors.NewConfigurationError("train", "flags", "-labels is required unless -tree is given")
	}

	if _, ok := base.ParseOptimizer(*optimizer); !ok {
		return plterrors.NewConfigurationError("train", "optimizer", *optimizer)
	}
	if _, ok := base.ParseLossType(*loss); !ok {
		return plterrors.NewConfigurationError("train", "loss", *loss)
	}

	args := config.New(
		config.WithLabelCount(*labelCount),
		config.WithFeatureCount(*featureCount),
		config.WithArity(*arity),
		config.WithRandomize(*randomize),
		config.WithTreePath(*treePath),
		config.WithThreads(*threads),
		config.WithOptimizer(*optimizer),
		config.WithLoss(*loss),
		config.WithEpochs(*epochs),
		config.WithEta(*eta),
		config.WithTmax(*tmax),
		config.WithInbalanceLabelsWeighting(*inbalance),
		config.WithAutoCLog(*autoCLog),
		config.WithAutoCLin(*autoCLin),
		config.WithC(*c),
		config.WithReferenceCount(*referenceCount),
		config.WithPruneThreshold(*pruneThreshold),
		config.WithLogLevel(*logLevel),
	)

	inputFile, err := os.Open(*input)
	if err != nil {
		return plterrors.NewIOError("open", *input, err)
	}
	rows, err := data.ReadAll(inputFile)
	inputFile.Close()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*output, 0o755); err != nil {
		return plterrors.NewIOError("mkdir", *output, err)
	}

	var labelTree *tree.Tree
	if args.TreePath != "" {
		treeInput, err := os.Open(args.TreePath)
		if err != nil {
			return plterrors.NewIOError("open", args.TreePath, err)
		}
		labelTree, err = tree.LoadExternal(treeInput)
		treeInput.Close()
		if err != nil {
			return err
		}
	} else {
		labelTree, err = tree.BuildComplete(args.LabelCount, args.Arity, args.Randomize, nil)
		if err != nil {
			return err
		}
	}

	buckets := assign.NewBuckets(labelTree.NumNodes())
	for _, row := range rows {
		buckets.AddRow(labelTree, assign.Row{Labels: row.Labels, Features: row.Features})
	}

	if err := persistArtifacts(*output, args, labelTree, len(rows)); err != nil {
		return err
	}

	optimizerEnum, _ := base.ParseOptimizer(args.Optimizer)
	lossEnum, _ := base.ParseLossType(args.Loss)
	baseOpts := []base.Option{
		base.WithOptimizer(optimizerEnum),
		base.WithLoss(lossEnum),
		base.WithEpochs(args.Epochs),
		base.WithEta(args.Eta),
		base.WithTmax(args.Tmax),
		base.WithInbalanceLabelsWeighting(args.InbalanceLabelsWeighting),
		base.WithAutoCLog(args.AutoCLog),
		base.WithAutoCLin(args.AutoCLin),
		base.WithC(args.C),
		base.WithReferenceCount(args.ReferenceCount),
		base.WithPruneThreshold(args.PruneThreshold),
	}

	trainCfg := train.Config{
		NumFeatures: args.FeatureCount + 1, // +1 to leave room for the bias at index 1
		Threads:     args.Threads,
		OutputDir:   *output,
		BaseOptions: baseOpts,
		Logger:      logger,
	}

	if err := train.Run(context.Background(), labelTree, buckets, trainCfg); err != nil {
		return err
	}

	logger.Info("training complete", "nodes", labelTree.NumNodes(), "rows", len(rows), "output", *output)
	return nil
}

func persistArtifacts(dir string, args *config.Args, labelTree *tree.Tree, numRows int) error {
	argsFile, err := os.Create(filepath.Join(dir, "args.bin"))
	if err != nil {
		return plterrors.NewIOError("create", filepath.Join(dir, "args.bin"), err)
	}
	err = config.Save(argsFile, args)
	argsFile.Close()
	if err != nil {
		return err
	}

	treeFile, err := os.Create(filepath.Join(dir, "tree.bin"))
	if err != nil {
		return plterrors.NewIOError("create", filepath.Join(dir, "tree.bin"), err)
	}
	err = labelTree.Save(treeFile)
	treeFile.Close()
	if err != nil {
		return err
	}

	readerStateFile, err := os.Create(filepath.Join(dir, "data_reader.bin"))
	if err != nil {
		return plterrors.NewIOError("create", filepath.Join(dir, "data_reader.bin"), err)
	}
	err = data.SaveState(readerStateFile, data.State{NumRows: numRows, NumFeatures: args.FeatureCount})
	readerStateFile.Close()
	return err
}
