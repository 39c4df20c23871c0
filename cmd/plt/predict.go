package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/gopxml/plt/core/predict"
	"github.com/gopxml/plt/data"
	plterrors "github.com/gopxml/plt/pkg/errors"
	plog "github.com/gopxml/plt/pkg/log"
)

func runPredict(argv []string) error {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	modelDir := fs.String("model", "", "trained model directory (required)")
	input := fs.String("input", "", "input data path (required, stdin via \"-\" is not implemented)")
	topK := fs.Int("k", 0, "number of labels to predict, 0 uses the model's default")
	logLevel := fs.String("log-level", "info", "debug|info|warn|error")
	if err := fs.Parse(argv); err != nil {
		return err
	}
	logger := plog.SetupLogger(*logLevel)

	if *modelDir == "" {
		return plterrors.NewConfigurationError("predict", "flags", "-model is required")
	}
	if *input == "" || *input == "-" {
		return plterrors.NewConfigurationError("predict", "input", "predict-from-stdin is not implemented, pass -input <path>")
	}

	args, tr, bases, err := loadModel(*modelDir)
	if err != nil {
		return err
	}
	predictor, err := predict.New(tr, bases)
	if err != nil {
		return err
	}

	k := *topK
	if k <= 0 {
		k = args.TopK
	}

	in, err := os.Open(*input)
	if err != nil {
		return plterrors.NewIOError("open", *input, err)
	}
	defer in.Close()

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	reader := data.NewReader(in)
	rows := 0
	for {
		row, err := reader.ReadRow()
		if err != nil {
			break
		}
		rows++

		trueLabel := -1
		if len(row.Labels) > 0 {
			trueLabel = row.Labels[0]
		}

		predictions := predictor.TopK(row.Features, k)
		fmt.Fprintf(out, "%d", trueLabel)
		for _, p := range predictions {
			fmt.Fprintf(out, " %d:%.5f", p.Label, p.Probability)
		}
		fmt.Fprintln(out)
	}

	logger.Debug("prediction complete", "rows", rows, "k", k)
	return nil
}
