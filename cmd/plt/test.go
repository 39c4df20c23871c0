package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gopxml/plt/core/predict"
	"github.com/gopxml/plt/data"
	plterrors "github.com/gopxml/plt/pkg/errors"
	plog "github.com/gopxml/plt/pkg/log"
	"gonum.org/v1/gonum/stat"
)

func runTest(argv []string) error {
	fs := flag.NewFlagSet("test", flag.ExitOnError)
	modelDir := fs.String("model", "", "trained model directory (required)")
	input := fs.String("input", "", "test data path (required)")
	topK := fs.Int("k", 0, "max k to report precision@k for, 0 uses the model's default")
	logLevel := fs.String("log-level", "info", "debug|info|warn|error")
	if err := fs.Parse(argv); err != nil {
		return err
	}
	logger := plog.SetupLogger(*logLevel)

	if *modelDir == "" || *input == "" {
		return plterrors.NewConfigurationError("test", "flags", "-model and -input are required")
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

	inputFile, err := os.Open(*input)
	if err != nil {
		return plterrors.NewIOError("open", *input, err)
	}
	rows, err := data.ReadAll(inputFile)
	inputFile.Close()
	if err != nil {
		return err
	}

	perRankPrecision := make([][]float64, k)
	for i := range perRankPrecision {
		perRankPrecision[i] = make([]float64, 0, len(rows))
	}

	for _, row := range rows {
		predictions := predictor.TopK(row.Features, k)
		truth := make(map[int]bool, len(row.Labels))
		for _, l := range row.Labels {
			truth[l] = true
		}

		hits := 0
		for i, p := range predictions {
			if truth[p.Label] {
				hits++
			}
			perRankPrecision[i] = append(perRankPrecision[i], float64(hits)/float64(i+1))
		}
		// Rows whose predictor emitted fewer than k leaves (a tree smaller
		// than k) still contribute zero precision at the missing ranks.
		for i := len(predictions); i < k; i++ {
			perRankPrecision[i] = append(perRankPrecision[i], 0)
		}
	}

	logger.Info("evaluation complete", "rows", len(rows), "k", k)
	for i := 0; i < k; i++ {
		p := stat.Mean(perRankPrecision[i], nil)
		fmt.Printf("P@%d: %.5f\n", i+1, p)
	}
	return nil
}
