// Command plt trains, evaluates, and runs inference for a Probabilistic
// Label Tree / Hierarchical Softmax extreme multi-label classifier (spec
// §6).
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: plt <train|test|predict> [flags]")
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "train":
		err = runTrain(os.Args[2:])
	case "test":
		err = runTest(os.Args[2:])
	case "predict":
		err = runPredict(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "plt: unknown command %q\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "plt:", err)
		os.Exit(1)
	}
}
