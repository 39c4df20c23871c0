// Package config defines the engine's configuration surface (spec §6): the
// Args struct persisted as args.bin alongside a trained model, built with
// functional options in the style of scigo's LogisticRegressionOption, and
// round-tripped through encoding/gob the way scigo's core/model persists a
// ModelWeights.
package config

import (
	"encoding/gob"
	"io"

	plterrors "github.com/gopxml/plt/pkg/errors"
)

// Args bundles every knob the train/test/predict commands need, mirroring
// the source's Args object (spec §6).
type Args struct {
	LabelCount   int
	FeatureCount int
	Arity        int
	Randomize    bool
	TreePath     string // non-empty selects the External tree construction variant

	Threads int

	Optimizer                string
	Loss                     string
	Epochs                   int
	Eta                      float64
	Tmax                     int
	InbalanceLabelsWeighting bool
	AutoCLog                 bool
	AutoCLin                 bool
	C                        float64
	ReferenceCount           float64
	PruneThreshold           float64

	TopK     int
	LogLevel string
}

// Option is a functional option over Args.
type Option func(*Args)

// New builds an Args with the engine's defaults applied.
func New(opts ...Option) *Args {
	a := &Args{
		Arity:      2,
		Threads:    1,
		Optimizer:  "sgd",
		Loss:       "logistic",
		Epochs:     1,
		Eta:        0.1,
		Tmax:       -1,
		C:          1.0,
		TopK:       5,
		LogLevel:   "info",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func WithLabelCount(n int) Option   { return func(a *Args) { a.LabelCount = n } }
func WithFeatureCount(n int) Option { return func(a *Args) { a.FeatureCount = n } }
func WithArity(n int) Option        { return func(a *Args) { a.Arity = n } }
func WithRandomize(b bool) Option   { return func(a *Args) { a.Randomize = b } }
func WithTreePath(p string) Option  { return func(a *Args) { a.TreePath = p } }
func WithThreads(n int) Option      { return func(a *Args) { a.Threads = n } }
func WithOptimizer(o string) Option { return func(a *Args) { a.Optimizer = o } }
func WithLoss(l string) Option      { return func(a *Args) { a.Loss = l } }
func WithEpochs(n int) Option       { return func(a *Args) { a.Epochs = n } }
func WithEta(eta float64) Option    { return func(a *Args) { a.Eta = eta } }
func WithTmax(t int) Option         { return func(a *Args) { a.Tmax = t } }
func WithInbalanceLabelsWeighting(b bool) Option {
	return func(a *Args) { a.InbalanceLabelsWeighting = b }
}
func WithAutoCLog(b bool) Option          { return func(a *Args) { a.AutoCLog = b } }
func WithAutoCLin(b bool) Option          { return func(a *Args) { a.AutoCLin = b } }
func WithC(c float64) Option              { return func(a *Args) { a.C = c } }
func WithReferenceCount(r float64) Option { return func(a *Args) { a.ReferenceCount = r } }
func WithPruneThreshold(t float64) Option { return func(a *Args) { a.PruneThreshold = t } }
func WithTopK(k int) Option               { return func(a *Args) { a.TopK = k } }
func WithLogLevel(level string) Option    { return func(a *Args) { a.LogLevel = level } }

// Save gob-encodes a to w (the args.bin artifact, spec §6).
func Save(w io.Writer, a *Args) error {
	if err := gob.NewEncoder(w).Encode(a); err != nil {
		return plterrors.Wrap(err, "config: encoding args")
	}
	return nil
}

// Load decodes an Args previously written by Save.
func Load(r io.Reader) (*Args, error) {
	var a Args
	if err := gob.NewDecoder(r).Decode(&a); err != nil {
		return nil, plterrors.Wrap(err, "config: decoding args")
	}
	return &a, nil
}
