// Package base implements the per-node binary linear classifier (spec
// §3, §4.2): the Base type combines a loss, an online or batch optimizer,
// and a polymorphic weight vector, and knows how to train, predict, prune,
// and serialize itself.
package base

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/gopxml/plt/core/weight"
	plterrors "github.com/gopxml/plt/pkg/errors"
)

// Base is one binary classifier attached to one label-tree node.
type Base struct {
	ClassCount      int // 0 = degenerate empty, 1 = constant class, 2 = real classifier
	FirstClass      int // which label value a positive W·x encodes
	LossType        LossType
	T               int // training-step counter
	FirstClassCount int // steps whose label equaled FirstClass

	W *weight.Vector
	G *weight.Vector // optional AdaGrad accumulator
}

// New returns a zero-value Base, equivalent to one trained on an empty
// dataset (spec §4.2 degenerate case).
func New() *Base {
	return &Base{}
}

// Options configures a Train call.
type Options struct {
	Optimizer                Optimizer
	Loss                     LossType
	Epochs                   int
	Eta                      float64
	Tmax                     int // -1 means unbounded
	InbalanceLabelsWeighting bool
	AutoCLog                 bool
	AutoCLin                 bool
	C                        float64
	ReferenceCount           float64 // r, the positive-instance rate normalizer for autoC scaling
	InvPs                    []float64
	PruneThreshold           float64 // 0 disables pruning
	Solver                   Solver  // used only when Optimizer == LibLinear
	NodeIndex                int     // -1 if unknown; identifies the tree node in DegenerateNodeWarning
}

// Option is a functional option over Options.
type Option func(*Options)

// DefaultOptions returns the baseline training configuration: online SGD,
// logistic loss, a single epoch, unbounded tmax.
func DefaultOptions() Options {
	return Options{
		Optimizer: SGD,
		Loss:      Logistic,
		Epochs:    1,
		Eta:       0.1,
		Tmax:      -1,
		C:         1.0,
		NodeIndex: -1,
	}
}

func WithOptimizer(o Optimizer) Option { return func(c *Options) { c.Optimizer = o } }
func WithLoss(l LossType) Option       { return func(c *Options) { c.Loss = l } }
func WithEpochs(n int) Option          { return func(c *Options) { c.Epochs = n } }
func WithEta(eta float64) Option       { return func(c *Options) { c.Eta = eta } }
func WithTmax(t int) Option            { return func(c *Options) { c.Tmax = t } }
func WithInbalanceLabelsWeighting(b bool) Option {
	return func(c *Options) { c.InbalanceLabelsWeighting = b }
}
func WithAutoCLog(b bool) Option              { return func(c *Options) { c.AutoCLog = b } }
func WithAutoCLin(b bool) Option              { return func(c *Options) { c.AutoCLin = b } }
func WithC(c float64) Option                  { return func(o *Options) { o.C = c } }
func WithReferenceCount(r float64) Option     { return func(c *Options) { c.ReferenceCount = r } }
func WithInvPs(invPs []float64) Option        { return func(c *Options) { c.InvPs = invPs } }
func WithPruneThreshold(t float64) Option     { return func(c *Options) { c.PruneThreshold = t } }
func WithSolver(s Solver) Option              { return func(c *Options) { c.Solver = s } }
func WithNodeIndex(i int) Option              { return func(c *Options) { c.NodeIndex = i } }

// Train fits the classifier on one node's binary subproblem: numFeatures is
// the feature-space dimensionality (bias included), labels/features/
// instanceWeights are parallel per-example arrays. See spec §4.2.
func (b *Base) Train(numFeatures int, labels []int, features [][]weight.Feature, instanceWeights []float64, opts ...Option) error {
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	b.LossType = cfg.Loss
	b.T = 0
	b.FirstClassCount = 0
	b.W = nil
	b.G = nil

	if len(labels) == 0 {
		b.FirstClass = 0
		b.ClassCount = 0
		plterrors.Warn(plterrors.NewDegenerateNodeWarning(cfg.NodeIndex, "zero training examples"))
		return nil
	}

	allSame := true
	for _, l := range labels[1:] {
		if l != labels[0] {
			allSame = false
			break
		}
	}
	if allSame {
		b.FirstClass = labels[0]
		b.ClassCount = 1
		reason := "zero positive examples"
		if labels[0] != 0 {
			reason = "zero negative examples"
		}
		plterrors.Warn(plterrors.NewDegenerateNodeWarning(cfg.NodeIndex, reason))
		return nil
	}

	weights := instanceWeights
	if cfg.InbalanceLabelsWeighting {
		weights = applyImbalanceWeighting(labels, instanceWeights)
	}

	var err error
	if cfg.Optimizer == LibLinear {
		err = b.trainBatch(numFeatures, labels, features, weights, cfg)
	} else {
		err = b.trainOnline(numFeatures, labels, features, weights, cfg)
	}
	if err != nil {
		return err
	}

	if cfg.PruneThreshold > 0 {
		b.pruneWeights(cfg.PruneThreshold)
	}
	if b.W != nil && b.W.SparseMem() < b.W.DenseMem() {
		b.W = b.W.To(weight.Sparse)
		if b.G != nil {
			b.G = b.G.To(weight.Sparse)
		}
	}
	return nil
}

func (b *Base) trainOnline(numFeatures int, labels []int, features [][]weight.Feature, weights []float64, cfg Options) error {
	b.W = weight.NewDense(numFeatures)
	if cfg.Optimizer == AdaGrad {
		b.G = weight.NewDense(numFeatures)
	}
	b.FirstClass = 1
	b.ClassCount = 2

	epochs := cfg.Epochs
	if epochs <= 0 {
		epochs = 1
	}

epochLoop:
	for e := 0; e < epochs; e++ {
		for i, feat := range features {
			if cfg.Tmax >= 0 && b.T > cfg.Tmax {
				break epochLoop
			}

			pred := b.W.Dot(feat)
			invPs := 1.0
			if cfg.InvPs != nil && i < len(cfg.InvPs) {
				invPs = cfg.InvPs[i]
			}
			w := 1.0
			if weights != nil && i < len(weights) {
				w = weights[i]
			}
			grad := lossGrad(cfg.Loss, labels[i], pred, invPs) * w

			if cfg.Optimizer == AdaGrad {
				adagradUpdate(b.W, b.G, feat, grad, cfg.Eta)
			} else {
				sgdUpdate(b.W, feat, grad, cfg.Eta)
			}

			b.T++
			if labels[i] == b.FirstClass {
				b.FirstClassCount++
			}
		}
	}
	return nil
}

func (b *Base) trainBatch(numFeatures int, labels []int, features [][]weight.Feature, weights []float64, cfg Options) error {
	m := len(labels)
	C := cfg.C
	if cfg.AutoCLog && cfg.ReferenceCount > 0 {
		C *= 1 + math.Log(cfg.ReferenceCount/float64(m))
	} else if cfg.AutoCLin && cfg.ReferenceCount > 0 {
		C *= cfg.ReferenceCount / float64(m)
	}

	solver := cfg.Solver
	if solver == nil {
		solver = DefaultSolver{}
	}

	problem := Problem{Labels: labels, Features: features, InstanceWeights: weights, NumFeatures: numFeatures}
	param := Parameter{C: C, SquaredLoss: cfg.Loss == SquaredHinge, MaxIter: cfg.Epochs}

	model, err := solver.Solve(problem, param)
	if err != nil {
		return plterrors.Wrap(err, "base: batch solver failed")
	}

	b.FirstClass = model.Label[0]
	b.ClassCount = model.NrClass
	if cfg.Loss == SquaredHinge {
		b.LossType = SquaredHinge
	}

	if model.NrClass > 1 {
		dense := weight.NewDense(numFeatures + 1)
		for i, v := range model.W {
			dense.InsertD(i+1, v)
		}
		b.W = dense
	}
	return nil
}

func applyImbalanceWeighting(labels []int, weights []float64) []float64 {
	count0, count1 := 0, 0
	for _, l := range labels {
		if l == 0 {
			count0++
		} else {
			count1++
		}
	}
	w0, w1 := 1.0, 1.0
	switch {
	case count0 > count1 && count1 > 0:
		w1 = 1 + math.Log(float64(count0)/float64(count1))
	case count1 > count0 && count0 > 0:
		w0 = 1 + math.Log(float64(count1)/float64(count0))
	}

	out := make([]float64, len(labels))
	for i, l := range labels {
		base := 1.0
		if weights != nil && i < len(weights) {
			base = weights[i]
		}
		if l == 0 {
			out[i] = base * w0
		} else {
			out[i] = base * w1
		}
	}
	return out
}

// predictValue returns the classifier's raw margin, always oriented so that
// a positive value means FirstClass == 1 (spec §4.2).
func (b *Base) predictValue(features []weight.Feature) float64 {
	if b.ClassCount < 2 {
		return (1 - 2*float64(b.FirstClass)) * -10
	}
	val := b.W.Dot(features)
	if b.FirstClass == 0 {
		val = -val
	}
	return val
}

// PredictValue is the exported form of predictValue.
func (b *Base) PredictValue(features []weight.Feature) float64 {
	return b.predictValue(features)
}

// PredictProbability squashes predictValue through the classifier's loss
// function into a probability in [0,1].
func (b *Base) PredictProbability(features []weight.Feature) float64 {
	return predictProbability(b.LossType, b.predictValue(features))
}

// pruneWeights removes every |w|<threshold entry from W, preserving the
// bias (index 1) exactly, per spec §4.2/§8 invariant #3.
func (b *Base) pruneWeights(threshold float64) {
	if b.W == nil {
		return
	}
	bias := b.W.At(1)
	b.W.Prune(threshold)
	b.W.InsertD(1, bias)
}

// setFirstClass swaps which label the classifier's positive margin encodes,
// inverting W and G in place to preserve the classifier's decision
// function (spec §3).
func (b *Base) setFirstClass(fc int) {
	if fc == b.FirstClass {
		return
	}
	b.FirstClass = fc
	if b.W != nil {
		b.W.Invert()
	}
	if b.G != nil {
		b.G.Invert()
	}
}

// SetFirstClass is the exported form of setFirstClass.
func (b *Base) SetFirstClass(fc int) { b.setFirstClass(fc) }

// Copy returns a deep copy of b.
func (b *Base) Copy() *Base {
	cp := &Base{
		ClassCount:      b.ClassCount,
		FirstClass:      b.FirstClass,
		LossType:        b.LossType,
		T:               b.T,
		FirstClassCount: b.FirstClassCount,
	}
	if b.W != nil {
		cp.W = b.W.Copy()
	}
	if b.G != nil {
		cp.G = b.G.Copy()
	}
	return cp
}

// CopyInverted returns a deep copy with FirstClass flipped, i.e. one whose
// decision function is the logical negation of b's.
func (b *Base) CopyInverted() *Base {
	cp := b.Copy()
	cp.setFirstClass(1 - cp.FirstClass)
	return cp
}

// To converts W (and G, if present) to the given representation in place.
func (b *Base) To(kind weight.Kind) {
	if b.W != nil {
		b.W = b.W.To(kind)
	}
	if b.G != nil {
		b.G = b.G.To(kind)
	}
}

// ===========================================================================
//
//	Binary serialization (spec §6)
//
// ===========================================================================

// Save writes b's binary layout: classCount, firstClass, lossType, and, if
// classCount > 1, the (size, nonZero) header, W's blob in the
// memory-optimal representation, a hasGrads flag, and G's blob if present.
func (b *Base) Save(w io.Writer) error {
	if err := writeInt64(w, int64(b.ClassCount)); err != nil {
		return err
	}
	if err := writeInt64(w, int64(b.FirstClass)); err != nil {
		return err
	}
	if err := writeInt64(w, int64(b.LossType)); err != nil {
		return err
	}
	if b.ClassCount <= 1 {
		return nil
	}

	size, nonZero := b.W.Size(), b.W.NonZero()
	if err := writeInt64(w, int64(size)); err != nil {
		return err
	}
	if err := writeInt64(w, int64(nonZero)); err != nil {
		return err
	}

	kind := weight.ChooseRepresentation(size, nonZero)
	saveW := b.W.To(kind)
	if err := saveW.SaveBody(w); err != nil {
		return err
	}

	hasGrads := b.G != nil
	if err := writeBool(w, hasGrads); err != nil {
		return err
	}
	if hasGrads {
		saveG := b.G.To(kind)
		if err := saveG.SaveBody(w); err != nil {
			return err
		}
	}
	return nil
}

// Load reads a Base written by Save.
func Load(r io.Reader) (*Base, error) {
	classCount, err := readInt64(r)
	if err != nil {
		return nil, plterrors.Wrap(err, "base: reading classCount")
	}
	firstClass, err := readInt64(r)
	if err != nil {
		return nil, plterrors.Wrap(err, "base: reading firstClass")
	}
	lossType, err := readInt64(r)
	if err != nil {
		return nil, plterrors.Wrap(err, "base: reading lossType")
	}

	b := &Base{ClassCount: int(classCount), FirstClass: int(firstClass), LossType: LossType(lossType)}
	if b.ClassCount <= 1 {
		return b, nil
	}

	size, err := readInt64(r)
	if err != nil {
		return nil, plterrors.Wrap(err, "base: reading size")
	}
	nonZero, err := readInt64(r)
	if err != nil {
		return nil, plterrors.Wrap(err, "base: reading nonZero")
	}

	kind := weight.ChooseRepresentation(int(size), int(nonZero))
	wv, err := weight.LoadBody(r, kind, int(size), int(nonZero))
	if err != nil {
		return nil, plterrors.Wrap(err, "base: reading W")
	}
	b.W = wv

	hasGrads, err := readBool(r)
	if err != nil {
		return nil, plterrors.Wrap(err, "base: reading hasGrads")
	}
	if hasGrads {
		g, err := weight.LoadBody(r, kind, int(size), int(nonZero))
		if err != nil {
			return nil, plterrors.Wrap(err, "base: reading G")
		}
		b.G = g
	}
	return b, nil
}

func writeInt64(w io.Writer, v int64) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func readInt64(r io.Reader) (int64, error) {
	var v int64
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func writeBool(w io.Writer, v bool) error {
	var b byte
	if v {
		b = 1
	}
	_, err := w.Write([]byte{b})
	return err
}

func readBool(r io.Reader) (bool, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return false, err
	}
	return b[0] != 0, nil
}
