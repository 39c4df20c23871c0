// Package weight implements the polymorphic weight vector used by every
// Base classifier (spec §3, §4.1): a mapping from feature index to
// floating-point weight, stored as a dense array, a hash map, or a sorted
// read-only sparse array, chosen to minimize memory.
//
// The three representations are modeled as a single tagged Vector rather
// than an interface hierarchy, per §9's design note: the representation set
// is closed and every conversion routine already enumerates all three, so a
// sum type with an exhaustive switch is simpler than virtual dispatch.
package weight

import (
	"encoding/binary"
	"io"
	"sort"

	"gonum.org/v1/gonum/floats"

	plterrors "github.com/gopxml/plt/pkg/errors"
)

// Kind identifies which of the three representations a Vector currently
// holds.
type Kind int

const (
	Dense Kind = iota
	Map
	Sparse
)

func (k Kind) String() string {
	switch k {
	case Dense:
		return "dense"
	case Map:
		return "map"
	case Sparse:
		return "sparse"
	default:
		return "unknown"
	}
}

// Feature is one (index, value) entry of a sparse input row. Index 0 is
// reserved, index 1 is conventionally the bias feature. Rows are
// represented as plain slices in memory; the "-1" sentinel from spec §3 is
// purely a wire-format convention handled by the data reader.
type Feature struct {
	Index int
	Value float64
}

// Vector is the polymorphic weight vector. The zero value is not usable;
// construct with NewDense, NewMap or NewSparse.
type Vector struct {
	kind Kind
	size int // logical dimensionality; 0 means "unbounded/unknown" for map

	dense []float64

	m map[int]float64

	// sparse/map-on-disk body, also used as the map's iteration-stable
	// sorted view when one is needed (e.g. Save).
	idx []int64
	val []float64
}

// NewDense creates a zero-initialized dense vector of the given logical
// size.
func NewDense(size int) *Vector {
	return &Vector{kind: Dense, size: size, dense: make([]float64, size)}
}

// NewMap creates an empty map-backed vector. size may be 0 if the logical
// dimensionality is not yet known; it is only used for memory estimation.
func NewMap(size int) *Vector {
	return &Vector{kind: Map, size: size, m: make(map[int]float64)}
}

// NewSparse creates a read-only sparse vector from already-sorted
// (index, value) pairs. Callers that need to build one incrementally
// should accumulate in a Map and call To(Sparse).
func NewSparse(size int, idx []int64, val []float64) *Vector {
	return &Vector{kind: Sparse, size: size, idx: idx, val: val}
}

// Kind reports the vector's current representation.
func (v *Vector) Kind() Kind { return v.kind }

// Size returns the logical dimensionality.
func (v *Vector) Size() int { return v.size }

// At returns the logical weight at index i, 0 for absent indices.
func (v *Vector) At(i int) float64 {
	switch v.kind {
	case Dense:
		if i < 0 || i >= len(v.dense) {
			return 0
		}
		return v.dense[i]
	case Map:
		return v.m[i]
	case Sparse:
		j := sort.Search(len(v.idx), func(j int) bool { return v.idx[j] >= int64(i) })
		if j < len(v.idx) && v.idx[j] == int64(i) {
			return v.val[j]
		}
		return 0
	default:
		return 0
	}
}

// InsertD sets the weight at index i. Undefined (panics) for Sparse, which
// is read-only after construction, matching spec §4.1.
func (v *Vector) InsertD(i int, value float64) {
	switch v.kind {
	case Dense:
		if i >= len(v.dense) {
			grown := make([]float64, i+1)
			copy(grown, v.dense)
			v.dense = grown
			if i+1 > v.size {
				v.size = i + 1
			}
		}
		v.dense[i] = value
	case Map:
		v.m[i] = value
		if i+1 > v.size {
			v.size = i + 1
		}
	case Sparse:
		panic("weight: InsertD is not defined on a Sparse vector")
	}
}

// Dot computes sum(At(f.Index) * f.Value) over features.
func (v *Vector) Dot(features []Feature) float64 {
	var sum float64
	for _, f := range features {
		sum += v.At(f.Index) * f.Value
	}
	return sum
}

// Invert negates every stored weight in place.
func (v *Vector) Invert() {
	switch v.kind {
	case Dense:
		floats.Scale(-1, v.dense)
	case Map:
		for k, val := range v.m {
			v.m[k] = -val
		}
	case Sparse:
		floats.Scale(-1, v.val)
	}
}

// Prune removes every stored entry with |w| < threshold (dense entries are
// zeroed rather than removed, since the slice is fixed-size).
func (v *Vector) Prune(threshold float64) {
	switch v.kind {
	case Dense:
		for i, val := range v.dense {
			if abs(val) < threshold {
				v.dense[i] = 0
			}
		}
	case Map:
		for k, val := range v.m {
			if abs(val) < threshold {
				delete(v.m, k)
			}
		}
	case Sparse:
		keptIdx := v.idx[:0:0]
		keptVal := v.val[:0:0]
		for i, val := range v.val {
			if abs(val) >= threshold {
				keptIdx = append(keptIdx, v.idx[i])
				keptVal = append(keptVal, val)
			}
		}
		v.idx, v.val = keptIdx, keptVal
	}
}

// NonZero returns the number of entries whose logical value is non-zero.
func (v *Vector) NonZero() int {
	switch v.kind {
	case Dense:
		n := 0
		for _, val := range v.dense {
			if val != 0 {
				n++
			}
		}
		return n
	case Map:
		n := 0
		for _, val := range v.m {
			if val != 0 {
				n++
			}
		}
		return n
	case Sparse:
		n := 0
		for _, val := range v.val {
			if val != 0 {
				n++
			}
		}
		return n
	default:
		return 0
	}
}

// Copy returns a deep copy preserving the current representation.
func (v *Vector) Copy() *Vector {
	switch v.kind {
	case Dense:
		d := make([]float64, len(v.dense))
		copy(d, v.dense)
		return &Vector{kind: Dense, size: v.size, dense: d}
	case Map:
		m := make(map[int]float64, len(v.m))
		for k, val := range v.m {
			m[k] = val
		}
		return &Vector{kind: Map, size: v.size, m: m}
	case Sparse:
		idx := make([]int64, len(v.idx))
		val := make([]float64, len(v.val))
		copy(idx, v.idx)
		copy(val, v.val)
		return &Vector{kind: Sparse, size: v.size, idx: idx, val: val}
	default:
		return &Vector{kind: v.kind, size: v.size}
	}
}

// To converts the vector to the requested representation, returning the
// receiver unchanged if it is already that kind. Conversion preserves the
// logical mapping exactly.
func (v *Vector) To(kind Kind) *Vector {
	if v.kind == kind {
		return v
	}

	switch kind {
	case Dense:
		d := make([]float64, v.size)
		v.forEach(func(i int, val float64) {
			if i < len(d) {
				d[i] = val
			}
		})
		return &Vector{kind: Dense, size: v.size, dense: d}
	case Map:
		m := make(map[int]float64)
		v.forEach(func(i int, val float64) {
			if val != 0 {
				m[i] = val
			}
		})
		return &Vector{kind: Map, size: v.size, m: m}
	case Sparse:
		var pairs []indexValue
		v.forEach(func(i int, val float64) {
			if val != 0 {
				pairs = append(pairs, indexValue{int64(i), val})
			}
		})
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].idx < pairs[b].idx })
		idx := make([]int64, len(pairs))
		val := make([]float64, len(pairs))
		for i, p := range pairs {
			idx[i] = p.idx
			val[i] = p.val
		}
		return &Vector{kind: Sparse, size: v.size, idx: idx, val: val}
	default:
		panic("weight: unknown representation kind")
	}
}

type indexValue struct {
	idx int64
	val float64
}

func (v *Vector) forEach(fn func(i int, val float64)) {
	switch v.kind {
	case Dense:
		for i, val := range v.dense {
			fn(i, val)
		}
	case Map:
		for i, val := range v.m {
			fn(i, val)
		}
	case Sparse:
		for i, idx := range v.idx {
			fn(int(idx), v.val[i])
		}
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// ===========================================================================
//
//	Memory estimation and representation choice (spec §4.1, §6)
//
// ===========================================================================

// EstimateDenseMem is the decision rule's byte estimate for a dense vector
// of the given logical size: one float64 per slot.
func EstimateDenseMem(size, _ int) int64 { return int64(size) * 8 }

// EstimateSparseMem is the decision rule's byte estimate for a sparse
// vector of nonZero entries: one int64 index plus one float64 value, with
// no hashing overhead.
func EstimateSparseMem(_, nonZero int) int64 { return int64(nonZero) * 16 }

// EstimateMapMem is the decision rule's byte estimate for a map vector of
// nonZero entries, including an approximation of Go map bucket overhead.
func EstimateMapMem(_, nonZero int) int64 { return int64(nonZero) * 48 }

// ChooseRepresentation returns the representation minimizing estimated
// bytes for a vector with the given logical size and non-zero count. It is
// used identically by Save and Load so that loading a blob always picks
// the representation it was written in (spec invariant #5).
func ChooseRepresentation(size, nonZero int) Kind {
	dense := EstimateDenseMem(size, nonZero)
	mapp := EstimateMapMem(size, nonZero)
	sparse := EstimateSparseMem(size, nonZero)

	best := Dense
	bestMem := dense
	if mapp < bestMem {
		best, bestMem = Map, mapp
	}
	if sparse < bestMem {
		best, bestMem = Sparse, sparse
	}
	return best
}

// Mem returns the estimated in-memory footprint of the vector under its
// current representation.
func (v *Vector) Mem() int64 {
	switch v.kind {
	case Dense:
		return EstimateDenseMem(v.size, v.NonZero())
	case Map:
		return EstimateMapMem(v.size, v.NonZero())
	case Sparse:
		return EstimateSparseMem(v.size, v.NonZero())
	default:
		return 0
	}
}

// SparseMem returns the estimated footprint if this vector were stored
// sparse, regardless of its current representation.
func (v *Vector) SparseMem() int64 { return EstimateSparseMem(v.size, v.NonZero()) }

// DenseMem returns the estimated footprint if this vector were stored
// dense, regardless of its current representation.
func (v *Vector) DenseMem() int64 { return EstimateDenseMem(v.size, v.NonZero()) }

// ===========================================================================
//
//	Binary serialization (spec §6)
//
// ===========================================================================

// SaveBody writes the vector's body in its *current* representation. The
// caller (Base) is responsible for writing the (size, nonZero) header
// first and for ensuring the vector has already been converted via To to
// the kind ChooseRepresentation would pick, so that Load's blind
// recomputation of the representation from the header matches what was
// written.
func (v *Vector) SaveBody(w io.Writer) error {
	switch v.kind {
	case Dense:
		for _, val := range v.dense {
			if err := binary.Write(w, binary.LittleEndian, val); err != nil {
				return err
			}
		}
		return nil
	case Map, Sparse:
		idx, val := v.sortedPairs()
		for i := range idx {
			if err := binary.Write(w, binary.LittleEndian, idx[i]); err != nil {
				return err
			}
			if err := binary.Write(w, binary.LittleEndian, val[i]); err != nil {
				return err
			}
		}
		return nil
	default:
		return plterrors.New("weight: cannot save unknown representation")
	}
}

func (v *Vector) sortedPairs() ([]int64, []float64) {
	if v.kind == Sparse {
		return v.idx, v.val
	}
	var pairs []indexValue
	v.forEach(func(i int, val float64) {
		if val != 0 {
			pairs = append(pairs, indexValue{int64(i), val})
		}
	})
	sort.Slice(pairs, func(a, b int) bool { return pairs[a].idx < pairs[b].idx })
	idx := make([]int64, len(pairs))
	val := make([]float64, len(pairs))
	for i, p := range pairs {
		idx[i], val[i] = p.idx, p.val
	}
	return idx, val
}

// LoadBody reads a vector body written by SaveBody, given the representation
// kind chosen from the (size, nonZero) header by ChooseRepresentation.
func LoadBody(r io.Reader, kind Kind, size, nonZero int) (*Vector, error) {
	switch kind {
	case Dense:
		dense := make([]float64, size)
		for i := range dense {
			if err := binary.Read(r, binary.LittleEndian, &dense[i]); err != nil {
				return nil, err
			}
		}
		return &Vector{kind: Dense, size: size, dense: dense}, nil
	case Map:
		m := make(map[int]float64, nonZero)
		for i := 0; i < nonZero; i++ {
			var idx int64
			var val float64
			if err := binary.Read(r, binary.LittleEndian, &idx); err != nil {
				return nil, err
			}
			if err := binary.Read(r, binary.LittleEndian, &val); err != nil {
				return nil, err
			}
			m[int(idx)] = val
		}
		return &Vector{kind: Map, size: size, m: m}, nil
	case Sparse:
		idx := make([]int64, nonZero)
		val := make([]float64, nonZero)
		for i := 0; i < nonZero; i++ {
			if err := binary.Read(r, binary.LittleEndian, &idx[i]); err != nil {
				return nil, err
			}
			if err := binary.Read(r, binary.LittleEndian, &val[i]); err != nil {
				return nil, err
			}
		}
		return &Vector{kind: Sparse, size: size, idx: idx, val: val}, nil
	default:
		return nil, plterrors.New("weight: cannot load unknown representation")
	}
}

// SkipBody advances r past a vector body written by SaveBody without
// materializing it. Base.Load does not call it; it always reads G.
func SkipBody(r io.Reader, kind Kind, size, nonZero int) error {
	var width int64
	switch kind {
	case Dense:
		width = int64(size) * 8
	case Map, Sparse:
		width = int64(nonZero) * 16
	default:
		return plterrors.New("weight: cannot skip unknown representation")
	}
	if width == 0 {
		return nil
	}
	if seeker, ok := r.(io.Seeker); ok {
		_, err := seeker.Seek(width, io.SeekCurrent)
		return err
	}
	_, err := io.CopyN(io.Discard, r, width)
	return err
}
