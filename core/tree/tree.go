// Package tree implements the label tree used by the PLT/HSM engine
// (spec §3, §4.3): a set of nodes with parent/child/label relations, built
// either as a complete balanced tree or loaded from an externally supplied
// structure, and serialized to the binary layout consumed by the trainer
// and predictor.
//
// Nodes live in a flat arena indexed by integer id rather than a pointer
// graph, per §9's design note: this sidesteps the parent/child ownership
// cycle the original C++ has with raw parent pointers, and makes
// serialization a matter of writing two parallel arrays.
package tree

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/rand"

	plterrors "github.com/gopxml/plt/pkg/errors"
)

// NoParent marks the root node's parent slot.
const NoParent = -1

// NoLabel marks an internal (non-leaf) node.
const NoLabel = -1

// Node is one vertex of the label tree.
type Node struct {
	Index    int
	Label    int // >=0 for a leaf mapped to an external label id, -1 for internal
	Parent   int // NoParent for the root
	Children []int
}

// IsLeaf reports whether n is a leaf (label >= 0).
func (n Node) IsLeaf() bool { return n.Label >= 0 }

// Tree is an immutable-after-construction label tree: k leaves (one per
// label) and t total nodes.
type Tree struct {
	Nodes []Node
	Root  int
	// Leaves maps an external label id to its leaf node index; a bijection
	// over the tree's leaves (spec §3 invariant).
	Leaves map[int]int
	k      int // number of labels
}

// NumNodes returns t, the total node count.
func (tr *Tree) NumNodes() int { return len(tr.Nodes) }

// NumLabels returns k, the number of labels (leaves).
func (tr *Tree) NumLabels() int { return tr.k }

// LeafForLabel returns the node index of the leaf mapped to label, and
// whether it exists.
func (tr *Tree) LeafForLabel(label int) (int, bool) {
	idx, ok := tr.Leaves[label]
	return idx, ok
}

// BuildComplete constructs a complete balanced tree over labelCount labels
// with the given arity, per spec §4.3. If randomize is true, label ids are
// shuffled across leaves using rng (nil uses a new source seeded with 1, so
// the shuffle is deterministic).
func BuildComplete(labelCount, arity int, randomize bool, rng *rand.Rand) (*Tree, error) {
	if labelCount <= 0 {
		return nil, plterrors.Newf("tree: labelCount must be positive, got %d", labelCount)
	}
	if arity < 2 {
		arity = 2
	}

	k := labelCount
	var t int
	if arity == 2 {
		t = 2*k - 1
	} else {
		a := math.Pow(float64(arity), math.Floor(math.Log(float64(k))/math.Log(float64(arity))))
		b := float64(k) - a
		c := math.Ceil(b / (float64(arity) - 1.0))
		d := (float64(arity)*a - 1.0) / (float64(arity) - 1.0)
		e := float64(k) - (a - c)
		t = int(e + d)
	}
	ti := t - k

	labelsOrder := make([]int, k)
	for i := range labelsOrder {
		labelsOrder[i] = i
	}
	if randomize {
		if rng == nil {
			rng = rand.New(rand.NewSource(1))
		}
		rng.Shuffle(k, func(i, j int) { labelsOrder[i], labelsOrder[j] = labelsOrder[j], labelsOrder[i] })
	}

	nodes := make([]Node, t)
	for i := 0; i < t; i++ {
		nodes[i] = Node{Index: i, Label: NoLabel, Parent: NoParent}
	}

	leaves := make(map[int]int, k)
	for i := 0; i < t; i++ {
		if i >= ti {
			label := i - ti
			if randomize {
				label = labelsOrder[i-ti]
			}
			nodes[i].Label = label
			leaves[label] = i
		}
		if i > 0 {
			parent := (i - 1) / arity
			nodes[i].Parent = parent
			nodes[parent].Children = append(nodes[parent].Children, i)
		}
	}

	return &Tree{Nodes: nodes, Root: 0, Leaves: leaves, k: k}, nil
}

// LoadExternal parses the text grammar described in spec §4.3's "External"
// construction variant: "k t" on the first line, followed by t-1 edge lines
// of "parent child label" (label -1 for internal nodes). A line with parent
// -1 marks child as root and is not counted among the t-1 edge lines.
func LoadExternal(r io.Reader) (*Tree, error) {
	var k, t int
	if _, err := fmt.Fscan(r, &k, &t); err != nil {
		return nil, plterrors.Wrap(err, "tree: reading header")
	}

	nodes := make([]Node, t)
	for i := range nodes {
		nodes[i] = Node{Index: i, Label: NoLabel, Parent: NoParent}
	}
	root := 0
	leaves := make(map[int]int)

	read := 0
	for read < t-1 {
		var parent, child, label int
		if _, err := fmt.Fscan(r, &parent, &child, &label); err != nil {
			return nil, plterrors.Wrap(err, "tree: reading edge")
		}

		if parent == -1 {
			root = child
			continue
		}

		nodes[parent].Children = append(nodes[parent].Children, child)
		nodes[child].Parent = parent
		if label >= 0 {
			nodes[child].Label = label
			leaves[label] = child
		}
		read++
	}

	return &Tree{Nodes: nodes, Root: root, Leaves: leaves, k: k}, nil
}

// ===========================================================================
//
//	Binary serialization (spec §4.3, §6)
//
// ===========================================================================

// Save writes the tree's binary layout: k, then t, then (index, label) per
// node, then the root index, then the parent index per node (-1 for root).
func (tr *Tree) Save(w io.Writer) error {
	if err := writeInt64(w, int64(tr.k)); err != nil {
		return err
	}
	t := len(tr.Nodes)
	if err := writeInt64(w, int64(t)); err != nil {
		return err
	}
	for _, n := range tr.Nodes {
		if err := writeInt64(w, int64(n.Index)); err != nil {
			return err
		}
		if err := writeInt64(w, int64(n.Label)); err != nil {
			return err
		}
	}
	if err := writeInt64(w, int64(tr.Root)); err != nil {
		return err
	}
	for _, n := range tr.Nodes {
		if err := writeInt64(w, int64(n.Parent)); err != nil {
			return err
		}
	}
	return nil
}

// Load reads a tree written by Save, reconstructing Children and Leaves.
func Load(r io.Reader) (*Tree, error) {
	k, err := readInt64(r)
	if err != nil {
		return nil, plterrors.Wrap(err, "tree: reading k")
	}
	t, err := readInt64(r)
	if err != nil {
		return nil, plterrors.Wrap(err, "tree: reading t")
	}

	nodes := make([]Node, t)
	leaves := make(map[int]int)
	for i := range nodes {
		index, err := readInt64(r)
		if err != nil {
			return nil, plterrors.Wrap(err, "tree: reading node index")
		}
		label, err := readInt64(r)
		if err != nil {
			return nil, plterrors.Wrap(err, "tree: reading node label")
		}
		nodes[i] = Node{Index: int(index), Label: int(label), Parent: NoParent}
		if label >= 0 {
			leaves[int(label)] = int(index)
		}
	}

	root, err := readInt64(r)
	if err != nil {
		return nil, plterrors.Wrap(err, "tree: reading root")
	}

	for i := range nodes {
		parent, err := readInt64(r)
		if err != nil {
			return nil, plterrors.Wrap(err, "tree: reading parent")
		}
		if parent >= 0 {
			nodes[i].Parent = int(parent)
			nodes[parent].Children = append(nodes[parent].Children, i)
		}
	}

	return &Tree{Nodes: nodes, Root: int(root), Leaves: leaves, k: int(k)}, nil
}

func writeInt64(w io.Writer, v int64) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func readInt64(r io.Reader) (int64, error) {
	var v int64
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}
