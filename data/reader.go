// Package data implements the sparse text input reader referenced by spec
// §6: each row is a whitespace-delimited stream of label ids terminated by
// the sentinel -1, followed by "index:value" feature pairs terminated by
// the same sentinel. Parsing this wire format is explicitly out of the
// core's scope (spec §1); this reader is the minimal external collaborator
// the core's interfaces assume, added so the CLI in cmd/plt is runnable
// end to end.
package data

import (
	"bufio"
	"encoding/gob"
	"io"
	"strconv"
	"strings"

	"github.com/gopxml/plt/core/weight"
	plterrors "github.com/gopxml/plt/pkg/errors"
)

// Row is one training or test example.
type Row struct {
	Labels   []int
	Features []weight.Feature
}

// sentinel terminates both the label and feature sequences of a row.
const sentinel = "-1"

// Reader reads Rows from the sparse text format token by token, so row
// boundaries never need to align with line boundaries.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader wraps r as a Reader.
func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Split(bufio.ScanWords)
	s.Buffer(make([]byte, 1024*1024), 1024*1024)
	return &Reader{scanner: s}
}

// ReadRow reads the next row, returning io.EOF once the stream is
// exhausted between rows.
func (rd *Reader) ReadRow() (Row, error) {
	var row Row

	tok, ok := rd.next()
	if !ok {
		return Row{}, io.EOF
	}
	for {
		if tok == sentinel {
			break
		}
		label, err := strconv.Atoi(tok)
		if err != nil {
			return Row{}, plterrors.Wrapf(err, "data: parsing label %q", tok)
		}
		row.Labels = append(row.Labels, label)

		tok, ok = rd.next()
		if !ok {
			return Row{}, plterrors.New("data: truncated label sequence, missing -1 terminator")
		}
	}

	for {
		tok, ok = rd.next()
		if !ok {
			return Row{}, plterrors.New("data: truncated feature sequence, missing -1 terminator")
		}
		if tok == sentinel {
			break
		}
		idx, val, err := parsePair(tok)
		if err != nil {
			return Row{}, err
		}
		row.Features = append(row.Features, weight.Feature{Index: idx, Value: val})
	}

	return row, nil
}

func (rd *Reader) next() (string, bool) {
	if !rd.scanner.Scan() {
		return "", false
	}
	return rd.scanner.Text(), true
}

func parsePair(tok string) (int, float64, error) {
	parts := strings.SplitN(tok, ":", 2)
	if len(parts) != 2 {
		return 0, 0, plterrors.Newf("data: malformed feature pair %q, want index:value", tok)
	}
	idx, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, plterrors.Wrapf(err, "data: parsing feature index %q", parts[0])
	}
	val, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, plterrors.Wrapf(err, "data: parsing feature value %q", parts[1])
	}
	return idx, val, nil
}

// State is the reader's persisted summary of one pass over an input file
// (the "data_reader.bin" artifact of spec §6).
type State struct {
	NumRows      int
	NumFeatures  int
}

// SaveState gob-encodes s to w.
func SaveState(w io.Writer, s State) error {
	if err := gob.NewEncoder(w).Encode(s); err != nil {
		return plterrors.Wrap(err, "data: encoding reader state")
	}
	return nil
}

// LoadState decodes a State previously written by SaveState.
func LoadState(r io.Reader) (State, error) {
	var s State
	if err := gob.NewDecoder(r).Decode(&s); err != nil {
		return State{}, plterrors.Wrap(err, "data: decoding reader state")
	}
	return s, nil
}

// ReadAll reads every row until EOF.
func ReadAll(r io.Reader) ([]Row, error) {
	rd := NewReader(r)
	var rows []Row
	for {
		row, err := rd.ReadRow()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}
