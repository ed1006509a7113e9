// Package linecache holds the client's materialized copy of the document's
// lines and the interpreter that rebuilds it from engine update ops.
//
// A Snapshot's line list, text and styles are never modified after it is
// published. The view loop builds the next snapshot with an Interpreter and
// publishes it through a Store; render and input code load the current
// snapshot without locking. Layouts are the one exception: the view loop
// attaches them to visible lines after publication, and each line stores
// its layout atomically.
package linecache

import (
	"sync/atomic"

	"github.com/dshills/xiview/internal/renderer/layout"
	"github.com/dshills/xiview/internal/renderer/line"
)

// Snapshot is an immutable ordered list of lines. Index i is document line i
// as of the update that produced the snapshot.
type Snapshot struct {
	lines []*line.Line
}

var emptySnapshot = &Snapshot{}

// Empty returns the empty snapshot.
func Empty() *Snapshot {
	return emptySnapshot
}

// NewSnapshot creates a snapshot that takes ownership of lines.
func NewSnapshot(lines []*line.Line) *Snapshot {
	if len(lines) == 0 {
		return emptySnapshot
	}
	return &Snapshot{lines: lines}
}

// Len returns the number of lines.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.lines)
}

// Line returns line i, or nil when i is out of range.
func (s *Snapshot) Line(i int) *line.Line {
	if s == nil || i < 0 || i >= len(s.lines) {
		return nil
	}
	return s.lines[i]
}

// Lines returns the backing slice. Callers must not modify it.
func (s *Snapshot) Lines() []*line.Line {
	if s == nil {
		return nil
	}
	return s.lines
}

// Texts returns the displayed text of every line.
func (s *Snapshot) Texts() []string {
	out := make([]string, s.Len())
	for i, l := range s.Lines() {
		out[i] = l.Text()
	}
	return out
}

// Range returns lines first through last inclusive, clamped to the snapshot.
func (s *Snapshot) Range(first, last int) []*line.Line {
	n := s.Len()
	if n == 0 {
		return nil
	}
	first = max(first, 0)
	last = min(last, n-1)
	if first > last {
		return nil
	}
	return s.lines[first : last+1]
}

// Invalid returns the first and last placeholder lines within first..last.
// ok is false when every line in the range is known.
func (s *Snapshot) Invalid(first, last int) (lo, hi int, ok bool) {
	lo, hi = -1, -1
	first = max(first, 0)
	for i := first; i <= last && i < s.Len(); i++ {
		if s.lines[i].Valid() {
			continue
		}
		if lo < 0 {
			lo = i
		}
		hi = i
	}
	return lo, hi, lo >= 0
}

// Shape attaches layouts to the lines in first..last that lack one. Only the
// view loop shapes; readers on other goroutines may call Layout at any time.
func (s *Snapshot) Shape(e *layout.Engine, first, last int) {
	for _, l := range s.Range(first, last) {
		l.Shape(e)
	}
}

// Store publishes the current snapshot to concurrent readers.
type Store struct {
	current atomic.Pointer[Snapshot]
	version atomic.Uint64
}

// NewStore returns a store holding the empty snapshot.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(emptySnapshot)
	return s
}

// Load returns the current snapshot.
func (s *Store) Load() *Snapshot {
	return s.current.Load()
}

// Publish replaces the current snapshot.
func (s *Store) Publish(snap *Snapshot) {
	if snap == nil {
		snap = emptySnapshot
	}
	s.current.Store(snap)
	s.version.Add(1)
}

// Version returns the number of snapshots published so far.
func (s *Store) Version() uint64 {
	return s.version.Load()
}
