package linecache

import (
	"fmt"
	"strings"

	"github.com/dshills/xiview/internal/logging"
	"github.com/dshills/xiview/internal/protocol"
	"github.com/dshills/xiview/internal/renderer/cursor"
	"github.com/dshills/xiview/internal/renderer/line"
)

// CaretPolicy selects when the interpreter nudges the engine's caret.
type CaretPolicy int

// MaxLines bounds the length of a cache built by one update.
const MaxLines = 1 << 24

const (
	// CaretBeforeLineBreak sends one move_left when the caret lands right
	// after a newline-class character, keeping it before the terminator.
	CaretBeforeLineBreak CaretPolicy = iota
	// CaretOff never corrects the caret.
	CaretOff
)

// String returns the config spelling of the policy.
func (p CaretPolicy) String() string {
	switch p {
	case CaretBeforeLineBreak:
		return "before-line-break"
	case CaretOff:
		return "off"
	default:
		return "unknown"
	}
}

// ParseCaretPolicy parses the config spelling of a policy.
func ParseCaretPolicy(s string) (CaretPolicy, error) {
	switch strings.ToLower(s) {
	case "", "before-line-break":
		return CaretBeforeLineBreak, nil
	case "off", "none":
		return CaretOff, nil
	default:
		return CaretBeforeLineBreak, fmt.Errorf("unknown caret policy %q", s)
	}
}

// Commander sends a parameterless edit command to the engine.
type Commander interface {
	Edit(method string) error
}

// Result is the outcome of applying one update.
type Result struct {
	// Snapshot is the new line cache.
	Snapshot *Snapshot

	// Cursor is the caret reported by the last cursor-bearing line.
	// It is only meaningful when HasCursor is true.
	Cursor    cursor.Position
	HasCursor bool

	// Corrected is true if a caret correction was sent.
	Corrected bool
}

// Interpreter rebuilds the line cache from update ops. It is not safe for
// concurrent use; the view loop owns it.
type Interpreter struct {
	cmd    Commander
	policy CaretPolicy
	logger *logging.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithCaretPolicy sets the caret correction policy.
func WithCaretPolicy(p CaretPolicy) Option {
	return func(in *Interpreter) {
		in.policy = p
	}
}

// WithLogger sets the interpreter's logger.
func WithLogger(l *logging.Logger) Option {
	return func(in *Interpreter) {
		in.logger = l
	}
}

// NewInterpreter creates an interpreter that sends caret corrections
// through cmd. cmd may be nil, which disables corrections.
func NewInterpreter(cmd Commander, opts ...Option) *Interpreter {
	in := &Interpreter{
		cmd:    cmd,
		policy: CaretBeforeLineBreak,
		logger: logging.Null(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// SetCaretPolicy changes the caret correction policy.
func (in *Interpreter) SetCaretPolicy(p CaretPolicy) {
	in.policy = p
}

// CaretPolicy returns the current caret correction policy.
func (in *Interpreter) CaretPolicy() CaretPolicy {
	return in.policy
}

// Apply runs ops against old and returns the next cache. On error no
// partial result is returned and old remains the current cache.
//
// When the resulting caret needs correcting, Apply sends move_left through
// the interpreter's Commander before returning.
func (in *Interpreter) Apply(old *Snapshot, ops []protocol.Op) (*Result, error) {
	if old == nil {
		old = Empty()
	}
	if len(ops) == 0 {
		return &Result{Snapshot: old}, nil
	}

	res := &Result{}
	src := old.Lines()
	out := make([]*line.Line, 0, len(src))
	si := 0

	for i, op := range ops {
		if op.N < 0 {
			return nil, &MalformedOpError{OpIndex: i, Op: op.Op, Reason: fmt.Sprintf("negative count %d", op.N)}
		}
		if op.Op.ConsumesSource() && op.N > len(src)-si {
			return nil, &DesyncError{OpIndex: i, Op: op.Op, N: op.N, SourceIndex: si, SourceLen: len(src)}
		}

		switch op.Op {
		case protocol.OpSkip:
			si += op.N

		case protocol.OpCopy:
			out = append(out, src[si:si+op.N]...)
			si += op.N

		case protocol.OpUpdate:
			if len(op.Lines) != op.N {
				return nil, &MalformedOpError{OpIndex: i, Op: op.Op,
					Reason: fmt.Sprintf("%d line records for n=%d", len(op.Lines), op.N)}
			}
			for j := 0; j < op.N; j++ {
				prev := src[si+j]
				rec := op.Lines[j]
				styles, err := line.DecodeStyles(rec.Styles)
				if err != nil {
					return nil, &MalformedOpError{OpIndex: i, Op: op.Op, Reason: "bad styles", Err: err}
				}
				out = append(out, prev.WithStyles(styles))
				if rec.HasCursor() {
					res.setCursor(len(out)-1, rec.Cursor[0])
				}
			}
			si += op.N

		case protocol.OpIns:
			if len(op.Lines) != op.N {
				return nil, &MalformedOpError{OpIndex: i, Op: op.Op,
					Reason: fmt.Sprintf("%d line records for n=%d", len(op.Lines), op.N)}
			}
			for _, rec := range op.Lines {
				styles, err := line.DecodeStyles(rec.Styles)
				if err != nil {
					return nil, &MalformedOpError{OpIndex: i, Op: op.Op, Reason: "bad styles", Err: err}
				}
				out = append(out, line.New(rec.Text, styles))
				if rec.HasCursor() {
					res.setCursor(len(out)-1, rec.Cursor[0])
				}
			}

		case protocol.OpInvalidate:
			if op.N > MaxLines-len(out) {
				return nil, &MalformedOpError{OpIndex: i, Op: op.Op,
					Reason: fmt.Sprintf("invalidate of %d lines exceeds %d", op.N, MaxLines)}
			}
			for j := 0; j < op.N; j++ {
				out = append(out, line.Placeholder())
			}

		default:
			return nil, &MalformedOpError{OpIndex: i, Op: op.Op, Reason: "unknown op"}
		}
	}

	res.Snapshot = NewSnapshot(out)
	in.correctCaret(res)
	return res, nil
}

func (r *Result) setCursor(lineIndex, charIndex int) {
	r.Cursor = cursor.Position{Line: lineIndex, Char: charIndex}
	r.HasCursor = true
}

// correctCaret sends move_left when the caret sits right after a line
// break in the raw text of its line.
func (in *Interpreter) correctCaret(res *Result) {
	if !res.HasCursor || in.policy != CaretBeforeLineBreak || in.cmd == nil {
		return
	}
	l := res.Snapshot.Line(res.Cursor.Line)
	if l == nil || !line.IsNextToLineBreak(l.Raw(), res.Cursor.Char, line.Backward) {
		return
	}

	if err := in.cmd.Edit(protocol.MoveLeft); err != nil {
		in.logger.Warn("caret correction failed: %v", err)
		return
	}
	res.Corrected = true
	in.logger.Debug("caret correction sent at %d:%d", res.Cursor.Line, res.Cursor.Char)
}
