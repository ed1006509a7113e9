// Package statusline renders the bottom status line of a document view.
package statusline

import (
	"fmt"

	"github.com/dshills/xiview/internal/renderer/backend"
	"github.com/dshills/xiview/internal/renderer/core"
)

// MessageType indicates the type of status message.
type MessageType int

const (
	MessageNone MessageType = iota
	MessageInfo
	MessageWarning
	MessageError
)

// Styles used by the status line.
var (
	BarStyle     = core.DefaultStyle().WithAttributes(core.AttrReverse)
	StateStyle   = core.DefaultStyle().WithAttributes(core.AttrReverse | core.AttrBold)
	WarningStyle = core.DefaultStyle().WithForeground(core.ColorFromRGB(230, 190, 40))
	ErrorStyle   = core.DefaultStyle().WithForeground(core.ColorFromRGB(220, 50, 47)).WithAttributes(core.AttrBold)
)

// StatusLine holds what the status line shows. It is not safe for
// concurrent use; the view loop owns it.
type StatusLine struct {
	state      string
	filename   string
	line       int
	col        int
	totalLines int
	percent    int

	message     string
	messageType MessageType
}

// New creates a status line.
func New() *StatusLine {
	return &StatusLine{state: "connecting"}
}

// SetState updates the connection state label, e.g. "connected".
func (s *StatusLine) SetState(state string) {
	s.state = state
}

// State returns the connection state label.
func (s *StatusLine) State() string {
	return s.state
}

// SetFilename updates the displayed filename.
func (s *StatusLine) SetFilename(filename string) {
	s.filename = filename
}

// SetPosition updates the caret position (0-based).
func (s *StatusLine) SetPosition(line, col int) {
	s.line = line
	s.col = col
}

// SetTotalLines updates the line count of the cache.
func (s *StatusLine) SetTotalLines(total int) {
	s.totalLines = total
}

// SetScrollPercent updates the scroll percentage.
func (s *StatusLine) SetScrollPercent(percent int) {
	s.percent = percent
}

// SetMessage displays a status message in place of the position info.
func (s *StatusLine) SetMessage(msg string, msgType MessageType) {
	s.message = msg
	s.messageType = msgType
}

// ClearMessage clears the status message.
func (s *StatusLine) ClearMessage() {
	s.message = ""
	s.messageType = MessageNone
}

// Message returns the current message and its type.
func (s *StatusLine) Message() (string, MessageType) {
	return s.message, s.messageType
}

// Render draws the status line into row of buf.
func (s *StatusLine) Render(buf *backend.ScreenBuffer, row int) {
	width, _ := buf.Size()

	if s.message != "" {
		style := core.DefaultStyle()
		switch s.messageType {
		case MessageWarning:
			style = WarningStyle
		case MessageError:
			style = ErrorStyle
		}
		buf.FillRow(0, row, style)
		buf.SetString(0, row, s.message, style)
		return
	}

	buf.FillRow(0, row, BarStyle)
	col := buf.SetString(0, row, " "+s.state+" ", StateStyle)

	filename := s.filename
	if filename == "" {
		filename = "[No Name]"
	}
	info := s.formatPosition()
	room := width - len(info) - 1 - col - 1
	if room > 0 {
		buf.SetString(col+1, row, truncate(filename, room), BarStyle)
	}
	if start := width - len(info) - 1; start > col {
		buf.SetString(start, row, info, BarStyle)
	}
}

// formatPosition formats the right side: "Ln 12, Col 3 | 40%".
func (s *StatusLine) formatPosition() string {
	result := fmt.Sprintf("Ln %d, Col %d", s.line+1, s.col+1)
	if s.totalLines > 0 {
		switch {
		case s.percent <= 0:
			result += " | Top"
		case s.percent >= 100:
			result += " | Bot"
		default:
			result += fmt.Sprintf(" | %d%%", s.percent)
		}
	}
	return result
}

// truncate shortens s to at most n bytes, keeping the tail of long paths.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[len(s)-n:]
	}
	return "<" + s[len(s)-n+1:]
}
