package protocol

import "encoding/json"

// Operations carried in the outgoing host envelope.
const (
	OperationNewView       = "new_view"
	OperationSave          = "save"
	OperationEdit          = "edit"
	OperationClientStarted = "client_started"
)

// Methods carried in incoming notifications.
const (
	MethodUpdate   = "update"
	MethodSetStyle = "set_style"
	MethodScrollTo = "scroll_to"
)

// Request is the outgoing host envelope. ID is set only when a reply is
// awaited.
type Request struct {
	ID        string `json:"id,omitempty"`
	Operation string `json:"operation"`
	ViewID    string `json:"view_id,omitempty"`
	FilePath  string `json:"file_path,omitempty"`
	ConfigDir string `json:"config_dir,omitempty"`
	Method    string `json:"method,omitempty"`
	Params    any    `json:"params,omitempty"`
}

// Reply answers a Request that carried an ID.
type Reply struct {
	ID     string `json:"id"`
	ViewID string `json:"view_id,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Notification is an incoming engine message relayed by the broker.
type Notification struct {
	Method     string          `json:"method"`
	Parameters json.RawMessage `json:"parameters"`
}

// CharsParams is the params shape of insert.
type CharsParams struct {
	Chars string `json:"chars"`
}

// FindParams is the params shape of find.
type FindParams struct {
	Chars         string `json:"chars"`
	CaseSensitive bool   `json:"case_sensitive"`
}

// OpKind names a delta operation.
type OpKind string

// Delta operation kinds.
const (
	OpSkip       OpKind = "skip"
	OpCopy       OpKind = "copy"
	OpUpdate     OpKind = "update"
	OpIns        OpKind = "ins"
	OpInvalidate OpKind = "invalidate"
)

// ConsumesSource returns true for ops that advance the source index.
func (k OpKind) ConsumesSource() bool {
	return k == OpSkip || k == OpCopy || k == OpUpdate
}

// Op is one delta operation of an update.
type Op struct {
	Op    OpKind       `json:"op"`
	N     int          `json:"n"`
	Lines []LineRecord `json:"lines,omitempty"`
}

// LineRecord is the engine's description of one line.
type LineRecord struct {
	Text   string `json:"text"`
	Cursor []int  `json:"cursor,omitempty"`
	Styles []int  `json:"styles,omitempty"`
}

// HasCursor returns true if the record carries cursor information.
func (r LineRecord) HasCursor() bool {
	return len(r.Cursor) > 0
}

// Update is the body of an update notification.
type Update struct {
	Pristine bool `json:"pristine"`
	Ops      []Op `json:"ops"`
}

// UpdateParams is the parameters object of an update notification.
type UpdateParams struct {
	ViewID string `json:"view_id"`
	Update Update `json:"update"`
}

// StyleParams is the parameters object of a set_style notification.
// Colors are ARGB packed into one integer.
type StyleParams struct {
	ID        int   `json:"id"`
	FgColor   int64 `json:"fg_color"`
	BgColor   int64 `json:"bg_color"`
	Weight    int   `json:"weight"`
	Italic    bool  `json:"italic"`
	Underline bool  `json:"underline"`
}

// ScrollToParams is the parameters object of a scroll_to notification.
type ScrollToParams struct {
	ViewID string `json:"view_id"`
	Line   int    `json:"line"`
	Col    int    `json:"col"`
}
