package keymap

import (
	"github.com/dshills/xiview/internal/input/key"
	"github.com/dshills/xiview/internal/protocol"
)

// Left and Right are deliberately absent: the dispatcher handles them so
// the caret can cross line boundaries.
var defaultActions = []Action{
	{Modifier: key.ModNone, Key: key.KeyTab, Command: protocol.InsertTab},
	{Modifier: key.ModNone, Key: key.KeyEnter, Command: protocol.InsertNewline},

	{Modifier: key.ModCtrl, Key: key.KeyBackspace, Command: protocol.DeleteWordBackward},
	{Modifier: key.ModNone, Key: key.KeyBackspace, Command: protocol.DeleteBackward},
	{Modifier: key.ModCtrl, Key: key.KeyDelete, Command: protocol.DeleteWordForward},
	{Modifier: key.ModNone, Key: key.KeyDelete, Command: protocol.DeleteForward},

	{Modifier: key.ModShift, Key: key.KeyUp, Command: protocol.MoveUpAndModifySelection},
	{Modifier: key.ModNone, Key: key.KeyUp, Command: protocol.MoveUp},
	{Modifier: key.ModShift, Key: key.KeyDown, Command: protocol.MoveDownAndModifySelection},
	{Modifier: key.ModNone, Key: key.KeyDown, Command: protocol.MoveDown},

	{Modifier: key.ModCtrl, Key: key.KeyLeft, Command: protocol.MoveWordLeft},
	{Modifier: key.ModCtrl, Key: key.KeyRight, Command: protocol.MoveWordRight},

	{Modifier: key.ModCtrl, Key: key.KeyHome, Command: protocol.MoveToBeginningOfDocument},
	{Modifier: key.ModShift, Key: key.KeyHome, Command: protocol.MoveToLeftEndOfLineAndModifySelection},
	{Modifier: key.ModNone, Key: key.KeyHome, Command: protocol.MoveToLeftEndOfLine},
	{Modifier: key.ModCtrl, Key: key.KeyEnd, Command: protocol.MoveToEndOfDocument},
	{Modifier: key.ModShift, Key: key.KeyEnd, Command: protocol.MoveToRightEndOfLineAndModifySelection},
	{Modifier: key.ModNone, Key: key.KeyEnd, Command: protocol.MoveToRightEndOfLine},

	{Modifier: key.ModNone, Key: key.KeyPageUp, Command: protocol.ScrollPageUp},
	{Modifier: key.ModNone, Key: key.KeyPageDown, Command: protocol.ScrollPageDown},

	{Modifier: key.ModCtrl, Key: key.KeyRune, Rune: 'z', Command: protocol.Undo},
	{Modifier: key.ModCtrl, Key: key.KeyRune, Rune: 'y', Command: protocol.Redo},
	{Modifier: key.ModCtrl, Key: key.KeyRune, Rune: 'a', Command: protocol.SelectAll},
	{Modifier: key.ModCtrl, Key: key.KeyRune, Rune: 'k', Command: protocol.DeleteToEndOfParagraph},
	{Modifier: key.ModCtrl, Key: key.KeyRune, Rune: 'u', Command: protocol.DeleteToBeginningOfLine},
}

// DefaultTable returns the built-in edit command table.
func DefaultTable() *Table {
	t, err := NewTable(defaultActions...)
	if err != nil {
		panic("keymap: invalid default table: " + err.Error())
	}
	return t
}
