package backend

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/xiview/internal/input/key"
	"github.com/dshills/xiview/internal/input/mouse"
	"github.com/dshills/xiview/internal/renderer/core"
	"github.com/dshills/xiview/internal/renderer/layout"
)

// Terminal implements Backend using tcell for terminal output.
type Terminal struct {
	screen tcell.Screen
	cellW  float64
	cellH  float64
	mu     sync.Mutex

	// buttons is the primary button state of the last mouse event; tcell
	// reports button state rather than press and release.
	buttons tcell.ButtonMask
}

// NewTerminal creates a terminal backend for the controlling terminal.
// cellW and cellH are the layout size of one cell.
func NewTerminal(cellW, cellH float64) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTerminalWithScreen(screen, cellW, cellH), nil
}

// NewTerminalWithScreen wraps an existing tcell screen.
func NewTerminalWithScreen(screen tcell.Screen, cellW, cellH float64) *Terminal {
	if cellW <= 0 {
		cellW = 1
	}
	if cellH <= 0 {
		cellH = 1
	}
	return &Terminal{screen: screen, cellW: cellW, cellH: cellH}
}

func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnableMouse()
	t.screen.Clear()
	return nil
}

func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.DisableMouse()
	t.screen.Fini()
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Size()
}

func (t *Terminal) SetCell(x, y int, cell core.Cell) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.SetContent(x, y, cell.Rune, cell.Combining, convertStyle(cell.Style))
}

func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
}

func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Show()
}

func (t *Terminal) ShowCursor(x, y int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.ShowCursor(x, y)
}

func (t *Terminal) HideCursor() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.HideCursor()
}

func (t *Terminal) PollEvent() Event {
	ev := t.screen.PollEvent()
	if ev == nil {
		return Event{Type: EventClosed}
	}
	return t.convert(ev)
}

func (t *Terminal) Interrupt(data any) {
	_ = t.screen.PostEvent(tcell.NewEventInterrupt(data))
}

// convert converts tcell events to our Event type.
func (t *Terminal) convert(ev tcell.Event) Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return Event{Type: EventKey, Key: convertKey(e)}

	case *tcell.EventMouse:
		return Event{Type: EventMouse, Mouse: t.convertMouse(e)}

	case *tcell.EventResize:
		w, h := e.Size()
		return Event{Type: EventResize, Width: w, Height: h}

	case *tcell.EventInterrupt:
		return Event{Type: EventInterrupt, Data: e.Data()}

	default:
		return Event{Type: EventNone}
	}
}

// convertMouse derives the press, move or release action from the change
// in button state and converts the cell position to layout pixels.
func (t *Terminal) convertMouse(e *tcell.EventMouse) mouse.Event {
	x, y := e.Position()
	btns := e.Buttons()
	ev := mouse.Event{
		Position:  layout.Point{X: float64(x) * t.cellW, Y: float64(y) * t.cellH},
		Modifiers: convertMod(e.Modifiers()),
		Timestamp: e.When(),
	}

	switch {
	case btns&tcell.WheelUp != 0:
		ev.Button, ev.Action = mouse.ButtonWheelUp, mouse.ActionPress
		return ev
	case btns&tcell.WheelDown != 0:
		ev.Button, ev.Action = mouse.ButtonWheelDown, mouse.ActionPress
		return ev
	}

	primary := btns & (tcell.Button1 | tcell.Button2 | tcell.Button3)
	switch {
	case primary != 0 && t.buttons == 0:
		ev.Button, ev.Action = convertButton(primary), mouse.ActionPress
	case primary == 0 && t.buttons != 0:
		ev.Button, ev.Action = convertButton(t.buttons), mouse.ActionRelease
	default:
		ev.Button, ev.Action = convertButton(primary), mouse.ActionMove
	}
	t.buttons = primary
	return ev
}

func convertButton(b tcell.ButtonMask) mouse.Button {
	switch {
	case b&tcell.Button1 != 0:
		return mouse.ButtonLeft
	case b&tcell.Button2 != 0:
		return mouse.ButtonRight
	case b&tcell.Button3 != 0:
		return mouse.ButtonMiddle
	default:
		return mouse.ButtonNone
	}
}

// convertKey converts a tcell key event. Control characters are reported
// as the letter plus ModCtrl so key bindings can name them as "Ctrl+z".
func convertKey(e *tcell.EventKey) key.Event {
	ev := key.Event{Modifiers: convertMod(e.Modifiers()), Timestamp: e.When()}

	switch k := e.Key(); {
	case k == tcell.KeyRune:
		ev.Key, ev.Rune = key.KeyRune, e.Rune()
	case k == tcell.KeyBackspace || k == tcell.KeyBackspace2:
		ev.Key = key.KeyBackspace
	case k == tcell.KeyTab:
		ev.Key = key.KeyTab
	case k == tcell.KeyBacktab:
		ev.Key = key.KeyTab
		ev.Modifiers |= key.ModShift
	case k == tcell.KeyEnter:
		ev.Key = key.KeyEnter
	case k == tcell.KeyEscape:
		ev.Key = key.KeyEscape
	case k == tcell.KeyCtrlSpace:
		ev.Key, ev.Rune = key.KeyRune, ' '
		ev.Modifiers |= key.ModCtrl
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		ev.Key, ev.Rune = key.KeyRune, 'a'+rune(k-tcell.KeyCtrlA)
		ev.Modifiers |= key.ModCtrl
	default:
		ev.Key = specialKeys[k]
	}
	return ev
}

var specialKeys = map[tcell.Key]key.Key{
	tcell.KeyInsert: key.KeyInsert,
	tcell.KeyDelete: key.KeyDelete,
	tcell.KeyHome:   key.KeyHome,
	tcell.KeyEnd:    key.KeyEnd,
	tcell.KeyPgUp:   key.KeyPageUp,
	tcell.KeyPgDn:   key.KeyPageDown,
	tcell.KeyUp:     key.KeyUp,
	tcell.KeyDown:   key.KeyDown,
	tcell.KeyLeft:   key.KeyLeft,
	tcell.KeyRight:  key.KeyRight,
	tcell.KeyF1:     key.KeyF1,
	tcell.KeyF2:     key.KeyF2,
	tcell.KeyF3:     key.KeyF3,
	tcell.KeyF4:     key.KeyF4,
	tcell.KeyF5:     key.KeyF5,
	tcell.KeyF6:     key.KeyF6,
	tcell.KeyF7:     key.KeyF7,
	tcell.KeyF8:     key.KeyF8,
	tcell.KeyF9:     key.KeyF9,
	tcell.KeyF10:    key.KeyF10,
	tcell.KeyF11:    key.KeyF11,
	tcell.KeyF12:    key.KeyF12,
}

func convertMod(m tcell.ModMask) key.Modifier {
	var mods key.Modifier
	if m&tcell.ModShift != 0 {
		mods |= key.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		mods |= key.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		mods |= key.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		mods |= key.ModMeta
	}
	return mods
}

// convertStyle converts our Style to tcell.Style.
func convertStyle(s core.Style) tcell.Style {
	style := tcell.StyleDefault

	if !s.Foreground.IsDefault() {
		style = style.Foreground(tcell.NewRGBColor(int32(s.Foreground.R), int32(s.Foreground.G), int32(s.Foreground.B)))
	}
	if !s.Background.IsDefault() {
		style = style.Background(tcell.NewRGBColor(int32(s.Background.R), int32(s.Background.G), int32(s.Background.B)))
	}

	if s.Attributes.Has(core.AttrBold) {
		style = style.Bold(true)
	}
	if s.Attributes.Has(core.AttrDim) {
		style = style.Dim(true)
	}
	if s.Attributes.Has(core.AttrItalic) {
		style = style.Italic(true)
	}
	if s.Attributes.Has(core.AttrUnderline) {
		style = style.Underline(true)
	}
	if s.Attributes.Has(core.AttrReverse) {
		style = style.Reverse(true)
	}
	return style
}
