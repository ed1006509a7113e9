package keymap

import (
	"context"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/xiview/internal/input/key"
)

// DefaultScriptTimeout bounds the run time of a key binding script.
const DefaultScriptTimeout = 2 * time.Second

// ScriptError reports a failure while running a key binding script.
type ScriptError struct {
	Path string
	Err  error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("keymap script %s: %v", e.Path, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// LoadScript runs the Lua script at path and returns the bindings it
// declares. The script calls bind(spec, command) once per binding, e.g.
//
//	bind("Ctrl+d", "delete_forward")
//	bind("Alt+Up", "move_up_and_modify_selection")
//
// Only the base, table, string and math libraries are available.
func LoadScript(ctx context.Context, path string) ([]Action, error) {
	return runScript(ctx, path, func(L *lua.LState) error { return L.DoFile(path) })
}

// LoadString is LoadScript for in-memory source. name labels errors.
func LoadString(ctx context.Context, name, src string) ([]Action, error) {
	return runScript(ctx, name, func(L *lua.LState) error { return L.DoString(src) })
}

func runScript(ctx context.Context, name string, run func(*lua.LState) error) (actions []Action, err error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultScriptTimeout)
		defer cancel()
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	L.SetContext(ctx)

	L.SetGlobal("bind", L.NewFunction(func(L *lua.LState) int {
		spec := L.CheckString(1)
		command := L.CheckString(2)
		ev, perr := key.Parse(spec)
		if perr != nil {
			L.RaiseError("bind(%q): %v", spec, perr)
			return 0
		}
		actions = append(actions, Action{
			Modifier: ev.Modifiers,
			Key:      ev.Key,
			Rune:     ev.Rune,
			Command:  command,
		})
		return 0
	}))

	defer func() {
		if r := recover(); r != nil {
			actions, err = nil, &ScriptError{Path: name, Err: fmt.Errorf("lua panic: %v", r)}
		}
	}()
	if rerr := run(L); rerr != nil {
		return nil, &ScriptError{Path: name, Err: rerr}
	}
	if verr := Validate(actions); verr != nil {
		return nil, &ScriptError{Path: name, Err: verr}
	}
	return actions, nil
}
