package validate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultScriptTimeout bounds a single script validation.
const DefaultScriptTimeout = 100 * time.Millisecond

// ScriptFunc is the global a validation script must define.
const ScriptFunc = "validate"

// ErrScriptClosed is returned by a script validator after Close.
var ErrScriptClosed = errors.New("script validator closed")

// Script runs a Lua function as a validator.
//
// The chunk must define a global function validate(value) that returns
// true to accept, or false and an optional message to reject. Only the
// base, table, string and math libraries are available.
type Script struct {
	mu      sync.Mutex
	L       *lua.LState
	timeout time.Duration
	closed  bool
}

// Base library globals that reach the file system or compile new chunks.
var sandboxRemoved = []string{"dofile", "loadfile", "load", "loadstring"}

// Lua compiles src and returns a script validator.
func Lua(src string) (*Script, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	L.SetTop(0)
	for _, name := range sandboxRemoved {
		L.SetGlobal(name, lua.LNil)
	}

	s := &Script{L: L, timeout: DefaultScriptTimeout}
	if err := s.protect(func() error { return L.DoString(src) }); err != nil {
		L.Close()
		return nil, fmt.Errorf("load script: %w", err)
	}
	if fn := L.GetGlobal(ScriptFunc); fn.Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("load script: %q is not a function (got %s)", ScriptFunc, fn.Type())
	}
	return s, nil
}

// SetTimeout changes the per-call execution limit. Zero disables it.
func (s *Script) SetTimeout(d time.Duration) {
	s.mu.Lock()
	s.timeout = d
	s.mu.Unlock()
}

// Validate implements Validator.
func (s *Script) Validate(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrScriptClosed
	}

	if s.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.L.SetContext(ctx)
		defer s.L.RemoveContext()
	}

	top := s.L.GetTop()
	err := s.protect(func() error {
		return s.L.CallByParam(lua.P{
			Fn:      s.L.GetGlobal(ScriptFunc),
			NRet:    2,
			Protect: true,
		}, lua.LString(value))
	})
	if err != nil {
		s.L.SetTop(top)
		return fmt.Errorf("script: %w", err)
	}

	ok, msg := s.L.Get(-2), s.L.Get(-1)
	s.L.Pop(2)

	if lua.LVAsBool(ok) {
		return nil
	}
	if m, isStr := msg.(lua.LString); isStr && m != "" {
		return errors.New(string(m))
	}
	return errors.New("rejected by script")
}

// Close releases the Lua state.
func (s *Script) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.L.Close()
}

func (s *Script) protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}
