package replay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
)

const (
	defaultLuaTimeout = time.Second
	luaRegistryMax    = 4096
)

// LuaNormalizer rewrites command output with a user snippet of the form
// `return function(text) ... end`. Each call runs in a fresh state with only
// the base, string, table and math libraries loaded.
type LuaNormalizer struct {
	code    string
	timeout time.Duration
}

// NewLuaNormalizer validates code by running it once on an empty string.
func NewLuaNormalizer(code string) (*LuaNormalizer, error) {
	n := &LuaNormalizer{code: code, timeout: defaultLuaTimeout}
	if _, err := n.Apply(context.Background(), ""); err != nil {
		return nil, fmt.Errorf("invalid output.normalize: %w", err)
	}
	return n, nil
}

// Apply runs the snippet's function on text.
func (n *LuaNormalizer) Apply(ctx context.Context, text string) (string, error) {
	L := newNormalizerState()
	defer L.Close()

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	L.SetContext(ctx)

	chunk, err := L.LoadString(n.code)
	if err != nil {
		return "", err
	}
	L.Push(chunk)
	if err := L.PCall(0, 1, nil); err != nil {
		return "", luaError(err)
	}
	fn, ok := L.Get(-1).(*lua.LFunction)
	L.Pop(1)
	if !ok {
		return "", errors.New("snippet must return a function(text)")
	}
	L.Push(fn)
	L.Push(lua.LString(text))
	if err := L.PCall(1, 1, nil); err != nil {
		return "", luaError(err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	s, ok := ret.(lua.LString)
	if !ok {
		return "", fmt.Errorf("normalizer returned %s, expected string", ret.Type())
	}
	return string(s), nil
}

func newNormalizerState() *lua.LState {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:     true,
		RegistrySize:     256,
		RegistryMaxSize:  luaRegistryMax,
		RegistryGrowStep: 0,
	})
	openLib := func(name string, f lua.LGFunction) {
		L.Push(L.NewFunction(f))
		L.Push(lua.LString(name))
		L.Call(1, 0)
	}
	openLib(lua.BaseLibName, lua.OpenBase)
	openLib(lua.StringLibName, lua.OpenString)
	openLib(lua.TabLibName, lua.OpenTable)
	openLib(lua.MathLibName, lua.OpenMath)
	// The base library can reach the host filesystem through these.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

func luaError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "deadline") || strings.Contains(msg, "context canceled") {
		return errors.New("sandbox timeout")
	}
	if strings.Contains(msg, "registry overflow") {
		return errors.New("sandbox memory limit")
	}
	return err
}
