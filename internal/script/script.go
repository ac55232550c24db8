// Package script runs Lua control scripts against the generator. A script sees
// start(), stop(), freq(hz), amp(a), quit() and sleep(ms) as globals.
package script

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/RenatoCabral2022/WaveStream/internal/control"
	"github.com/RenatoCabral2022/WaveStream/internal/protocol"
)

// Run executes source until it returns, fails, or ctx is cancelled.
func Run(ctx context.Context, sender control.Sender, source string) error {
	L := newState(ctx, sender)
	defer L.Close()

	if err := L.DoString(source); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("lua: %w", err)
	}
	return nil
}

// RunFile reads a script from path and runs it.
func RunFile(ctx context.Context, sender control.Sender, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	return Run(ctx, sender, string(src))
}

func newState(ctx context.Context, sender control.Sender) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	// The base library can still reach the filesystem.
	for _, name := range []string{"dofile", "loadfile", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetContext(ctx)

	send := func(L *lua.LState, cmd protocol.Command) {
		if err := sender.Send(cmd); err != nil {
			L.RaiseError("send %s: %v", cmd.Type, err)
		}
	}
	noArg := func(t protocol.CommandType) lua.LGFunction {
		return func(L *lua.LState) int {
			send(L, protocol.Command{Type: t})
			return 0
		}
	}
	withValue := func(t protocol.CommandType) lua.LGFunction {
		return func(L *lua.LState) int {
			v := float64(L.CheckNumber(1))
			if math.IsNaN(v) || math.IsInf(v, 0) {
				L.ArgError(1, "value must be finite")
			}
			send(L, protocol.Command{Type: t, Value: v})
			return 0
		}
	}

	L.SetGlobal("start", L.NewFunction(noArg(protocol.CmdStart)))
	L.SetGlobal("stop", L.NewFunction(noArg(protocol.CmdStop)))
	L.SetGlobal("quit", L.NewFunction(noArg(protocol.CmdQuit)))
	L.SetGlobal("freq", L.NewFunction(withValue(protocol.CmdSetFreq)))
	L.SetGlobal("amp", L.NewFunction(withValue(protocol.CmdSetAmp)))
	L.SetGlobal("sleep", L.NewFunction(func(L *lua.LState) int {
		ms := L.CheckNumber(1)
		timer := time.NewTimer(time.Duration(float64(ms) * float64(time.Millisecond)))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			L.RaiseError("%v", ctx.Err())
		case <-timer.C:
		}
		return 0
	}))
	return L
}
