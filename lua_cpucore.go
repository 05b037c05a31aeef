// lua_cpucore.go - gopher-lua bindings for the coprocessor coordination core

package main

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/retroforge/ie-machine/cpucore"
)

// RegisterCPUCoreModule installs a "cpucore" module into L, giving Lua
// automation scripts a safe way to poke a coprocessor CPU by name
// without touching engine internals directly. mgr supplies both the
// coordinator and the name -> CPU resolution (via its registry
// snapshot), so scripts never see a *cpucore.CPU that has already been
// removed from the registry.
func RegisterCPUCoreModule(L *lua.LState, mgr *CoprocessorManager) {
	mod := L.NewTable()
	L.SetFuncs(mod, map[string]lua.LGFunction{
		"run_on_cpu":       luaRunOnCPU(mgr),
		"async_run_on_cpu": luaAsyncRunOnCPU(mgr),
	})
	L.SetGlobal("cpucore", mod)
}

func findCPUByName(mgr *CoprocessorManager, name string) *cpucore.CPU {
	for _, cpu := range mgr.coord.Snapshot() {
		if cpu.Name == name {
			return cpu
		}
	}
	return nil
}

// luaRunOnCPU implements cpucore.run_on_cpu(name, fn): blocks the Lua
// script's goroutine until fn has run on the named CPU's executor
// goroutine with the BQL held, then returns true, or false if no CPU
// with that name is currently registered.
func luaRunOnCPU(mgr *CoprocessorManager) lua.LGFunction {
	return func(L *lua.LState) int {
		name := L.CheckString(1)
		fn := L.CheckFunction(2)

		cpu := findCPUByName(mgr, name)
		if cpu == nil {
			L.Push(lua.LFalse)
			return 1
		}

		mgr.coord.RunOnCPU(nil, cpu, func(*cpucore.CPU, any) {
			if err := L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}); err != nil {
				fmt.Printf("cpucore.run_on_cpu: script error: %v\n", err)
			}
		}, nil)

		L.Push(lua.LTrue)
		return 1
	}
}

// luaAsyncRunOnCPU implements cpucore.async_run_on_cpu(name, fn):
// enqueues fn onto the named CPU's work queue and returns immediately.
// fn later runs on that CPU's own executor goroutine, not the scripting
// goroutine that called async_run_on_cpu - callers sharing one *lua.LState
// across CPUs must not schedule concurrently onto more than one CPU at
// a time, since a Lua state is not safe for concurrent use.
func luaAsyncRunOnCPU(mgr *CoprocessorManager) lua.LGFunction {
	return func(L *lua.LState) int {
		name := L.CheckString(1)
		fn := L.CheckFunction(2)

		cpu := findCPUByName(mgr, name)
		if cpu == nil {
			L.Push(lua.LFalse)
			return 1
		}

		mgr.coord.AsyncRunOnCPU(cpu, func(*cpucore.CPU, any) {
			if err := L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}); err != nil {
				fmt.Printf("cpucore.async_run_on_cpu: script error: %v\n", err)
			}
		}, nil)

		L.Push(lua.LTrue)
		return 1
	}
}
