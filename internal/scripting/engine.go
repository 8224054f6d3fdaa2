package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/combatcore/internal/creature"
)

// Engine wraps a single gopher-lua VM for combat formulas.
// Single-goroutine access only (game loop).
type Engine struct {
	vm       *lua.LState
	log      *zap.Logger
	fallback creature.DefaultFormula
}

var _ creature.Formula = (*Engine)(nil)

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	// Load core scripts first, then combat formulas
	for _, sub := range []string{"core", "combat"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// NewEngineFromSource creates an engine from an in-memory chunk.
func NewEngineFromSource(src string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	if err := vm.DoString(src); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load script: %w", err)
	}
	return &Engine{vm: vm, log: log}, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// HitDamage calls the Lua calc_hit_damage function. Falls back to the built-in
// formula when the script is missing or fails.
func (e *Engine) HitDamage(base, roll float64) float64 {
	v, ok := e.callNumberFunc("calc_hit_damage", base, roll)
	if !ok {
		return e.fallback.HitDamage(base, roll)
	}
	if v < 0 {
		return 0
	}
	return v
}

// Mitigation calls the Lua calc_mitigation function.
func (e *Engine) Mitigation(armor, factor float64) float64 {
	v, ok := e.callNumberFunc("calc_mitigation", armor, factor)
	if !ok {
		return e.fallback.Mitigation(armor, factor)
	}
	return v
}

// RegenAmount calls the Lua calc_regen function with the configured regen per
// interval and the creature's health. Returns perInterval when no script
// handles it.
func (e *Engine) RegenAmount(perInterval, health, maxHealth float64) float64 {
	v, ok := e.callNumberFunc("calc_regen", perInterval, health, maxHealth)
	if !ok {
		return perInterval
	}
	return v
}

// Has reports whether a global Lua function is defined.
func (e *Engine) Has(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// --- Lua helpers ---

// callNumberFunc calls a Lua function with number args and returns a number
// result. ok is false when the function is missing, errors or returns a
// non-number.
func (e *Engine) callNumberFunc(name string, args ...float64) (float64, bool) {
	fn, isFn := e.vm.GetGlobal(name).(*lua.LFunction)
	if !isFn {
		return 0, false
	}

	lArgs := make([]lua.LValue, len(args))
	for i, a := range args {
		lArgs[i] = lua.LNumber(a)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lArgs...); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return 0, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	n, isNum := result.(lua.LNumber)
	if !isNum {
		e.log.Error("lua function returned non-number", zap.String("func", name))
		return 0, false
	}
	return float64(n), true
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
