package scripting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/sasha-s/go-deadlock"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/battlecore/internal/data"
	"github.com/l1jgo/battlecore/internal/world"
)

// 腳本缺漏或出錯時的保底值
const (
	fallbackDamage     = 1
	fallbackExperience = 0
)

// Engine wraps a single gopher-lua VM holding the combat formulas.
// Calls are serialized on mu, so one Engine can back every session.
type Engine struct {
	mu  deadlock.Mutex
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(2))

	e := &Engine{vm: vm, log: log}

	// core 先載入，公式可以依賴其中的共用函式
	for _, sub := range []string{"core", "combat"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
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

// HasFunction reports whether a global Lua function is defined.
func (e *Engine) HasFunction(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// ==================== DamageService ====================

// PhysicalDamage calls Lua calc_physical_damage(ctx). skill is nil for a
// plain swing.
func (e *Engine) PhysicalDamage(attacker, target *world.Combatant, skill *data.SkillDef) uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	ctx := e.combatTable(attacker, target, skill)
	return toDamage(e.callNumber("calc_physical_damage", fallbackDamage, ctx))
}

// SkillDamage calls Lua calc_skill_damage(ctx). variance asks the script to
// roll its random spread.
func (e *Engine) SkillDamage(attacker, target *world.Combatant, skill *data.SkillDef, variance bool) uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	ctx := e.combatTable(attacker, target, skill)
	ctx.RawSetString("variance", lua.LBool(variance))
	return toDamage(e.callNumber("calc_skill_damage", fallbackDamage, ctx))
}

// BowDamage calls Lua calc_bow_damage(ctx).
func (e *Engine) BowDamage(attacker, target *world.Combatant, skill *data.SkillDef) uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	ctx := e.combatTable(attacker, target, skill)
	return toDamage(e.callNumber("calc_bow_damage", fallbackDamage, ctx))
}

// ExperienceGain calls Lua calc_experience_gain(ctx) for damage dealt.
func (e *Engine) ExperienceGain(attacker, target *world.Combatant, damage uint32) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	ctx := e.combatTable(attacker, target, nil)
	ctx.RawSetString("damage", lua.LNumber(damage))
	v := e.callNumber("calc_experience_gain", fallbackExperience, ctx)
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return uint64(v)
}

// ==================== 資料打包 ====================

func (e *Engine) combatTable(attacker, target *world.Combatant, skill *data.SkillDef) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("attacker", e.combatantTable(attacker))
	t.RawSetString("target", e.combatantTable(target))
	if skill != nil {
		sk := e.vm.NewTable()
		sk.RawSetString("id", lua.LNumber(skill.ID))
		sk.RawSetString("level", lua.LNumber(skill.Level))
		sk.RawSetString("sort", lua.LString(skill.Sort.String()))
		sk.RawSetString("power", lua.LNumber(skill.Power))
		sk.RawSetString("percent", lua.LNumber(skill.Percent))
		sk.RawSetString("weapon_subtype", lua.LNumber(skill.WeaponSubtype))
		t.RawSetString("skill", sk)
	}
	return t
}

func (e *Engine) combatantTable(c *world.Combatant) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("id", lua.LNumber(c.ID))
	t.RawSetString("kind", lua.LString(c.Kind.String()))
	t.RawSetString("level", lua.LNumber(c.Level))
	t.RawSetString("life", lua.LNumber(c.Life()))
	t.RawSetString("max_life", lua.LNumber(c.MaxLife()))
	t.RawSetString("mana", lua.LNumber(c.Mana()))
	t.RawSetString("weapon_type", lua.LNumber(c.WeaponType()))
	t.RawSetString("intensify", lua.LBool(c.HasEffect(world.StatusIntensify)))
	if sh, ok := c.Effect(world.StatusShield); ok {
		t.RawSetString("shield", lua.LNumber(sh.Power))
	} else {
		t.RawSetString("shield", lua.LNumber(0))
	}
	if c.Player != nil {
		t.RawSetString("reborn", lua.LNumber(c.Player.RebornCount))
	}
	return t
}

// --- Lua helpers ---

func toDamage(v float64) uint32 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(v)
}

// callNumber calls a Lua function and returns its numeric result, or
// fallback when the function is missing, fails or returns a non-number.
// Caller holds mu.
func (e *Engine) callNumber(name string, fallback float64, args ...lua.LValue) float64 {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Error("lua function not found", zap.String("name", name))
		return fallback
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return fallback
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua function returned non-number",
			zap.String("func", name), zap.String("type", result.Type().String()))
		return fallback
	}
	return float64(n)
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vm.Close()
}
