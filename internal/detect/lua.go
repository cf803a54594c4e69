package detect

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/blockpad/internal/lang"
)

// DefaultScript is a line-pattern heuristic used when no script is
// configured. classify returns a tag, a relevance in [0, 1] and whether
// the content is illegal.
const DefaultScript = `
local rules = {
  {"python", {"^%s*def%s+[%w_]+%s*%(", "^%s*import%s+[%w_.]+%s*$", "^%s*from%s+[%w_.]+%s+import%s", "^%s*class%s+[%w_]+.*:%s*$", "^%s*elif%s"}},
  {"go", {"^%s*package%s+[%w_]+%s*$", "^%s*func%s", ":="}},
  {"javascript", {"^%s*const%s+[%w_]+%s*=", "^%s*function%s*[%w_]*%s*%(", "=>", "console%.log"}},
  {"sql", {"^%s*[Ss][Ee][Ll][Ee][Cc][Tt]%s", "^%s*[Ii][Nn][Ss][Ee][Rr][Tt]%s+[Ii][Nn][Tt][Oo]", "^%s*[Cc][Rr][Ee][Aa][Tt][Ee]%s+[Tt][Aa][Bb][Ll][Ee]"}},
  {"html", {"<html", "<div", "</%w+>"}},
  {"shell", {"^#!/bin/", "^%s*echo%s", "%$%(", "^%s*export%s+[%w_]+="}},
  {"rust", {"^%s*fn%s+[%w_]+", "^%s*let%s+mut%s", "^%s*use%s+[%w_:]+;"}},
  {"markdown", {"^#+%s", "^%s*[-*]%s", "%[.-%]%(.-%)"}},
}

function classify(content)
  local scores, lines = {}, 0
  for line in (content .. "\n"):gmatch("(.-)\n") do
    if line:find("%S") then
      lines = lines + 1
      for _, rule in ipairs(rules) do
        for _, pat in ipairs(rule[2]) do
          if line:find(pat) then
            scores[rule[1]] = (scores[rule[1]] or 0) + 1
            break
          end
        end
      end
    end
  end

  local best, score = "text", 0
  for _, rule in ipairs(rules) do
    local n = scores[rule[1]] or 0
    if n > score then
      best, score = rule[1], n
    end
  end
  if lines == 0 or score == 0 then
    return "text", 0, false
  end
  return best, math.min(score / lines, 1), false
end
`

// LuaClassifier runs a classify function from a sandboxed Lua script.
// Only the base, table, string and math libraries are available, without
// the functions that load code or files. Calls are serialized.
type LuaClassifier struct {
	mu     sync.Mutex
	L      *lua.LState
	closed bool
}

// NewLuaClassifier loads script, which must define a global classify.
// print output goes to logger at debug level.
func NewLuaClassifier(script string, logger Logger) (*LuaClassifier, error) {
	if logger == nil {
		logger = nopLogger{}
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L, logger)

	if err := L.DoString(script); err != nil {
		L.Close()
		return nil, fmt.Errorf("load classifier script: %w", err)
	}
	if fn := L.GetGlobal("classify"); fn.Type() != lua.LTFunction {
		L.Close()
		return nil, ErrNoClassifyFunc
	}
	return &LuaClassifier{L: L}, nil
}

// LoadLuaClassifier reads a script from path.
func LoadLuaClassifier(path string, logger Logger) (*LuaClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read classifier script: %w", err)
	}
	return NewLuaClassifier(string(data), logger)
}

func openSafeLibraries(L *lua.LState, logger Logger) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "module", "require"} {
		L.SetGlobal(name, lua.LNil)
	}

	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, L.GetTop())
		for i := range parts {
			parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
		}
		logger.Debug("detect script: %s", strings.Join(parts, "\t"))
		return 0
	}))
}

// Classify calls classify(content). ctx cancels a running script.
func (c *LuaClassifier) Classify(ctx context.Context, content string) (res Result, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Result{}, ErrStateClosed
	}

	c.L.SetContext(ctx)
	defer c.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	top := c.L.GetTop()
	err = c.L.CallByParam(lua.P{
		Fn:      c.L.GetGlobal("classify"),
		NRet:    3,
		Protect: true,
	}, lua.LString(content))
	if err != nil {
		c.L.SetTop(top)
		return Result{}, fmt.Errorf("classify: %w", err)
	}

	tag := lua.LVAsString(c.L.Get(-3))
	relevance := float64(lua.LVAsNumber(c.L.Get(-2)))
	illegal := lua.LVAsBool(c.L.Get(-1))
	c.L.SetTop(top)

	l, _, ok := lang.ParseTag(tag)
	if !ok {
		return Result{}, fmt.Errorf("%w: unknown tag %q", ErrNoAnswer, tag)
	}
	return Result{
		Language:  l,
		Relevance: min(max(relevance, 0), MaxRelevance),
		Illegal:   illegal,
	}, nil
}

// Close releases the Lua state.
func (c *LuaClassifier) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		c.L.Close()
	}
}
