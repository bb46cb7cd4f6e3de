// Package treecheck implements the style rules that need a syntax tree:
// argument names (S010), variable names (S011) and mutable default values
// (S012).
//
// The three passes run independently over one parsed module and each
// produces the set of lines it flags.
package treecheck

import (
	"sort"

	"github.com/Wladim1r/pystyle/internal/pyast"
	"github.com/Wladim1r/pystyle/internal/rules"
)

// Codes lists the rules this package reports, in pass order.
func Codes() []rules.Code {
	return []rules.Code{rules.CodeArgName, rules.CodeVarName, rules.CodeMutableDefault}
}

// Violations groups flagged line numbers by rule code. A line appears at
// most once per code. The zero value is empty and ready to use.
type Violations struct {
	lines map[rules.Code]map[int]struct{}
}

func (v *Violations) add(code rules.Code, line int) {
	if v.lines == nil {
		v.lines = make(map[rules.Code]map[int]struct{})
	}
	set, ok := v.lines[code]
	if !ok {
		set = make(map[int]struct{})
		v.lines[code] = set
	}
	set[line] = struct{}{}
}

// Has reports whether line is flagged for code.
func (v *Violations) Has(code rules.Code, line int) bool {
	_, ok := v.lines[code][line]
	return ok
}

// Lines returns the lines flagged for code in ascending order.
func (v *Violations) Lines(code rules.Code) []int {
	set := v.lines[code]
	if len(set) == 0 {
		return nil
	}
	out := make([]int, 0, len(set))
	for line := range set {
		out = append(out, line)
	}
	sort.Ints(out)
	return out
}

// Check runs every tree pass over mod.
func Check(mod *pyast.Module) *Violations {
	v := &Violations{}
	checkArgNames(mod, v)
	checkVarNames(mod, v)
	checkMutableDefaults(mod, v)
	return v
}

// startsUpper reports whether name fails the snake_case proxy: its first
// character is an ASCII capital letter. An empty name also fails.
func startsUpper(name string) bool {
	return name == "" || (name[0] >= 'A' && name[0] <= 'Z')
}

// functionDefs calls f for every non-async def in the module, at any depth.
func functionDefs(mod *pyast.Module, f func(*pyast.FunctionDef)) {
	pyast.Inspect(mod, func(n pyast.Node) bool {
		if fn, ok := n.(*pyast.FunctionDef); ok && !fn.Async {
			f(fn)
		}
		return true
	})
}

// checkArgNames flags positional parameters whose names start with a
// capital letter. Positional-only, keyword-only and variadic parameters
// are not checked.
func checkArgNames(mod *pyast.Module, v *Violations) {
	functionDefs(mod, func(fn *pyast.FunctionDef) {
		for _, arg := range fn.Args.Args {
			if startsUpper(arg.Name) {
				v.add(rules.CodeArgName, arg.Line)
			}
		}
	})
}

// checkMutableDefaults flags positional default values written as list,
// dict or set displays.
func checkMutableDefaults(mod *pyast.Module, v *Violations) {
	functionDefs(mod, func(fn *pyast.FunctionDef) {
		for _, def := range fn.Args.Defaults {
			switch def.(type) {
			case *pyast.List, *pyast.Dict, *pyast.Set:
				v.add(rules.CodeMutableDefault, def.Position().Line)
			}
		}
	})
}

// checkVarNames flags every name bound by assignment anywhere below the
// module's top-level statements.
func checkVarNames(mod *pyast.Module, v *Violations) {
	for _, stmt := range mod.Body {
		pyast.Inspect(stmt, func(n pyast.Node) bool {
			if name, ok := n.(*pyast.Name); ok && name.Ctx == pyast.Store && startsUpper(name.ID) {
				v.add(rules.CodeVarName, name.Line)
			}
			return true
		})
	}
}
