// Package analyzer expresses the pystyle checks as go/analysis passes over
// Python source files.
//
// A pass sees its Python files through Pass.OtherFiles and reads them with
// Pass.ReadFile. Three analyzers form a chain:
//
//   - Syntax (pysyntax) parses every file once; its result maps file names
//     to *pyast.Module.
//   - Tree (pytree) runs the tree checks on each module; its result maps
//     file names to *treecheck.Violations.
//   - Analyzer (pystyle) scans every file line by line, merges in the tree
//     violations and reports one diagnostic per finding, with the rule code
//     in Diagnostic.Category.
//
// A syntax error in any file fails the Syntax pass, and with it the whole
// chain for that pass.
package analyzer

import (
	"fmt"
	"go/token"
	"reflect"

	"golang.org/x/tools/go/analysis"

	"github.com/Wladim1r/pystyle/internal/pyast"
	"github.com/Wladim1r/pystyle/internal/pyparser"
	"github.com/Wladim1r/pystyle/internal/rules"
	"github.com/Wladim1r/pystyle/internal/treecheck"
)

// Syntax parses the Python files of a pass.
var Syntax = &analysis.Analyzer{
	Name:       "pysyntax",
	Doc:        "parses Python source files into syntax trees",
	Run:        runSyntax,
	ResultType: reflect.TypeOf(map[string]*pyast.Module(nil)),
}

// Tree computes the argument name, variable name and mutable default
// violations of every parsed file.
var Tree = &analysis.Analyzer{
	Name:       "pytree",
	Doc:        "finds naming and mutable default violations in Python syntax trees",
	Requires:   []*analysis.Analyzer{Syntax},
	Run:        runTree,
	ResultType: reflect.TypeOf(map[string]*treecheck.Violations(nil)),
}

// Analyzer reports every style violation of the Python files of a pass.
var Analyzer = &analysis.Analyzer{
	Name:     "pystyle",
	Doc:      "checks Python source files for PEP 8 style violations (S001-S012)",
	Requires: []*analysis.Analyzer{Tree},
	Run:      runStyle,
}

// Analyzers returns the full chain in dependency order.
func Analyzers() []*analysis.Analyzer {
	return []*analysis.Analyzer{Syntax, Tree, Analyzer}
}

// ---------------------------------------------------------------------------
// Passes
// ---------------------------------------------------------------------------

func runSyntax(pass *analysis.Pass) (any, error) {
	modules := make(map[string]*pyast.Module, len(pass.OtherFiles))
	for _, name := range pass.OtherFiles {
		src, err := pass.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", name, err)
		}
		mod, err := pyparser.ParseFile(name, src)
		if err != nil {
			return nil, err
		}
		modules[name] = mod
	}
	return modules, nil
}

func runTree(pass *analysis.Pass) (any, error) {
	modules := pass.ResultOf[Syntax].(map[string]*pyast.Module)
	out := make(map[string]*treecheck.Violations, len(modules))
	for name, mod := range modules {
		out[name] = treecheck.Check(mod)
	}
	return out, nil
}

func runStyle(pass *analysis.Pass) (any, error) {
	trees := pass.ResultOf[Tree].(map[string]*treecheck.Violations)
	for _, name := range pass.OtherFiles {
		src, err := pass.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", name, err)
		}
		tf := tokenFile(pass.Fset, name, src)
		Scan(src, trees[name], func(line int, code rules.Code) {
			pass.Report(analysis.Diagnostic{
				Pos:      linePos(tf, line),
				Category: string(code),
				Message:  code.Message(),
			})
		})
	}
	return nil, nil
}

// ---------------------------------------------------------------------------
// Line scan
// ---------------------------------------------------------------------------

// Scan walks src line by line and calls report for every violation in
// discovery order: for each line, the blank-run check first, then the line
// checks in code order, then the tree violations recorded for that line.
// Blank lines are only subject to the blank-run check. A nil v means no
// tree violations.
func Scan(src []byte, v *treecheck.Violations, report func(line int, code rules.Code)) {
	if v == nil {
		v = &treecheck.Violations{}
	}
	var blanks rules.BlankRun
	for i, text := range rules.SplitLines(src) {
		line := i + 1
		if blanks.Next(text) {
			report(line, rules.CodeBlankLines)
		}
		if rules.IsBlank(text) {
			continue
		}
		for _, code := range rules.CheckLine(text) {
			report(line, code)
		}
		for _, code := range treecheck.Codes() {
			if v.Has(code, line) {
				report(line, code)
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Positions
// ---------------------------------------------------------------------------

// tokenFile returns the file set entry for name, adding one built from src
// when the driver did not.
func tokenFile(fset *token.FileSet, name string, src []byte) *token.File {
	var found *token.File
	fset.Iterate(func(f *token.File) bool {
		if f.Name() == name {
			found = f
			return false
		}
		return true
	})
	if found != nil {
		return found
	}
	tf := fset.AddFile(name, -1, len(src))
	tf.SetLinesForContent(src)
	return tf
}

// linePos returns the position of the first column of the 1-based line.
func linePos(tf *token.File, line int) token.Pos {
	if line > tf.LineCount() {
		return tf.Pos(tf.Size())
	}
	return tf.LineStart(line)
}
