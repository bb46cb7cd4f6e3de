// Package driver runs the pystyle analyzers over Python files.
//
// The driver resolves the command-line location to a list of files, reads
// each file through a go-billy filesystem and executes the analyzer chain
// on it with a hand-built analysis.Pass per analyzer. Diagnostics reported
// by the passes come back as model.Diagnostic values in emission order.
package driver

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"
	"golang.org/x/tools/go/analysis"

	"github.com/Wladim1r/pystyle/internal/analyzer"
	"github.com/Wladim1r/pystyle/internal/model"
	"github.com/Wladim1r/pystyle/internal/rules"
)

// ErrUnsupported marks a location that is neither a matching file nor a
// directory. Run and Targets treat it as "nothing to do".
var ErrUnsupported = errors.New("unsupported location")

// FS is the part of a billy filesystem the linter needs. osfs.Default
// and memfs.New() both satisfy it.
type FS interface {
	billy.Basic
	billy.Dir
}

// Linter analyzes Python files.
type Linter struct {
	fs         FS
	extensions []string
	log        *zap.SugaredLogger
	roots      []*analysis.Analyzer
	order      []*analysis.Analyzer // roots and their requirements, dependencies first
}

// Option configures a Linter.
type Option func(*Linter)

// WithExtensions sets the file name suffixes analyzed in directory mode and
// accepted in file mode. The default is ".py".
func WithExtensions(exts ...string) Option {
	return func(l *Linter) {
		if len(exts) > 0 {
			l.extensions = exts
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(l *Linter) {
		if log != nil {
			l.log = log
		}
	}
}

// WithAnalyzers replaces the default root analyzer. Requirements are added
// automatically.
func WithAnalyzers(as ...*analysis.Analyzer) Option {
	return func(l *Linter) {
		if len(as) > 0 {
			l.roots = as
		}
	}
}

// New returns a Linter reading from fs.
func New(fs FS, opts ...Option) (*Linter, error) {
	l := &Linter{
		fs:         fs,
		extensions: []string{".py"},
		log:        zap.NewNop().Sugar(),
		roots:      []*analysis.Analyzer{analyzer.Analyzer},
	}
	for _, opt := range opts {
		opt(l)
	}
	if err := analysis.Validate(l.roots); err != nil {
		return nil, fmt.Errorf("pystyle: invalid analyzers: %w", err)
	}
	l.order = dependencyOrder(l.roots)
	return l, nil
}

// Targets resolves location to the files to analyze. A missing location, a
// file with another extension or any other kind of entry yields no files
// and no error. Directories are listed without recursion, sorted by name,
// skipping subdirectories.
func (l *Linter) Targets(location string) ([]string, error) {
	files, err := l.resolve(location)
	if errors.Is(err, ErrUnsupported) {
		l.log.Debugw("skipping location", "location", location, "reason", err)
		return nil, nil
	}
	return files, err
}

func (l *Linter) resolve(location string) ([]string, error) {
	fi, err := l.fs.Stat(location)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%q does not exist: %w", location, ErrUnsupported)
		}
		return nil, fmt.Errorf("pystyle: stat %q: %w", location, err)
	}

	switch {
	case fi.Mode().IsRegular():
		if !l.matches(location) {
			return nil, fmt.Errorf("%q has no source extension: %w", location, ErrUnsupported)
		}
		return []string{location}, nil
	case fi.IsDir():
	default:
		return nil, fmt.Errorf("%q is not a file or directory: %w", location, ErrUnsupported)
	}

	entries, err := l.fs.ReadDir(location)
	if err != nil {
		return nil, fmt.Errorf("pystyle: listing %q: %w", location, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var files []string
	for _, e := range entries {
		if !l.matches(e.Name()) {
			continue
		}
		if e.IsDir() {
			l.log.Debugw("skipping directory entry", "name", e.Name())
			continue
		}
		files = append(files, filepath.Join(location, e.Name()))
	}
	return files, nil
}

func (l *Linter) matches(name string) bool {
	for _, ext := range l.extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Run analyzes every target of location in order and hands each file's
// diagnostics to emit, including files without findings. The first read,
// parse or emit error stops the run; ctx is checked between files.
func (l *Linter) Run(ctx context.Context, location string, emit func(path string, diags []model.Diagnostic) error) error {
	files, err := l.Targets(location)
	if err != nil {
		return err
	}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		diags, err := l.File(ctx, path)
		if err != nil {
			return err
		}
		if err := emit(path, diags); err != nil {
			return err
		}
	}
	return nil
}

// File analyzes a single file regardless of its extension.
func (l *Linter) File(ctx context.Context, path string) ([]model.Diagnostic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := util.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("pystyle: reading %q: %w", path, err)
	}
	l.log.Debugw("analyzing file", "path", path, "bytes", len(src))

	diags, err := l.analyze(path, src)
	if err != nil {
		return nil, fmt.Errorf("pystyle: analyzing %q: %w", path, err)
	}
	l.log.Debugw("analyzed file", "path", path, "diagnostics", len(diags))
	return diags, nil
}

// analyze runs the analyzer chain on one file. Every analyzer gets its own
// Pass over the same file set; results flow to dependents through
// Pass.ResultOf.
func (l *Linter) analyze(path string, src []byte) ([]model.Diagnostic, error) {
	fset := token.NewFileSet()
	tf := fset.AddFile(path, -1, len(src))
	tf.SetLinesForContent(src)

	readFile := func(name string) ([]byte, error) {
		if name != path {
			return nil, fmt.Errorf("%q is not part of this pass", name)
		}
		return src, nil
	}

	var diags []model.Diagnostic
	results := make(map[*analysis.Analyzer]any, len(l.order))
	for _, a := range l.order {
		pass := &analysis.Pass{
			Analyzer:   a,
			Fset:       fset,
			OtherFiles: []string{path},
			ResultOf:   make(map[*analysis.Analyzer]any, len(a.Requires)),
			ReadFile:   readFile,
			Report: func(d analysis.Diagnostic) {
				diags = append(diags, toDiagnostic(fset, d))
			},
		}
		for _, req := range a.Requires {
			pass.ResultOf[req] = results[req]
		}
		res, err := a.Run(pass)
		if err != nil {
			return nil, err
		}
		results[a] = res
	}
	return diags, nil
}

func toDiagnostic(fset *token.FileSet, d analysis.Diagnostic) model.Diagnostic {
	pos := fset.Position(d.Pos)
	return model.Diagnostic{
		File:    pos.Filename,
		Line:    pos.Line,
		Code:    rules.Code(d.Category),
		Message: d.Message,
	}
}

// dependencyOrder lists roots and everything they require, each analyzer
// after its requirements.
func dependencyOrder(roots []*analysis.Analyzer) []*analysis.Analyzer {
	var (
		order []*analysis.Analyzer
		seen  = make(map[*analysis.Analyzer]bool)
		visit func(a *analysis.Analyzer)
	)
	visit = func(a *analysis.Analyzer) {
		if seen[a] {
			return
		}
		seen[a] = true
		for _, req := range a.Requires {
			visit(req)
		}
		order = append(order, a)
	}
	for _, a := range roots {
		visit(a)
	}
	return order
}
