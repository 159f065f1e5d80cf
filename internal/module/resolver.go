package module

import (
	"mslash/internal/ast"
	"mslash/internal/diag"
	"mslash/internal/parser"
	"mslash/internal/span"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

type fileState int

const (
	fileLoading fileState = iota
	fileLinked
)

// fileRec tracks a loaded file by its cleaned path.
type fileRec struct {
	prog  *ast.Program
	table *Table
	state fileState
}

// Resolver loads script files and links their steal directives. Each file
// is loaded and linked at most once per Resolver.
type Resolver struct {
	loader FileLoader
	logger *zap.Logger
	files  map[string]*fileRec
	stack  []string // files being linked, outermost first
}

// NewResolver creates a resolver reading files through loader.
func NewResolver(loader FileLoader, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		loader: loader,
		logger: logger,
		files:  make(map[string]*fileRec),
	}
}

// LoadFile loads the entry script at path and resolves everything it steals.
func (r *Resolver) LoadFile(path string) (*ast.Program, *Table, error) {
	rec, err := r.load(filepath.Clean(path), span.Span{})
	if err != nil {
		return nil, nil, err
	}
	return rec.prog, rec.table, nil
}

// LoadSource is LoadFile for a script already in memory. Relative steal
// paths resolve against the directory of filename.
func (r *Resolver) LoadSource(source, filename string) (*ast.Program, *Table, error) {
	prog, err := parser.Load(source, filename)
	if err != nil {
		return nil, nil, err
	}
	rec, err := r.link(filepath.Clean(filename), prog)
	if err != nil {
		return nil, nil, err
	}
	return rec.prog, rec.table, nil
}

func (r *Resolver) load(path string, at span.Span) (*fileRec, error) {
	if rec, ok := r.files[path]; ok {
		if rec.state == fileLoading {
			return nil, r.cycleError(path, at)
		}
		return rec, nil
	}

	src, err := r.loader.Load(path)
	if err != nil {
		return nil, diag.Wrap(diag.ImportError, diag.CodeModuleNotFound, at, err,
			"cannot load '%s': %v", path, err)
	}
	prog, err := parser.Load(src, path)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("file loaded",
		zap.String("file", path),
		zap.Int("decls", len(prog.Decls)),
		zap.Int("statements", len(prog.Main)))
	return r.link(path, prog)
}

// link builds the symbol table of prog by walking its declarations in
// textual order, so a later declaration or steal replaces an earlier one.
func (r *Resolver) link(path string, prog *ast.Program) (*fileRec, error) {
	rec := &fileRec{prog: prog, state: fileLoading}
	r.files[path] = rec
	r.stack = append(r.stack, path)
	defer func() { r.stack = r.stack[:len(r.stack)-1] }()

	table := NewTable(path)
	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *ast.FuncDef:
			table.DefineFunc(d.Name, &Function{Def: d, Home: table})
		case *ast.ClassDef:
			table.DefineClass(d.Name, &Class{Def: d, Home: table})
		case *ast.StealDecl:
			if err := r.steal(table, d); err != nil {
				delete(r.files, path)
				return nil, err
			}
		}
	}

	rec.table = table
	rec.state = fileLinked
	return rec, nil
}

func (r *Resolver) steal(into *Table, d *ast.StealDecl) error {
	target := filepath.Clean(d.Path)
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(into.File), target)
	}

	src, err := r.load(target, d.Span)
	if err != nil {
		return err
	}

	if fn, ok := src.table.Func(d.Symbol); ok {
		into.DefineFunc(d.Symbol, fn)
	} else if c, ok := src.table.Class(d.Symbol); ok {
		into.DefineClass(d.Symbol, c)
	} else {
		e := diag.Errorf(diag.ImportError, diag.CodeSymbolNotFound, d.Span,
			"'%s' is not declared in %s", d.Symbol, target)
		if names := src.table.Names(); len(names) > 0 {
			e.WithHint("available: " + strings.Join(names, ", "))
		}
		return e
	}

	r.logger.Debug("steal resolved",
		zap.String("symbol", d.Symbol),
		zap.String("from", target),
		zap.String("into", into.File))
	return nil
}

func (r *Resolver) cycleError(path string, at span.Span) error {
	chain := []string{path}
	for i, f := range r.stack {
		if f == path {
			chain = append(append([]string{}, r.stack[i:]...), path)
			break
		}
	}
	return diag.Errorf(diag.ImportError, diag.CodeImportCycle, at,
		"import cycle detected: %s", strings.Join(chain, " -> "))
}
