package module

import (
	"mslash/internal/diag"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_OwnDeclarations(t *testing.T) {
	r := NewResolver(MapLoader{
		"main.mslash": "say hi()\nfunc hi()\n  return 1\nendfunc\nclass Box\nendclass",
	}, nil)
	prog, table, err := r.LoadFile("main.mslash")
	require.NoError(t, err)
	assert.Len(t, prog.Main, 1)

	fn, ok := table.Func("hi")
	require.True(t, ok)
	assert.Equal(t, 0, fn.Arity())
	assert.Same(t, table, fn.Home)

	_, ok = table.Class("Box")
	assert.True(t, ok)
	assert.Equal(t, []string{"Box", "hi"}, table.Names())
}

func TestResolver_StealKeepsHome(t *testing.T) {
	r := NewResolver(MapLoader{
		"main.mslash":     "steal greet from lib/util.mslash",
		"lib/util.mslash": "func greet(n)\n  return helper(n)\nendfunc\nfunc helper(n)\n  return n\nendfunc",
	}, nil)
	_, table, err := r.LoadFile("main.mslash")
	require.NoError(t, err)

	fn, ok := table.Func("greet")
	require.True(t, ok)
	assert.Equal(t, filepath.Clean("lib/util.mslash"), fn.Home.File)

	_, ok = table.Func("helper")
	assert.False(t, ok, "only the named symbol is stolen")
	_, ok = fn.Home.Func("helper")
	assert.True(t, ok, "the stolen function still sees its own file")
}

func TestResolver_LastStealWins(t *testing.T) {
	r := NewResolver(MapLoader{
		"main.mslash": "steal x from f.mslash\nsteal x from g.mslash",
		"f.mslash":    "func x()\n  return 1\nendfunc",
		"g.mslash":    "func x()\n  return 2\nendfunc",
	}, nil)
	_, table, err := r.LoadFile("main.mslash")
	require.NoError(t, err)

	fn, _ := table.Func("x")
	assert.Equal(t, "g.mslash", fn.Home.File)
}

func TestResolver_LocalDeclarationAfterSteal(t *testing.T) {
	r := NewResolver(MapLoader{
		"main.mslash": "steal x from f.mslash\nfunc x()\n  return 0\nendfunc",
		"f.mslash":    "func x()\n  return 1\nendfunc",
	}, nil)
	_, table, err := r.LoadFile("main.mslash")
	require.NoError(t, err)

	fn, _ := table.Func("x")
	assert.Equal(t, "main.mslash", fn.Home.File)
}

func TestResolver_StealClass(t *testing.T) {
	r := NewResolver(MapLoader{
		"main.mslash":   "steal Point from shapes.mslash",
		"shapes.mslash": "class Point\n  func init(x)\n    var this.x = x\n  endfunc\nendclass",
	}, nil)
	_, table, err := r.LoadFile("main.mslash")
	require.NoError(t, err)

	c, ok := table.Class("Point")
	require.True(t, ok)
	assert.True(t, c.Method("init").IsPresent())
	assert.True(t, c.Method("area").IsAbsent())
}

func TestResolver_Cycle(t *testing.T) {
	r := NewResolver(MapLoader{
		"a.mslash": "steal g from b.mslash\nfunc f()\nendfunc",
		"b.mslash": "steal f from a.mslash\nfunc g()\nendfunc",
	}, nil)
	_, _, err := r.LoadFile("a.mslash")
	require.Error(t, err)
	assert.True(t, diag.Is(err, diag.ImportError, diag.CodeImportCycle))
	assert.Contains(t, err.Error(), "a.mslash -> b.mslash -> a.mslash")
}

func TestResolver_SelfSteal(t *testing.T) {
	r := NewResolver(MapLoader{"a.mslash": "steal f from a.mslash\nfunc f()\nendfunc"}, nil)
	_, _, err := r.LoadFile("a.mslash")
	assert.True(t, diag.Is(err, diag.ImportError, diag.CodeImportCycle))
}

func TestResolver_SharedDependencyIsNotACycle(t *testing.T) {
	r := NewResolver(MapLoader{
		"main.mslash": "steal a from a.mslash\nsteal b from b.mslash",
		"a.mslash":    "steal c from c.mslash\nfunc a()\nendfunc",
		"b.mslash":    "steal c from c.mslash\nfunc b()\nendfunc",
		"c.mslash":    "func c()\nendfunc",
	}, nil)
	_, table, err := r.LoadFile("main.mslash")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, table.Names())
}

func TestResolver_MissingFileAndSymbol(t *testing.T) {
	r := NewResolver(MapLoader{
		"main.mslash": "say 1\nsteal nope from missing.mslash",
	}, nil)
	_, _, err := r.LoadFile("main.mslash")
	require.Error(t, err)
	assert.True(t, diag.Is(err, diag.ImportError, diag.CodeModuleNotFound))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, 2, err.(*diag.Error).Span.Start.Line)

	r = NewResolver(MapLoader{
		"main.mslash": "steal nope from lib.mslash",
		"lib.mslash":  "func yes()\nendfunc",
	}, nil)
	_, _, err = r.LoadFile("main.mslash")
	require.Error(t, err)
	assert.True(t, diag.Is(err, diag.ImportError, diag.CodeSymbolNotFound))
	assert.Contains(t, err.Error(), "available: yes")
}

func TestResolver_SyntaxErrorInStolenFile(t *testing.T) {
	r := NewResolver(MapLoader{
		"main.mslash": "steal f from lib.mslash",
		"lib.mslash":  "func f()\n",
	}, nil)
	_, _, err := r.LoadFile("main.mslash")
	require.Error(t, err)
	assert.True(t, diag.Is(err, diag.SyntaxError, diag.CodeUnclosedBlock))
	assert.Equal(t, "lib.mslash", err.(*diag.Error).Span.Start.File)
}

func TestResolver_LoadSource(t *testing.T) {
	r := NewResolver(MapLoader{"dir/lib.mslash": "func f()\nendfunc"}, nil)
	_, table, err := r.LoadSource("steal f from lib.mslash", "dir/main.mslash")
	require.NoError(t, err)
	_, ok := table.Func("f")
	assert.True(t, ok)
}

func TestOSLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.mslash")
	require.NoError(t, os.WriteFile(path, []byte("say 1"), 0o644))

	src, err := OSLoader{}.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "say 1", src)

	_, err = OSLoader{}.Load(filepath.Join(dir, "none.mslash"))
	assert.True(t, errors.Is(err, ErrNotFound))
}
