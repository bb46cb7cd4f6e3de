package pyparser_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wladim1r/pystyle/internal/pyast"
	"github.com/Wladim1r/pystyle/internal/pyparser"
)

func parse(t *testing.T, src string) *pyast.Module {
	t.Helper()
	mod, err := pyparser.ParseFile("test.py", []byte(src))
	require.NoError(t, err)
	return mod
}

// storedNames collects every Name in Store context with its line.
func storedNames(mod *pyast.Module) map[string]int {
	names := map[string]int{}
	pyast.Inspect(mod, func(n pyast.Node) bool {
		if name, ok := n.(*pyast.Name); ok && name.Ctx == pyast.Store {
			names[name.ID] = name.Line
		}
		return true
	})
	return names
}

// ---------------------------------------------------------------------------
// Tokenize
// ---------------------------------------------------------------------------

func TestTokenize_Layout(t *testing.T) {
	t.Parallel()

	toks, err := pyparser.Tokenize("t.py", []byte("if x:\n    y = (1,\n  2)\n\n# c\nz\n"))
	require.NoError(t, err)

	var kinds []pyparser.Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []pyparser.Kind{
		pyparser.Name, pyparser.Name, pyparser.Op, pyparser.Newline,
		pyparser.Indent,
		pyparser.Name, pyparser.Op, pyparser.Op, pyparser.Number, pyparser.Op, pyparser.Number, pyparser.Op, pyparser.Newline,
		pyparser.Dedent,
		pyparser.Name, pyparser.Newline,
		pyparser.EOF,
	}, kinds)
	assert.Equal(t, 6, toks[len(toks)-3].Line, "z is on line 6")
}

func TestTokenize_Strings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"single quoted", `'a"b'`, `'a"b'`},
		{"escaped quote", `"a\"b"`, `"a\"b"`},
		{"prefixed raw bytes", `rb'\d'`, `rb'\d'`},
		{"triple quoted", "'''a\n'b'\n'''", "'''a\n'b'\n'''"},
		{"f-string nested quotes", `f"{d["k"]}"`, `f"{d["k"]}"`},
		{"f-string escaped braces", `f"{{x}}"`, `f"{{x}}"`},
		{"f-string format spec", `f"{x:{w}}"`, `f"{x:{w}}"`},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			toks, err := pyparser.Tokenize("t.py", []byte(tc.src))
			require.NoError(t, err)
			require.NotEmpty(t, toks)
			assert.Equal(t, pyparser.String, toks[0].Kind)
			assert.Equal(t, tc.want, toks[0].Text)
		})
	}
}

func TestTokenize_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		line int
	}{
		{"unterminated string", "x = 1\ny = 'abc\n", 2},
		{"unterminated triple quoted", "x = '''abc\n\n", 1},
		{"unclosed bracket", "x = (1,\n2\n", 1},
		{"mismatched bracket", "x = (1]\n", 1},
		{"unmatched closer", "x = 1)\n", 1},
		{"bad dedent", "if x:\n        y\n    z\n", 3},
		{"invalid character", "x = $y\n", 1},
		{"stray continuation", "x = 1 \\ y\n", 1},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := pyparser.Tokenize("t.py", []byte(tc.src))
			var perr *pyparser.Error
			require.True(t, errors.As(err, &perr), "got %v", err)
			assert.Equal(t, tc.line, perr.Line)
			assert.Equal(t, "t.py", perr.Filename)
		})
	}
}

func TestTokenize_CRLFAndTabs(t *testing.T) {
	t.Parallel()

	toks, err := pyparser.Tokenize("t.py", []byte("if x:\r\n\ty = 1\r\n        z = 2\r\n"))
	require.NoError(t, err, "a tab indents to column eight")
	indents := 0
	for _, tok := range toks {
		if tok.Kind == pyparser.Indent {
			indents++
		}
	}
	assert.Equal(t, 1, indents)
}

// ---------------------------------------------------------------------------
// ParseFile: valid programs
// ---------------------------------------------------------------------------

func TestParseFile_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"comments only", "# just a comment\n\n"},
		{"decorated class", "@dataclass(frozen=True)\nclass A(B, metaclass=M):\n    x: int = 0\n"},
		{"async def", "async def f(a, /, b=1, *args, c, d=2, **kw) -> int:\n    await g()\n    async for x in y:\n        pass\n    async with a as b:\n        pass\n"},
		{"lambda and ternary", "f = lambda x, *a, k=1, **kw: x if x else None\n"},
		{"comprehensions", "a = [x for x in y if x if not x]\nb = {k: v for k, v in d.items()}\nc = {x async for x in z}\nd = (i for i in range(3))\n"},
		{"slices", "x = a[1:2, ::3, ...]\ny = a[:]\n"},
		{"walrus", "if (n := len(a)) > 10:\n    print(n)\n"},
		{"try except star", "try:\n    pass\nexcept* ValueError as e:\n    raise RuntimeError() from e\nelse:\n    pass\nfinally:\n    pass\n"},
		{"parenthesized with", "with (open(a) as f, open(b) as g):\n    pass\n"},
		{"parenthesized context", "with (yield x) as y:\n    pass\n"},
		{"match statement", "match cmd:\n    case [x, y, *rest] if x > 0:\n        pass\n    case {'k': v}:\n        pass\n    case _:\n        pass\n"},
		{"match as name", "match = 1\nmatch(x)\n"},
		{"type alias", "type Point[T] = tuple[T, T]\ntype = 3\n"},
		{"generic def", "def first[T](xs: list[T]) -> T:\n    return xs[0]\n"},
		{"imports", "import a.b as c, d\nfrom ..x import (y as z, w,)\nfrom . import *\n"},
		{"global and del", "def f():\n    global a, b\n    del a[0], b.c\n"},
		{"semicolons", "x = 1; y = 2;\n"},
		{"chained comparison", "ok = 1 < x <= 3 is not None not in y\n"},
		{"star assignment", "a, *b = c\n[d, e] = f, g = h\n"},
		{"call forms", "f(a, *b, c=1, **d)\nf(x for x in y)\n"},
		{"parenthesized generator among arguments", "f((x for x in y), z)\nsorted(x for x in y)\n"},
		{"string concatenation", "s = ('a'\n     \"b\"\n     f'{c!r:>10}')\n"},
		{"continuation", "x = 1 + \\\n    2\n"},
		{"yield forms", "def g():\n    yield\n    yield 1, 2\n    x = yield from h()\n"},
		{"one-line suite", "if x: y = 1; z = 2\nelse: pass\n"},
		{"no trailing newline", "x = 1"},
		{"soft keyword names", "case = type = _ = 1\n"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := pyparser.ParseFile("t.py", []byte(tc.src))
			assert.NoError(t, err)
		})
	}
}

// ---------------------------------------------------------------------------
// ParseFile: syntax errors
// ---------------------------------------------------------------------------

func TestParseFile_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		line int
	}{
		{"python 2 print", "print 'hello'\n", 1},
		{"missing colon", "if x\n    pass\n", 1},
		{"missing block", "def f():\nx = 1\n", 2},
		{"unexpected indent", "x = 1\n    y = 2\n", 2},
		{"assign to literal", "1 = x\n", 1},
		{"assign to call", "f() = 1\n", 1},
		{"augassign to tuple", "a, b += 1\n", 1},
		{"keyword as name", "class = 1\n", 1},
		{"default before non-default", "def f(a=1, b):\n    pass\n", 1},
		{"bare star", "def f(*):\n    pass\n", 1},
		{"try without handler", "try:\n    pass\nx = 1\n", 3},
		{"del literal", "del 1\n", 1},
		{"unclosed paren in def", "def f(:\n    pass\n", 1},
		{"generator before another argument", "x = 1\nf(a for a in b, c)\n", 2},
		{"generator after another argument", "f(c, a for a in b)\n", 1},
		{"generator with keyword", "f(a for a in b, key=1)\n", 1},
		{"generator with trailing comma", "f(a for a in b,)\n", 1},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			mod, err := pyparser.ParseFile("bad.py", []byte(tc.src))
			assert.Nil(t, mod)
			var perr *pyparser.Error
			require.True(t, errors.As(err, &perr), "got %v", err)
			assert.Equal(t, tc.line, perr.Line)
			assert.Contains(t, perr.Error(), "bad.py:")
		})
	}
}

// ---------------------------------------------------------------------------
// ParseFile: tree shape
// ---------------------------------------------------------------------------

func TestParseFile_FunctionArguments(t *testing.T) {
	t.Parallel()

	mod := parse(t, "def f(a, /, B, c=[], *args, K, d={}, **kw):\n    pass\n")
	require.Len(t, mod.Body, 1)
	fn, ok := mod.Body[0].(*pyast.FunctionDef)
	require.True(t, ok)

	assert.Equal(t, "f", fn.Name)
	assert.Equal(t, 1, fn.Line)
	require.Len(t, fn.Args.PosOnly, 1)
	assert.Equal(t, "a", fn.Args.PosOnly[0].Name)

	var args []string
	for _, a := range fn.Args.Args {
		args = append(args, a.Name)
	}
	assert.Equal(t, []string{"B", "c"}, args)
	assert.Equal(t, "args", fn.Args.Vararg.Name)
	assert.Equal(t, "kw", fn.Args.Kwarg.Name)
	require.Len(t, fn.Args.KwOnly, 2)
	assert.Nil(t, fn.Args.KwDefaults[0])
	assert.IsType(t, &pyast.Dict{}, fn.Args.KwDefaults[1])
	require.Len(t, fn.Args.Defaults, 1)
	assert.IsType(t, &pyast.List{}, fn.Args.Defaults[0])
}

func TestParseFile_DefaultPositions(t *testing.T) {
	t.Parallel()

	mod := parse(t, "def f(a,\n      b=[\n        1],\n      c={}):\n    pass\n")
	fn := mod.Body[0].(*pyast.FunctionDef)
	require.Len(t, fn.Args.Defaults, 2)
	assert.Equal(t, 2, fn.Args.Defaults[0].Position().Line)
	assert.Equal(t, 4, fn.Args.Defaults[1].Position().Line)
}

func TestParseFile_StoreContext(t *testing.T) {
	t.Parallel()

	src := `a = 1
b += 2
c: int = 3
for d, (e, *f) in x:
    pass
with g() as h:
    pass
y = [i for i in z]
if (j := 5):
    pass
k.attr = l[0] = 6
try:
    pass
except E as m:
    pass
print(n)
`
	names := storedNames(parse(t, src))
	assert.Equal(t, map[string]int{
		"a": 1, "b": 2, "c": 3,
		"d": 4, "e": 4, "f": 4,
		"h": 6, "y": 8, "i": 8, "j": 9,
	}, names)
}

func TestParseFile_DecoratedPosition(t *testing.T) {
	t.Parallel()

	mod := parse(t, "@deco\n@other(1)\ndef f():\n    pass\n")
	fn := mod.Body[0].(*pyast.FunctionDef)
	assert.Equal(t, 3, fn.Line)
	assert.Len(t, fn.Decorators, 2)
}

func TestParseFile_AsyncDefIsMarked(t *testing.T) {
	t.Parallel()

	mod := parse(t, "async def f(X):\n    pass\n")
	fn := mod.Body[0].(*pyast.FunctionDef)
	assert.True(t, fn.Async)
}

func TestParseFile_DelTargets(t *testing.T) {
	t.Parallel()

	mod := parse(t, "del a, b[0]\n")
	del := mod.Body[0].(*pyast.Delete)
	require.Len(t, del.Targets, 2)
	assert.Equal(t, pyast.Del, del.Targets[0].(*pyast.Name).Ctx)
	assert.Equal(t, pyast.Del, del.Targets[1].(*pyast.Subscript).Ctx)
}
