package runtime

import (
	"bytes"
	"mslash/internal/diag"
	"mslash/internal/module"
	"strings"
	"testing"
)

// runFiles loads entry from an in-memory file set and executes it,
// returning captured stdout and any error.
func runFiles(files module.MapLoader, entry string, opts ...Option) (string, *Interpreter, error) {
	var buf bytes.Buffer
	interp := NewInterpreter(&buf, opts...)

	prog, table, err := module.NewResolver(files, nil).LoadFile(entry)
	if err != nil {
		return "", interp, err
	}
	err = interp.Run(prog, table)
	return buf.String(), interp, err
}

// runSource executes a single script named main.mslash.
func runSource(source string, opts ...Option) (string, error) {
	out, _, err := runFiles(module.MapLoader{"main.mslash": source}, "main.mslash", opts...)
	return out, err
}

func expectOutput(t *testing.T, source, expected string) {
	t.Helper()
	out, err := runSource(source)
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if strings.TrimRight(out, "\n") != strings.TrimRight(expected, "\n") {
		t.Errorf("output mismatch:\nexpected: %q\ngot:      %q", expected, out)
	}
}

func expectError(t *testing.T, source string, kind diag.Kind, code string) *diag.Error {
	t.Helper()
	_, err := runSource(source)
	if err == nil {
		t.Fatalf("expected %s(%s), got nil", kind, code)
	}
	if !diag.Is(err, kind, code) {
		t.Fatalf("expected %s(%s), got: %v", kind, code, err)
	}
	return err.(*diag.Error)
}

// ---- End-to-end ----

func TestSayLiteral(t *testing.T) {
	expectOutput(t, `say "hello"`, "hello\n")
}

func TestMathVariable(t *testing.T) {
	expectOutput(t, "var x = 5\nmath x * 2", "10\n")
}

func TestFunctionReturn(t *testing.T) {
	expectOutput(t, "func f(a)\n return a+1\nendfunc\nmath f(4)", "5\n")
}

func TestClassInit(t *testing.T) {
	source := "class C\n func init(v)\n  var this.v = v\n endfunc\nendclass\nvar c = new C(3)\nsay \"${c.v}\""
	expectOutput(t, source, "3\n")
}

func TestLoopPrintsTwice(t *testing.T) {
	expectOutput(t, "loop 2\n say \"hi\"\nendloop", "hi\nhi\n")
}

func TestBreakEndsRunCleanly(t *testing.T) {
	out, interp, err := runFiles(module.MapLoader{"main.mslash": "say 1\nbreak\nsay 2\nsay 3"}, "main.mslash")
	if err != nil {
		t.Fatalf("break should not be an error: %v", err)
	}
	if out != "1\n" {
		t.Errorf("expected only the first line, got %q", out)
	}
	if !interp.Halted() {
		t.Error("expected Halted() after break")
	}
}

func TestBreakUnwindsCallsAndLoops(t *testing.T) {
	source := `
func stop()
  say "in"
  break
  say "never"
endfunc
loop 3
  stop()
  say "after"
endloop
say "end"`
	expectOutput(t, source, "in\n")
}

// ---- Declarations and scoping ----

func TestForwardReference(t *testing.T) {
	source := `
math twice(3)
var p = new P()
say p.kind()
func twice(n)
  return n * 2
endfunc
class P
  func kind()
    return "p"
  endfunc
endclass`
	expectOutput(t, source, "6\np\n")
}

func TestLoopCounts(t *testing.T) {
	tests := []struct {
		count    string
		expected string
	}{
		{"-2", "0"},
		{"0", "0"},
		{"1", "1"},
		{"3", "3"},
		{"2.7", "2"},
	}
	for _, tt := range tests {
		source := "var c = 0\nloop " + tt.count + "\n  var c = c + 1\nendloop\nmath c"
		expectOutput(t, source, tt.expected)
	}
	expectOutput(t, "loop 0\n  say \"x\"\nendloop\nsay \"done\"", "done\n")
}

func TestIfElse(t *testing.T) {
	expectOutput(t, "if 1 > 2\n say \"a\"\nelse\n say \"b\"\nendif", "b\n")
	expectOutput(t, "if 2 > 1\n say \"a\"\nelse\n say \"b\"\nendif", "a\n")
	expectOutput(t, "if 0\n say \"a\"\nendif\nsay \"c\"", "c\n")
}

func TestIfBodyBindsInEnclosingScope(t *testing.T) {
	source := `
var a = 3
var b = 7
if a > b
  var bigger = a
else
  var bigger = b
endif
math bigger`
	expectOutput(t, source, "7\n")
}

func TestShadowedParameterDoesNotLeak(t *testing.T) {
	source := `
var x = 1
func shadow(x)
  var x = x + 100
  return x
endfunc
math shadow(5)
math x`
	expectOutput(t, source, "105\n1\n")
}

func TestAssignmentReachesOuterBinding(t *testing.T) {
	source := `
var count = 0
func bump()
  var count = count + 1
endfunc
bump()
bump()
math count`
	expectOutput(t, source, "2\n")
}

func TestFunctionLocalsDoNotEscape(t *testing.T) {
	expectError(t, "func make()\n  var local = 1\nendfunc\nmake()\nsay local", diag.EvalError, diag.CodeUndefinedVariable)
}

func TestCallSeesCallerScope(t *testing.T) {
	source := `
func show()
  say v
endfunc
var v = "outer"
show()`
	expectOutput(t, source, "outer\n")
}

func TestRecursion(t *testing.T) {
	source := `
func fact(n)
  if n <= 1
    return 1
  endif
  return n * fact(n - 1)
endfunc
math fact(5)`
	expectOutput(t, source, "120\n")
}

func TestReturnFromInsideLoop(t *testing.T) {
	source := `
func first()
  loop 10
    return "early"
  endloop
  return "late"
endfunc
say first()`
	expectOutput(t, source, "early\n")
}

func TestBareReturnYieldsNone(t *testing.T) {
	expectOutput(t, "func f()\nendfunc\nfunc g()\n  return\nendfunc\nmath f()\nmath g()", "none\nnone\n")
}

func TestFunctionAsValue(t *testing.T) {
	expectOutput(t, "func dbl(n)\n  return n * 2\nendfunc\nvar g = dbl\nmath g(4)", "8\n")
}

// ---- Objects ----

func TestObjectsAreShared(t *testing.T) {
	source := `
class Box
  func init(v)
    var this.v = v
  endfunc
  func set(v)
    var this.v = v
  endfunc
endclass
var a = new Box(1)
var b = a
var b.v = 2
say a.v
b.set(3)
say a.v`
	expectOutput(t, source, "2\n3\n")
}

func TestMethodsUseThis(t *testing.T) {
	source := `
class Counter
  func init(start)
    var this.n = start
  endfunc
  func inc()
    var this.n = this.n + 1
    return this
  endfunc
  func twice()
    this.inc()
    this.inc()
    return this.n
  endfunc
endclass
var c = new Counter(10)
math c.twice()
math c.inc().n`
	expectOutput(t, source, "12\n13\n")
}

func TestClassWithoutInit(t *testing.T) {
	expectOutput(t, "class Empty\nendclass\nvar e = new Empty()\nvar e.tag = \"x\"\nsay e.tag\nsay e", "x\n<object Empty>\n")
}

// ---- Lists and maps ----

func TestListsAreShared(t *testing.T) {
	expectOutput(t, "var a = [1, 2]\nvar b = a\nb.append(3)\nvar b[0] = 9\nsay a", "[9, 2, 3]\n")
}

func TestListOperations(t *testing.T) {
	source := `
var xs = ["a", "b"]
math len(xs)
math xs[-1]
math xs.contains("a")
math xs.push("c")
math xs.pop()
math xs.join("-")
math xs + [1]
math [0] * 3`
	expectOutput(t, source, "2\nb\ntrue\n3\nc\na-b\n[\"a\", \"b\", 1]\n[0, 0, 0]\n")
}

func TestMapOperations(t *testing.T) {
	source := `
var m = ("a": 1)
var m["b"] = 2
math m.keys()
math m.values()
math m.get("z", 0)
math m.a
math m["b"]
math m.has("a")
math m
math ()`
	expectOutput(t, source, "[\"a\", \"b\"]\n[1, 2]\n0\n1\n2\ntrue\n{\"a\": 1, \"b\": 2}\n{}\n")
}

// ---- Expressions ----

func TestArithmetic(t *testing.T) {
	tests := []struct {
		expr     string
		expected string
	}{
		{"2 + 3 * 4", "14"},
		{"(2 + 3) * 4", "20"},
		{"10 - 2 - 3", "5"},
		{"7 / 2", "3.5"},
		{"4 / 2", "2.0"},
		{"7 % 3", "1"},
		{"-7 % 3", "2"},
		{"7.5 % 2", "1.5"},
		{"1 + 2.5", "3.5"},
		{"0.1 + 0.2", "0.30000000000000004"},
		{"-(3)", "-3"},
		{`"ab" * 3`, "ababab"},
		{`"n=" + 5`, "n=5"},
		{"3 == 3.0", "true"},
		{`"a" < "b"`, "true"},
		{"not true", "false"},
		{"1 < 2 and 2 < 3", "true"},
		{"0 or none", "false"},
		{"None", "none"},
		{"True", "true"},
		{`[1, "a", 2.0]`, `[1, "a", 2.0]`},
	}
	for _, tt := range tests {
		expectOutput(t, "math "+tt.expr, tt.expected)
	}
}

func TestTemplates(t *testing.T) {
	expectOutput(t, "var name = \"Ann\"\nsay \"Hello, ${name}! ${1 + 2}\"", "Hello, Ann! 3\n")
	expectOutput(t, "var n = 2\nsay Total: ${n * 3}", "Total: 6\n")
	expectOutput(t, "var p = (\"x\": 4)\nsay \"x is ${p[\"x\"]}\"", "x is 4\n")
}

func TestBuiltins(t *testing.T) {
	tests := []struct {
		expr     string
		expected string
	}{
		{`len("héllo")`, "5"},
		{`int("42") + 1`, "43"},
		{`int(3.9)`, "3"},
		{`float(3)`, "3.0"},
		{`str(12) + "!"`, "12!"},
		{`type(1.5)`, "float"},
		{`type("s")`, "str"},
		{`round(2.5)`, "2"},
		{`round(3.14159, 2)`, "3.14"},
		{`abs(-3)`, "3"},
		{`list("ab")`, `["a", "b"]`},
		{`bool("")`, "false"},
		{`dict()`, "{}"},
		{`range(3)`, "[0, 1, 2]"},
		{`range(5, 1, -2)`, "[5, 3]"},
		{`range(2, 2)`, "[]"},
	}
	for _, tt := range tests {
		expectOutput(t, "math "+tt.expr, tt.expected)
	}
}

func TestStringMethods(t *testing.T) {
	source := `
var s = "a,b"
math s.split(",")
math "Hi".upper()
math "  x ".trim()
math "banana".replace("a", "o")
math "hello".contains("ell")
math "hello".find("l")`
	expectOutput(t, source, "[\"a\", \"b\"]\nHI\nx\nbonono\ntrue\n2\n")
}

// ---- Console ----

func TestInputBindsString(t *testing.T) {
	console := NewStreamConsole(strings.NewReader("Bob\n4\n"), &bytes.Buffer{})
	out, err := runSource("input name\nsay \"Hi ${name}\"\ninput n\nmath n + 1\nmath type(n)", WithConsole(console))
	if err != nil {
		t.Fatal(err)
	}
	if out != "Hi Bob\n41\nstr\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestInputAtEOF(t *testing.T) {
	out, err := runSource("input name\nsay \"[${name}]\"")
	if err != nil {
		t.Fatal(err)
	}
	if out != "[]\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestPauseUsesConsole(t *testing.T) {
	var prompts bytes.Buffer
	console := NewStreamConsole(strings.NewReader("\n"), &prompts)
	out, err := runSource("say 1\npause\nsay 2", WithConsole(console))
	if err != nil {
		t.Fatal(err)
	}
	if out != "1\n2\n" {
		t.Errorf("unexpected output %q", out)
	}
	if prompts.String() != DefaultPausePrompt {
		t.Errorf("unexpected prompt %q", prompts.String())
	}
}

func TestEmptyLine(t *testing.T) {
	out, err := runSource("say \"a\"\nemptyline 2\nsay \"b\"\nemptyline\nemptyline -1")
	if err != nil {
		t.Fatal(err)
	}
	if out != "a\n\n\nb\n\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestHelp(t *testing.T) {
	out, err := runSource("help")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "--- MSlash Help ---") || !strings.Contains(out, "steal <symbol>") {
		t.Errorf("unexpected help output %q", out)
	}
}

// ---- Steal ----

func TestStealLastWins(t *testing.T) {
	out, _, err := runFiles(module.MapLoader{
		"main.mslash": "steal x from f.mslash\nsteal x from g.mslash\nmath x()",
		"f.mslash":    "func x()\n  return 1\nendfunc",
		"g.mslash":    "func x()\n  return 2\nendfunc",
	}, "main.mslash")
	if err != nil {
		t.Fatal(err)
	}
	if out != "2\n" {
		t.Errorf("expected g's definition, got %q", out)
	}
}

func TestStolenFunctionKeepsItsHelpers(t *testing.T) {
	out, _, err := runFiles(module.MapLoader{
		"main.mslash":     "steal greet from lib/util.mslash\nsay greet(\"bob\")",
		"lib/util.mslash": "say \"never runs\"\nfunc greet(n)\n  return prefix() + n\nendfunc\nfunc prefix()\n  return \"hi \"\nendfunc",
	}, "main.mslash")
	if err != nil {
		t.Fatal(err)
	}
	if out != "hi bob\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestStolenClass(t *testing.T) {
	out, _, err := runFiles(module.MapLoader{
		"main.mslash":   "steal Square from shapes.mslash\nvar s = new Square(3)\nmath s.area()",
		"shapes.mslash": "class Square\n  func init(side)\n    var this.side = side\n  endfunc\n  func area()\n    return this.side * this.side\n  endfunc\nendclass",
	}, "main.mslash")
	if err != nil {
		t.Fatal(err)
	}
	if out != "9\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestStealCycleFails(t *testing.T) {
	_, _, err := runFiles(module.MapLoader{
		"a.mslash": "steal g from b.mslash\nfunc f()\nendfunc\nsay 1",
		"b.mslash": "steal f from a.mslash\nfunc g()\nendfunc",
	}, "a.mslash")
	if !diag.Is(err, diag.ImportError, diag.CodeImportCycle) {
		t.Fatalf("expected ImportCycle, got %v", err)
	}
}

// ---- Errors ----

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		kind   diag.Kind
		code   string
	}{
		{"undefined variable", "say x", diag.EvalError, diag.CodeUndefinedVariable},
		{"division", "math 1 / 0", diag.EvalError, diag.CodeDivisionByZero},
		{"modulo", "math 1 % 0", diag.EvalError, diag.CodeDivisionByZero},
		{"operands", "math 1 + [1]", diag.EvalError, diag.CodeTypeMismatch},
		{"index", "var a = [1]\nmath a[3]", diag.EvalError, diag.CodeIndexOutOfRange},
		{"field", "class C\nendclass\nvar c = new C()\nsay c.v", diag.EvalError, diag.CodeUndefinedField},
		{"loop count", "loop \"a\"\nendloop", diag.EvalError, diag.CodeTypeMismatch},
		{"builtin type", "math len(1)", diag.EvalError, diag.CodeTypeMismatch},
		{"builtin value", "math int(\"x\")", diag.EvalError, diag.CodeInvalidArgument},
		{"builtin arity", "math len()", diag.CallError, diag.CodeArityMismatch},
		{"range step", "math range(1, 5, 0)", diag.EvalError, diag.CodeInvalidArgument},
		{"arity", "func f(a)\nendfunc\nf(1, 2)", diag.CallError, diag.CodeArityMismatch},
		{"init arity", "class C\nendclass\nvar c = new C(1)", diag.CallError, diag.CodeArityMismatch},
		{"undefined function", "nope()", diag.CallError, diag.CodeUndefinedFunction},
		{"undefined class", "var o = new Missing()", diag.CallError, diag.CodeUndefinedClass},
		{"undefined method", "class C\nendclass\nvar c = new C()\nc.go()", diag.CallError, diag.CodeUndefinedMethod},
		{"list method", "var a = []\na.fly()", diag.CallError, diag.CodeUndefinedMethod},
		{"not callable", "var x = 1\nx()", diag.CallError, diag.CodeNotCallable},
		{"class call", "class C\nendclass\nC()", diag.CallError, diag.CodeNotCallable},
		{"recursion", "func f(n)\n  return f(n + 1)\nendfunc\nmath f(0)", diag.CallError, diag.CodeRecursionLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, tt.source, tt.kind, tt.code)
		})
	}
}

func TestErrorCarriesLocation(t *testing.T) {
	err := expectError(t, "say 1\n\n   math 1 / 0", diag.EvalError, diag.CodeDivisionByZero)
	if err.Span.Start.Line != 3 || err.Span.Start.File != "main.mslash" {
		t.Errorf("expected main.mslash line 3, got %s", err.Span.Start)
	}
	if !strings.HasPrefix(err.Error(), "main.mslash:3:") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestErrorStopsExecution(t *testing.T) {
	out, err := runSource("say 1\nsay missing\nsay 2")
	if err == nil {
		t.Fatal("expected an error")
	}
	if out != "1\n" {
		t.Errorf("statements after the error must not run, got %q", out)
	}
}

func TestSyntaxErrorPreventsExecution(t *testing.T) {
	out, err := runSource("say 1\nloop 2\nsay 2")
	if !diag.Is(err, diag.SyntaxError, diag.CodeUnclosedBlock) {
		t.Fatalf("expected UnclosedBlock, got %v", err)
	}
	if out != "" {
		t.Errorf("nothing should run, got %q", out)
	}
}

func TestMaxDepthOption(t *testing.T) {
	source := "func f(n)\n  if n == 0\n    return 0\n  endif\n  return f(n - 1)\nendfunc\nmath f(20)"
	if _, err := runSource(source, WithMaxDepth(10)); !diag.Is(err, diag.CallError, diag.CodeRecursionLimit) {
		t.Fatalf("expected RecursionLimit, got %v", err)
	}
	expectOutput(t, source, "0\n")
}

func TestMapRejectsNaNKey(t *testing.T) {
	expectError(t, "var k = float(\"nan\")\nvar m = (k: 1)", diag.EvalError, diag.CodeTypeMismatch)
	err := expectError(t, "var k = float(\"nan\")\nvar m = ()\nvar m[k] = 2\nsay m", diag.EvalError, diag.CodeTypeMismatch)
	if err.Span.Start.Line != 3 {
		t.Errorf("expected line 3, got %s", err.Span.Start)
	}
	expectError(t, "var m = (\"a\": 1)\nmath m.has(float(\"nan\"))", diag.EvalError, diag.CodeTypeMismatch)
}

func TestMapNumericKeysMatchByValue(t *testing.T) {
	source := `
var m = (1: "a")
math m[1.0]
var m[2.0] = "b"
math m.has(2)
math m`
	expectOutput(t, source, "a\ntrue\n{1: \"a\", 2: \"b\"}\n")
}

func TestRepeatTooLarge(t *testing.T) {
	err := expectError(t, `math "ab" * 9000000000000000000`, diag.EvalError, diag.CodeInvalidArgument)
	if err.Span.Start.Line != 1 {
		t.Errorf("expected a located error, got %s", err.Span.Start)
	}
	expectError(t, "math [1, 2] * 9000000000000000000", diag.EvalError, diag.CodeInvalidArgument)
	expectError(t, "math 9000000000000000000 * \"ab\"", diag.EvalError, diag.CodeInvalidArgument)
	expectOutput(t, "math \"\" * 9000000000000000000\nmath [] * 9000000000000000000", "\n[]\n")
}

func TestSayBareWordIsAVariable(t *testing.T) {
	expectError(t, "say Done", diag.EvalError, diag.CodeUndefinedVariable)
	expectOutput(t, "say Done now", "Done now\n")
	expectOutput(t, "var Done = \"finished\"\nsay Done", "finished\n")
}

func TestEnvHoldsTopLevelBindings(t *testing.T) {
	source := "var x = 4\nfunc f()\n  var local = 1\nendfunc\nf()"
	_, interp, err := runFiles(module.MapLoader{"main.mslash": source}, "main.mslash")
	if err != nil {
		t.Fatal(err)
	}
	if val, ok := interp.Env().Get("x"); !ok || val != IntVal(4) {
		t.Errorf("expected x = 4, got %v (bound %v)", val, ok)
	}
	if _, ok := interp.Env().Get("local"); ok {
		t.Error("function locals must not reach the top-level scope")
	}
	if names := interp.Env().Names(); len(names) != 1 || names[0] != "x" {
		t.Errorf("unexpected top-level names %v", names)
	}
}
