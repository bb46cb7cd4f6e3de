package rules_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/Wladim1r/pystyle/internal/rules"
)

type lineCase struct {
	name    string
	line    string
	wantErr bool
}

func runLineCases(t *testing.T, fn string, check func(string) string, tests []lineCase) {
	t.Helper()
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := check(tc.line)
			if (got != "") != tc.wantErr {
				t.Errorf("%s(%q) = %q, wantErr=%v", fn, tc.line, got, tc.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// CheckLength
// ---------------------------------------------------------------------------

func TestCheckLength(t *testing.T) {
	t.Parallel()

	runLineCases(t, "CheckLength", rules.CheckLength, []lineCase{
		{"short", "x = 1", false},
		{"exactly limit", strings.Repeat("a", 79), false},
		{"one over limit", strings.Repeat("a", 80), true},
		{"surrounding whitespace ignored", "    " + strings.Repeat("a", 79) + "   ", false},
		{"multibyte counted as characters", strings.Repeat("é", 79), false},
		{"multibyte over limit", strings.Repeat("é", 80), true},
	})
}

// ---------------------------------------------------------------------------
// CheckIndentation
// ---------------------------------------------------------------------------

func TestCheckIndentation(t *testing.T) {
	t.Parallel()

	runLineCases(t, "CheckIndentation", rules.CheckIndentation, []lineCase{
		{"no indentation", "x = 1", false},
		{"four spaces", "    x = 1", false},
		{"eight spaces", "        return x", false},
		{"two spaces", "  x = 1", true},
		{"five spaces", "     y = 2", true},
		{"tab is not checked", "\tx = 1", false},
		{"non-ascii content skipped", "   é = 1", false},
	})
}

// ---------------------------------------------------------------------------
// CheckSemicolon
// ---------------------------------------------------------------------------

func TestCheckSemicolon(t *testing.T) {
	t.Parallel()

	runLineCases(t, "CheckSemicolon", rules.CheckSemicolon, []lineCase{
		{"trailing semicolon", "x = 1;", true},
		{"semicolon before comment", "x = 1;  # comment", false},
		{"semicolon right before comment", "x = 1;# comment", false},
		{"semicolon before code and comment", "x = 1; y = 2  # comment", true},
		{"semicolon inside comment", "x = 1  # a; b", false},
		{"inside double quotes", `print("a;b")`, false},
		{"inside single quotes", `print('a;b')`, false},
		{"after single quoted string", "x = 'a'; y = 1", true},
		{"between outer quotes of two strings", `print("a"); x = "b"`, false},
		{"no semicolon", "x = 1", false},
	})
}

// ---------------------------------------------------------------------------
// CheckInlineComment
// ---------------------------------------------------------------------------

func TestCheckInlineComment(t *testing.T) {
	t.Parallel()

	runLineCases(t, "CheckInlineComment", rules.CheckInlineComment, []lineCase{
		{"two spaces", "x = 1  # ok", false},
		{"one space", "x = 1 # bad", true},
		{"no space", "x = 1# bad", true},
		{"full line comment", "# full line", false},
		{"indented full line comment", "    # indented", false},
		{"full line comment without space", "#x", false},
		{"marker at second column", "a#", true},
		{"no comment", "x = 1", false},
	})
}

// ---------------------------------------------------------------------------
// CheckTodo
// ---------------------------------------------------------------------------

func TestCheckTodo(t *testing.T) {
	t.Parallel()

	runLineCases(t, "CheckTodo", rules.CheckTodo, []lineCase{
		{"upper case", "# TODO fix this", true},
		{"inline lower case", "x = 1  # todo", true},
		{"mixed case", "# ToDo", true},
		{"todo before marker", "todo = 1  # note", false},
		{"no marker", "todo_list = []", false},
		{"no todo", "x = 1  # fine", false},
	})
}

// ---------------------------------------------------------------------------
// CheckConstructionSpaces
// ---------------------------------------------------------------------------

func TestCheckConstructionSpaces(t *testing.T) {
	t.Parallel()

	runLineCases(t, "CheckConstructionSpaces", rules.CheckConstructionSpaces, []lineCase{
		{"def two spaces", "def  foo(x):", true},
		{"def one space", "def foo(x):", false},
		{"indented def two spaces", "    def  bar(self):", true},
		{"class two spaces", "class  Foo:", true},
		{"class one space", "class Foo:", false},
		{"indented class is anchored on line start", "    class  Foo:", false},
	})
}

// ---------------------------------------------------------------------------
// CheckClassName
// ---------------------------------------------------------------------------

func TestCheckClassName(t *testing.T) {
	t.Parallel()

	runLineCases(t, "CheckClassName", rules.CheckClassName, []lineCase{
		{"camel case", "class Foo:", false},
		{"with bases", "class Foo(Base):", false},
		{"lower case", "class foo:", true},
		{"word inside another line", "x = subclass", true},
		{"indented class", "    class Inner:", true},
		{"unrelated line", "x = 1", false},
	})
}

// ---------------------------------------------------------------------------
// CheckFuncName
// ---------------------------------------------------------------------------

func TestCheckFuncName(t *testing.T) {
	t.Parallel()

	runLineCases(t, "CheckFuncName", rules.CheckFuncName, []lineCase{
		{"snake case", "def foo():", false},
		{"indented method", "    def bar(self):", false},
		{"upper case", "def Foo():", true},
		{"substring in other statement", "    return default", true},
		{"extra space before upper case name", "def  Foo():", false},
		{"unrelated line", "x = 1", false},
	})
}

// ---------------------------------------------------------------------------
// CheckLine
// ---------------------------------------------------------------------------

func TestCheckLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want []rules.Code
	}{
		{"clean", "x = 1", nil},
		{"semicolon before comment", "x = 1;  # comment", nil},
		{"double space after def", "def  foo(x):", []rules.Code{rules.CodeConstructionSpaces}},
		{
			"several rules in order",
			"  x = 1; y = 2 # todo",
			[]rules.Code{rules.CodeIndentation, rules.CodeSemicolon, rules.CodeInlineComment, rules.CodeTodo},
		},
		{
			"semicolon before short comment",
			"  x = 1; # todo",
			[]rules.Code{rules.CodeIndentation, rules.CodeInlineComment, rules.CodeTodo},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := rules.CheckLine(tc.line); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("CheckLine(%q) = %v, want %v", tc.line, got, tc.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// BlankRun
// ---------------------------------------------------------------------------

func TestBlankRun_FloorOfRunLength(t *testing.T) {
	t.Parallel()

	for n := 0; n <= 10; n++ {
		var run rules.BlankRun
		fired := 0
		for i := 0; i < n; i++ {
			if run.Next("   ") {
				fired++
			}
		}
		if run.Next("x = 1") {
			fired++
		}
		if fired != n/3 {
			t.Errorf("%d blank lines: fired %d times, want %d", n, fired, n/3)
		}
	}
}

func TestBlankRun_Positions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lines []string
		want  []int
	}{
		{"three blanks then code", []string{"", "", "", "x = 1"}, []int{3}},
		{"four blanks flag the fourth", []string{"", "", "", "", "x = 1"}, []int{3}},
		{"two blanks", []string{"", "", "x = 1"}, nil},
		{"interrupted run", []string{"", "", "y", "", "", "x"}, nil},
		{"trailing blanks at end of file", []string{"x", "", "", ""}, nil},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var run rules.BlankRun
			var got []int
			for i, l := range tc.lines {
				if run.Next(l) {
					got = append(got, i)
				}
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("fired at %v, want %v", got, tc.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Codes and SplitLines
// ---------------------------------------------------------------------------

func TestCodes_HaveMessages(t *testing.T) {
	t.Parallel()

	codes := rules.Codes()
	if len(codes) != 12 {
		t.Fatalf("expected 12 codes, got %d", len(codes))
	}
	for _, c := range codes {
		if !c.Valid() {
			t.Errorf("code %s has no message", c)
		}
	}
	codes[0] = "S999"
	if rules.Codes()[0] != rules.CodeLength {
		t.Error("Codes must return a fresh slice")
	}
	if rules.Code("S999").Valid() {
		t.Error("unknown code reported as valid")
	}
}

func TestSplitLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"empty", "", nil},
		{"single newline", "\n", []string{""}},
		{"no trailing newline", "a\nb", []string{"a", "b"}},
		{"trailing newline", "a\nb\n", []string{"a", "b"}},
		{"crlf", "a\r\n\r\nb\r\n", []string{"a", "", "b"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := rules.SplitLines([]byte(tc.src)); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("SplitLines(%q) = %q, want %q", tc.src, got, tc.want)
			}
		})
	}
}
