package pyparser

import "fmt"

// Kind is the lexical class of a token.
type Kind int

const (
	EOF Kind = iota
	Name
	Number
	String
	Op
	Newline
	Indent
	Dedent
)

var kindNames = [...]string{
	EOF:     "EOF",
	Name:    "NAME",
	Number:  "NUMBER",
	String:  "STRING",
	Op:      "OP",
	Newline: "NEWLINE",
	Indent:  "INDENT",
	Dedent:  "DEDENT",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is one lexical token. Line is 1-based, Col is a 0-based byte offset
// within the line.
type Token struct {
	Kind Kind
	Text string
	Line int
	Col  int
}

func (t Token) String() string {
	if t.Text == "" {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}

// keywords are the hard keywords of Python 3. Soft keywords (match, case,
// type, _) are ordinary names to the tokenizer.
var keywords = map[string]bool{
	"False": true, "None": true, "True": true,
	"and": true, "as": true, "assert": true, "async": true, "await": true,
	"break": true, "class": true, "continue": true, "def": true, "del": true,
	"elif": true, "else": true, "except": true, "finally": true, "for": true,
	"from": true, "global": true, "if": true, "import": true, "in": true,
	"is": true, "lambda": true, "nonlocal": true, "not": true, "or": true,
	"pass": true, "raise": true, "return": true, "try": true, "while": true,
	"with": true, "yield": true,
}

// IsKeyword reports whether name is a hard Python keyword.
func IsKeyword(name string) bool { return keywords[name] }

// Operators by length, longest first so the scanner can match greedily.
var (
	ops3 = []string{"**=", "//=", ">>=", "<<=", "..."}
	ops2 = []string{
		"->", ":=", "**", "//", "<<", ">>", "<=", ">=", "==", "!=",
		"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "@=",
	}
	ops1 = "+-*/%@&|^~<>()[]{},:.;="
)

var augAssignOps = map[string]bool{
	"+=": true, "-=": true, "*=": true, "/=": true, "//=": true, "%=": true,
	"@=": true, "&=": true, "|=": true, "^=": true, ">>=": true, "<<=": true,
	"**=": true,
}

// Error is a syntax error in a Python source file.
type Error struct {
	Filename string
	Line     int // 1-based
	Col      int // 0-based
	Msg      string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: syntax error: %s", e.Filename, e.Line, e.Col+1, e.Msg)
}
