package rules

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxLineLength is the longest stripped line that passes CodeLength.
const MaxLineLength = 79

// space matches the characters Python's str.isspace accepts, which is what
// the naming heuristics were written against. Go's \s is ASCII only.
const space = `[\t\n\v\f\r\x{1c}-\x{1f}\x{85}\p{Z}]`

var (
	classSpaces = regexp.MustCompile(`^class` + space + `{2,}`)
	defSpaces   = regexp.MustCompile(`^def` + space + `{2,}`)
	className   = regexp.MustCompile(`^class` + space + `+[A-Z]`)
	funcName    = regexp.MustCompile(`^def` + space + `+[^A-Z]`)
)

// LineCheck pairs a rule code with its per-line predicate.
type LineCheck struct {
	Code  Code
	Check func(line string) string
}

// LineChecks returns the per-line checks in the order they are applied.
// CodeBlankLines is not included; it depends on preceding lines and is
// tracked by BlankRun.
func LineChecks() []LineCheck {
	return []LineCheck{
		{CodeLength, CheckLength},
		{CodeIndentation, CheckIndentation},
		{CodeSemicolon, CheckSemicolon},
		{CodeInlineComment, CheckInlineComment},
		{CodeTodo, CheckTodo},
		{CodeConstructionSpaces, CheckConstructionSpaces},
		{CodeClassName, CheckClassName},
		{CodeFuncName, CheckFuncName},
	}
}

// CheckLine runs every per-line check against a non-blank line and returns
// the codes of the rules it violates, in application order.
func CheckLine(line string) []Code {
	var codes []Code
	for _, lc := range LineChecks() {
		if lc.Check(line) != "" {
			codes = append(codes, lc.Code)
		}
	}
	return codes
}

// CheckLength flags lines longer than MaxLineLength characters once leading
// and trailing whitespace is removed.
func CheckLength(line string) string {
	if utf8.RuneCountInString(strip(line)) > MaxLineLength {
		return CodeLength.Message()
	}
	return ""
}

// CheckIndentation flags space-indented lines whose indentation width is
// not a multiple of four. Lines with non-ASCII content are skipped.
func CheckIndentation(line string) string {
	content := strip(line)
	if content == "" || !isASCII(content) || !strings.HasPrefix(line, " ") {
		return ""
	}
	width := utf8.RuneCountInString(line[:strings.Index(line, content)])
	if width%4 != 0 {
		return CodeIndentation.Message()
	}
	return ""
}

// CheckSemicolon flags a semicolon that is not inside a comment, not
// directly followed by a trailing comment and not between the first and last
// occurrence of a quote character. Only the first semicolon on the line is
// considered.
func CheckSemicolon(line string) string {
	semi := strings.IndexByte(line, ';')
	if semi < 0 {
		return ""
	}
	if hash := strings.IndexByte(line, '#'); hash >= 0 && hash < semi {
		return ""
	}
	if strings.HasPrefix(lstrip(line[semi+1:]), "#") {
		return ""
	}
	if betweenQuotes(line, semi, '"') || betweenQuotes(line, semi, '\'') {
		return ""
	}
	return CodeSemicolon.Message()
}

// CheckInlineComment flags an inline comment preceded by fewer than two
// spaces. Full-line comments are exempt.
func CheckInlineComment(line string) string {
	hash := strings.IndexByte(line, '#')
	if hash < 0 || strings.HasPrefix(lstrip(line), "#") {
		return ""
	}
	if hash < 2 || line[hash-2:hash] != "  " {
		return CodeInlineComment.Message()
	}
	return ""
}

// CheckTodo flags a case-insensitive "todo" that follows a comment marker.
func CheckTodo(line string) string {
	lower := strings.ToLower(line)
	hash := strings.IndexByte(lower, '#')
	todo := strings.Index(lower, "todo")
	if hash >= 0 && todo >= 0 && hash < todo {
		return CodeTodo.Message()
	}
	return ""
}

// CheckConstructionSpaces flags two or more spaces after "class" at the
// start of the line or after "def" at the start of the indented content.
func CheckConstructionSpaces(line string) string {
	if classSpaces.MatchString(line) || defSpaces.MatchString(lstrip(line)) {
		return CodeConstructionSpaces.Message()
	}
	return ""
}

// CheckClassName flags any line mentioning "class" that does not start a
// class statement with a capitalised name.
func CheckClassName(line string) string {
	if strings.Contains(line, "class") && !className.MatchString(line) {
		return CodeClassName.Message()
	}
	return ""
}

// CheckFuncName flags any line mentioning "def" whose content does not start
// a function definition with a lowercase-first name.
func CheckFuncName(line string) string {
	if strings.Contains(line, "def") && !funcName.MatchString(lstrip(line)) {
		return CodeFuncName.Message()
	}
	return ""
}

// IsBlank reports whether line holds only whitespace.
func IsBlank(line string) bool { return strip(line) == "" }

// SplitLines splits src into physical lines without their terminators. A
// trailing "\r" is dropped so CRLF files read like LF files. The final empty
// element produced by a trailing newline is not a line.
func SplitLines(src []byte) []string {
	if len(src) == 0 {
		return nil
	}
	lines := strings.Split(string(src), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func betweenQuotes(line string, at int, quote byte) bool {
	first := strings.IndexByte(line, quote)
	last := strings.LastIndexByte(line, quote)
	return first >= 0 && first <= at && at < last
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

func strip(s string) string  { return strings.TrimFunc(s, isSpace) }
func lstrip(s string) string { return strings.TrimLeftFunc(s, isSpace) }

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > unicode.MaxASCII {
			return false
		}
	}
	return true
}
