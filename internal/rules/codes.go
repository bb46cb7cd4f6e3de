// Package rules implements the per-line style checks of pystyle and the
// fixed table of rule codes shared by every checker.
//
// Each line check is a pure function of one physical line. A check returns
// the rule's message when the line violates it and the empty string
// otherwise, so callers can use the result directly as diagnostic text.
package rules

// Code identifies a style rule, e.g. "S001".
type Code string

// Rule codes, in the order their checks are documented.
const (
	CodeLength             Code = "S001"
	CodeIndentation        Code = "S002"
	CodeSemicolon          Code = "S003"
	CodeInlineComment      Code = "S004"
	CodeTodo               Code = "S005"
	CodeBlankLines         Code = "S006"
	CodeConstructionSpaces Code = "S007"
	CodeClassName          Code = "S008"
	CodeFuncName           Code = "S009"
	CodeArgName            Code = "S010"
	CodeVarName            Code = "S011"
	CodeMutableDefault     Code = "S012"
)

// Codes returns every known rule code in ascending order.
func Codes() []Code {
	return []Code{
		CodeLength,
		CodeIndentation,
		CodeSemicolon,
		CodeInlineComment,
		CodeTodo,
		CodeBlankLines,
		CodeConstructionSpaces,
		CodeClassName,
		CodeFuncName,
		CodeArgName,
		CodeVarName,
		CodeMutableDefault,
	}
}

// Message returns the fixed human-readable message for c, or "" for an
// unknown code.
func (c Code) Message() string {
	switch c {
	case CodeLength:
		return "Too long"
	case CodeIndentation:
		return "Indentation is not a multiple of four"
	case CodeSemicolon:
		return "Unnecessary semicolon"
	case CodeInlineComment:
		return "Less than two spaces before inline comments"
	case CodeTodo:
		return "TODO found"
	case CodeBlankLines:
		return "More than two blank lines preceding a code line"
	case CodeConstructionSpaces:
		return "Too many spaces after construction_name"
	case CodeClassName:
		return "Class name class_name should be written in CamelCase"
	case CodeFuncName:
		return "Function name function_name should be written in snake_case"
	case CodeArgName:
		return "Argument name arg_name should be written in snake_case"
	case CodeVarName:
		return "Variable var_name should be written in snake_case"
	case CodeMutableDefault:
		return "The default argument value is mutable"
	}
	return ""
}

// Valid reports whether c is one of the known rule codes.
func (c Code) Valid() bool { return c.Message() != "" }

func (c Code) String() string { return string(c) }
