// Package pyparser parses Python 3 source into a pyast.Module.
//
// The parser is a hand-written recursive descent over the token stream
// produced by Tokenize. It accepts the statement and expression grammar of
// current CPython releases closely enough to reject what CPython rejects in
// everyday code, and to give every assignment target, parameter and default
// value its exact line. Match patterns and type parameter lists are
// recognised but not kept in the tree.
package pyparser

import (
	"fmt"

	"github.com/Wladim1r/pystyle/internal/pyast"
)

// The parser stops at the first error by panicking with a bailout, which
// ParseFile recovers.
type bailout struct{ err *Error }

type parser struct {
	filename string
	toks     []Token
	pos      int
	tok      Token
}

// ParseFile parses the Python source src. The filename is only used in
// error messages. Errors are of type *Error.
func ParseFile(filename string, src []byte) (mod *pyast.Module, err error) {
	toks, err := Tokenize(filename, src)
	if err != nil {
		return nil, err
	}
	p := &parser{filename: filename, toks: toks, tok: toks[0]}
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			mod, err = nil, b.err
		}
	}()
	return p.parseModule(), nil
}

// ----------------------------------------------------------------------------
// Token helpers

func (p *parser) next() Token {
	tok := p.tok
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	p.tok = p.toks[p.pos]
	return tok
}

func (p *parser) peek() Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) reset(pos int) {
	p.pos = pos
	p.tok = p.toks[pos]
}

func (p *parser) isOp(text string) bool {
	return p.tok.Kind == Op && p.tok.Text == text
}

func (p *parser) isKeyword(text string) bool {
	return p.tok.Kind == Name && p.tok.Text == text
}

func (p *parser) errorf(tok Token, format string, args ...any) {
	panic(bailout{&Error{
		Filename: p.filename,
		Line:     tok.Line,
		Col:      tok.Col,
		Msg:      fmt.Sprintf(format, args...),
	}})
}

func (p *parser) syntaxError() {
	switch p.tok.Kind {
	case Indent:
		p.errorf(p.tok, "unexpected indent")
	case EOF:
		p.errorf(p.tok, "unexpected EOF while parsing")
	}
	p.errorf(p.tok, "invalid syntax")
}

func (p *parser) expectOp(text string) Token {
	if !p.isOp(text) {
		if p.tok.Kind == Op || p.tok.Kind == Newline {
			p.errorf(p.tok, "expected '%s'", text)
		}
		p.syntaxError()
	}
	return p.next()
}

func (p *parser) expectKeyword(text string) Token {
	if !p.isKeyword(text) {
		p.errorf(p.tok, "expected '%s'", text)
	}
	return p.next()
}

func (p *parser) expect(kind Kind) Token {
	if p.tok.Kind != kind {
		if kind == Indent {
			p.errorf(p.tok, "expected an indented block")
		}
		p.syntaxError()
	}
	return p.next()
}

func (p *parser) expectName() Token {
	if p.tok.Kind != Name || keywords[p.tok.Text] {
		p.syntaxError()
	}
	return p.next()
}

// try runs f and reports whether it completed. On failure the token
// position is restored.
func (p *parser) try(f func()) (ok bool) {
	start := p.pos
	defer func() {
		if r := recover(); r != nil {
			if _, isBailout := r.(bailout); !isBailout {
				panic(r)
			}
			p.reset(start)
			ok = false
		}
	}()
	f()
	return true
}

func posOf(tok Token) pyast.Pos { return pyast.Pos{Line: tok.Line, Col: tok.Col} }

// ----------------------------------------------------------------------------
// Statements

func (p *parser) parseModule() *pyast.Module {
	mod := &pyast.Module{}
	for p.tok.Kind != EOF {
		mod.Body = append(mod.Body, p.parseStatement()...)
	}
	return mod
}

func (p *parser) parseStatement() []pyast.Stmt {
	switch p.tok.Kind {
	case Indent:
		p.errorf(p.tok, "unexpected indent")
	case Dedent, Newline:
		p.syntaxError()
	case Op:
		if p.isOp("@") {
			return []pyast.Stmt{p.parseDecorated()}
		}
	case Name:
		switch p.tok.Text {
		case "if":
			return []pyast.Stmt{p.parseIf()}
		case "while":
			return []pyast.Stmt{p.parseWhile()}
		case "for":
			return []pyast.Stmt{p.parseFor(p.tok, false)}
		case "try":
			return []pyast.Stmt{p.parseTry()}
		case "with":
			return []pyast.Stmt{p.parseWith(p.tok, false)}
		case "def":
			return []pyast.Stmt{p.parseFuncDef(nil, p.tok, false)}
		case "class":
			return []pyast.Stmt{p.parseClassDef(nil)}
		case "async":
			return []pyast.Stmt{p.parseAsync(nil)}
		case "match":
			if s := p.tryMatch(); s != nil {
				return []pyast.Stmt{s}
			}
		}
	}
	return p.parseSimpleStmts()
}

// parseSimpleStmts parses `small (';' small)* [';'] NEWLINE`.
func (p *parser) parseSimpleStmts() []pyast.Stmt {
	var list []pyast.Stmt
	for {
		list = append(list, p.parseSmallStmt())
		if !p.isOp(";") {
			break
		}
		p.next()
		if p.tok.Kind == Newline {
			break
		}
	}
	p.expect(Newline)
	return list
}

// parseBlock parses ':' followed by an indented suite or by simple
// statements on the same line.
func (p *parser) parseBlock() []pyast.Stmt {
	p.expectOp(":")
	if p.tok.Kind != Newline {
		return p.parseSimpleStmts()
	}
	p.next()
	p.expect(Indent)
	var body []pyast.Stmt
	for p.tok.Kind != Dedent && p.tok.Kind != EOF {
		body = append(body, p.parseStatement()...)
	}
	p.expect(Dedent)
	return body
}

func (p *parser) parseIf() *pyast.If {
	tok := p.next() // "if" or "elif"
	n := &pyast.If{Pos: posOf(tok), Test: p.parseNamedExpr()}
	n.Body = p.parseBlock()
	switch {
	case p.isKeyword("elif"):
		n.Orelse = []pyast.Stmt{p.parseIf()}
	case p.isKeyword("else"):
		p.next()
		n.Orelse = p.parseBlock()
	}
	return n
}

func (p *parser) parseWhile() *pyast.While {
	tok := p.next()
	n := &pyast.While{Pos: posOf(tok), Test: p.parseNamedExpr()}
	n.Body = p.parseBlock()
	if p.isKeyword("else") {
		p.next()
		n.Orelse = p.parseBlock()
	}
	return n
}

func (p *parser) parseFor(start Token, async bool) *pyast.For {
	p.expectKeyword("for")
	n := &pyast.For{Pos: posOf(start), Async: async}
	n.Target = p.parseTargetList()
	p.expectKeyword("in")
	n.Iter = p.parseSequence(p.parseStarOrTest)
	n.Body = p.parseBlock()
	if p.isKeyword("else") {
		p.next()
		n.Orelse = p.parseBlock()
	}
	return n
}

func (p *parser) parseTry() *pyast.Try {
	tok := p.next()
	n := &pyast.Try{Pos: posOf(tok), Body: p.parseBlock()}
	for p.isKeyword("except") {
		htok := p.next()
		h := &pyast.ExceptHandler{Pos: posOf(htok)}
		if p.isOp("*") {
			p.next()
			n.Star = true
		}
		if !p.isOp(":") {
			h.Type = p.parseSequence(p.parseTest)
			if p.isKeyword("as") {
				p.next()
				h.Name = p.expectName().Text
			}
		}
		h.Body = p.parseBlock()
		n.Handlers = append(n.Handlers, h)
	}
	if p.isKeyword("else") {
		if len(n.Handlers) == 0 {
			p.errorf(p.tok, "expected 'except' or 'finally' block")
		}
		p.next()
		n.Orelse = p.parseBlock()
	}
	if p.isKeyword("finally") {
		p.next()
		n.Finalbody = p.parseBlock()
	}
	if len(n.Handlers) == 0 && n.Finalbody == nil {
		p.errorf(p.tok, "expected 'except' or 'finally' block")
	}
	return n
}

func (p *parser) parseWith(start Token, async bool) *pyast.With {
	p.expectKeyword("with")
	n := &pyast.With{Pos: posOf(start), Async: async}

	// `with (a as b, c as d):` is tried first; on failure the parenthesis
	// belongs to the first context expression.
	if p.isOp("(") {
		p.try(func() {
			p.next()
			items := []*pyast.WithItem{p.parseWithItem()}
			for p.isOp(",") {
				p.next()
				if p.isOp(")") {
					break
				}
				items = append(items, p.parseWithItem())
			}
			p.expectOp(")")
			if !p.isOp(":") {
				p.syntaxError()
			}
			n.Items = items
		})
	}
	if n.Items == nil {
		n.Items = []*pyast.WithItem{p.parseWithItem()}
		for p.isOp(",") {
			p.next()
			n.Items = append(n.Items, p.parseWithItem())
		}
	}
	n.Body = p.parseBlock()
	return n
}

func (p *parser) parseWithItem() *pyast.WithItem {
	item := &pyast.WithItem{Context: p.parseTest()}
	if p.isKeyword("as") {
		p.next()
		item.Vars = p.parseStarOrBitOr()
		p.setContext(item.Vars, pyast.Store)
	}
	return item
}

func (p *parser) parseDecorated() pyast.Stmt {
	var decorators []pyast.Expr
	for p.isOp("@") {
		p.next()
		decorators = append(decorators, p.parseNamedExpr())
		p.expect(Newline)
	}
	switch {
	case p.isKeyword("def"):
		return p.parseFuncDef(decorators, p.tok, false)
	case p.isKeyword("class"):
		return p.parseClassDef(decorators)
	case p.isKeyword("async"):
		return p.parseAsync(decorators)
	}
	p.syntaxError()
	return nil
}

func (p *parser) parseAsync(decorators []pyast.Expr) pyast.Stmt {
	tok := p.next()
	switch {
	case p.isKeyword("def"):
		return p.parseFuncDef(decorators, tok, true)
	case decorators != nil:
	case p.isKeyword("for"):
		return p.parseFor(tok, true)
	case p.isKeyword("with"):
		return p.parseWith(tok, true)
	}
	p.syntaxError()
	return nil
}

func (p *parser) parseFuncDef(decorators []pyast.Expr, start Token, async bool) *pyast.FunctionDef {
	p.expectKeyword("def")
	name := p.expectName()
	n := &pyast.FunctionDef{
		Pos:        posOf(start),
		Name:       name.Text,
		Async:      async,
		Decorators: decorators,
	}
	if p.isOp("[") {
		p.skipTypeParams()
	}
	p.expectOp("(")
	n.Args = p.parseParams(")", true)
	p.expectOp(")")
	if p.isOp("->") {
		p.next()
		n.Returns = p.parseTest()
	}
	n.Body = p.parseBlock()
	return n
}

func (p *parser) parseClassDef(decorators []pyast.Expr) *pyast.ClassDef {
	tok := p.expectKeyword("class")
	name := p.expectName()
	n := &pyast.ClassDef{Pos: posOf(tok), Name: name.Text, Decorators: decorators}
	if p.isOp("[") {
		p.skipTypeParams()
	}
	if p.isOp("(") {
		p.next()
		args, kws := p.parseCallArgs()
		p.expectOp(")")
		n.Bases = args
		for _, kw := range kws {
			n.Bases = append(n.Bases, kw.Value)
		}
	}
	n.Body = p.parseBlock()
	return n
}

// skipTypeParams skips a `[T, *Ts, **P]` list; brackets are balanced by
// the tokenizer.
func (p *parser) skipTypeParams() {
	open := p.expectOp("[")
	if p.isOp("]") {
		p.errorf(open, "type parameter list cannot be empty")
	}
	for depth := 1; depth > 0; {
		switch {
		case p.isOp("[") || p.isOp("(") || p.isOp("{"):
			depth++
		case p.isOp("]") || p.isOp(")") || p.isOp("}"):
			depth--
		case p.tok.Kind == EOF:
			p.syntaxError()
		}
		p.next()
	}
}

// tryMatch parses a match statement, or returns nil when "match" is used
// as a plain name.
func (p *parser) tryMatch() pyast.Stmt {
	var n *pyast.Match
	header := p.try(func() {
		tok := p.next()
		subject := p.parseSequence(p.parseStarOrNamedExpr)
		p.expectOp(":")
		p.expect(Newline)
		p.expect(Indent)
		if !p.isKeyword("case") {
			p.syntaxError()
		}
		n = &pyast.Match{Pos: posOf(tok), Subject: subject}
	})
	if !header {
		return nil
	}
	for p.isKeyword("case") {
		tok := p.next()
		c := &pyast.MatchCase{Pos: posOf(tok)}
		c.Guard = p.skipPattern()
		c.Body = p.parseBlock()
		n.Cases = append(n.Cases, c)
	}
	p.expect(Dedent)
	return n
}

// skipPattern skips a case pattern up to its ':' and returns the guard
// expression, if any.
func (p *parser) skipPattern() pyast.Expr {
	start := p.tok
	depth := 0
	for {
		switch {
		case p.tok.Kind == Newline || p.tok.Kind == EOF:
			p.syntaxError()
		case p.isOp("(") || p.isOp("[") || p.isOp("{"):
			depth++
		case p.isOp(")") || p.isOp("]") || p.isOp("}"):
			depth--
		case depth == 0 && p.isOp(":"):
			if p.tok == start {
				p.syntaxError()
			}
			return nil
		case depth == 0 && p.isKeyword("if"):
			p.next()
			return p.parseNamedExpr()
		}
		p.next()
	}
}

func (p *parser) isTypeAlias() bool {
	if !p.isKeyword("type") {
		return false
	}
	name := p.peek()
	if name.Kind != Name || keywords[name.Text] || p.pos+2 >= len(p.toks) {
		return false
	}
	after := p.toks[p.pos+2]
	return after.Kind == Op && (after.Text == "=" || after.Text == "[")
}

func (p *parser) parseTypeAlias() *pyast.TypeAlias {
	tok := p.next()
	name := p.expectName()
	if p.isOp("[") {
		p.skipTypeParams()
	}
	p.expectOp("=")
	return &pyast.TypeAlias{
		Pos:   posOf(tok),
		Name:  &pyast.Name{Pos: posOf(name), ID: name.Text, Ctx: pyast.Store},
		Value: p.parseTest(),
	}
}

func (p *parser) parseSmallStmt() pyast.Stmt {
	tok := p.tok
	if tok.Kind == Name {
		switch tok.Text {
		case "pass", "break", "continue":
			p.next()
			return &pyast.Simple{Pos: posOf(tok), Keyword: tok.Text}
		case "return":
			p.next()
			s := &pyast.Simple{Pos: posOf(tok), Keyword: tok.Text}
			if p.startsExpr() {
				s.Values = []pyast.Expr{p.parseSequence(p.parseStarOrTest)}
			}
			return s
		case "raise":
			p.next()
			s := &pyast.Simple{Pos: posOf(tok), Keyword: tok.Text}
			if p.startsExpr() {
				s.Values = []pyast.Expr{p.parseTest()}
				if p.isKeyword("from") {
					p.next()
					s.Values = append(s.Values, p.parseTest())
				}
			}
			return s
		case "global", "nonlocal":
			p.next()
			s := &pyast.Simple{Pos: posOf(tok), Keyword: tok.Text}
			s.Names = append(s.Names, p.expectName().Text)
			for p.isOp(",") {
				p.next()
				s.Names = append(s.Names, p.expectName().Text)
			}
			return s
		case "assert":
			p.next()
			s := &pyast.Simple{Pos: posOf(tok), Keyword: tok.Text}
			s.Values = []pyast.Expr{p.parseTest()}
			if p.isOp(",") {
				p.next()
				s.Values = append(s.Values, p.parseTest())
			}
			return s
		case "del":
			return p.parseDel()
		case "import":
			return p.parseImport()
		case "from":
			return p.parseFromImport()
		case "type":
			if p.isTypeAlias() {
				return p.parseTypeAlias()
			}
		}
	}
	return p.parseExprStmt()
}

func (p *parser) parseDel() *pyast.Delete {
	tok := p.next()
	n := &pyast.Delete{Pos: posOf(tok), Targets: []pyast.Expr{p.parseStarOrBitOr()}}
	for p.isOp(",") {
		p.next()
		if !p.startsExpr() {
			break
		}
		n.Targets = append(n.Targets, p.parseStarOrBitOr())
	}
	for _, t := range n.Targets {
		p.setContext(t, pyast.Del)
	}
	return n
}

func (p *parser) parseImport() *pyast.Simple {
	tok := p.next()
	s := &pyast.Simple{Pos: posOf(tok), Keyword: tok.Text}
	for {
		s.Names = append(s.Names, p.parseDottedName())
		if p.isKeyword("as") {
			p.next()
			p.expectName()
		}
		if !p.isOp(",") {
			return s
		}
		p.next()
	}
}

func (p *parser) parseFromImport() *pyast.Simple {
	tok := p.next()
	s := &pyast.Simple{Pos: posOf(tok), Keyword: tok.Text}
	module := ""
	for p.isOp(".") || p.isOp("...") {
		module += p.next().Text
	}
	if !p.isKeyword("import") {
		module += p.parseDottedName()
	}
	if module == "" {
		p.syntaxError()
	}
	s.Names = append(s.Names, module)
	p.expectKeyword("import")
	if p.isOp("*") {
		p.next()
		return s
	}
	paren := p.isOp("(")
	if paren {
		p.next()
	}
	for {
		s.Names = append(s.Names, p.expectName().Text)
		if p.isKeyword("as") {
			p.next()
			p.expectName()
		}
		if !p.isOp(",") {
			break
		}
		p.next()
		if paren && p.isOp(")") {
			break
		}
		if !paren && p.tok.Kind != Name {
			p.errorf(p.tok, "trailing comma not allowed without surrounding parentheses")
		}
	}
	if paren {
		p.expectOp(")")
	}
	return s
}

func (p *parser) parseDottedName() string {
	name := p.expectName().Text
	for p.isOp(".") {
		p.next()
		name += "." + p.expectName().Text
	}
	return name
}

// parseExprStmt parses expression statements and the three assignment
// forms.
func (p *parser) parseExprStmt() pyast.Stmt {
	first := p.parseStarExprsOrYield()
	pos := first.Position()

	switch {
	case p.isOp(":"):
		switch first.(type) {
		case *pyast.Name, *pyast.Attribute, *pyast.Subscript:
		case *pyast.Tuple:
			p.errorf(p.tok, "only single target (not tuple) can be annotated")
		default:
			p.errorf(p.tok, "illegal target for annotation")
		}
		p.setContext(first, pyast.Store)
		p.next()
		n := &pyast.AnnAssign{Pos: pos, Target: first, Annotation: p.parseTest()}
		if p.isOp("=") {
			p.next()
			n.Value = p.parseStarExprsOrYield()
		}
		return n

	case p.tok.Kind == Op && augAssignOps[p.tok.Text]:
		switch first.(type) {
		case *pyast.Name, *pyast.Attribute, *pyast.Subscript:
		default:
			p.errorf(p.tok, "'%s' is an illegal expression for augmented assignment", describe(first))
		}
		p.setContext(first, pyast.Store)
		op := p.next()
		return &pyast.AugAssign{Pos: pos, Target: first, Op: op.Text, Value: p.parseStarExprsOrYield()}

	case p.isOp("="):
		exprs := []pyast.Expr{first}
		for p.isOp("=") {
			p.next()
			exprs = append(exprs, p.parseStarExprsOrYield())
		}
		targets := exprs[:len(exprs)-1]
		for _, t := range targets {
			p.setContext(t, pyast.Store)
		}
		return &pyast.Assign{Pos: pos, Targets: targets, Value: exprs[len(exprs)-1]}
	}
	return &pyast.ExprStmt{Pos: pos, Value: first}
}

// setContext marks an assignment or deletion target, rejecting expressions
// that cannot be targets.
func (p *parser) setContext(e pyast.Expr, ctx pyast.Context) {
	switch n := e.(type) {
	case *pyast.Name:
		n.Ctx = ctx
	case *pyast.Attribute:
		n.Ctx = ctx
	case *pyast.Subscript:
		n.Ctx = ctx
	case *pyast.Starred:
		n.Ctx = ctx
		p.setContext(n.Value, ctx)
	case *pyast.Tuple:
		n.Ctx = ctx
		for _, elt := range n.Elts {
			p.setContext(elt, ctx)
		}
	case *pyast.List:
		n.Ctx = ctx
		for _, elt := range n.Elts {
			p.setContext(elt, ctx)
		}
	default:
		verb := "assign to"
		if ctx == pyast.Del {
			verb = "delete"
		}
		pos := e.Position()
		p.errorf(Token{Line: pos.Line, Col: pos.Col}, "cannot %s %s", verb, describe(e))
	}
}

// describe names an expression kind for error messages.
func describe(e pyast.Expr) string {
	switch n := e.(type) {
	case *pyast.Constant:
		switch n.Value {
		case "None", "True", "False", "...":
			return n.Value
		}
		return "literal"
	case *pyast.Call:
		return "function call"
	case *pyast.BinOp, *pyast.UnaryOp:
		return "expression"
	case *pyast.BoolOp:
		return "expression"
	case *pyast.Compare:
		return "comparison"
	case *pyast.IfExp:
		return "conditional expression"
	case *pyast.Lambda:
		return "lambda"
	case *pyast.NamedExpr:
		return "named expression"
	case *pyast.Await:
		return "await expression"
	case *pyast.Yield:
		return "yield expression"
	case *pyast.Dict:
		return "dict literal"
	case *pyast.Set:
		return "set display"
	case *pyast.Comp:
		switch n.Kind {
		case pyast.ListComp:
			return "list comprehension"
		case pyast.SetComp:
			return "set comprehension"
		case pyast.DictComp:
			return "dict comprehension"
		}
		return "generator expression"
	case *pyast.Tuple:
		return "tuple"
	case *pyast.List:
		return "list"
	case *pyast.Name:
		return "name"
	case *pyast.Attribute:
		return "attribute"
	case *pyast.Subscript:
		return "subscript"
	case *pyast.Starred:
		return "starred"
	}
	return "expression"
}
