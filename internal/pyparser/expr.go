package pyparser

import "github.com/Wladim1r/pystyle/internal/pyast"

// Binary operator precedence from `|` (lowest) to the multiplicative
// operators. Comparisons, boolean operators and `**` are handled by their
// own productions.
var binaryPrec = map[string]int{
	"|":  1,
	"^":  2,
	"&":  3,
	"<<": 4, ">>": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6, "//": 6, "%": 6, "@": 6,
}

// startsExpr reports whether the current token can begin an expression.
func (p *parser) startsExpr() bool {
	switch p.tok.Kind {
	case Name:
		switch p.tok.Text {
		case "None", "True", "False", "not", "lambda", "await":
			return true
		}
		return !keywords[p.tok.Text]
	case Number, String:
		return true
	case Op:
		switch p.tok.Text {
		case "(", "[", "{", "-", "+", "~", "*", "...":
			return true
		}
	}
	return false
}

// parseSequence parses `elem (',' elem)* [',']` and returns a bare Tuple
// when at least one comma is present.
func (p *parser) parseSequence(elem func() pyast.Expr) pyast.Expr {
	first := elem()
	if !p.isOp(",") {
		return first
	}
	t := &pyast.Tuple{Pos: first.Position(), Elts: []pyast.Expr{first}}
	for p.isOp(",") {
		p.next()
		if !p.startsExpr() {
			break
		}
		t.Elts = append(t.Elts, elem())
	}
	return t
}

// parseTargetList parses the target of a for loop or comprehension.
func (p *parser) parseTargetList() pyast.Expr {
	target := p.parseSequence(p.parseStarOrBitOr)
	p.setContext(target, pyast.Store)
	return target
}

func (p *parser) parseStarExprsOrYield() pyast.Expr {
	if p.isKeyword("yield") {
		return p.parseYield()
	}
	return p.parseSequence(p.parseStarOrTest)
}

func (p *parser) parseYield() pyast.Expr {
	tok := p.next()
	y := &pyast.Yield{Pos: posOf(tok)}
	if p.isKeyword("from") {
		p.next()
		y.From = true
		y.Value = p.parseTest()
	} else if p.startsExpr() {
		y.Value = p.parseSequence(p.parseStarOrTest)
	}
	return y
}

func (p *parser) parseStar(operand func() pyast.Expr) pyast.Expr {
	tok := p.next()
	return &pyast.Starred{Pos: posOf(tok), Value: operand()}
}

func (p *parser) parseStarOrTest() pyast.Expr {
	if p.isOp("*") {
		return p.parseStar(p.parseBitOr)
	}
	return p.parseTest()
}

func (p *parser) parseStarOrNamedExpr() pyast.Expr {
	if p.isOp("*") {
		return p.parseStar(p.parseBitOr)
	}
	return p.parseNamedExpr()
}

func (p *parser) parseStarOrBitOr() pyast.Expr {
	if p.isOp("*") {
		return p.parseStar(p.parseBitOr)
	}
	return p.parseBitOr()
}

// parseNamedExpr parses `NAME := test` or a plain test.
func (p *parser) parseNamedExpr() pyast.Expr {
	if p.tok.Kind == Name && !keywords[p.tok.Text] {
		if next := p.peek(); next.Kind == Op && next.Text == ":=" {
			name := p.next()
			p.next()
			return &pyast.NamedExpr{
				Pos:    posOf(name),
				Target: &pyast.Name{Pos: posOf(name), ID: name.Text, Ctx: pyast.Store},
				Value:  p.parseTest(),
			}
		}
	}
	return p.parseTest()
}

// parseTest parses a conditional expression or a lambda.
func (p *parser) parseTest() pyast.Expr {
	if p.isKeyword("lambda") {
		return p.parseLambda()
	}
	body := p.parseOrTest()
	if !p.isKeyword("if") {
		return body
	}
	p.next()
	n := &pyast.IfExp{Pos: body.Position(), Body: body, Test: p.parseOrTest()}
	p.expectKeyword("else")
	n.Orelse = p.parseTest()
	return n
}

func (p *parser) parseLambda() pyast.Expr {
	tok := p.next()
	n := &pyast.Lambda{Pos: posOf(tok), Args: p.parseParams(":", false)}
	p.expectOp(":")
	n.Body = p.parseTest()
	return n
}

func (p *parser) parseOrTest() pyast.Expr {
	return p.parseBoolOp("or", p.parseAndTest)
}

func (p *parser) parseAndTest() pyast.Expr {
	return p.parseBoolOp("and", p.parseNotTest)
}

func (p *parser) parseBoolOp(op string, operand func() pyast.Expr) pyast.Expr {
	first := operand()
	if !p.isKeyword(op) {
		return first
	}
	n := &pyast.BoolOp{Pos: first.Position(), Op: op, Values: []pyast.Expr{first}}
	for p.isKeyword(op) {
		p.next()
		n.Values = append(n.Values, operand())
	}
	return n
}

func (p *parser) parseNotTest() pyast.Expr {
	if p.isKeyword("not") {
		tok := p.next()
		return &pyast.UnaryOp{Pos: posOf(tok), Op: "not", Operand: p.parseNotTest()}
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() pyast.Expr {
	left := p.parseBitOr()
	var n *pyast.Compare
	for {
		op := p.compareOp()
		if op == "" {
			break
		}
		if n == nil {
			n = &pyast.Compare{Pos: left.Position(), Left: left}
		}
		n.Ops = append(n.Ops, op)
		n.Comparators = append(n.Comparators, p.parseBitOr())
	}
	if n == nil {
		return left
	}
	return n
}

// compareOp consumes a comparison operator and returns it, or returns ""
// without consuming anything.
func (p *parser) compareOp() string {
	switch {
	case p.tok.Kind == Op:
		switch p.tok.Text {
		case "<", ">", "==", ">=", "<=", "!=":
			return p.next().Text
		}
	case p.isKeyword("in"):
		p.next()
		return "in"
	case p.isKeyword("is"):
		p.next()
		if p.isKeyword("not") {
			p.next()
			return "is not"
		}
		return "is"
	case p.isKeyword("not"):
		if next := p.peek(); next.Kind == Name && next.Text == "in" {
			p.next()
			p.next()
			return "not in"
		}
	}
	return ""
}

func (p *parser) parseBitOr() pyast.Expr {
	return p.parseBinary(1)
}

// parseBinary implements precedence climbing over binaryPrec; all the
// operators are left associative.
func (p *parser) parseBinary(minPrec int) pyast.Expr {
	left := p.parseFactor()
	for p.tok.Kind == Op {
		prec, ok := binaryPrec[p.tok.Text]
		if !ok || prec < minPrec {
			break
		}
		op := p.next()
		right := p.parseBinary(prec + 1)
		left = &pyast.BinOp{Pos: left.Position(), Left: left, Op: op.Text, Right: right}
	}
	return left
}

func (p *parser) parseFactor() pyast.Expr {
	if p.isOp("+") || p.isOp("-") || p.isOp("~") {
		tok := p.next()
		return &pyast.UnaryOp{Pos: posOf(tok), Op: tok.Text, Operand: p.parseFactor()}
	}
	return p.parsePower()
}

func (p *parser) parsePower() pyast.Expr {
	var base pyast.Expr
	if p.isKeyword("await") {
		tok := p.next()
		base = &pyast.Await{Pos: posOf(tok), Value: p.parsePrimary()}
	} else {
		base = p.parsePrimary()
	}
	if !p.isOp("**") {
		return base
	}
	p.next()
	return &pyast.BinOp{Pos: base.Position(), Left: base, Op: "**", Right: p.parseFactor()}
}

func (p *parser) parsePrimary() pyast.Expr {
	e := p.parseAtom()
	for {
		switch {
		case p.isOp("("):
			p.next()
			args, kws := p.parseCallArgs()
			p.expectOp(")")
			e = &pyast.Call{Pos: e.Position(), Func: e, Args: args, Keywords: kws}
		case p.isOp("["):
			p.next()
			slice := p.parseSubscripts()
			p.expectOp("]")
			e = &pyast.Subscript{Pos: e.Position(), Value: e, Slice: slice}
		case p.isOp("."):
			p.next()
			attr := p.expectName()
			e = &pyast.Attribute{Pos: e.Position(), Value: e, Attr: attr.Text}
		default:
			return e
		}
	}
}

// parseCallArgs parses the arguments of a call or class bases, stopping
// before the closing parenthesis.
func (p *parser) parseCallArgs() ([]pyast.Expr, []*pyast.Keyword) {
	var (
		args     []pyast.Expr
		kws      []*pyast.Keyword
		genTok   *Token // first unparenthesized generator argument
		trailing bool
	)
	for !p.isOp(")") {
		trailing = false
		switch {
		case p.isOp("*"):
			args = append(args, p.parseStar(p.parseTest))
		case p.isOp("**"):
			tok := p.next()
			kws = append(kws, &pyast.Keyword{Pos: posOf(tok), Value: p.parseTest()})
		case p.tok.Kind == Name && p.peek().Kind == Op && p.peek().Text == "=":
			name := p.expectName()
			p.next()
			kws = append(kws, &pyast.Keyword{Pos: posOf(name), Arg: name.Text, Value: p.parseTest()})
		default:
			start := p.tok
			arg := p.parseNamedExpr()
			if p.isCompFor() {
				if genTok == nil {
					genTok = &start
				}
				arg = &pyast.Comp{
					Pos:        arg.Position(),
					Kind:       pyast.GeneratorExp,
					Elt:        arg,
					Generators: p.parseCompFor(),
				}
			}
			args = append(args, arg)
		}
		if !p.isOp(",") {
			break
		}
		p.next()
		trailing = true
	}
	// A bare generator must be the sole argument.
	if genTok != nil && (len(args)+len(kws) > 1 || trailing) {
		p.errorf(*genTok, "Generator expression must be parenthesized")
	}
	return args, kws
}

func (p *parser) parseSubscripts() pyast.Expr {
	first := p.parseSliceItem()
	if !p.isOp(",") {
		return first
	}
	t := &pyast.Tuple{Pos: first.Position(), Elts: []pyast.Expr{first}}
	for p.isOp(",") {
		p.next()
		if p.isOp("]") {
			break
		}
		t.Elts = append(t.Elts, p.parseSliceItem())
	}
	return t
}

func (p *parser) parseSliceItem() pyast.Expr {
	start := p.tok
	var lower pyast.Expr
	if !p.isOp(":") {
		lower = p.parseStarOrNamedExpr()
		if !p.isOp(":") {
			return lower
		}
	}
	p.next()
	s := &pyast.Slice{Pos: posOf(start), Lower: lower}
	if !p.isOp(":") && !p.isOp("]") && !p.isOp(",") {
		s.Upper = p.parseTest()
	}
	if p.isOp(":") {
		p.next()
		if !p.isOp("]") && !p.isOp(",") {
			s.Step = p.parseTest()
		}
	}
	return s
}

func (p *parser) parseAtom() pyast.Expr {
	tok := p.tok
	switch tok.Kind {
	case Name:
		switch tok.Text {
		case "None", "True", "False":
			p.next()
			return &pyast.Constant{Pos: posOf(tok), Value: tok.Text}
		}
		if keywords[tok.Text] {
			p.syntaxError()
		}
		p.next()
		return &pyast.Name{Pos: posOf(tok), ID: tok.Text}
	case Number:
		p.next()
		return &pyast.Constant{Pos: posOf(tok), Value: tok.Text}
	case String:
		value := p.next().Text
		for p.tok.Kind == String {
			value += " " + p.next().Text
		}
		return &pyast.Constant{Pos: posOf(tok), Value: value}
	case Op:
		switch tok.Text {
		case "(":
			return p.parseParen()
		case "[":
			return p.parseListDisplay()
		case "{":
			return p.parseBraceDisplay()
		case "...":
			p.next()
			return &pyast.Constant{Pos: posOf(tok), Value: tok.Text}
		}
	}
	p.syntaxError()
	return nil
}

func (p *parser) parseParen() pyast.Expr {
	open := p.next()
	if p.isOp(")") {
		p.next()
		return &pyast.Tuple{Pos: posOf(open)}
	}
	if p.isKeyword("yield") {
		y := p.parseYield()
		p.expectOp(")")
		return y
	}
	first := p.parseStarOrNamedExpr()
	if p.isCompFor() {
		g := &pyast.Comp{Pos: posOf(open), Kind: pyast.GeneratorExp, Elt: first, Generators: p.parseCompFor()}
		p.expectOp(")")
		return g
	}
	if !p.isOp(",") {
		p.expectOp(")")
		return first
	}
	t := &pyast.Tuple{Pos: posOf(open), Elts: []pyast.Expr{first}}
	for p.isOp(",") {
		p.next()
		if p.isOp(")") {
			break
		}
		t.Elts = append(t.Elts, p.parseStarOrNamedExpr())
	}
	p.expectOp(")")
	return t
}

func (p *parser) parseListDisplay() pyast.Expr {
	open := p.next()
	n := &pyast.List{Pos: posOf(open)}
	if p.isOp("]") {
		p.next()
		return n
	}
	first := p.parseStarOrNamedExpr()
	if p.isCompFor() {
		c := &pyast.Comp{Pos: posOf(open), Kind: pyast.ListComp, Elt: first, Generators: p.parseCompFor()}
		p.expectOp("]")
		return c
	}
	n.Elts = append(n.Elts, first)
	for p.isOp(",") {
		p.next()
		if p.isOp("]") {
			break
		}
		n.Elts = append(n.Elts, p.parseStarOrNamedExpr())
	}
	p.expectOp("]")
	return n
}

// parseBraceDisplay parses a dict or set display or comprehension.
func (p *parser) parseBraceDisplay() pyast.Expr {
	open := p.next()
	if p.isOp("}") {
		p.next()
		return &pyast.Dict{Pos: posOf(open)}
	}

	if !p.isOp("**") {
		first := p.parseStarOrNamedExpr()
		if !p.isOp(":") {
			return p.parseSetRest(open, first)
		}
		p.next()
		value := p.parseTest()
		if p.isCompFor() {
			c := &pyast.Comp{Pos: posOf(open), Kind: pyast.DictComp, Elt: first, Value: value, Generators: p.parseCompFor()}
			p.expectOp("}")
			return c
		}
		d := &pyast.Dict{Pos: posOf(open), Keys: []pyast.Expr{first}, Values: []pyast.Expr{value}}
		if p.isOp(",") {
			p.next()
			p.parseDictEntries(d)
		}
		p.expectOp("}")
		return d
	}

	d := &pyast.Dict{Pos: posOf(open)}
	p.parseDictEntries(d)
	p.expectOp("}")
	return d
}

func (p *parser) parseDictEntries(d *pyast.Dict) {
	for !p.isOp("}") {
		if p.isOp("**") {
			p.next()
			d.Keys = append(d.Keys, nil)
			d.Values = append(d.Values, p.parseBitOr())
		} else {
			key := p.parseTest()
			p.expectOp(":")
			d.Keys = append(d.Keys, key)
			d.Values = append(d.Values, p.parseTest())
		}
		if !p.isOp(",") {
			return
		}
		p.next()
	}
}

func (p *parser) parseSetRest(open Token, first pyast.Expr) pyast.Expr {
	if p.isCompFor() {
		c := &pyast.Comp{Pos: posOf(open), Kind: pyast.SetComp, Elt: first, Generators: p.parseCompFor()}
		p.expectOp("}")
		return c
	}
	n := &pyast.Set{Pos: posOf(open), Elts: []pyast.Expr{first}}
	for p.isOp(",") {
		p.next()
		if p.isOp("}") {
			break
		}
		n.Elts = append(n.Elts, p.parseStarOrNamedExpr())
	}
	p.expectOp("}")
	return n
}

func (p *parser) isCompFor() bool {
	if p.isKeyword("for") {
		return true
	}
	if p.isKeyword("async") {
		next := p.peek()
		return next.Kind == Name && next.Text == "for"
	}
	return false
}

func (p *parser) parseCompFor() []*pyast.Comprehension {
	var gens []*pyast.Comprehension
	for p.isCompFor() {
		g := &pyast.Comprehension{}
		if p.isKeyword("async") {
			p.next()
			g.Async = true
		}
		p.expectKeyword("for")
		g.Target = p.parseTargetList()
		p.expectKeyword("in")
		g.Iter = p.parseOrTest()
		for p.isKeyword("if") {
			p.next()
			g.Ifs = append(g.Ifs, p.parseOrTest())
		}
		gens = append(gens, g)
	}
	return gens
}

// parseParams parses a parameter list up to, not including, closer. Lambda
// parameters take no annotations.
func (p *parser) parseParams(closer string, annotations bool) *pyast.Arguments {
	a := &pyast.Arguments{}
	var seenSlash, seenStar, seenDefault bool
	for !p.isOp(closer) {
		switch {
		case p.isOp("/"):
			tok := p.next()
			switch {
			case seenSlash:
				p.errorf(tok, "/ may appear only once")
			case seenStar:
				p.errorf(tok, "/ must be ahead of *")
			case len(a.Args) == 0:
				p.errorf(tok, "at least one argument must precede /")
			}
			a.PosOnly, a.Args = a.Args, nil
			seenSlash = true
		case p.isOp("*"):
			tok := p.next()
			if seenStar {
				p.errorf(tok, "* argument may appear only once")
			}
			seenStar = true
			if !p.isOp(",") && !p.isOp(closer) {
				a.Vararg = p.parseParam(annotations, true)
			}
		case p.isOp("**"):
			p.next()
			a.Kwarg = p.parseParam(annotations, true)
		default:
			arg := p.parseParam(annotations, false)
			var def pyast.Expr
			if p.isOp("=") {
				p.next()
				def = p.parseTest()
			}
			if seenStar {
				a.KwOnly = append(a.KwOnly, arg)
				a.KwDefaults = append(a.KwDefaults, def)
				break
			}
			a.Args = append(a.Args, arg)
			if def != nil {
				a.Defaults = append(a.Defaults, def)
				seenDefault = true
			} else if seenDefault {
				p.errorf(Token{Line: arg.Line, Col: arg.Col}, "parameter without a default follows parameter with a default")
			}
		}

		if a.Kwarg != nil {
			if p.isOp(",") {
				p.next()
			}
			if !p.isOp(closer) {
				p.errorf(p.tok, "arguments cannot follow var-keyword argument")
			}
			break
		}
		if !p.isOp(",") {
			break
		}
		p.next()
	}
	if seenStar && a.Vararg == nil && len(a.KwOnly) == 0 {
		p.errorf(p.tok, "named arguments must follow bare *")
	}
	return a
}

func (p *parser) parseParam(annotations, starred bool) *pyast.Arg {
	name := p.expectName()
	arg := &pyast.Arg{Pos: posOf(name), Name: name.Text}
	if annotations && p.isOp(":") {
		p.next()
		if starred && p.isOp("*") {
			arg.Annotation = p.parseStar(p.parseBitOr)
		} else {
			arg.Annotation = p.parseTest()
		}
	}
	return arg
}
