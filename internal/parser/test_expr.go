package parser

import (
	"github.com/aledsdavies/shellpure/internal/ast"
	"github.com/aledsdavies/shellpure/internal/lexer"
)

// parseExtendedTestAsExpr parses a `[[ ... ]]` bash test appearing as a
// standalone statement (e.g. the sole contents of a pipeline stage) and
// wraps it back in a Command-shaped position by returning it directly as
// an Expr-bearing pseudo-statement; callers that need a Stmt (parsePipeline)
// accept this through CommandSubst-free handling in parseCondition, so this
// entry point is reserved for the rarer "bare [[ ]] as a statement" form.
func (p *Parser) parseExtendedTestAsExpr() (ast.Stmt, error) {
	start := p.cur.Pos
	testExpr, err := p.parseExtendedTest()
	if err != nil {
		return nil, err
	}
	return &ast.Command{Name: "[[", Args: []ast.Expr{testExpr}, Sp: ast.Span{Start: start, End: p.cur.Pos}}, nil
}

// parseExtendedTest parses the token stream from `[[` through `]]`.
func (p *Parser) parseExtendedTest() (ast.Expr, error) {
	start := p.cur.Pos
	if err := p.advance(); err != nil { // consume [[
		return nil, err
	}
	inner, err := p.parseTestOr()
	if err != nil {
		return nil, err
	}
	end := p.cur.Pos
	if _, err := p.expect(lexer.DRBRACK, "']]'"); err != nil {
		return nil, err
	}
	return &ast.Test{Expr: inner, Extended: true, Sp: ast.Span{Start: start, End: end}}, nil
}

func (p *Parser) parseTestOr() (ast.TestExpr, error) {
	left, err := p.parseTestAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.OROR {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseTestAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.TestOr{Left: left, Right: right, Sp: left.Span().Union(right.Span())}
	}
	return left, nil
}

func (p *Parser) parseTestAnd() (ast.TestExpr, error) {
	left, err := p.parseTestNot()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.ANDAND {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseTestNot()
		if err != nil {
			return nil, err
		}
		left = &ast.TestAnd{Left: left, Right: right, Sp: left.Span().Union(right.Span())}
	}
	return left, nil
}

func (p *Parser) parseTestNot() (ast.TestExpr, error) {
	if p.cur.Type == lexer.BANG {
		start := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseTestNot()
		if err != nil {
			return nil, err
		}
		return &ast.TestNot{Operand: operand, Sp: ast.Span{Start: start, End: operand.Span().End}}, nil
	}
	return p.parseTestPrimary()
}

var unaryFileOps = map[string]func(ast.Expr, ast.Span) ast.TestExpr{
	"-e": func(e ast.Expr, sp ast.Span) ast.TestExpr { return &ast.FileExists{Path: e, Sp: sp} },
	"-f": func(e ast.Expr, sp ast.Span) ast.TestExpr { return &ast.FileExists{Path: e, Sp: sp} },
	"-r": func(e ast.Expr, sp ast.Span) ast.TestExpr { return &ast.FileReadable{Path: e, Sp: sp} },
	"-w": func(e ast.Expr, sp ast.Span) ast.TestExpr { return &ast.FileWritable{Path: e, Sp: sp} },
	"-x": func(e ast.Expr, sp ast.Span) ast.TestExpr { return &ast.FileExecutable{Path: e, Sp: sp} },
	"-d": func(e ast.Expr, sp ast.Span) ast.TestExpr { return &ast.FileDirectory{Path: e, Sp: sp} },
}

var binaryIntOps = map[string]func(ast.Expr, ast.Expr, ast.Span) ast.TestExpr{
	"-eq": func(l, r ast.Expr, sp ast.Span) ast.TestExpr { return &ast.IntEq{Left: l, Right: r, Sp: sp} },
	"-ne": func(l, r ast.Expr, sp ast.Span) ast.TestExpr { return &ast.IntNe{Left: l, Right: r, Sp: sp} },
	"-lt": func(l, r ast.Expr, sp ast.Span) ast.TestExpr { return &ast.IntLt{Left: l, Right: r, Sp: sp} },
	"-gt": func(l, r ast.Expr, sp ast.Span) ast.TestExpr { return &ast.IntGt{Left: l, Right: r, Sp: sp} },
	"-le": func(l, r ast.Expr, sp ast.Span) ast.TestExpr { return &ast.IntLe{Left: l, Right: r, Sp: sp} },
	"-ge": func(l, r ast.Expr, sp ast.Span) ast.TestExpr { return &ast.IntGe{Left: l, Right: r, Sp: sp} },
}

func (p *Parser) parseTestPrimary() (ast.TestExpr, error) {
	if p.cur.Type == lexer.LPAREN {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseTestOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	}

	tok := p.cur
	if tok.Type != lexer.WORD {
		return nil, &ParseError{Type: ErrUnexpectedToken, Pos: tok.Pos, Message: "expected test expression, found " + tok.Value}
	}

	if mk, ok := unaryFileOps[tok.Value]; ok {
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseTestOperand()
		if err != nil {
			return nil, err
		}
		return mk(operand, ast.Span{Start: tok.Pos, End: p.cur.Pos}), nil
	}
	switch tok.Value {
	case "-z":
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseTestOperand()
		if err != nil {
			return nil, err
		}
		return &ast.StringEmpty{Operand: operand, Sp: ast.Span{Start: tok.Pos, End: p.cur.Pos}}, nil
	case "-n":
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseTestOperand()
		if err != nil {
			return nil, err
		}
		return &ast.StringNonEmpty{Operand: operand, Sp: ast.Span{Start: tok.Pos, End: p.cur.Pos}}, nil
	}

	left, err := p.parseTestOperand()
	if err != nil {
		return nil, err
	}
	opTok := p.cur
	if opTok.Type != lexer.WORD {
		return nil, &ParseError{Type: ErrUnexpectedToken, Pos: opTok.Pos, Message: "expected comparison operator, found " + opTok.Value}
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	if mk, ok := binaryIntOps[opTok.Value]; ok {
		right, err := p.parseTestOperand()
		if err != nil {
			return nil, err
		}
		return mk(left, right, ast.Span{Start: tok.Pos, End: p.cur.Pos}), nil
	}
	switch opTok.Value {
	case "=", "==":
		right, err := p.parseTestOperand()
		if err != nil {
			return nil, err
		}
		return &ast.StringEq{Left: left, Right: right, Sp: ast.Span{Start: tok.Pos, End: p.cur.Pos}}, nil
	case "!=":
		right, err := p.parseTestOperand()
		if err != nil {
			return nil, err
		}
		return &ast.StringNe{Left: left, Right: right, Sp: ast.Span{Start: tok.Pos, End: p.cur.Pos}}, nil
	case "=~":
		patTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.RegexMatch{Left: left, Pattern: rawNameString(patTok.Value), Sp: ast.Span{Start: tok.Pos, End: patTok.Pos}}, nil
	default:
		return nil, &ParseError{Type: ErrUnexpectedToken, Pos: opTok.Pos, Message: "unsupported test operator " + opTok.Value}
	}
}

func (p *Parser) parseTestOperand() (ast.Expr, error) {
	tok, err := p.expect(lexer.WORD, "test operand")
	if err != nil {
		return nil, err
	}
	return p.parseWordExpr(tok.Value, tok.Pos)
}

// testExprFromBracketCommand converts a `[ ... ]`-shaped Command (parsed as
// an ordinary simple command named "[") into a Test expression. POSIX
// `test`/`[` syntax only supports `-a`/`-o` for and/or (no `&&`/`||`) and
// has no parenthesized grouping in its portable subset, which keeps this
// considerably simpler than the `[[ ]]` token-level grammar above.
func (p *Parser) testExprFromBracketCommand(cmd *ast.Command) (ast.Expr, error) {
	args := cmd.Args
	if n := len(args); n > 0 {
		if lit, ok := args[n-1].(*ast.Literal); ok && lit.Value == "]" {
			args = args[:n-1]
		}
	}
	seq := &wordSeq{words: args}
	expr, err := seq.parseOr()
	if err != nil {
		return nil, err
	}
	return &ast.Test{Expr: expr, Extended: false, Sp: cmd.Sp}, nil
}

type wordSeq struct {
	words []ast.Expr
	i     int
}

func (w *wordSeq) peek() ast.Expr {
	if w.i >= len(w.words) {
		return nil
	}
	return w.words[w.i]
}

func (w *wordSeq) next() ast.Expr {
	e := w.peek()
	w.i++
	return e
}

func litOf(e ast.Expr) (string, bool) {
	if e == nil {
		return "", false
	}
	l, ok := e.(*ast.Literal)
	if !ok {
		return "", false
	}
	return l.Value, true
}

func (w *wordSeq) parseOr() (ast.TestExpr, error) {
	left, err := w.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		if lit, ok := litOf(w.peek()); ok && lit == "-o" {
			w.next()
			right, err := w.parseAnd()
			if err != nil {
				return nil, err
			}
			left = &ast.TestOr{Left: left, Right: right}
			continue
		}
		return left, nil
	}
}

func (w *wordSeq) parseAnd() (ast.TestExpr, error) {
	left, err := w.parseNot()
	if err != nil {
		return nil, err
	}
	for {
		if lit, ok := litOf(w.peek()); ok && lit == "-a" {
			w.next()
			right, err := w.parseNot()
			if err != nil {
				return nil, err
			}
			left = &ast.TestAnd{Left: left, Right: right}
			continue
		}
		return left, nil
	}
}

func (w *wordSeq) parseNot() (ast.TestExpr, error) {
	if lit, ok := litOf(w.peek()); ok && lit == "!" {
		w.next()
		operand, err := w.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.TestNot{Operand: operand}, nil
	}
	return w.parsePrimary()
}

func (w *wordSeq) parsePrimary() (ast.TestExpr, error) {
	first := w.next()
	if lit, ok := litOf(first); ok {
		if mk, ok := unaryFileOps[lit]; ok {
			return mk(w.next(), ast.Span{}), nil
		}
		switch lit {
		case "-z":
			return &ast.StringEmpty{Operand: w.next()}, nil
		case "-n":
			return &ast.StringNonEmpty{Operand: w.next()}, nil
		}
	}
	opLit, ok := litOf(w.peek())
	if !ok {
		return nil, &ParseError{Type: ErrUnexpectedToken, Message: "expected test operator inside '[ ]'"}
	}
	w.next()
	second := w.next()
	if mk, ok := binaryIntOps[opLit]; ok {
		return mk(first, second, ast.Span{}), nil
	}
	switch opLit {
	case "=", "==":
		return &ast.StringEq{Left: first, Right: second}, nil
	case "!=":
		return &ast.StringNe{Left: first, Right: second}, nil
	default:
		return nil, &ParseError{Type: ErrUnexpectedToken, Message: "unsupported '[ ]' operator " + opLit}
	}
}
