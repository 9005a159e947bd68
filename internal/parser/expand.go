package parser

import (
	"strings"

	"github.com/aledsdavies/shellpure/internal/ast"
)

// parseWordExpr turns the raw text of a lexer WORD token (quotes and
// expansions still embedded, exactly as written in the source) into an
// Expr tree. It is a small scanner in its own right, separate from the
// statement-level grammar in parser.go, so that neither half has to also
// understand the other's concerns.
func (p *Parser) parseWordExpr(raw string, pos ast.Position) (ast.Expr, error) {
	if raw == "" {
		return &ast.Literal{Value: "", Sp: span1(pos)}, nil
	}

	// A word that is exactly one double-quoted span is common enough
	// (almost every "$var" in idiomatic scripts) to special-case: the
	// purifier's quoting pass and SC2086 both key off Concat.Quoted.
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' && balancedQuotes(raw[1:len(raw)-1]) {
		parts, err := p.scanParts(raw[1:len(raw)-1], pos)
		if err != nil {
			return nil, err
		}
		return &ast.Concat{Parts: parts, Quoted: true, Sp: span1(pos)}, nil
	}

	if len(raw) >= 2 && raw[0] == '\'' && raw[len(raw)-1] == '\'' {
		return &ast.Literal{Value: raw[1 : len(raw)-1], Sp: span1(pos)}, nil
	}

	parts, err := p.scanParts(raw, pos)
	if err != nil {
		return nil, err
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return &ast.Concat{Parts: parts, Quoted: false, Sp: span1(pos)}, nil
}

func span1(pos ast.Position) ast.Span { return ast.Span{Start: pos, End: pos} }

// balancedQuotes reports whether s contains no bare (unescaped) double
// quote, which is what lets parseWordExpr treat a leading/trailing `"` pair
// as the whole word's quoting rather than just a substring of it.
func balancedQuotes(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == '"' {
			return false
		}
	}
	return true
}

const globMeta = "*?["

// scanParts walks s left to right, splitting it into literal runs,
// globs, nested quoted spans, and `$`-expansions.
func (p *Parser) scanParts(s string, pos ast.Position) ([]ast.Expr, error) {
	var parts []ast.Expr
	i := 0
	for i < len(s) {
		switch s[i] {
		case '$':
			expr, next, err := p.parseDollar(s, i, pos)
			if err != nil {
				return nil, err
			}
			parts = append(parts, expr)
			i = next
		case '\'':
			end := strings.IndexByte(s[i+1:], '\'')
			if end < 0 {
				return nil, &ParseError{Type: ErrUnterminatedString, Pos: pos, Message: "unterminated single-quoted string"}
			}
			parts = append(parts, &ast.Literal{Value: s[i+1 : i+1+end], Sp: span1(pos)})
			i = i + 1 + end + 1
		case '"':
			depth := 1
			j := i + 1
			for j < len(s) && depth > 0 {
				if s[j] == '\\' {
					j += 2
					continue
				}
				if s[j] == '"' {
					depth--
				}
				j++
			}
			if depth != 0 {
				return nil, &ParseError{Type: ErrUnterminatedString, Pos: pos, Message: "unterminated double-quoted string"}
			}
			inner, err := p.scanParts(s[i+1:j-1], pos)
			if err != nil {
				return nil, err
			}
			parts = append(parts, &ast.Concat{Parts: inner, Quoted: true, Sp: span1(pos)})
			i = j
		default:
			start := i
			hasGlob := false
			for i < len(s) && s[i] != '$' && s[i] != '\'' && s[i] != '"' {
				if strings.IndexByte(globMeta, s[i]) >= 0 {
					hasGlob = true
				}
				if s[i] == '\\' && i+1 < len(s) {
					i++
				}
				i++
			}
			run := unescapeLiteral(s[start:i])
			if hasGlob {
				parts = append(parts, &ast.Glob{Pattern: run, Sp: span1(pos)})
			} else {
				parts = append(parts, &ast.Literal{Value: run, Sp: span1(pos)})
			}
		}
	}
	if len(parts) == 0 {
		parts = append(parts, &ast.Literal{Value: "", Sp: span1(pos)})
	}
	return parts, nil
}

func unescapeLiteral(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// parseDollar parses the `$...` expansion starting at s[i] and returns the
// parsed Expr plus the index just past it.
func (p *Parser) parseDollar(s string, i int, pos ast.Position) (ast.Expr, int, error) {
	if i+1 >= len(s) {
		return &ast.Literal{Value: "$", Sp: span1(pos)}, i + 1, nil
	}
	switch s[i+1] {
	case '{':
		depth := 1
		j := i + 2
		for j < len(s) && depth > 0 {
			switch s[j] {
			case '{':
				depth++
			case '}':
				depth--
			}
			j++
		}
		if depth != 0 {
			return nil, 0, &ParseError{Type: ErrInvalidExpansion, Pos: pos, Message: "unterminated '${' expansion"}
		}
		content := s[i+2 : j-1]
		expr, err := p.parseBraceExpansion(content, pos)
		return expr, j, err
	case '(':
		if i+2 < len(s) && s[i+2] == '(' {
			depth := 2
			j := i + 3
			for j < len(s) && depth > 0 {
				switch s[j] {
				case '(':
					depth++
				case ')':
					depth--
				}
				j++
			}
			if depth != 0 {
				return nil, 0, &ParseError{Type: ErrInvalidExpansion, Pos: pos, Message: "unterminated arithmetic expansion"}
			}
			inner := s[i+3 : j-2]
			arith, err := parseArith(inner, pos)
			if err != nil {
				return nil, 0, err
			}
			return &ast.Arithmetic{Expr: arith, Sp: span1(pos)}, j, nil
		}
		depth := 1
		j := i + 2
		for j < len(s) && depth > 0 {
			switch s[j] {
			case '(':
				depth++
			case ')':
				depth--
			}
			j++
		}
		if depth != 0 {
			return nil, 0, &ParseError{Type: ErrInvalidExpansion, Pos: pos, Message: "unterminated command substitution"}
		}
		inner := s[i+2 : j-1]
		subAst, err := Parse([]byte(inner))
		if err != nil {
			return nil, 0, err
		}
		var body ast.Stmt
		if len(subAst.Statements) == 1 {
			body = subAst.Statements[0]
		} else {
			body = &ast.Sequence{Stmts: subAst.Statements, Conj: ast.ConjSemi, Sp: span1(pos)}
		}
		return &ast.CommandSubst{Body: body, Sp: span1(pos)}, j, nil
	default:
		j := i + 1
		for j < len(s) && isIdentCont(s[j]) {
			j++
		}
		if j == i+1 {
			// `$` followed by a non-identifier byte (e.g. `$$`, `$?`, `$1`):
			// treat the following single byte as the variable name, matching
			// the common shell special-parameter forms.
			if j < len(s) {
				j++
			}
		}
		return &ast.Variable{Name: s[i+1 : j], Sp: span1(pos)}, j, nil
	}
}

// parseBraceExpansion interprets the text inside `${...}`.
func (p *Parser) parseBraceExpansion(content string, pos ast.Position) (ast.Expr, error) {
	if strings.HasPrefix(content, "#") && isPlainName(content[1:]) {
		return &ast.StringLength{Name: content[1:], Sp: span1(pos)}, nil
	}

	name, rest := splitName(content)
	if rest == "" {
		return &ast.Variable{Name: name, Sp: span1(pos)}, nil
	}

	switch {
	case strings.HasPrefix(rest, ":-"):
		def, err := p.parseWordExpr(rest[2:], pos)
		if err != nil {
			return nil, err
		}
		return &ast.DefaultValue{Name: name, Default: def, Sp: span1(pos)}, nil
	case strings.HasPrefix(rest, ":="):
		def, err := p.parseWordExpr(rest[2:], pos)
		if err != nil {
			return nil, err
		}
		return &ast.AssignDefault{Name: name, Default: def, Sp: span1(pos)}, nil
	case strings.HasPrefix(rest, ":?"):
		var msg ast.Expr
		if rest[2:] != "" {
			var err error
			msg, err = p.parseWordExpr(rest[2:], pos)
			if err != nil {
				return nil, err
			}
		}
		return &ast.ErrorIfUnset{Name: name, Message: msg, Sp: span1(pos)}, nil
	case strings.HasPrefix(rest, ":+"):
		alt, err := p.parseWordExpr(rest[2:], pos)
		if err != nil {
			return nil, err
		}
		return &ast.AlternativeValue{Name: name, Alt: alt, Sp: span1(pos)}, nil
	case strings.HasPrefix(rest, "##"):
		return &ast.RemovePrefix{Name: name, Pattern: rest[2:], Longest: true, Sp: span1(pos)}, nil
	case strings.HasPrefix(rest, "#"):
		return &ast.RemovePrefix{Name: name, Pattern: rest[1:], Longest: false, Sp: span1(pos)}, nil
	case strings.HasPrefix(rest, "%%"):
		return &ast.RemoveSuffix{Name: name, Pattern: rest[2:], Longest: true, Sp: span1(pos)}, nil
	case strings.HasPrefix(rest, "%"):
		return &ast.RemoveSuffix{Name: name, Pattern: rest[1:], Longest: false, Sp: span1(pos)}, nil
	case rest == "^^":
		return &ast.CaseConvert{Name: name, Upper: true, Sp: span1(pos)}, nil
	case rest == ",,":
		return &ast.CaseConvert{Name: name, Upper: false, Sp: span1(pos)}, nil
	default:
		// Unrecognized operator: fall back to a bare reference rather than
		// failing the whole parse over an expansion form this engine
		// doesn't yet model.
		return &ast.Variable{Name: name, Sp: span1(pos)}, nil
	}
}

func isPlainName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentCont(s[i]) {
			return false
		}
	}
	return true
}

func splitName(content string) (name, rest string) {
	i := 0
	for i < len(content) && isIdentCont(content[i]) {
		i++
	}
	return content[:i], content[i:]
}
