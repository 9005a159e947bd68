package lexer

import (
	"bytes"
	"fmt"

	"github.com/aledsdavies/shellpure/internal/ast"
)

// Error is returned for lexical failures: an unterminated quote. The
// parser surfaces it as a ParseError without further wrapping.
type Error struct {
	Pos     ast.Position
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// Lexer scans shell source into a token stream. It operates directly on
// the byte slice rather than converting to runes up front: the "find the
// matching quote" path (skipQuoted) is a byte-indexed bytes.IndexByte
// search, not a char-by-char walk, which keeps long quoted strings linear
// instead of quadratic under repeated rescans.
type Lexer struct {
	src  []byte
	pos  int
	line int
	col  int
}

// New constructs a Lexer over source.
func New(source []byte) *Lexer {
	return &Lexer{src: source, pos: 0, line: 1, col: 1}
}

func (l *Lexer) current() ast.Position { return ast.Position{Line: l.line, Col: l.col} }

func (l *Lexer) eof() bool { return l.pos >= len(l.src) }

func (l *Lexer) peekByte() byte {
	if l.eof() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekByteAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) advance() byte {
	b := l.src[l.pos]
	l.pos++
	if b == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return b
}

func isSpaceByte(b byte) bool { return b == ' ' || b == '\t' }

func isWordTerminator(b byte) bool {
	switch b {
	case ' ', '\t', '\n', ';', '|', '&', '(', ')', '{', '}', '<', '>':
		return true
	default:
		return false
	}
}

// Next scans and returns the next token.
func (l *Lexer) Next() (Token, error) {
	l.skipSpacesAndContinuations()

	start := l.current()
	if l.eof() {
		return Token{Type: EOF, Pos: start}, nil
	}

	b := l.peekByte()
	switch {
	case b == '\n':
		l.advance()
		return Token{Type: NEWLINE, Value: "\n", Pos: start}, nil
	case b == '#':
		return l.scanComment(start), nil
	case b == ';':
		l.advance()
		if l.peekByte() == ';' {
			l.advance()
			return Token{Type: DSEMI, Value: ";;", Pos: start}, nil
		}
		return Token{Type: SEMI, Value: ";", Pos: start}, nil
	case b == '|':
		l.advance()
		if l.peekByte() == '|' {
			l.advance()
			return Token{Type: OROR, Value: "||", Pos: start}, nil
		}
		return Token{Type: PIPE, Value: "|", Pos: start}, nil
	case b == '&':
		l.advance()
		if l.peekByte() == '&' {
			l.advance()
			return Token{Type: ANDAND, Value: "&&", Pos: start}, nil
		}
		return Token{Type: AMP, Value: "&", Pos: start}, nil
	case b == '!':
		if next := l.peekByteAt(1); next != 0 && !isWordTerminator(next) {
			return l.scanWord(start)
		}
		l.advance()
		return Token{Type: BANG, Value: "!", Pos: start}, nil
	case b == '(':
		l.advance()
		return Token{Type: LPAREN, Value: "(", Pos: start}, nil
	case b == ')':
		l.advance()
		return Token{Type: RPAREN, Value: ")", Pos: start}, nil
	case b == '{':
		l.advance()
		return Token{Type: LBRACE, Value: "{", Pos: start}, nil
	case b == '}':
		l.advance()
		return Token{Type: RBRACE, Value: "}", Pos: start}, nil
	case b == '[' && l.peekByteAt(1) == '[':
		l.advance()
		l.advance()
		return Token{Type: DLBRACK, Value: "[[", Pos: start}, nil
	case b == ']' && l.peekByteAt(1) == ']':
		l.advance()
		l.advance()
		return Token{Type: DRBRACK, Value: "]]", Pos: start}, nil
	case b == '>':
		return l.scanOutRedir(start), nil
	case b == '<':
		return l.scanInRedir(start), nil
	case b == '2' && l.peekByteAt(1) == '>':
		return l.scanErrRedir(start), nil
	default:
		tok, err := l.scanWord(start)
		if err == nil {
			if kw, ok := Lookup(tok.Value); ok {
				tok.Type = kw
			}
		}
		return tok, err
	}
}

func (l *Lexer) scanComment(start ast.Position) Token {
	l.advance() // consume '#'
	begin := l.pos
	for !l.eof() && l.peekByte() != '\n' {
		l.advance()
	}
	return Token{Type: COMMENT, Value: string(l.src[begin:l.pos]), Pos: start}
}

func (l *Lexer) scanOutRedir(start ast.Position) Token {
	l.advance() // consume '>'
	if l.peekByte() == '>' {
		l.advance()
		return Token{Type: REDIR_APPEND, Value: ">>", Pos: start}
	}
	if l.peekByte() == '&' {
		l.advance()
		return Token{Type: REDIR_DUP_OUT, Value: ">&", Pos: start}
	}
	return Token{Type: REDIR_OUT, Value: ">", Pos: start}
}

func (l *Lexer) scanErrRedir(start ast.Position) Token {
	l.advance() // consume '2'
	l.advance() // consume '>'
	if l.peekByte() == '>' {
		l.advance()
		return Token{Type: REDIR_ERR_APPEND, Value: "2>>", Pos: start}
	}
	return Token{Type: REDIR_ERR_OUT, Value: "2>", Pos: start}
}

func (l *Lexer) scanInRedir(start ast.Position) Token {
	l.advance() // consume '<'
	if l.peekByte() == '<' {
		l.advance()
		return Token{Type: REDIR_HEREDOC, Value: "<<", Pos: start}
	}
	return Token{Type: REDIR_IN, Value: "<", Pos: start}
}

// scanWord consumes a run of word bytes, tracking quote nesting so that
// spaces and shell operators inside quotes don't terminate the word. The
// returned token's Value is the raw, unexpanded text (quotes included) --
// internal/parser's expansion scanner is responsible for interpreting it.
func (l *Lexer) scanWord(start ast.Position) (Token, error) {
	begin := l.pos
	for !l.eof() {
		b := l.peekByte()
		switch b {
		case '\'', '"':
			if err := l.skipQuoted(b); err != nil {
				return Token{}, err
			}
		case '$':
			if err := l.skipExpansion(); err != nil {
				return Token{}, err
			}
		case '\\':
			l.advance()
			if !l.eof() {
				l.advance()
			}
		default:
			if isWordTerminator(b) {
				return Token{Type: WORD, Value: string(l.src[begin:l.pos]), Pos: start}, nil
			}
			l.advance()
		}
	}
	return Token{Type: WORD, Value: string(l.src[begin:l.pos]), Pos: start}, nil
}

// skipQuoted advances past a quoted region, using a byte-indexed search
// for the terminator instead of stepping one rune at a time.
func (l *Lexer) skipQuoted(quote byte) error {
	openPos := l.current()
	l.advance() // opening quote
	if quote == '\'' {
		// single quotes: no escapes, no expansions -- a pure IndexByte scan.
		rest := l.src[l.pos:]
		idx := bytes.IndexByte(rest, '\'')
		if idx < 0 {
			return &Error{Pos: openPos, Message: "unterminated single-quoted string"}
		}
		for i := 0; i < idx+1; i++ {
			l.advance()
		}
		return nil
	}
	// double quotes: scan for the next unescaped '"', honoring \" escapes.
	for {
		rest := l.src[l.pos:]
		idx := bytes.IndexByte(rest, '"')
		if idx < 0 {
			return &Error{Pos: openPos, Message: "unterminated double-quoted string"}
		}
		// count preceding backslashes to decide if this quote is escaped
		backslashes := 0
		for k := idx - 1; k >= 0 && rest[k] == '\\'; k-- {
			backslashes++
		}
		for i := 0; i < idx+1; i++ {
			l.advance()
		}
		if backslashes%2 == 0 {
			return nil
		}
	}
}

// skipExpansion advances past a `$name`, `${...}`, `$(...)`, or `$((...))`
// expansion, matching nested parens/braces and skipping quoted regions
// inside `$(...)` so the word scanner doesn't stop in the middle of e.g.
// `$(echo ")")`. It returns the error for a quote left unterminated
// inside `$(...)`.
func (l *Lexer) skipExpansion() error {
	l.advance() // '$'
	if l.eof() {
		return nil
	}
	switch l.peekByte() {
	case '(':
		l.advance()
		depth := 1
		if l.peekByte() == '(' {
			l.advance()
			depth++ // arithmetic `$((`
		}
		for !l.eof() && depth > 0 {
			switch b := l.peekByte(); b {
			case '\'', '"':
				if err := l.skipQuoted(b); err != nil {
					return err
				}
				continue
			case '(':
				depth++
			case ')':
				depth--
			}
			l.advance()
		}
	case '{':
		l.advance()
		depth := 1
		for !l.eof() && depth > 0 {
			switch l.peekByte() {
			case '{':
				depth++
			case '}':
				depth--
			}
			l.advance()
		}
	default:
		for !l.eof() && isIdentByte(l.peekByte()) {
			l.advance()
		}
	}
	return nil
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// skipSpacesAndContinuations skips blanks and `\` + newline line
// continuations, which are invisible to the grammar.
func (l *Lexer) skipSpacesAndContinuations() {
	for !l.eof() {
		b := l.peekByte()
		if isSpaceByte(b) {
			l.advance()
			continue
		}
		if b == '\\' && l.peekByteAt(1) == '\n' {
			l.advance()
			l.advance()
			continue
		}
		return
	}
}
