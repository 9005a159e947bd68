// Package lexer turns shell source bytes into a flat token stream for the
// recursive-descent parser in internal/parser. It never builds the AST
// itself: words are handed to the parser as raw text, and a second,
// narrower expansion-scanner (internal/parser/expand.go) turns the text of
// a WORD token into Concat/Variable/CommandSubst/parameter-expansion nodes.
// Splitting lexing from expansion-parsing keeps both halves small and
// mirrors the two-phase design mvdan.cc/sh/syntax uses internally.
package lexer

import "github.com/aledsdavies/shellpure/internal/ast"

// TokenType identifies a lexical token kind.
type TokenType int

const (
	EOF TokenType = iota
	ILLEGAL

	WORD    // an unquoted-or-quoted word, possibly containing expansions
	COMMENT // `# ...` to end of line, text excludes the leading `#`

	NEWLINE
	SEMI    // ;
	DSEMI   // ;;
	PIPE    // |
	ANDAND  // &&
	OROR    // ||
	AMP     // &
	BANG    // !
	LPAREN  // (
	RPAREN  // )
	LBRACE  // {
	RBRACE  // }
	DLBRACK // [[
	DRBRACK // ]]

	REDIR_OUT        // >
	REDIR_APPEND     // >>
	REDIR_IN         // <
	REDIR_HEREDOC    // <<
	REDIR_ERR_OUT    // 2>
	REDIR_ERR_APPEND // 2>>
	REDIR_DUP_OUT    // >&

	KW_IF
	KW_THEN
	KW_ELIF
	KW_ELSE
	KW_FI
	KW_WHILE
	KW_UNTIL
	KW_DO
	KW_DONE
	KW_FOR
	KW_IN
	KW_CASE
	KW_ESAC
	KW_FUNCTION
	KW_RETURN
	KW_EXPORT
)

var keywords = map[string]TokenType{
	"if":       KW_IF,
	"then":     KW_THEN,
	"elif":     KW_ELIF,
	"else":     KW_ELSE,
	"fi":       KW_FI,
	"while":    KW_WHILE,
	"until":    KW_UNTIL,
	"do":       KW_DO,
	"done":     KW_DONE,
	"for":      KW_FOR,
	"in":       KW_IN,
	"case":     KW_CASE,
	"esac":     KW_ESAC,
	"function": KW_FUNCTION,
	"return":   KW_RETURN,
	"export":   KW_EXPORT,
}

// Lookup returns the keyword token type for word, and false if word is an
// ordinary identifier/command name.
func Lookup(word string) (TokenType, bool) {
	t, ok := keywords[word]
	return t, ok
}

// Token is a single lexical token with its source position.
type Token struct {
	Type  TokenType
	Value string
	Pos   ast.Position
}
