package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func allTokens(t *testing.T, src string) []Token {
	t.Helper()
	l := New([]byte(src))
	var toks []Token
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}

func TestLexSimpleCommand(t *testing.T) {
	toks := allTokens(t, "mkdir /app/releases")
	require.Equal(t, WORD, toks[0].Type)
	require.Equal(t, "mkdir", toks[0].Value)
	require.Equal(t, WORD, toks[1].Type)
	require.Equal(t, "/app/releases", toks[1].Value)
	require.Equal(t, EOF, toks[2].Type)
}

func TestLexOperators(t *testing.T) {
	toks := allTokens(t, "a && b || c; d | e")
	types := make([]TokenType, 0, len(toks))
	for _, tk := range toks {
		types = append(types, tk.Type)
	}
	require.Equal(t, []TokenType{
		WORD, ANDAND, WORD, OROR, WORD, SEMI, WORD, PIPE, WORD, EOF,
	}, types)
}

func TestLexWordWithQuotesDoesNotSplitOnSpace(t *testing.T) {
	toks := allTokens(t, `echo "hello world"`)
	require.Equal(t, WORD, toks[1].Type)
	require.Equal(t, `"hello world"`, toks[1].Value)
}

func TestLexWordWithNestedCommandSubst(t *testing.T) {
	toks := allTokens(t, `echo $(echo ")")`)
	require.Equal(t, WORD, toks[1].Type)
	require.Equal(t, `$(echo ")")`, toks[1].Value)
}

func TestLexUnterminatedSingleQuoteErrors(t *testing.T) {
	l := New([]byte(`echo 'oops`))
	_, err := l.Next() // "echo"
	require.NoError(t, err)
	_, err = l.Next() // the broken word
	require.Error(t, err)
}

func TestLexRedirections(t *testing.T) {
	toks := allTokens(t, "cmd > out.txt >> log 2> err.log")
	var types []TokenType
	for _, tk := range toks {
		types = append(types, tk.Type)
	}
	require.Equal(t, []TokenType{
		WORD, REDIR_OUT, WORD, REDIR_APPEND, WORD, REDIR_ERR_OUT, WORD, EOF,
	}, types)
}

func TestLexComment(t *testing.T) {
	toks := allTokens(t, "# a comment\necho hi")
	require.Equal(t, COMMENT, toks[0].Type)
	require.Equal(t, " a comment", toks[0].Value)
	require.Equal(t, NEWLINE, toks[1].Type)
}

func TestLookupKeyword(t *testing.T) {
	ty, ok := Lookup("while")
	require.True(t, ok)
	require.Equal(t, KW_WHILE, ty)

	_, ok = Lookup("notakeyword")
	require.False(t, ok)
}
