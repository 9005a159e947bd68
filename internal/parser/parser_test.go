package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/shellpure/internal/ast"
)

func TestParseSimpleCommand(t *testing.T) {
	a, err := Parse([]byte("mkdir /app/releases"))
	require.NoError(t, err)
	require.Len(t, a.Statements, 1)
	cmd, ok := a.Statements[0].(*ast.Command)
	require.True(t, ok)
	require.Equal(t, "mkdir", cmd.Name)
	require.Len(t, cmd.Args, 1)
	require.Equal(t, "/app/releases", cmd.Args[0].(*ast.Literal).Value)
}

func TestParseAssignment(t *testing.T) {
	a, err := Parse([]byte("SESSION_ID=$RANDOM"))
	require.NoError(t, err)
	require.Len(t, a.Statements, 1)
	assign, ok := a.Statements[0].(*ast.Assignment)
	require.True(t, ok)
	require.Equal(t, "SESSION_ID", assign.Name)
	v, ok := assign.Value.(*ast.Variable)
	require.True(t, ok)
	require.Equal(t, "RANDOM", v.Name)
}

func TestParseExportedAssignment(t *testing.T) {
	a, err := Parse([]byte("export PATH=/usr/bin"))
	require.NoError(t, err)
	assign := a.Statements[0].(*ast.Assignment)
	require.True(t, assign.Exported)
	require.Equal(t, "PATH", assign.Name)
}

func TestParseIfElifElse(t *testing.T) {
	src := `if [ -f /tmp/ready ]; then
  echo ready
elif [ -f /tmp/pending ]; then
  echo pending
else
  echo missing
fi`
	a, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, a.Statements, 1)
	ifStmt, ok := a.Statements[0].(*ast.If)
	require.True(t, ok)
	require.Len(t, ifStmt.Then, 1)
	require.Len(t, ifStmt.Elif, 1)
	require.True(t, ifStmt.HasElse)

	test, ok := ifStmt.Cond.(*ast.Test)
	require.True(t, ok)
	require.False(t, test.Extended)
	_, ok = test.Expr.(*ast.FileExists)
	require.True(t, ok)
}

func TestParseUntilStaysUntil(t *testing.T) {
	a, err := Parse([]byte("until [ -f /tmp/ready ]; do sleep 1; done"))
	require.NoError(t, err)
	_, ok := a.Statements[0].(*ast.Until)
	require.True(t, ok, "parser must not rewrite Until to While -- that is the purifier's job")
}

func TestParseWhileForCase(t *testing.T) {
	a, err := Parse([]byte(`
while [ "$x" != "done" ]; do
  x=next
done
for f in a b c; do
  echo "$f"
done
case "$1" in
  start|run) echo starting ;;
  stop) echo stopping ;;
  *) echo unknown ;;
esac
`))
	require.NoError(t, err)
	require.Len(t, a.Statements, 3)

	wh, ok := a.Statements[0].(*ast.While)
	require.True(t, ok)
	require.Len(t, wh.Body, 1)

	forStmt, ok := a.Statements[1].(*ast.For)
	require.True(t, ok)
	require.Equal(t, "f", forStmt.Var)

	caseStmt, ok := a.Statements[2].(*ast.Case)
	require.True(t, ok)
	require.Len(t, caseStmt.Arms, 3)
	require.Len(t, caseStmt.Arms[0].Patterns, 2)
}

func TestParseFunctionPosixForm(t *testing.T) {
	a, err := Parse([]byte("deploy() {\n  echo go\n}"))
	require.NoError(t, err)
	fn, ok := a.Statements[0].(*ast.Function)
	require.True(t, ok)
	require.Equal(t, "deploy", fn.Name)
	require.Len(t, fn.Body, 1)
}

func TestParsePipelineAndAndOr(t *testing.T) {
	a, err := Parse([]byte("rm /app/current && ln -s /app/releases/v1 /app/current"))
	require.NoError(t, err)
	seq, ok := a.Statements[0].(*ast.Sequence)
	require.True(t, ok)
	require.Equal(t, ast.ConjAnd, seq.Conj)
	require.Len(t, seq.Stmts, 2)
}

func TestParsePipelineStages(t *testing.T) {
	a, err := Parse([]byte("cat file | grep foo | sort"))
	require.NoError(t, err)
	pipe, ok := a.Statements[0].(*ast.Pipeline)
	require.True(t, ok)
	require.Len(t, pipe.Stages, 3)
}

func TestParseRedirections(t *testing.T) {
	a, err := Parse([]byte("echo hi > out.log 2>> err.log"))
	require.NoError(t, err)
	cmd := a.Statements[0].(*ast.Command)
	require.Len(t, cmd.Redirs, 2)
	require.Equal(t, ast.RedirOut, cmd.Redirs[0].Op)
	require.Equal(t, ast.RedirErrAppend, cmd.Redirs[1].Op)
}

func TestParseExtendedTest(t *testing.T) {
	a, err := Parse([]byte(`if [[ -n "$x" && -f /tmp/y ]]; then echo ok; fi`))
	require.NoError(t, err)
	ifStmt := a.Statements[0].(*ast.If)
	test := ifStmt.Cond.(*ast.Test)
	require.True(t, test.Extended)
	_, ok := test.Expr.(*ast.TestAnd)
	require.True(t, ok)
}

func TestParseArithmeticExpansion(t *testing.T) {
	a, err := Parse([]byte("x=$((10*1024*1024))"))
	require.NoError(t, err)
	assign := a.Statements[0].(*ast.Assignment)
	arith := assign.Value.(*ast.Arithmetic)
	bin, ok := arith.Expr.(*ast.ArithBinOp)
	require.True(t, ok)
	require.Equal(t, ast.ArithMul, bin.Op)
}

func TestParseParameterExpansions(t *testing.T) {
	a, err := Parse([]byte(`echo "${name:-default}"`))
	require.NoError(t, err)
	cmd := a.Statements[0].(*ast.Command)
	concat, ok := cmd.Args[0].(*ast.Concat)
	require.True(t, ok)
	require.True(t, concat.Quoted)
	_, ok = concat.Parts[0].(*ast.DefaultValue)
	require.True(t, ok)
}

func TestParseCommandSubstitution(t *testing.T) {
	a, err := Parse([]byte(`now=$(date +%s)`))
	require.NoError(t, err)
	assign := a.Statements[0].(*ast.Assignment)
	_, ok := assign.Value.(*ast.CommandSubst)
	require.True(t, ok)
}

func TestParseCommentsPreserved(t *testing.T) {
	a, err := Parse([]byte("# top comment\necho hi\n"))
	require.NoError(t, err)
	require.Len(t, a.Statements, 2)
	c, ok := a.Statements[0].(*ast.Comment)
	require.True(t, ok)
	require.Equal(t, " top comment", c.Text)
}

func TestParseUnterminatedStringFails(t *testing.T) {
	_, err := Parse([]byte(`echo "unterminated`))
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestParseMissingDoneFails(t *testing.T) {
	_, err := Parse([]byte("while true; do echo hi"))
	require.Error(t, err)
}

func TestParseNeverPanicsOnArbitraryBytes(t *testing.T) {
	inputs := []string{
		"", "$", "${", "$((", "[[", "case", "if", "\"", "'", "`",
		"fi done esac }} ))", string([]byte{0x00, 0x01, 0xff}),
	}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Parse panicked on %q: %v", in, r)
				}
			}()
			_, _ = Parse([]byte(in))
		}()
	}
}
