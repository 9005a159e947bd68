package rules

import (
	"github.com/aledsdavies/shellpure/internal/ast"
	"github.com/aledsdavies/shellpure/internal/diag"
)

// funcRule adapts a plain check function to the Rule interface so each
// individual SEC/DET/IDEM/SC rule can be a short function instead of a
// one-off named type.
type funcRule struct {
	code  diag.RuleCode
	check func(*ast.Ast) []diag.Diagnostic
}

func (r funcRule) Code() diag.RuleCode                    { return r.code }
func (r funcRule) Check(a *ast.Ast) []diag.Diagnostic { return r.check(a) }
