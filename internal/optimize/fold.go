// Package optimize implements the purification engine's single
// optimizer pass: constant folding over IR arithmetic, modeled on a
// two-pass "build canonical form, then fold" structure.
package optimize

import (
	"math"

	"github.com/aledsdavies/shellpure/internal/ast"
	"github.com/aledsdavies/shellpure/internal/ir"
)

// Config controls whether folding runs at all; wired to the core API's
// --no-optimize flag.
type Config struct {
	Disabled bool
}

// Fold walks a Program and replaces every Arithmetic IR value whose
// operands are both foldable constants with a Const, per spec:
//
//   - Add/Sub/Mul/Mod fold unconditionally when both operands are
//     constant integers.
//   - Div and Mod by zero are never folded -- the unfolded arithmetic is
//     preserved so the error surfaces at runtime, not at emit time.
//   - Checked-overflow failures abort folding for that node only.
//   - Any node containing a Variable operand is left unfolded.
//
// Folding never changes the set of runtime errors a script can raise,
// only whether a given error is detected at fold time (never, by
// construction above) or at runtime (always, when folding declines).
func Fold(prog *ir.Program, cfg Config) *ir.Program {
	if cfg.Disabled {
		return prog
	}
	out := &ir.Program{Nodes: make([]ir.Node, len(prog.Nodes))}
	for i, n := range prog.Nodes {
		let, ok := n.(*ir.Let)
		if !ok {
			out.Nodes[i] = n
			continue
		}
		folded := *let
		folded.Value = foldValue(let.Value)
		out.Nodes[i] = &folded
	}
	return out
}

func foldValue(v ir.Value) ir.Value {
	arith, ok := v.(ir.Arithmetic)
	if !ok {
		return v
	}
	left := foldValue(arith.Left)
	right := foldValue(arith.Right)

	lc, lok := left.(ir.Const)
	rc, rok := right.(ir.Const)
	if !lok || !rok {
		return ir.Arithmetic{Op: arith.Op, Left: left, Right: right}
	}

	result, ok := foldOp(arith.Op, lc.N, rc.N)
	if !ok {
		return ir.Arithmetic{Op: arith.Op, Left: left, Right: right}
	}
	return ir.Const{N: result}
}

// foldOp returns (result, true) when the operation can be folded at
// compile time, or (0, false) when folding must be deferred to runtime
// (division/modulo by zero, or overflow).
func foldOp(op ast.ArithOp, l, r int64) (int64, bool) {
	switch op {
	case ast.ArithAdd:
		sum := l + r
		if (r > 0 && sum < l) || (r < 0 && sum > l) {
			return 0, false // overflow
		}
		return sum, true
	case ast.ArithSub:
		diff := l - r
		if (r < 0 && diff < l) || (r > 0 && diff > l) {
			return 0, false // overflow
		}
		return diff, true
	case ast.ArithMul:
		if l == 0 || r == 0 {
			return 0, true
		}
		product := l * r
		if product/r != l {
			return 0, false // overflow
		}
		if (l == -1 && r == math.MinInt64) || (r == -1 && l == math.MinInt64) {
			return 0, false
		}
		return product, true
	case ast.ArithDiv:
		if r == 0 {
			return 0, false
		}
		if l == math.MinInt64 && r == -1 {
			return 0, false // overflow
		}
		return l / r, true
	case ast.ArithMod:
		if r == 0 {
			return 0, false
		}
		if l == math.MinInt64 && r == -1 {
			return 0, false
		}
		return l % r, true
	default:
		return 0, false
	}
}
