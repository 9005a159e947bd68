// Package ir defines the lowered form consumed by the optimizer and the
// emitter. The AST remains canonical for lint and purify; IR exists
// because constant-folding recursion is cleaner on a normalized shape
// where arithmetic is explicit, mirroring the closed sum-type-via-interface
// style of a canonical-form-then-fold two-pass pipeline.
package ir

import "github.com/aledsdavies/shellpure/internal/ast"

// Node is the IR sum type. Every statement that survives lowering is one
// of these; statements that do not need lowering are represented by
// Verbatim, which carries the original AST statement through unchanged.
type Node interface {
	irNode()
}

// Let binds a name to a lowered value. It is the only IR node the
// optimizer rewrites.
type Let struct {
	Name     string
	Value    Value
	Exported bool
	Effects  []Effect
	Sp       ast.Span
}

func (*Let) irNode() {}

// Verbatim carries an AST statement that needs no lowering (commands,
// control flow, pipelines, ...) through the IR stage unchanged so the
// emitter has a single input shape to walk.
type Verbatim struct {
	Stmt ast.Stmt
}

func (*Verbatim) irNode() {}

// Value is the IR's expression sum type. Only Arithmetic is subject to
// optimization; the others are opaque passthroughs of the original Expr.
type Value interface {
	irValue()
}

// String carries a non-arithmetic Expr through unchanged.
type String struct {
	Expr ast.Expr
}

func (String) irValue() {}

// Arithmetic is the lowered, explicit form of ast.Arithmetic: a binary
// operation tree the optimizer can fold without needing to re-derive
// precedence from the AST's ArithBinOp shape.
type Arithmetic struct {
	Op    ast.ArithOp
	Left  Value
	Right Value
}

func (Arithmetic) irValue() {}

// Const is a folded integer constant, the optimizer's output shape for a
// successfully-folded Arithmetic node.
type Const struct {
	N int64
}

func (Const) irValue() {}

// Variable is a bare arithmetic variable reference; present whenever an
// Arithmetic node's operand could not be reduced to a Const.
type Variable struct {
	Name string
}

func (Variable) irValue() {}

// Capture carries a command substitution through lowering unchanged; it
// is never arithmetic and never folded.
type Capture struct {
	Body ast.Stmt
}

func (Capture) irValue() {}

// Effect records a side effect attached to a Let binding. Lowering leaves
// Let.Effects empty; export is represented by Let.Exported instead.
type Effect struct {
	Kind string
}

// Program is the lowered form of a full Ast: a flat sequence of Nodes in
// source order. Nesting (If/While/For/Case bodies) is preserved by each
// Verbatim's embedded ast.Stmt rather than being re-expressed in IR --
// only arithmetic assignments need the lowered shape.
type Program struct {
	Nodes []Node
}

// Lower converts a purified Ast into a Program. Assignments whose value
// is ast.Arithmetic become Let{Value: Arithmetic{...}}; everything else
// round-trips as Verbatim, including assignments to non-arithmetic
// values, per spec: "All other statements round-trip unchanged."
func Lower(a *ast.Ast) *Program {
	prog := &Program{Nodes: make([]Node, 0, len(a.Statements))}
	for _, stmt := range a.Statements {
		prog.Nodes = append(prog.Nodes, lowerStmt(stmt))
	}
	return prog
}

func lowerStmt(stmt ast.Stmt) Node {
	assign, ok := stmt.(*ast.Assignment)
	if !ok {
		return &Verbatim{Stmt: stmt}
	}
	arith, ok := assign.Value.(*ast.Arithmetic)
	if !ok {
		return &Verbatim{Stmt: stmt}
	}
	return &Let{
		Name:     assign.Name,
		Value:    lowerArith(arith.Expr),
		Exported: assign.Exported,
		Sp:       assign.Sp,
	}
}

func lowerArith(a ast.Arith) Value {
	switch n := a.(type) {
	case *ast.ArithNumber:
		return Const{N: n.Value}
	case *ast.ArithVariable:
		return Variable{Name: n.Name}
	case *ast.ArithBinOp:
		return Arithmetic{Op: n.Op, Left: lowerArith(n.Left), Right: lowerArith(n.Right)}
	default:
		// Unreachable for the closed ast.Arith sum type; a new variant
		// added there without a lowering case here is a programmer bug,
		// not a runtime condition worth a typed error.
		panic("ir: unhandled ast.Arith variant")
	}
}

// Raise converts a Program back into statements, reversing Lower for
// nodes the optimizer left as Const/Variable/Arithmetic. It is the
// inverse the emitter drives: every Let becomes an ast.Assignment whose
// Value is either a Literal (folded to Const) or an ast.Arithmetic
// rebuilt from the surviving Arithmetic/Variable tree.
func Raise(prog *Program) []ast.Stmt {
	stmts := make([]ast.Stmt, 0, len(prog.Nodes))
	for _, n := range prog.Nodes {
		switch node := n.(type) {
		case *Verbatim:
			stmts = append(stmts, node.Stmt)
		case *Let:
			stmts = append(stmts, raiseLet(node))
		}
	}
	return stmts
}

func raiseLet(l *Let) ast.Stmt {
	value := raiseValue(l.Value, l.Sp)
	return &ast.Assignment{Name: l.Name, Value: value, Exported: l.Exported, Sp: l.Sp}
}

func raiseValue(v Value, sp ast.Span) ast.Expr {
	switch val := v.(type) {
	case Const:
		return &ast.Literal{Value: formatInt(val.N), Sp: sp}
	default:
		return &ast.Arithmetic{Expr: raiseArith(v, sp), Sp: sp}
	}
}

func raiseArith(v Value, sp ast.Span) ast.Arith {
	switch val := v.(type) {
	case Const:
		return &ast.ArithNumber{Value: val.N, Sp: sp}
	case Variable:
		return &ast.ArithVariable{Name: val.Name, Sp: sp}
	case Arithmetic:
		return &ast.ArithBinOp{Op: val.Op, Left: raiseArith(val.Left, sp), Right: raiseArith(val.Right, sp), Sp: sp}
	default:
		panic("ir: unhandled Value variant in raiseArith")
	}
}

func formatInt(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	u := uint64(n)
	if neg {
		u = uint64(-n)
	}
	var buf [20]byte
	i := len(buf)
	for u > 0 {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
