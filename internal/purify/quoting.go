package purify

import (
	"github.com/aledsdavies/shellpure/internal/ast"
	"github.com/aledsdavies/shellpure/internal/diag"
)

// quotingPass is the identity transform. The spec describes it as
// marking every bare Variable command argument "must-quote" so the
// emitter can be deterministic about quoting; this emitter (see
// internal/emit) always renders a Variable used as a command argument as
// `"${name}"` unconditionally, so there is no node state left to mark --
// the invariant the pass exists to establish already holds for every
// Variable node regardless of this pass running. The pass stays in the
// fixed list, rather than being dropped, so the order of
// determinism/idempotency/quoting/posix-normalize/guards documented in
// the spec is visible in the code, and so a future emitter that needs
// selective quoting has an obvious place to add the marking back.
func quotingPass(a *ast.Ast) (*ast.Ast, []diag.Diagnostic, error) {
	return a, nil, nil
}
