// Package volume evaluates the operator's kernel-volume formula. The
// formula is an arithmetic expression over exactly three named scalars:
// P1 (mean pressure in the initial interval), P2 (mean pressure in the
// final interval) and V_chamber. Evaluation is sandboxed: the compiled
// environment exposes nothing but those three names.
package volume

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// DefaultFormula is the configuration seed, not a physical constant; rigs
// with different plumbing override it.
const DefaultFormula = "V_chamber*(1 - P2/P1)"

// EvalError wraps any parse or evaluation failure. Callers keep their
// previously displayed result when they receive one.
type EvalError struct {
	Formula string
	Err     error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("volume: evaluating %q: %v", e.Formula, e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

// Evaluate computes the kernel volume from the two interval means and the
// chamber volume. Unknown names in the formula fail at compile time, so a
// typo never silently evaluates to zero.
func Evaluate(p1, p2, vChamber float64, formula string) (float64, error) {
	env := map[string]interface{}{
		"P1":        p1,
		"P2":        p2,
		"V_chamber": vChamber,
	}

	program, err := expr.Compile(formula, expr.Env(env), expr.AsFloat64())
	if err != nil {
		return 0, &EvalError{Formula: formula, Err: err}
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return 0, &EvalError{Formula: formula, Err: err}
	}
	return out.(float64), nil
}
