package volume_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pycnolab/pressure-rig/internal/volume"
)

func TestEvaluateDefaultFormula(t *testing.T) {
	// P1 and P2 from the canonical pressure-drop run: 100*(1 - 0.405/1.0125) = 60.
	result, err := volume.Evaluate(1.0125, 0.405, 100.0, volume.DefaultFormula)
	require.NoError(t, err)
	require.InDelta(t, 60.0, result, 1e-9)
}

func TestEvaluateAlternateFormula(t *testing.T) {
	result, err := volume.Evaluate(2.0, 0.5, 10.0, "2*V_chamber*(P1 - P2)/(1 - P2)")
	require.NoError(t, err)
	require.InDelta(t, 60.0, result, 1e-9)
}

func TestEvaluateParenthesesAndOperators(t *testing.T) {
	result, err := volume.Evaluate(3.0, 1.0, 2.0, "(P1 + P2) * V_chamber - P1 / P2")
	require.NoError(t, err)
	require.InDelta(t, 5.0, result, 1e-9)
}

func TestEvaluateUndefinedName(t *testing.T) {
	_, err := volume.Evaluate(1.0, 1.0, 1.0, "V_chamber * P3")
	require.Error(t, err)

	var evalErr *volume.EvalError
	require.ErrorAs(t, err, &evalErr)
	require.Equal(t, "V_chamber * P3", evalErr.Formula)
}

func TestEvaluateSyntaxError(t *testing.T) {
	_, err := volume.Evaluate(1.0, 1.0, 1.0, "V_chamber * (1 -")
	var evalErr *volume.EvalError
	require.ErrorAs(t, err, &evalErr)
}

func TestEvaluateRejectsNonArithmetic(t *testing.T) {
	// Anything outside the three scalars is out of the sandbox.
	_, err := volume.Evaluate(1.0, 1.0, 1.0, `import "os"`)
	require.Error(t, err)
}
