package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute_EstimatesTokensAndRatio(t *testing.T) {
	r := Compute(4000, 1000)
	assert.Equal(t, 1000, r.InputTokens)
	assert.Equal(t, 250, r.OutputTokens)
	assert.Equal(t, 4.0, r.Ratio)
}

func TestCompute_ZeroOutputLeavesRatioZero(t *testing.T) {
	r := Compute(400, 0)
	assert.Equal(t, 0, r.OutputTokens)
	assert.Equal(t, float64(0), r.Ratio)
}

func TestCompute_RoundsToNearestInteger(t *testing.T) {
	r := Compute(2, 0)
	assert.Equal(t, 1, r.InputTokens) // (2+2)/4 == 1
}
