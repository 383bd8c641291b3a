package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	require.Equal(t, 0.0, Mean(nil))
	require.InDelta(t, 0.5, Mean([]float64{0.2, 0.5, 0.8}), 1e-9)
}

func TestVariancePopulation(t *testing.T) {
	require.Equal(t, 0.0, Variance(nil))
	require.Equal(t, 0.0, Variance([]float64{0.7}))
	// Population variance of {0.2, 0.8} is 0.09, not the sample 0.18.
	require.InDelta(t, 0.09, Variance([]float64{0.2, 0.8}), 1e-9)
}

func TestStdDev(t *testing.T) {
	require.InDelta(t, 0.3, StdDev([]float64{0.2, 0.8}), 1e-9)
	require.GreaterOrEqual(t, StdDev([]float64{0.1, 0.9, 0.4}), 0.0)
}

func TestMinMax(t *testing.T) {
	lo, hi := MinMax(nil)
	require.Equal(t, 0.0, lo)
	require.Equal(t, 0.0, hi)

	lo, hi = MinMax([]float64{0.5, 0.1, 0.9, 0.3})
	require.Equal(t, 0.1, lo)
	require.Equal(t, 0.9, hi)
}
