package swing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointsFindsStrictHighs(t *testing.T) {
	// Declining baseline with spikes at 5 and 12.
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100 - 0.1*float64(i)
	}
	prices[5] = 110
	prices[12] = 108

	got := Points(prices, 2, High)
	assert.Equal(t, []int{5, 12}, got)
}

func TestPointsFindsStrictLows(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100 + 0.1*float64(i)
	}
	prices[7] = 90
	prices[15] = 92

	got := Points(prices, 2, Low)
	assert.Equal(t, []int{7, 15}, got)
}

func TestPointsNeverReturnsEdgeIndices(t *testing.T) {
	// Extremes sit at the edges; nothing inside [w, n-w) qualifies.
	prices := []float64{120, 100, 99, 98, 97, 96, 95, 130}
	assert.Empty(t, Points(prices, 2, High))

	// Interior spike combined with edge spikes: only the interior one
	// may be returned, and only when it wins its full window.
	prices = []float64{90, 100, 99, 115, 99, 100, 90, 91}
	got := Points(prices, 2, High)
	for _, i := range got {
		assert.GreaterOrEqual(t, i, 2)
		assert.Less(t, i, len(prices)-2)
		for j := i - 2; j <= i+2; j++ {
			if j != i {
				assert.Greater(t, prices[i], prices[j])
			}
		}
	}
}

func TestPointsRejectsTiedWindowMax(t *testing.T) {
	// Twin peaks: neither is a strict window maximum.
	prices := []float64{100, 101, 105, 105, 101, 100, 99}
	assert.Empty(t, Points(prices, 2, High))
}

func TestFitLineExact(t *testing.T) {
	prices := make([]float64, 40)
	// y = -0.5x + 100 sampled at the fit indices.
	for _, i := range []int{5, 20, 35} {
		prices[i] = 100 - 0.5*float64(i)
	}

	line, ok := FitLine([]int{5, 20, 35}, prices)
	require.True(t, ok)
	assert.InDelta(t, -0.5, line.Slope, 1e-9)
	assert.InDelta(t, 100, line.Intercept, 1e-9)
	assert.InDelta(t, 95, line.ValueAt(10), 1e-9)
}

func TestFitLineLeastSquares(t *testing.T) {
	prices := make([]float64, 10)
	prices[0] = 1
	prices[1] = 3
	prices[2] = 2

	line, ok := FitLine([]int{0, 1, 2}, prices)
	require.True(t, ok)
	assert.InDelta(t, 0.5, line.Slope, 1e-9)
	assert.InDelta(t, 1.5, line.Intercept, 1e-9)
}

func TestFitLineTooFewPoints(t *testing.T) {
	_, ok := FitLine([]int{3}, []float64{0, 0, 0, 7})
	assert.False(t, ok)

	_, ok = FitLine(nil, nil)
	assert.False(t, ok)
}
