package swing

// Kind selects which extremum Points looks for.
type Kind int

const (
	High Kind = iota
	Low
)

// Points returns the indices where prices[i] is the strict extremum over
// the closed window [i-w, i+w]. Indices are ascending and always at least
// w away from either edge. The scan is recomputed on every call; nothing
// is memoized.
func Points(prices []float64, w int, kind Kind) []int {
	n := len(prices)
	var out []int
	for i := w; i < n-w; i++ {
		if isExtremum(prices, i, w, kind) {
			out = append(out, i)
		}
	}
	return out
}

func isExtremum(prices []float64, i, w int, kind Kind) bool {
	for j := i - w; j <= i+w; j++ {
		if j == i {
			continue
		}
		if kind == High && prices[j] >= prices[i] {
			return false
		}
		if kind == Low && prices[j] <= prices[i] {
			return false
		}
	}
	return true
}

// Line is a trendline in bar-index space.
type Line struct {
	Slope     float64
	Intercept float64
}

// ValueAt returns the line's price at bar index i.
func (l Line) ValueAt(i int) float64 {
	return l.Slope*float64(i) + l.Intercept
}

// FitLine runs an ordinary least-squares regression through the
// (index, prices[index]) pairs. It reports false when fewer than two
// points are supplied or the regression is degenerate. The result is
// consumed immediately by the caller and never cached.
func FitLine(indices []int, prices []float64) (Line, bool) {
	if len(indices) < 2 {
		return Line{}, false
	}

	var sumX, sumY, sumXY, sumXX float64
	for _, idx := range indices {
		x := float64(idx)
		y := prices[idx]
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	n := float64(len(indices))
	den := n*sumXX - sumX*sumX
	if den == 0 {
		return Line{}, false
	}

	slope := (n*sumXY - sumX*sumY) / den
	return Line{
		Slope:     slope,
		Intercept: (sumY - slope*sumX) / n,
	}, true
}
