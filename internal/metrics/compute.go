package metrics

import "math"

// computeMean calculates the arithmetic mean of values.
func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// computeStddev calculates sample standard deviation (n-1 denominator).
// A series with fewer than 2 observations reports 0; this single
// convention covers every path, including the one-constituent group-day.
func computeStddev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// compoundedReturnPct converts a series of daily mean returns (in percent)
// into the period return implied by multiplying the daily factors: the
// geometric mean of (1 + r/100), converted back to percent.
//
// Returns NaN when any factor is non-positive. A -100% day zeroes the
// compounding chain and a geometric mean over non-positive numbers is
// undefined; NaN keeps that case distinguishable from a real 0% return.
func compoundedReturnPct(dailyReturnsPct []float64) float64 {
	n := len(dailyReturnsPct)
	if n == 0 {
		return 0
	}
	logSum := 0.0
	for _, r := range dailyReturnsPct {
		factor := 1 + r/100
		if factor <= 0 {
			return math.NaN()
		}
		logSum += math.Log(factor)
	}
	return (math.Exp(logSum/float64(n)) - 1) * 100
}
