package utils

import "math"

// QuantityEpsilon is the tolerance used when comparing share quantities.
// Broker exports carry fractional shares with limited precision, so exact
// comparison against zero is unreliable.
const QuantityEpsilon = 1e-9

// RoundFloat rounds a float64 to a specified number of decimal places.
func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// RoundGBP rounds a monetary value to 2 decimal places, the statutory
// reporting granularity. Rounding happens at each computation step, not
// cumulatively at the end, so repeated runs reproduce the same figures.
func RoundGBP(val float64) float64 {
	return RoundFloat(val, 2)
}

// MinFloat returns the smaller of two float64 values.
func MinFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
