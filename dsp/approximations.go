package dsp

import "math"

// Polynomial coefficients for continuous error function approximation.
// These coefficients provide a fast log2 approximation using a five-coefficient
// (4th-degree) polynomial that approximates log2(m)+1 for m in [1, 2).
//
//nolint:gochecknoglobals // Mathematical constants used across all FastLog2 calls
var cl2Continuous5 = []float64{
	-0.0821343513178931783,
	0.649732456739820052,
	-2.13417801862571777,
	4.08642207062728868,
	-1.51984215742349793,
}

// FastLog2 provides a fast approximation of log2(x) using polynomial evaluation.
// This is significantly faster than math.Log2() with acceptable accuracy for audio DSP.
//
// The approximation works by:
// 1. Extracting the exponent and mantissa using math.Frexp
// 2. Approximating log2(mantissa) using a polynomial
// 3. Combining: log2(x) = exponent + log2(mantissa).
func FastLog2(x float64) float64 {
	// Handle edge cases to avoid log(0)
	if x <= 0 {
		return -math.Inf(1)
	}

	// Extract exponent and mantissa
	// Frexp breaks x into mantissa (0.5 <= frac < 1.0) and exponent;
	// rescale so that x = m * 2^(exp-1) with m in [1, 2)
	frac, exp := math.Frexp(x)
	m := 2 * frac

	// Approximate log2(m)+1 using Horner's method for polynomial evaluation
	logMantissa := cl2Continuous5[0]*m + cl2Continuous5[1]
	logMantissa = logMantissa*m + cl2Continuous5[2]
	logMantissa = logMantissa*m + cl2Continuous5[3]
	logMantissa = logMantissa*m + cl2Continuous5[4]

	// Compute log2(x) = (exp-1) + log2(m) = (exp-1) + (logMantissa-1)
	return float64(exp-2) + logMantissa
}
