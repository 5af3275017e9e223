package maths

import "math"

func Saturate(val float64, min float64, max float64) float64 {
	if val < min {
		return min
	} else if val > max {
		return max
	} else {
		return val
	}
}

func RadToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// ISqrt returns floor(sqrt(x)) for non-negative x using bitwise
// digit-by-digit extraction, no floating point. Negative inputs yield 0.
func ISqrt(x int32) int32 {
	if x <= 0 {
		return 0
	}

	v := uint32(x)
	var res uint32
	bit := uint32(1) << 30
	for bit > v {
		bit >>= 2
	}
	for bit != 0 {
		if v >= res+bit {
			v -= res + bit
			res = res>>1 + bit
		} else {
			res >>= 1
		}
		bit >>= 2
	}
	return int32(res)
}
