package project

import "math"

// AlphaBeta is a voltage vector in the stationary frame. Intermediate
// value only, never persisted across ticks.
type AlphaBeta struct {
	Alpha float64
	Beta  float64
}

// RevPark rotates a limited qd vector by the electrical angle theta
// (radians) into the stationary frame:
//
//	alpha =  q*cos(theta) + d*sin(theta)
//	beta  = -q*sin(theta) + d*cos(theta)
//
// Pure function, direct feedthrough, total over all finite theta.
func RevPark(vqd QD, theta float64) AlphaBeta {
	sin, cos := math.Sincos(theta)
	q := float64(vqd.Q)
	d := float64(vqd.D)
	return AlphaBeta{
		Alpha: q*cos + d*sin,
		Beta:  -q*sin + d*cos,
	}
}
