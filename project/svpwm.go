package project

import (
	"math"

	"gofoc/common/utils/maths"
)

// VoltageScale normalizes the signed 14-bit alpha/beta inputs to -1..+1.
const VoltageScale = 16384.0 // 2^14

// Sector is one of the six 60-degree wedges of the electrical angle.
type Sector int

const (
	Sector1 Sector = 1 + iota
	Sector2
	Sector3
	Sector4
	Sector5
	Sector6
)

// sectorOf classifies an angle in degrees into a sector. The wedges are
// half-open so every angle in (-180, 180] selects exactly one sector; the
// default arm is unreachable for finite atan2 output but keeps the
// mapping total.
func sectorOf(deg float64) Sector {
	switch {
	case deg >= 0 && deg <= 60:
		return Sector1
	case deg > 60 && deg <= 120:
		return Sector2
	case deg > 120 && deg <= 180:
		return Sector3
	case deg < -120 && deg > -180:
		return Sector4
	case deg < -60 && deg >= -120:
		return Sector5
	case deg < 0 && deg >= -60:
		return Sector6
	default:
		return Sector1
	}
}

// gates selects which computed switch time drives each half-bridge for
// this sector. Exhaustive over Sector1..Sector6; the default arm falls
// back to the sector 1 assignment.
func (s Sector) gates(ta, tb, tc, td float64) (float64, float64, float64) {
	switch s {
	case Sector1:
		return ta, tc, td
	case Sector2:
		return tb, ta, td
	case Sector3:
		return td, ta, tc
	case Sector4:
		return td, tb, ta
	case Sector5:
		return tc, td, ta
	case Sector6:
		return ta, td, tb
	default:
		return ta, tc, td
	}
}

// TickResult is the per-tick output of the encoder: the three half-bridge
// levels plus the diagnostic values a monitor may consume.
type TickResult struct {
	U float64
	V float64
	W float64

	Angle   float64 // radians
	Sector  Sector
	Carrier float64
	T1      float64
	T2      float64
	Tz      float64
}

// SVPWM decomposes a stationary-frame voltage vector into center-aligned
// gate times and compares them against a free-running carrier ramp.
//
// The carrier is the only persistent state: one continuous scalar
// integrated once per tick at a rate of (secondary - 0.5). The slope is
// deliberately left coupled to the secondary input instead of being a
// fixed-slope triangle generator; whether that coupling is intended or a
// leftover of an incomplete derivation is unresolved upstream, so it is
// reproduced as-is. Review with a motor-control domain expert before
// changing it.
//
// Not reentrant: the host must serialize ticks.
type SVPWM struct {
	Vbus float64 // inverter bus voltage, emitted level for a "high" phase
	Ts   float64 // carrier period

	state float64
}

func NewSVPWM(vbus, ts float64) *SVPWM {
	self := new(SVPWM)
	self.Vbus = vbus
	self.Ts = ts
	self.state = 0.
	return self
}

// Reset zeroes the carrier integrator, as at start of a run.
func (self *SVPWM) Reset() {
	self.state = 0.
}

// Carrier returns the instantaneous comparator reference, the integrator
// state scaled by 4.
func (self *SVPWM) Carrier() float64 {
	return 4.0 * self.state
}

// Tick computes the three phase levels for the current carrier value and
// then advances the carrier by one integration step of dt seconds.
func (self *SVPWM) Tick(v AlphaBeta, secondary, dt float64) TickResult {
	ramp := 4.0 * self.state
	va := v.Alpha / VoltageScale
	vb := v.Beta / VoltageScale

	angle := math.Atan2(vb, va)
	deg := maths.RadToDeg(angle)
	mi := math.Sqrt(va*va + vb*vb)

	sector := sectorOf(deg)
	n := float64(sector)

	// Active-vector duty fractions for the bounding vectors of sector n,
	// then the zero-vector remainder.
	del1 := (2.0 / math.Sqrt(3)) * mi * (math.Cos(angle)*math.Sin(n*math.Pi/3.0) - math.Sin(angle)*math.Cos(n*math.Pi/3.0))
	del2 := (2.0 / math.Sqrt(3)) * mi * (math.Sin(angle)*math.Cos((n-1.0)*math.Pi/3.0) - math.Cos(angle)*math.Sin((n-1.0)*math.Pi/3.0))
	del3 := 1.0 - math.Abs(del1) - math.Abs(del2)

	t1 := del1 * self.Ts
	t2 := del2 * self.Ts
	tz := del3 * self.Ts

	// Center-aligned decomposition.
	td := tz / 2.0
	ta := t1 + t2 + td
	tb := t1 + td
	tc := t2 + td

	sine1, sine2, sine3 := sector.gates(ta, tb, tc, td)

	u, vOut, w := 0.0, 0.0, 0.0
	if sine1 > ramp {
		u = self.Vbus
	}
	if sine2 > ramp {
		vOut = self.Vbus
	}
	if sine3 > ramp {
		w = self.Vbus
	}

	self.state += (secondary - 0.500) * dt

	return TickResult{
		U:       u,
		V:       vOut,
		W:       w,
		Angle:   angle,
		Sector:  sector,
		Carrier: ramp,
		T1:      t1,
		T2:      t2,
		Tz:      tz,
	}
}
