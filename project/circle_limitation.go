package project

import (
	"fmt"

	"gofoc/common/utils/maths"
)

// QD is a commanded voltage vector in the rotor reference frame, signed
// 16-bit fixed point. Full scale corresponds to the configured maximum
// module of the inverter.
type QD struct {
	Q int16
	D int16
}

type LimitMode int

const (
	// LimitModeTable scales both components by a table coefficient so the
	// direction is preserved, no square root at runtime.
	LimitModeTable LimitMode = iota
	// LimitModeExact holds the d axis when it fits under MaxVd and solves
	// the q axis from the remaining budget with an integer square root.
	LimitModeExact
)

// MMI table for 94% maximum modulation, MaxModule 30800. Indexed by
// (q*q+d*d)>>24 - startIndex; each entry is an attenuation ratio in
// 1/32768 units.
const (
	MaxModuleDefault  = 30800
	startIndexDefault = 56
)

var mmiTable = []uint16{
	32607, 32293, 31988, 31691, 31546, 31261, 30984, 30714, 30451, 30322,
	30069, 29822, 29581, 29346, 29231, 29004, 28782, 28565, 28353, 28249,
	28044, 27843, 27647, 27455, 27360, 27174, 26991, 26812, 26724, 26550,
	26380, 26213, 26049, 25968, 25808, 25652, 25498, 25347, 25272, 25125,
	24981, 24839, 24699, 24630, 24494, 24360, 24228, 24098, 24034, 23908,
	23783, 23660, 23600, 23480, 23361, 23245, 23131, 23074, 22962, 22851,
	22742, 22635, 22582, 22477, 22373, 22271, 22170, 22120, 22021, 21924,
	21827, 21732,
}

// CircleLimitation clamps a qd voltage command to the maximum module the
// inverter can synthesize. Immutable after construction; shared freely.
type CircleLimitation struct {
	MaxModule  uint16
	MaxVd      uint16
	Table      []uint16
	StartIndex uint8
	Mode       LimitMode
}

func NewCircleLimitation(mode LimitMode) (*CircleLimitation, error) {
	if err := validateLimitTable(mmiTable); err != nil {
		return nil, err
	}

	self := new(CircleLimitation)
	self.MaxModule = MaxModuleDefault
	self.MaxVd = uint16(MaxModuleDefault * 950 / 1000)
	self.Table = mmiTable
	self.StartIndex = startIndexDefault
	self.Mode = mode
	return self, nil
}

// validateLimitTable checks the attenuation table is non-empty and
// strictly decreasing; a non-monotone table would let the limiter grow a
// vector instead of shrinking it. Checked once at construction, never
// per call.
func validateLimitTable(table []uint16) error {
	if len(table) == 0 {
		return fmt.Errorf("limit table is empty")
	}
	for i := 1; i < len(table); i++ {
		if table[i] >= table[i-1] {
			return fmt.Errorf("limit table not strictly decreasing at index %d: %d >= %d",
				i, table[i], table[i-1])
		}
	}
	return nil
}

// Limit returns vqd unchanged when its magnitude is at or inside the
// limiting circle, otherwise shrinks it according to the configured mode.
// Total over the whole int16 domain; never errors.
func (self *CircleLimitation) Limit(vqd QD) QD {
	squareQ := int32(vqd.Q) * int32(vqd.Q)
	squareD := int32(vqd.D) * int32(vqd.D)
	// the sum reaches exactly 2^31 for the extreme negative corner, one
	// past int32; accumulate unsigned so the gate stays total over the
	// full int16 domain
	squareSum := uint32(squareQ) + uint32(squareD)
	squareLimit := uint32(self.MaxModule) * uint32(self.MaxModule)

	if squareSum <= squareLimit {
		return vqd
	}

	if self.Mode == LimitModeExact {
		return self.limitExact(vqd, squareD, int32(squareLimit))
	}
	return self.limitTable(vqd, squareSum)
}

func (self *CircleLimitation) limitTable(vqd QD, squareSum uint32) QD {
	// squareSum>>24 lies in [StartIndex, 128] for the shipped constants.
	// Clamp rather than wrap on overshoot: a high-end index reads the
	// last (most attenuating) entry.
	idx := int(squareSum/16777216) - int(self.StartIndex)
	if idx < 0 {
		idx = 0
	}
	if idx >= len(self.Table) {
		idx = len(self.Table) - 1
	}
	k := int32(self.Table[idx])

	local := vqd
	local.Q = int16(int32(vqd.Q) * k / 32768)
	local.D = int16(int32(vqd.D) * k / 32768)
	return local
}

func (self *CircleLimitation) limitExact(vqd QD, squareD, squareLimit int32) QD {
	vdSquareLimit := int32(self.MaxVd) * int32(self.MaxVd)

	var newQ, newD int32
	if squareD <= vdSquareLimit {
		newQ = maths.ISqrt(squareLimit - squareD)
		newD = int32(vqd.D)
	} else {
		newD = int32(self.MaxVd)
		if vqd.D < 0 {
			newD = -newD
		}
		newQ = maths.ISqrt(squareLimit - vdSquareLimit)
	}
	if vqd.Q < 0 {
		newQ = -newQ
	}

	return QD{Q: int16(newQ), D: int16(newD)}
}
