package project

import (
	"math"

	"gofoc/common/logger"
	"gofoc/common/utils/sys"
)

// TickInput is everything the upstream controller supplies for one tick:
// the rotor-frame command, the electrical angle, and the carrier drive.
type TickInput struct {
	Vq        int16
	Vd        int16
	Theta     float64
	Secondary float64
	Dt        float64
}

// TickOutput carries the encoder result plus the stage intermediates for
// monitoring.
type TickOutput struct {
	Limited    QD
	Stationary AlphaBeta
	TickResult
}

// Pipeline wires limiter, rotator and encoder into the per-tick chain
// limit -> rotate -> encode. Strictly feed-forward; the encoder's carrier
// integrator is the only state. One in-flight tick at a time.
type Pipeline struct {
	limiter *CircleLimitation
	encoder *SVPWM
}

func NewPipeline(cfg *Config) (*Pipeline, error) {
	mode, err := cfg.limitMode()
	if err != nil {
		return nil, err
	}

	limiter, err := NewCircleLimitation(mode)
	if err != nil {
		return nil, err
	}

	self := new(Pipeline)
	self.limiter = limiter
	self.encoder = NewSVPWM(cfg.BusVoltage, cfg.CarrierPeriod)
	return self, nil
}

func (self *Pipeline) Limiter() *CircleLimitation {
	return self.limiter
}

func (self *Pipeline) Encoder() *SVPWM {
	return self.encoder
}

// Tick evaluates one control tick.
func (self *Pipeline) Tick(in TickInput) TickOutput {
	limited := self.limiter.Limit(QD{Q: in.Vq, D: in.Vd})
	stationary := RevPark(limited, in.Theta)
	result := self.encoder.Tick(stationary, in.Secondary, in.Dt)

	return TickOutput{
		Limited:    limited,
		Stationary: stationary,
		TickResult: result,
	}
}

// Run drives n ticks from the stimulus function, recording each output.
// rec may be nil when only the final state matters.
func (self *Pipeline) Run(n int, stim func(i int) TickInput, rec *TraceRecorder) {
	defer sys.CatchPanic()

	for i := 0; i < n; i++ {
		out := self.Tick(stim(i))
		if rec != nil {
			rec.Append(out)
		}
	}
	logger.Debugf("pipeline run complete: %d ticks, carrier=%.6f", n, self.encoder.Carrier())
}

// OpenLoopStimulus builds the default CLI stimulus: a fixed qd command,
// an electrical angle advancing at hz, and a secondary input toggling
// between 1 and 0 every tick so the carrier ramps symmetrically.
func OpenLoopStimulus(cfg *Config) func(i int) TickInput {
	omega := 2.0 * math.Pi * cfg.ElectricalHz
	return func(i int) TickInput {
		secondary := 0.0
		if i%2 == 0 {
			secondary = 1.0
		}
		return TickInput{
			Vq:        cfg.CommandVq,
			Vd:        cfg.CommandVd,
			Theta:     omega * float64(i) * cfg.TickTime,
			Secondary: secondary,
			Dt:        cfg.TickTime,
		}
	}
}
