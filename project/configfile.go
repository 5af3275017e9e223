package project

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config carries the run parameters the host would otherwise pass as
// block parameters. Validated once at load; the core assumes a valid
// configuration and never re-checks per tick.
type Config struct {
	BusVoltage    float64 `json:"bus_voltage"`
	CarrierPeriod float64 `json:"carrier_period"`
	TickTime      float64 `json:"tick_time"`
	LimiterMode   string  `json:"limiter_mode"`

	// open-loop stimulus for the CLI runner
	CommandVq    int16   `json:"command_vq"`
	CommandVd    int16   `json:"command_vd"`
	ElectricalHz float64 `json:"electrical_hz"`
	Ticks        int     `json:"ticks"`

	OutputDir string `json:"output_dir"`
	LogFile   string `json:"log_file"`

	// optional downstream gate sink
	SerialPort string `json:"serial_port"`
	SerialBaud int    `json:"serial_baud"`
}

func DefaultConfig() *Config {
	return &Config{
		BusVoltage:    24.0,
		CarrierPeriod: 50e-6,
		TickTime:      50e-6,
		LimiterMode:   "table",
		CommandVq:     24000,
		CommandVd:     8000,
		ElectricalHz:  50.0,
		Ticks:         2000,
		OutputDir:     "output",
		LogFile:       "gofoc.log",
		SerialBaud:    115200,
	}
}

func LoadConfig(path string) (*Config, error) {
	self := DefaultConfig()

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(content, self); err != nil {
		return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
	}

	if err := self.Validate(); err != nil {
		return nil, err
	}
	return self, nil
}

func (self *Config) Validate() error {
	if self.CarrierPeriod <= 0 {
		return fmt.Errorf("carrier_period must be positive, got %g", self.CarrierPeriod)
	}
	if self.TickTime <= 0 {
		return fmt.Errorf("tick_time must be positive, got %g", self.TickTime)
	}
	if self.BusVoltage < 0 {
		return fmt.Errorf("bus_voltage must be non-negative, got %g", self.BusVoltage)
	}
	if _, err := self.limitMode(); err != nil {
		return err
	}
	if self.Ticks < 0 {
		return fmt.Errorf("ticks must be non-negative, got %d", self.Ticks)
	}
	return nil
}

func (self *Config) limitMode() (LimitMode, error) {
	switch self.LimiterMode {
	case "table", "":
		return LimitModeTable, nil
	case "exact":
		return LimitModeExact, nil
	default:
		return 0, fmt.Errorf("limiter_mode must be \"table\" or \"exact\", got %q", self.LimiterMode)
	}
}
