package project

import (
	"fmt"
	"math"

	"github.com/flosch/pongo2/v5"
	uuid "github.com/satori/go.uuid"

	"gofoc/common/file"
)

var reportTemplate = pongo2.Must(pongo2.FromString(`run {{ run_id }}
ticks: {{ ticks }}
bus voltage: {{ bus_voltage }} V
carrier period: {{ carrier_period }} s

modulation index: min {{ mi_min|floatformat:4 }}  max {{ mi_max|floatformat:4 }}
carrier range: [{{ carrier_min|floatformat:6 }}, {{ carrier_max|floatformat:6 }}]

sector occupancy:
{% for line in sector_lines %}{{ line }}
{% endfor %}`))

// RunReport summarizes one recorded run for tuning/monitoring.
type RunReport struct {
	RunID         string
	Ticks         int
	BusVoltage    float64
	CarrierPeriod float64
	SectorCounts  [7]int // index by sector 1..6
	MiMin         float64
	MiMax         float64
	CarrierMin    float64
	CarrierMax    float64
}

// BuildRunReport scans a trace and stamps the report with a fresh run id.
func BuildRunReport(cfg *Config, rec *TraceRecorder) *RunReport {
	self := new(RunReport)
	self.RunID = uuid.NewV4().String()
	self.Ticks = rec.Len()
	self.BusVoltage = cfg.BusVoltage
	self.CarrierPeriod = cfg.CarrierPeriod
	self.MiMin = math.Inf(1)
	self.MiMax = math.Inf(-1)
	self.CarrierMin = math.Inf(1)
	self.CarrierMax = math.Inf(-1)

	for _, out := range rec.Results {
		self.SectorCounts[out.Sector]++

		mi := math.Hypot(out.Stationary.Alpha, out.Stationary.Beta) / VoltageScale
		self.MiMin = math.Min(self.MiMin, mi)
		self.MiMax = math.Max(self.MiMax, mi)
		self.CarrierMin = math.Min(self.CarrierMin, out.Carrier)
		self.CarrierMax = math.Max(self.CarrierMax, out.Carrier)
	}

	if self.Ticks == 0 {
		self.MiMin, self.MiMax = 0, 0
		self.CarrierMin, self.CarrierMax = 0, 0
	}
	return self
}

// Render produces the human-readable run summary.
func (self *RunReport) Render() (string, error) {
	sectorLines := make([]string, 0, 6)
	for s := 1; s <= 6; s++ {
		sectorLines = append(sectorLines,
			fmt.Sprintf("  sector %d: %d ticks", s, self.SectorCounts[s]))
	}

	return reportTemplate.Execute(pongo2.Context{
		"run_id":         self.RunID,
		"ticks":          self.Ticks,
		"bus_voltage":    self.BusVoltage,
		"carrier_period": self.CarrierPeriod,
		"mi_min":         self.MiMin,
		"mi_max":         self.MiMax,
		"carrier_min":    self.CarrierMin,
		"carrier_max":    self.CarrierMax,
		"sector_lines":   sectorLines,
	})
}

func (self *RunReport) WriteFile(path string) error {
	text, err := self.Render()
	if err != nil {
		return err
	}
	return file.WriteFileWithSync(path, []byte(text))
}
