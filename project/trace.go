package project

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"gofoc/common/file"
)

// TraceRecorder accumulates per-tick pipeline outputs for offline
// inspection: CSV dumps and waveform plots. Not part of the tick-path
// contract; the pipeline works without one.
type TraceRecorder struct {
	Dt      float64
	Results []TickOutput
}

func NewTraceRecorder(dt float64, capacity int) *TraceRecorder {
	self := new(TraceRecorder)
	self.Dt = dt
	self.Results = make([]TickOutput, 0, capacity)
	return self
}

func (self *TraceRecorder) Append(out TickOutput) {
	self.Results = append(self.Results, out)
}

func (self *TraceRecorder) Len() int {
	return len(self.Results)
}

// WriteCSV dumps the whole trace, one row per tick, fsync'd on close.
func (self *TraceRecorder) WriteCSV(path string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"tick", "time", "vq_lim", "vd_lim", "valpha", "vbeta",
		"u", "v", "w", "angle", "sector", "carrier", "t1", "t2", "tz"}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, out := range self.Results {
		row := []string{
			strconv.Itoa(i),
			fmt.Sprintf("%.9g", float64(i)*self.Dt),
			strconv.Itoa(int(out.Limited.Q)),
			strconv.Itoa(int(out.Limited.D)),
			fmt.Sprintf("%.6g", out.Stationary.Alpha),
			fmt.Sprintf("%.6g", out.Stationary.Beta),
			fmt.Sprintf("%.6g", out.U),
			fmt.Sprintf("%.6g", out.V),
			fmt.Sprintf("%.6g", out.W),
			fmt.Sprintf("%.6g", out.Angle),
			strconv.Itoa(int(out.Sector)),
			fmt.Sprintf("%.6g", out.Carrier),
			fmt.Sprintf("%.6g", out.T1),
			fmt.Sprintf("%.6g", out.T2),
			fmt.Sprintf("%.6g", out.Tz),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	return file.WriteFileWithSync(path, buf.Bytes())
}

func (self *TraceRecorder) xys(pick func(out TickOutput) float64) plotter.XYs {
	pts := make(plotter.XYs, len(self.Results))
	for i, out := range self.Results {
		pts[i].X = float64(i) * self.Dt
		pts[i].Y = pick(out)
	}
	return pts
}

func (self *TraceRecorder) linePlot(title, yLabel, path string, series map[string]plotter.XYs, order []string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time [s]"
	p.Y.Label.Text = yLabel

	for _, name := range order {
		line, err := plotter.NewLine(series[name])
		if err != nil {
			return fmt.Errorf("plot %s: %w", title, err)
		}
		p.Add(line)
		p.Legend.Add(name, line)
	}

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}

// PlotWaveforms writes the phase-level, carrier-vs-dwell and sector
// plots as PNG files under dir, tagged with the run id.
func (self *TraceRecorder) PlotWaveforms(dir, runID string) error {
	phases := map[string]plotter.XYs{
		"U": self.xys(func(out TickOutput) float64 { return out.U }),
		"V": self.xys(func(out TickOutput) float64 { return out.V }),
		"W": self.xys(func(out TickOutput) float64 { return out.W }),
	}
	err := self.linePlot("Phase levels", "volts",
		filepath.Join(dir, fmt.Sprintf("phases_%s.png", runID)),
		phases, []string{"U", "V", "W"})
	if err != nil {
		return err
	}

	carrier := map[string]plotter.XYs{
		"carrier": self.xys(func(out TickOutput) float64 { return out.Carrier }),
		"T1":      self.xys(func(out TickOutput) float64 { return out.T1 }),
		"T2":      self.xys(func(out TickOutput) float64 { return out.T2 }),
		"Tz":      self.xys(func(out TickOutput) float64 { return out.Tz }),
	}
	err = self.linePlot("Carrier and dwell times", "seconds",
		filepath.Join(dir, fmt.Sprintf("carrier_%s.png", runID)),
		carrier, []string{"carrier", "T1", "T2", "Tz"})
	if err != nil {
		return err
	}

	sector := map[string]plotter.XYs{
		"sector": self.xys(func(out TickOutput) float64 { return float64(out.Sector) }),
	}
	return self.linePlot("Sector", "sector",
		filepath.Join(dir, fmt.Sprintf("sector_%s.png", runID)),
		sector, []string{"sector"})
}
