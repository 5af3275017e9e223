package main

import (
	"flag"
	"os"
	"path/filepath"

	"gofoc/common/logger"
	"gofoc/common/utils/sys"
	"gofoc/project"
)

func main() {
	configPath := flag.String("config", "gofoc.cfg", "path to run configuration")
	flag.Parse()

	cfg, err := project.LoadConfig(*configPath)
	if err != nil {
		logger.InitLogger(logger.InfoLevel, "gofoc.log", true, 10, 3, 28)
		logger.Fatalf("load config: %v", err)
	}

	logger.InitLogger(logger.InfoLevel, cfg.LogFile, true, 10, 3, 28)
	defer logger.Sync()
	logger.Debugf("main thread %d running", sys.GetGID())

	pipeline, err := project.NewPipeline(cfg)
	if err != nil {
		logger.Fatalf("build pipeline: %v", err)
	}

	var link *project.GateLink
	if cfg.SerialPort != "" {
		link = project.NewGateLink(cfg.SerialPort, cfg.SerialBaud)
		if err := link.Connect(); err == nil {
			defer link.Disconnect()
		}
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		logger.Fatalf("create output dir: %v", err)
	}

	rec := project.NewTraceRecorder(cfg.TickTime, cfg.Ticks)
	stim := project.OpenLoopStimulus(cfg)
	logger.Infof("running %d ticks, vbus=%.2f Ts=%g mode=%s",
		cfg.Ticks, cfg.BusVoltage, cfg.CarrierPeriod, cfg.LimiterMode)

	for i := 0; i < cfg.Ticks; i++ {
		out := pipeline.Tick(stim(i))
		rec.Append(out)
		if link != nil && link.IsConnected() {
			if err := link.SendLevels(out.U > 0, out.V > 0, out.W > 0); err != nil {
				logger.Warnf("gate link: %v", err)
				link.Disconnect()
			}
		}
	}

	report := project.BuildRunReport(cfg, rec)
	if err := rec.WriteCSV(filepath.Join(cfg.OutputDir, "trace_"+report.RunID+".csv")); err != nil {
		logger.Errorf("write trace: %v", err)
	}
	if err := rec.PlotWaveforms(cfg.OutputDir, report.RunID); err != nil {
		logger.Errorf("plot waveforms: %v", err)
	}
	if err := report.WriteFile(filepath.Join(cfg.OutputDir, "report_"+report.RunID+".txt")); err != nil {
		logger.Errorf("write report: %v", err)
	}

	text, err := report.Render()
	if err == nil {
		logger.Info("\n" + text)
	}
}
