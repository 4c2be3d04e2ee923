package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of frames.
type WindowStats struct {
	WindowStartFrame int64   `csv:"-"`
	WindowEndFrame   int64   `csv:"window_end"`
	ElapsedSec       float64 `csv:"elapsed"`
	Renderer         string  `csv:"renderer"`
	Animate          bool    `csv:"animate"`

	// Population and field at window end
	Particles    int `csv:"particles"`
	FieldSamples int `csv:"field_samples"`

	// Life-cycle events during the window
	Expired     int `csv:"expired"`
	OutOfBounds int `csv:"out_of_bounds"`
	Recycled    int `csv:"recycled"`
	Fallbacks   int `csv:"fallbacks"`
	Kept        int `csv:"kept"`
	Resets      int `csv:"field_resets"`

	// Terminations per particle per frame
	TurnoverRate float64 `csv:"turnover_rate"`

	// Sampled speed distribution at window end
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Mean remaining life fraction at window end
	LifeMean float64 `csv:"life_mean"`
}

// ComputeSpeedStats returns mean, standard deviation and the 50th and 90th
// percentiles of values. Returns zeros for an empty slice.
func ComputeSpeedStats(values []float64) (mean, std, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	mean, std = stat.MeanStdDev(values, nil)
	if len(values) == 1 {
		std = 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	return mean, std, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartFrame),
		slog.Int64("window_end", s.WindowEndFrame),
		slog.Float64("elapsed", s.ElapsedSec),
		slog.String("renderer", s.Renderer),
		slog.Bool("animate", s.Animate),
		slog.Int("particles", s.Particles),
		slog.Int("field_samples", s.FieldSamples),
		slog.Int("expired", s.Expired),
		slog.Int("out_of_bounds", s.OutOfBounds),
		slog.Int("recycled", s.Recycled),
		slog.Int("fallbacks", s.Fallbacks),
		slog.Int("kept", s.Kept),
		slog.Int("field_resets", s.Resets),
		slog.Float64("turnover_rate", s.TurnoverRate),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("life_mean", s.LifeMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndFrame,
		"elapsed", s.ElapsedSec,
		"renderer", s.Renderer,
		"particles", s.Particles,
		"field_samples", s.FieldSamples,
		"expired", s.Expired,
		"out_of_bounds", s.OutOfBounds,
		"recycled", s.Recycled,
		"fallbacks", s.Fallbacks,
		"kept", s.Kept,
		"field_resets", s.Resets,
		"turnover_rate", s.TurnoverRate,
		"speed_mean", s.SpeedMean,
		"speed_p90", s.SpeedP90,
		"life_mean", s.LifeMean,
	)
}
