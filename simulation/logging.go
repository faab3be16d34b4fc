package simulation

import (
	"context"
	"log/slog"
)

// Custom slog levels for the scheduler: trace covers
// convergence/scheduling control flow, waveform covers the per-rendezvous
// value summary.
const (
	LevelTrace    slog.Level = slog.LevelInfo + 1
	LevelWaveform slog.Level = slog.LevelInfo + 2
)

// EnableWaveformLog gates per-rendezvous waveform summaries; turn it off
// for performance-sensitive runs.
var EnableWaveformLog = true

func trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

func waveform(msg string, args ...any) {
	if !EnableWaveformLog {
		return
	}
	slog.Log(context.Background(), LevelWaveform, msg, args...)
}
