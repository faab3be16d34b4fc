package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/samitbasu/gohdl/simulation"
)

// RunParams is the run-parameter document: the simulated-time bound, an
// optional VCD trace sink path, and named clock periods a driver program
// hands to simulation.Sim.AddClock.
type RunParams struct {
	MaxTimePs    uint64           `yaml:"max_time_ps"`
	TracePath    string           `yaml:"trace_path"`
	ClockPeriods map[string]int64 `yaml:"clock_periods_ps"`
}

// LoadRunParams reads and parses a YAML run-parameter file. As with
// LoadPinFile, a malformed file is caught before simulation starts and
// panics rather than threading an error through every caller.
func LoadRunParams(path string) *RunParams {
	data, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("config: failed to read run-params file %q: %v", path, err))
	}
	var rp RunParams
	if err := yaml.Unmarshal(data, &rp); err != nil {
		panic(fmt.Sprintf("config: failed to parse run-params file %q: %v", path, err))
	}
	return &rp
}

// MaxTime returns the configured run bound as a simulation.VTime.
func (rp *RunParams) MaxTime() simulation.VTime {
	return simulation.VTime(rp.MaxTimePs)
}

// ClockPeriod returns the configured period for the named clock domain
// and whether it was present in the file.
func (rp *RunParams) ClockPeriod(name string) (simulation.VTime, bool) {
	p, ok := rp.ClockPeriods[name]
	if !ok {
		return 0, false
	}
	return simulation.VTime(p), true
}

// RunBuilder accumulates run parameters programmatically, the
// chainable-value-receiver alternative to loading a YAML file.
type RunBuilder struct {
	maxTime      simulation.VTime
	tracePath    string
	clockPeriods map[string]int64
}

// WithMaxTime sets the simulated-time bound.
func (b RunBuilder) WithMaxTime(t simulation.VTime) RunBuilder {
	b.maxTime = t
	return b
}

// WithTracePath sets the VCD sink path.
func (b RunBuilder) WithTracePath(path string) RunBuilder {
	b.tracePath = path
	return b
}

// WithClockPeriod records the period of one named clock domain.
func (b RunBuilder) WithClockPeriod(name string, period simulation.VTime) RunBuilder {
	out := make(map[string]int64, len(b.clockPeriods)+1)
	for k, v := range b.clockPeriods {
		out[k] = v
	}
	out[name] = int64(period)
	b.clockPeriods = out
	return b
}

// Build returns the accumulated RunParams.
func (b RunBuilder) Build() *RunParams {
	periods := make(map[string]int64, len(b.clockPeriods))
	for k, v := range b.clockPeriods {
		periods[k] = v
	}
	return &RunParams{MaxTimePs: uint64(b.maxTime), TracePath: b.tracePath, ClockPeriods: periods}
}
