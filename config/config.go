// Package config loads the two kinds of plain data the core itself stays
// ignorant of: per-pin physical constraints attached to Signals, and
// simulation run parameters fed into simulation.Run. Neither reaches into
// the circuit tree on its own — a calling program reads a file through
// this package and applies the result to its own Signals/Sim.
//
// Config loading is a pre-flight step, not a simulated operation, so a
// malformed file panics rather than threading an error through every
// caller.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/samitbasu/gohdl/signal"
)

// PinConstraint is one row of a pin file: a physical attribute attached to
// a single bit of a named signal.
type PinConstraint struct {
	Signal     string `yaml:"signal"`
	Bit        int    `yaml:"bit"`
	Pin        string `yaml:"pin"`
	IOStandard string `yaml:"io_standard"`
	TimingPs   int    `yaml:"timing_ps"`
	Slew       string `yaml:"slew"`
}

// PinFile is the root of a YAML pin-constraint document.
type PinFile struct {
	Constraints []PinConstraint `yaml:"constraints"`
}

// LoadPinFile reads and parses a YAML pin-constraint file. A malformed
// file is a programmer/deployment error caught before simulation starts,
// so this panics rather than threading an error through every caller.
func LoadPinFile(path string) *PinFile {
	data, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("config: failed to read pin file %q: %v", path, err))
	}
	var pf PinFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		panic(fmt.Sprintf("config: failed to parse pin file %q: %v", path, err))
	}
	return &pf
}

// Apply attaches every constraint in the file to the matching Signal in
// signals (keyed by Signal.Name()), returning the names of any constraint
// rows whose signal was not found so the caller can decide whether that
// is fatal.
func (pf *PinFile) Apply(signals map[string]*signal.Signal) (unresolved []string) {
	for _, pc := range pf.Constraints {
		s, ok := signals[pc.Signal]
		if !ok {
			unresolved = append(unresolved, pc.Signal)
			continue
		}
		s.AddConstraint(signal.Constraint{
			Bit:        pc.Bit,
			Pin:        pc.Pin,
			IOStandard: pc.IOStandard,
			TimingPs:   pc.TimingPs,
			Slew:       pc.Slew,
		})
	}
	return unresolved
}

// PinBuilder accumulates pin constraints programmatically, the
// chainable-value-receiver alternative to loading a YAML file.
type PinBuilder struct {
	constraints []PinConstraint
}

// WithPin appends one pin constraint to the builder.
func (b PinBuilder) WithPin(signalName string, bit int, pin, ioStandard string, timingPs int, slew string) PinBuilder {
	b.constraints = append(append([]PinConstraint(nil), b.constraints...), PinConstraint{
		Signal: signalName, Bit: bit, Pin: pin, IOStandard: ioStandard, TimingPs: timingPs, Slew: slew,
	})
	return b
}

// Build returns the accumulated PinFile.
func (b PinBuilder) Build() *PinFile {
	return &PinFile{Constraints: append([]PinConstraint(nil), b.constraints...)}
}
