// pkg/report/report.go

// Package report accumulates per-round scenario outcomes and renders the
// end-of-run summary. A single Aggregator instance is passed explicitly
// through the run; there is no ambient global state.
package report

import (
	"fmt"

	"go.uber.org/zap"
)

// Kind is the classification of one scenario round.
type Kind int

const (
	Pass Kind = iota
	Fail
	Warn
	Skip
)

func (k Kind) String() string {
	switch k {
	case Pass:
		return "PASS"
	case Fail:
		return "FAIL"
	case Warn:
		return "WARN"
	case Skip:
		return "SKIP"
	default:
		return "UNKNOWN"
	}
}

// Outcome is one classified result, immutable once recorded.
type Outcome struct {
	Scenario string
	Round    int
	Kind     Kind
	Label    string
}

func (o Outcome) String() string {
	if o.Round > 0 {
		return fmt.Sprintf("[%s] %s round %d: %s", o.Kind, o.Scenario, o.Round, o.Label)
	}
	return fmt.Sprintf("[%s] %s: %s", o.Kind, o.Scenario, o.Label)
}

// maxFaultTail bounds the postmortem log excerpt kept on failures.
const maxFaultTail = 40

// Aggregator collects outcomes for a whole invocation.
type Aggregator struct {
	outcomes   []Outcome
	passes     int
	fails      int
	warns      int
	skips      int
	faultTail  []string
	finalTaint uint64
	log        *zap.Logger
}

// New creates an empty aggregator.
func New(log *zap.Logger) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{log: log}
}

// Record appends an outcome and logs it at a level matching its severity.
func (a *Aggregator) Record(o Outcome) {
	a.outcomes = append(a.outcomes, o)

	fields := []zap.Field{
		zap.String("scenario", o.Scenario),
		zap.Int("round", o.Round),
		zap.String("label", o.Label),
	}

	switch o.Kind {
	case Pass:
		a.passes++
		a.log.Info("PASS", fields...)
	case Fail:
		a.fails++
		a.log.Error("FAIL", fields...)
	case Warn:
		a.warns++
		a.log.Warn("WARN", fields...)
	case Skip:
		a.skips++
		a.log.Info("SKIP", fields...)
	}
}

// RecordFaultLines keeps fault-relevant log lines for the postmortem tail.
// The excerpt is bounded; the newest lines win.
func (a *Aggregator) RecordFaultLines(lines []string) {
	a.faultTail = append(a.faultTail, lines...)
	if len(a.faultTail) > maxFaultTail {
		a.faultTail = a.faultTail[len(a.faultTail)-maxFaultTail:]
	}
}

// SetFinalTaint records the taint bitmask observed at the end of the run.
func (a *Aggregator) SetFinalTaint(t uint64) {
	a.finalTaint = t
}

// Outcomes returns all recorded outcomes in order.
func (a *Aggregator) Outcomes() []Outcome {
	return a.outcomes
}

// HasFailures reports whether any Fail was recorded.
func (a *Aggregator) HasFailures() bool {
	return a.fails > 0
}

// Summary is the final run report.
type Summary struct {
	Passes     int
	Fails      int
	Warns      int
	Skips      int
	ExitCode   int
	FinalTaint uint64
	FaultTail  []string
}

// Summarize renders totals and computes the process exit code: 1 if any Fail
// was recorded, 0 otherwise. Warns and Skips are reported but never change
// the exit code.
func (a *Aggregator) Summarize() Summary {
	s := Summary{
		Passes:     a.passes,
		Fails:      a.fails,
		Warns:      a.warns,
		Skips:      a.skips,
		FinalTaint: a.finalTaint,
	}
	if a.fails > 0 {
		s.ExitCode = 1
		s.FaultTail = append([]string(nil), a.faultTail...)
	}

	a.log.Info("Run summary",
		zap.Int("pass", s.Passes),
		zap.Int("fail", s.Fails),
		zap.Int("warn", s.Warns),
		zap.Int("skip", s.Skips),
		zap.String("final_taint", fmt.Sprintf("0x%x", s.FinalTaint)),
		zap.Int("exit_code", s.ExitCode))

	if s.ExitCode != 0 && len(s.FaultTail) > 0 {
		a.log.Info("Fault-relevant log tail for postmortem",
			zap.Int("lines", len(s.FaultTail)))
		for _, line := range s.FaultTail {
			a.log.Info("  " + line)
		}
	}

	return s
}
