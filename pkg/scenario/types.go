// pkg/scenario/types.go

// Package scenario implements the fault-injection scenarios: each one is a
// finite sequence of inject fault, wait for the device to go down, wait for
// recovery, settle, classify.
package scenario

import (
	"time"

	"github.com/wwantools/modemstress/pkg/config"
)

// Phase is a state of the per-round scenario machine. Transitions are
// recorded so the injection-before-recovery ordering can be verified.
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseFaultInjected Phase = "fault-injected"
	PhaseAwaitingDown  Phase = "awaiting-down"
	PhaseDown          Phase = "down"
	PhaseDownSkipped   Phase = "down-skipped"
	PhaseAwaitingUp    Phase = "awaiting-up"
	PhaseUpFull        Phase = "up-full"
	PhaseUpPartial     Phase = "up-partial"
	PhaseUnrecovered   Phase = "unrecovered"
)

// Transition is one recorded phase change.
type Transition struct {
	Scenario string
	Round    int
	Phase    Phase
}

// Config carries the scenario tunables, resolved from harness settings.
type Config struct {
	Rounds         int
	RestartCount   int
	WakeSeconds    int
	LoadWorkers    int
	DownTimeout    time.Duration
	RecoverTimeout time.Duration
	SettleDelay    time.Duration
	SuspendSettle  time.Duration
	ConnectTimeout time.Duration
	Unit           string
	Connection     string
	LoadCommand    []string
}

// FromSettings maps harness settings onto a scenario config.
func FromSettings(s *config.Settings) Config {
	return Config{
		Rounds:         s.Rounds,
		RestartCount:   s.RestartCount,
		WakeSeconds:    s.WakeSeconds,
		LoadWorkers:    s.LoadWorkers,
		DownTimeout:    s.DownTimeout,
		RecoverTimeout: s.RecoverTimeout,
		SettleDelay:    s.SettleDelay,
		SuspendSettle:  s.SuspendSettle,
		ConnectTimeout: s.ConnectTimeout,
		Unit:           s.Unit,
		Connection:     s.Connection,
		LoadCommand:    []string{"ping", "-i", "0.2", s.PingTarget},
	}
}
