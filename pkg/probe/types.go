// pkg/probe/types.go

// Package probe holds the read-only queries the harness makes against the
// modem, the kernel, and the managing daemon. Probes never cache, never
// mutate, and always distinguish "absent" from "could not determine".
package probe

import (
	"context"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Status is the three-valued outcome of a lookup. A transport failure
// (QueryFailed) must never be conflated with a legitimate NotFound.
type Status int

const (
	StatusFound Status = iota
	StatusNotFound
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not-found"
	case StatusFailed:
		return "query-failed"
	default:
		return "unknown"
	}
}

// ModemPresence is the observed device state, derived fresh on every query.
type ModemPresence int

const (
	Absent ModemPresence = iota
	Detected
	Registered
	Connecting
	Connected
)

func (p ModemPresence) String() string {
	switch p {
	case Absent:
		return "absent"
	case Detected:
		return "detected"
	case Registered:
		return "registered"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// AtLeast reports whether the presence has reached the given level.
func (p ModemPresence) AtLeast(min ModemPresence) bool {
	return p >= min
}

// Prober is the read-only query surface the detector and scenarios depend on.
// Tests substitute a scripted fake.
type Prober interface {
	// DeviceIndex returns the first modem's index as reported by the manager.
	DeviceIndex(ctx context.Context) (string, Status, error)
	// ModemState returns the presence level for a given modem index.
	ModemState(ctx context.Context, index string) (ModemPresence, Status, error)
	// DeviceFilesPresent reports whether the auxiliary device nodes exist.
	DeviceFilesPresent(ctx context.Context) (bool, error)
	// KernelTaint returns the kernel taint bitmask snapshot.
	KernelTaint(ctx context.Context) (uint64, error)
	// RingBufferLineCount returns the current kernel ring buffer length.
	RingBufferLineCount(ctx context.Context) (int, error)
	// RingBufferTail returns the last n ring buffer lines.
	RingBufferTail(ctx context.Context, n int) ([]string, error)
	// ServiceEnabled reports the enablement status of a systemd unit.
	ServiceEnabled(ctx context.Context, unit string) (Status, error)
	// ControlFileExists reports whether the fault control surface is present.
	ControlFileExists(path string) bool
	// HookFireCount counts resume-hook log entries. Monotonic event counting
	// is the only detection that survives clock discontinuities across
	// suspend, so timestamps are never compared.
	HookFireCount(ctx context.Context) (int, error)
	// DataFlow best-effort verifies that traffic actually passes.
	DataFlow(ctx context.Context) (bool, error)
}

// Presence collapses index + state lookups into a single presence level.
// Query failures degrade to the most conservative answer rather than erroring,
// but a transport failure is always logged so it cannot masquerade as a clean
// "device went away" observation.
func Presence(ctx context.Context, p Prober) ModemPresence {
	index, st, err := p.DeviceIndex(ctx)
	if err != nil || st == StatusFailed {
		otelzap.Ctx(ctx).Warn("Device index query failed; treating modem as absent",
			zap.String("status", st.String()),
			zap.Error(err))
		return Absent
	}
	if st != StatusFound {
		return Absent
	}

	state, st, err := p.ModemState(ctx, index)
	if err != nil || st == StatusFailed {
		otelzap.Ctx(ctx).Warn("Modem state query failed; treating modem as merely detected",
			zap.String("index", index),
			zap.String("status", st.String()),
			zap.Error(err))
		return Detected
	}
	if st != StatusFound {
		return Detected
	}
	return state
}
