// pkg/probe/fake.go

package probe

import (
	"context"
	"sync"
)

// FakeProber is a scripted Prober for tests. Presence is driven by a
// sequence consumed one entry per DeviceIndex call (the first probe of every
// Presence query); the last entry is sticky. All other answers are plain
// fields, mutable between phases.
type FakeProber struct {
	mu sync.Mutex

	PresenceSeq []ModemPresence
	seqPos      int

	Files     bool
	FilesErr  error
	Taint     uint64
	TaintErr  error
	LogLines  []string
	Enabled   Status
	Control   bool
	HookCount int
	Flow      bool

	// IndexStatus overrides the derived index status when set to a
	// non-Found value, to simulate transport failures.
	IndexStatus Status
	IndexErr    error
}

var _ Prober = (*FakeProber)(nil)

// NewFakeProber starts with a healthy registered modem.
func NewFakeProber() *FakeProber {
	return &FakeProber{
		PresenceSeq: []ModemPresence{Registered},
		Files:       true,
		Enabled:     StatusFound,
		Control:     true,
		Flow:        true,
	}
}

// CurrentPresence returns the sequence entry without advancing.
func (f *FakeProber) CurrentPresence() ModemPresence {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.peek()
}

// SetPresence replaces the remaining presence script.
func (f *FakeProber) SetPresence(seq ...ModemPresence) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PresenceSeq = seq
	f.seqPos = 0
}

func (f *FakeProber) peek() ModemPresence {
	if len(f.PresenceSeq) == 0 {
		return Absent
	}
	if f.seqPos >= len(f.PresenceSeq) {
		return f.PresenceSeq[len(f.PresenceSeq)-1]
	}
	return f.PresenceSeq[f.seqPos]
}

func (f *FakeProber) DeviceIndex(ctx context.Context) (string, Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.IndexErr != nil || f.IndexStatus == StatusFailed {
		return "", StatusFailed, f.IndexErr
	}

	p := f.peek()
	if f.seqPos < len(f.PresenceSeq) {
		f.seqPos++
	}
	if p == Absent {
		return "", StatusNotFound, nil
	}
	return "0", StatusFound, nil
}

func (f *FakeProber) ModemState(ctx context.Context, index string) (ModemPresence, Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// ModemState sees the entry DeviceIndex just consumed.
	pos := f.seqPos - 1
	if pos < 0 {
		pos = 0
	}
	if pos >= len(f.PresenceSeq) {
		pos = len(f.PresenceSeq) - 1
	}
	if len(f.PresenceSeq) == 0 || f.PresenceSeq[pos] == Absent {
		return Absent, StatusNotFound, nil
	}
	return f.PresenceSeq[pos], StatusFound, nil
}

func (f *FakeProber) DeviceFilesPresent(ctx context.Context) (bool, error) {
	return f.Files, f.FilesErr
}

func (f *FakeProber) KernelTaint(ctx context.Context) (uint64, error) {
	return f.Taint, f.TaintErr
}

func (f *FakeProber) RingBufferLineCount(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.LogLines), nil
}

func (f *FakeProber) RingBufferTail(ctx context.Context, n int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := f.LogLines
	if n < len(lines) {
		lines = lines[len(lines)-n:]
	}
	out := make([]string, len(lines))
	copy(out, lines)
	return out, nil
}

func (f *FakeProber) ServiceEnabled(ctx context.Context, unit string) (Status, error) {
	return f.Enabled, nil
}

func (f *FakeProber) ControlFileExists(path string) bool {
	return f.Control
}

func (f *FakeProber) HookFireCount(ctx context.Context) (int, error) {
	return f.HookCount, nil
}

func (f *FakeProber) DataFlow(ctx context.Context) (bool, error) {
	return f.Flow, nil
}

// AppendLog adds ring-buffer lines, simulating kernel activity.
func (f *FakeProber) AppendLog(lines ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LogLines = append(f.LogLines, lines...)
}

// RotateLog simulates the ring buffer being cleared.
func (f *FakeProber) RotateLog() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LogLines = nil
}
