// pkg/scenario/load.go

package scenario

import (
	"context"
	"io"
	"os/exec"
	"strings"
	"syscall"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// loadGenerator is the background-traffic surface the load variant uses.
type loadGenerator interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context)
	Pids() []int
}

// LoadManager spawns and reaps background traffic generator processes. The
// processes run concurrently with the polling loop but are always signalled
// and awaited before classification; a leaked generator is a bug.
type LoadManager struct {
	command []string
	count   int
	procs   []*exec.Cmd
}

var _ loadGenerator = (*LoadManager)(nil)

// NewLoadManager prepares count copies of the traffic command.
func NewLoadManager(command []string, count int) *LoadManager {
	return &LoadManager{command: command, count: count}
}

// Start spawns the generators. A partial start is unwound by Stop; callers
// defer Stop unconditionally.
func (m *LoadManager) Start(ctx context.Context) error {
	if len(m.command) == 0 {
		return cerr.New("no load command configured")
	}

	logger := otelzap.Ctx(ctx)
	for i := 0; i < m.count; i++ {
		// Not CommandContext: teardown is explicit signal+wait in Stop,
		// not tied to context cancellation.
		cmd := exec.Command(m.command[0], m.command[1:]...)
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
		if err := cmd.Start(); err != nil {
			return cerr.Wrapf(err, "starting load generator %d (%s)", i, strings.Join(m.command, " "))
		}
		m.procs = append(m.procs, cmd)
	}

	logger.Info("Load generators started",
		zap.Int("count", len(m.procs)),
		zap.String("command", strings.Join(m.command, " ")))
	return nil
}

// Stop signals and awaits every generator. "Already exited" is fine; the
// point is that nothing spawned here outlives the scenario.
func (m *LoadManager) Stop(ctx context.Context) {
	logger := otelzap.Ctx(ctx)

	for _, cmd := range m.procs {
		if cmd.Process == nil {
			continue
		}
		if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
			// Process already gone; nothing to reap beyond Wait.
			logger.Debug("Load generator signal failed",
				zap.Int("pid", cmd.Process.Pid),
				zap.Error(err))
		}
		if err := cmd.Wait(); err != nil {
			// Killed-by-signal is the expected exit here.
			logger.Debug("Load generator exited",
				zap.Int("pid", cmd.Process.Pid),
				zap.Error(err))
		}
	}

	logger.Info("Load generators stopped", zap.Int("count", len(m.procs)))
	m.procs = nil
}

// Pids returns the live generator process IDs.
func (m *LoadManager) Pids() []int {
	pids := make([]int, 0, len(m.procs))
	for _, cmd := range m.procs {
		if cmd.Process != nil {
			pids = append(pids, cmd.Process.Pid)
		}
	}
	return pids
}
