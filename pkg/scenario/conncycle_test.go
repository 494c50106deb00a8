// pkg/scenario/conncycle_test.go

package scenario

import (
	"context"
	"testing"

	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wwantools/modemstress/pkg/probe"
	"github.com/wwantools/modemstress/pkg/report"
)

func TestConnCycleSkipsWithoutConnection(t *testing.T) {
	r, _, a, rep := newTestRunner(t, nil)

	r.ConnCycle(context.Background())

	require.Equal(t, 1, countKind(rep, report.Skip))
	assert.Equal(t, "no data connection configured", findLabel(rep, report.Skip))
	assert.Empty(t, a.Downs)
}

func TestConnCycleSkipsWithoutNmcli(t *testing.T) {
	r, _, a, rep := newTestRunner(t, func(c *Config) {
		c.Connection = "wwan0"
	})
	r.toolCheck = func(string) bool { return false }

	r.ConnCycle(context.Background())

	require.Equal(t, 1, countKind(rep, report.Skip))
	assert.Empty(t, a.Downs)
}

func TestConnCyclePassWithDataFlow(t *testing.T) {
	r, p, a, rep := newTestRunner(t, func(c *Config) {
		c.Connection = "wwan0"
	})
	p.SetPresence(probe.Registered, probe.Connected)

	r.ConnCycle(context.Background())

	assert.Equal(t, []string{"wwan0"}, a.Downs)
	assert.Equal(t, []string{"wwan0"}, a.Ups)
	require.Equal(t, 1, countKind(rep, report.Pass))
	assert.Equal(t, "connection re-established with data flow", findLabel(rep, report.Pass))
}

func TestConnCycleWarnsWhenNoDataFlow(t *testing.T) {
	r, p, _, rep := newTestRunner(t, func(c *Config) {
		c.Connection = "wwan0"
	})
	p.SetPresence(probe.Registered, probe.Connected)
	p.Flow = false

	r.ConnCycle(context.Background())

	assert.Equal(t, 0, countKind(rep, report.Fail))
	require.Equal(t, 1, countKind(rep, report.Warn))
	assert.Equal(t, "connected but no data flow observed", findLabel(rep, report.Warn))
	assert.Equal(t, 0, rep.Summarize().ExitCode)
}

func TestConnCycleBringUpBounded(t *testing.T) {
	r, p, a, rep := newTestRunner(t, func(c *Config) {
		c.Connection = "wwan0"
		c.Rounds = 3
	})
	p.SetPresence(probe.Registered)
	a.UpErrs = []error{
		cerr.New("modem busy"),
		cerr.New("modem busy"),
		cerr.New("modem busy"),
		// A fourth attempt would succeed; it must never happen.
	}

	r.ConnCycle(context.Background())

	assert.Len(t, a.Ups, connUpAttempts, "bring-up must stop at the attempt cap")
	require.Equal(t, 1, countKind(rep, report.Fail))
	assert.Equal(t, "connection failed to come up after 3 attempts", findLabel(rep, report.Fail))
	assert.Equal(t, 1, len(a.Downs), "a failed round must abort the remaining rounds")
}

func TestConnCycleFailsWhenDownFails(t *testing.T) {
	r, _, a, rep := newTestRunner(t, func(c *Config) {
		c.Connection = "wwan0"
	})
	a.DownErr = cerr.New("nmcli: unknown connection")

	r.ConnCycle(context.Background())

	require.Equal(t, 1, countKind(rep, report.Fail))
	assert.Contains(t, findLabel(rep, report.Fail), "could not bring connection down")
	assert.Empty(t, a.Ups)
}

func TestConnCycleFailsWhenNeverConnected(t *testing.T) {
	r, p, _, rep := newTestRunner(t, func(c *Config) {
		c.Connection = "wwan0"
	})
	// Registered but never reaching connected state.
	p.SetPresence(probe.Registered)

	r.ConnCycle(context.Background())

	require.Equal(t, 1, countKind(rep, report.Fail))
	assert.Contains(t, findLabel(rep, report.Fail), "never reached connected state")
}
