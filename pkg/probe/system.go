// pkg/probe/system.go

package probe

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/wwantools/modemstress/pkg/execute"
)

const taintFile = "/proc/sys/kernel/tainted"

// systemctl is-enabled exit codes, per systemctl(1).
const (
	exitEnabled  = 0
	exitDisabled = 1
)

// Options configures the system prober for a concrete modem setup.
type Options struct {
	// DeviceGlobs are the auxiliary device nodes the driver is expected to
	// recreate after recovery, e.g. /dev/cdc-wdm*.
	DeviceGlobs []string
	// HookPattern matches resume-hook log entries in the ring buffer.
	HookPattern string
	// PingTarget is the address used for best-effort data-flow checks.
	PingTarget string
	// PingInterface restricts the data-flow check to the WWAN interface.
	PingInterface string
}

// SystemProber queries the live system through mmcli, systemctl, dmesg, and
// procfs. It is the production implementation of Prober.
type SystemProber struct {
	opts        Options
	hookPattern *regexp.Regexp
}

var _ Prober = (*SystemProber)(nil)

// NewSystemProber builds a prober; the hook pattern is compiled once.
func NewSystemProber(opts Options) (*SystemProber, error) {
	re, err := regexp.Compile(opts.HookPattern)
	if err != nil {
		return nil, cerr.Wrapf(err, "invalid hook pattern %q", opts.HookPattern)
	}
	return &SystemProber{opts: opts, hookPattern: re}, nil
}

// DeviceIndex lists modems via ModemManager and returns the first index.
// "No modems were found" is NotFound, not an error.
func (p *SystemProber) DeviceIndex(ctx context.Context) (string, Status, error) {
	res, err := execute.Run(ctx, execute.Options{
		Command: "mmcli",
		Args:    []string{"-L"},
		Capture: true,
	})
	if err != nil {
		if strings.Contains(res.Output, "No modems were found") {
			return "", StatusNotFound, nil
		}
		return "", StatusFailed, cerr.Wrap(err, "mmcli -L")
	}

	index, ok := ParseDeviceIndex(res.Output)
	if !ok {
		return "", StatusNotFound, nil
	}
	return index, StatusFound, nil
}

// ModemState queries the modem's generic state.
func (p *SystemProber) ModemState(ctx context.Context, index string) (ModemPresence, Status, error) {
	res, err := execute.Run(ctx, execute.Options{
		Command: "mmcli",
		Args:    []string{"-m", index, "--output-keyvalue"},
		Capture: true,
	})
	if err != nil {
		// The modem vanishing between list and query is an expected race
		// during fault recovery, not a transport failure.
		if strings.Contains(res.Output, "couldn't find modem") ||
			strings.Contains(res.Output, "not found") {
			return Absent, StatusNotFound, nil
		}
		return Absent, StatusFailed, cerr.Wrapf(err, "mmcli -m %s", index)
	}

	state, ok := ParseModemState(res.Output)
	if !ok {
		return Absent, StatusNotFound, nil
	}
	return state, StatusFound, nil
}

// DeviceFilesPresent reports whether every configured device glob matches at
// least one node.
func (p *SystemProber) DeviceFilesPresent(ctx context.Context) (bool, error) {
	for _, pattern := range p.opts.DeviceGlobs {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return false, cerr.Wrapf(err, "bad device glob %q", pattern)
		}
		if len(matches) == 0 {
			otelzap.Ctx(ctx).Debug("Device glob matched nothing", zap.String("glob", pattern))
			return false, nil
		}
	}
	return true, nil
}

// KernelTaint reads the kernel taint bitmask from procfs.
func (p *SystemProber) KernelTaint(ctx context.Context) (uint64, error) {
	raw, err := os.ReadFile(taintFile)
	if err != nil {
		return 0, cerr.Wrapf(err, "reading %s", taintFile)
	}
	value, err := strconv.ParseUint(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return 0, cerr.Wrapf(err, "parsing %s", taintFile)
	}
	return value, nil
}

// RingBufferLineCount returns the number of lines currently in dmesg.
func (p *SystemProber) RingBufferLineCount(ctx context.Context) (int, error) {
	lines, err := p.ringBuffer(ctx)
	if err != nil {
		return 0, err
	}
	return len(lines), nil
}

// RingBufferTail returns the last n dmesg lines.
func (p *SystemProber) RingBufferTail(ctx context.Context, n int) ([]string, error) {
	lines, err := p.ringBuffer(ctx)
	if err != nil {
		return nil, err
	}
	if n < len(lines) {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

// ServiceEnabled interprets `systemctl is-enabled` exit codes as answers.
func (p *SystemProber) ServiceEnabled(ctx context.Context, unit string) (Status, error) {
	res, err := execute.Run(ctx, execute.Options{
		Command: "systemctl",
		Args:    []string{"is-enabled", unit},
		Capture: true,
	})
	switch res.ExitCode {
	case exitEnabled:
		return StatusFound, nil
	case exitDisabled:
		return StatusNotFound, nil
	}
	return StatusFailed, cerr.Wrapf(err, "systemctl is-enabled %s (exit %d)", unit, res.ExitCode)
}

// ControlFileExists reports whether the fault control surface is present.
func (p *SystemProber) ControlFileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// HookFireCount counts ring-buffer entries matching the resume-hook pattern.
func (p *SystemProber) HookFireCount(ctx context.Context) (int, error) {
	lines, err := p.ringBuffer(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, line := range lines {
		if p.hookPattern.MatchString(line) {
			count++
		}
	}
	return count, nil
}

// DataFlow sends a single ping through the WWAN interface. A failure means
// "no data flow observed", never an error: the check is best-effort.
func (p *SystemProber) DataFlow(ctx context.Context) (bool, error) {
	args := []string{"-c", "1", "-W", "5"}
	if p.opts.PingInterface != "" {
		args = append(args, "-I", p.opts.PingInterface)
	}
	args = append(args, p.opts.PingTarget)

	_, err := execute.Run(ctx, execute.Options{Command: "ping", Args: args})
	return err == nil, nil
}

func (p *SystemProber) ringBuffer(ctx context.Context) ([]string, error) {
	res, err := execute.Run(ctx, execute.Options{
		Command: "dmesg",
		Capture: true,
	})
	if err != nil {
		return nil, cerr.Wrap(err, "dmesg")
	}
	return SplitLines(res.Output), nil
}

// ParseDeviceIndex extracts the first modem index from `mmcli -L` output,
// which lists DBus paths like /org/freedesktop/ModemManager1/Modem/3.
func ParseDeviceIndex(output string) (string, bool) {
	for _, line := range SplitLines(output) {
		idx := strings.Index(line, "/Modem/")
		if idx < 0 {
			continue
		}
		rest := line[idx+len("/Modem/"):]
		end := strings.IndexFunc(rest, func(r rune) bool {
			return r < '0' || r > '9'
		})
		if end == 0 {
			continue
		}
		if end < 0 {
			return rest, true
		}
		return rest[:end], true
	}
	return "", false
}

// ParseModemState maps the modem.generic.state keyvalue to a presence level.
func ParseModemState(output string) (ModemPresence, bool) {
	for _, line := range SplitLines(output) {
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.TrimSpace(parts[0]) != "modem.generic.state" {
			continue
		}
		return mapState(strings.TrimSpace(parts[1])), true
	}
	return Absent, false
}

func mapState(state string) ModemPresence {
	switch state {
	case "connected":
		return Connected
	case "connecting", "disconnecting":
		return Connecting
	case "registered":
		return Registered
	default:
		// failed, locked, initializing, disabled, enabling, enabled,
		// searching: the device exists but has not registered.
		return Detected
	}
}

// SplitLines splits command output into non-empty trimmed-right lines.
func SplitLines(output string) []string {
	raw := strings.Split(output, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
