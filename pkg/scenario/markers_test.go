// pkg/scenario/markers_test.go

package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wwantools/modemstress/pkg/config"
)

func TestDefaultMarkersMatchKnownSignatures(t *testing.T) {
	m := DefaultMarkerSet()

	severe, info := m.Scan([]string{
		"BUG: unable to handle kernel NULL pointer dereference at 0000000000000008",
		"Kernel panic - not syncing: Fatal exception",
		"general protection fault, probably for non-canonical address",
		"Call Trace:",
		"qmi_wwan 1-3:1.4 wwan0: register 'qmi_wwan'",
		"usb 1-3: USB disconnect, device number 5",
	})

	assert.Len(t, severe, 4)
	assert.Len(t, info, 1)
}

func TestScanSevereWinsOverInfo(t *testing.T) {
	m := DefaultMarkerSet()

	// Matches both the driver-chatter pattern and a severe signature.
	severe, info := m.Scan([]string{"wwan0: BUG: sleeping function called from invalid context"})

	assert.Len(t, severe, 1)
	assert.Empty(t, info)
}

func TestNewMarkerSetRejectsBadPattern(t *testing.T) {
	_, err := NewMarkerSet([]string{"[unclosed"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad severe marker")

	_, err = NewMarkerSet(nil, []string{"(?P<broken"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad informational marker")
}

func TestBuildMarkerSetMergesOverrides(t *testing.T) {
	m, err := BuildMarkerSet(&config.MarkerOverrides{
		Severe: []string{`firmware assert`},
	})
	require.NoError(t, err)

	severe, _ := m.Scan([]string{
		"modem: firmware assert in nas task",
		"BUG: built-in signature still applies",
	})
	assert.Len(t, severe, 2)
}

func TestBuildMarkerSetReplaceDropsDefaults(t *testing.T) {
	m, err := BuildMarkerSet(&config.MarkerOverrides{
		Severe:  []string{`firmware assert`},
		Replace: true,
	})
	require.NoError(t, err)

	severe, info := m.Scan([]string{
		"BUG: would match the default set",
		"modem: firmware assert in nas task",
	})
	assert.Len(t, severe, 1)
	assert.Empty(t, info)
}
