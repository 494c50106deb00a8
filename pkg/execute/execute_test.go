package execute

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCapturesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX tools required")
	}

	res, err := Run(context.Background(), Options{
		Command: "echo",
		Args:    []string{"hello"},
		Capture: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello\n", res.Output)
	assert.Equal(t, 0, res.ExitCode)
}

func TestRunDiscardsOutputWithoutCapture(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX tools required")
	}

	res, err := Run(context.Background(), Options{
		Command: "echo",
		Args:    []string{"hello"},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Output)
}

func TestRunReportsExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX tools required")
	}

	res, err := Run(context.Background(), Options{
		Command: "false",
	})
	assert.Error(t, err)
	assert.Equal(t, 1, res.ExitCode)
}

func TestRunMissingCommand(t *testing.T) {
	res, err := Run(context.Background(), Options{
		Command: "definitely-not-a-real-binary-xyz",
	})
	assert.Error(t, err)
	assert.Equal(t, -1, res.ExitCode)
}

func TestRunHonorsTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX tools required")
	}

	start := time.Now()
	_, err := Run(context.Background(), Options{
		Command: "sleep",
		Args:    []string{"30"},
		Timeout: 200 * time.Millisecond,
	})
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestAvailable(t *testing.T) {
	assert.True(t, Available("sh"))
	assert.False(t, Available("definitely-not-a-real-binary-xyz"))
}
