package probe

import (
	"context"
	"testing"

	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPresenceWithFake(t *testing.T) {
	ctx := context.Background()
	f := NewFakeProber()

	f.SetPresence(Registered, Absent, Absent, Detected, Connected)

	assert.Equal(t, Registered, Presence(ctx, f))
	assert.Equal(t, Absent, Presence(ctx, f))
	assert.Equal(t, Absent, Presence(ctx, f))
	assert.Equal(t, Detected, Presence(ctx, f))
	assert.Equal(t, Connected, Presence(ctx, f))
	// Last entry is sticky.
	assert.Equal(t, Connected, Presence(ctx, f))
}

func TestPresenceTransportFailureIsAbsentAndLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	undo := otelzap.ReplaceGlobals(otelzap.New(zap.New(core)))
	defer undo()

	ctx := context.Background()
	f := NewFakeProber()
	f.IndexErr = cerr.New("mmcli: dbus timeout")

	assert.Equal(t, Absent, Presence(ctx, f))
	entries := logs.TakeAll()
	if assert.Len(t, entries, 1, "transport failure must be surfaced, not swallowed") {
		assert.Contains(t, entries[0].Message, "query failed")
	}

	// A failed status with no error is still a transport failure.
	f.IndexErr = nil
	f.IndexStatus = StatusFailed
	assert.Equal(t, Absent, Presence(ctx, f))
	assert.Len(t, logs.TakeAll(), 1)

	// A legitimate not-found answer stays quiet.
	f.IndexStatus = StatusFound
	f.SetPresence(Absent)
	assert.Equal(t, Absent, Presence(ctx, f))
	assert.Empty(t, logs.TakeAll())
}
