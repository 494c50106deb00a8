package ms_err

import (
	"testing"

	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestExpectedErrorClassification(t *testing.T) {
	base := cerr.New("modem never detected")

	assert.False(t, IsExpectedUserError(base))
	assert.True(t, IsExpectedUserError(NewExpectedError(base)))
	assert.True(t, IsExpectedUserError(cerr.Wrap(NewExpectedError(base), "preflight")))
	assert.Nil(t, NewExpectedError(nil))
}

func TestExtractSummary(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{
			name:   "empty output",
			output: "   \n  ",
			want:   "No output provided.",
		},
		{
			name:   "picks error lines",
			output: "starting up\nerror: no modem found\nretrying\nconnection failed",
			want:   "error: no modem found - connection failed",
		},
		{
			name:   "falls back to first line",
			output: "all quiet here\nnothing happened",
			want:   "all quiet here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSummary(tt.output, 2))
		})
	}
}
