// pkg/scenario/markers.go

package scenario

import (
	"regexp"

	cerr "github.com/cockroachdb/errors"

	"github.com/wwantools/modemstress/pkg/config"
)

// MarkerSet holds the regression signatures evaluated against the windowed
// ring-buffer text. The set is data, not control flow: tests and operators
// inject their own patterns.
type MarkerSet struct {
	severe []*regexp.Regexp
	info   []*regexp.Regexp
}

// Built-in regression signatures. Any match in a scenario's log window is a
// hard failure.
var defaultSevere = []string{
	`\bBUG:`,
	`\bOops\b`,
	`(?i)kernel panic`,
	`general protection fault`,
	`unable to handle kernel`,
	`invalid memory access`,
	`Call Trace:`,
	`(?i)taint(s|ed|ing) kernel`,
}

// Driver chatter worth recording but never disqualifying on its own.
var defaultInfo = []string{
	`(?i)\b(qmi_wwan|cdc_mhi|mhi_net|wwan\d*)\b`,
}

// DefaultMarkerSet returns the built-in marker sets.
func DefaultMarkerSet() *MarkerSet {
	m, err := NewMarkerSet(defaultSevere, defaultInfo)
	if err != nil {
		panic("built-in marker patterns must compile: " + err.Error())
	}
	return m
}

// NewMarkerSet compiles explicit pattern lists.
func NewMarkerSet(severe, info []string) (*MarkerSet, error) {
	m := &MarkerSet{}
	for _, p := range severe {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, cerr.Wrapf(err, "bad severe marker %q", p)
		}
		m.severe = append(m.severe, re)
	}
	for _, p := range info {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, cerr.Wrapf(err, "bad informational marker %q", p)
		}
		m.info = append(m.info, re)
	}
	return m, nil
}

// BuildMarkerSet merges operator overrides with the built-in sets.
func BuildMarkerSet(ov *config.MarkerOverrides) (*MarkerSet, error) {
	severe := ov.Severe
	info := ov.Informational
	if !ov.Replace {
		severe = append(append([]string{}, defaultSevere...), severe...)
		info = append(append([]string{}, defaultInfo...), info...)
	}
	return NewMarkerSet(severe, info)
}

// Scan partitions lines into severe matches and informational matches. A line
// matching both sets counts as severe only.
func (m *MarkerSet) Scan(lines []string) (severe, info []string) {
	for _, line := range lines {
		if matchAny(m.severe, line) {
			severe = append(severe, line)
			continue
		}
		if matchAny(m.info, line) {
			info = append(info, line)
		}
	}
	return severe, info
}

func matchAny(set []*regexp.Regexp, line string) bool {
	for _, re := range set {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
