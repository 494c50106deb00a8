// pkg/sysinfo/sysinfo.go

// Package sysinfo reports host identity for the preflight banner.
package sysinfo

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// HostInfo identifies the host the harness is exercising.
type HostInfo struct {
	Hostname      string
	KernelRelease string
	KernelVersion string
	Machine       string
	OS            string
}

// Collect reads host identity via uname(2). Fields default to "unknown" when
// the syscall is unavailable.
func Collect() HostInfo {
	info := HostInfo{
		Hostname:      "unknown",
		KernelRelease: "unknown",
		KernelVersion: "unknown",
		Machine:       "unknown",
		OS:            runtime.GOOS,
	}

	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return info
	}

	info.Hostname = charsToString(uts.Nodename[:])
	info.KernelRelease = charsToString(uts.Release[:])
	info.KernelVersion = charsToString(uts.Version[:])
	info.Machine = charsToString(uts.Machine[:])
	return info
}

func charsToString(cs []byte) string {
	for i, c := range cs {
		if c == 0 {
			return string(cs[:i])
		}
	}
	return string(cs)
}
