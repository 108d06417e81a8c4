//go:build !linux

package platform

import (
	"github.com/certifiable-ai/go-bench/timer"
	"github.com/pkg/errors"
)

func cpuModel() (string, error) {
	return "", errors.New("platform: cpu model probe not supported on this OS")
}

func cpuFreqMHz() uint32 { return 0 }

// Snapshot returns a timestamp-only snapshot on platforms without sysfs
// sensors; callers treat the zero fields as "no data".
func Snapshot() (EnvSnapshot, error) {
	return EnvSnapshot{TimestampNs: timer.Now()},
		errors.New("platform: no environmental sensors on this OS")
}

// HWSession is unavailable off Linux.
type HWSession struct{}

// StartHWCounters reports hardware counters unavailable on this OS.
func StartHWCounters() (*HWSession, error) {
	return nil, errors.New("platform: hardware counters not supported on this OS")
}

// Stop never runs; it exists so callers compile unchanged.
func (s *HWSession) Stop() (HWCounters, error) {
	return HWCounters{}, errors.New("platform: hardware counters not supported on this OS")
}
