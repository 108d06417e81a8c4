//go:build linux

package platform

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// perf_event counter selection, in fixed order.
var perfConfigs = []struct {
	typ    uint32
	config uint64
}{
	{unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_CPU_CYCLES},
	{unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_INSTRUCTIONS},
	{unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_CACHE_REFERENCES},
	{unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_CACHE_MISSES},
	{unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_BRANCH_INSTRUCTIONS},
	{unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_BRANCH_MISSES},
}

// HWSession is an open set of perf_event counters for the calling process.
type HWSession struct {
	fds []int
}

// StartHWCounters opens and enables the hardware counters. Failure (perf
// unavailable, paranoid level too high, counters not permitted) returns an
// error the caller treats as "counters unavailable", never as a fault.
func StartHWCounters() (*HWSession, error) {
	s := &HWSession{}

	for _, pc := range perfConfigs {
		attr := unix.PerfEventAttr{
			Type:   pc.typ,
			Config: pc.config,
			Bits:   unix.PerfBitDisabled | unix.PerfBitExcludeKernel | unix.PerfBitExcludeHv,
		}
		fd, err := unix.PerfEventOpen(&attr, 0, -1, -1, unix.PERF_FLAG_FD_CLOEXEC)
		if err != nil {
			s.close()
			return nil, errors.Wrap(err, "perf_event_open")
		}
		s.fds = append(s.fds, fd)
	}

	for _, fd := range s.fds {
		if err := unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_RESET, 0); err != nil {
			s.close()
			return nil, errors.Wrap(err, "perf reset")
		}
		if err := unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_ENABLE, 0); err != nil {
			s.close()
			return nil, errors.Wrap(err, "perf enable")
		}
	}

	return s, nil
}

// Stop disables the counters, reads their final values and closes the
// session.
func (s *HWSession) Stop() (HWCounters, error) {
	var c HWCounters
	defer s.close()

	values := make([]uint64, len(s.fds))
	for i, fd := range s.fds {
		if err := unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_DISABLE, 0); err != nil {
			return c, errors.Wrap(err, "perf disable")
		}
		var buf [8]byte
		if _, err := unix.Read(fd, buf[:]); err != nil {
			return c, errors.Wrap(err, "perf read")
		}
		values[i] = binary.LittleEndian.Uint64(buf[:])
	}

	c.Available = true
	c.Cycles = values[0]
	c.Instructions = values[1]
	c.CacheRefs = values[2]
	c.CacheMisses = values[3]
	c.BranchRefs = values[4]
	c.BranchMisses = values[5]
	c.deriveRatios()

	return c, nil
}

func (s *HWSession) close() {
	for _, fd := range s.fds {
		unix.Close(fd)
	}
	s.fds = nil
}
