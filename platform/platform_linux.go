//go:build linux

package platform

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/certifiable-ai/go-bench/timer"
	"github.com/pkg/errors"
)

const (
	cpuinfoPath  = "/proc/cpuinfo"
	cpuFreqPath  = "/sys/devices/system/cpu/cpu0/cpufreq/scaling_cur_freq"
	cpuTempPath  = "/sys/class/thermal/thermal_zone0/temp"
	throttlePath = "/sys/devices/system/cpu/cpu0/thermal_throttle/core_throttle_count"
)

// cpuModel reads the "model name" line from /proc/cpuinfo.
func cpuModel() (string, error) {
	f, err := os.Open(cpuinfoPath)
	if err != nil {
		return "", errors.Wrap(err, "open cpuinfo")
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		// "model name" on x86, "Processor"/"model name" on ARM kernels.
		if strings.HasPrefix(line, "model name") || strings.HasPrefix(line, "Processor") {
			if _, value, found := strings.Cut(line, ":"); found {
				return strings.TrimSpace(value), nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", errors.Wrap(err, "read cpuinfo")
	}
	return "", errors.New("platform: cpu model not found")
}

// cpuFreqMHz reads the current scaling frequency, which sysfs reports in kHz.
func cpuFreqMHz() uint32 {
	khz, ok := readSysfsUint(cpuFreqPath)
	if !ok {
		return 0
	}
	return uint32(khz / 1000)
}

// Snapshot reads the environmental sensors. Individual sensor failures
// leave their fields zero; the error is non-nil only if every sensor is
// unavailable, and even then callers treat the zero snapshot as valid
// "no data".
func Snapshot() (EnvSnapshot, error) {
	snap := EnvSnapshot{TimestampNs: timer.Now()}
	any := false

	if khz, ok := readSysfsUint(cpuFreqPath); ok {
		snap.CPUFreqHz = khz * 1000
		any = true
	}
	if mc, ok := readSysfsUint(cpuTempPath); ok {
		snap.CPUTempMilliC = int32(mc)
		any = true
	}
	if n, ok := readSysfsUint(throttlePath); ok {
		snap.ThrottleCount = uint32(n)
		any = true
	}

	if !any {
		return snap, errors.New("platform: no environmental sensors readable")
	}
	return snap, nil
}

// readSysfsUint reads a single decimal integer from a sysfs file.
func readSysfsUint(path string) (uint64, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
