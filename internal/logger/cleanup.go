package logger

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// CleanupStats summarizes one stale-log sweep.
type CleanupStats struct {
	Scanned int
	Deleted int
	Kept    int
	Errors  int

	DeletedFiles []string
	KeptFiles    []string
}

// maxLogAge caps how long a log survives even when its owner cannot be
// identified.
const maxLogAge = 7 * 24 * time.Hour

// startTimeSlack absorbs clock/rounding skew when comparing a process
// start time to a log file timestamp.
const startTimeSlack = 5 * time.Second

var (
	processRunningCheck = isProcessRunning
	processStartTimeFn  = getProcessStartTime
	removeLogFileFn     = os.Remove
	globLogFiles        = filepath.Glob
	fileStatFn          = os.Lstat
	nowFn               = time.Now
)

// CleanupStaleLogs removes qbackend log files whose owning process is
// gone. A file is kept when its PID belongs to a live process that was
// already running when the file was last written (a live process with a
// later start time means the PID was recycled).
func CleanupStaleLogs() CleanupStats {
	stats := CleanupStats{}

	pattern := filepath.Join(os.TempDir(), LogPrefix+"-*.log")
	matches, err := globLogFiles(pattern)
	if err != nil {
		stats.Errors++
		return stats
	}

	selfPID := os.Getpid()
	now := nowFn()

	for _, path := range matches {
		stats.Scanned++

		pid, ok := pidFromLogPath(path)
		if !ok {
			// Not one of ours; leave it alone.
			stats.Kept++
			stats.KeptFiles = append(stats.KeptFiles, path)
			continue
		}

		if pid == selfPID {
			stats.Kept++
			stats.KeptFiles = append(stats.KeptFiles, path)
			continue
		}

		info, err := fileStatFn(path)
		if err != nil {
			stats.Errors++
			continue
		}

		if keepLogFor(pid, info.ModTime(), now) {
			stats.Kept++
			stats.KeptFiles = append(stats.KeptFiles, path)
			continue
		}

		if err := removeLogFileFn(path); err != nil {
			stats.Errors++
			continue
		}
		stats.Deleted++
		stats.DeletedFiles = append(stats.DeletedFiles, path)
	}

	return stats
}

func keepLogFor(pid int, modTime, now time.Time) bool {
	if now.Sub(modTime) > maxLogAge {
		return false
	}
	if !processRunningCheck(pid) {
		return false
	}
	start := processStartTimeFn(pid)
	if start.IsZero() {
		// Could not read the start time; assume the PID still owns the log.
		return true
	}
	return !start.After(modTime.Add(startTimeSlack))
}

func pidFromLogPath(path string) (int, bool) {
	base := filepath.Base(path)
	rest, ok := strings.CutPrefix(base, LogPrefix+"-")
	if !ok {
		return 0, false
	}
	rest, ok = strings.CutSuffix(rest, ".log")
	if !ok {
		return 0, false
	}
	pid, err := strconv.Atoi(rest)
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

func pidToInt32(pid int) (int32, bool) {
	if pid <= 0 || pid > math.MaxInt32 {
		return 0, false
	}
	return int32(pid), true
}

// isProcessRunning reports whether a process with the given pid appears to
// be running. Conservative on errors so logs of live processes survive.
func isProcessRunning(pid int) bool {
	pid32, ok := pidToInt32(pid)
	if !ok {
		return false
	}

	exists, err := process.PidExists(pid32)
	if err == nil {
		return exists
	}
	if errors.Is(err, process.ErrorProcessNotRunning) {
		return false
	}
	// Permission/inspection failures: assume running.
	return true
}

// getProcessStartTime returns when pid started, zero time when unknown.
func getProcessStartTime(pid int) time.Time {
	pid32, ok := pidToInt32(pid)
	if !ok {
		return time.Time{}
	}

	proc, err := process.NewProcess(pid32)
	if err != nil {
		return time.Time{}
	}

	ms, err := proc.CreateTime()
	if err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
