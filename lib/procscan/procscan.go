// Copyright 2026 The Nodediag Authors
// SPDX-License-Identifier: Apache-2.0

// Package procscan reads a point-in-time snapshot of every process on
// the host: PID, command name, CPU affinity, and owning cgroup. Each
// Scan is a fresh pass over /proc — nothing is cached between calls,
// and concurrent Scans are independent.
//
// Per-process read failures are expected (processes exit mid-scan,
// permissions vary) and silently skip that PID. Only a failure to
// enumerate the process table at all is an error.
package procscan

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/nodediag/nodediag/lib/cpuset"
)

// CgroupUnknown is the sentinel cgroup name assigned to processes
// whose cgroup cannot be resolved. The analyzer excludes the sentinel
// group from cross-group comparison.
const CgroupUnknown = "unknown"

// genericSlices are systemd slice names that carry no grouping
// information; cgroup name resolution skips past them to a more
// specific segment.
var genericSlices = map[string]bool{
	"user.slice":    true,
	"system.slice":  true,
	"machine.slice": true,
}

// Process describes one live process at scan time.
type Process struct {
	// PID is the process identifier, unique within a snapshot.
	PID int `json:"pid"`

	// Name is the command name from /proc/<pid>/status. Human-readable,
	// not unique.
	Name string `json:"name"`

	// Affinity is the set of CPUs the process may run on. Never empty
	// in a snapshot: processes whose affinity is unreadable are omitted
	// at scan time.
	Affinity cpuset.Set `json:"-"`

	// CgroupID identifies the owning cgroup. It is the resolved cgroup
	// path from /proc/<pid>/cgroup, empty when no cgroup was found.
	CgroupID string `json:"cgroup_id,omitempty"`

	// CgroupName is the display name derived from the cgroup path —
	// typically a pod or container identifier. CgroupUnknown when no
	// cgroup information is available.
	CgroupName string `json:"cgroup_name"`
}

// Snapshot is the result of one scan: every readable process, sorted
// by PID, plus the host CPU count for input validation. Snapshots are
// never mutated after Scan returns.
type Snapshot struct {
	Processes []Process
	HostCPUs  int
}

// Scanner reads snapshots from a /proc and /sys tree. The zero-cost
// constructor NewScanner targets the real mount points; tests point
// At at synthetic directories.
type Scanner struct {
	procRoot string
	sysRoot  string
}

// NewScanner returns a Scanner reading the host's /proc and /sys.
func NewScanner() *Scanner {
	return At("/proc", "/sys")
}

// At returns a Scanner rooted at the given /proc- and /sys-equivalent
// directories.
func At(procRoot, sysRoot string) *Scanner {
	return &Scanner{procRoot: procRoot, sysRoot: sysRoot}
}

// Scan enumerates all processes and returns a fresh snapshot. It fails
// only when the process table itself cannot be enumerated; individual
// unreadable processes are skipped.
func (s *Scanner) Scan() (*Snapshot, error) {
	entries, err := os.ReadDir(s.procRoot)
	if err != nil {
		return nil, fmt.Errorf("process table unavailable: reading %s: %w", s.procRoot, err)
	}

	snapshot := &Snapshot{HostCPUs: s.hostCPUs()}

	for _, entry := range entries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil || pid <= 0 {
			continue
		}

		process, ok := s.readProcess(pid)
		if !ok {
			continue
		}
		snapshot.Processes = append(snapshot.Processes, process)
	}

	// /proc returns entries in an unspecified order; sort so that
	// snapshots (and everything derived from them) are reproducible.
	sort.Slice(snapshot.Processes, func(i, j int) bool {
		return snapshot.Processes[i].PID < snapshot.Processes[j].PID
	})

	return snapshot, nil
}

// readProcess reads one process's status and cgroup files. Returns
// ok=false when the process vanished, is unreadable, or has no
// parseable affinity — all benign, the PID is simply omitted.
func (s *Scanner) readProcess(pid int) (Process, bool) {
	pidDir := filepath.Join(s.procRoot, strconv.Itoa(pid))

	status, err := os.ReadFile(filepath.Join(pidDir, "status"))
	if err != nil {
		return Process{}, false
	}

	name, mask := parseStatus(string(status))
	if mask == "" {
		return Process{}, false
	}
	affinity, err := cpuset.ParseMask(mask)
	if err != nil || affinity.IsEmpty() {
		return Process{}, false
	}

	process := Process{
		PID:        pid,
		Name:       name,
		Affinity:   affinity,
		CgroupName: CgroupUnknown,
	}

	// Cgroup resolution is independent of affinity: a permission
	// failure here leaves the process in the sentinel unknown group
	// rather than dropping it.
	if cgroup, err := os.ReadFile(filepath.Join(pidDir, "cgroup")); err == nil {
		if id, displayName, ok := resolveCgroup(string(cgroup)); ok {
			process.CgroupID = id
			process.CgroupName = displayName
		}
	}

	return process, true
}

// parseStatus extracts the Name and Cpus_allowed fields from a
// /proc/<pid>/status document.
func parseStatus(status string) (name, mask string) {
	for _, line := range strings.Split(status, "\n") {
		if value, ok := strings.CutPrefix(line, "Name:"); ok {
			name = strings.TrimSpace(value)
		} else if value, ok := strings.CutPrefix(line, "Cpus_allowed:"); ok {
			mask = strings.TrimSpace(value)
		}
		if name != "" && mask != "" {
			break
		}
	}
	return name, mask
}

// resolveCgroup extracts a grouping identity from the content of
// /proc/<pid>/cgroup. For each hierarchy line the path is split into
// segments (dropping the "N:controller:" prefix and empties); a
// segment starting with "pod" wins immediately (Kubernetes pod
// cgroups), otherwise the deepest segment that is not a generic
// systemd slice is used. The returned id is the full path of the line
// that produced the name, keeping distinct cgroups distinct even when
// their display names collide.
func resolveCgroup(content string) (id, name string, ok bool) {
	for _, line := range strings.Split(content, "\n") {
		if line == "" {
			continue
		}

		var segments []string
		for _, segment := range strings.Split(line, "/") {
			if segment == "" || strings.HasPrefix(segment, "0::") {
				continue
			}
			segments = append(segments, segment)
		}
		// The first remaining segment is the "N:controller:" line
		// prefix when the path is not under 0:: — drop it when it
		// still carries a colon.
		if len(segments) > 0 && strings.Contains(segments[0], ":") {
			segments = segments[1:]
		}
		if len(segments) == 0 {
			continue
		}

		for _, segment := range segments {
			if strings.HasPrefix(segment, "pod") {
				return cgroupPath(line), segment, true
			}
		}

		for i := len(segments) - 1; i >= 0; i-- {
			if !genericSlices[segments[i]] {
				return cgroupPath(line), segments[i], true
			}
		}
	}
	return "", "", false
}

// cgroupPath strips the "N:controller:" prefix from a cgroup line,
// leaving the hierarchy path that identifies the group.
func cgroupPath(line string) string {
	if index := strings.Index(line, ":/"); index >= 0 {
		return line[index+1:]
	}
	return line
}

// hostCPUs returns the host's logical CPU count, preferring the
// kernel's own report in /sys, then the width of this process's
// affinity mask, then the Go runtime's view. The count bounds the
// valid range for per-CPU queries.
func (s *Scanner) hostCPUs() int {
	present, err := os.ReadFile(filepath.Join(s.sysRoot, "devices/system/cpu/present"))
	if err == nil {
		if set, parseErr := cpuset.ParseList(strings.TrimSpace(string(present))); parseErr == nil && !set.IsEmpty() {
			cpus := set.List()
			return cpus[len(cpus)-1] + 1
		}
	}

	var mask unix.CPUSet
	if err := unix.SchedGetaffinity(0, &mask); err == nil {
		if cpus := affinityMaskCPUs(&mask); cpus > 0 {
			return cpus
		}
	}

	return runtime.NumCPU()
}

// affinityMaskCPUs returns the exclusive upper bound on CPU indices in
// an affinity mask: highest set bit + 1. The popcount would undershoot
// on hosts with offlined or sparse CPUs. Returns 0 for an empty mask.
func affinityMaskCPUs(mask *unix.CPUSet) int {
	for cpu := len(mask)*64 - 1; cpu >= 0; cpu-- {
		if mask.IsSet(cpu) {
			return cpu + 1
		}
	}
	return 0
}
