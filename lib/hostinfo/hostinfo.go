// Copyright 2026 The Nodediag Authors
// SPDX-License-Identifier: Apache-2.0

// Package hostinfo collects static host inventory: CPU model and
// topology, memory, NUMA layout, and kernel version. The probe gives a
// troubleshooting client the context the other diagnostic tools
// assume — how many CPUs exist, whether SMT is on, how many NUMA
// nodes the affinity conflicts span.
package hostinfo

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/nodediag/nodediag/lib/cpuset"
)

// Info is a static host inventory snapshot.
type Info struct {
	Hostname      string  `json:"hostname"`
	KernelVersion string  `json:"kernel_version"`
	CPU           CPUInfo `json:"cpu"`
	MemoryTotalMB int     `json:"memory_total_mb"`
	SwapTotalMB   int     `json:"swap_total_mb"`
	NUMANodes     int     `json:"numa_nodes"`
}

// CPUInfo describes the host CPU topology.
type CPUInfo struct {
	Model          string `json:"model"`
	LogicalCPUs    int    `json:"logical_cpus"`
	Sockets        int    `json:"sockets"`
	CoresPerSocket int    `json:"cores_per_socket"`
	ThreadsPerCore int    `json:"threads_per_core"`
	L3CacheKB      int    `json:"l3_cache_kb"`
}

// Probe collects host inventory from the live /proc and /sys.
//
// Probe never returns an error — missing or unreadable files produce
// zero-valued fields rather than failures. A minimal container with no
// DMI and no NUMA is a valid host that should still report its CPU
// and memory.
func Probe() Info {
	return probeFrom("/proc", "/sys")
}

// probeFrom is the testable implementation of Probe. It accepts root
// paths for /proc and /sys so tests can point at synthetic filesystems.
func probeFrom(procRoot, sysRoot string) Info {
	info := Info{}

	info.Hostname, _ = os.Hostname()
	info.KernelVersion = readKernelVersion()
	info.CPU = probeCPU(procRoot, sysRoot)
	info.MemoryTotalMB, info.SwapTotalMB = probeMemory()
	info.NUMANodes = countNUMANodes(sysRoot)

	return info
}

// readKernelVersion returns the kernel release string from uname(2).
func readKernelVersion() string {
	var utsname unix.Utsname
	if err := unix.Uname(&utsname); err != nil {
		return ""
	}
	return unix.ByteSliceToString(utsname.Release[:])
}

// probeCPU reads CPU topology from /proc/cpuinfo and /sys/devices/system/cpu/.
func probeCPU(procRoot, sysRoot string) CPUInfo {
	info := CPUInfo{}
	info.Model = readCPUModel(filepath.Join(procRoot, "cpuinfo"))

	cpuBase := filepath.Join(sysRoot, "devices/system/cpu")

	info.LogicalCPUs = countPresentCPUs(cpuBase)
	info.Sockets = countUniqueTopologyValues(cpuBase, "physical_package_id")

	// Core IDs repeat across sockets, so total physical cores are the
	// unique (package_id, core_id) pairs; divide by sockets for the
	// per-socket count.
	coresTotal := countUniqueCoreIDs(cpuBase)
	if coresTotal > 0 && info.Sockets > 0 {
		info.CoresPerSocket = coresTotal / info.Sockets
	}

	info.ThreadsPerCore = probeThreadsPerCore(cpuBase)
	info.L3CacheKB = readCacheSize(filepath.Join(cpuBase, "cpu0/cache/index3/size"))

	return info
}

// countPresentCPUs parses the "present" cpulist (e.g. "0-63") and
// returns the logical CPU count.
func countPresentCPUs(cpuBase string) int {
	data, err := os.ReadFile(filepath.Join(cpuBase, "present"))
	if err != nil {
		return 0
	}
	set, err := cpuset.ParseList(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return set.Count()
}

// readCPUModel extracts the first "model name" line from /proc/cpuinfo.
func readCPUModel(path string) string {
	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "model name") {
			parts := strings.SplitN(line, ":", 2)
			if len(parts) == 2 {
				return strings.TrimSpace(parts[1])
			}
		}
	}
	return ""
}

// readSysfsString reads a sysfs attribute and trims trailing whitespace.
func readSysfsString(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// countUniqueTopologyValues counts unique values of a topology field
// (e.g., physical_package_id) across all CPU directories.
func countUniqueTopologyValues(cpuBase, field string) int {
	entries, err := os.ReadDir(cpuBase)
	if err != nil {
		return 0
	}

	unique := make(map[string]struct{})
	for _, entry := range entries {
		if !isCPUDir(entry.Name()) {
			continue
		}
		value := readSysfsString(filepath.Join(cpuBase, entry.Name(), "topology", field))
		if value != "" {
			unique[value] = struct{}{}
		}
	}
	return len(unique)
}

// countUniqueCoreIDs counts unique (physical_package_id, core_id)
// pairs across all CPUs: the total physical core count.
func countUniqueCoreIDs(cpuBase string) int {
	entries, err := os.ReadDir(cpuBase)
	if err != nil {
		return 0
	}

	type coreKey struct {
		packageID string
		coreID    string
	}
	unique := make(map[coreKey]struct{})

	for _, entry := range entries {
		if !isCPUDir(entry.Name()) {
			continue
		}
		topologyDir := filepath.Join(cpuBase, entry.Name(), "topology")
		packageID := readSysfsString(filepath.Join(topologyDir, "physical_package_id"))
		coreID := readSysfsString(filepath.Join(topologyDir, "core_id"))
		if packageID != "" && coreID != "" {
			unique[coreKey{packageID, coreID}] = struct{}{}
		}
	}
	return len(unique)
}

// isCPUDir matches cpuN directories, skipping cpufreq, cpuidle, etc.
func isCPUDir(name string) bool {
	if !strings.HasPrefix(name, "cpu") {
		return false
	}
	suffix := name[3:]
	return len(suffix) > 0 && suffix[0] >= '0' && suffix[0] <= '9'
}

// probeThreadsPerCore determines threads per core from the first CPU's
// thread_siblings_list. The file is a kernel cpulist, so siblings can
// appear as discrete entries ("0,96") or collapse into a range ("0-1")
// depending on how the host numbers SMT threads.
func probeThreadsPerCore(cpuBase string) int {
	siblings := readSysfsString(filepath.Join(cpuBase, "cpu0/topology/thread_siblings_list"))
	if siblings == "" {
		return 1
	}
	set, err := cpuset.ParseList(siblings)
	if err != nil || set.IsEmpty() {
		return 1
	}
	return set.Count()
}

// readCacheSize parses a cache size file (e.g., "32768K") and returns
// the value in kilobytes.
func readCacheSize(path string) int {
	value := readSysfsString(path)
	if value == "" {
		return 0
	}
	value = strings.TrimSuffix(value, "K")
	kilobytes, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return kilobytes
}

// probeMemory returns total RAM and swap in megabytes from sysinfo(2).
func probeMemory() (memoryTotalMB, swapTotalMB int) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, 0
	}
	unitSize := uint64(info.Unit)
	memoryTotalMB = int(uint64(info.Totalram) * unitSize / (1024 * 1024))
	swapTotalMB = int(uint64(info.Totalswap) * unitSize / (1024 * 1024))
	return memoryTotalMB, swapTotalMB
}

// countNUMANodes counts /sys/devices/system/node/node* directories.
func countNUMANodes(sysRoot string) int {
	nodeBase := filepath.Join(sysRoot, "devices/system/node")
	entries, err := os.ReadDir(nodeBase)
	if err != nil {
		return 0
	}
	count := 0
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), "node") {
			suffix := entry.Name()[4:]
			if len(suffix) > 0 && suffix[0] >= '0' && suffix[0] <= '9' {
				count++
			}
		}
	}
	return count
}
