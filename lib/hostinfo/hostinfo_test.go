// Copyright 2026 The Nodediag Authors
// SPDX-License-Identifier: Apache-2.0

package hostinfo

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// writeSyntheticFile creates a file at the given path within root,
// creating parent directories as needed.
func writeSyntheticFile(t *testing.T, root, path, content string) {
	t.Helper()
	fullPath := filepath.Join(root, path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(fullPath), err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", fullPath, err)
	}
}

func TestProbeFromSyntheticFS(t *testing.T) {
	root := t.TempDir()
	procRoot := filepath.Join(root, "proc")
	sysRoot := filepath.Join(root, "sys")

	writeSyntheticFile(t, root, "proc/cpuinfo",
		"processor\t: 0\nmodel name\t: AMD EPYC 7763 64-Core Processor\n\n"+
			"processor\t: 1\nmodel name\t: AMD EPYC 7763 64-Core Processor\n\n")

	// 1 socket, 2 cores, 2 threads per core (4 logical CPUs).
	writeSyntheticFile(t, root, "sys/devices/system/cpu/present", "0-3\n")
	for i, cfg := range []struct {
		packageID, coreID, siblings string
	}{
		{"0", "0", "0,2"},
		{"0", "1", "1,3"},
		{"0", "0", "0,2"},
		{"0", "1", "1,3"},
	} {
		topologyDir := fmt.Sprintf("sys/devices/system/cpu/cpu%d/topology", i)
		writeSyntheticFile(t, root, filepath.Join(topologyDir, "physical_package_id"), cfg.packageID)
		writeSyntheticFile(t, root, filepath.Join(topologyDir, "core_id"), cfg.coreID)
		writeSyntheticFile(t, root, filepath.Join(topologyDir, "thread_siblings_list"), cfg.siblings)
	}

	writeSyntheticFile(t, root, "sys/devices/system/cpu/cpu0/cache/index3/size", "32768K")

	for _, node := range []string{"node0", "node1"} {
		if err := os.MkdirAll(filepath.Join(sysRoot, "devices/system/node", node), 0755); err != nil {
			t.Fatalf("mkdir node: %v", err)
		}
	}

	info := probeFrom(procRoot, sysRoot)

	if info.CPU.Model != "AMD EPYC 7763 64-Core Processor" {
		t.Errorf("CPU.Model = %q", info.CPU.Model)
	}
	if info.CPU.LogicalCPUs != 4 {
		t.Errorf("CPU.LogicalCPUs = %d, want 4", info.CPU.LogicalCPUs)
	}
	if info.CPU.Sockets != 1 {
		t.Errorf("CPU.Sockets = %d, want 1", info.CPU.Sockets)
	}
	if info.CPU.CoresPerSocket != 2 {
		t.Errorf("CPU.CoresPerSocket = %d, want 2", info.CPU.CoresPerSocket)
	}
	if info.CPU.ThreadsPerCore != 2 {
		t.Errorf("CPU.ThreadsPerCore = %d, want 2", info.CPU.ThreadsPerCore)
	}
	if info.CPU.L3CacheKB != 32768 {
		t.Errorf("CPU.L3CacheKB = %d, want 32768", info.CPU.L3CacheKB)
	}
	if info.NUMANodes != 2 {
		t.Errorf("NUMANodes = %d, want 2", info.NUMANodes)
	}
}

func TestProbeFromEmptyFS(t *testing.T) {
	root := t.TempDir()

	// No files created — simulates a minimal container environment.
	info := probeFrom(filepath.Join(root, "proc"), filepath.Join(root, "sys"))

	if info.CPU.Model != "" {
		t.Errorf("CPU.Model = %q, want empty", info.CPU.Model)
	}
	if info.CPU.Sockets != 0 {
		t.Errorf("CPU.Sockets = %d, want 0", info.CPU.Sockets)
	}
	if info.CPU.LogicalCPUs != 0 {
		t.Errorf("CPU.LogicalCPUs = %d, want 0", info.CPU.LogicalCPUs)
	}
	if info.NUMANodes != 0 {
		t.Errorf("NUMANodes = %d, want 0", info.NUMANodes)
	}
}

func TestProbeFromMultiSocket(t *testing.T) {
	root := t.TempDir()
	procRoot := filepath.Join(root, "proc")
	sysRoot := filepath.Join(root, "sys")

	writeSyntheticFile(t, root, "proc/cpuinfo",
		"processor\t: 0\nmodel name\t: Intel Xeon Gold 6248\n\n")

	// Two sockets, 2 cores per socket, no SMT.
	configs := []struct {
		cpu, packageID, coreID, siblings string
	}{
		{"cpu0", "0", "0", "0"},
		{"cpu1", "0", "1", "1"},
		{"cpu2", "1", "0", "2"},
		{"cpu3", "1", "1", "3"},
	}
	for _, cfg := range configs {
		topologyDir := filepath.Join("sys/devices/system/cpu", cfg.cpu, "topology")
		writeSyntheticFile(t, root, filepath.Join(topologyDir, "physical_package_id"), cfg.packageID)
		writeSyntheticFile(t, root, filepath.Join(topologyDir, "core_id"), cfg.coreID)
		writeSyntheticFile(t, root, filepath.Join(topologyDir, "thread_siblings_list"), cfg.siblings)
	}

	info := probeFrom(procRoot, sysRoot)

	if info.CPU.Sockets != 2 {
		t.Errorf("CPU.Sockets = %d, want 2", info.CPU.Sockets)
	}
	if info.CPU.CoresPerSocket != 2 {
		t.Errorf("CPU.CoresPerSocket = %d, want 2", info.CPU.CoresPerSocket)
	}
	if info.CPU.ThreadsPerCore != 1 {
		t.Errorf("CPU.ThreadsPerCore = %d, want 1", info.CPU.ThreadsPerCore)
	}
}

func TestProbeThreadsPerCore(t *testing.T) {
	tests := []struct {
		name     string
		siblings string
		want     int
	}{
		{"discrete_pair", "0,96", 2},
		{"range_pair", "0-1", 2},
		{"range_quad", "0-3", 4},
		{"mixed", "0-1,64-65", 4},
		{"single", "0", 1},
		{"missing", "", 1},
		{"garbage", "x-y", 1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cpuBase := t.TempDir()
			if test.siblings != "" {
				writeSyntheticFile(t, cpuBase, "cpu0/topology/thread_siblings_list", test.siblings)
			}
			if got := probeThreadsPerCore(cpuBase); got != test.want {
				t.Errorf("probeThreadsPerCore(%q) = %d, want %d", test.siblings, got, test.want)
			}
		})
	}
}

func TestReadCacheSize(t *testing.T) {
	directory := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"standard", "32768K", 32768},
		{"small", "256K", 256},
		{"empty", "", 0},
		{"no_suffix", "1024", 1024},
		{"garbage", "fooK", 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(directory, test.name)
			if test.content != "" {
				if err := os.WriteFile(path, []byte(test.content), 0644); err != nil {
					t.Fatalf("WriteFile: %v", err)
				}
			} else {
				path = filepath.Join(directory, "nonexistent")
			}
			if got := readCacheSize(path); got != test.want {
				t.Errorf("readCacheSize(%q) = %d, want %d", test.content, got, test.want)
			}
		})
	}
}

func TestProbeLiveSystem(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("skipping: requires Linux /proc and /sys")
	}

	info := Probe()

	if info.Hostname == "" {
		t.Error("Hostname should not be empty on a live system")
	}
	if info.KernelVersion == "" {
		t.Error("KernelVersion should not be empty on a live system")
	}
	if info.CPU.Model == "" {
		t.Error("CPU.Model should not be empty on a live system")
	}
	if info.CPU.LogicalCPUs < 1 {
		t.Errorf("CPU.LogicalCPUs = %d, want >= 1", info.CPU.LogicalCPUs)
	}
	if info.MemoryTotalMB < 1 {
		t.Errorf("MemoryTotalMB = %d, want >= 1", info.MemoryTotalMB)
	}
}
