// Copyright 2026 The Nodediag Authors
// SPDX-License-Identifier: Apache-2.0

// Package affinity analyzes process CPU affinity across cgroups. Given
// a procscan snapshot it finds pairs of distinct cgroups whose CPU
// footprints (the union of their members' affinity sets) overlap, and
// reports which processes on each side contribute to the overlap.
//
// Analysis is a pure function of (snapshot, options): no state is kept
// between calls, and identical inputs produce identical output, in the
// same order.
package affinity

import (
	"fmt"
	"sort"

	"github.com/nodediag/nodediag/lib/cpuset"
	"github.com/nodediag/nodediag/lib/procscan"
)

// Options filters the analysis. The zero value applies no filtering.
type Options struct {
	// CPUs restricts the analysis to the given CPU set. Group
	// footprints are intersected with it before pairwise comparison;
	// groups whose footprint becomes empty are dropped entirely.
	// nil means all host CPUs.
	CPUs *cpuset.Set

	// IgnoreCgroups excludes processes whose cgroup display name is in
	// the set.
	IgnoreCgroups map[string]bool

	// IgnoreProcs excludes processes whose command name is in the set.
	IgnoreProcs map[string]bool
}

// ProcessRef identifies a process in a report.
type ProcessRef struct {
	PID  int    `json:"pid"`
	Name string `json:"name"`
}

// Side is one cgroup's half of a conflict: its identity and the
// processes whose individual affinity overlaps the shared CPU set.
type Side struct {
	CgroupID   string       `json:"cgroup_id"`
	CgroupName string       `json:"cgroup_name"`
	Processes  []ProcessRef `json:"processes"`
}

// Conflict reports one pair of distinct cgroups with overlapping CPU
// footprints. Each unordered pair appears at most once, A before B in
// group discovery order.
type Conflict struct {
	A      Side       `json:"a"`
	B      Side       `json:"b"`
	Shared cpuset.Set `json:"-"`

	// SharedCPUs is the Shared set in compact list form ("0-3,5"),
	// carried separately so the conflict serializes cleanly.
	SharedCPUs string `json:"shared_cpus"`
}

// group is the working state for one cgroup during analysis.
type group struct {
	id        string
	name      string
	footprint cpuset.Set
	members   []procscan.Process
}

// FindConflicts partitions the snapshot's processes by cgroup and
// returns every pair of distinct cgroups whose footprints intersect,
// after applying the options' filters. Processes in the sentinel
// unknown group never participate.
//
// Ordering is deterministic: groups are discovered in PID order over
// the snapshot (which procscan sorts), pairs are enumerated in that
// group order, and each side's contributing processes are listed in
// ascending PID order.
func FindConflicts(snapshot *procscan.Snapshot, options Options) []Conflict {
	groups := buildGroups(snapshot, options)

	var conflicts []Conflict
	for i := range groups {
		for j := i + 1; j < len(groups); j++ {
			shared := groups[i].footprint.Intersect(groups[j].footprint)
			if shared.IsEmpty() {
				continue
			}
			conflicts = append(conflicts, Conflict{
				A:          makeSide(groups[i], shared),
				B:          makeSide(groups[j], shared),
				Shared:     shared,
				SharedCPUs: shared.String(),
			})
		}
	}
	return conflicts
}

// buildGroups filters the snapshot and partitions the survivors by
// cgroup ID, preserving first-appearance order. Footprints already
// reflect the CPU filter; groups emptied by it are dropped.
func buildGroups(snapshot *procscan.Snapshot, options Options) []*group {
	var ordered []*group
	byID := make(map[string]*group)

	for _, process := range snapshot.Processes {
		if process.CgroupName == procscan.CgroupUnknown {
			continue
		}
		if options.IgnoreCgroups[process.CgroupName] {
			continue
		}
		if options.IgnoreProcs[process.Name] {
			continue
		}

		g, ok := byID[process.CgroupID]
		if !ok {
			g = &group{id: process.CgroupID, name: process.CgroupName}
			byID[process.CgroupID] = g
			ordered = append(ordered, g)
		}
		g.footprint = g.footprint.Union(process.Affinity)
		g.members = append(g.members, process)
	}

	if options.CPUs == nil {
		return ordered
	}

	surviving := ordered[:0]
	for _, g := range ordered {
		g.footprint = g.footprint.Intersect(*options.CPUs)
		if g.footprint.IsEmpty() {
			continue
		}
		surviving = append(surviving, g)
	}
	return surviving
}

// makeSide lists the group's processes whose individual affinity
// intersects the shared set. The re-check per process matters: a
// group's footprint is a union, so membership in the group does not
// imply contribution to the overlap.
func makeSide(g *group, shared cpuset.Set) Side {
	side := Side{CgroupID: g.id, CgroupName: g.name}
	for _, process := range g.members {
		if process.Affinity.Intersects(shared) {
			side.Processes = append(side.Processes, ProcessRef{PID: process.PID, Name: process.Name})
		}
	}
	// Members were appended in snapshot (PID) order; keep the sort as
	// an explicit guarantee rather than an accident of input order.
	sort.Slice(side.Processes, func(i, j int) bool {
		return side.Processes[i].PID < side.Processes[j].PID
	})
	return side
}

// ProcessesForCPU returns every process in the snapshot whose affinity
// set contains cpu, in ascending PID order, with no cgroup or name
// filtering. The cpu must be within the host's reported CPU range.
func ProcessesForCPU(snapshot *procscan.Snapshot, cpu int) ([]ProcessRef, error) {
	if cpu < 0 || cpu >= snapshot.HostCPUs {
		return nil, fmt.Errorf("CPU %d out of range: host has CPUs 0-%d", cpu, snapshot.HostCPUs-1)
	}

	var refs []ProcessRef
	for _, process := range snapshot.Processes {
		if process.Affinity.Contains(cpu) {
			refs = append(refs, ProcessRef{PID: process.PID, Name: process.Name})
		}
	}
	return refs, nil
}

// CgroupStat summarizes one cgroup in a Stats report.
type CgroupStat struct {
	CgroupName string `json:"cgroup_name"`
	Processes  int    `json:"processes"`
	CPUs       string `json:"cpus"`
	CPUCount   int    `json:"cpu_count"`
}

// StatsReport summarizes the snapshot's cgroup population.
type StatsReport struct {
	Processes int          `json:"processes"`
	Cgroups   int          `json:"cgroups"`
	NoCgroup  int          `json:"no_cgroup"`
	Top       []CgroupStat `json:"top"`
}

// statsTopLimit bounds the per-cgroup detail in a stats report.
const statsTopLimit = 20

// Stats reports process and cgroup counts plus per-cgroup footprints,
// sorted by process count descending (name ascending on ties), capped
// at the top twenty cgroups.
func Stats(snapshot *procscan.Snapshot) StatsReport {
	report := StatsReport{Processes: len(snapshot.Processes)}

	groups := buildGroups(snapshot, Options{})
	report.Cgroups = len(groups)
	for _, process := range snapshot.Processes {
		if process.CgroupName == procscan.CgroupUnknown {
			report.NoCgroup++
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if len(groups[i].members) != len(groups[j].members) {
			return len(groups[i].members) > len(groups[j].members)
		}
		return groups[i].name < groups[j].name
	})
	if len(groups) > statsTopLimit {
		groups = groups[:statsTopLimit]
	}

	for _, g := range groups {
		report.Top = append(report.Top, CgroupStat{
			CgroupName: g.name,
			Processes:  len(g.members),
			CPUs:       g.footprint.String(),
			CPUCount:   g.footprint.Count(),
		})
	}
	return report
}
