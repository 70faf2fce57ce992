// Copyright 2026 The Nodediag Authors
// SPDX-License-Identifier: Apache-2.0

// Package affinity implements the "nodediag affinity" command group:
// cross-cgroup CPU affinity conflict detection, per-CPU process
// listing, and cgroup population statistics.
package affinity

import (
	"github.com/nodediag/nodediag/cmd/nodediag/cli"
	"github.com/nodediag/nodediag/lib/procscan"
)

// Command returns the "affinity" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "affinity",
		Summary: "CPU affinity analysis across cgroups",
		Subcommands: []*cli.Command{
			intersectCommand(),
			cpuProcsCommand(),
			statsCommand(),
		},
	}
}

// scanHost takes a process snapshot of the live host, mapping a scan
// failure to an internal tool error. Per-process read failures are
// absorbed by the scanner; only an unreadable process table surfaces
// here.
func scanHost() (*procscan.Snapshot, error) {
	snapshot, err := procscan.NewScanner().Scan()
	if err != nil {
		return nil, cli.Internal("scanning processes: %w", err)
	}
	return snapshot, nil
}

// mergeIgnoreSet combines configured defaults with per-invocation
// additions into a lookup set.
func mergeIgnoreSet(configured, flags []string) map[string]bool {
	if len(configured) == 0 && len(flags) == 0 {
		return nil
	}
	set := make(map[string]bool, len(configured)+len(flags))
	for _, name := range configured {
		set[name] = true
	}
	for _, name := range flags {
		set[name] = true
	}
	return set
}
