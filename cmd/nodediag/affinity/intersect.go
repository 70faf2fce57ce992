// Copyright 2026 The Nodediag Authors
// SPDX-License-Identifier: Apache-2.0

package affinity

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/nodediag/nodediag/cmd/nodediag/cli"
	"github.com/nodediag/nodediag/lib/affinity"
	"github.com/nodediag/nodediag/lib/config"
	"github.com/nodediag/nodediag/lib/cpuset"
)

type intersectParams struct {
	cli.JSONOutput
	CPUs          string   `json:"cpus" flag:"cpus,c" desc:"restrict analysis to this CPU list (e.g. 0-3,8)"`
	IgnoreCgroups []string `json:"ignore_cgroups" flag:"ignore-cgroups" desc:"cgroup names to exclude"`
	IgnoreProcs   []string `json:"ignore_procs" flag:"ignore-procs" desc:"process names to exclude"`
}

func intersectCommand() *cli.Command {
	var params intersectParams

	return &cli.Command{
		Name:    "intersect",
		Summary: "find cgroup pairs with overlapping CPU affinity",
		Description: "Scans every process on the host, groups them by cgroup, and\n" +
			"reports each pair of distinct cgroups whose CPU footprints overlap,\n" +
			"with the shared CPUs and the processes contributing to the overlap\n" +
			"on each side. Workloads that are supposed to be isolated onto\n" +
			"disjoint CPU sets show up here when the isolation is broken.",
		Usage: "nodediag affinity intersect [flags]",
		Examples: []cli.Example{
			{
				Description: "all overlapping cgroup pairs on the host",
				Command:     "nodediag affinity intersect",
			},
			{
				Description: "overlaps on the isolated CPUs only, ignoring monitoring agents",
				Command:     "nodediag affinity intersect --cpus 4-15 --ignore-procs node_exporter",
			},
		},
		Annotations: cli.ReadOnly(),
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("intersect", &params)
		},
		Params: func() any { return &params },
		Output: func() any { return []affinity.Conflict{} },
		Run: func(args []string) error {
			return runIntersect(&params)
		},
	}
}

func runIntersect(params *intersectParams) error {
	logger := cli.NewCommandLogger().With("command", "affinity/intersect")

	cfg, err := config.Load()
	if err != nil {
		return cli.Internal("loading config: %w", err)
	}

	options := affinity.Options{
		IgnoreCgroups: mergeIgnoreSet(cfg.Affinity.IgnoreCgroups, params.IgnoreCgroups),
		IgnoreProcs:   mergeIgnoreSet(cfg.Affinity.IgnoreProcs, params.IgnoreProcs),
	}

	if params.CPUs != "" {
		set, err := cpuset.ParseList(params.CPUs)
		if err != nil {
			return cli.Validation("invalid CPU list %q: %w", params.CPUs, err).
				WithHint("Pass a comma-separated list of CPUs and ranges, e.g. 0-3,8.")
		}
		options.CPUs = &set
	}

	snapshot, err := scanHost()
	if err != nil {
		return err
	}

	conflicts := affinity.FindConflicts(snapshot, options)
	logger.Info("affinity analysis complete",
		"processes", len(snapshot.Processes),
		"conflicts", len(conflicts))

	if done, err := params.EmitJSON(conflicts); done {
		return err
	}

	if len(conflicts) == 0 {
		fmt.Println("no overlapping cgroup pairs found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintln(writer, "CGROUP A\tCGROUP B\tSHARED CPUS")
	for _, conflict := range conflicts {
		fmt.Fprintf(writer, "%s\t%s\t%s\n",
			conflict.A.CgroupName, conflict.B.CgroupName, conflict.SharedCPUs)
	}
	writer.Flush()

	for _, conflict := range conflicts {
		fmt.Printf("\n%s <-> %s on CPUs %s\n",
			conflict.A.CgroupName, conflict.B.CgroupName, conflict.SharedCPUs)
		printSide(conflict.A)
		printSide(conflict.B)
	}
	return nil
}

func printSide(side affinity.Side) {
	fmt.Printf("  %s (%s):\n", side.CgroupName, side.CgroupID)
	for _, process := range side.Processes {
		fmt.Printf("    %d %s\n", process.PID, process.Name)
	}
}
