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
)

type statsParams struct {
	cli.JSONOutput
}

func statsCommand() *cli.Command {
	var params statsParams

	return &cli.Command{
		Name:    "stats",
		Summary: "summarize cgroup population and footprints",
		Description: "Reports process and cgroup counts for the host, plus the CPU\n" +
			"footprint of the most populous cgroups. A quick orientation pass\n" +
			"before digging into specific conflicts.",
		Usage:       "nodediag affinity stats [flags]",
		Annotations: cli.ReadOnly(),
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("stats", &params)
		},
		Params: func() any { return &params },
		Output: func() any { return &affinity.StatsReport{} },
		Run: func(args []string) error {
			return runStats(&params)
		},
	}
}

func runStats(params *statsParams) error {
	snapshot, err := scanHost()
	if err != nil {
		return err
	}

	report := affinity.Stats(snapshot)

	if done, err := params.EmitJSON(report); done {
		return err
	}

	fmt.Printf("%d processes, %d cgroups, %d without a resolvable cgroup\n\n",
		report.Processes, report.Cgroups, report.NoCgroup)

	writer := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintln(writer, "CGROUP\tPROCS\tCPUS\tCPU COUNT")
	for _, stat := range report.Top {
		fmt.Fprintf(writer, "%s\t%d\t%s\t%d\n",
			stat.CgroupName, stat.Processes, stat.CPUs, stat.CPUCount)
	}
	return writer.Flush()
}
