// Copyright 2026 The Nodediag Authors
// SPDX-License-Identifier: Apache-2.0

package affinity

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/nodediag/nodediag/cmd/nodediag/cli"
	"github.com/nodediag/nodediag/lib/affinity"
)

type cpuProcsParams struct {
	cli.JSONOutput
	CPU int `json:"cpu" flag:"cpu" desc:"CPU index to list processes for" required:"true"`
}

func cpuProcsCommand() *cli.Command {
	var params cpuProcsParams

	return &cli.Command{
		Name:    "cpu-procs",
		Summary: "list processes allowed to run on a CPU",
		Description: "Lists every process whose affinity mask includes the given CPU,\n" +
			"in ascending PID order. Processes without a resolvable cgroup are\n" +
			"included — a busy isolated CPU is a problem no matter who owns\n" +
			"the intruder.",
		Usage: "nodediag affinity cpu-procs [--cpu] <cpu>",
		Examples: []cli.Example{
			{
				Description: "who can run on CPU 5",
				Command:     "nodediag affinity cpu-procs 5",
			},
		},
		Annotations: cli.ReadOnly(),
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("cpu-procs", &params)
		},
		Params: func() any { return &params },
		Output: func() any { return []affinity.ProcessRef{} },
		Run: func(args []string) error {
			// The CLI form takes the CPU as a positional argument;
			// MCP callers set it through the params struct.
			if len(args) > 0 {
				cpu, err := strconv.Atoi(args[0])
				if err != nil {
					return cli.Validation("invalid CPU %q: not a number", args[0])
				}
				params.CPU = cpu
			}
			return runCPUProcs(&params)
		},
	}
}

func runCPUProcs(params *cpuProcsParams) error {
	snapshot, err := scanHost()
	if err != nil {
		return err
	}

	refs, err := affinity.ProcessesForCPU(snapshot, params.CPU)
	if err != nil {
		return cli.Validation("%w", err).
			WithHint("Pass a CPU index within the host's range.")
	}

	if done, err := params.EmitJSON(refs); done {
		return err
	}

	writer := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintf(writer, "PID\tNAME\n")
	for _, ref := range refs {
		fmt.Fprintf(writer, "%d\t%s\n", ref.PID, ref.Name)
	}
	writer.Flush()
	fmt.Printf("\n%d processes may run on CPU %d\n", len(refs), params.CPU)
	return nil
}
