// Copyright 2026 The Nodediag Authors
// SPDX-License-Identifier: Apache-2.0

package hw

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/nodediag/nodediag/cmd/nodediag/cli"
	"github.com/nodediag/nodediag/lib/hostinfo"
)

type infoParams struct {
	cli.JSONOutput
}

func infoCommand() *cli.Command {
	var params infoParams

	return &cli.Command{
		Name:    "info",
		Summary: "show host hardware inventory",
		Description: "Reports the host's CPU model and topology, memory, swap, NUMA\n" +
			"layout, and kernel version. The context the other diagnostics\n" +
			"assume: how many CPUs exist and whether SMT is enabled.",
		Usage:       "nodediag hw info [flags]",
		Annotations: cli.ReadOnly(),
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("info", &params)
		},
		Params: func() any { return &params },
		Output: func() any { return &hostinfo.Info{} },
		Run: func(args []string) error {
			return runInfo(&params)
		},
	}
}

func runInfo(params *infoParams) error {
	info := hostinfo.Probe()

	if done, err := params.EmitJSON(info); done {
		return err
	}

	writer := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintf(writer, "Hostname\t%s\n", info.Hostname)
	fmt.Fprintf(writer, "Kernel\t%s\n", info.KernelVersion)
	fmt.Fprintf(writer, "CPU\t%s\n", info.CPU.Model)
	fmt.Fprintf(writer, "Logical CPUs\t%d\n", info.CPU.LogicalCPUs)
	fmt.Fprintf(writer, "Sockets\t%d\n", info.CPU.Sockets)
	fmt.Fprintf(writer, "Cores per socket\t%d\n", info.CPU.CoresPerSocket)
	fmt.Fprintf(writer, "Threads per core\t%d\n", info.CPU.ThreadsPerCore)
	if info.CPU.L3CacheKB > 0 {
		fmt.Fprintf(writer, "L3 cache\t%d KB\n", info.CPU.L3CacheKB)
	}
	fmt.Fprintf(writer, "Memory\t%d MB\n", info.MemoryTotalMB)
	fmt.Fprintf(writer, "Swap\t%d MB\n", info.SwapTotalMB)
	fmt.Fprintf(writer, "NUMA nodes\t%d\n", info.NUMANodes)
	return writer.Flush()
}
