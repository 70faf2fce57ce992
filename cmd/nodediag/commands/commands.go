// Copyright 2026 The Nodediag Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete nodediag CLI command tree. The
// MCP server walks the same tree for tool discovery, so the tree is
// the single source of truth for both the terminal and agent surfaces.
package commands

import (
	"fmt"

	affinitycmd "github.com/nodediag/nodediag/cmd/nodediag/affinity"
	"github.com/nodediag/nodediag/cmd/nodediag/cli"
	hwcmd "github.com/nodediag/nodediag/cmd/nodediag/hw"
	mcpcmd "github.com/nodediag/nodediag/cmd/nodediag/mcp"
	"github.com/nodediag/nodediag/lib/version"
)

// Root builds and returns the complete nodediag CLI command tree.
// Tool discovery walks root.Subcommands, so the MCP command is added
// last (after the tree is constructed) and receives the root pointer
// for introspection.
func Root() *cli.Command {
	root := &cli.Command{
		Name: "nodediag",
		Description: `nodediag: host CPU and hardware diagnostics.

Find cross-cgroup CPU affinity conflicts, list what may run on a given
CPU, and query MSRs and NICs — from a terminal or as MCP tools for an
automated troubleshooting client.`,
		Subcommands: []*cli.Command{
			affinitycmd.Command(),
			hwcmd.Command(),
			{
				Name:    "version",
				Summary: "print version information",
				Run: func(args []string) error {
					fmt.Printf("nodediag %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "find cgroup pairs with overlapping CPU affinity",
				Command:     "nodediag affinity intersect",
			},
			{
				Description: "who may run on CPU 5",
				Command:     "nodediag affinity cpu-procs 5",
			},
			{
				Description: "host hardware inventory as JSON",
				Command:     "nodediag hw info --json",
			},
			{
				Description: "serve all commands as MCP tools",
				Command:     "nodediag mcp serve",
			},
		},
	}

	// The MCP command walks root.Subcommands for tool discovery, so it
	// is appended after the tree is constructed.
	root.Subcommands = append(root.Subcommands, mcpcmd.Command(root))

	return root
}
