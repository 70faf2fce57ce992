// Copyright 2026 The Nodediag Authors
// SPDX-License-Identifier: Apache-2.0

package mcp

import (
	"github.com/nodediag/nodediag/cmd/nodediag/cli"
)

// Command returns the "mcp" command group. root is the full nodediag
// command tree; the server walks it to discover tools, so mcp must be
// attached after every other command group.
func Command(root *cli.Command) *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Summary: "Model Context Protocol server",
		Subcommands: []*cli.Command{
			serveCommand(root),
		},
	}
}

// serveCommand returns the "mcp serve" command.
func serveCommand(root *cli.Command) *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Summary: "serve nodediag commands as MCP tools over stdio",
		Description: "Starts an MCP server on stdin/stdout using newline-delimited\n" +
			"JSON-RPC 2.0. Every nodediag command with JSON parameters is\n" +
			"exposed as a callable tool, letting an automated troubleshooting\n" +
			"client run affinity analysis and hardware queries directly.",
		Usage: "nodediag mcp serve",
		Examples: []cli.Example{
			{
				Description: "register with an MCP client",
				Command:     `{"command": "nodediag", "args": ["mcp", "serve"]}`,
			},
		},
		Run: func(args []string) error {
			logger := cli.NewCommandLogger().With("command", "mcp/serve")
			server := NewServer(root)
			logger.Info("mcp server starting", "tools", len(server.tools))
			err := server.Serve()
			if err != nil {
				logger.Error("mcp server exited", "error", err)
			}
			return err
		},
	}
}
