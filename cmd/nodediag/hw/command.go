// Copyright 2026 The Nodediag Authors
// SPDX-License-Identifier: Apache-2.0

// Package hw implements the "nodediag hw" command group: host hardware
// inventory, MSR reads through rdmsr, and NIC queries through ethtool.
package hw

import (
	"github.com/nodediag/nodediag/cmd/nodediag/cli"
)

// Command returns the "hw" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "hw",
		Summary: "hardware inventory and low-level queries",
		Subcommands: []*cli.Command{
			infoCommand(),
			msrCommand(),
			ethtoolCommand(),
		},
	}
}
