// Copyright 2026 The Nodediag Authors
// SPDX-License-Identifier: Apache-2.0

package hw

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/nodediag/nodediag/cmd/nodediag/cli"
	"github.com/nodediag/nodediag/lib/config"
	"github.com/nodediag/nodediag/lib/ethtool"
)

type ethtoolParams struct {
	cli.JSONOutput
	Interface string        `json:"interface" flag:"interface,i" desc:"network interface name, e.g. eth0" required:"true"`
	Query     string        `json:"query" flag:"query,q" desc:"query type: show-coalesce, show-ring, driver, show-offload, statistics, show-channels" default:"driver"`
	Timeout   time.Duration `json:"timeout" flag:"timeout" desc:"subprocess timeout" default:"10s"`
}

// ethtoolResult is the JSON output of "hw ethtool". Output carries the
// raw ethtool text — the formats vary per driver and query, so no
// structured parse is attempted.
type ethtoolResult struct {
	Interface string `json:"interface"`
	Query     string `json:"query"`
	Output    string `json:"output"`
}

func ethtoolCommand() *cli.Command {
	var params ethtoolParams

	return &cli.Command{
		Name:    "ethtool",
		Summary: "query a network interface via ethtool",
		Description: "Runs one read-only ethtool query against a network interface and\n" +
			"returns the raw output. The query vocabulary is a closed set of\n" +
			"show operations; nothing in it can change NIC state.",
		Usage: "nodediag hw ethtool [--interface] <interface> [flags]",
		Examples: []cli.Example{
			{
				Description: "driver and firmware of eth0",
				Command:     "nodediag hw ethtool eth0",
			},
			{
				Description: "ring buffer sizes",
				Command:     "nodediag hw ethtool eth0 --query show-ring",
			},
		},
		Annotations: cli.ReadOnly(),
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("ethtool", &params)
		},
		Params: func() any { return &params },
		Output: func() any { return &ethtoolResult{} },
		Run: func(args []string) error {
			if len(args) > 0 {
				params.Interface = args[0]
			}
			return runEthtool(&params)
		},
	}
}

func runEthtool(params *ethtoolParams) error {
	logger := cli.NewCommandLogger().With("command", "hw/ethtool")

	if err := ethtool.ValidateInterface(params.Interface); err != nil {
		return cli.Validation("%w", err)
	}
	query := ethtool.Query(params.Query)
	if !query.Valid() {
		return cli.Validation("unsupported query %q", params.Query).
			WithHint("Valid queries: " + queryNames() + ".")
	}

	cfg, err := config.Load()
	if err != nil {
		return cli.Internal("loading config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), params.Timeout)
	defer cancel()

	client := ethtool.NewClient(cfg.Tools.EthtoolBinary)
	output, err := client.Run(ctx, params.Interface, query)
	if err != nil {
		if ctx.Err() != nil {
			return cli.Transient("ethtool timed out after %s: %w", params.Timeout, err)
		}
		if strings.Contains(err.Error(), "executable file not found") {
			return cli.NotFound("ethtool binary not available: %w", err).
				WithHint("Install ethtool or set tools.ethtool_binary in the config file.")
		}
		if strings.Contains(err.Error(), "No such device") {
			return cli.NotFound("interface %q not found", params.Interface).
				WithHint("Run 'ip link' to list available interfaces.")
		}
		return cli.Internal("running ethtool: %w", err)
	}

	logger.Info("ethtool query", "interface", params.Interface, "query", params.Query)

	result := ethtoolResult{Interface: params.Interface, Query: params.Query, Output: output}
	if done, err := params.EmitJSON(result); done {
		return err
	}
	fmt.Print(output)
	return nil
}

func queryNames() string {
	names := make([]string, len(ethtool.Queries()))
	for i, query := range ethtool.Queries() {
		names[i] = string(query)
	}
	return strings.Join(names, ", ")
}
