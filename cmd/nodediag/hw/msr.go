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
	"github.com/nodediag/nodediag/lib/msr"
)

type msrParams struct {
	cli.JSONOutput
	Register string        `json:"register" flag:"register,r" desc:"MSR address in hex, e.g. 0x1a0" required:"true"`
	CPU      int           `json:"cpu" flag:"cpu" desc:"CPU to read the register on" default:"0"`
	Timeout  time.Duration `json:"timeout" flag:"timeout" desc:"subprocess timeout" default:"5s"`
}

// msrResult is the JSON output of "hw msr".
type msrResult struct {
	Register string `json:"register"`
	CPU      int    `json:"cpu"`
	Value    string `json:"value" desc:"register value in hex"`
}

func msrCommand() *cli.Command {
	var params msrParams

	return &cli.Command{
		Name:    "msr",
		Summary: "read a Model-Specific Register via rdmsr",
		Description: "Reads one MSR on one CPU through the rdmsr utility and reports\n" +
			"the value in hex. Strictly read-only: there is no write\n" +
			"counterpart anywhere in nodediag.",
		Usage: "nodediag hw msr [--register] <register> [flags]",
		Examples: []cli.Example{
			{
				Description: "read IA32_MISC_ENABLE on CPU 3",
				Command:     "nodediag hw msr 0x1a0 --cpu 3",
			},
		},
		Annotations: cli.ReadOnly(),
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("msr", &params)
		},
		Params: func() any { return &params },
		Output: func() any { return &msrResult{} },
		Run: func(args []string) error {
			if len(args) > 0 {
				params.Register = args[0]
			}
			return runMsr(&params)
		},
	}
}

func runMsr(params *msrParams) error {
	logger := cli.NewCommandLogger().With("command", "hw/msr")

	normalized, err := msr.NormalizeRegister(params.Register)
	if err != nil {
		return cli.Validation("%w", err).
			WithHint("Pass the register as a hex address, e.g. 0x1a0.")
	}
	if params.CPU < 0 {
		return cli.Validation("cpu must be non-negative, got %d", params.CPU)
	}

	cfg, err := config.Load()
	if err != nil {
		return cli.Internal("loading config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), params.Timeout)
	defer cancel()

	reader := msr.NewReader(cfg.Tools.RdmsrBinary, cfg.Tools.RdmsrSudo)
	value, err := reader.Read(ctx, normalized, params.CPU)
	if err != nil {
		if ctx.Err() != nil {
			return cli.Transient("rdmsr timed out after %s: %w", params.Timeout, err)
		}
		if strings.Contains(err.Error(), "executable file not found") {
			return cli.NotFound("rdmsr binary not available: %w", err).
				WithHint("Install msr-tools or set tools.rdmsr_binary in the config file.")
		}
		return cli.Internal("reading MSR: %w", err)
	}

	logger.Info("msr read", "register", normalized, "cpu", params.CPU)

	result := msrResult{Register: normalized, CPU: params.CPU, Value: value}
	if done, err := params.EmitJSON(result); done {
		return err
	}
	fmt.Printf("%s on cpu %d = %s\n", normalized, params.CPU, value)
	return nil
}
