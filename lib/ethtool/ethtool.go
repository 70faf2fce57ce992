// Copyright 2026 The Nodediag Authors
// SPDX-License-Identifier: Apache-2.0

// Package ethtool provides typed access to the ethtool utility for
// querying network interface configuration and statistics. The query
// vocabulary is a closed enum of read-only show operations — no
// mutating ethtool mode is expressible through this package.
package ethtool

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultBinary is the conventional ethtool install path.
const DefaultBinary = "/usr/sbin/ethtool"

// Query is a read-only ethtool query type.
type Query string

// The complete set of supported queries. Each maps to the ethtool
// long option of the same name.
const (
	ShowCoalesce Query = "show-coalesce"
	ShowRing     Query = "show-ring"
	Driver       Query = "driver"
	ShowOffload  Query = "show-offload"
	Statistics   Query = "statistics"
	ShowChannels Query = "show-channels"
)

// Queries lists every supported query in a stable order, for help
// text and validation messages.
func Queries() []Query {
	return []Query{ShowCoalesce, ShowRing, Driver, ShowOffload, Statistics, ShowChannels}
}

// Valid reports whether q is one of the supported read-only queries.
func (q Query) Valid() bool {
	switch q {
	case ShowCoalesce, ShowRing, Driver, ShowOffload, Statistics, ShowChannels:
		return true
	}
	return false
}

// Client runs ethtool queries.
type Client struct {
	binary string
}

// NewClient returns a Client invoking the given ethtool binary. An
// empty path selects DefaultBinary.
func NewClient(binary string) *Client {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Client{binary: binary}
}

// Run executes one query against a network interface and returns the
// raw ethtool output. The interface name and query are validated
// before execution.
func (c *Client) Run(ctx context.Context, iface string, query Query) (string, error) {
	if err := ValidateInterface(iface); err != nil {
		return "", err
	}
	if !query.Valid() {
		return "", fmt.Errorf("unsupported query %q (valid: %s)", query, queryList())
	}

	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, c.binary, "--"+string(query), iface)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("ethtool --%s %s: %w (stderr: %s)",
			query, iface, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// ValidateInterface rejects names that are empty, too long for the
// kernel (IFNAMSIZ is 16 including the terminator), or contain
// characters that could be misread as options or paths.
func ValidateInterface(iface string) error {
	if iface == "" {
		return fmt.Errorf("interface name is empty")
	}
	if len(iface) > 15 {
		return fmt.Errorf("interface name %q exceeds 15 characters", iface)
	}
	if strings.HasPrefix(iface, "-") {
		return fmt.Errorf("interface name %q must not start with a dash", iface)
	}
	if strings.ContainsAny(iface, "/ \t\n") {
		return fmt.Errorf("interface name %q contains invalid characters", iface)
	}
	return nil
}

// queryList renders the supported queries for error messages.
func queryList() string {
	names := make([]string, len(Queries()))
	for i, query := range Queries() {
		names[i] = string(query)
	}
	return strings.Join(names, ", ")
}
