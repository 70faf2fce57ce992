// Copyright 2026 The Nodediag Authors
// SPDX-License-Identifier: Apache-2.0

package cli

// ToolAnnotations describes behavioral properties of a CLI command
// when exposed as a tool by the MCP server. The server translates
// these properties into protocol hints that help agents decide which
// tools are safe to call and which can be retried.
//
// All fields are pointers. A nil field means "unspecified" — the tool
// server applies its own defaults (which in MCP are: not read-only,
// destructive, not idempotent, open-world).
//
// Every MCP-visible command must set Annotations. The diagnostic
// surface is read-only by design, so [ReadOnly] covers all current
// commands; the other presets exist so future state-changing commands
// declare themselves honestly rather than inheriting read-only hints.
type ToolAnnotations struct {
	// ReadOnly is true when the command only reads state and never
	// modifies it. Agents may call read-only tools freely without
	// confirmation prompts.
	ReadOnly *bool

	// Destructive is true when the command may irreversibly remove
	// or damage data. Agents should require explicit confirmation
	// before calling destructive tools.
	Destructive *bool

	// Idempotent is true when repeated calls with identical arguments
	// produce the same result. Agents may safely retry idempotent
	// tools on transient failures.
	Idempotent *bool

	// OpenWorld is true when the command interacts with entities
	// beyond the local host. All nodediag commands inspect the host
	// they run on and are closed-world.
	OpenWorld *bool
}

// ReadOnly returns annotations for commands that query host state
// without modifying it: scans, hardware probes, register reads.
func ReadOnly() *ToolAnnotations {
	return &ToolAnnotations{
		ReadOnly:    boolPtr(true),
		Destructive: boolPtr(false),
		Idempotent:  boolPtr(true),
		OpenWorld:   boolPtr(false),
	}
}

// Idempotent returns annotations for commands that modify state but
// converge to the same result when called repeatedly with identical
// arguments.
func Idempotent() *ToolAnnotations {
	return &ToolAnnotations{
		ReadOnly:    boolPtr(false),
		Destructive: boolPtr(false),
		Idempotent:  boolPtr(true),
		OpenWorld:   boolPtr(false),
	}
}

// Destructive returns annotations for commands that irreversibly
// change host state.
func Destructive() *ToolAnnotations {
	return &ToolAnnotations{
		ReadOnly:    boolPtr(false),
		Destructive: boolPtr(true),
		Idempotent:  boolPtr(false),
		OpenWorld:   boolPtr(false),
	}
}

func boolPtr(value bool) *bool {
	return &value
}
