// Copyright 2026 The Nodediag Authors
// SPDX-License-Identifier: Apache-2.0

// Package msr provides typed access to the rdmsr utility for reading
// Model-Specific Registers. Reads are strictly read-only: the wrapper
// only ever invokes rdmsr, never wrmsr. Register addresses are
// validated before anything is executed so a malformed address never
// reaches the shell.
package msr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// DefaultBinary is where the msr-tools package installs rdmsr on most
// distributions.
const DefaultBinary = "/usr/sbin/rdmsr"

// Reader reads MSR values through the rdmsr binary.
type Reader struct {
	binary string
	sudo   bool
}

// NewReader returns a Reader invoking the given rdmsr binary. An empty
// path selects DefaultBinary. When sudo is true and the current user
// is not root, the invocation is escalated through sudo — MSR access
// requires CAP_SYS_RAWIO.
func NewReader(binary string, sudo bool) *Reader {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Reader{binary: binary, sudo: sudo}
}

// Read returns the hexadecimal value of the register on the given CPU.
// The register is a hexadecimal address with or without an 0x prefix
// (e.g. "0x1a0" or "1a0").
func (r *Reader) Read(ctx context.Context, register string, cpu int) (string, error) {
	normalized, err := NormalizeRegister(register)
	if err != nil {
		return "", err
	}
	if cpu < 0 {
		return "", fmt.Errorf("cpu must be non-negative, got %d", cpu)
	}

	args := []string{r.binary, "-x", "-p", strconv.Itoa(cpu), normalized}
	if r.sudo && os.Getuid() != 0 {
		args = append([]string{"sudo"}, args...)
	}

	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, args[0], args[1:]...)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("rdmsr %s on cpu %d: %w (stderr: %s)",
			normalized, cpu, err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// NormalizeRegister validates a register address and returns it in
// 0x-prefixed lowercase form. Only hexadecimal digits are accepted.
func NormalizeRegister(register string) (string, error) {
	trimmed := strings.TrimSpace(register)
	digits := strings.TrimPrefix(strings.ToLower(trimmed), "0x")
	if digits == "" {
		return "", fmt.Errorf("register address is empty")
	}
	if _, err := strconv.ParseUint(digits, 16, 64); err != nil {
		return "", fmt.Errorf("register %q is not a hexadecimal address", trimmed)
	}
	return "0x" + digits, nil
}
