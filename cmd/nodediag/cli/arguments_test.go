// Copyright 2026 The Nodediag Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"testing"
	"time"
)

type argumentParams struct {
	JSONOutput
	Register string        `json:"register" flag:"register"`
	Timeout  time.Duration `json:"timeout" flag:"timeout" default:"5s"`
}

func TestUnmarshalArgumentsDurationString(t *testing.T) {
	var params argumentParams
	data := []byte(`{"register":"0x1a0","timeout":"250ms"}`)
	if err := UnmarshalArguments(data, &params); err != nil {
		t.Fatalf("UnmarshalArguments: %v", err)
	}
	if params.Register != "0x1a0" {
		t.Errorf("Register = %q, want 0x1a0", params.Register)
	}
	if params.Timeout != 250*time.Millisecond {
		t.Errorf("Timeout = %v, want 250ms", params.Timeout)
	}
}

func TestUnmarshalArgumentsDurationNumber(t *testing.T) {
	var params argumentParams
	data := []byte(`{"timeout":1000000000}`)
	if err := UnmarshalArguments(data, &params); err != nil {
		t.Fatalf("UnmarshalArguments: %v", err)
	}
	if params.Timeout != time.Second {
		t.Errorf("Timeout = %v, want 1s (nanoseconds accepted)", params.Timeout)
	}
}

func TestUnmarshalArgumentsBadDuration(t *testing.T) {
	var params argumentParams
	err := UnmarshalArguments([]byte(`{"timeout":"fast"}`), &params)
	if err == nil {
		t.Fatal("UnmarshalArguments accepted an unparseable duration")
	}
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Category != CategoryValidation {
		t.Errorf("error = %v, want validation ToolError", err)
	}
}

func TestUnmarshalArgumentsAbsentDurationUntouched(t *testing.T) {
	params := argumentParams{Timeout: 5 * time.Second}
	if err := UnmarshalArguments([]byte(`{"register":"1a0"}`), &params); err != nil {
		t.Fatalf("UnmarshalArguments: %v", err)
	}
	if params.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s (absent field must not change)", params.Timeout)
	}
}

func TestUnmarshalArgumentsNonStruct(t *testing.T) {
	var n int
	if err := UnmarshalArguments([]byte(`{}`), &n); err == nil {
		t.Fatal("UnmarshalArguments accepted a non-struct target")
	}
}
