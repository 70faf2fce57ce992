// Copyright 2026 The Nodediag Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestBindFlags_BasicTypes(t *testing.T) {
	type params struct {
		Register string        `flag:"register" desc:"MSR register"`
		Verbose  bool          `flag:"verbose,v" desc:"enable verbose output"`
		CPU      int           `flag:"cpu" desc:"CPU index"`
		Offset   int64         `flag:"offset" desc:"byte offset"`
		Timeout  time.Duration `flag:"timeout" desc:"subprocess timeout"`
		Ignore   []string      `flag:"ignore" desc:"names to ignore"`
		Untagged string        // no flag tag — should be skipped
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}

	err := flagSet.Parse([]string{
		"--register", "0x1a0",
		"-v",
		"--cpu", "42",
		"--offset", "1099511627776",
		"--timeout", "30s",
		"--ignore", "a,b,c",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Register != "0x1a0" {
		t.Errorf("Register = %q, want %q", p.Register, "0x1a0")
	}
	if !p.Verbose {
		t.Error("Verbose = false, want true")
	}
	if p.CPU != 42 {
		t.Errorf("CPU = %d, want 42", p.CPU)
	}
	if p.Offset != 1099511627776 {
		t.Errorf("Offset = %d, want 1099511627776", p.Offset)
	}
	if p.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", p.Timeout)
	}
	if len(p.Ignore) != 3 || p.Ignore[0] != "a" || p.Ignore[1] != "b" || p.Ignore[2] != "c" {
		t.Errorf("Ignore = %v, want [a b c]", p.Ignore)
	}
	if p.Untagged != "" {
		t.Errorf("Untagged = %q, want empty (should be skipped)", p.Untagged)
	}
}

func TestBindFlags_Defaults(t *testing.T) {
	type params struct {
		Binary  string        `flag:"binary" desc:"tool path" default:"/usr/sbin/rdmsr"`
		CPU     int           `flag:"cpu" desc:"CPU index" default:"0"`
		Timeout time.Duration `flag:"timeout" desc:"timeout" default:"5s"`
		Sudo    bool          `flag:"sudo" desc:"escalate via sudo" default:"true"`
		Ignore  []string      `flag:"ignore" desc:"names" default:"x,y"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}

	// Parse with no arguments — should get all defaults.
	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Binary != "/usr/sbin/rdmsr" {
		t.Errorf("Binary = %q, want /usr/sbin/rdmsr", p.Binary)
	}
	if p.CPU != 0 {
		t.Errorf("CPU = %d, want 0", p.CPU)
	}
	if p.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", p.Timeout)
	}
	if !p.Sudo {
		t.Error("Sudo = false, want true")
	}
	if len(p.Ignore) != 2 || p.Ignore[0] != "x" || p.Ignore[1] != "y" {
		t.Errorf("Ignore = %v, want [x y]", p.Ignore)
	}
}

func TestBindFlags_DefaultsOverriddenByCLI(t *testing.T) {
	type params struct {
		Binary string `flag:"binary" desc:"tool path" default:"/usr/sbin/rdmsr"`
		CPU    int    `flag:"cpu" desc:"CPU index" default:"0"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}

	if err := flagSet.Parse([]string{"--binary", "/opt/rdmsr", "--cpu", "7"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Binary != "/opt/rdmsr" {
		t.Errorf("Binary = %q, want /opt/rdmsr", p.Binary)
	}
	if p.CPU != 7 {
		t.Errorf("CPU = %d, want 7", p.CPU)
	}
}

func TestBindFlags_EmbeddedJSONOutput(t *testing.T) {
	type params struct {
		JSONOutput
		Interface string `flag:"interface" desc:"network interface"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}

	if err := flagSet.Parse([]string{"--json", "--interface", "eth0"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if !p.OutputJSON {
		t.Error("OutputJSON = false, want true (promoted from embedded JSONOutput)")
	}
	if p.Interface != "eth0" {
		t.Errorf("Interface = %q, want eth0", p.Interface)
	}
}

func TestBindFlags_UnsupportedType(t *testing.T) {
	type params struct {
		Rate float32 `flag:"rate" desc:"unsupported"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	err := BindFlags(&p, flagSet)
	if err == nil {
		t.Fatal("BindFlags with float32 field succeeded, want error")
	}
	if !strings.Contains(err.Error(), "unsupported type") {
		t.Errorf("error = %q, want mention of unsupported type", err)
	}
}

func TestBindFlags_BadDefault(t *testing.T) {
	type params struct {
		CPU int `flag:"cpu" default:"not-a-number"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err == nil {
		t.Fatal("BindFlags with unparseable int default succeeded, want error")
	}
}

func TestBindFlags_NotAPointer(t *testing.T) {
	type params struct {
		Name string `flag:"name"`
	}

	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(params{}, flagSet); err == nil {
		t.Fatal("BindFlags with non-pointer succeeded, want error")
	}
}

func TestFlagsFromParams_PanicsOnBadParams(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("FlagsFromParams with invalid params should panic")
		}
	}()
	FlagsFromParams("bad", 42)
}
