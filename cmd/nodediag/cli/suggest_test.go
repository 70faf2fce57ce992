// Copyright 2026 The Nodediag Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"intersect", "intersect", 0},
		{"intersect", "intersct", 1},
		{"stats", "stat", 1},
		{"ethtool", "ethool", 1},
		{"kitten", "sitting", 3},
	}

	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []*Command{
		{Name: "intersect"},
		{Name: "cpu-procs"},
		{Name: "stats"},
	}

	if got := suggestCommand("intersct", commands); got != "intersect" {
		t.Errorf("suggestCommand(intersct) = %q, want intersect", got)
	}
	if got := suggestCommand("stat", commands); got != "stats" {
		t.Errorf("suggestCommand(stat) = %q, want stats", got)
	}
	// Nothing within the edit-distance threshold.
	if got := suggestCommand("zzzzzzzzzz", commands); got != "" {
		t.Errorf("suggestCommand(zzzzzzzzzz) = %q, want empty", got)
	}
}

func TestSuggestFlag(t *testing.T) {
	newFlagSet := func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flagSet.String("cpus", "", "CPU list")
		flagSet.StringSlice("ignore-procs", nil, "process names to skip")
		flagSet.BoolP("json", "j", false, "output as JSON")
		return flagSet
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"typo_long_flag", []string{"--cpsu", "0-3"}, "--cpus"},
		{"typo_with_equals", []string{"--ignore-prcs=x"}, "--ignore-procs"},
		{"known_flag_skipped", []string{"--cpus", "0-3", "--josn"}, "--json"},
		{"no_close_match", []string{"--completely-wrong-flag-name"}, ""},
		{"no_flags_in_args", []string{"5"}, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := suggestFlag(test.args, newFlagSet()); got != test.want {
				t.Errorf("suggestFlag(%v) = %q, want %q", test.args, got, test.want)
			}
		})
	}
}
