// Copyright 2026 The Nodediag Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Tools.RdmsrBinary != "/usr/sbin/rdmsr" {
		t.Errorf("RdmsrBinary = %q, want /usr/sbin/rdmsr", cfg.Tools.RdmsrBinary)
	}
	if cfg.Tools.EthtoolBinary != "/usr/sbin/ethtool" {
		t.Errorf("EthtoolBinary = %q, want /usr/sbin/ethtool", cfg.Tools.EthtoolBinary)
	}
	if !cfg.Tools.RdmsrSudo {
		t.Error("RdmsrSudo = false, want true by default")
	}
	if len(cfg.Affinity.IgnoreCgroups) != 0 || len(cfg.Affinity.IgnoreProcs) != 0 {
		t.Error("default ignore lists not empty")
	}
}

func TestLoadWithoutEnvUsesDefaults(t *testing.T) {
	t.Setenv("NODEDIAG_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load without NODEDIAG_CONFIG = %+v, want defaults", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodediag.yaml")
	content := `
tools:
  rdmsr_binary: /opt/msr-tools/rdmsr
  rdmsr_sudo: false
affinity:
  ignore_cgroups: [init.scope]
  ignore_procs: [node_exporter, kworker]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Tools.RdmsrBinary != "/opt/msr-tools/rdmsr" {
		t.Errorf("RdmsrBinary = %q", cfg.Tools.RdmsrBinary)
	}
	if cfg.Tools.RdmsrSudo {
		t.Error("RdmsrSudo = true, want false from file")
	}
	// Field absent from the file keeps its default.
	if cfg.Tools.EthtoolBinary != "/usr/sbin/ethtool" {
		t.Errorf("EthtoolBinary = %q, want default", cfg.Tools.EthtoolBinary)
	}
	if !reflect.DeepEqual(cfg.Affinity.IgnoreProcs, []string{"node_exporter", "kworker"}) {
		t.Errorf("IgnoreProcs = %v", cfg.Affinity.IgnoreProcs)
	}
}

func TestLoadFileRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodediag.yaml")
	if err := os.WriteFile(path, []byte("tools:\n  rdmsr_bnary: /bin/true\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Fatal("LoadFile with misspelled field succeeded, want error")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadFile on missing path succeeded, want error")
	}
}

func TestLoadFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodediag.yaml")
	if err := os.WriteFile(path, []byte("tools:\n  rdmsr_sudo: false\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("NODEDIAG_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Tools.RdmsrSudo {
		t.Error("RdmsrSudo = true, want false from NODEDIAG_CONFIG file")
	}
}
