// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

// config_test.go: layered configuration loading.
package control_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/momentics/meshbuf/api"
	"github.com/momentics/meshbuf/control"
	"github.com/momentics/meshbuf/message"
	"github.com/spf13/pflag"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meshbuf.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := control.LoadConfig("", nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	mc, err := cfg.MessageConfig()
	if err != nil {
		t.Fatalf("MessageConfig: %v", err)
	}
	if mc != message.DefaultConfig() {
		t.Errorf("Expected defaults %+v, got %+v", message.DefaultConfig(), mc)
	}
	if cfg.MetricsAddr != "" {
		t.Errorf("Expected no metrics address, got %q", cfg.MetricsAddr)
	}
}

func TestLoadConfig_FileEnvFlags(t *testing.T) {
	path := writeYAML(t, `
pool:
  num_buffers: 64
  buffer_size: 256
  default_priority: low
  link_security: false
metrics_addr: ":9100"
`)
	t.Setenv("MESHBUF_POOL_BUFFER_SIZE", "192")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	control.RegisterFlags(fs)
	if err := fs.Parse([]string{"--default-priority=high"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg, err := control.LoadConfig(path, fs)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	mc, _ := cfg.MessageConfig()
	if mc.NumBuffers != 64 {
		t.Errorf("Expected 64 buffers from file, got %d", mc.NumBuffers)
	}
	if mc.BufferSize != 192 {
		t.Errorf("Expected env to override file buffer size, got %d", mc.BufferSize)
	}
	if mc.DefaultPriority != api.PriorityHigh {
		t.Errorf("Expected flag priority high, got %v", mc.DefaultPriority)
	}
	if mc.DefaultLinkSecurity {
		t.Error("Expected link security off from file")
	}
	if mc.HeadOverhead != message.DefaultConfig().HeadOverhead {
		t.Errorf("Expected default head overhead, got %d", mc.HeadOverhead)
	}
	if cfg.MetricsAddr != ":9100" {
		t.Errorf("Expected :9100, got %q", cfg.MetricsAddr)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := writeYAML(t, "pool:\n  buffer_size: 40\n")
	if _, err := control.LoadConfig(path, nil); !errors.Is(err, api.ErrInvalidArgs) {
		t.Errorf("Expected ErrInvalidArgs for tiny buffers, got %v", err)
	}
	path = writeYAML(t, "pool:\n  default_priority: urgent\n")
	if _, err := control.LoadConfig(path, nil); !errors.Is(err, api.ErrInvalidArgs) {
		t.Errorf("Expected ErrInvalidArgs for unknown priority, got %v", err)
	}
	if _, err := control.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Error("Expected error for missing file")
	}
}
