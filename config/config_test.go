package config

import "testing"

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig() should validate cleanly: %v", err)
	}
}

func TestValidateRejectsUnknownProtocol(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Protocol = "byzantine-magic"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for an unknown protocol discriminator")
	}
}

func TestValidateRejectsUnknownTopology(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Topology = "moon-based"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for an unknown topology discriminator")
	}
}

func TestValidateFillsDefaultMaxTicks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTicks = 0
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.MaxTicks != DefaultMaxTicks {
		t.Fatalf("MaxTicks = %d, want %d", cfg.MaxTicks, DefaultMaxTicks)
	}
}

func TestBuildLatencyModelRejectsUnknownTopology(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Topology = "equidistant"
	if _, _, err := cfg.BuildLatencyModel(); err != nil {
		t.Fatalf("unexpected error for a known topology: %v", err)
	}
	cfg.Topology = "unknown"
	if _, _, err := cfg.BuildLatencyModel(); err == nil {
		t.Fatal("expected an error for an unknown topology")
	}
}
