package config

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"10s", 10 * time.Second, false},
		{"1m", 1 * time.Minute, false},
		{"1.5h", 90 * time.Minute, false},
		{"1d", 24 * time.Hour, false},
		{"1w", 168 * time.Hour, false},
		{"2d2h", 50 * time.Hour, false},
		{"100ms", 100 * time.Millisecond, false},
		{"1w2d", 216 * time.Hour, false},
		{"0.5d", 12 * time.Hour, false},
		{"", 0, false},
		{"invalid", 0, true},
		{"2q1d", 0, true},
		{"d", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDuration(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestYAMLUnmarshal(t *testing.T) {
	type TestConfig struct {
		Time Duration `yaml:"time"`
		Fly  Duration `yaml:"fly"`
	}

	yamlData := `
time: 2d
fly: 500ms
`
	var cfg TestConfig
	if err := yaml.Unmarshal([]byte(yamlData), &cfg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if time.Duration(cfg.Time) != 48*time.Hour {
		t.Errorf("Expected 48h, got %v", time.Duration(cfg.Time))
	}
	if time.Duration(cfg.Fly) != 500*time.Millisecond {
		t.Errorf("Expected 500ms, got %v", time.Duration(cfg.Fly))
	}
}

func TestYAMLMarshal_RoundTrip(t *testing.T) {
	in := struct {
		Fly Duration `yaml:"fly"`
	}{Fly: Duration(1500 * time.Millisecond)}

	data, err := yaml.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "fly: 1.5s\n" {
		t.Errorf("unexpected YAML: %q", string(data))
	}
}
