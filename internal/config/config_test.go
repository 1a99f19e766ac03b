package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func defaults() Settings {
	return Settings{
		Patterns: PatternSettings{MinLength: 3, MaxLength: 50, FilterStopwords: true},
		Sampling: SamplingSettings{SampleSize: 1000, DialogueRatio: 0.5, RandomSeed: 42},
		Prodigy: ProdigySettings{
			Binary:    "prodigy",
			Dataset:   "phonetics_anno",
			Model:     "en_core_web_sm",
			LabelsRaw: "PHONETIC,DIALECT,SLANG",
			Host:      "localhost",
			Port:      8080,
		},
		Log: LogSettings{Level: "info", Format: "text"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(s *Settings) {},
		},
		{
			name:    "min length below one",
			mutate:  func(s *Settings) { s.Patterns.MinLength = 0 },
			wantErr: "min_length",
		},
		{
			name:    "max length not above min",
			mutate:  func(s *Settings) { s.Patterns.MaxLength = 3 },
			wantErr: "max_length",
		},
		{
			name:    "sample size zero",
			mutate:  func(s *Settings) { s.Sampling.SampleSize = 0 },
			wantErr: "sample_size",
		},
		{
			name:    "ratio above one",
			mutate:  func(s *Settings) { s.Sampling.DialogueRatio = 1.5 },
			wantErr: "dialogue_ratio",
		},
		{
			name:    "port out of range",
			mutate:  func(s *Settings) { s.Prodigy.Port = 70000 },
			wantErr: "port",
		},
		{
			name:    "empty labels",
			mutate:  func(s *Settings) { s.Prodigy.LabelsRaw = " , ," },
			wantErr: "labels",
		},
		{
			name:    "unknown log level",
			mutate:  func(s *Settings) { s.Log.Level = "loud" },
			wantErr: "log.level",
		},
		{
			name:    "unknown log format",
			mutate:  func(s *Settings) { s.Log.Format = "xml" },
			wantErr: "log.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate failed: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestValidateParsesLabels(t *testing.T) {
	cfg := defaults()
	cfg.Prodigy.LabelsRaw = "PHONETIC, DIALECT ,SLANG"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	expected := []string{"PHONETIC", "DIALECT", "SLANG"}
	if len(cfg.Prodigy.Labels) != len(expected) {
		t.Fatalf("Expected %d labels, got %d", len(expected), len(cfg.Prodigy.Labels))
	}
	for i, label := range expected {
		if cfg.Prodigy.Labels[i] != label {
			t.Errorf("Expected label %s at %d, got %s", label, i, cfg.Prodigy.Labels[i])
		}
	}
}

func TestSeed(t *testing.T) {
	cfg := defaults()
	seed := cfg.Seed()
	if seed == nil || *seed != 42 {
		t.Errorf("Expected seed 42, got %v", seed)
	}

	cfg.Sampling.RandomSeed = -1
	if cfg.Seed() != nil {
		t.Error("Expected nil seed for negative random_seed")
	}
}

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "annoprep.yaml")

	yamlData := `patterns:
  min_length: 2
  max_length: 40
sampling:
  sample_size: 50
  dialogue_ratio: 0.25
prodigy:
  dataset: test_anno
`
	if err := os.WriteFile(path, []byte(yamlData), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Patterns.MinLength != 2 {
		t.Errorf("Expected min_length 2, got %d", cfg.Patterns.MinLength)
	}
	if cfg.Sampling.SampleSize != 50 {
		t.Errorf("Expected sample_size 50, got %d", cfg.Sampling.SampleSize)
	}
	if cfg.Prodigy.Dataset != "test_anno" {
		t.Errorf("Expected dataset test_anno, got %s", cfg.Prodigy.Dataset)
	}
	// Untouched fields keep their defaults.
	if cfg.Prodigy.Model != "en_core_web_sm" {
		t.Errorf("Expected default model, got %s", cfg.Prodigy.Model)
	}
	if len(cfg.Prodigy.Labels) != 3 {
		t.Errorf("Expected 3 default labels, got %d", len(cfg.Prodigy.Labels))
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("/nonexistent/annoprep.yaml")
	if err == nil {
		t.Error("Expected error for missing config file, got nil")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ANNOPREP_SAMPLE_SIZE", "7")
	t.Setenv("ANNOPREP_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Sampling.SampleSize != 7 {
		t.Errorf("Expected sample_size 7 from env, got %d", cfg.Sampling.SampleSize)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "annoprep.yaml")

	yamlData := `sampling:
  dialogue_ratio: 2.0
`
	if err := os.WriteFile(path, []byte(yamlData), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	_, err := LoadFile(path)
	if err == nil {
		t.Error("Expected validation error for ratio 2.0, got nil")
	}
}
