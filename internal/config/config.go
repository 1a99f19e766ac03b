package config

import (
	"fmt"
	"strings"
)

// Settings is the root application configuration.
type Settings struct {
	Patterns PatternSettings  `yaml:"patterns"`
	Sampling SamplingSettings `yaml:"sampling"`
	Prodigy  ProdigySettings  `yaml:"prodigy"`
	Log      LogSettings      `yaml:"log"`
}

// PatternSettings controls pattern extraction.
type PatternSettings struct {
	MinLength       int  `yaml:"min_length"       env:"ANNOPREP_PATTERN_MIN_LENGTH" env-default:"3"`
	MaxLength       int  `yaml:"max_length"       env:"ANNOPREP_PATTERN_MAX_LENGTH" env-default:"50"`
	FilterStopwords bool `yaml:"filter_stopwords" env:"ANNOPREP_FILTER_STOPWORDS"   env-default:"true"`
}

// SamplingSettings controls stratified sampling.
type SamplingSettings struct {
	SampleSize    int     `yaml:"sample_size"    env:"ANNOPREP_SAMPLE_SIZE"    env-default:"1000"`
	DialogueRatio float64 `yaml:"dialogue_ratio" env:"ANNOPREP_DIALOGUE_RATIO" env-default:"0.5"`
	// RandomSeed below zero seeds from entropy.
	RandomSeed int64 `yaml:"random_seed" env:"ANNOPREP_RANDOM_SEED" env-default:"42"`
}

// ProdigySettings holds defaults for driving the Prodigy annotation tool.
type ProdigySettings struct {
	Binary    string `yaml:"binary"  env:"ANNOPREP_PRODIGY_BINARY" env-default:"prodigy"`
	Dataset   string `yaml:"dataset" env:"ANNOPREP_PRODIGY_DATASET" env-default:"phonetics_anno"`
	Model     string `yaml:"model"   env:"ANNOPREP_PRODIGY_MODEL"   env-default:"en_core_web_sm"`
	LabelsRaw string `yaml:"labels"  env:"ANNOPREP_PRODIGY_LABELS"  env-default:"PHONETIC,DIALECT,SLANG"`
	Host      string `yaml:"host"    env:"ANNOPREP_PRODIGY_HOST"    env-default:"localhost"`
	Port      int    `yaml:"port"    env:"ANNOPREP_PRODIGY_PORT"    env-default:"8080"`

	// Labels is parsed from LabelsRaw during validation.
	Labels []string `yaml:"-" env:"-"`
}

// LogSettings holds logging settings.
type LogSettings struct {
	Level  string `yaml:"level"  env:"ANNOPREP_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"ANNOPREP_LOG_FORMAT" env-default:"text"`
}

// Validate checks cross-field constraints and parses derived fields.
func (s *Settings) Validate() error {
	if s.Patterns.MinLength < 1 {
		return fmt.Errorf("patterns.min_length must be at least 1, got %d", s.Patterns.MinLength)
	}
	if s.Patterns.MaxLength <= s.Patterns.MinLength {
		return fmt.Errorf("patterns.max_length (%d) must exceed min_length (%d)",
			s.Patterns.MaxLength, s.Patterns.MinLength)
	}
	if s.Sampling.SampleSize < 1 {
		return fmt.Errorf("sampling.sample_size must be positive, got %d", s.Sampling.SampleSize)
	}
	if s.Sampling.DialogueRatio < 0 || s.Sampling.DialogueRatio > 1 {
		return fmt.Errorf("sampling.dialogue_ratio must be between 0 and 1, got %g", s.Sampling.DialogueRatio)
	}
	if s.Prodigy.Port < 1 || s.Prodigy.Port > 65535 {
		return fmt.Errorf("prodigy.port must be between 1 and 65535, got %d", s.Prodigy.Port)
	}

	s.Prodigy.Labels = s.Prodigy.Labels[:0]
	for _, label := range strings.Split(s.Prodigy.LabelsRaw, ",") {
		label = strings.TrimSpace(label)
		if label != "" {
			s.Prodigy.Labels = append(s.Prodigy.Labels, label)
		}
	}
	if len(s.Prodigy.Labels) == 0 {
		return fmt.Errorf("prodigy.labels must name at least one label")
	}

	switch s.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", s.Log.Level)
	}
	switch s.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", s.Log.Format)
	}

	return nil
}

// Seed returns the sampling seed as the sampler expects it:
// nil when the configured seed is negative, meaning seed from entropy.
func (s *Settings) Seed() *uint64 {
	if s.Sampling.RandomSeed < 0 {
		return nil
	}
	seed := uint64(s.Sampling.RandomSeed)
	return &seed
}
