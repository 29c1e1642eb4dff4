package fst

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the analysis config leaves a field unset.
const (
	DefaultLowBatteryThreshold    = 20.0
	DefaultMediumBatteryThreshold = 50.0
	DefaultWorkers                = 4
	SummaryFileName               = "iteration_summary_detailed.txt"
)

// FileKind names one member of an iteration's file group.
type FileKind string

const (
	FileTerminals     FileKind = "terminals"
	FileDump          FileKind = "dump"
	FileSolution      FileKind = "solution"
	FileVisualization FileKind = "visualization"
	FileAnalysis      FileKind = "analysis"
)

var defaultFileTemplates = map[FileKind]string{
	FileTerminals:     "terminals_iter%d.txt",
	FileDump:          "fsts_dump_iter%d.txt",
	FileSolution:      "solution_iter%d.txt",
	FileVisualization: "visualization_iter%d.html",
	FileAnalysis:      "iter%d_analysis.txt",
}

// AnalysisConfig holds analysis settings, loadable from a YAML file.
// Nil pointer fields and empty templates mean "not set in YAML".
type AnalysisConfig struct {
	LowBatteryThreshold    *float64      `yaml:"low_battery_threshold"`
	MediumBatteryThreshold *float64      `yaml:"medium_battery_threshold"`
	Workers                *int          `yaml:"workers"`
	StarFallback           *bool         `yaml:"star_fallback"`
	Files                  FileTemplates `yaml:"files"`
}

// FileTemplates are fmt templates with a single %d for the iteration number.
type FileTemplates struct {
	Terminals     string `yaml:"terminals"`
	Dump          string `yaml:"dump"`
	Solution      string `yaml:"solution"`
	Visualization string `yaml:"visualization"`
	Analysis      string `yaml:"analysis"`
}

// LoadAnalysisConfig reads and strictly parses a YAML analysis config.
// An empty path yields the defaults.
func LoadAnalysisConfig(path string) (*AnalysisConfig, error) {
	if path == "" {
		return &AnalysisConfig{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading analysis config: %w", err)
	}
	var cfg AnalysisConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing analysis config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks threshold ordering, worker count and template shape.
func (c *AnalysisConfig) Validate() error {
	low, medium := c.LowBattery(), c.MediumBattery()
	if low < 0 {
		return fmt.Errorf("low_battery_threshold must be non-negative, got %f", low)
	}
	if medium < low {
		return fmt.Errorf("medium_battery_threshold (%f) must not be below low_battery_threshold (%f)", medium, low)
	}
	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", *c.Workers)
	}
	for kind, tmpl := range c.Files.byKind() {
		if tmpl != "" && strings.Count(tmpl, "%d") != 1 {
			return fmt.Errorf("files.%s template %q must contain exactly one %%d", kind, tmpl)
		}
	}
	return nil
}

// LowBattery returns the battery level below which a terminal is LOW.
func (c *AnalysisConfig) LowBattery() float64 {
	if c == nil || c.LowBatteryThreshold == nil {
		return DefaultLowBatteryThreshold
	}
	return *c.LowBatteryThreshold
}

// MediumBattery returns the battery level below which a terminal is MEDIUM.
func (c *AnalysisConfig) MediumBattery() float64 {
	if c == nil || c.MediumBatteryThreshold == nil {
		return DefaultMediumBatteryThreshold
	}
	return *c.MediumBatteryThreshold
}

// WorkerCount returns the number of iterations extracted concurrently.
func (c *AnalysisConfig) WorkerCount() int {
	if c == nil || c.Workers == nil {
		return DefaultWorkers
	}
	return *c.Workers
}

// UseStarFallback reports whether dumps without an edge block get star edges.
func (c *AnalysisConfig) UseStarFallback() bool {
	return c != nil && c.StarFallback != nil && *c.StarFallback
}

// Template returns the file-name template for kind.
func (c *AnalysisConfig) Template(kind FileKind) string {
	if c != nil {
		if t := c.Files.byKind()[kind]; t != "" {
			return t
		}
	}
	return defaultFileTemplates[kind]
}

// FileName returns the file name of kind for iteration iter.
func (c *AnalysisConfig) FileName(kind FileKind, iter int) string {
	return fmt.Sprintf(c.Template(kind), iter)
}

func (f FileTemplates) byKind() map[FileKind]string {
	return map[FileKind]string{
		FileTerminals:     f.Terminals,
		FileDump:          f.Dump,
		FileSolution:      f.Solution,
		FileVisualization: f.Visualization,
		FileAnalysis:      f.Analysis,
	}
}

// BatteryStatus classifies a battery level as LOW, MEDIUM or HIGH.
func (c *AnalysisConfig) BatteryStatus(level float64) string {
	switch {
	case level < c.LowBattery():
		return "LOW"
	case level < c.MediumBattery():
		return "MEDIUM"
	default:
		return "HIGH"
	}
}
