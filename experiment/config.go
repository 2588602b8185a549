package experiment

import (
	"os"

	"github.com/examgraph/examgraph/helper"
	"github.com/examgraph/examgraph/model"
	"gopkg.in/yaml.v3"
)

// Config holds the experiment parameters loaded from a yaml file.
// Endpoint secrets stay in the environment, not here.
type Config struct {
	Topics       []string `yaml:"topics"`
	TextbookDir  string   `yaml:"textbook_dir"`
	MaxTextbooks int      `yaml:"max_textbooks"`
	OutputDir    string   `yaml:"output_dir"`

	Baseline model.BaselineConfig `yaml:"baseline"`
	Graph    model.GraphConfig    `yaml:"graph"`
	Weights  model.Weights        `yaml:"weights"`
}

// DefaultConfig returns the experiment defaults: the five survey topics of
// the original study, default retriever parameters and rubric weights.
func DefaultConfig() *Config {
	return &Config{
		Topics: []string{
			"recursion",
			"sorting algorithm",
			"graph traversal",
			"dynamic programming",
			"hash table",
		},
		TextbookDir:  "./textbooks",
		MaxTextbooks: 20,
		OutputDir:    "./experiment_logs",
		Baseline:     model.DefaultBaselineConfig(),
		Graph:        model.DefaultGraphConfig(),
		Weights:      model.DefaultWeights(),
	}
}

// LoadConfig reads a yaml config file on top of the defaults. Validation
// failures are ConfigurationErrors and abort before any topic runs.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, helper.NewError("read config file", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, helper.NewError("parse config file", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks all experiment parameters
func (c *Config) Validate() error {
	if len(c.Topics) == 0 {
		return &model.ConfigurationError{Field: "topics", Reason: "must not be empty"}
	}
	if c.TextbookDir == "" {
		return &model.ConfigurationError{Field: "textbook_dir", Reason: "must not be empty"}
	}
	if c.MaxTextbooks <= 0 {
		return &model.ConfigurationError{Field: "max_textbooks", Reason: "must be positive"}
	}
	if c.OutputDir == "" {
		return &model.ConfigurationError{Field: "output_dir", Reason: "must not be empty"}
	}
	if err := c.Baseline.Validate(); err != nil {
		return err
	}
	if err := c.Graph.Validate(); err != nil {
		return err
	}
	return c.Weights.Validate()
}
