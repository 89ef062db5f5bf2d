// Package prompt loads the assistant persona and analysis instructions from
// an embedded YAML spec, so prompt tuning is a data change, not a code change.
package prompt

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptsYAML []byte

// Style tunes one completion call.
type Style struct {
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// Spec is the full prompt specification.
type Spec struct {
	Persona  string `yaml:"persona"`
	Analysis struct {
		System string `yaml:"system"`
		Style  Style  `yaml:"style"`
	} `yaml:"analysis"`
	Reply struct {
		Style Style `yaml:"style"`
	} `yaml:"reply"`
}

// Load parses the embedded spec and applies defaults for unset style fields.
func Load() (Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(promptsYAML, &spec); err != nil {
		return Spec{}, fmt.Errorf("parse prompt spec: %w", err)
	}
	if spec.Persona == "" || spec.Analysis.System == "" {
		return Spec{}, fmt.Errorf("prompt spec incomplete")
	}

	if spec.Analysis.Style.Temperature <= 0 {
		spec.Analysis.Style.Temperature = 0.1
	}
	if spec.Analysis.Style.MaxTokens <= 0 {
		spec.Analysis.Style.MaxTokens = 300
	}
	if spec.Reply.Style.Temperature <= 0 {
		spec.Reply.Style.Temperature = 0.7
	}
	if spec.Reply.Style.MaxTokens <= 0 {
		spec.Reply.Style.MaxTokens = 700
	}
	return spec, nil
}
