package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted run of a single processor.
type Scenario struct {
	// Name uniquely identifies this scenario; it names the golden file.
	Name string `yaml:"name" json:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description" json:"description"`

	// Processor names the processor. Empty means the harness default.
	Processor string `yaml:"processor,omitempty" json:"processor,omitempty"`

	// Steps run in order on the calling goroutine.
	Steps []Step `yaml:"steps" json:"steps"`

	// Expect is checked after the processor has halted.
	Expect *Expect `yaml:"expect,omitempty" json:"expect,omitempty"`
}

// Step is a single operation against the processor.
type Step struct {
	// Op is one of submit, start, pause, join, halt.
	Op string `yaml:"op" json:"op"`

	// Command names the submitted command (submit only).
	Command string `yaml:"command,omitempty" json:"command,omitempty"`

	// Priority of the submission. Nil means processor.DefaultPriority.
	Priority *int `yaml:"priority,omitempty" json:"priority,omitempty"`

	// Tags attached to the submission.
	Tags []string `yaml:"tags,omitempty" json:"tags,omitempty"`

	// Fail makes the command return an error with this message.
	Fail string `yaml:"fail,omitempty" json:"fail,omitempty"`

	// Panic makes the command panic with this value.
	Panic string `yaml:"panic,omitempty" json:"panic,omitempty"`

	// Blocks marks a join that must not return within the block window.
	Blocks bool `yaml:"blocks,omitempty" json:"blocks,omitempty"`
}

// Expect describes the outcome of a scenario.
type Expect struct {
	// Order lists command names in the order they ran.
	Order []string `yaml:"order" json:"order"`

	// Failed lists commands that returned an error or panicked, in order.
	Failed []string `yaml:"failed,omitempty" json:"failed,omitempty"`

	// Pending is the number of entries left queued after halt.
	Pending *int `yaml:"pending,omitempty" json:"pending,omitempty"`
}

// Step operations.
const (
	OpSubmit = "submit"
	OpStart  = "start"
	OpPause  = "pause"
	OpJoin   = "join"
	OpHalt   = "halt"
)

// LoadScenario reads and parses a scenario file.
//
// Files ending in .cue are compiled with CUE; everything else is parsed as
// YAML with strict field validation (unknown fields are rejected).
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario *Scenario
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		scenario, err = parseCUE(path, data)
	} else {
		scenario, err = parseYAML(data)
	}
	if err != nil {
		return nil, err
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return scenario, nil
}

// LoadScenarios loads every .yaml, .yml and .cue file in dir, sorted by
// file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenarios directory: %w", err)
	}

	var out []*Scenario
	for _, e := range entries {
		if e.IsDir() || !IsScenarioFile(e.Name()) {
			continue
		}
		s, err := LoadScenario(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		out = append(out, s)
	}
	return out, nil
}

// IsScenarioFile reports whether name has a scenario extension.
func IsScenarioFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".cue":
		return true
	default:
		return false
	}
}

func parseYAML(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

func parseCUE(path string, data []byte) (*Scenario, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile CUE: %w", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("CUE scenario is not concrete: %w", err)
	}

	var scenario Scenario
	if err := v.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to decode CUE: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}

	return nil
}

func validateStep(step Step) error {
	switch step.Op {
	case OpSubmit:
		if step.Command == "" {
			return fmt.Errorf("submit requires a command name")
		}
		if step.Fail != "" && step.Panic != "" {
			return fmt.Errorf("command %q cannot both fail and panic", step.Command)
		}
	case OpStart, OpPause, OpJoin, OpHalt:
		if step.Command != "" || step.Priority != nil || len(step.Tags) > 0 || step.Fail != "" || step.Panic != "" {
			return fmt.Errorf("%s takes no command fields", step.Op)
		}
	case "":
		return fmt.Errorf("op is required")
	default:
		return fmt.Errorf("unknown op %q: must be one of submit, start, pause, join, halt", step.Op)
	}

	if step.Blocks && step.Op != OpJoin {
		return fmt.Errorf("blocks is only valid on join")
	}
	return nil
}
