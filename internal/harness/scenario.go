package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/flaggraph/internal/engine"
)

// Scenario defines a flag graph test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Setup builds the starting graph. Setup steps must succeed and are not
	// traced.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow is the traced sequence of operations under test.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final graph.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one create or toggle call. Exactly one of Create and Toggle is set.
type Step struct {
	// Create names a flag to create.
	Create string `yaml:"create,omitempty"`

	// DependsOn lists the new flag's dependencies (create only).
	DependsOn []string `yaml:"depends_on,omitempty"`

	// Toggle names a flag to enable or disable.
	Toggle string `yaml:"toggle,omitempty"`

	// Enable is the requested state (toggle only, required).
	Enable *bool `yaml:"enable,omitempty"`

	// Actor is recorded on the audit records. Empty uses the engine default.
	Actor string `yaml:"actor,omitempty"`

	// Expect overrides the default expectation of success.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Error is the expected error code, e.g. "CYCLE_DETECTED".
	Error string `yaml:"error"`

	// Missing is the expected list of offending dependency names.
	Missing []string `yaml:"missing,omitempty"`

	// Dependency is the expected offending dependency of a cycle error.
	Dependency string `yaml:"dependency,omitempty"`
}

// Assertion validates the final graph.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Flag is the flag under test.
	Flag string `yaml:"flag"`

	// Enabled is the expected state (status).
	Enabled *bool `yaml:"enabled,omitempty"`

	// Actions are the expected audit actions, newest first (history_actions).
	Actions []string `yaml:"actions,omitempty"`

	// Count is the expected number of audit records (history_count).
	Count *int `yaml:"count,omitempty"`

	// DependsOn is the expected direct dependency list (edges).
	DependsOn []string `yaml:"depends_on,omitempty"`
}

// Assertion type constants.
const (
	AssertStatus         = "status"
	AssertHistoryActions = "history_actions"
	AssertHistoryCount   = "history_count"
	AssertEdges          = "edges"
	AssertFlagAbsent     = "flag_absent"
	AssertChainValid     = "chain_valid"
)

// Op returns "create" or "toggle".
func (s Step) Op() string {
	if s.Create != "" {
		return "create"
	}
	return "toggle"
}

// Flag returns the flag the step targets.
func (s Step) Flag() string {
	if s.Create != "" {
		return s.Create
	}
	return s.Toggle
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
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

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if err := validateStep(fmt.Sprintf("setup[%d]", i), step); err != nil {
			return err
		}
		if step.Expect != nil {
			return fmt.Errorf("setup[%d]: expect is not allowed in setup", i)
		}
	}

	for i, step := range s.Flow {
		if err := validateStep(fmt.Sprintf("flow[%d]", i), step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep checks one step's shape.
func validateStep(where string, step Step) error {
	switch {
	case step.Create != "" && step.Toggle != "":
		return fmt.Errorf("%s: create and toggle are mutually exclusive", where)
	case step.Create == "" && step.Toggle == "":
		return fmt.Errorf("%s: one of create or toggle is required", where)
	case step.Create != "" && step.Enable != nil:
		return fmt.Errorf("%s: enable is only valid for toggle", where)
	case step.Toggle != "" && step.Enable == nil:
		return fmt.Errorf("%s: enable is required for toggle", where)
	case step.Toggle != "" && len(step.DependsOn) > 0:
		return fmt.Errorf("%s: depends_on is only valid for create", where)
	}

	if step.Expect != nil {
		if step.Expect.Error == "" {
			return fmt.Errorf("%s.expect: error is required", where)
		}
		if !knownErrorCode(step.Expect.Error) {
			return fmt.Errorf("%s.expect: unknown error code %q", where, step.Expect.Error)
		}
	}
	return nil
}

func knownErrorCode(code string) bool {
	switch engine.ErrorCode(code) {
	case engine.ErrCodeInvalidName,
		engine.ErrCodeDuplicateFlag,
		engine.ErrCodeUnresolvedDependency,
		engine.ErrCodeCycleDetected,
		engine.ErrCodeFlagNotFound,
		engine.ErrCodeUnsatisfiedDependencies:
		return true
	}
	return false
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Flag == "" {
		return fmt.Errorf("assertions[%d]: flag is required", index)
	}

	switch a.Type {
	case AssertStatus:
		if a.Enabled == nil {
			return fmt.Errorf("assertions[%d]: enabled is required for status", index)
		}
	case AssertHistoryActions:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for history_actions", index)
		}
	case AssertHistoryCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for history_count", index)
		}
	case AssertEdges, AssertFlagAbsent, AssertChainValid:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
