package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/bcir/internal/dce"
)

// Scenario defines a conformance test scenario.
// Scenarios check that programs compute what they should, before and after
// optimization, and that the expected rewrites happen.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Programs lists paths to program files to load, in order.
	// Paths are relative to the scenario file location.
	Programs []string `yaml:"programs"`

	// Optimize runs dead code elimination over the loaded module before
	// any call. If nil, the program runs as written.
	Optimize *OptimizeStep `yaml:"optimize,omitempty"`

	// Calls invoke static methods in order with one interpreter, so
	// static fields persist from one call to the next.
	Calls []CallStep `yaml:"calls"`

	// Assertions validate the trace and the final module.
	// Supported types: firing_count, firing_order, verifies, preserves
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// OptimizeStep configures the elimination pass.
type OptimizeStep struct {
	// Rules names the rules to enable. Empty enables all of them.
	Rules []string `yaml:"rules,omitempty"`

	// Pure replaces the allow-list of methods unused-pure-calls may erase.
	Pure []string `yaml:"pure,omitempty"`
}

// CallStep represents one method call.
type CallStep struct {
	// Method is Owner.name or Owner.name(desc) of a static method.
	Method string `yaml:"method"`

	// Args are parsed by parameter type, as on the command line.
	Args []string `yaml:"args,omitempty"`

	// Expect specifies the expected outcome.
	// If nil, the call must only complete without an interpreter error.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies expected call behavior. Exactly one field is set.
type ExpectClause struct {
	// Result is the displayed return value ("42", "null", "void").
	Result string `yaml:"result,omitempty"`

	// Throws names the exception class, or a superclass of it.
	Throws string `yaml:"throws,omitempty"`
}

// Assertion validates the trace or the optimized module.
type Assertion struct {
	// Type specifies the assertion type:
	// - "firing_count": Check a rule fired exactly Count times
	// - "firing_order": Check rules first fired in order
	// - "verifies": Check the module has no verification problems
	// - "preserves": Check calls behave the same without optimization
	Type string `yaml:"type"`

	// Rule is the rule name (used by firing_count). Empty counts every rule.
	Rule string `yaml:"rule,omitempty"`

	// Method restricts firing_count to one method signature.
	Method string `yaml:"method,omitempty"`

	// Count is the expected number of firings (used by firing_count).
	Count int `yaml:"count,omitempty"`

	// Rules is the expected rule order (used by firing_order).
	Rules []string `yaml:"rules,omitempty"`
}

// Assertion type constants.
const (
	AssertFiringCount = "firing_count"
	AssertFiringOrder = "firing_order"
	AssertVerifies    = "verifies"
	AssertPreserves   = "preserves"
)

// LoadScenario reads and parses a scenario YAML file, resolving program
// paths relative to the file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving program paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve program paths relative to base path BEFORE validation
	for i, p := range scenario.Programs {
		if !filepath.IsAbs(p) && basePath != "" {
			scenario.Programs[i] = filepath.Join(basePath, p)
		}
	}

	// Validate required fields (now with resolved paths)
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

	if len(s.Programs) == 0 {
		return fmt.Errorf("programs list is required and must be non-empty")
	}

	if len(s.Calls) == 0 && len(s.Assertions) == 0 {
		return fmt.Errorf("calls or assertions are required")
	}

	// Validate program paths exist
	for _, p := range s.Programs {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("program file not found: %s", p)
		}
	}

	if s.Optimize != nil {
		for _, name := range s.Optimize.Rules {
			if _, err := dce.ParseRule(name); err != nil {
				return fmt.Errorf("optimize: %w", err)
			}
		}
	}

	// Validate calls
	for i, step := range s.Calls {
		if step.Method == "" {
			return fmt.Errorf("calls[%d]: method is required", i)
		}
		if e := step.Expect; e != nil && (e.Result == "") == (e.Throws == "") {
			return fmt.Errorf("calls[%d].expect: exactly one of result or throws is required", i)
		}
	}

	// Validate assertions
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, s); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, s *Scenario) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFiringCount:
		if a.Rule != "" {
			if _, err := dce.ParseRule(a.Rule); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for firing_count", index)
		}
	case AssertFiringOrder:
		if len(a.Rules) == 0 {
			return fmt.Errorf("assertions[%d]: rules list is required for firing_order", index)
		}
	case AssertVerifies:
	case AssertPreserves:
		if s.Optimize == nil {
			return fmt.Errorf("assertions[%d]: preserves requires an optimize step", index)
		}
		if len(s.Calls) == 0 {
			return fmt.Errorf("assertions[%d]: preserves requires calls", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
