package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/presensi/internal/model"
)

// Scenario is a scripted conversation run against a fresh attendance
// system, with per-step expectations and final assertions.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Start is the initial clock reading, RFC 3339. Defaults to
	// 2024-01-01T09:00:00 in Timezone.
	Start string `yaml:"start,omitempty"`

	// Timezone is the server time zone. Defaults to UTC.
	Timezone string `yaml:"timezone,omitempty"`

	// Admin is the user allowed to request reports.
	Admin string `yaml:"admin,omitempty"`

	// PendingTTL expires an unanswered attendance prompt. Zero never expires.
	PendingTTL string `yaml:"pending_ttl,omitempty"`

	// Commands overrides the command names; empty fields keep the defaults.
	Commands CommandNames `yaml:"commands,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state and trace.
	// Supported types: record_count, outcome_count, pending.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// CommandNames mirrors coordinator.Commands in scenario files.
type CommandNames struct {
	Attend string `yaml:"attend,omitempty"`
	Report string `yaml:"report,omitempty"`
	Start  string `yaml:"start,omitempty"`
}

// Step is either one inbound event or a clock advance.
//
// An event step sets User and exactly one of Command, Location, or Text.
// An advance step sets only Advance.
type Step struct {
	User     string          `yaml:"user,omitempty"`
	Name     string          `yaml:"name,omitempty"`
	Command  string          `yaml:"command,omitempty"`
	Location *model.Location `yaml:"location,omitempty"`
	Text     string          `yaml:"text,omitempty"`

	// Advance moves the clock forward by a Go duration such as "24h".
	Advance string `yaml:"advance,omitempty"`

	// Expect is the expected outcome kind. Empty skips the check.
	Expect string `yaml:"expect,omitempty"`
}

// IsAdvance reports whether the step only moves the clock.
func (s Step) IsAdvance() bool {
	return s.Advance != ""
}

// Event builds the inbound event for an event step.
func (s Step) Event() model.Event {
	ev := model.Event{UserID: s.User, DisplayName: s.Name}
	switch {
	case s.Command != "":
		ev.Kind = model.EventCommand
		ev.Command = s.Command
	case s.Location != nil:
		ev.Kind = model.EventLocation
		loc := *s.Location
		ev.Location = &loc
	default:
		ev.Kind = model.EventText
		ev.Text = s.Text
	}
	return ev
}

// Assertion validates final state or the trace.
type Assertion struct {
	// Type is one of record_count, outcome_count, pending.
	Type string `yaml:"type"`

	// Date is the day to count records for (record_count).
	Date string `yaml:"date,omitempty"`

	// Outcome is the outcome kind to count in the trace (outcome_count).
	Outcome string `yaml:"outcome,omitempty"`

	// Count is the expected number (record_count, outcome_count).
	Count int `yaml:"count"`

	// User is whose pending flag to check (pending).
	User string `yaml:"user,omitempty"`

	// Expect is the expected pending flag (pending).
	Expect bool `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertRecordCount  = "record_count"
	AssertOutcomeCount = "outcome_count"
	AssertPending      = "pending"
)

var outcomeKinds = map[string]bool{
	string(model.OutcomePrompted):         true,
	string(model.OutcomeAccepted):         true,
	string(model.OutcomeDuplicate):        true,
	string(model.OutcomeFailure):          true,
	string(model.OutcomeReminder):         true,
	string(model.OutcomeNeedCommandFirst): true,
	string(model.OutcomeIgnored):          true,
	string(model.OutcomeAccessDenied):     true,
	string(model.OutcomeReport):           true,
	string(model.OutcomeWelcome):          true,
}

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
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

// FindScenarioFiles returns the .yaml and .yml files under dir in lexical
// order. A non-empty filter is a glob matched against the file name
// without extension.
func FindScenarioFiles(dir, filter string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	sort.Strings(files)
	return files, err
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

	if s.Timezone != "" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return fmt.Errorf("timezone: %w", err)
		}
	}
	if s.Start != "" {
		if _, err := time.Parse(time.RFC3339, s.Start); err != nil {
			return fmt.Errorf("start: %w", err)
		}
	}
	if s.PendingTTL != "" {
		if d, err := time.ParseDuration(s.PendingTTL); err != nil || d < 0 {
			return fmt.Errorf("pending_ttl: invalid duration %q", s.PendingTTL)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step Step) error {
	set := 0
	if step.Command != "" {
		set++
	}
	if step.Location != nil {
		set++
	}
	if step.Text != "" {
		set++
	}

	if step.IsAdvance() {
		if set > 0 || step.User != "" || step.Expect != "" {
			return fmt.Errorf("steps[%d]: advance cannot be combined with an event", index)
		}
		if d, err := time.ParseDuration(step.Advance); err != nil || d < 0 {
			return fmt.Errorf("steps[%d]: invalid advance duration %q", index, step.Advance)
		}
		return nil
	}

	if step.User == "" {
		return fmt.Errorf("steps[%d]: user is required", index)
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of command, location, text is required", index)
	}
	if step.Expect != "" && !outcomeKinds[step.Expect] {
		return fmt.Errorf("steps[%d]: unknown expected outcome %q", index, step.Expect)
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertRecordCount:
		if _, err := model.ParseDate(a.Date); err != nil {
			return fmt.Errorf("assertions[%d]: record_count: %w", index, err)
		}
	case AssertOutcomeCount:
		if !outcomeKinds[a.Outcome] {
			return fmt.Errorf("assertions[%d]: outcome_count: unknown outcome %q", index, a.Outcome)
		}
	case AssertPending:
		if a.User == "" {
			return fmt.Errorf("assertions[%d]: pending requires user", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	if a.Count < 0 {
		return fmt.Errorf("assertions[%d]: count must be non-negative", index)
	}
	return nil
}
