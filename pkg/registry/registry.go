// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a registry document and rejects duplicate task types.
func Parse(data []byte) (*ActivityRegistry, error) {
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode activity registry: %w", err)
	}
	seen := make(map[string]bool, len(reg.Activities))
	for _, a := range reg.Activities {
		if a.TaskType == "" {
			return nil, fmt.Errorf("activity %q has no taskType", a.ID)
		}
		if seen[a.TaskType] {
			return nil, fmt.Errorf("duplicate taskType %q", a.TaskType)
		}
		seen[a.TaskType] = true
	}
	return &reg, nil
}

// Find returns the activity registered for taskType.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// TimeoutDuration parses Timeout ("90s", "2m"). An empty value yields fallback.
func (a Activity) TimeoutDuration(fallback time.Duration) (time.Duration, error) {
	if a.Timeout == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 0, fmt.Errorf("activity %s timeout: %w", a.ID, err)
	}
	return d, nil
}

// Lint reports incomplete activities and error codes outside knownCodes.
// A nil knownCodes skips the code check.
func (r *ActivityRegistry) Lint(knownCodes map[string]bool) []error {
	var problems []error
	if len(r.Activities) == 0 {
		return append(problems, fmt.Errorf("registry contains no activities"))
	}
	ids := make(map[string]bool, len(r.Activities))
	for _, a := range r.Activities {
		if a.ID == "" {
			problems = append(problems, fmt.Errorf("activity with taskType %q has no id", a.TaskType))
			continue
		}
		if ids[a.ID] {
			problems = append(problems, fmt.Errorf("duplicate activity id %s", a.ID))
		}
		ids[a.ID] = true

		if a.DisplayName == "" {
			problems = append(problems, fmt.Errorf("activity %s has no displayName", a.ID))
		}
		if a.Category == "" {
			problems = append(problems, fmt.Errorf("activity %s has no category", a.ID))
		}
		if _, err := a.TimeoutDuration(0); err != nil {
			problems = append(problems, err)
		}
		if a.ImplementationStatus != "" && !ValidStatus(a.ImplementationStatus) {
			problems = append(problems, fmt.Errorf("activity %s has unknown implementationStatus %q", a.ID, a.ImplementationStatus))
		}
		if a.Retries < 0 {
			problems = append(problems, fmt.Errorf("activity %s has negative retries", a.ID))
		}
		for _, code := range a.ErrorCodes {
			if knownCodes != nil && !knownCodes[code] {
				problems = append(problems, fmt.Errorf("activity %s declares unknown error code %s", a.ID, code))
			}
		}
	}
	return problems
}

// Save writes the registry as indented JSON and stamps LastUpdated.
func (r *ActivityRegistry) Save(path string, now time.Time) error {
	r.LastUpdated = now.UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create registry directory: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
