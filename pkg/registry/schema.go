// pkg/registry/schema.go
package registry

// Implementation states an activity may declare.
const (
	StatusImplemented = "implemented"
	StatusPlanned     = "planned"
	StatusDeprecated  = "deprecated"
)

// ValidStatus reports whether s is a known implementation state.
func ValidStatus(s string) bool {
	switch s {
	case StatusImplemented, StatusPlanned, StatusDeprecated:
		return true
	}
	return false
}

// ActivityRegistry is the on-disk catalogue in configs/activity-registry.json.
// Each activity's InputSchema is compiled by the validation package and checked
// against job variables before a handler runs.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity describes one Zeebe task type served by the worker manager.
type Activity struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	Description          string                 `json:"description"`
	Category             string                 `json:"category"`
	Version              string                 `json:"version"`
	TaskType             string                 `json:"taskType"`
	ImplementationStatus string                 `json:"implementationStatus"` // implemented | planned | deprecated
	InputSchema          map[string]interface{} `json:"inputSchema"`
	OutputSchema         map[string]interface{} `json:"outputSchema"`
	ErrorCodes           []string               `json:"errorCodes"` // must be known errors.ErrorCode values
	Timeout              string                 `json:"timeout"`    // Go duration, e.g. "150s"
	Retries              int                    `json:"retries"`
	Tags                 []string               `json:"tags"`
}
