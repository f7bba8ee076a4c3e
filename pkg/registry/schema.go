// pkg/registry/schema.go
package registry

type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity describes one Zeebe task type for process modelers.
type Activity struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	TaskType    string   `json:"taskType"`
	ErrorCodes  []string `json:"errorCodes"` // BPMN error codes the worker may throw
	Timeout     string   `json:"timeout"`
	Retries     int      `json:"retries"`
	Tags        []string `json:"tags,omitempty"`
}
