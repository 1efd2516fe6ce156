package llm

// FunctionCall represents a structured function call returned by the backend
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Function describes a function the backend may be asked to call. Forcing
// a single function is how schema-constrained output is requested from
// backends that support tool calls.
type Function struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  any    `json:"parameters"` // JSON Schema object
}
