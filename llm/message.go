package llm

// Usage represents token usage statistics
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Message represents a chat message
type Message struct {
	Role     string        `json:"role"`    // "system", "user" or "assistant"
	Content  string        `json:"content"` // The message content
	FuncCall *FunctionCall `json:"function_call,omitempty"`
	Usage    *Usage        `json:"usage,omitempty"`
}
