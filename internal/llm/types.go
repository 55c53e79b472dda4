package llm

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatParams holds parameters for chat completion requests.
type ChatParams struct {
	// Model specifies the model to use. If empty, the client's default model is used.
	Model string

	// MaxTokens specifies the maximum number of tokens to generate.
	// If 0, no limit is applied.
	MaxTokens int

	// Temperature controls the randomness of the output. Zero leaves the server default.
	Temperature float32

	// TopP is the nucleus sampling cutoff. Zero leaves the server default.
	TopP float32
}

// DefaultChatParams returns the low-temperature settings used for grounded answers.
func DefaultChatParams() ChatParams {
	return ChatParams{
		MaxTokens:   1024,
		Temperature: 0.3,
		TopP:        0.8,
	}
}
