package llm

// Message represents a single text message in a chat conversation.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// NewUserMessage creates a user-role message with the given text.
func NewUserMessage(text string) Message {
	return Message{Role: "user", Content: text}
}
