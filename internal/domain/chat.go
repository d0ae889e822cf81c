package domain

import "github.com/google/uuid"

// ProviderMode selects how the provider frames the prompt.
type ProviderMode string

const (
	ModeTranslator     ProviderMode = "translator"
	ModeConversational ProviderMode = "conversational"
)

// PromptMessage is a role/content pair as used by chat completion APIs.
type PromptMessage struct {
	Role    string `yaml:"role" json:"role"`
	Content string `yaml:"content" json:"content"`
}

// ChatSession holds conversational state across assistant turns. Translator
// mode never touches it.
type ChatSession struct {
	ID    string
	Turns []PromptMessage
}

// NewChatSession creates an empty session with a fresh identifier.
func NewChatSession() *ChatSession {
	return &ChatSession{ID: uuid.NewString()}
}

// Append records one user/assistant exchange.
func (s *ChatSession) Append(userPrompt, assistantReply string) {
	s.Turns = append(s.Turns,
		PromptMessage{Role: "user", Content: userPrompt},
		PromptMessage{Role: "assistant", Content: assistantReply},
	)
}
