package services

import (
	"context"
	"errors"
	"strings"

	"github.com/doeshing/aish/internal/domain"
	"github.com/doeshing/aish/internal/infrastructure/sanitize"
	"github.com/doeshing/aish/internal/ports"
)

// ErrNoSuggestion is returned when the model produced nothing usable.
var ErrNoSuggestion = errors.New("model returned no command")

// Translator turns one natural language prompt into one cleaned shell
// command. It never executes anything; the result goes to the Gate.
type Translator struct {
	Provider ports.Provider
	Logger   ports.Logger
}

// Translate asks the model for a bare command and strips the formatting
// noise models wrap around it.
func (t *Translator) Translate(ctx context.Context, prompt string) (string, error) {
	resp, err := t.Provider.Generate(ctx, ports.ProviderRequest{
		Prompt: prompt,
		Mode:   domain.ModeTranslator,
	})
	if err != nil {
		return "", err
	}
	command := sanitize.Clean(resp.Text)
	if command == "" {
		return "", ErrNoSuggestion
	}
	if t.Logger != nil {
		t.Logger.Debug("translated prompt", map[string]interface{}{
			"prompt":  prompt,
			"command": command,
		})
	}
	return command, nil
}

// Assistant drives the conversational mode. It keeps the chat session across
// turns and surfaces any ```bash fenced command the model embedded in its
// reply.
type Assistant struct {
	Provider ports.Provider

	session *domain.ChatSession
}

// Ask sends one user turn and returns the full reply plus the first fenced
// command, if any.
func (a *Assistant) Ask(ctx context.Context, prompt string) (reply, command string, err error) {
	resp, err := a.Provider.Generate(ctx, ports.ProviderRequest{
		Prompt:  prompt,
		Mode:    domain.ModeConversational,
		Session: a.session,
	})
	if err != nil {
		return "", "", err
	}
	a.session = resp.Session

	reply = strings.TrimSpace(resp.Text)
	if reply == "" {
		return "", "", ErrNoSuggestion
	}
	return reply, sanitize.ExtractFencedCommand(reply), nil
}

// Reset drops the running conversation.
func (a *Assistant) Reset() {
	a.session = nil
}
