package ai

import (
	"context"
	"strings"

	"github.com/doeshing/aish/internal/domain"
	"github.com/doeshing/aish/internal/ports"
)

// offlineProvider answers from a tiny phrase table when no endpoint is
// configured. It keeps the shell demonstrable without network access or
// credentials; `aish doctor` tells the user what is missing.
type offlineProvider struct {
	model domain.ModelDefinition
}

func newOfflineProvider(model domain.ModelDefinition) ports.Provider {
	return &offlineProvider{model: model}
}

func (p *offlineProvider) Name() string {
	return "offline"
}

func (p *offlineProvider) Model() domain.ModelDefinition {
	return p.model
}

func (p *offlineProvider) Generate(_ context.Context, req ports.ProviderRequest) (ports.ProviderResponse, error) {
	text := guessCommand(req.Prompt)
	if req.Mode == domain.ModeConversational {
		text = "No AI endpoint is configured, so I can only suggest:\n```bash\n" + text + "\n```"
		session := req.Session
		if session == nil {
			session = domain.NewChatSession()
		}
		session.Append(req.Prompt, text)
		return ports.ProviderResponse{Text: text, Session: session}, nil
	}
	return ports.ProviderResponse{Text: text, Session: req.Session}, nil
}

func guessCommand(prompt string) string {
	prompt = strings.ToLower(prompt)
	switch {
	case strings.Contains(prompt, "docker"):
		return "docker ps"
	case strings.Contains(prompt, "git status"):
		return "git status"
	case strings.Contains(prompt, "disk"):
		return "df -h"
	case strings.Contains(prompt, "list") && strings.Contains(prompt, "file"):
		return "ls -la"
	case strings.Contains(prompt, "process"):
		return "ps aux"
	default:
		return "echo \"No AI provider configured\""
	}
}
