package ai

import (
	"net/http"
	"strings"
	"time"

	"github.com/doeshing/aish/internal/domain"
	"github.com/doeshing/aish/internal/ports"
)

// providerKind identifies the wire dialect a model endpoint speaks.
type providerKind string

const (
	kindAnthropic providerKind = "anthropic"
	kindOpenAI    providerKind = "openai"
	kindOllama    providerKind = "ollama"
	kindOffline   providerKind = "offline"
)

// Factory builds a provider per model definition, inferring the API dialect
// from the endpoint. Models without an endpoint get the offline fallback so
// the shell stays usable without credentials.
type Factory struct {
	httpClient *http.Client
}

// NewFactory builds a factory with the given request timeout. Zero means 60
// seconds.
func NewFactory(timeout time.Duration) *Factory {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Factory{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ForModel implements ports.ProviderFactory.
func (f *Factory) ForModel(model domain.ModelDefinition) (ports.Provider, error) {
	switch inferProviderKind(model) {
	case kindAnthropic:
		return newHTTPProvider("anthropic", model, f.httpClient, anthropicAdapter()), nil
	case kindOllama:
		return newHTTPProvider("ollama", model, f.httpClient, ollamaAdapter()), nil
	case kindOffline:
		return newOfflineProvider(model), nil
	default:
		// Anything else is treated as OpenAI-compatible; most hosted and
		// self-hosted gateways speak that dialect.
		return newHTTPProvider("openai", model, f.httpClient, openaiAdapter()), nil
	}
}

func inferProviderKind(model domain.ModelDefinition) providerKind {
	endpoint := strings.ToLower(model.Endpoint)
	name := strings.ToLower(model.Name)

	switch {
	case endpoint == "":
		return kindOffline
	case strings.Contains(endpoint, "anthropic.com"):
		return kindAnthropic
	case strings.Contains(endpoint, "openai.com"):
		return kindOpenAI
	case strings.Contains(name, "ollama"),
		strings.Contains(endpoint, "11434"),
		strings.Contains(endpoint, "/api/chat"):
		return kindOllama
	default:
		return kindOpenAI
	}
}

var _ ports.ProviderFactory = (*Factory)(nil)
