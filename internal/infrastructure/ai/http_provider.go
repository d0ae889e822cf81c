// Package ai implements providers that turn prompts into model text over
// HTTP. One generic provider carries a per-API adapter for request shape,
// response shape and authentication.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/doeshing/aish/internal/domain"
	"github.com/doeshing/aish/internal/ports"
)

type httpProvider struct {
	name       string
	model      domain.ModelDefinition
	httpClient *http.Client
	adapter    providerAdapter
}

// genRequest is the provider-neutral request the adapters translate into
// their wire format.
type genRequest struct {
	Model       domain.ModelDefinition
	Messages    []domain.PromptMessage
	Temperature *float64
}

type providerAdapter struct {
	buildRequest  func(genRequest) ([]byte, error)
	parseResponse func([]byte) (string, error)
	setHeaders    func(*http.Request, domain.ModelDefinition) error
}

func newHTTPProvider(name string, model domain.ModelDefinition, client *http.Client, adapter providerAdapter) ports.Provider {
	return &httpProvider{
		name:       name,
		model:      model,
		httpClient: client,
		adapter:    adapter,
	}
}

func (p *httpProvider) Name() string {
	return p.name
}

func (p *httpProvider) Model() domain.ModelDefinition {
	return p.model
}

func (p *httpProvider) Generate(ctx context.Context, req ports.ProviderRequest) (ports.ProviderResponse, error) {
	gen := p.buildGenRequest(req)

	requestBody, err := p.adapter.buildRequest(gen)
	if err != nil {
		return ports.ProviderResponse{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.model.Endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return ports.ProviderResponse{}, err
	}
	httpReq.Header.Set("content-type", "application/json")
	if err := p.adapter.setHeaders(httpReq, p.model); err != nil {
		return ports.ProviderResponse{}, err
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return ports.ProviderResponse{}, fmt.Errorf("%s: %w", p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return ports.ProviderResponse{}, fmt.Errorf("%s: %s", p.name, resp.Status)
	}

	var responseBody bytes.Buffer
	if _, err := responseBody.ReadFrom(resp.Body); err != nil {
		return ports.ProviderResponse{}, err
	}

	text, err := p.adapter.parseResponse(responseBody.Bytes())
	if err != nil {
		return ports.ProviderResponse{}, fmt.Errorf("%s: %w", p.name, err)
	}

	session := req.Session
	if req.Mode == domain.ModeConversational {
		if session == nil {
			session = domain.NewChatSession()
		}
		session.Append(req.Prompt, text)
	}
	return ports.ProviderResponse{Text: text, Session: session}, nil
}

// buildGenRequest frames the prompt per mode. Translator mode sends the
// meta-prompt alone at temperature zero so the reply is a deterministic bare
// command; conversational mode sends the system prompt plus the running
// session.
func (p *httpProvider) buildGenRequest(req ports.ProviderRequest) genRequest {
	if req.Mode == domain.ModeTranslator {
		zero := 0.0
		return genRequest{
			Model:       p.model,
			Messages:    []domain.PromptMessage{{Role: "user", Content: TranslatorMetaPrompt(req.Prompt)}},
			Temperature: &zero,
		}
	}

	system := req.SystemPrompt
	if system == "" {
		system = AssistantSystemPrompt()
	}
	messages := []domain.PromptMessage{{Role: "system", Content: system}}
	if req.Session != nil {
		messages = append(messages, req.Session.Turns...)
	}
	messages = append(messages, domain.PromptMessage{Role: "user", Content: req.Prompt})
	return genRequest{Model: p.model, Messages: messages}
}

func anthropicAdapter() providerAdapter {
	return providerAdapter{
		buildRequest:  buildAnthropicRequest,
		parseResponse: parseAnthropicResponse,
		setHeaders:    setAnthropicHeaders,
	}
}

func openaiAdapter() providerAdapter {
	return providerAdapter{
		buildRequest:  buildChatCompletionRequest,
		parseResponse: parseChatCompletionResponse,
		setHeaders:    setOpenAIHeaders,
	}
}

func ollamaAdapter() providerAdapter {
	return providerAdapter{
		buildRequest:  buildOllamaRequest,
		parseResponse: parseOllamaResponse,
		setHeaders:    setOllamaHeaders,
	}
}

func buildAnthropicRequest(gen genRequest) ([]byte, error) {
	systemPrompt, chatMessages := splitSystemMessages(gen.Messages)

	request := map[string]interface{}{
		"model":      defaultString(gen.Model.ModelID, "claude-3-5-sonnet-20240620"),
		"max_tokens": defaultInt(gen.Model.MaxTokens, 1024),
		"messages":   chatMessages,
	}
	if systemPrompt != "" {
		request["system"] = systemPrompt
	}
	if gen.Temperature != nil {
		request["temperature"] = *gen.Temperature
	}

	return json.Marshal(request)
}

// splitSystemMessages separates system lines from chat turns; the Anthropic
// API takes the system prompt as a top level field.
func splitSystemMessages(messages []domain.PromptMessage) (string, []map[string]interface{}) {
	var systemLines []string
	var chatMessages []map[string]interface{}

	for _, msg := range messages {
		if strings.EqualFold(msg.Role, "system") {
			systemLines = append(systemLines, msg.Content)
			continue
		}
		chatMessages = append(chatMessages, map[string]interface{}{
			"role": msg.Role,
			"content": []map[string]string{
				{"type": "text", "text": msg.Content},
			},
		})
	}

	return strings.TrimSpace(strings.Join(systemLines, "\n")), chatMessages
}

func parseAnthropicResponse(body []byte) (string, error) {
	var response struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	if len(response.Content) == 0 {
		return "", nil
	}
	return response.Content[0].Text, nil
}

func setAnthropicHeaders(req *http.Request, model domain.ModelDefinition) error {
	apiKey := getEnv(model.AuthEnvVar, "ANTHROPIC_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("missing API key: set %s or ANTHROPIC_API_KEY", model.AuthEnvVar)
	}
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	return nil
}

func buildChatCompletionRequest(gen genRequest) ([]byte, error) {
	chatMessages := make([]map[string]string, 0, len(gen.Messages))
	for _, msg := range gen.Messages {
		chatMessages = append(chatMessages, map[string]string{
			"role":    strings.ToLower(msg.Role),
			"content": msg.Content,
		})
	}

	request := map[string]interface{}{
		"model":    gen.Model.ModelID,
		"messages": chatMessages,
	}
	if gen.Model.MaxTokens > 0 {
		request["max_tokens"] = gen.Model.MaxTokens
	}
	if gen.Temperature != nil {
		request["temperature"] = *gen.Temperature
	}

	return json.Marshal(request)
}

func parseChatCompletionResponse(body []byte) (string, error) {
	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

func setOpenAIHeaders(req *http.Request, model domain.ModelDefinition) error {
	apiKey := getEnv(model.AuthEnvVar, "OPENAI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("missing API key: set %s or OPENAI_API_KEY", model.AuthEnvVar)
	}
	req.Header.Set("authorization", "Bearer "+apiKey)
	return nil
}

func buildOllamaRequest(gen genRequest) ([]byte, error) {
	chatMessages := make([]map[string]string, 0, len(gen.Messages))
	for _, msg := range gen.Messages {
		chatMessages = append(chatMessages, map[string]string{
			"role":    strings.ToLower(msg.Role),
			"content": msg.Content,
		})
	}

	request := map[string]interface{}{
		"model":    gen.Model.ModelID,
		"messages": chatMessages,
		"stream":   false,
	}
	if gen.Temperature != nil {
		request["options"] = map[string]interface{}{"temperature": *gen.Temperature}
	}

	return json.Marshal(request)
}

func parseOllamaResponse(body []byte) (string, error) {
	var response struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Error string `json:"error"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	if response.Error != "" {
		return "", fmt.Errorf("ollama: %s", response.Error)
	}
	return strings.TrimSpace(response.Message.Content), nil
}

func setOllamaHeaders(*http.Request, domain.ModelDefinition) error {
	return nil
}

func getEnv(primary, fallback string) string {
	if primary != "" {
		if value := os.Getenv(primary); value != "" {
			return value
		}
	}
	if fallback != "" {
		return os.Getenv(fallback)
	}
	return ""
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func defaultInt(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}
