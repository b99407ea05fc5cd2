package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/scaleguardhq/scaleguard-engine/internal/models"
)

const defaultOpenAITimeout = 20 * time.Second

// OpenAIProvider asks a chat-completion model for the narrative. Any
// transport or API failure surfaces as an error; callers fall back to the
// template provider.
type OpenAIProvider struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIProvider builds a provider for the given API key and model.
func NewOpenAIProvider(apiKey, model string, timeout time.Duration) *OpenAIProvider {
	if model == "" {
		model = openai.GPT4oMini
	}
	if timeout <= 0 {
		timeout = defaultOpenAITimeout
	}
	return &OpenAIProvider{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) AnalyzeSystemHealth(ctx context.Context, analysis *models.RootCauseAnalysis, summary models.SystemSummary) (string, error) {
	payload, err := json.Marshal(struct {
		Analysis *models.RootCauseAnalysis `json:"analysis"`
		Summary  models.SystemSummary      `json:"summary"`
	}{analysis, summary})
	if err != nil {
		return "", fmt.Errorf("encoding analysis: %w", err)
	}

	prompt := "You are an SRE assistant. Summarise the following microservice " +
		"risk analysis in at most four sentences for an on-call engineer. " +
		"Lead with overall risk, then the primary bottleneck and cascade exposure.\n\n" +
		string(payload)
	return p.complete(ctx, prompt)
}

func (p *OpenAIProvider) GenerateRecommendations(ctx context.Context, analysis *models.RootCauseAnalysis) ([]string, error) {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return nil, fmt.Errorf("encoding analysis: %w", err)
	}

	prompt := "You are an SRE assistant. Given this microservice risk analysis, " +
		"list up to six concrete remediation steps, one per line, no numbering.\n\n" +
		string(payload)
	text, err := p.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var recs []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*• "))
		if line == "" {
			continue
		}
		recs = append(recs, line)
		if len(recs) == maxNarrativeRecommendations {
			break
		}
	}
	return recs, nil
}

func (p *OpenAIProvider) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
