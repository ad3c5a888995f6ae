package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"vyapar/backend/internal/domain"
)

const DefaultBaseURL = "https://api.groq.com/openai/v1"

// zero temperature is dropped by omitempty, so ask for the smallest positive value instead
var deterministic = float32(math.SmallestNonzeroFloat32)

// LLM talks to any OpenAI-compatible chat completion endpoint.
type LLM struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewLLM(apiKey, baseURL, model string) *LLM {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cfg.BaseURL = baseURL
	return &LLM{client: openai.NewClientWithConfig(cfg), model: model, timeout: 30 * time.Second}
}

func (l *LLM) complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	resp, err := l.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       l.model,
		Messages:    []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}},
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

type LLMExtractor struct {
	llm *LLM
}

func NewLLMExtractor(llm *LLM) *LLMExtractor {
	return &LLMExtractor{llm: llm}
}

func (e *LLMExtractor) Extract(ctx context.Context, text string) (*domain.Extraction, error) {
	content, err := e.llm.complete(ctx, extractionPrompt(text), deterministic)
	if err != nil {
		log.Error().Err(err).Msg("extraction request failed")
		return nil, fmt.Errorf("%w: %v", ErrNotUnderstood, err)
	}
	log.Debug().Str("content", content).Msg("extraction response")

	var ext domain.Extraction
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &ext); err != nil {
		log.Error().Err(err).Str("content", content).Msg("extraction response is not valid JSON")
		return nil, fmt.Errorf("%w: %v", ErrNotUnderstood, err)
	}
	return &ext, nil
}

// stripCodeFence removes a surrounding ``` or ```json fence.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.Trim(s, "`")
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "json"); ok {
		s = rest
	}
	return strings.TrimSpace(s)
}

const (
	insightFallback = "Sorry, I couldn't generate insights at the moment."
	adviceFallback  = "Unable to generate advice at the moment."
)

type LLMAdvisor struct {
	llm      *LLM
	currency string
}

func NewLLMAdvisor(llm *LLM, currency string) *LLMAdvisor {
	return &LLMAdvisor{llm: llm, currency: currency}
}

func (a *LLMAdvisor) Insight(ctx context.Context, question string, snap domain.Snapshot) string {
	answer, err := a.llm.complete(ctx, insightPrompt(question, snap, a.currency), 0.3)
	if err != nil || answer == "" {
		log.Error().Err(err).Msg("insight generation failed")
		return insightFallback
	}
	return answer
}

func (a *LLMAdvisor) Advice(ctx context.Context, snap domain.Snapshot) string {
	answer, err := a.llm.complete(ctx, advicePrompt(snap, a.currency), 0.5)
	if err != nil || answer == "" {
		log.Error().Err(err).Msg("advice generation failed")
		return adviceFallback
	}
	return answer
}
