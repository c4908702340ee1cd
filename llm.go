package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"
const defaultOpenAIModel = "gpt-4o-mini"

// InferenceErrorKind classifies why a structured inference call failed.
type InferenceErrorKind string

const (
	// InferenceRateLimited: the service signalled backpressure (HTTP 429).
	InferenceRateLimited InferenceErrorKind = "rate_limited"
	// InferenceMalformedOutput: the service answered, but the content could
	// not be parsed into the requested shape (missing fields, extra prose,
	// values outside a closed enumeration).
	InferenceMalformedOutput InferenceErrorKind = "malformed_output"
	// InferenceUnexpected: any other transport or service error.
	InferenceUnexpected InferenceErrorKind = "unexpected"
)

type InferenceError struct {
	Kind InferenceErrorKind
	Err  error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference %s: %v", e.Kind, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// asInferenceError coerces any error into an *InferenceError, defaulting the
// kind to Unexpected for errors the transport did not classify.
func asInferenceError(err error) *InferenceError {
	var infErr *InferenceError
	if errors.As(err, &infErr) {
		return infErr
	}
	return &InferenceError{Kind: InferenceUnexpected, Err: err}
}

type LLMUsage struct {
	InputTokens              int64
	OutputTokens             int64
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}

func (u LLMUsage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

func (u *LLMUsage) Add(other LLMUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheCreationInputTokens += other.CacheCreationInputTokens
	u.CacheReadInputTokens += other.CacheReadInputTokens
}

// Completer is the transport half of the structured inference client: one
// prompt pair in, raw model text out. LLMClient is the production
// implementation; tests substitute in-process fakes.
type Completer interface {
	Complete(systemPrompt, userPrompt string) (string, LLMUsage, error)
}

// LLMClient talks to the configured inference provider. It holds no request
// state and performs no retries; retry policy belongs to the caller.
type LLMClient struct {
	provider        string
	model           string
	anthropicAPIKey string
	openAIAPIKey    string
}

func NewLLMClient(cfg Config, model string) *LLMClient {
	return &LLMClient{
		provider:        cfg.LLMProvider,
		model:           model,
		anthropicAPIKey: cfg.AnthropicAPIKey,
		openAIAPIKey:    cfg.OpenAIAPIKey,
	}
}

func (c *LLMClient) Complete(systemPrompt, userPrompt string) (string, LLMUsage, error) {
	switch c.provider {
	case "openai":
		model := c.model
		if model == "" {
			model = defaultOpenAIModel
		}
		return callOpenAI(c.openAIAPIKey, model, systemPrompt, userPrompt)
	default:
		model := c.model
		if model == "" {
			model = defaultAnthropicModel
		}
		return callAnthropic(c.anthropicAPIKey, model, systemPrompt, userPrompt)
	}
}

// inferStructured runs one completion and decodes the response into T. Every
// failure comes back as an *InferenceError with a classified kind; a non-nil
// value always has all closed-set fields validated by its decoder plus the
// supplied validate hook.
func inferStructured[T any](llm Completer, systemPrompt, userPrompt string, validate func(*T) error) (*T, LLMUsage, *InferenceError) {
	responseText, usage, err := llm.Complete(systemPrompt, userPrompt)
	if err != nil {
		return nil, usage, asInferenceError(err)
	}

	cleaned := stripMarkdownFence(responseText)
	var value T
	if err := json.Unmarshal([]byte(cleaned), &value); err != nil {
		return nil, usage, &InferenceError{
			Kind: InferenceMalformedOutput,
			Err:  fmt.Errorf("parsing structured response: %w (response: %s)", err, truncateForLog(cleaned)),
		}
	}
	if validate != nil {
		if err := validate(&value); err != nil {
			return nil, usage, &InferenceError{Kind: InferenceMalformedOutput, Err: err}
		}
	}
	return &value, usage, nil
}

// Models frequently wrap JSON answers in ``` fences despite instructions.
func stripMarkdownFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncateForLog(s string) string {
	if len(s) > 512 {
		return s[:512] + fmt.Sprintf("... [truncated, total_length=%d]", len(s))
	}
	return s
}

// --- Anthropic ---

func callAnthropic(apiKey, model, systemPrompt, userPrompt string) (string, LLMUsage, error) {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	message, err := client.Messages.New(context.Background(), anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		log.Printf("llm anthropic error: %v", err)
		return "", LLMUsage{}, classifyAnthropicError(err)
	}
	usage := LLMUsage{
		InputTokens:              message.Usage.InputTokens,
		OutputTokens:             message.Usage.OutputTokens,
		CacheCreationInputTokens: message.Usage.CacheCreationInputTokens,
		CacheReadInputTokens:     message.Usage.CacheReadInputTokens,
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("llm anthropic response size=%d tokens_in=%d tokens_out=%d cache_create=%d cache_read=%d", len(block.Text), usage.InputTokens, usage.OutputTokens, usage.CacheCreationInputTokens, usage.CacheReadInputTokens)
			return block.Text, usage, nil
		}
	}
	return "", usage, &InferenceError{Kind: InferenceMalformedOutput, Err: fmt.Errorf("no text content in Anthropic response")}
}

func classifyAnthropicError(err error) *InferenceError {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return &InferenceError{Kind: InferenceRateLimited, Err: err}
	}
	return &InferenceError{Kind: InferenceUnexpected, Err: fmt.Errorf("Anthropic API error: %w", err)}
}

// --- OpenAI ---

type openAIRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
		TotalTokens      int64 `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func callOpenAI(apiKey, model, systemPrompt, userPrompt string) (string, LLMUsage, error) {
	reqBody := openAIRequest{
		Model: model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", LLMUsage{}, &InferenceError{Kind: InferenceUnexpected, Err: fmt.Errorf("marshaling request: %w", err)}
	}

	req, err := http.NewRequest("POST", "https://api.openai.com/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", LLMUsage{}, &InferenceError{Kind: InferenceUnexpected, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("llm openai error: %v", err)
		return "", LLMUsage{}, &InferenceError{Kind: InferenceUnexpected, Err: fmt.Errorf("OpenAI API error: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", LLMUsage{}, &InferenceError{Kind: InferenceUnexpected, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", LLMUsage{}, &InferenceError{Kind: InferenceRateLimited, Err: fmt.Errorf("OpenAI rate limited (429): %s", truncateForLog(string(respBody)))}
	}

	var openAIResp openAIResponse
	if err := json.Unmarshal(respBody, &openAIResp); err != nil {
		return "", LLMUsage{}, &InferenceError{Kind: InferenceUnexpected, Err: fmt.Errorf("parsing OpenAI response: %w", err)}
	}

	if openAIResp.Error != nil {
		log.Printf("llm openai api error: %s", openAIResp.Error.Message)
		return "", LLMUsage{}, &InferenceError{Kind: InferenceUnexpected, Err: fmt.Errorf("OpenAI API error: %s", openAIResp.Error.Message)}
	}

	if len(openAIResp.Choices) == 0 {
		return "", LLMUsage{}, &InferenceError{Kind: InferenceMalformedOutput, Err: fmt.Errorf("no choices in OpenAI response")}
	}
	usage := LLMUsage{}
	if openAIResp.Usage != nil {
		usage.InputTokens = openAIResp.Usage.PromptTokens
		usage.OutputTokens = openAIResp.Usage.CompletionTokens
	}

	log.Printf("llm openai response size=%d tokens_in=%d tokens_out=%d", len(openAIResp.Choices[0].Message.Content), usage.InputTokens, usage.OutputTokens)
	return openAIResp.Choices[0].Message.Content, usage, nil
}
