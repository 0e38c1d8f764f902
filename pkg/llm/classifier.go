package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-pkgz/lgr"
	"github.com/sashabaranov/go-openai"

	"github.com/umputun/sift/pkg/config"
	"github.com/umputun/sift/pkg/domain"
)

const maxAttempts = 3

var (
	// ErrUnknownLabel is returned when the model answers with a label outside the active set
	ErrUnknownLabel = errors.New("label not in active set")

	errMalformed = errors.New("malformed response")
)

// Classifier assigns labels through an OpenAI-compatible chat completion API
type Classifier struct {
	client    *openai.Client
	config    config.LLMConfig
	labels    []string
	systemMsg string
	logger    lgr.L
}

// default system prompt, %s is replaced by the label list
const defaultSystemPrompt = `You are a news editor assigning exactly one topical category to an article summary.
Allowed categories: %s

Rules:
- Pick the single best matching category from the allowed list, spelled exactly as listed.
- Never invent new categories.
- confidence is a number between 0 and 1.

Respond with a JSON object only: {"label": "<category>", "confidence": <number>}`

// NewClassifier creates a new LLM classifier for the given label set
func NewClassifier(cfg config.LLMConfig, labels []string, logger lgr.L) *Classifier {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}
	if logger == nil {
		logger = lgr.NoOp
	}

	// use custom system prompt if provided, otherwise use default
	prompt := cfg.SystemPrompt
	if prompt == "" {
		prompt = defaultSystemPrompt
	}
	systemMsg := prompt
	if strings.Contains(prompt, "%s") {
		systemMsg = fmt.Sprintf(prompt, strings.Join(labels, ", "))
	}

	return &Classifier{
		client:    openai.NewClientWithConfig(clientConfig),
		config:    cfg,
		labels:    append([]string(nil), labels...),
		systemMsg: systemMsg,
		logger:    logger,
	}
}

type labelResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classify asks the model for the label of text, malformed replies are retried up to 3 times
func (c *Classifier) Classify(ctx context.Context, text string) (domain.Prediction, error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		chatReq := openai.ChatCompletionRequest{
			Model:       c.config.Model,
			Temperature: float32(c.config.Temperature),
			MaxTokens:   c.config.MaxTokens,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: c.systemMsg},
				{Role: openai.ChatMessageRoleUser, Content: text},
			},
		}

		// add JSON response format if enabled
		if c.config.UseJSONMode {
			chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			}
		}

		resp, err := c.client.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			return domain.Prediction{}, fmt.Errorf("llm request failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return domain.Prediction{}, fmt.Errorf("no response from llm")
		}

		pred, err := c.parseResponse(resp.Choices[0].Message.Content)
		if err == nil {
			return pred, nil
		}
		lastErr = err

		// only malformed replies are worth another attempt
		if !errors.Is(err, errMalformed) {
			return domain.Prediction{}, err
		}
		c.logger.Logf("[DEBUG] llm classification attempt %d: %v", attempt, err)
	}

	return domain.Prediction{}, fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}

// parseResponse extracts the JSON object from the reply and maps its label onto the active set
func (c *Classifier) parseResponse(content string) (domain.Prediction, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || start >= end {
		return domain.Prediction{}, fmt.Errorf("%w: no json object found", errMalformed)
	}

	var lr labelResponse
	if err := json.Unmarshal([]byte(content[start:end+1]), &lr); err != nil {
		return domain.Prediction{}, fmt.Errorf("%w: %v", errMalformed, err)
	}

	label, ok := c.matchLabel(lr.Label)
	if !ok {
		return domain.Prediction{}, fmt.Errorf("%w: %q", ErrUnknownLabel, lr.Label)
	}

	confidence := min(max(lr.Confidence, 0), 1)
	return domain.Prediction{Label: label, Confidence: confidence}, nil
}

// matchLabel finds the label ignoring case and surrounding spaces
func (c *Classifier) matchLabel(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, l := range c.labels {
		if strings.EqualFold(l, name) {
			return l, true
		}
	}
	return "", false
}
