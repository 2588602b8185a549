package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/examgraph/examgraph/generate"
	"github.com/examgraph/examgraph/model"
)

// Config holds the chat completion endpoint settings. BaseURL points at an
// OpenAI-compatible API root (the path /chat/completions is appended).
type Config struct {
	BaseURL        string
	Token          string
	Model          string
	Temperature    float64
	MaxTokens      int
	TimeoutSeconds int
}

// Client is a blocking OpenAI-compatible chat client. It implements both
// the question generation and the judgment collaborator roles; it performs
// no internal retries.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a chat client, validating the endpoint configuration.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, &model.ConfigurationError{Field: "llm.base_url", Reason: "must not be empty"}
	}
	if cfg.Model == "" {
		return nil, &model.ConfigurationError{Field: "llm.model", Reason: "must not be empty"}
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 60
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		log: logger,
	}, nil
}

// Generate asks the model for an exam question over the retrieval context.
// Any transport failure or unusable payload surfaces as a GenerationError;
// an empty context is refused locally without spending a call.
func (c *Client) Generate(ctx context.Context, topic string, contexts []string, variant model.Variant) (*model.Question, error) {
	if len(contexts) == 0 {
		return nil, &model.GenerationError{Topic: topic, Variant: variant, Err: errors.New("empty retrieval context")}
	}

	prompt := generate.BuildPrompt(topic, contexts, variant)

	content, err := c.chat(ctx, prompt)
	if err != nil {
		return nil, &model.GenerationError{Topic: topic, Variant: variant, Err: err}
	}

	var question model.Question
	if err := json.Unmarshal([]byte(content), &question); err != nil {
		return nil, &model.GenerationError{Topic: topic, Variant: variant, Err: fmt.Errorf("invalid question JSON: %w", err)}
	}
	if strings.TrimSpace(question.Text) == "" {
		return nil, &model.GenerationError{Topic: topic, Variant: variant, Err: errors.New("empty question text")}
	}

	return &question, nil
}

var criterionInstructions = map[model.Criterion]string{
	model.CriterionRelevance:    "Relevance (0-1): Is the question about the topic covered by the context?",
	model.CriterionFaithfulness: "Faithfulness (0-1): Is the implied answer fully supported by the context?",
	model.CriterionIntegration:  "Integration (0-1): Does answering REQUIRE combining info from multiple snippets? (1.0 = multi-hop, 0.0 = single-hop).",
	model.CriterionComplexity:   "Complexity (0-1): Does the question require deep reasoning, comparison, or synthesis? (1.0 = deep analysis, 0.0 = simple recall/lookup).",
}

// Judge scores one rubric criterion. Out-of-range or non-numeric responses
// are reported as a JudgmentFormatError so the evaluator can clamp them;
// transport failures are returned as-is and default the criterion to 0.
func (c *Client) Judge(ctx context.Context, question *model.Question, contexts []string, criterion model.Criterion) (float64, error) {
	prompt := fmt.Sprintf(`Evaluate this exam question against its context.

Question: %s
Rationale: %s
Context:
%s
Criterion:
%s

Output JSON: { "score": float }`,
		question.Text,
		question.Rationale,
		generate.SnippetList(contexts),
		criterionInstructions[criterion],
	)

	content, err := c.chat(ctx, prompt)
	if err != nil {
		return 0, err
	}

	value, err := parseScore(content)
	if err != nil {
		return 0, &model.JudgmentFormatError{Criterion: criterion, Raw: content, Value: math.NaN()}
	}
	if value < 0 || value > 1 {
		return 0, &model.JudgmentFormatError{Criterion: criterion, Raw: content, Value: value}
	}

	return value, nil
}

// parseScore accepts either the requested {"score": x} payload or a bare
// number, which smaller models tend to return.
func parseScore(content string) (float64, error) {
	var payload struct {
		Score *float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err == nil && payload.Score != nil {
		return *payload.Score, nil
	}
	return strconv.ParseFloat(strings.TrimSpace(content), 64)
}

func (c *Client) chat(ctx context.Context, prompt string) (string, error) {
	reqBody := ChatRequest{
		Model: c.cfg.Model,
		Messages: []ChatMessage{
			{Role: "user", Content: prompt},
		},
		ResponseFormat: &ResponseFormat{Type: "json_object"},
		Temperature:    c.cfg.Temperature,
		MaxTokens:      c.cfg.MaxTokens,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       string(body),
		}
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	c.log.Debug("Chat completion",
		slog.Int("prompt_tokens", chatResp.Usage.PromptTokens),
		slog.Int("completion_tokens", chatResp.Usage.CompletionTokens),
	)

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return "", errors.New("empty response from LLM")
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}
