package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"concierge/config"
	apperrors "concierge/errors"

	"go.uber.org/zap"
)

// Message is one chat-completions message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Example is a few-shot user/assistant exchange.
type Example struct {
	User      string
	Assistant string
}

// Request is everything the provider sees for one completion.
type Request struct {
	Model    string
	System   string
	Examples []Example
	History  []Message
	User     string
}

// Messages lays the request out as system, few-shot pairs, prior turns and
// finally the current user message.
func (r Request) Messages() []Message {
	msgs := make([]Message, 0, 2+2*len(r.Examples)+len(r.History))
	if strings.TrimSpace(r.System) != "" {
		msgs = append(msgs, Message{Role: "system", Content: r.System})
	}
	for _, ex := range r.Examples {
		msgs = append(msgs,
			Message{Role: "user", Content: ex.User},
			Message{Role: "assistant", Content: ex.Assistant})
	}
	msgs = append(msgs, r.History...)
	msgs = append(msgs, Message{Role: "user", Content: r.User})
	return msgs
}

type chatRequest struct {
	Model       string    `json:"model,omitempty"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Client talks to an OpenAI-compatible /v1/chat/completions endpoint.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.LLMRequestTimeout},
		logger:     logger,
	}
}

// Complete performs a non-streaming chat completion call. Transport
// failures, non-200 statuses and malformed bodies are all reported as
// errors wrapping ErrLLMCommunication.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	temperature := 0.2
	reqBody := chatRequest{
		Model:       req.Model,
		Messages:    req.Messages(),
		Stream:      false,
		Temperature: &temperature,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/chat/completions", strings.TrimRight(c.cfg.LLMHost, "/"))

	attempts := c.cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var resp *http.Response
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
		if err != nil {
			return "", fmt.Errorf("create chat request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if c.cfg.LLMAPIKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+c.cfg.LLMAPIKey)
		}

		r, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = err
			// Do not retry on context cancellation/deadline
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if r.StatusCode == http.StatusServiceUnavailable || r.StatusCode == http.StatusTooManyRequests {
			io.Copy(io.Discard, r.Body)
			r.Body.Close()
			lastErr = fmt.Errorf("llm server status %s", r.Status)
			c.logger.Warn("LLM service unavailable, retrying", zap.Int("attempt", attempt+1), zap.Int("status", r.StatusCode))
			if err := c.backoffSleep(ctx, attempt); err != nil {
				lastErr = err
				break
			}
			continue
		}
		resp = r
		break
	}
	if resp == nil {
		return "", fmt.Errorf("%w: no response from LLM server: %v", apperrors.ErrLLMCommunication, lastErr)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read chat response: %v", apperrors.ErrLLMCommunication, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: llm server status %s: %s", apperrors.ErrLLMCommunication, resp.Status, strings.TrimSpace(string(bodyBytes)))
	}

	var cr chatResponse
	if err := json.Unmarshal(bodyBytes, &cr); err != nil {
		return "", fmt.Errorf("%w: decode chat response: %v", apperrors.ErrLLMCommunication, err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("%w: no response choices from llm server", apperrors.ErrLLMCommunication)
	}
	return cr.Choices[0].Message.Content, nil
}

// backoffSleep waits base·2^attempt (capped, with jitter) or until ctx ends.
func (c *Client) backoffSleep(ctx context.Context, attempt int) error {
	base := c.cfg.RetryDelaySeconds
	if base <= 0 {
		base = time.Second
	}
	d := base * time.Duration(1<<attempt)
	if maxWait := c.cfg.LLMBackoffMaxSeconds; maxWait > 0 && d > maxWait {
		d = maxWait
	}
	jitterRatio := c.cfg.LLMBackoffJitterRatio
	if jitterRatio < 0 || jitterRatio > 1 {
		jitterRatio = 0.1
	}
	jitter := time.Duration(float64(d) * jitterRatio)
	d = d - jitter + time.Duration(time.Now().UnixNano()%int64(2*jitter+1))

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
