package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"biocode/internal/apperrors"
	"biocode/internal/logging"
	"biocode/internal/models"
)

var completionCalls = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "biocode_gateway_completions_total",
	Help: "Chat completion requests to the AI provider, by outcome.",
}, []string{"outcome"})

// Client talks to an OpenAI-compatible endpoint. All requests share one
// rate limiter so a categorization fan-out cannot exhaust the provider
// quota.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	ttsModel   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logrus.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit overrides the default request rate (requests per second,
// with the given burst).
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// NewClient builds a gateway client for the given provider endpoint.
func NewClient(baseURL, apiKey, model, ttsModel string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		ttsModel:   ttsModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(2), 4),
		logger:     logging.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// complete runs one non-streaming chat completion. With a non-nil schema
// the request asks for a strict JSON-schema structured output.
func (c *Client) complete(ctx context.Context, messages []map[string]any, schemaName string, schema map[string]any) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", apperrors.Gatewayf("rate limit wait: %v", err)
	}

	reqBody := map[string]any{
		"model":    c.model,
		"messages": messages,
		"stream":   false,
	}
	if schema != nil {
		reqBody["response_format"] = map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   schemaName,
				"strict": true,
				"schema": schema,
			},
		}
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(reqJSON))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		completionCalls.WithLabelValues("error").Inc()
		c.logger.WithFields(logrus.Fields{
			"schema": schemaName,
			"error":  err.Error(),
		}).Error("Gateway request failed")
		return "", apperrors.Gatewayf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		completionCalls.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(resp.Body)
		c.logger.WithFields(logrus.Fields{
			"schema": schemaName,
			"status": resp.StatusCode,
		}).Error("Gateway returned non-200")
		return "", apperrors.Gatewayf("API error (status %d): %s", resp.StatusCode, truncateBody(body))
	}
	completionCalls.WithLabelValues("ok").Inc()
	c.logger.WithFields(logrus.Fields{
		"schema":   schemaName,
		"duration": time.Since(started).Round(time.Millisecond).String(),
	}).Debug("Gateway completion finished")

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", apperrors.Gatewayf("failed to decode response: %v", err)
	}
	if len(result.Choices) == 0 {
		return "", apperrors.Gatewayf("no choices in response")
	}
	return result.Choices[0].Message.Content, nil
}

// completeJSON runs a structured completion and unmarshals the content.
func (c *Client) completeJSON(ctx context.Context, messages []map[string]any, schemaName string, schema map[string]any, out any) error {
	content, err := c.complete(ctx, messages, schemaName, schema)
	if err != nil {
		return err
	}
	cleaned := stripCodeFence(content)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		c.logger.WithFields(logrus.Fields{
			"schema": schemaName,
			"error":  err.Error(),
		}).Warn("Malformed structured output")
		return apperrors.Gatewayf("malformed %s output: %v", schemaName, err)
	}
	return nil
}

// stripCodeFence removes a ```json fence some models wrap structured
// output in even when response_format is set.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func truncateBody(body []byte) string {
	const max = 512
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max]) + "..."
}

func systemUser(system, user string) []map[string]any {
	return []map[string]any{
		{"role": "system", "content": system},
		{"role": "user", "content": user},
	}
}

// partsMessage builds a single user message mixing text and image parts,
// using data URLs for the images.
func partsMessage(instruction string, parts []Part) map[string]any {
	content := []map[string]any{{"type": "text", "text": instruction}}
	for _, p := range parts {
		if p.Data == nil {
			content = append(content, map[string]any{"type": "text", "text": p.Text})
			continue
		}
		dataURL := "data:" + p.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
		content = append(content, map[string]any{
			"type":      "image_url",
			"image_url": map[string]any{"url": dataURL},
		})
	}
	return map[string]any{"role": "user", "content": content}
}

// chatMessages converts stored history to wire messages. The stored
// "model" role maps to "assistant"; "system" turns stay system.
func chatMessages(system string, history []models.ChatMessage) []map[string]any {
	messages := []map[string]any{{"role": "system", "content": system}}
	for _, m := range history {
		role := m.Role
		if role == models.RoleModel {
			role = "assistant"
		}
		messages = append(messages, map[string]any{"role": role, "content": m.Content})
	}
	return messages
}
