package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"biocode/internal/apperrors"
)

// Voice mapping per mentor personality. Unknown personalities fall back to
// the default voice rather than failing the reply.
var personalityVoices = map[string]string{
	"malcolm-kingley":    "onyx",
	"fun-doctor-jim":     "echo",
	"loving-mother-mary": "shimmer",
	"coach-ekhart":       "alloy",
}

const defaultVoice = "onyx"

// GenerateSpeech implements Gateway. It returns the provider's encoded
// audio bytes unchanged; playback format is the client's concern.
func (c *Client) GenerateSpeech(ctx context.Context, text, personality string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperrors.Gatewayf("rate limit wait: %v", err)
	}

	voice := personalityVoices[personality]
	if voice == "" {
		voice = defaultVoice
	}

	reqBody := map[string]any{
		"model": c.ttsModel,
		"input": text,
		"voice": voice,
	}
	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/audio/speech", bytes.NewBuffer(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Gatewayf("speech request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, apperrors.Gatewayf("speech API error (status %d): %s", resp.StatusCode, truncateBody(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Gatewayf("failed to read audio: %v", err)
	}
	return audio, nil
}
