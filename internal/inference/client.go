package inference

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the model sidecar service over HTTP. It implements
// TextClassifier, ImageClassifier and Transcriber.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new model service client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type classifyTextRequest struct {
	Text string `json:"text"`
}

type classifyImageRequest struct {
	ImageBase64 string `json:"image_base64"`
}

type transcribeRequest struct {
	AudioBase64 string `json:"audio_base64"`
}

type classifyResponse struct {
	Results []LabelScore `json:"results"`
}

type transcribeResponse struct {
	Text string `json:"text"`
}

// HealthResponse reports the sidecar's model load status.
type HealthResponse struct {
	Status       string          `json:"status"`
	ModelsLoaded map[string]bool `json:"models_loaded"`
	Device       string          `json:"device"`
}

// ClassifyText scores text with the toxicity model.
func (c *Client) ClassifyText(ctx context.Context, text string) ([]LabelScore, error) {
	var result classifyResponse
	if err := c.post(ctx, "/api/v1/classify/text", classifyTextRequest{Text: text}, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// ClassifyImage scores an image with the deepfake and NSFW models.
func (c *Client) ClassifyImage(ctx context.Context, image []byte) ([]LabelScore, error) {
	req := classifyImageRequest{ImageBase64: base64.StdEncoding.EncodeToString(image)}
	var result classifyResponse
	if err := c.post(ctx, "/api/v1/classify/image", req, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// Transcribe converts speech audio to text.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	req := transcribeRequest{AudioBase64: base64.StdEncoding.EncodeToString(audio)}
	var result transcribeResponse
	if err := c.post(ctx, "/api/v1/transcribe", req, &result); err != nil {
		return "", err
	}
	return result.Text, nil
}

// HealthCheck checks if the model service is healthy.
func (c *Client) HealthCheck(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/v1/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("model service returned status %d: %s", resp.StatusCode, string(body))
	}

	var result HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

func (c *Client) post(ctx context.Context, path string, reqBody, out interface{}) error {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("model service returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
