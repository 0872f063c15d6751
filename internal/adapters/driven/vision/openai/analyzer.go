// Package openai provides an image analysis adapter using the OpenAI API.
// Images are sent inline as base64 data URLs so local files need no hosting.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driven"
)

// Ensure Analyzer implements the interface.
var _ driven.ImageAnalyzer = (*Analyzer)(nil)

// Default configuration values.
const (
	DefaultBaseURL           = "https://api.openai.com/v1"
	DefaultVisionModel       = "gpt-4o-mini"
	DefaultTimeout           = 120 * time.Second
	DefaultRequestsPerMinute = 20

	// maxImageBytes rejects images the API would refuse anyway. Base64
	// inflates the payload by a third, so this stays under the 20MB limit.
	maxImageBytes = 14 << 20

	describePrompt = "Describe this image in one or two sentences for a study note. " +
		"Focus on what it shows, not its style. Reply with the description only."
)

// mimeTypes maps supported image extensions to their MIME type.
var mimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Config holds configuration for the OpenAI vision analyzer.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// Model is the vision-capable model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// RequestsPerMinute caps the request rate (default: 20).
	RequestsPerMinute int
}

// Analyzer describes images using an OpenAI vision model.
type Analyzer struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
	apiKey  string
	model   string
}

// visionRequest is the OpenAI /chat/completions request with image content.
type visionRequest struct {
	Model     string          `json:"model"`
	Messages  []visionMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

// visionMessage carries mixed text and image content parts.
type visionMessage struct {
	Role    string          `json:"role"`
	Content []visionContent `json:"content"`
}

// visionContent is one content part: either text or an image URL.
type visionContent struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *visionImageURL `json:"image_url,omitempty"`
}

// visionImageURL wraps the image data URL.
type visionImageURL struct {
	URL string `json:"url"`
}

// visionResponse is the OpenAI /chat/completions response format.
type visionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewAnalyzer creates a new OpenAI vision analyzer.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai vision: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultVisionModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = DefaultRequestsPerMinute
	}

	return &Analyzer{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Describe returns a short textual description of the image at path.
func (a *Analyzer) Describe(ctx context.Context, path string) (string, error) {
	dataURL, err := encodeImage(path)
	if err != nil {
		// A missing or oversized file will not fix itself on retry.
		return "", domain.NewCollaboratorError("vision", "describe", false, err)
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return "", domain.NewCollaboratorError("vision", "describe", true, err)
	}

	reqBody := visionRequest{
		Model: a.model,
		Messages: []visionMessage{
			{
				Role: "user",
				Content: []visionContent{
					{Type: "text", Text: describePrompt},
					{Type: "image_url", ImageURL: &visionImageURL{URL: dataURL}},
				},
			},
		},
		MaxTokens: 300,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		a.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", domain.NewCollaboratorError("vision", "describe", true,
			fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.NewCollaboratorError("vision", "describe", true,
			fmt.Errorf("read response: %w", err))
	}

	var visionResp visionResponse
	if err := json.Unmarshal(body, &visionResp); err != nil {
		return "", domain.NewCollaboratorError("vision", "describe", false,
			fmt.Errorf("decode response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(body)
		if visionResp.Error != nil {
			msg = visionResp.Error.Message
		}
		return "", domain.NewCollaboratorError("vision", "describe", retriableStatus(resp.StatusCode),
			fmt.Errorf("openai error (status %d): %s", resp.StatusCode, msg))
	}

	if visionResp.Error != nil {
		return "", domain.NewCollaboratorError("vision", "describe", false,
			fmt.Errorf("openai error: %s", visionResp.Error.Message))
	}

	if len(visionResp.Choices) == 0 {
		return "", domain.NewCollaboratorError("vision", "describe", false,
			fmt.Errorf("openai: no response choices returned"))
	}

	return strings.TrimSpace(visionResp.Choices[0].Message.Content), nil
}

// encodeImage reads the file at path and returns it as a base64 data URL.
func encodeImage(path string) (string, error) {
	mime, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", fmt.Errorf("unsupported image type: %s", filepath.Ext(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat image: %w", err)
	}
	if info.Size() > maxImageBytes {
		return "", fmt.Errorf("image too large: %d bytes (limit %d)", info.Size(), maxImageBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// retriableStatus reports whether the HTTP status indicates a transient
// failure (rate limiting or server-side trouble).
func retriableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}
