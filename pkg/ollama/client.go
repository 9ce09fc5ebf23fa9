package ollama

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/menta2k/waste-scanner/pkg/client"
	"github.com/menta2k/waste-scanner/pkg/types"
)

// Client wraps the Ollama API client as a waste-scanner classifier backend.
type Client struct {
	client  *api.Client
	model   string
	maxDim  int
	quality int
}

// NewClient creates a new Ollama classifier for the given server URL and model.
func NewClient(ollamaURL, model string) (*Client, error) {
	// Parse the provided URL
	parsedURL, err := url.Parse(ollamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}

	// Create base URL from the provided URL (removing path like /api/chat)
	baseURL := &url.URL{
		Scheme: parsedURL.Scheme,
		Host:   parsedURL.Host,
	}

	// Create client with the specified URL, ignoring environment
	c := api.NewClient(baseURL, http.DefaultClient)

	return &Client{
		client:  c,
		model:   model,
		maxDim:  1024,
		quality: 85,
	}, nil
}

// Check verifies that the Ollama server is reachable. Used as the load step
// by the model provider so an unreachable server fails fast instead of on the
// first classification.
func (c *Client) Check(ctx context.Context) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
	}
	if err := c.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("ollama server unreachable: %v", err)
	}
	return nil
}

// Classify sends the image to the vision model and returns the ranked
// prediction list, sorted descending by probability.
func (c *Client) Classify(ctx context.Context, img image.Image) ([]types.Prediction, error) {
	// Add timeout if context doesn't have one (vision models are slow on CPU)
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 300*time.Second)
		defer cancel()
	}

	imgB64, err := client.EncodeImage(img, "jpg", c.maxDim, c.quality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %v", err)
	}

	imgBytes, err := base64.StdEncoding.DecodeString(imgB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image: %v", err)
	}

	streamFalse := false
	req := &api.ChatRequest{
		Model: c.model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: client.ClassificationPrompt,
				Images:  []api.ImageData{api.ImageData(imgBytes)},
			},
		},
		Stream: &streamFalse,
	}

	var responseContent string
	err = c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		responseContent = resp.Message.Content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat error: %v", err)
	}

	if responseContent == "" {
		return nil, client.ErrEmptyResponse
	}

	return client.ParsePredictions(responseContent)
}
