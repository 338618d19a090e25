// Package synth is the capability boundary to the external text-to-audio
// converter. The workflow only needs one operation: text + voice in, audio
// bytes out.
package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Result is the output of one synthesis call.
type Result struct {
	Audio       []byte
	ContentType string
}

type Client interface {
	Synthesize(ctx context.Context, text, voice string) (Result, error)
}

// HTTPClient talks to a synthesizer service over HTTP. The request payload
// mirrors the submission API body; the response body is the raw audio.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	// No client-level timeout: the caller bounds each call via ctx.
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

type synthesizeRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

func (c *HTTPClient) Synthesize(ctx context.Context, text, voice string) (Result, error) {
	body, err := json.Marshal(synthesizeRequest{Text: text, Voice: voice})
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/synthesize", bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return Result{}, fmt.Errorf("synthesizer http %d: %s", res.StatusCode, string(errBody))
	}

	audio, err := io.ReadAll(res.Body)
	if err != nil {
		return Result{}, err
	}

	contentType := res.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return Result{Audio: audio, ContentType: contentType}, nil
}
