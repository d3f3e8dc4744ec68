package providers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lumenworks/reelgraph/internal/xjson"
	"github.com/lumenworks/reelgraph/pkg/schema"
)

// MediaConfig configures the remote media generation client.
type MediaConfig struct {
	BaseURL         string
	APIKey          string
	RequestTimeout  time.Duration
	MaxResponseBody int64
}

const (
	defaultMediaTimeout    = 5 * time.Minute // video jobs are slow
	defaultMaxResponseBody = 1 * 1024 * 1024
)

// MediaClient calls a media generation HTTP API. It implements the image,
// video, and rotation capabilities; pair it with an LLM text provider via
// Suite for a full Generator.
type MediaClient struct {
	config MediaConfig
	client *http.Client
}

// NewMediaClient validates the config and builds a client.
func NewMediaClient(cfg MediaConfig) (*MediaClient, error) {
	u, err := url.ParseRequestURI(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, schema.NewErrorf(schema.ErrCodeValidation, "invalid media base url %q", cfg.BaseURL)
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultMediaTimeout
	}
	if cfg.MaxResponseBody <= 0 {
		cfg.MaxResponseBody = defaultMaxResponseBody
	}
	return &MediaClient{
		config: cfg,
		client: &http.Client{Timeout: cfg.RequestTimeout},
	}, nil
}

type generateResponse struct {
	URL   string `json:"url"`
	Error string `json:"error,omitempty"`
}

func (c *MediaClient) GenerateImage(ctx context.Context, prompt, model string, opts ImageOptions) (string, error) {
	payload := map[string]any{
		"prompt":     prompt,
		"model":      model,
		"resolution": opts.Resolution,
		"seed":       opts.Seed,
	}
	if len(opts.References) > 0 {
		payload["references"] = opts.References
	}
	return c.post(ctx, "/v1/images", payload)
}

func (c *MediaClient) GenerateVideo(ctx context.Context, prompt, model string, opts VideoOptions) (string, error) {
	payload := map[string]any{
		"prompt":     prompt,
		"model":      model,
		"resolution": opts.Resolution,
		"duration":   opts.Duration,
		"fps":        opts.FPS,
		"guidance":   opts.Guidance,
	}
	if opts.ImageURL != "" {
		payload["image_url"] = opts.ImageURL
	}
	return c.post(ctx, "/v1/videos", payload)
}

func (c *MediaClient) RotateCharacter(ctx context.Context, imageURL, angle, view string) (string, error) {
	return c.post(ctx, "/v1/rotations", map[string]any{
		"image_url": imageURL,
		"angle":     angle,
		"view":      view,
	})
}

func (c *MediaClient) post(ctx context.Context, path string, payload map[string]any) (string, error) {
	body, err := xjson.Marshal(payload)
	if err != nil {
		return "", schema.NewError(schema.ErrCodeGenerationFailed, "failed to encode generation request").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", schema.NewError(schema.ErrCodeGenerationFailed, "failed to build generation request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", schema.NewError(schema.ErrCodeGenerationFailed, "generation request failed").WithCause(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseBody))
	if err != nil {
		return "", schema.NewError(schema.ErrCodeGenerationFailed, "failed to read generation response").WithCause(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", schema.NewErrorf(schema.ErrCodeGenerationFailed, "generation service returned %s", resp.Status).
			WithDetails(map[string]any{"status": resp.StatusCode, "body": string(raw)})
	}

	var out generateResponse
	if err := xjson.Unmarshal(raw, &out); err != nil {
		return "", schema.NewError(schema.ErrCodeGenerationFailed, "malformed generation response").WithCause(err)
	}
	if out.Error != "" {
		return "", schema.NewError(schema.ErrCodeGenerationFailed, out.Error)
	}
	if out.URL == "" {
		return "", schema.NewError(schema.ErrCodeGenerationFailed, "generation response contained no asset url")
	}
	return out.URL, nil
}
