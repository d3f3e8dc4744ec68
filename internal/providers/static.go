package providers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// StaticGenerator produces deterministic placeholder assets without any
// network calls. Used in tests and demo mode: the same prompt always yields
// the same URL, so cascades are reproducible.
type StaticGenerator struct {
	// Latency is added to every call to simulate generation time.
	Latency time.Duration
}

func (g *StaticGenerator) wait(ctx context.Context) error {
	if g.Latency <= 0 {
		return nil
	}
	t := time.NewTimer(g.Latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func fingerprint(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:12]
}

func (g *StaticGenerator) GenerateText(ctx context.Context, prompt string, imageRefs []string) (string, error) {
	if err := g.wait(ctx); err != nil {
		return "", err
	}
	return "Enhanced: " + prompt, nil
}

func (g *StaticGenerator) GenerateImage(ctx context.Context, prompt, model string, opts ImageOptions) (string, error) {
	if err := g.wait(ctx); err != nil {
		return "", err
	}
	return fmt.Sprintf("static://images/%s.png", fingerprint(prompt, model, opts.Resolution)), nil
}

func (g *StaticGenerator) GenerateVideo(ctx context.Context, prompt, model string, opts VideoOptions) (string, error) {
	if err := g.wait(ctx); err != nil {
		return "", err
	}
	return fmt.Sprintf("static://videos/%s.mp4", fingerprint(prompt, model, opts.ImageURL)), nil
}

func (g *StaticGenerator) RotateCharacter(ctx context.Context, imageURL, angle, view string) (string, error) {
	if err := g.wait(ctx); err != nil {
		return "", err
	}
	return fmt.Sprintf("static://images/%s_rotated.png", fingerprint(imageURL, angle, view)), nil
}

var _ Generator = (*StaticGenerator)(nil)
