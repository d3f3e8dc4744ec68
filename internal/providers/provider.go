// Package providers contains the media generation backends invoked by the
// cascade executor. A Generator turns prompts and upstream media references
// into hosted asset URLs; implementations wrap remote services or produce
// deterministic placeholder output for tests and offline work.
package providers

import "context"

// ImageOptions tunes a single image generation call.
type ImageOptions struct {
	Resolution string
	Seed       int
	// References are upstream image URLs used for style or character
	// consistency. May be empty.
	References []string
}

// VideoOptions tunes a single video generation call.
type VideoOptions struct {
	// ImageURL is the start frame, empty for pure text-to-video.
	ImageURL   string
	Resolution string
	Duration   int
	FPS        int
	Guidance   float64
}

// Generator is the full set of generation capabilities the executor can
// dispatch to. All calls block until the asset is ready or ctx is done.
type Generator interface {
	// GenerateText rewrites or enhances a prompt and returns the new text.
	// Image references, when present, give the model visual context to
	// describe.
	GenerateText(ctx context.Context, prompt string, imageRefs []string) (string, error)

	// GenerateImage returns the URL of a generated image.
	GenerateImage(ctx context.Context, prompt, model string, opts ImageOptions) (string, error)

	// GenerateVideo returns the URL of a generated video clip.
	GenerateVideo(ctx context.Context, prompt, model string, opts VideoOptions) (string, error)

	// RotateCharacter re-renders a character image from another angle and
	// view, returning the new image URL.
	RotateCharacter(ctx context.Context, imageURL, angle, view string) (string, error)
}
