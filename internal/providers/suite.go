package providers

import "context"

// TextProvider is the prompt enhancement capability.
type TextProvider interface {
	GenerateText(ctx context.Context, prompt string, imageRefs []string) (string, error)
}

// MediaProvider is the asset generation capability set.
type MediaProvider interface {
	GenerateImage(ctx context.Context, prompt, model string, opts ImageOptions) (string, error)
	GenerateVideo(ctx context.Context, prompt, model string, opts VideoOptions) (string, error)
	RotateCharacter(ctx context.Context, imageURL, angle, view string) (string, error)
}

// Suite composes a text provider and a media provider into a Generator.
type Suite struct {
	Text  TextProvider
	Media MediaProvider
}

func (s *Suite) GenerateText(ctx context.Context, prompt string, imageRefs []string) (string, error) {
	return s.Text.GenerateText(ctx, prompt, imageRefs)
}

func (s *Suite) GenerateImage(ctx context.Context, prompt, model string, opts ImageOptions) (string, error) {
	return s.Media.GenerateImage(ctx, prompt, model, opts)
}

func (s *Suite) GenerateVideo(ctx context.Context, prompt, model string, opts VideoOptions) (string, error) {
	return s.Media.GenerateVideo(ctx, prompt, model, opts)
}

func (s *Suite) RotateCharacter(ctx context.Context, imageURL, angle, view string) (string, error) {
	return s.Media.RotateCharacter(ctx, imageURL, angle, view)
}

var _ Generator = (*Suite)(nil)
