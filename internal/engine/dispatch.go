package engine

import (
	"context"

	"github.com/lumenworks/reelgraph/internal/graph"
	"github.com/lumenworks/reelgraph/internal/providers"
	"github.com/lumenworks/reelgraph/pkg/schema"
)

// dispatch routes one generating node to the provider capability matching
// its kind and its upstream source, returning the payload field to write
// and the generated value.
func (e *CascadeExecutor) dispatch(ctx context.Context, node *schema.Node) (string, string, error) {
	source := e.sourceNode(node.ID)
	settings := decodeSettings(node.Data)

	switch node.Kind {
	case schema.KindEnhancement:
		prompt := promptFor(node, source)
		if prompt == "" {
			return "", "", schema.NewError(schema.ErrCodeExecution, "no prompt to enhance").WithNode(node.ID)
		}
		out, err := e.gen.GenerateText(ctx, prompt, imageReferences(source))
		return schema.FieldContent, out, err

	case schema.KindImage:
		prompt := promptFor(node, source)
		if prompt == "" {
			return "", "", schema.NewError(schema.ErrCodeExecution, "no prompt available").WithNode(node.ID)
		}
		out, err := e.gen.GenerateImage(ctx, prompt, settings.Model, providers.ImageOptions{
			Resolution: settings.Resolution,
			Seed:       settings.Seed,
			References: imageReferences(source),
		})
		return schema.FieldImageURL, out, err

	case schema.KindVideo:
		// Text-class sources drive pure text-to-video; anything else must
		// have produced a start frame.
		var imageURL string
		if source != nil && sourceClass(source) != schema.DataText {
			url, err := e.requiredSourceImage(node, source)
			if err != nil {
				return "", "", err
			}
			imageURL = url
		}
		prompt := promptFor(node, source)
		if imageURL == "" && prompt == "" {
			return "", "", schema.NewError(schema.ErrCodeExecution, "no prompt available").WithNode(node.ID)
		}
		out, err := e.gen.GenerateVideo(ctx, prompt, settings.Model, providers.VideoOptions{
			ImageURL:   imageURL,
			Resolution: settings.Resolution,
			Duration:   settings.Duration,
			FPS:        settings.FPS,
			Guidance:   settings.Guidance,
		})
		return schema.FieldVideoURL, out, err

	case schema.KindCamera:
		imageURL, err := e.requiredSourceImage(node, source)
		if err != nil {
			return "", "", err
		}
		out, err := e.gen.GenerateVideo(ctx, promptFor(node, source), settings.Model, providers.VideoOptions{
			ImageURL:   imageURL,
			Resolution: settings.Resolution,
			Duration:   settings.Duration,
			FPS:        settings.FPS,
			Guidance:   settings.Guidance,
		})
		return schema.FieldVideoURL, out, err

	case schema.KindCameraAngle:
		imageURL, err := e.requiredSourceImage(node, source)
		if err != nil {
			return "", "", err
		}
		out, err := e.gen.RotateCharacter(ctx, imageURL, settings.Angle, settings.View)
		return schema.FieldImageURL, out, err

	case schema.KindGenerator:
		// Generators adapt to their input: text input renders an image,
		// image input animates it.
		if url := sourceImageURL(source); url != "" {
			out, err := e.gen.GenerateVideo(ctx, promptFor(node, source), settings.Model, providers.VideoOptions{
				ImageURL:   url,
				Resolution: settings.Resolution,
				Duration:   settings.Duration,
				FPS:        settings.FPS,
				Guidance:   settings.Guidance,
			})
			return schema.FieldVideoURL, out, err
		}
		prompt := promptFor(node, source)
		if prompt == "" {
			return "", "", schema.NewError(schema.ErrCodeExecution, "no prompt available").WithNode(node.ID)
		}
		out, err := e.gen.GenerateImage(ctx, prompt, settings.Model, providers.ImageOptions{
			Resolution: settings.Resolution,
			Seed:       settings.Seed,
		})
		return schema.FieldImageURL, out, err

	default:
		return "", "", schema.NewErrorf(schema.ErrCodeExecution, "node type %q is not executable", node.Kind).WithNode(node.ID)
	}
}

// sourceNode resolves the node feeding the given node, following the first
// incoming edge in insertion order.
func (e *CascadeExecutor) sourceNode(nodeID string) *schema.Node {
	edge := e.store.FirstIncomingEdge(nodeID)
	if edge == nil {
		return nil
	}
	src, ok := e.store.Node(edge.Source)
	if !ok {
		return nil
	}
	return src
}

// requiredSourceImage returns the upstream image URL for nodes that animate
// or transform an existing image.
func (e *CascadeExecutor) requiredSourceImage(node, source *schema.Node) (string, error) {
	if source == nil {
		return "", schema.NewError(schema.ErrCodeExecution, "no source node connected").WithNode(node.ID)
	}
	if url := sourceImageURL(source); url != "" {
		return url, nil
	}
	return "", schema.NewErrorf(schema.ErrCodeExecution, "source node %q has no result", source.ID).WithNode(node.ID)
}

// promptFor prefers the node's own prompt text and falls back to the
// upstream node's content (the usual case for text-to-image chains).
func promptFor(node, source *schema.Node) string {
	if c := node.Content(); c != "" {
		return c
	}
	if source == nil {
		return ""
	}
	return source.Content()
}

// sourceClass is the data kind a source node emits.
func sourceClass(source *schema.Node) schema.DataKind {
	out, ok := graph.PrimaryOutput(source.Kind)
	if !ok {
		return schema.DataAny
	}
	return out
}

// sourceImageURL reads the upstream node's generated or uploaded image, if
// any.
func sourceImageURL(source *schema.Node) string {
	if source == nil {
		return ""
	}
	return source.StringField(schema.FieldImageURL)
}

// imageReferences collects reference images for style consistency.
func imageReferences(source *schema.Node) []string {
	if url := sourceImageURL(source); url != "" {
		return []string{url}
	}
	return nil
}

// decodeSettings reads the typed settings sub-object out of an open node
// payload, tolerating missing keys and JSON-decoded numerics.
func decodeSettings(data map[string]any) schema.GeneratorSettings {
	raw, _ := data[schema.FieldSettings].(map[string]any)
	if raw == nil {
		return schema.GeneratorSettings{}
	}
	return schema.GeneratorSettings{
		Model:      stringParam(raw, "model", ""),
		Resolution: stringParam(raw, "resolution", ""),
		Seed:       intParam(raw, "seed", 0),
		Duration:   intParam(raw, "duration", 0),
		FPS:        intParam(raw, "fps", 0),
		Guidance:   floatParam(raw, "guidance", 0),
		Angle:      stringParam(raw, "angle", ""),
		View:       stringParam(raw, "view", ""),
	}
}

func stringParam(m map[string]any, key, defaultVal string) string {
	s, ok := m[key].(string)
	if !ok {
		return defaultVal
	}
	return s
}

func intParam(m map[string]any, key string, defaultVal int) int {
	switch n := m[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return defaultVal
	}
}

func floatParam(m map[string]any, key string, defaultVal float64) float64 {
	switch n := m[key].(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return defaultVal
	}
}
