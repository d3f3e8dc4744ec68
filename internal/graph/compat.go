package graph

import (
	"fmt"
	"strings"

	"github.com/lumenworks/reelgraph/pkg/schema"
)

// kindIO declares the accepted input kinds and produced output kinds of a
// node kind. Comments declare neither: they are annotation-only and can
// never be wired.
type kindIO struct {
	Inputs  []schema.DataKind
	Outputs []schema.DataKind
}

var ioTable = map[schema.NodeKind]kindIO{
	schema.KindText:          {Inputs: []schema.DataKind{schema.DataText}, Outputs: []schema.DataKind{schema.DataText}},
	schema.KindMasterPrompt:  {Inputs: []schema.DataKind{schema.DataText}, Outputs: []schema.DataKind{schema.DataText}},
	schema.KindModifier:      {Inputs: []schema.DataKind{schema.DataText}, Outputs: []schema.DataKind{schema.DataText}},
	schema.KindEnhancement:   {Inputs: []schema.DataKind{schema.DataText}, Outputs: []schema.DataKind{schema.DataText}},
	schema.KindImage:         {Inputs: []schema.DataKind{schema.DataText, schema.DataImage}, Outputs: []schema.DataKind{schema.DataImage}},
	schema.KindImageUpload:   {Outputs: []schema.DataKind{schema.DataImage}},
	schema.KindVideo:         {Inputs: []schema.DataKind{schema.DataImage, schema.DataVideo}, Outputs: []schema.DataKind{schema.DataVideo}},
	schema.KindGenerator:     {Inputs: []schema.DataKind{schema.DataText, schema.DataImage}, Outputs: []schema.DataKind{schema.DataImage, schema.DataVideo}},
	schema.KindCamera:        {Inputs: []schema.DataKind{schema.DataImage}, Outputs: []schema.DataKind{schema.DataVideo}},
	schema.KindCameraAngle:   {Inputs: []schema.DataKind{schema.DataImage}, Outputs: []schema.DataKind{schema.DataImage}},
	schema.KindArraySplitter: {Inputs: []schema.DataKind{schema.DataAny}, Outputs: []schema.DataKind{schema.DataAny}},
	schema.KindComment:       {},
}

// KnownKind reports whether kind is part of the node vocabulary.
func KnownKind(kind schema.NodeKind) bool {
	_, ok := ioTable[kind]
	return ok
}

// PrimaryOutput returns the first declared output kind of a node kind.
// Used by the executor to classify what a source node contributes.
func PrimaryOutput(kind schema.NodeKind) (schema.DataKind, bool) {
	io, ok := ioTable[kind]
	if !ok || len(io.Outputs) == 0 {
		return "", false
	}
	return io.Outputs[0], true
}

// ConnectionCheck is the result of validating a proposed edge.
type ConnectionCheck struct {
	Valid  bool
	Reason string
}

// IsValidConnection decides whether an edge from a sourceKind node to a
// targetKind node is legal. Pure function over the static IO table.
//
// Rule order: unknown kinds, comments, missing outputs, missing inputs,
// then pair matching. A pair matches when either side is the wildcard,
// both are equal, or a text output drives a video input (text may prompt
// a video generator directly).
func IsValidConnection(sourceKind, targetKind schema.NodeKind) ConnectionCheck {
	src, srcOK := ioTable[sourceKind]
	tgt, tgtOK := ioTable[targetKind]
	if !srcOK || !tgtOK {
		return ConnectionCheck{Reason: "unknown node type"}
	}

	if sourceKind == schema.KindComment || targetKind == schema.KindComment {
		return ConnectionCheck{Reason: "comment nodes cannot be connected"}
	}

	if len(src.Outputs) == 0 {
		return ConnectionCheck{Reason: "source has no outputs"}
	}
	if len(tgt.Inputs) == 0 {
		return ConnectionCheck{Reason: "target has no inputs"}
	}

	for _, out := range src.Outputs {
		for _, in := range tgt.Inputs {
			if out == schema.DataAny || in == schema.DataAny {
				return ConnectionCheck{Valid: true}
			}
			if out == in {
				return ConnectionCheck{Valid: true}
			}
			if out == schema.DataText && in == schema.DataVideo {
				return ConnectionCheck{Valid: true}
			}
		}
	}

	return ConnectionCheck{Reason: fmt.Sprintf(
		"incompatible types: %s outputs [%s], %s accepts [%s]",
		sourceKind, joinKinds(src.Outputs), targetKind, joinKinds(tgt.Inputs))}
}

type kindPair struct {
	source, target schema.NodeKind
}

// friendlyMessages covers the bad pairs users hit most often on the canvas.
var friendlyMessages = map[kindPair]string{
	{schema.KindVideo, schema.KindText}:        "a video output cannot feed a text node",
	{schema.KindVideo, schema.KindImage}:       "a video output cannot feed an image node; extract a frame with a camera angle node first",
	{schema.KindImage, schema.KindText}:        "an image output cannot feed a text node",
	{schema.KindVideo, schema.KindEnhancement}: "a video output cannot feed a prompt enhancement node",
	{schema.KindImageUpload, schema.KindText}:  "an uploaded image cannot feed a text node",
}

// ConnectionErrorMessage returns a human-readable rejection message for a
// source/target kind pair, falling back to the validator's generic reason.
func ConnectionErrorMessage(sourceKind, targetKind schema.NodeKind) string {
	if msg, ok := friendlyMessages[kindPair{sourceKind, targetKind}]; ok {
		return msg
	}
	return IsValidConnection(sourceKind, targetKind).Reason
}

// Generates reports whether executing a node of this kind performs a
// generation side effect. Pure text/prompt nodes are inputs, not
// generators, and are skipped by cascade execution.
func Generates(kind schema.NodeKind) bool {
	switch kind {
	case schema.KindImage, schema.KindVideo, schema.KindGenerator,
		schema.KindCamera, schema.KindCameraAngle, schema.KindEnhancement:
		return true
	default:
		return false
	}
}

func joinKinds(kinds []schema.DataKind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}
