// Package pipeline orchestrates one classification: ready model, inference,
// top-ranked label, category mapping.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/chai2010/webp"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/waste-scanner/pkg/mapper"
	"github.com/menta2k/waste-scanner/pkg/model"
	"github.com/menta2k/waste-scanner/pkg/types"
)

// Pipeline runs classifications against a shared model provider and maps the
// top-ranked label through the category rule table.
type Pipeline struct {
	provider *model.Provider
	mapper   *mapper.Mapper
}

// New creates a pipeline. The provider is borrowed, not owned: multiple
// pipelines may share one provider and its single model load.
func New(provider *model.Provider, m *mapper.Mapper) *Pipeline {
	return &Pipeline{provider: provider, mapper: m}
}

// Classify decodes a still-image blob and classifies it.
//
// Decode failures return *types.DecodeError. Model load failures propagate as
// *types.ModelLoadError, inference failures as *types.InferenceError.
func (p *Pipeline) Classify(ctx context.Context, blob []byte) (types.ClassificationResult, error) {
	img, err := decodeImage(blob)
	if err != nil {
		return types.ClassificationResult{}, &types.DecodeError{Err: err}
	}
	return p.ClassifyImage(ctx, img)
}

// ClassifyImage classifies an already-decoded image, e.g. a live video frame.
// Live mode uses this path so a frame the capture pipeline already materialized
// is never re-decoded on every tick.
func (p *Pipeline) ClassifyImage(ctx context.Context, img image.Image) (types.ClassificationResult, error) {
	classifier, err := p.provider.EnsureReady(ctx)
	if err != nil {
		return types.ClassificationResult{}, err
	}

	predictions, err := classifier.Classify(ctx, img)
	if err != nil {
		return types.ClassificationResult{}, &types.InferenceError{Err: err}
	}

	if len(predictions) == 0 {
		return p.mapper.Unknown("", 0), nil
	}

	top := predictions[0]
	return p.mapper.MapLabel(top.Label, top.Probability), nil
}

// decodeImage decodes an image from byte data with WebP support.
func decodeImage(data []byte) (image.Image, error) {
	// Try standard image.Decode first
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}

	// Fallback: explicit WebP decode
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}

	return nil, fmt.Errorf("image: unknown or unsupported format")
}
