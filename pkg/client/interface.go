package client

import (
	"context"
	"image"

	"github.com/menta2k/waste-scanner/pkg/types"
)

// Classifier is the external general-purpose image classifier. Implementations
// return a ranked list of predictions sorted descending by probability. The
// core treats the classifier as an opaque black box.
type Classifier interface {
	Classify(ctx context.Context, img image.Image) ([]types.Prediction, error)
}
