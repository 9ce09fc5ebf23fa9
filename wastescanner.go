// Package wastescanner turns a still image or a live camera stream into a
// waste-disposal recommendation.
//
// A classification produces a category, a confidence score, human-readable
// disposal instructions and a short justification. Everything runs on the
// local machine: the image goes to a locally hosted vision model (Ollama or
// llama.cpp) and never leaves the device.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		wastescanner "github.com/menta2k/waste-scanner"
//	)
//
//	func main() {
//		scanner, err := wastescanner.New(
//			wastescanner.OllamaLoader("http://localhost:11434", "llava"))
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		result, err := scanner.ClassifyFile(context.Background(), "photo.jpg")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		fmt.Printf("%s (%.0f%%): %s\n",
//			result.Category, result.Confidence*100, result.DisposalInstructions)
//	}
//
// The package consists of four main components:
//
// 1. Model provider (pkg/model): coalescing lifecycle of the shared classifier
// 2. Category mapper (pkg/mapper): ordered first-match keyword rule table
// 3. Pipeline (pkg/pipeline): decode, inference, top-1, category mapping
// 4. Live scanner (pkg/livescan): single-flight sampling loop over a camera
//
// Disposal guidance always comes from the fixed rule table, never from the
// model, so the guidance shown to users is audit-stable regardless of what
// label the classifier produces. The live scanner schedules the next sample
// only after the previous one completes, which keeps exactly one inference in
// flight per session no matter how slow the model is.
package wastescanner

import (
	"context"
	"image"
	"os"

	"github.com/menta2k/waste-scanner/pkg/capture"
	"github.com/menta2k/waste-scanner/pkg/client"
	"github.com/menta2k/waste-scanner/pkg/livescan"
	"github.com/menta2k/waste-scanner/pkg/llamacpp"
	"github.com/menta2k/waste-scanner/pkg/mapper"
	"github.com/menta2k/waste-scanner/pkg/model"
	"github.com/menta2k/waste-scanner/pkg/ollama"
	"github.com/menta2k/waste-scanner/pkg/pipeline"
	"github.com/menta2k/waste-scanner/pkg/types"
)

// Version of the waste scanner library
const Version = "1.0.0"

// Scanner provides a high-level interface for waste classification.
type Scanner struct {
	provider *model.Provider
	mapper   *mapper.Mapper
	pipeline *pipeline.Pipeline
}

// New creates a Scanner with the built-in rule table.
func New(loader model.Loader) (*Scanner, error) {
	return NewWithRules(loader, mapper.DefaultRules())
}

// NewWithRules creates a Scanner with a custom ordered rule table.
func NewWithRules(loader model.Loader, rules []types.Rule) (*Scanner, error) {
	provider := model.NewProvider(loader)
	m := mapper.NewWithRules(rules)
	return &Scanner{
		provider: provider,
		mapper:   m,
		pipeline: pipeline.New(provider, m),
	}, nil
}

// OllamaLoader returns a model loader backed by an Ollama server.
func OllamaLoader(url, modelName string) model.Loader {
	return func(ctx context.Context) (client.Classifier, error) {
		c, err := ollama.NewClient(url, modelName)
		if err != nil {
			return nil, err
		}
		if err := c.Check(ctx); err != nil {
			return nil, err
		}
		return c, nil
	}
}

// LlamaCppLoader returns a model loader backed by a llama.cpp server.
func LlamaCppLoader(url, modelName string) model.Loader {
	return func(ctx context.Context) (client.Classifier, error) {
		c, err := llamacpp.NewClient(url, modelName)
		if err != nil {
			return nil, err
		}
		if err := c.Check(ctx); err != nil {
			return nil, err
		}
		return c, nil
	}
}

// ClassifyFile classifies a still image loaded from a file.
func (s *Scanner) ClassifyFile(ctx context.Context, path string) (types.ClassificationResult, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return types.ClassificationResult{}, err
	}
	return s.pipeline.Classify(ctx, blob)
}

// ClassifyBytes classifies a still-image blob in any common raster encoding.
func (s *Scanner) ClassifyBytes(ctx context.Context, blob []byte) (types.ClassificationResult, error) {
	return s.pipeline.Classify(ctx, blob)
}

// ClassifyImage classifies an already-decoded image.
func (s *Scanner) ClassifyImage(ctx context.Context, img image.Image) (types.ClassificationResult, error) {
	return s.pipeline.ClassifyImage(ctx, img)
}

// MapLabel exposes the deterministic label-to-category mapping directly.
func (s *Scanner) MapLabel(label string, confidence float64) types.ClassificationResult {
	return s.mapper.MapLabel(label, confidence)
}

// ModelReady reports whether the classifier is loaded. UI layers can use this
// for readiness indicators without touching core state.
func (s *Scanner) ModelReady() bool {
	return s.provider.Ready()
}

// EnsureModelReady loads the classifier eagerly. Optional: classification
// calls load it on demand.
func (s *Scanner) EnsureModelReady(ctx context.Context) error {
	_, err := s.provider.EnsureReady(ctx)
	return err
}

// NewLiveScanner creates a live-scan scheduler that samples frames from the
// given capture device and forwards accepted results to the sink.
func (s *Scanner) NewLiveScanner(device capture.Device, sink livescan.Sink, config livescan.Config) *livescan.Scheduler {
	return livescan.NewWithConfig(s.pipeline, device, sink, config)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
