package wastescanner

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/menta2k/waste-scanner/pkg/client"
	"github.com/menta2k/waste-scanner/pkg/types"
)

// fakeClassifier returns a fixed ranking.
type fakeClassifier struct {
	predictions []types.Prediction
}

func (f *fakeClassifier) Classify(_ context.Context, _ image.Image) ([]types.Prediction, error) {
	return f.predictions, nil
}

func fakeLoader(predictions []types.Prediction) func(context.Context) (client.Classifier, error) {
	return func(_ context.Context) (client.Classifier, error) {
		return &fakeClassifier{predictions: predictions}, nil
	}
}

// createTestImage creates a simple test image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}

	return img
}

func TestNew(t *testing.T) {
	scanner, err := New(fakeLoader(nil))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if scanner == nil {
		t.Fatal("New() returned nil")
	}

	if scanner.ModelReady() {
		t.Error("Model should not be ready before the first classification")
	}
}

func TestClassifyBytes(t *testing.T) {
	scanner, err := New(fakeLoader([]types.Prediction{
		{Label: "plastic bottle", Probability: 0.87},
	}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, createTestImage(64, 64)); err != nil {
		t.Fatal(err)
	}

	result, err := scanner.ClassifyBytes(context.Background(), buf.Bytes())
	if err != nil {
		t.Fatalf("ClassifyBytes failed: %v", err)
	}

	if result.Category != types.CategoryPlastic {
		t.Errorf("Expected PLASTIC, got %s", result.Category)
	}

	if result.Confidence != 0.87 {
		t.Errorf("Expected confidence 0.87, got %f", result.Confidence)
	}

	if !scanner.ModelReady() {
		t.Error("Model should be ready after a classification")
	}
}

func TestEnsureModelReady(t *testing.T) {
	scanner, err := New(fakeLoader(nil))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := scanner.EnsureModelReady(context.Background()); err != nil {
		t.Fatalf("EnsureModelReady failed: %v", err)
	}

	if !scanner.ModelReady() {
		t.Error("ModelReady should be true after EnsureModelReady")
	}
}

func TestMapLabel(t *testing.T) {
	scanner, err := New(fakeLoader(nil))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result := scanner.MapLabel("banana", 0.91)

	if result.Category != types.CategoryOrganic {
		t.Errorf("Expected ORGANIC, got %s", result.Category)
	}

	if result.Confidence != 0.91 {
		t.Errorf("Expected confidence 0.91, got %f", result.Confidence)
	}
}

func TestNewWithRules(t *testing.T) {
	rules := []types.Rule{
		{Keywords: []string{"widget"}, Category: types.CategoryMetal, Instructions: "metals bin"},
	}

	scanner, err := NewWithRules(fakeLoader(nil), rules)
	if err != nil {
		t.Fatalf("NewWithRules failed: %v", err)
	}

	if got := scanner.MapLabel("widget", 0.6).Category; got != types.CategoryMetal {
		t.Errorf("Expected custom rule to apply, got %s", got)
	}

	if got := scanner.MapLabel("banana", 0.6).Category; got != types.CategoryUnknown {
		t.Errorf("Custom table should replace the default one, got %s", got)
	}
}

func TestGetVersion(t *testing.T) {
	if GetVersion() != Version {
		t.Errorf("Expected version %s, got %s", Version, GetVersion())
	}
}
