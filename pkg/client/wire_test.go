package client

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"testing"
)

func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := uint8((x * 255) / width)
			g := uint8((y * 255) / height)
			img.Set(x, y, color.RGBA{r, g, 128, 255})
		}
	}

	return img
}

func TestParsePredictions(t *testing.T) {
	raw := `{"predictions":[{"label":"banana","probability":0.91},{"label":"apple","probability":0.4}]}`

	preds, err := ParsePredictions(raw)
	if err != nil {
		t.Fatalf("ParsePredictions failed: %v", err)
	}

	if len(preds) != 2 {
		t.Fatalf("Expected 2 predictions, got %d", len(preds))
	}

	if preds[0].Label != "banana" || preds[0].Probability != 0.91 {
		t.Errorf("Unexpected top prediction: %+v", preds[0])
	}
}

func TestParsePredictionsCodeFences(t *testing.T) {
	raw := "```json\n{\"predictions\":[{\"label\":\"plastic bottle\",\"probability\":0.87}]}\n```"

	preds, err := ParsePredictions(raw)
	if err != nil {
		t.Fatalf("ParsePredictions failed: %v", err)
	}

	if len(preds) != 1 || preds[0].Label != "plastic bottle" {
		t.Errorf("Expected fenced JSON to parse, got %+v", preds)
	}
}

func TestParsePredictionsTrailingCommas(t *testing.T) {
	raw := `{"predictions":[{"label":"can","probability":0.5},],}`

	preds, err := ParsePredictions(raw)
	if err != nil {
		t.Fatalf("ParsePredictions failed: %v", err)
	}

	if len(preds) != 1 || preds[0].Label != "can" {
		t.Errorf("Expected trailing commas to be tolerated, got %+v", preds)
	}
}

func TestParsePredictionsNonJSON(t *testing.T) {
	preds, err := ParsePredictions("I see a banana on a table.")
	if err != nil {
		t.Fatalf("ParsePredictions failed: %v", err)
	}

	// Chatty responses degrade to an empty ranking, not an error
	if len(preds) != 0 {
		t.Errorf("Expected empty ranking for non-JSON response, got %+v", preds)
	}
}

func TestParsePredictionsNormalization(t *testing.T) {
	raw := `{"predictions":[
		{"label":"  ","probability":0.9},
		{"label":"banana","probability":1.7},
		{"label":"apple","probability":-0.2},
		{"label":"pear","probability":0.5}
	]}`

	preds, err := ParsePredictions(raw)
	if err != nil {
		t.Fatalf("ParsePredictions failed: %v", err)
	}

	if len(preds) != 3 {
		t.Fatalf("Expected the empty label to be dropped, got %d predictions", len(preds))
	}

	// Clamped to [0,1] and re-sorted descending
	if preds[0].Label != "banana" || preds[0].Probability != 1.0 {
		t.Errorf("Unexpected first prediction: %+v", preds[0])
	}
	if preds[1].Label != "pear" {
		t.Errorf("Expected pear second after re-sort, got %+v", preds[1])
	}
	if preds[2].Probability != 0 {
		t.Errorf("Expected negative probability clamped to 0, got %f", preds[2].Probability)
	}
}

func TestEncodeImageResizesLongSide(t *testing.T) {
	img := createTestImage(400, 200)

	b64, err := EncodeImage(img, "jpg", 100, 85)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}

	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		t.Fatalf("Output is not valid base64: %v", err)
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Output is not a decodable image: %v", err)
	}

	if decoded.Bounds().Dx() != 100 {
		t.Errorf("Expected long side resized to 100, got %d", decoded.Bounds().Dx())
	}
}

func TestEncodeImageKeepsSmallImages(t *testing.T) {
	img := createTestImage(50, 40)

	b64, err := EncodeImage(img, "png", 100, 85)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}

	data, _ := base64.StdEncoding.DecodeString(b64)
	decoded, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Output is not a decodable image: %v", err)
	}

	if format != "png" {
		t.Errorf("Expected png output, got %s", format)
	}
	if decoded.Bounds().Dx() != 50 || decoded.Bounds().Dy() != 40 {
		t.Errorf("Small image should keep its size, got %dx%d",
			decoded.Bounds().Dx(), decoded.Bounds().Dy())
	}
}

func BenchmarkParsePredictions(b *testing.B) {
	raw := `{"predictions":[{"label":"banana","probability":0.91},{"label":"apple","probability":0.4}]}`

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ParsePredictions(raw)
	}
}
