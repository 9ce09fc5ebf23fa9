package client

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"regexp"
	"sort"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/menta2k/waste-scanner/pkg/types"
)

// EncodeImage converts an image to base64 for sending to vision models.
// If maxDim > 0 the long side is downscaled to maxDim before encoding.
func EncodeImage(img image.Image, format string, maxDim, quality int) (string, error) {
	if maxDim > 0 {
		b := img.Bounds()
		w, h := b.Dx(), b.Dy()
		if w > maxDim || h > maxDim {
			if w >= h {
				img = imaging.Resize(img, maxDim, 0, imaging.Lanczos)
			} else {
				img = imaging.Resize(img, 0, maxDim, imaging.Lanczos)
			}
		}
	}

	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return "", err
		}
	default: // jpg
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return "", err
		}
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// predictionList matches the JSON envelope requested from the model.
type predictionList struct {
	Predictions []types.Prediction `json:"predictions"`
}

// ParsePredictions parses the JSON response from the vision model into a
// ranked prediction list. Malformed responses degrade to an empty list rather
// than an error, so a chatty model never turns into a hard failure.
func ParsePredictions(raw string) ([]types.Prediction, error) {
	raw = sanitizeModelJSON(raw)

	// If the response doesn't look like JSON, return an empty ranking
	if !strings.HasPrefix(strings.TrimSpace(raw), "{") {
		return nil, nil
	}

	var list predictionList
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		// Try conservative brace-slice approach
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start < 0 || end <= start {
			return nil, nil
		}
		if err2 := json.Unmarshal([]byte(raw[start:end+1]), &list); err2 != nil {
			return nil, nil
		}
	}

	return normalizePredictions(list.Predictions), nil
}

// normalizePredictions drops empty labels, clamps probabilities to [0,1] and
// restores the descending order the contract promises.
func normalizePredictions(preds []types.Prediction) []types.Prediction {
	out := make([]types.Prediction, 0, len(preds))
	for _, p := range preds {
		p.Label = strings.TrimSpace(p.Label)
		if p.Label == "" {
			continue
		}
		if p.Probability < 0 {
			p.Probability = 0
		}
		if p.Probability > 1 {
			p.Probability = 1
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Probability > out[j].Probability
	})
	return out
}

// sanitizeModelJSON removes code fences, comments, and trailing commas from JSON response
func sanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	// Strip triple-backtick fences if present
	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, "`")

	// Remove /* ... */ block comments
	reBlock := regexp.MustCompile(`(?s)/\*.*?\*/`)
	raw = reBlock.ReplaceAllString(raw, "")

	// Remove // line comments
	reLine := regexp.MustCompile(`(?m)^\s*//.*$`)
	raw = reLine.ReplaceAllString(raw, "")

	// Remove trailing commas before } or ]
	reTrailing := regexp.MustCompile(`,(\s*[}\]])`)
	raw = reTrailing.ReplaceAllString(raw, "$1")

	// Keep only the outermost {...}
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}

// ClassificationPrompt instructs the vision model to return a ranked label list.
const ClassificationPrompt = `You are an object recognizer for a waste-sorting assistant.

Return JSON only:
{
  "predictions": [
    {"label": "string", "probability": 0.0}
  ]
}

HARD RULES
- List up to 5 predictions sorted by probability, highest first.
- Probabilities are in [0,1] and describe how certain you are about the label.
- Labels are short lowercase object names (e.g. "banana", "plastic bottle").
- Name the single dominant object; ignore background and hands.
- If nothing is recognizable, return {"predictions":[]}.
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// ErrEmptyResponse is returned by backends when the model produced no content.
var ErrEmptyResponse = fmt.Errorf("empty response from model")
