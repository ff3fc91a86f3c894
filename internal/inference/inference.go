// Package inference wraps the pretrained classifiers behind narrow
// interfaces. Implementations are external collaborators (an HTTP model
// sidecar or an in-process model); this package also knows how to turn
// their labeled scores into the scalar signals the risk core consumes.
package inference

import (
	"context"
	"strings"
)

// LabelScore is one labeled probability from a classifier.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// TextClassifier scores a piece of text against the toxicity label set.
type TextClassifier interface {
	ClassifyText(ctx context.Context, text string) ([]LabelScore, error)
}

// ImageClassifier scores an image against the deepfake/NSFW label sets.
type ImageClassifier interface {
	ClassifyImage(ctx context.Context, image []byte) ([]LabelScore, error)
}

// Transcriber converts speech audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Adapter groups the classifiers a deployment managed to construct.
// A nil field means that modality is unavailable; callers must check
// before use and fall back to neutral scores instead of failing the
// request.
type Adapter struct {
	Text   TextClassifier
	Image  ImageClassifier
	Speech Transcriber
}

// Availability reports which modalities are usable, keyed by modality
// name. Served on the health endpoint.
func (a *Adapter) Availability() map[string]bool {
	return map[string]bool{
		"text":   a != nil && a.Text != nil,
		"image":  a != nil && a.Image != nil,
		"speech": a != nil && a.Speech != nil,
	}
}

// MaxTextLength is how much of a submission is fed to the text model.
// Matches the classifier's input window.
const MaxTextLength = 512

// TruncateText cuts text to the classifier input window on a rune
// boundary.
func TruncateText(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxTextLength {
		return text
	}
	return string(runes[:MaxTextLength])
}

// Labels the toxic-comment model family emits for abusive content.
var toxicLabels = map[string]struct{}{
	"toxic":         {},
	"severe_toxic":  {},
	"obscene":       {},
	"threat":        {},
	"insult":        {},
	"identity_hate": {},
}

// ToxicScore sums the scores of the toxic label family, capped at 1.
// Returns a value in [0,1].
func ToxicScore(results []LabelScore) float64 {
	var sum float64
	for _, r := range results {
		if _, ok := toxicLabels[strings.ToLower(r.Label)]; ok {
			sum += r.Score
		}
	}
	if sum > 1 {
		return 1
	}
	if sum < 0 {
		return 0
	}
	return sum
}

// DeepfakeProbability extracts the deepfake signal from image classifier
// output as a percentage in [0,100].
func DeepfakeProbability(results []LabelScore) float64 {
	return labelPercent(results, "deepfake", "fake")
}

// AbuseProbability extracts the NSFW/abusive signal from image classifier
// output as a percentage in [0,100].
func AbuseProbability(results []LabelScore) float64 {
	return labelPercent(results, "nsfw", "abusive", "explicit")
}

func labelPercent(results []LabelScore, labels ...string) float64 {
	var max float64
	for _, r := range results {
		label := strings.ToLower(r.Label)
		for _, want := range labels {
			if label == want && r.Score*100 > max {
				max = r.Score * 100
			}
		}
	}
	if max > 100 {
		return 100
	}
	return max
}
