package inference

import (
	"context"
	"fmt"

	"github.com/nlpodyssey/cybertron/pkg/tasks"
	"github.com/nlpodyssey/cybertron/pkg/tasks/textclassification"
)

// LocalTextClassifier runs the toxic-comment model in-process via
// cybertron. Deployments without a model sidecar use this for the text
// path; image and speech still require the sidecar.
type LocalTextClassifier struct {
	model textclassification.Interface
}

// NewLocalTextClassifier loads the named model from modelsDir,
// downloading and converting it on first use. Loading can take a while;
// call it once at startup.
func NewLocalTextClassifier(modelsDir, modelName string) (*LocalTextClassifier, error) {
	model, err := tasks.Load[textclassification.Interface](&tasks.Config{
		ModelsDir:           modelsDir,
		ModelName:           modelName,
		DownloadPolicy:      tasks.DownloadMissing,
		ConversionPolicy:    tasks.ConvertMissing,
		ConversionPrecision: tasks.F32,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load text classification model %q: %w", modelName, err)
	}
	return &LocalTextClassifier{model: model}, nil
}

// ClassifyText scores text against the model's label set.
func (l *LocalTextClassifier) ClassifyText(ctx context.Context, text string) ([]LabelScore, error) {
	result, err := l.model.Classify(ctx, TruncateText(text))
	if err != nil {
		return nil, fmt.Errorf("text classification failed: %w", err)
	}

	scores := make([]LabelScore, 0, len(result.Labels))
	for i := range result.Labels {
		scores = append(scores, LabelScore{Label: result.Labels[i], Score: result.Scores[i]})
	}
	return scores, nil
}
