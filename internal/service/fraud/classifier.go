package fraud

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
)

// classifierModel is the on-disk shape of a trained logistic model. The
// feature vector is fixed: part count, cost in thousands, incident
// indicator, recent claim count.
type classifierModel struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

type logisticClassifier struct {
	weights []float64
	bias    float64
}

// LoadClassifier reads model weights from a JSON file. It is attempted once
// at startup; any failure permanently disables the classifier path for the
// process lifetime and the detector runs rule-based only.
func LoadClassifier(path string, logger *slog.Logger) Classifier {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("fraud classifier unavailable, using rule-based scoring only",
			"path", path, "error", err)
		return nil
	}
	var model classifierModel
	if err := json.Unmarshal(data, &model); err != nil {
		logger.Warn("fraud classifier model is malformed, using rule-based scoring only",
			"path", path, "error", err)
		return nil
	}
	if len(model.Weights) == 0 {
		logger.Warn("fraud classifier model has no weights, using rule-based scoring only",
			"path", path)
		return nil
	}
	logger.Info("fraud classifier loaded", "path", path, "features", len(model.Weights))
	return &logisticClassifier{weights: model.Weights, bias: model.Bias}
}

func (c *logisticClassifier) Predict(features []float64) (float64, error) {
	if len(features) != len(c.weights) {
		return 0, fmt.Errorf("feature vector length %d does not match model width %d",
			len(features), len(c.weights))
	}
	z := c.bias
	for i, w := range c.weights {
		z += w * features[i]
	}
	return 1 / (1 + math.Exp(-z)), nil
}
