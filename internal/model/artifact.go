package model

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/fire-detection-etl/internal/domain"
	"github.com/couchcryptid/fire-detection-etl/internal/feature"
)

// Artifact is the serialized form of a trained model: everything the
// streaming scorer needs to featurize and classify detections exactly as
// training did.
type Artifact struct {
	Version   string          `json:"version"` // uuid assigned at training time
	Model     string          `json:"model"`
	Params    Params          `json:"params"`
	Schema    feature.Schema  `json:"schema"`
	Threshold float64         `json:"threshold"`
	TrainedAt time.Time       `json:"trained_at"`
	Scores    *Scores         `json:"scores,omitempty"` // holdout scores, when evaluated
	State     json.RawMessage `json:"state"`

	classifier Classifier
}

// NewArtifact packages a fitted classifier with its feature schema.
func NewArtifact(clf Classifier, schema feature.Schema, threshold float64, scores *Scores) (*Artifact, error) {
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("artifact schema: %w", err)
	}
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultThreshold
	}
	state, err := clf.MarshalState()
	if err != nil {
		return nil, fmt.Errorf("artifact state: %w", err)
	}
	return &Artifact{
		Version:    uuid.NewString(),
		Model:      clf.Name(),
		Params:     clf.Params(),
		Schema:     schema,
		Threshold:  threshold,
		TrainedAt:  time.Now().UTC(),
		Scores:     scores,
		State:      state,
		classifier: clf,
	}, nil
}

// Save writes the artifact as indented JSON.
func (a *Artifact) Save(path string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// Load reads an artifact from disk and restores its classifier.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if err := a.restore(); err != nil {
		return nil, err
	}
	return &a, nil
}

func (a *Artifact) restore() error {
	if err := a.Schema.Validate(); err != nil {
		return fmt.Errorf("artifact schema: %w", err)
	}
	clf, err := New(a.Model, a.Params)
	if err != nil {
		return fmt.Errorf("artifact model: %w", err)
	}
	if err := clf.UnmarshalState(a.State); err != nil {
		return fmt.Errorf("artifact model: %w", err)
	}
	a.classifier = clf
	return nil
}

// Classifier returns the restored classifier.
func (a *Artifact) Classifier() Classifier { return a.classifier }

// PredictProba featurizes string-valued rows with the artifact's schema and
// returns positive-class probabilities.
func (a *Artifact) PredictProba(rows []map[string]string) ([]float64, error) {
	if a.classifier == nil {
		return nil, fmt.Errorf("artifact has no restored classifier")
	}
	return a.classifier.PredictProba(a.Schema.VectorizeRows(rows))
}

// ScoreDetection implements domain.Scorer.
func (a *Artifact) ScoreDetection(_ context.Context, det domain.Detection) (domain.Score, error) {
	probs, err := a.PredictProba([]map[string]string{feature.DetectionRow(det)})
	if err != nil {
		return domain.Score{}, fmt.Errorf("score detection %s: %w", det.ID, err)
	}
	p := probs[0]
	return domain.Score{
		Probability:  p,
		ForestFire:   p >= a.Threshold,
		ModelVersion: a.Model + "-" + a.Version,
		Threshold:    a.Threshold,
	}, nil
}

var _ domain.Scorer = (*Artifact)(nil)
