package topicmodel

import (
	"fmt"

	"topicsweep/internal/fileutil"
)

// Coherence is a scored model. Value is the mean of PerTopic.
type Coherence struct {
	Metric   string     `json:"metric"`
	Value    float64    `json:"coherence"`
	PerTopic []float64  `json:"per_topic"`
	Topics   [][]string `json:"topics"`
}

// Save writes the coherence artifact.
func (c Coherence) Save(path string) error {
	if err := fileutil.WriteJSONAtomic(path, c); err != nil {
		return fmt.Errorf("save coherence: %w", err)
	}
	return nil
}

// LoadCoherence reads an artifact written by Save.
func LoadCoherence(path string) (Coherence, error) {
	var c Coherence
	if err := fileutil.ReadJSON(path, &c); err != nil {
		return Coherence{}, fmt.Errorf("load coherence: %w", err)
	}
	return c, nil
}
