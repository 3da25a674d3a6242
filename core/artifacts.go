package core

import (
	"fmt"
	"path/filepath"

	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/schema"
)

// LoadNarratives reads the narratives produced by the last successful refresh.
func LoadNarratives(cfg *contract.Config) ([]schema.Narrative, error) {
	var narratives []schema.Narrative
	if err := loadArtifact(cfg.NarrativesPath(), &narratives); err != nil {
		return nil, err
	}
	if narratives == nil {
		narratives = []schema.Narrative{}
	}
	return narratives, nil
}

// LoadIdeas reads the idea sets produced by the last refresh that generated ideas.
func LoadIdeas(cfg *contract.Config) ([]schema.IdeaSet, error) {
	var sets []schema.IdeaSet
	if err := loadArtifact(cfg.IdeasPath(), &sets); err != nil {
		return nil, err
	}
	if sets == nil {
		sets = []schema.IdeaSet{}
	}
	return sets, nil
}

// LoadSignalReport reads the signal metadata written by the last refresh.
func LoadSignalReport(cfg *contract.Config) (schema.SignalReport, error) {
	var report schema.SignalReport
	if err := loadArtifact(cfg.SignalsPath(), &report); err != nil {
		return schema.SignalReport{}, err
	}
	return report, nil
}

func loadArtifact(path string, v any) error {
	found, err := contract.ReadJSONFile(path, v)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s (run 'signalvane refresh' first)", ErrArtifactNotFound, filepath.Base(path))
	}
	return nil
}

// writeArtifacts persists the derived artifacts of a refresh. Each file is
// replaced atomically; ideas are only rewritten when they were generated.
func writeArtifacts(cfg *contract.Config, narratives []schema.Narrative, ideas []schema.IdeaSet, report schema.SignalReport) error {
	if err := contract.WriteJSONAtomic(cfg.NarrativesPath(), narratives); err != nil {
		return err
	}
	if ideas != nil {
		if err := contract.WriteJSONAtomic(cfg.IdeasPath(), ideas); err != nil {
			return err
		}
	}
	return contract.WriteJSONAtomic(cfg.SignalsPath(), report)
}
