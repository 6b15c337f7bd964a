package consensus

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sentiment-cli/internal/model"
)

// BuildSet samples every subject and returns both the persisted form and
// the ranked results with vote counts.
func BuildSet(ctx context.Context, s *Sampler, subjects []string, k, runs int, query QueryFunc) (model.ConsensusSet, []model.ConsensusResult) {
	set := make(model.ConsensusSet, len(subjects))
	results := make([]model.ConsensusResult, 0, len(subjects))
	for _, subj := range subjects {
		subj = strings.ToUpper(strings.TrimSpace(subj))
		if subj == "" {
			continue
		}
		if _, done := set[subj]; done {
			continue
		}
		r := model.ConsensusResult{Subject: subj, TopK: s.Sample(ctx, subj, k, runs, query)}
		set[subj] = r.Values()
		results = append(results, r)
	}
	return set, results
}

// WriteSet writes set as an indented JSON object, creating parent dirs.
func WriteSet(path string, set model.ConsensusSet) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "consensus: create dir for %s", path)
	}
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return eris.Wrap(err, "consensus: marshal set")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return eris.Wrapf(err, "consensus: write %s", path)
	}
	return nil
}

// ReadSet loads a set written by WriteSet. A missing file is an empty set.
func ReadSet(path string) (model.ConsensusSet, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.ConsensusSet{}, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "consensus: read %s", path)
	}
	var set model.ConsensusSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, eris.Wrapf(err, "consensus: parse %s", path)
	}
	if set == nil {
		set = model.ConsensusSet{}
	}
	return set, nil
}
