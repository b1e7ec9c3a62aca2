package prepare

import (
	"github.com/pkg/errors"
	"github.com/ryabhmd/scilons-eval/config"
	"github.com/ryabhmd/scilons-eval/labels"
	"github.com/ryabhmd/scilons-eval/relcls"
	"k8s.io/klog/v2"
)

// ClassificationDataset is a prepared relation extraction or text classification dataset.
type ClassificationDataset struct {
	Name   string
	Labels *labels.Map
	Splits []*ClassificationSplit

	// Skipped holds the malformed lines skipped while reading, over all splits.
	Skipped []*relcls.ParseError
}

// ClassificationSplit holds the inputs of one split.
type ClassificationSplit struct {
	Name   string
	Path   string
	Inputs []*relcls.Inputs
	Stats  Stats

	// LabelCounts counts the examples per label.
	LabelCounts map[string]int
}

// Classification prepares the classification dataset ds.
func (p *Pipeline) Classification(ds config.Dataset) (*ClassificationDataset, error) {
	prepared := &ClassificationDataset{Name: ds.Name}
	report := func(pe *relcls.ParseError) {
		klog.Warningf("prepare[%s]: %s: %v", p.RunID, ds.Name, pe)
		prepared.Skipped = append(prepared.Skipped, pe)
	}

	names := ds.SplitNames()
	texts := make([][]string, len(names))
	exampleLabels := make([][]string, len(names))
	skipped := make([]int, len(names))
	labelSet := make(map[string]struct{})
	for i, name := range names {
		var err error
		before := len(prepared.Skipped)
		switch ds.Format {
		case config.FormatParquet:
			texts[i], exampleLabels[i], err = relcls.TextsLabelsParquet(ds.Splits[name])
		default:
			texts[i], exampleLabels[i], err = relcls.TextsLabels(ds.Splits[name], relcls.Options{Report: report})
		}
		if err != nil {
			return nil, errors.WithMessagef(err, "dataset %q, split %q", ds.Name, name)
		}
		skipped[i] = len(prepared.Skipped) - before
		for _, label := range exampleLabels[i] {
			labelSet[label] = struct{}{}
		}
	}
	prepared.Labels = labels.FromSet(labelSet)

	for i, name := range names {
		split := &ClassificationSplit{Name: name, Path: ds.Splits[name], LabelCounts: make(map[string]int)}
		for _, label := range exampleLabels[i] {
			split.LabelCounts[label]++
		}
		var lengths []int
		for _, r := range chunks(len(texts[i]), p.cfg.Classification.BatchSize) {
			enc, err := relcls.Tokenize(p.tok, texts[i][r[0]:r[1]], p.cfg.Classification.MaxLength)
			if err != nil {
				return nil, errors.WithMessagef(err, "dataset %q, split %q", ds.Name, name)
			}
			mask := enc.AttentionMask.Value().([][]int64)
			for _, row := range mask {
				n := 0
				for _, v := range row {
					n += int(v)
				}
				lengths = append(lengths, n)
			}
			in, err := relcls.PrepareInput(enc, prepared.Labels, exampleLabels[i][r[0]:r[1]], p.placement)
			if err != nil {
				return nil, errors.WithMessagef(err, "dataset %q, split %q", ds.Name, name)
			}
			split.Inputs = append(split.Inputs, in)
		}
		split.Stats = newStats(lengths)
		split.Stats.Batches = len(split.Inputs)
		split.Stats.Skipped = skipped[i]
		prepared.Splits = append(prepared.Splits, split)
		klog.V(1).Infof("prepare[%s]: %s/%s: %d examples in %d batches, %d labels",
			p.RunID, ds.Name, name, split.Stats.Examples, split.Stats.Batches, prepared.Labels.Len())
	}
	return prepared, nil
}
