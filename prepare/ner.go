package prepare

import (
	"github.com/pkg/errors"
	"github.com/ryabhmd/scilons-eval/align"
	"github.com/ryabhmd/scilons-eval/batch"
	"github.com/ryabhmd/scilons-eval/config"
	"github.com/ryabhmd/scilons-eval/corpus"
	"github.com/ryabhmd/scilons-eval/labels"
	"github.com/ryabhmd/scilons-eval/spans"
	"k8s.io/klog/v2"
)

// NERDataset is a prepared sequence labeling dataset.
type NERDataset struct {
	Name string

	// Labels is built from the tags of all splits, plus labels.Outside.
	Labels *labels.Map

	Splits []*NERSplit
}

// NERSplit holds the batches of one split.
type NERSplit struct {
	Name    string
	Path    string
	Batches []*batch.Batch
	Stats   Stats

	// Entities counts the gold spans per type.
	Entities map[string]int
}

// NER prepares the sequence labeling dataset ds.
func (p *Pipeline) NER(ds config.Dataset) (*NERDataset, error) {
	opts, err := ds.CorpusOptions()
	if err != nil {
		return nil, errors.WithMessagef(err, "dataset %q", ds.Name)
	}
	alignOpts, err := p.cfg.AlignOptions()
	if err != nil {
		return nil, err
	}
	encOpts, err := p.cfg.EncodeOptions()
	if err != nil {
		return nil, err
	}
	encOpts.Placement = p.placement

	names := ds.SplitNames()
	sentences := make([][]corpus.Sentence, len(names))
	for i, name := range names {
		sentences[i], err = corpus.ReadFile(ds.Splits[name], opts)
		if err != nil {
			return nil, errors.WithMessagef(err, "dataset %q, split %q", ds.Name, name)
		}
	}
	tagSet := corpus.TagSet(sentences...)
	tagSet[labels.Outside] = struct{}{}
	prepared := &NERDataset{Name: ds.Name, Labels: labels.FromSet(tagSet)}

	for i, name := range names {
		split, err := p.nerSplit(sentences[i], prepared.Labels, alignOpts, encOpts)
		if err != nil {
			return nil, errors.WithMessagef(err, "dataset %q, split %q", ds.Name, name)
		}
		split.Name, split.Path = name, ds.Splits[name]
		prepared.Splits = append(prepared.Splits, split)
		klog.V(1).Infof("prepare[%s]: %s/%s: %d sentences in %d batches, max length %d",
			p.RunID, ds.Name, name, split.Stats.Examples, split.Stats.Batches, split.Stats.MaxLen)
	}
	return prepared, nil
}

func (p *Pipeline) nerSplit(sentences []corpus.Sentence, labelMap *labels.Map, alignOpts align.Options, encOpts batch.Options) (*NERSplit, error) {
	split := &NERSplit{Entities: make(map[string]int)}
	for _, sentence := range sentences {
		for _, span := range spans.ExtractTags(sentence.Tags()) {
			split.Entities[span.Type]++
		}
	}

	tokenized, err := align.Sentences(sentences, p.tok, alignOpts)
	if err != nil {
		return nil, err
	}
	kept := tokenized[:0:0]
	lengths := make([]int, 0, len(tokenized))
	skipped := 0
	for _, t := range tokenized {
		if t.Len() == 0 {
			skipped++
			continue
		}
		kept = append(kept, t)
		lengths = append(lengths, t.Len())
	}

	for _, r := range chunks(len(kept), p.cfg.NER.BatchSize) {
		b, err := batch.EncodeNER(kept[r[0]:r[1]], p.tok, labelMap, encOpts)
		if err != nil {
			return nil, errors.WithMessagef(err, "batch of sentences [%d, %d)", r[0], r[1])
		}
		split.Batches = append(split.Batches, b)
	}
	split.Stats = newStats(lengths)
	split.Stats.Batches = len(split.Batches)
	split.Stats.Skipped = skipped
	if skipped > 0 {
		klog.Warningf("prepare[%s]: skipped %d sentences with no sub-word pieces", p.RunID, skipped)
	}
	return split, nil
}
