// Package prepare runs the whole preparation of the configured datasets: sequence labeling corpora
// are read, aligned to sub-words and encoded into batches, and classification datasets are
// tokenized and mapped to label ids.
package prepare

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/ryabhmd/scilons-eval/config"
	"github.com/ryabhmd/scilons-eval/device"
	"github.com/ryabhmd/scilons-eval/tokenizers"
	"k8s.io/klog/v2"
)

// Pipeline prepares datasets with one tokenizer and one placement.
type Pipeline struct {
	// RunID identifies the run in logs and reports.
	RunID uuid.UUID

	cfg       *config.Config
	tok       tokenizers.Tokenizer
	placement device.Placement
}

// New creates a Pipeline for cfg using tok. The placement is looked up by cfg.Device.
func New(cfg *config.Config, tok tokenizers.Tokenizer) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	if tok == nil {
		return nil, errors.New("nil tokenizer")
	}
	placement, err := device.Lookup(cfg.Device)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{RunID: uuid.New(), cfg: cfg, tok: tok, placement: placement}
	klog.V(1).Infof("prepare: run %s on %q", p.RunID, placement.Device())
	return p, nil
}

// NewFromConfig is like New, but loads the tokenizer configured in cfg.Tokenizer.
func NewFromConfig(cfg *config.Config) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	if cfg.Tokenizer.Path == "" {
		return nil, errors.New("no tokenizer path configured")
	}
	tok, err := tokenizers.NewFromFile(cfg.Tokenizer.Path, cfg.TokenizerOptions())
	if err != nil {
		return nil, err
	}
	return New(cfg, tok)
}

// Report is the result of Run.
type Report struct {
	RunID          uuid.UUID
	Tokenizer      tokenizers.Info
	NER            []*NERDataset
	Classification []*ClassificationDataset
}

// Run prepares every configured dataset, in order. It stops at the first error.
func (p *Pipeline) Run() (*Report, error) {
	report := &Report{RunID: p.RunID, Tokenizer: tokenizers.Describe(p.tok)}
	for _, ds := range p.cfg.Datasets {
		switch ds.Task {
		case config.TaskNER:
			prepared, err := p.NER(ds)
			if err != nil {
				return nil, err
			}
			report.NER = append(report.NER, prepared)
		case config.TaskClassification:
			prepared, err := p.Classification(ds)
			if err != nil {
				return nil, err
			}
			report.Classification = append(report.Classification, prepared)
		default:
			return nil, errors.Errorf("dataset %q: unknown task %q", ds.Name, ds.Task)
		}
	}
	return report, nil
}

// chunks splits [0, n) into consecutive ranges of at most size elements.
func chunks(n, size int) [][2]int {
	var ranges [][2]int
	for start := 0; start < n; start += size {
		ranges = append(ranges, [2]int{start, min(start+size, n)})
	}
	return ranges
}
