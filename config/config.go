// Package config holds the configuration of a preparation run. Values are read by viper from a
// YAML (or JSON, TOML) file, with defaults, and may be overridden by SCILONS_* environment variables,
// e.g. SCILONS_DEVICE=cpu or SCILONS_NER_ENCODEMODE=retokenize.
package config

import (
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/ryabhmd/scilons-eval/align"
	"github.com/ryabhmd/scilons-eval/batch"
	"github.com/ryabhmd/scilons-eval/corpus"
	"github.com/ryabhmd/scilons-eval/tokenizers"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding configuration keys.
const EnvPrefix = "SCILONS"

// Tasks of a dataset.
const (
	TaskNER            = "ner"
	TaskClassification = "classification"
)

// Dataset formats, beyond the corpus formats "columns4" and "wordlabel".
const (
	FormatJSONL   = "jsonl"
	FormatParquet = "parquet"
)

// Config stores all the configuration of a run.
type Config struct {
	Tokenizer      TokenizerConfig      `mapstructure:"tokenizer"`
	Device         string               `mapstructure:"device"`
	NER            NERConfig            `mapstructure:"ner"`
	Classification ClassificationConfig `mapstructure:"classification"`
	Datasets       []Dataset            `mapstructure:"datasets"`
}

// TokenizerConfig selects the tokenizer file, see tokenizers.NewFromFile.
type TokenizerConfig struct {
	Path      string `mapstructure:"path"`
	Lowercase bool   `mapstructure:"lowercase"`
}

// NERConfig configures the sequence labeling stages.
type NERConfig struct {
	EncodeMode  string `mapstructure:"encodeMode"`
	EmptyPolicy string `mapstructure:"emptyPolicy"`
	BatchSize   int    `mapstructure:"batchSize"`
}

// ClassificationConfig configures the relation extraction and text classification stages.
type ClassificationConfig struct {
	MaxLength int `mapstructure:"maxLength"`
	BatchSize int `mapstructure:"batchSize"`
}

// Dataset describes one dataset and its split files.
type Dataset struct {
	Name string `mapstructure:"name"`
	Task string `mapstructure:"task"`

	// Format is one of "columns4", "wordlabel" (NER), "jsonl" or "parquet" (classification).
	// If empty, NER datasets use the preset of their name, and classification datasets "jsonl".
	Format string `mapstructure:"format"`

	// Delimiter of "columns4" files: "tab", "space" or "whitespace".
	Delimiter string `mapstructure:"delimiter"`

	// Splits maps split names ("train", "dev", "test") to files.
	Splits map[string]string `mapstructure:"splits"`
}

// Load reads the configuration at path. With an empty path only defaults and environment
// variables are used.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %q", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unable to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.WithMessagef(err, "invalid config %q", path)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("device", "cpu")
	v.SetDefault("tokenizer.lowercase", true)
	v.SetDefault("ner.encodeMode", batch.ModeDirect.String())
	v.SetDefault("ner.emptyPolicy", "drop")
	v.SetDefault("ner.batchSize", 32)
	v.SetDefault("classification.maxLength", 512)
	v.SetDefault("classification.batchSize", 32)
}

// Validate checks the enumerated values of cfg.
func (c *Config) Validate() error {
	if _, err := batch.ParseMode(c.NER.EncodeMode); err != nil {
		return err
	}
	if _, err := ParseEmptyPolicy(c.NER.EmptyPolicy); err != nil {
		return err
	}
	if c.NER.BatchSize <= 0 || c.Classification.BatchSize <= 0 {
		return errors.Errorf("batch sizes must be positive, got ner=%d classification=%d", c.NER.BatchSize, c.Classification.BatchSize)
	}
	for i, ds := range c.Datasets {
		if ds.Name == "" {
			return errors.Errorf("dataset #%d has no name", i)
		}
		switch ds.Task {
		case TaskNER:
			if _, err := ds.CorpusOptions(); err != nil {
				return errors.WithMessagef(err, "dataset %q", ds.Name)
			}
		case TaskClassification:
			if f := ds.Format; f != "" && f != FormatJSONL && f != FormatParquet {
				return errors.Errorf("dataset %q: classification format must be %q or %q, got %q", ds.Name, FormatJSONL, FormatParquet, f)
			}
		default:
			return errors.Errorf("dataset %q: unknown task %q, valid tasks are %q and %q", ds.Name, ds.Task, TaskNER, TaskClassification)
		}
		if len(ds.Splits) == 0 {
			return errors.Errorf("dataset %q has no splits", ds.Name)
		}
	}
	return nil
}

// TokenizerOptions returns the options for tokenizers.NewFromFile.
func (c *Config) TokenizerOptions() tokenizers.Options {
	return tokenizers.Options{Lowercase: c.Tokenizer.Lowercase}
}

// EncodeOptions returns the batch encoding mode. Placement is left for the caller.
func (c *Config) EncodeOptions() (batch.Options, error) {
	mode, err := batch.ParseMode(c.NER.EncodeMode)
	if err != nil {
		return batch.Options{}, err
	}
	return batch.Options{Mode: mode}, nil
}

// AlignOptions returns the sub-word alignment options.
func (c *Config) AlignOptions() (align.Options, error) {
	policy, err := ParseEmptyPolicy(c.NER.EmptyPolicy)
	if err != nil {
		return align.Options{}, err
	}
	return align.Options{Empty: policy}, nil
}

// CorpusOptions returns the parsing options of a NER dataset: the preset of its name, overridden
// by the configured format and delimiter.
func (d Dataset) CorpusOptions() (corpus.Options, error) {
	opts := corpus.Preset(d.Name)
	if d.Format != "" {
		f, err := corpus.ParseFormat(d.Format)
		if err != nil {
			return opts, err
		}
		opts.Format = f
	}
	if d.Delimiter != "" {
		delim, err := ParseDelimiter(d.Delimiter)
		if err != nil {
			return opts, err
		}
		opts.Delimiter = delim
	}
	return opts, nil
}

// SplitNames returns the split names of d in the conventional order, followed by any others sorted.
func (d Dataset) SplitNames() []string {
	var names []string
	for _, name := range []string{"train", "dev", "validation", "test"} {
		if _, ok := d.Splits[name]; ok {
			names = append(names, name)
		}
	}
	var others []string
	for name := range d.Splits {
		switch name {
		case "train", "dev", "validation", "test":
		default:
			others = append(others, name)
		}
	}
	slices.Sort(others)
	return append(names, others...)
}

// ParseDelimiter maps "tab", "space" and "whitespace" to the corpus delimiters.
func ParseDelimiter(name string) (string, error) {
	switch strings.ToLower(name) {
	case "tab", `\t`:
		return corpus.Tab, nil
	case "space", " ":
		return corpus.Space, nil
	case "whitespace", "any":
		return corpus.Whitespace, nil
	}
	return "", errors.Errorf("unknown delimiter %q, valid delimiters are \"tab\", \"space\" and \"whitespace\"", name)
}

// ParseEmptyPolicy maps "drop" (or "") and "error" to the alignment policies.
func ParseEmptyPolicy(name string) (align.EmptyPolicy, error) {
	switch strings.ToLower(name) {
	case "", "drop":
		return align.EmptyDrop, nil
	case "error":
		return align.EmptyError, nil
	}
	return 0, errors.Errorf("unknown empty word policy %q, valid policies are \"drop\" and \"error\"", name)
}
