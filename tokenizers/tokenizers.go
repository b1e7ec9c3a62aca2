// Package tokenizers creates a sub-word tokenizer from a local tokenizer file, picking the
// backend from the file name:
//
//   - "tokenizer.json" (or any *.json): HuggingFace fast tokenizer, see package hftokenizer.
//   - "tokenizer.model" (or any *.model): SentencePiece, see package sentencepiece.
//   - "vocab.txt" (or any *.txt): BERT WordPiece vocabulary, see package wordpiece.
package tokenizers

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/ryabhmd/scilons-eval/internal/files"
	"github.com/ryabhmd/scilons-eval/tokenizers/api"
	"github.com/ryabhmd/scilons-eval/tokenizers/hftokenizer"
	"github.com/ryabhmd/scilons-eval/tokenizers/sentencepiece"
	"github.com/ryabhmd/scilons-eval/tokenizers/wordpiece"
	"k8s.io/klog/v2"
)

// Tokenizer is the capability the preparation stages need from a tokenizer.
type Tokenizer = api.SubwordTokenizer

// Options for NewFromFile.
type Options struct {
	// Lowercase selects uncased normalization for "vocab.txt" vocabularies.
	// tokenizer.json files carry their own normalization.
	Lowercase bool
}

// NewFromFile creates the tokenizer stored in filePath.
//
// For tokenizer.json files, a "tokenizer_config.json" in the same directory, if present, is read
// for the special token strings.
func NewFromFile(filePath string, opts Options) (Tokenizer, error) {
	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".json":
		config, err := loadConfig(filepath.Join(filepath.Dir(filePath), "tokenizer_config.json"))
		if err != nil {
			return nil, err
		}
		return hftokenizer.NewFromFile(config, filePath)
	case ".model":
		return sentencepiece.NewFromFile(filePath)
	case ".txt":
		return wordpiece.NewFromFile(filePath, opts.Lowercase)
	default:
		return nil, errors.Errorf("can't tell the tokenizer type of %q from its extension %q", filePath, ext)
	}
}

// loadConfig reads tokenizer_config.json. A missing file is not an error: it returns nil.
func loadConfig(path string) (*api.Config, error) {
	if !files.Exists(path) {
		klog.V(2).Infof("no tokenizer config at %q", path)
		return nil, nil
	}
	content, err := files.ReadAll(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read tokenizer config %q", path)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(content, &fields); err != nil {
		return nil, errors.Wrapf(err, "failed to parse tokenizer config %q", path)
	}
	return &api.Config{
		UnkToken:  tokenString(fields["unk_token"]),
		PadToken:  tokenString(fields["pad_token"]),
		ClsToken:  tokenString(fields["cls_token"]),
		SepToken:  tokenString(fields["sep_token"]),
		MaskToken: tokenString(fields["mask_token"]),
		BosToken:  tokenString(fields["bos_token"]),
		EosToken:  tokenString(fields["eos_token"]),
	}, nil
}

// tokenString accepts both forms of a special token in tokenizer_config.json: a plain string or
// an AddedToken object with a "content" field.
func tokenString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Content
	}
	return ""
}

// Info describes a loaded tokenizer, for reports.
type Info struct {
	// Kind is the model type ("WordPiece", "BPE", "Unigram") or the backend name.
	Kind string

	// VocabSize is 0 when the backend doesn't expose it.
	VocabSize int
}

func (i Info) String() string {
	if i.VocabSize == 0 {
		return i.Kind
	}
	return fmt.Sprintf("%s, %d tokens", i.Kind, i.VocabSize)
}

// Describe returns the Info of tok.
func Describe(tok Tokenizer) Info {
	switch t := tok.(type) {
	case *hftokenizer.Tokenizer:
		return Info{Kind: t.TokenizerType(), VocabSize: t.VocabSize()}
	case *sentencepiece.Tokenizer:
		return Info{Kind: "SentencePiece"}
	case *wordpiece.Tokenizer:
		return Info{Kind: "WordPiece"}
	default:
		return Info{Kind: fmt.Sprintf("%T", tok)}
	}
}
