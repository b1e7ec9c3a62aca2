// Package wordpiece implements an api.SubwordTokenizer for BERT-style "vocab.txt" vocabularies
// (e.g. SciBERT), based on github.com/sugarme/tokenizer.
package wordpiece

import (
	tk "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/model/wordpiece"
	"github.com/sugarme/tokenizer/normalizer"
	"github.com/sugarme/tokenizer/pretokenizer"

	"github.com/pkg/errors"
	"github.com/ryabhmd/scilons-eval/tokenizers/api"
	"k8s.io/klog/v2"
)

// Default BERT special tokens.
const (
	UnkToken  = "[UNK]"
	PadToken  = "[PAD]"
	ClsToken  = "[CLS]"
	SepToken  = "[SEP]"
	MaskToken = "[MASK]"
)

// Tokenizer wraps a sugarme WordPiece tokenizer with the BERT normalizer and pre-tokenizer.
type Tokenizer struct {
	t *tk.Tokenizer

	special map[api.SpecialToken]int
}

// Compile time assert that Tokenizer implements api.SubwordTokenizer interface.
var _ api.SubwordTokenizer = &Tokenizer{}

// NewFromFile loads vocabPath (one token per line, the line number is the id) and builds a
// BERT WordPiece tokenizer. lowercase selects the uncased normalization (lowercase and strip accents).
func NewFromFile(vocabPath string, lowercase bool) (*Tokenizer, error) {
	model, err := wordpiece.NewWordPieceFromFile(vocabPath, UnkToken)
	if err != nil {
		return nil, errors.Wrapf(err, "can't load WordPiece vocabulary from %q", vocabPath)
	}
	t := tk.NewTokenizer(model)
	t.WithNormalizer(normalizer.NewBertNormalizer(true, lowercase, true, lowercase))
	t.WithPreTokenizer(pretokenizer.NewBertPreTokenizer())

	w := &Tokenizer{t: t, special: make(map[api.SpecialToken]int)}
	for token, content := range map[api.SpecialToken]string{
		api.TokUnknown:        UnkToken,
		api.TokPad:            PadToken,
		api.TokClassification: ClsToken,
		api.TokMask:           MaskToken,
		// BERT models use [CLS]/[SEP] as sentence delimiters.
		api.TokBeginningOfSentence: ClsToken,
		api.TokEndOfSentence:       SepToken,
	} {
		if id, ok := t.TokenToId(content); ok {
			w.special[token] = id
		} else {
			klog.V(1).Infof("wordpiece: vocabulary %q has no %s token", vocabPath, content)
		}
	}
	return w, nil
}

// Tokenize splits word into WordPiece pieces ("##" marks continuations).
func (w *Tokenizer) Tokenize(word string) []string {
	enc, err := w.t.Encode(tk.NewSingleEncodeInput(tk.NewInputSequence(word)), false)
	if err != nil {
		klog.Warningf("wordpiece: failed to tokenize %q: %v", word, err)
		return nil
	}
	return enc.GetTokens()
}

// PieceID returns the vocabulary id of piece.
func (w *Tokenizer) PieceID(piece string) (int, bool) {
	return w.t.TokenToId(piece)
}

// Encode converts text to token ids, without special tokens.
func (w *Tokenizer) Encode(text string) []int {
	enc, err := w.t.Encode(tk.NewSingleEncodeInput(tk.NewInputSequence(text)), false)
	if err != nil {
		klog.Warningf("wordpiece: failed to encode %q: %v", text, err)
		return nil
	}
	return enc.GetIds()
}

// Decode converts ids back to text, skipping special tokens.
func (w *Tokenizer) Decode(ids []int) string {
	return w.t.Decode(ids, true)
}

// SpecialTokenID returns the id of token, if the vocabulary defines it.
func (w *Tokenizer) SpecialTokenID(token api.SpecialToken) (int, error) {
	if id, ok := w.special[token]; ok {
		return id, nil
	}
	return 0, errors.Errorf("special token %s not found", token)
}
