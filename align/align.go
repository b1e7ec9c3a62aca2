// Package align expands the words of tagged sentences into sub-word pieces, replicating each
// word's tag on all of its pieces.
package align

import (
	"github.com/pkg/errors"
	"github.com/ryabhmd/scilons-eval/corpus"
	"k8s.io/klog/v2"
)

// Splitter splits a single word into sub-word pieces. api.SubwordTokenizer implements it.
type Splitter interface {
	Tokenize(word string) []string
}

// EmptyPolicy decides what happens to words the tokenizer splits into zero pieces
// (e.g. whitespace-only or fully unrepresentable tokens).
type EmptyPolicy int

const (
	// EmptyDrop drops the word together with its tag, so pieces and labels stay the same length.
	// Dropped words are reported to Options.OnEmpty.
	EmptyDrop EmptyPolicy = iota
	// EmptyError fails with ErrEmptyExpansion.
	EmptyError
)

// ErrEmptyExpansion is returned under EmptyError when a word yields no pieces.
var ErrEmptyExpansion = errors.New("word has no sub-word pieces")

// Options for Sentences.
type Options struct {
	Empty EmptyPolicy

	// OnEmpty, if set, is called for every word dropped under EmptyDrop. By default drops are logged.
	OnEmpty func(sentence, position int, tok corpus.Token)
}

// Tokenized is a sentence after sub-word splitting. Pieces and Labels always have the same length.
type Tokenized struct {
	Pieces []string
	Labels []string
}

// Len returns the number of pieces.
func (t Tokenized) Len() int { return len(t.Pieces) }

// Sentences splits every word of every sentence and replicates its tag once per piece,
// preserving order.
func Sentences(sentences []corpus.Sentence, splitter Splitter, opts Options) ([]Tokenized, error) {
	out := make([]Tokenized, 0, len(sentences))
	for si, sentence := range sentences {
		tokenized := Tokenized{
			Pieces: make([]string, 0, len(sentence)),
			Labels: make([]string, 0, len(sentence)),
		}
		for wi, tok := range sentence {
			pieces := splitter.Tokenize(tok.Text)
			if len(pieces) == 0 {
				if opts.Empty == EmptyError {
					return nil, errors.Wrapf(ErrEmptyExpansion, "sentence #%d, word #%d %q", si, wi, tok.Text)
				}
				if opts.OnEmpty != nil {
					opts.OnEmpty(si, wi, tok)
				} else {
					klog.Warningf("align: dropping word #%d %q (tag %s) of sentence #%d: no sub-word pieces", wi, tok.Text, tok.Tag, si)
				}
				continue
			}
			tokenized.Pieces = append(tokenized.Pieces, pieces...)
			for range pieces {
				tokenized.Labels = append(tokenized.Labels, tok.Tag)
			}
		}
		out = append(out, tokenized)
	}
	return out, nil
}

// FlattenLabels concatenates the labels of all sentences, in order.
func FlattenLabels(tokenized []Tokenized) []string {
	var all []string
	for _, t := range tokenized {
		all = append(all, t.Labels...)
	}
	return all
}

// MaxLen returns the length of the longest tokenized sentence.
func MaxLen(tokenized []Tokenized) int {
	longest := 0
	for _, t := range tokenized {
		longest = max(longest, t.Len())
	}
	return longest
}
