// Package sentencepiece implements an api.SubwordTokenizer based on the SentencePiece tokenizer.
package sentencepiece

import (
	esentencepiece "github.com/eliben/go-sentencepiece"
	"github.com/pkg/errors"
	"github.com/ryabhmd/scilons-eval/tokenizers/api"
)

// NewFromFile creates a SentencePiece tokenizer from a "tokenizer.model" file, which must be a
// SentencePiece Model proto.
func NewFromFile(filePath string) (*Tokenizer, error) {
	proc, err := esentencepiece.NewProcessorFromPath(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "can't create sentencepiece tokenizer from %q", filePath)
	}
	return &Tokenizer{
		Processor: proc,
		Info:      proc.ModelInfo(),
		pieces:    make(map[string]int),
	}, nil
}

// Tokenizer implements api.SubwordTokenizer based on SentencePiece tokenizer by Google.
// It is not safe for concurrent use.
type Tokenizer struct {
	*esentencepiece.Processor
	Info *esentencepiece.ModelInfo

	// pieces remembers the ids of every piece returned by Tokenize, since the processor
	// only maps text to ids.
	pieces map[string]int
}

// Compile time assert that sentencepiece.Tokenizer implements api.SubwordTokenizer interface.
var _ api.SubwordTokenizer = &Tokenizer{}

// Encode returns the text encoded into a sequence of ids.
func (p *Tokenizer) Encode(text string) []int {
	tokens := p.Processor.Encode(text)
	return sliceMap(tokens, func(t esentencepiece.Token) int { return t.ID })
}

// Tokenize returns the pieces of word. The first piece carries the U+2581 word boundary marker,
// as SentencePiece always treats its input as a new word.
func (p *Tokenizer) Tokenize(word string) []string {
	tokens := p.Processor.Encode(word)
	pieces := make([]string, len(tokens))
	for i, tok := range tokens {
		pieces[i] = tok.Text
		p.pieces[tok.Text] = tok.ID
	}
	return pieces
}

// PieceID returns the id of a piece previously returned by Tokenize.
func (p *Tokenizer) PieceID(piece string) (int, bool) {
	id, ok := p.pieces[piece]
	return id, ok
}

// Decode returns the text from a sequence of ids.
func (p *Tokenizer) Decode(ids []int) string {
	return p.Processor.Decode(ids)
}

// SpecialTokenID returns the token for the given symbol, or an error if not known.
func (p *Tokenizer) SpecialTokenID(token api.SpecialToken) (int, error) {
	var id int
	switch token {
	case api.TokUnknown:
		id = p.Info.UnknownID
	case api.TokPad:
		id = p.Info.PadID
	case api.TokBeginningOfSentence:
		id = p.Info.BeginningOfSentenceID
	case api.TokEndOfSentence:
		id = p.Info.EndOfSentenceID
	default:
		return 0, errors.Errorf("unknown special token: %s (%d)", token, int(token))
	}
	if id < 0 {
		return 0, errors.Errorf("special token %s is disabled in this model", token)
	}
	return id, nil
}

// sliceMap executes the given function sequentially for every element on in, and returns a mapped slice.
func sliceMap[In, Out any](in []In, fn func(e In) Out) (out []Out) {
	out = make([]Out, len(in))
	for ii, e := range in {
		out[ii] = fn(e)
	}
	return
}
