// Package encoding turns token ids into model inputs: special tokens, truncation, padding,
// attention masks and segment ids. It works for any api.Tokenizer, so the backends only
// need to provide plain ids.
package encoding

import (
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/pkg/errors"
	"github.com/ryabhmd/scilons-eval/tokenizers/api"
)

// Padding selects how sequences are padded.
type Padding int

const (
	// PadNone leaves every sequence at its own length.
	PadNone Padding = iota
	// PadLongest pads to the longest sequence of the batch.
	PadLongest
	// PadMaxLength pads every sequence to Options.MaxLength.
	PadMaxLength
)

// Options configure Plus, FromIDs and Batch.
type Options struct {
	// MaxLength is the truncation length, special tokens included. Zero disables truncation.
	MaxLength int

	// AddSpecialTokens wraps the sequence with the classification (or beginning of sentence)
	// token and the end of sentence token.
	AddSpecialTokens bool

	Padding Padding
}

// specials holds the ids resolved for a tokenizer. A negative id means the token is not defined.
type specials struct {
	prefix, suffix, pad int
}

func resolve(tok api.Tokenizer) specials {
	s := specials{prefix: -1, suffix: -1, pad: 0}
	if id, err := tok.SpecialTokenID(api.TokClassification); err == nil && id >= 0 {
		s.prefix = id
	} else if id, err := tok.SpecialTokenID(api.TokBeginningOfSentence); err == nil && id >= 0 {
		s.prefix = id
	}
	if id, err := tok.SpecialTokenID(api.TokEndOfSentence); err == nil && id >= 0 {
		s.suffix = id
	}
	if id, err := tok.SpecialTokenID(api.TokPad); err == nil && id >= 0 {
		s.pad = id
	}
	return s
}

func (s specials) count() int {
	n := 0
	if s.prefix >= 0 {
		n++
	}
	if s.suffix >= 0 {
		n++
	}
	return n
}

// SpecialTokens returns how many special tokens AddSpecialTokens puts before and after the
// content ids of tok.
func SpecialTokens(tok api.Tokenizer) (before, after int) {
	s := resolve(tok)
	if s.prefix >= 0 {
		before = 1
	}
	if s.suffix >= 0 {
		after = 1
	}
	return before, after
}

// PadID returns the id used to pad sequences of tok: its pad token, or 0 when it has none.
func PadID(tok api.Tokenizer) int {
	return resolve(tok).pad
}

// Plus encodes text and builds the full model input for it, the equivalent of an
// "encode-plus" call with return of attention mask and token type ids.
func Plus(tok api.Tokenizer, text string, opts Options) api.Encoding {
	return FromIDs(tok, tok.Encode(text), opts)
}

// FromIDs builds the model input from already tokenized ids.
// Truncation only drops content ids: the special tokens are always kept.
func FromIDs(tok api.Tokenizer, ids []int, opts Options) api.Encoding {
	s := resolve(tok)
	content := ids
	if opts.MaxLength > 0 {
		budget := opts.MaxLength
		if opts.AddSpecialTokens {
			budget -= s.count()
		}
		budget = max(budget, 0)
		if len(content) > budget {
			content = content[:budget]
		}
	}

	out := make([]int, 0, len(content)+2)
	if opts.AddSpecialTokens && s.prefix >= 0 {
		out = append(out, s.prefix)
	}
	out = append(out, content...)
	if opts.AddSpecialTokens && s.suffix >= 0 {
		out = append(out, s.suffix)
	}
	if opts.MaxLength > 0 && len(out) > opts.MaxLength {
		out = out[:opts.MaxLength]
	}

	enc := api.Encoding{
		InputIDs:      out,
		AttentionMask: make([]int, len(out)),
		TokenTypeIDs:  make([]int, len(out)),
	}
	for i := range enc.AttentionMask {
		enc.AttentionMask[i] = 1
	}
	if opts.Padding == PadMaxLength && opts.MaxLength > 0 {
		enc = pad(enc, opts.MaxLength, s.pad)
	}
	return enc
}

// pad right-pads enc to length with padID. Sequences already at least length long are returned as is.
func pad(enc api.Encoding, length, padID int) api.Encoding {
	for len(enc.InputIDs) < length {
		enc.InputIDs = append(enc.InputIDs, padID)
		enc.AttentionMask = append(enc.AttentionMask, 0)
		enc.TokenTypeIDs = append(enc.TokenTypeIDs, 0)
	}
	return enc
}

// Batch holds the rectangular tensors of a batch of encodings, with shape [batchSize, length] and dtype Int64.
type Batch struct {
	InputIDs      *tensors.Tensor
	AttentionMask *tensors.Tensor
	TokenTypeIDs  *tensors.Tensor
}

// Size returns the batch size.
func (b *Batch) Size() int {
	if b == nil || b.InputIDs == nil {
		return 0
	}
	return b.InputIDs.Shape().Dimensions[0]
}

// EncodeBatch encodes all texts with special tokens and builds the batch tensors. With PadLongest
// (the usual choice for raw text lists) every row is padded to the longest encoded row.
func EncodeBatch(tok api.Tokenizer, texts []string, opts Options) (*Batch, error) {
	encs := make([]api.Encoding, len(texts))
	for i, text := range texts {
		encs[i] = Plus(tok, text, opts)
	}
	if opts.Padding == PadLongest {
		longest := 0
		for _, enc := range encs {
			longest = max(longest, enc.Len())
		}
		padID := PadID(tok)
		for i := range encs {
			encs[i] = pad(encs[i], longest, padID)
		}
	}
	return Stack(encs)
}

// Stack concatenates encodings of equal length along a new leading batch dimension.
func Stack(encs []api.Encoding) (*Batch, error) {
	width := 0
	if len(encs) > 0 {
		width = encs[0].Len()
	}
	ids := make([]int64, 0, len(encs)*width)
	mask := make([]int64, 0, len(encs)*width)
	types := make([]int64, 0, len(encs)*width)
	for i, enc := range encs {
		if enc.Len() != width {
			return nil, errors.Errorf("encoding #%d has length %d, but the batch width is %d: pad before stacking", i, enc.Len(), width)
		}
		ids = appendInt64(ids, enc.InputIDs)
		mask = appendInt64(mask, enc.AttentionMask)
		types = appendInt64(types, enc.TokenTypeIDs)
	}
	return &Batch{
		InputIDs:      tensors.FromFlatDataAndDimensions(ids, len(encs), width),
		AttentionMask: tensors.FromFlatDataAndDimensions(mask, len(encs), width),
		TokenTypeIDs:  tensors.FromFlatDataAndDimensions(types, len(encs), width),
	}, nil
}

func appendInt64(dst []int64, src []int) []int64 {
	for _, v := range src {
		dst = append(dst, int64(v))
	}
	return dst
}
