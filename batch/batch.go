// Package batch encodes aligned sub-word sequences into the padded tensors of a sequence
// labeling batch: token ids, attention mask, segment ids and label ids.
package batch

import (
	"strings"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/pkg/errors"
	"github.com/ryabhmd/scilons-eval/align"
	"github.com/ryabhmd/scilons-eval/device"
	"github.com/ryabhmd/scilons-eval/labels"
	"github.com/ryabhmd/scilons-eval/tokenizers/api"
	"github.com/ryabhmd/scilons-eval/tokenizers/encoding"
	"k8s.io/klog/v2"
)

// Mode selects how the pieces of a sentence become token ids.
type Mode int

const (
	// ModeDirect maps the pieces produced by the aligner straight to their vocabulary ids and
	// places every label at the position of its piece.
	ModeDirect Mode = iota

	// ModeRetokenize joins the pieces with single spaces and encodes the resulting text again.
	// It reproduces the behavior of older preparation scripts, but the second tokenization is not
	// guaranteed to split the text the same way, so labels may not line up with tokens.
	ModeRetokenize
)

func (m Mode) String() string {
	switch m {
	case ModeDirect:
		return "direct"
	case ModeRetokenize:
		return "retokenize"
	default:
		return "Mode(?)"
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(name) {
	case "direct", "":
		return ModeDirect, nil
	case "retokenize":
		return ModeRetokenize, nil
	}
	return 0, errors.Errorf("unknown encode mode %q, valid modes are \"direct\" and \"retokenize\"", name)
}

// Options for EncodeNER.
type Options struct {
	Mode Mode

	// Placement receives the four tensors. Defaults to device.Host.
	Placement device.Placement
}

// Batch holds the tensors of a sequence labeling batch. All four have dtype Int64 and the shape
// [batchSize, Width].
type Batch struct {
	TokenIDs      *tensors.Tensor
	AttentionMask *tensors.Tensor
	SegmentIDs    *tensors.Tensor
	LabelIDs      *tensors.Tensor

	// MaxSeqLength is the length of the longest sub-word sequence of the batch.
	MaxSeqLength int

	// Width of every tensor. With ModeDirect it is MaxSeqLength plus the tokenizer's special
	// tokens, so no piece is truncated; with ModeRetokenize it is MaxSeqLength.
	Width int
}

// Size returns the batch size.
func (b *Batch) Size() int {
	if b == nil || b.TokenIDs == nil {
		return 0
	}
	return b.TokenIDs.Shape().Dimensions[0]
}

// EncodeNER builds the batch for the given aligned sentences.
//
// The batch width is derived from the longest sub-word sequence, recomputed on every call.
//
// With ModeDirect, LabelIDs[i][j] is the label of the piece at TokenIDs[i][j]: special token and
// padding positions get the id of labels.Outside.
//
// With ModeRetokenize, token rows are truncated to MaxSeqLength special tokens included, and label
// rows start at position 0, right padded with the id of labels.Outside. Both rows only line up by
// chance.
//
// It fails with a *labels.LookupError if a label (or "O") is not in labelMap.
func EncodeNER(tokenized []align.Tokenized, tok api.SubwordTokenizer, labelMap *labels.Map, opts Options) (*Batch, error) {
	if len(tokenized) == 0 {
		return nil, errors.New("can't encode an empty batch")
	}
	maxSeqLength := align.MaxLen(tokenized)
	if maxSeqLength == 0 {
		return nil, errors.Errorf("all %d sentences of the batch are empty", len(tokenized))
	}
	outsideID, err := labelMap.ID(labels.Outside)
	if err != nil {
		return nil, err
	}

	// offset is the position of the first piece in the token rows.
	width, offset := maxSeqLength, 0
	if opts.Mode != ModeRetokenize {
		before, after := encoding.SpecialTokens(tok)
		width, offset = maxSeqLength+before+after, before
	}
	encOpts := encoding.Options{
		MaxLength:        width,
		AddSpecialTokens: true,
		Padding:          encoding.PadMaxLength,
	}
	encs := make([]api.Encoding, len(tokenized))
	labelIDs := make([]int64, 0, len(tokenized)*width)
	for i, sentence := range tokenized {
		switch opts.Mode {
		case ModeRetokenize:
			encs[i] = encoding.Plus(tok, strings.Join(sentence.Pieces, " "), encOpts)
		default:
			ids, err := pieceIDs(tok, sentence.Pieces)
			if err != nil {
				return nil, errors.WithMessagef(err, "sentence #%d", i)
			}
			encs[i] = encoding.FromIDs(tok, ids, encOpts)
		}

		ids, err := labelMap.IDs(sentence.Labels)
		if err != nil {
			return nil, errors.WithMessagef(err, "sentence #%d", i)
		}
		row := make([]int64, width)
		for j := range row {
			row[j] = int64(outsideID)
		}
		for j, id := range ids {
			if offset+j < width {
				row[offset+j] = int64(id)
			}
		}
		labelIDs = append(labelIDs, row...)
	}

	stacked, err := encoding.Stack(encs)
	if err != nil {
		return nil, err
	}
	b := &Batch{
		TokenIDs:      stacked.InputIDs,
		AttentionMask: stacked.AttentionMask,
		SegmentIDs:    stacked.TokenTypeIDs,
		LabelIDs:      tensors.FromFlatDataAndDimensions(labelIDs, len(tokenized), width),
		MaxSeqLength:  maxSeqLength,
		Width:         width,
	}

	placement := opts.Placement
	if placement == nil {
		placement = device.Host{}
	}
	if err := device.PlaceAll(placement, &b.TokenIDs, &b.AttentionMask, &b.SegmentIDs, &b.LabelIDs); err != nil {
		return nil, err
	}
	klog.V(1).Infof("batch: encoded %d sentences (%s) with width %d on %q", len(tokenized), opts.Mode, width, placement.Device())
	return b, nil
}

// pieceIDs maps pieces to their ids. Pieces outside the vocabulary become the unknown token.
func pieceIDs(tok api.SubwordTokenizer, pieces []string) ([]int, error) {
	ids := make([]int, len(pieces))
	for i, piece := range pieces {
		id, ok := tok.PieceID(piece)
		if !ok {
			unk, err := tok.SpecialTokenID(api.TokUnknown)
			if err != nil {
				return nil, errors.Errorf("piece %q is not in the vocabulary, and the tokenizer has no unknown token", piece)
			}
			id = unk
		}
		ids[i] = id
	}
	return ids, nil
}
