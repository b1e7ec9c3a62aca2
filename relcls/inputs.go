package relcls

import (
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/pkg/errors"
	"github.com/ryabhmd/scilons-eval/device"
	"github.com/ryabhmd/scilons-eval/labels"
	"github.com/ryabhmd/scilons-eval/tokenizers/api"
	"github.com/ryabhmd/scilons-eval/tokenizers/encoding"
	"k8s.io/klog/v2"
)

// DefaultMaxLength is the truncation length of Tokenize when none is given.
const DefaultMaxLength = 512

// Tokenize encodes texts with special tokens, truncating each to maxLength (DefaultMaxLength if
// maxLength <= 0) and padding the batch to its longest row.
func Tokenize(tok api.Tokenizer, texts []string, maxLength int) (*encoding.Batch, error) {
	if len(texts) == 0 {
		return nil, errors.New("no texts to tokenize")
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return encoding.EncodeBatch(tok, texts, encoding.Options{
		MaxLength:        maxLength,
		AddSpecialTokens: true,
		Padding:          encoding.PadLongest,
	})
}

// Inputs are the model inputs of a classification batch.
type Inputs struct {
	InputIDs      *tensors.Tensor
	AttentionMask *tensors.Tensor
	TokenTypeIDs  *tensors.Tensor

	// Labels holds the id of each example's label, in batch order.
	Labels []int
}

// PrepareInput places the three tensors of enc with placement (device.Host if nil) and maps
// every label to its id. It fails with a *labels.LookupError for labels missing from labelMap.
func PrepareInput(enc *encoding.Batch, labelMap *labels.Map, exampleLabels []string, placement device.Placement) (*Inputs, error) {
	if enc == nil {
		return nil, errors.New("nil encoded batch")
	}
	if n := enc.Size(); n != len(exampleLabels) {
		return nil, errors.Errorf("batch has %d examples but %d labels were given", n, len(exampleLabels))
	}
	ids, err := labelMap.IDs(exampleLabels)
	if err != nil {
		return nil, err
	}
	if placement == nil {
		placement = device.Host{}
	}
	in := &Inputs{
		InputIDs:      enc.InputIDs,
		AttentionMask: enc.AttentionMask,
		TokenTypeIDs:  enc.TokenTypeIDs,
		Labels:        ids,
	}
	if err := device.PlaceAll(placement, &in.InputIDs, &in.AttentionMask, &in.TokenTypeIDs); err != nil {
		return nil, err
	}
	klog.V(1).Infof("relcls: prepared %d examples on %q", len(ids), placement.Device())
	return in, nil
}
