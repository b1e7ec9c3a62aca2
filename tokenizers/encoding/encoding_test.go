package encoding

import (
	"testing"

	"github.com/gomlx/gomlx/pkg/core/dtypes"
	"github.com/ryabhmd/scilons-eval/internal/testutil"
	"github.com/ryabhmd/scilons-eval/tokenizers/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bare has no special tokens at all.
type bare struct{}

func (bare) Encode(text string) []int { return []int{len(text)} }
func (bare) Decode([]int) string      { return "" }
func (bare) SpecialTokenID(api.SpecialToken) (int, error) {
	return 0, assert.AnError
}

func TestPlus(t *testing.T) {
	tok := testutil.WordPiece(t)

	enc := Plus(tok, "hello world", Options{AddSpecialTokens: true})
	assert.Equal(t, []int{101, 1, 2, 102}, enc.InputIDs)
	assert.Equal(t, []int{1, 1, 1, 1}, enc.AttentionMask)
	assert.Equal(t, []int{0, 0, 0, 0}, enc.TokenTypeIDs)

	enc = Plus(tok, "hello world", Options{})
	assert.Equal(t, []int{1, 2}, enc.InputIDs)

	enc = Plus(tok, "hello", Options{AddSpecialTokens: true, MaxLength: 5, Padding: PadMaxLength})
	assert.Equal(t, []int{101, 1, 102, 0, 0}, enc.InputIDs)
	assert.Equal(t, []int{1, 1, 1, 0, 0}, enc.AttentionMask)
}

func TestFromIDs_Truncation(t *testing.T) {
	tok := testutil.WordPiece(t)

	enc := FromIDs(tok, []int{1, 2, 3, 4}, Options{AddSpecialTokens: true, MaxLength: 4})
	assert.Equal(t, []int{101, 1, 2, 102}, enc.InputIDs, "special tokens survive truncation")

	enc = FromIDs(tok, []int{1, 2, 3, 4}, Options{MaxLength: 3})
	assert.Equal(t, []int{1, 2, 3}, enc.InputIDs)

	enc = FromIDs(tok, []int{1, 2}, Options{AddSpecialTokens: true, MaxLength: 1})
	assert.Equal(t, []int{101}, enc.InputIDs)
}

func TestFromIDs_NoSpecialTokens(t *testing.T) {
	enc := FromIDs(bare{}, []int{7, 8}, Options{AddSpecialTokens: true, MaxLength: 3, Padding: PadMaxLength})
	assert.Equal(t, []int{7, 8, 0}, enc.InputIDs)
	assert.Equal(t, 0, PadID(bare{}))
}

func TestEncodeBatch(t *testing.T) {
	tok := testutil.WordPiece(t)
	b, err := EncodeBatch(tok, []string{"hello", "this is a test"}, Options{AddSpecialTokens: true, Padding: PadLongest})
	require.NoError(t, err)
	assert.Equal(t, 2, b.Size())
	assert.Equal(t, []int{2, 6}, b.InputIDs.Shape().Dimensions)
	assert.Equal(t, dtypes.Int64, b.InputIDs.Shape().DType)
	assert.Equal(t, [][]int64{
		{101, 1, 102, 0, 0, 0},
		{101, 107, 106, 105, 3, 102},
	}, b.InputIDs.Value())
	assert.Equal(t, [][]int64{
		{1, 1, 1, 0, 0, 0},
		{1, 1, 1, 1, 1, 1},
	}, b.AttentionMask.Value())
}

func TestStack_Ragged(t *testing.T) {
	_, err := Stack([]api.Encoding{
		{InputIDs: []int{1}, AttentionMask: []int{1}, TokenTypeIDs: []int{0}},
		{InputIDs: []int{1, 2}, AttentionMask: []int{1, 1}, TokenTypeIDs: []int{0, 0}},
	})
	require.Error(t, err)

	var nilBatch *Batch
	assert.Equal(t, 0, nilBatch.Size())
}
