// Package api defines the tokenizer capability consumed by the data preparation stages.
// It's kept apart from the backends so `tokenizers` can import all of them without cycles.
package api

// Tokenizer interface allows one to convert text to "tokens" (integer ids) and back.
//
// It also allows mapping of special tokens: tokens with a common semantic (like padding) but that
// may map to different ids (int) for different tokenizers.
type Tokenizer interface {
	Encode(text string) []int
	Decode([]int) string

	// SpecialTokenID returns ID for given special token if registered, or an error if not.
	SpecialTokenID(token SpecialToken) (int, error)
}

// SubwordTokenizer extends Tokenizer with the word level splitting used for label alignment:
// a single word is split into the sub-word pieces of the vocabulary, and pieces can be mapped
// back to ids without re-tokenizing text.
type SubwordTokenizer interface {
	Tokenizer

	// Tokenize splits word into its sub-word pieces. It may return no pieces, e.g. for
	// whitespace-only input.
	Tokenize(word string) []string

	// PieceID returns the vocabulary id of a piece returned by Tokenize.
	PieceID(piece string) (int, bool)
}

// Config holds the special token strings of a tokenizer, usually read from
// tokenizer_config.json. Any field may be left empty.
type Config struct {
	UnkToken  string `json:"unk_token"`
	PadToken  string `json:"pad_token"`
	ClsToken  string `json:"cls_token"`
	SepToken  string `json:"sep_token"`
	MaskToken string `json:"mask_token"`
	BosToken  string `json:"bos_token"`
	EosToken  string `json:"eos_token"`
}

// Encoding is the per-sequence output of an "encode-plus" style call: ids with special tokens,
// the attention mask (1 for real tokens, 0 for padding) and the segment ids.
// All three slices always have the same length.
type Encoding struct {
	InputIDs      []int
	AttentionMask []int
	TokenTypeIDs  []int
}

// Len returns the number of positions in the encoding, padding included.
func (e Encoding) Len() int { return len(e.InputIDs) }

// SpecialToken is an enum of commonly used special tokens.
type SpecialToken int

const (
	TokBeginningOfSentence SpecialToken = iota
	TokEndOfSentence
	TokUnknown
	TokPad
	TokMask
	TokClassification
	TokSpecialTokensCount
)

var specialTokenNames = [...]string{
	TokBeginningOfSentence: "beginning_of_sentence",
	TokEndOfSentence:       "end_of_sentence",
	TokUnknown:             "unknown",
	TokPad:                 "pad",
	TokMask:                "mask",
	TokClassification:      "classification",
	TokSpecialTokensCount:  "special_tokens_count",
}

func (t SpecialToken) String() string {
	if t < 0 || int(t) >= len(specialTokenNames) {
		return "SpecialToken(invalid)"
	}
	return specialTokenNames[t]
}
