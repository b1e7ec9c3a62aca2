// Package hftokenizer implements a tokenizer for HuggingFace's tokenizer.json format.
// It supports WordPiece (BERT, SciBERT) and BPE (GPT-2, RoBERTa) models, and a greedy
// approximation of Unigram models.
//
// Besides encoding text, it splits single words into sub-word pieces, which is what
// label alignment for token classification needs.
package hftokenizer

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/ryabhmd/scilons-eval/internal/files"
	"github.com/ryabhmd/scilons-eval/tokenizers/api"
)

// TokenizerJSON represents the parts of HuggingFace's tokenizer.json used here.
type TokenizerJSON struct {
	Version      string        `json:"version"`
	AddedTokens  []AddedToken  `json:"added_tokens"`
	Normalizer   *Normalizer   `json:"normalizer"`
	PreTokenizer *PreTokenizer `json:"pre_tokenizer"`
	Decoder      *Decoder      `json:"decoder"`
	Model        Model         `json:"model"`
}

// AddedToken represents a special token added to the vocabulary.
type AddedToken struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
	Special bool   `json:"special"`
}

// Normalizer represents the normalizer configuration.
type Normalizer struct {
	Type        string       `json:"type"`
	Lowercase   bool         `json:"lowercase"`
	Normalizers []Normalizer `json:"normalizers"`
}

// PreTokenizer represents the pre-tokenizer configuration.
type PreTokenizer struct {
	Type           string         `json:"type"`
	AddPrefixSpace bool           `json:"add_prefix_space"`
	PreTokenizers  []PreTokenizer `json:"pretokenizers"`
}

// Decoder represents the decoder configuration.
type Decoder struct {
	Type   string `json:"type"`
	Prefix string `json:"prefix"`
}

// Model represents the tokenizer model (WordPiece, BPE, or Unigram).
type Model struct {
	Type                    string         `json:"type"`
	Vocab                   map[string]int `json:"vocab"`
	Merges                  []string       `json:"merges"`
	UnkToken                string         `json:"unk_token"`
	ContinuingSubwordPrefix string         `json:"continuing_subword_prefix"`
	MaxInputCharsPerWord    int            `json:"max_input_chars_per_word"`
	EndOfWordSuffix         string         `json:"end_of_word_suffix"`
}

// Tokenizer implements api.SubwordTokenizer for HuggingFace tokenizer.json files.
type Tokenizer struct {
	config     *api.Config
	tokenizer  *TokenizerJSON
	idToToken  map[int]string
	mergeRanks map[string]int // For BPE: maps "token1 token2" to merge priority

	// Special token IDs, -1 when not defined.
	unkID, padID, bosID, eosID, clsID, sepID, maskID int

	// Added tokens lookup (content -> id)
	addedTokens map[string]int
}

// Compile time assert that Tokenizer implements api.SubwordTokenizer interface.
var _ api.SubwordTokenizer = &Tokenizer{}

// NewFromFile creates a HuggingFace tokenizer from a local tokenizer.json file path.
// config may be nil.
func NewFromFile(config *api.Config, filePath string) (*Tokenizer, error) {
	content, err := files.ReadAll(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read tokenizer.json file %q", filePath)
	}
	return NewFromContent(config, content)
}

// NewFromContent creates a HuggingFace tokenizer from tokenizer.json content.
func NewFromContent(config *api.Config, content []byte) (*Tokenizer, error) {
	var tj TokenizerJSON
	if err := json.Unmarshal(content, &tj); err != nil {
		return nil, errors.Wrapf(err, "failed to parse tokenizer.json")
	}
	switch tj.Model.Type {
	case "WordPiece", "BPE", "Unigram":
	case "":
		// Older files omit the type for WordPiece models.
		tj.Model.Type = "WordPiece"
	default:
		return nil, errors.Errorf("unsupported tokenizer model type %q", tj.Model.Type)
	}

	t := &Tokenizer{
		config:      config,
		tokenizer:   &tj,
		idToToken:   make(map[int]string, len(tj.Model.Vocab)),
		addedTokens: make(map[string]int),
		unkID:       -1,
		padID:       -1,
		bosID:       -1,
		eosID:       -1,
		clsID:       -1,
		sepID:       -1,
		maskID:      -1,
	}
	for token, id := range tj.Model.Vocab {
		t.idToToken[id] = token
	}
	for _, at := range tj.AddedTokens {
		t.addedTokens[at.Content] = at.ID
		t.idToToken[at.ID] = at.Content
	}
	if tj.Model.Type == "BPE" {
		t.mergeRanks = make(map[string]int, len(tj.Model.Merges))
		for i, merge := range tj.Model.Merges {
			t.mergeRanks[merge] = i
		}
	}
	t.resolveSpecialTokens()
	return t, nil
}

// resolveSpecialTokens maps special tokens to their IDs: first the model's unk_token, then the
// special added tokens, and last the strings given in the config.
func (t *Tokenizer) resolveSpecialTokens() {
	if id, ok := t.tokenizer.Model.Vocab[t.tokenizer.Model.UnkToken]; ok && t.tokenizer.Model.UnkToken != "" {
		t.unkID = id
	}

	for _, at := range t.tokenizer.AddedTokens {
		if !at.Special {
			continue
		}
		switch at.Content {
		case "[UNK]", "<unk>":
			t.unkID = at.ID
		case "[PAD]", "<pad>":
			t.padID = at.ID
		case "[CLS]", "<s>":
			t.clsID = at.ID
		case "[SEP]", "</s>":
			t.sepID = at.ID
		case "[MASK]", "<mask>":
			t.maskID = at.ID
		}
		if t.config != nil {
			if at.Content == t.config.BosToken {
				t.bosID = at.ID
			}
			if at.Content == t.config.EosToken {
				t.eosID = at.ID
			}
		}
	}

	if t.config == nil {
		return
	}
	for _, fallback := range []struct {
		id    *int
		token string
	}{
		{&t.unkID, t.config.UnkToken},
		{&t.padID, t.config.PadToken},
		{&t.clsID, t.config.ClsToken},
		{&t.sepID, t.config.SepToken},
		{&t.maskID, t.config.MaskToken},
		{&t.bosID, t.config.BosToken},
		{&t.eosID, t.config.EosToken},
	} {
		if *fallback.id != -1 || fallback.token == "" {
			continue
		}
		if id, ok := t.TokenToID(fallback.token); ok {
			*fallback.id = id
		}
	}
}

// Tokenize splits a word (or any text) into the sub-word pieces of the vocabulary.
// Pieces that are not in the vocabulary are replaced by the unknown token, if one is defined.
func (t *Tokenizer) Tokenize(word string) []string {
	var pieces []string
	for _, w := range t.preTokenize(t.normalize(word)) {
		pieces = append(pieces, t.tokenizeWord(w)...)
	}
	return pieces
}

// PieceID returns the id of a piece returned by Tokenize.
func (t *Tokenizer) PieceID(piece string) (int, bool) {
	return t.TokenToID(piece)
}

// Encode converts text to a sequence of token IDs, without special tokens.
func (t *Tokenizer) Encode(text string) []int {
	pieces := t.Tokenize(text)
	ids := make([]int, 0, len(pieces))
	for _, p := range pieces {
		if id, ok := t.TokenToID(p); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// unkPiece returns the unknown token as a piece list, or nil if the model has none.
func (t *Tokenizer) unkPiece() []string {
	if t.unkID < 0 {
		return nil
	}
	return []string{t.idToToken[t.unkID]}
}

// tokenizeWord splits a single pre-tokenized word according to the model type.
func (t *Tokenizer) tokenizeWord(word string) []string {
	if word == "" {
		return nil
	}
	if _, ok := t.addedTokens[word]; ok {
		return []string{word}
	}
	switch t.tokenizer.Model.Type {
	case "BPE":
		return t.bpePieces(word)
	case "Unigram":
		return t.unigramPieces(word)
	default:
		return t.wordPiecePieces(word)
	}
}

// wordPiecePieces implements greedy longest-match-first WordPiece (used by BERT).
// A word that can't be fully covered becomes a single unknown piece.
func (t *Tokenizer) wordPiecePieces(word string) []string {
	maxChars := t.tokenizer.Model.MaxInputCharsPerWord
	if maxChars == 0 {
		maxChars = 100
	}
	if len([]rune(word)) > maxChars {
		return t.unkPiece()
	}
	prefix := t.continuingPrefix()

	var pieces []string
	start := 0
	for start < len(word) {
		end := len(word)
		found := ""
		for start < end {
			substr := word[start:end]
			if start > 0 {
				substr = prefix + substr
			}
			if _, ok := t.tokenizer.Model.Vocab[substr]; ok {
				found = substr
				break
			}
			end--
		}
		if found == "" {
			return t.unkPiece()
		}
		pieces = append(pieces, found)
		start = end
	}
	return pieces
}

func (t *Tokenizer) continuingPrefix() string {
	if p := t.tokenizer.Model.ContinuingSubwordPrefix; p != "" {
		return p
	}
	return "##"
}

// bpePieces applies the BPE merges to the symbols of word, lowest rank first.
func (t *Tokenizer) bpePieces(word string) []string {
	var symbols []string
	for _, r := range word {
		symbols = append(symbols, string(r))
	}
	if suffix := t.tokenizer.Model.EndOfWordSuffix; suffix != "" {
		symbols[len(symbols)-1] += suffix
	}

	for len(symbols) > 1 {
		bestRank, bestIdx := -1, -1
		for i := 0; i < len(symbols)-1; i++ {
			if rank, ok := t.mergeRanks[symbols[i]+" "+symbols[i+1]]; ok && (bestRank == -1 || rank < bestRank) {
				bestRank, bestIdx = rank, i
			}
		}
		if bestIdx == -1 {
			break
		}
		merged := symbols[bestIdx] + symbols[bestIdx+1]
		symbols = append(symbols[:bestIdx+1], symbols[bestIdx+2:]...)
		symbols[bestIdx] = merged
	}

	pieces := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if _, ok := t.tokenizer.Model.Vocab[sym]; ok {
			pieces = append(pieces, sym)
		} else {
			pieces = append(pieces, t.unkPiece()...)
		}
	}
	return pieces
}

// unigramPieces is a greedy longest-match approximation of Unigram segmentation; the full
// algorithm needs the piece scores, which are not kept.
func (t *Tokenizer) unigramPieces(word string) []string {
	var pieces []string
	runes := []rune(word)
	for start := 0; start < len(runes); {
		end := len(runes)
		for ; end > start; end-- {
			if _, ok := t.tokenizer.Model.Vocab[string(runes[start:end])]; ok {
				break
			}
		}
		if end == start {
			pieces = append(pieces, t.unkPiece()...)
			start++
			continue
		}
		pieces = append(pieces, string(runes[start:end]))
		start = end
	}
	return pieces
}

// Decode converts a sequence of token IDs back to text.
func (t *Tokenizer) Decode(ids []int) string {
	tokens := make([]string, 0, len(ids))
	for _, id := range ids {
		if token, ok := t.idToToken[id]; ok {
			tokens = append(tokens, token)
		}
	}

	decoderType := ""
	if t.tokenizer.Decoder != nil {
		decoderType = t.tokenizer.Decoder.Type
	}
	switch decoderType {
	case "ByteLevel":
		return byteLevelDecode(strings.Join(tokens, ""))
	case "Metaspace":
		return strings.TrimLeft(strings.ReplaceAll(strings.Join(tokens, ""), "▁", " "), " ")
	default:
		prefix := t.continuingPrefix()
		if t.tokenizer.Decoder != nil && t.tokenizer.Decoder.Prefix != "" {
			prefix = t.tokenizer.Decoder.Prefix
		}
		var result strings.Builder
		for i, token := range tokens {
			if strings.HasPrefix(token, prefix) {
				result.WriteString(strings.TrimPrefix(token, prefix))
				continue
			}
			if i > 0 {
				result.WriteString(" ")
			}
			result.WriteString(token)
		}
		return result.String()
	}
}

// SpecialTokenID returns the ID for a given special token.
func (t *Tokenizer) SpecialTokenID(token api.SpecialToken) (int, error) {
	switch token {
	case api.TokUnknown:
		if t.unkID >= 0 {
			return t.unkID, nil
		}
	case api.TokPad:
		if t.padID >= 0 {
			return t.padID, nil
		}
	case api.TokBeginningOfSentence:
		if t.bosID >= 0 {
			return t.bosID, nil
		}
		// Fall back to CLS for BERT-style models
		if t.clsID >= 0 {
			return t.clsID, nil
		}
	case api.TokEndOfSentence:
		if t.eosID >= 0 {
			return t.eosID, nil
		}
		// Fall back to SEP for BERT-style models
		if t.sepID >= 0 {
			return t.sepID, nil
		}
	case api.TokMask:
		if t.maskID >= 0 {
			return t.maskID, nil
		}
	case api.TokClassification:
		if t.clsID >= 0 {
			return t.clsID, nil
		}
	}
	return 0, errors.Errorf("special token %s not found", token)
}

// VocabSize returns the size of the vocabulary, added tokens included.
func (t *Tokenizer) VocabSize() int {
	return len(t.idToToken)
}

// TokenizerType returns the model type (WordPiece, BPE, Unigram).
func (t *Tokenizer) TokenizerType() string {
	return t.tokenizer.Model.Type
}

// TokenToID converts a token string to its ID.
func (t *Tokenizer) TokenToID(token string) (int, bool) {
	if id, ok := t.addedTokens[token]; ok {
		return id, true
	}
	id, ok := t.tokenizer.Model.Vocab[token]
	return id, ok
}
