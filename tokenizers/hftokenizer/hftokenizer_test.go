package hftokenizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ryabhmd/scilons-eval/tokenizers/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test tokenizer.json content for a WordPiece model (BERT-style)
var testWordPieceTokenizerJSON = []byte(`{
  "version": "1.0",
  "truncation": null,
  "padding": null,
  "added_tokens": [
    {"id": 0, "content": "[PAD]", "special": true},
    {"id": 100, "content": "[UNK]", "special": true},
    {"id": 101, "content": "[CLS]", "special": true},
    {"id": 102, "content": "[SEP]", "special": true},
    {"id": 103, "content": "[MASK]", "special": true}
  ],
  "normalizer": {
    "type": "BertNormalizer",
    "lowercase": true
  },
  "pre_tokenizer": {
    "type": "BertPreTokenizer"
  },
  "decoder": {
    "type": "WordPiece",
    "prefix": "##"
  },
  "model": {
    "type": "WordPiece",
    "unk_token": "[UNK]",
    "continuing_subword_prefix": "##",
    "max_input_chars_per_word": 100,
    "vocab": {
      "[PAD]": 0,
      "hello": 1,
      "world": 2,
      "test": 3,
      "##ing": 4,
      "##ed": 5,
      "[UNK]": 100,
      "[CLS]": 101,
      "[SEP]": 102,
      "[MASK]": 103,
      "the": 104,
      "a": 105,
      "is": 106,
      "this": 107,
      "-": 108
    }
  }
}`)

// Test tokenizer.json content for a BPE model (GPT-2-style)
var testBPETokenizerJSON = []byte(`{
  "version": "1.0",
  "added_tokens": [
    {"id": 0, "content": "<|endoftext|>", "special": true},
    {"id": 1, "content": "<|padding|>", "special": true}
  ],
  "normalizer": null,
  "pre_tokenizer": {
    "type": "ByteLevel",
    "add_prefix_space": false
  },
  "decoder": {
    "type": "ByteLevel"
  },
  "model": {
    "type": "BPE",
    "vocab": {
      "hello": 2,
      "world": 3,
      "hel": 4,
      "lo": 5,
      "wor": 6,
      "ld": 7,
      "test": 8,
      " ": 9,
      "Ġhello": 10,
      "Ġworld": 11,
      "Ġtest": 12
    },
    "merges": [
      "h e",
      "l o",
      "w o",
      "r l",
      "he l",
      "hel lo",
      "wo r",
      "wor ld"
    ]
  }
}`)

func newWordPiece(t *testing.T) *Tokenizer {
	tok, err := NewFromContent(nil, testWordPieceTokenizerJSON)
	require.NoError(t, err)
	return tok
}

func TestNewFromContent(t *testing.T) {
	wp := newWordPiece(t)
	assert.Equal(t, "WordPiece", wp.TokenizerType())

	bpe, err := NewFromContent(nil, testBPETokenizerJSON)
	require.NoError(t, err)
	assert.Equal(t, "BPE", bpe.TokenizerType())

	_, err = NewFromContent(nil, []byte(`{"model": {"type": "CharLevel"}}`))
	require.Error(t, err)

	_, err = NewFromContent(nil, []byte(`{not json`))
	require.Error(t, err)
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokenizer.json")
	require.NoError(t, os.WriteFile(path, testWordPieceTokenizerJSON, 0o644))
	tok, err := NewFromFile(nil, path)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, tok.Encode("hello world"))

	_, err = NewFromFile(nil, filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestWordPiece_Tokenize(t *testing.T) {
	tok := newWordPiece(t)

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single word in vocab", "hello", []string{"hello"}},
		{"lowercased", "Hello", []string{"hello"}},
		{"word with subword", "testing", []string{"test", "##ing"}},
		{"punctuation split", "test-ed", []string{"test", "-", "[UNK]"}},
		{"unknown word", "xyz", []string{"[UNK]"}},
		{"whitespace only", "   ", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tok.Tokenize(tt.input))
		})
	}
}

func TestWordPiece_Encode(t *testing.T) {
	tok := newWordPiece(t)

	tests := []struct {
		name  string
		input string
		want  []int
	}{
		{"single word in vocab", "hello", []int{1}},
		{"multiple words", "hello world", []int{1, 2}},
		{"word with subword", "testing", []int{3, 4}}, // test + ##ing
		{"the", "the", []int{104}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tok.Encode(tt.input))
		})
	}
}

func TestWordPiece_PieceID(t *testing.T) {
	tok := newWordPiece(t)
	for _, piece := range tok.Tokenize("testing") {
		_, ok := tok.PieceID(piece)
		assert.True(t, ok, "piece %q", piece)
	}
	id, ok := tok.PieceID("[CLS]")
	assert.True(t, ok)
	assert.Equal(t, 101, id)
	_, ok = tok.PieceID("nope")
	assert.False(t, ok)
}

func TestWordPiece_Decode(t *testing.T) {
	tok := newWordPiece(t)

	tests := []struct {
		name  string
		input []int
		want  string
	}{
		{"single word", []int{1}, "hello"},
		{"multiple words", []int{1, 2}, "hello world"},
		{"word with subword", []int{3, 4}, "testing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tok.Decode(tt.input))
		})
	}
}

func TestWordPiece_SpecialTokenID(t *testing.T) {
	tok := newWordPiece(t)

	tests := []struct {
		name  string
		token api.SpecialToken
		want  int
	}{
		{"unknown token", api.TokUnknown, 100},
		{"pad token", api.TokPad, 0},
		{"mask token", api.TokMask, 103},
		{"cls token", api.TokClassification, 101},
		{"cls/bos token", api.TokBeginningOfSentence, 101}, // Falls back to CLS
		{"sep/eos token", api.TokEndOfSentence, 102},       // Falls back to SEP
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tok.SpecialTokenID(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSpecialTokensFromConfig(t *testing.T) {
	tok, err := NewFromContent(&api.Config{BosToken: "<|endoftext|>", EosToken: "<|endoftext|>", PadToken: "<|padding|>"}, testBPETokenizerJSON)
	require.NoError(t, err)

	bos, err := tok.SpecialTokenID(api.TokBeginningOfSentence)
	require.NoError(t, err)
	assert.Equal(t, 0, bos)
	pad, err := tok.SpecialTokenID(api.TokPad)
	require.NoError(t, err)
	assert.Equal(t, 1, pad)
	_, err = tok.SpecialTokenID(api.TokMask)
	assert.Error(t, err)
}

func TestBPE_Tokenize(t *testing.T) {
	tok, err := NewFromContent(nil, testBPETokenizerJSON)
	require.NoError(t, err)

	assert.Equal(t, []string{"hello"}, tok.Tokenize("hello"))
	assert.Equal(t, []int{2}, tok.Encode("hello"))
	assert.Equal(t, " hello", tok.Decode([]int{10}))
}

func TestVocabSize(t *testing.T) {
	// 15 vocabulary entries, the added tokens are among them.
	assert.Equal(t, 15, newWordPiece(t).VocabSize())
}

func TestSplitPunctuation(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"Hello, world!", []string{"Hello", ",", "world", "!"}},
		{"It's a test.", []string{"It", "'", "s", "a", "test", "."}},
		{"simple text", []string{"simple", "text"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, splitPunctuation(tt.input, true))
		})
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"hello world", "hello world"},
		{"hello\tworld", "hello world"},
		{"hello\nworld", "hello world"},
		{"hello\x00world", "helloworld"}, // null char removed
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanText(tt.input))
		})
	}
}
