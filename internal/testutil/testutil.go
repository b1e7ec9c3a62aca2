// Package testutil holds fixtures shared by the tests of several packages.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ryabhmd/scilons-eval/tokenizers/hftokenizer"
	"github.com/stretchr/testify/require"
)

// WordPieceJSON is a tiny BERT-style tokenizer.json. Ids: [PAD]=0, [UNK]=100, [CLS]=101, [SEP]=102.
var WordPieceJSON = []byte(`{
  "version": "1.0",
  "added_tokens": [
    {"id": 0, "content": "[PAD]", "special": true},
    {"id": 100, "content": "[UNK]", "special": true},
    {"id": 101, "content": "[CLS]", "special": true},
    {"id": 102, "content": "[SEP]", "special": true},
    {"id": 103, "content": "[MASK]", "special": true}
  ],
  "normalizer": {"type": "BertNormalizer", "lowercase": true},
  "pre_tokenizer": {"type": "BertPreTokenizer"},
  "decoder": {"type": "WordPiece", "prefix": "##"},
  "model": {
    "type": "WordPiece",
    "unk_token": "[UNK]",
    "continuing_subword_prefix": "##",
    "max_input_chars_per_word": 100,
    "vocab": {
      "[PAD]": 0, "hello": 1, "world": 2, "test": 3, "##ing": 4, "##ed": 5,
      "[UNK]": 100, "[CLS]": 101, "[SEP]": 102, "[MASK]": 103,
      "the": 104, "a": 105, "is": 106, "this": 107, "-": 108,
      "aspirin": 110, "reduces": 111, "fever": 112, "inflam": 113, "##mation": 114, ".": 115
    }
  }
}`)

// WordPiece returns a tokenizer built from WordPieceJSON.
func WordPiece(t testing.TB) *hftokenizer.Tokenizer {
	t.Helper()
	tok, err := hftokenizer.NewFromContent(nil, WordPieceJSON)
	require.NoError(t, err)
	return tok
}

// WriteFile writes content to name inside a fresh temporary directory and returns its path.
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
