package tokenizers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ryabhmd/scilons-eval/tokenizers/api"
	"github.com/ryabhmd/scilons-eval/tokenizers/hftokenizer"
	"github.com/ryabhmd/scilons-eval/tokenizers/sentencepiece"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalTokenizerJSON = `{
  "added_tokens": [{"id": 0, "content": "<pad>", "special": true}],
  "model": {
    "type": "WordPiece",
    "unk_token": "<unk>",
    "vocab": {"<pad>": 0, "<unk>": 1, "<cls>": 2, "<sep>": 3, "gene": 4, "##s": 5}
  }
}`

func TestNewFromFile_TokenizerJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tokenizer.json")
	require.NoError(t, os.WriteFile(path, []byte(minimalTokenizerJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tokenizer_config.json"),
		[]byte(`{"cls_token": "<cls>", "sep_token": {"content": "<sep>", "special": true}, "model_max_length": 512}`), 0o644))

	tok, err := NewFromFile(path, Options{})
	require.NoError(t, err)
	require.IsType(t, &hftokenizer.Tokenizer{}, tok)

	assert.Equal(t, []string{"gene", "##s"}, tok.Tokenize("genes"))
	cls, err := tok.SpecialTokenID(api.TokClassification)
	require.NoError(t, err)
	assert.Equal(t, 2, cls)
	sep, err := tok.SpecialTokenID(api.TokEndOfSentence)
	require.NoError(t, err)
	assert.Equal(t, 3, sep)
}

func TestNewFromFile_WithoutConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokenizer.json")
	require.NoError(t, os.WriteFile(path, []byte(minimalTokenizerJSON), 0o644))

	tok, err := NewFromFile(path, Options{})
	require.NoError(t, err)
	_, err = tok.SpecialTokenID(api.TokClassification)
	assert.Error(t, err)
}

func TestNewFromFile_UnknownExtension(t *testing.T) {
	_, err := NewFromFile("merges.bin", Options{})
	require.Error(t, err)
}

func TestDescribe(t *testing.T) {
	tok, err := hftokenizer.NewFromContent(nil, []byte(minimalTokenizerJSON))
	require.NoError(t, err)
	info := Describe(tok)
	assert.Equal(t, Info{Kind: "WordPiece", VocabSize: 6}, info)
	assert.Equal(t, "WordPiece, 6 tokens", info.String())
	assert.Equal(t, "SentencePiece", Describe(&sentencepiece.Tokenizer{}).String())
}
