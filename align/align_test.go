package align

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/ryabhmd/scilons-eval/corpus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkSplitter splits words in pieces of at most 3 bytes, marking continuations with "##".
// Blank words have no pieces.
type chunkSplitter struct{}

func (chunkSplitter) Tokenize(word string) []string {
	word = strings.TrimSpace(word)
	var pieces []string
	for i := 0; i < len(word); i += 3 {
		piece := word[i:min(i+3, len(word))]
		if i > 0 {
			piece = "##" + piece
		}
		pieces = append(pieces, piece)
	}
	return pieces
}

func TestSentences(t *testing.T) {
	sentences := []corpus.Sentence{
		{{Text: "Aspirin", Tag: "B-Drug"}, {Text: "is", Tag: "O"}},
		{{Text: "COX", Tag: "B-Gene"}},
	}
	got, err := Sentences(sentences, chunkSplitter{}, Options{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, []string{"Asp", "##iri", "##n", "is"}, got[0].Pieces)
	assert.Equal(t, []string{"B-Drug", "B-Drug", "B-Drug", "O"}, got[0].Labels)
	assert.Equal(t, []string{"COX"}, got[1].Pieces)
	assert.Equal(t, []string{"B-Gene"}, got[1].Labels)

	for _, tokenized := range got {
		assert.Equal(t, len(tokenized.Pieces), len(tokenized.Labels))
	}
	assert.Equal(t, 4, MaxLen(got))
	assert.Equal(t, []string{"B-Drug", "B-Drug", "B-Drug", "O", "B-Gene"}, FlattenLabels(got))
}

func TestSentences_EmptyDrop(t *testing.T) {
	sentences := []corpus.Sentence{
		{{Text: "a", Tag: "O"}, {Text: " ", Tag: "B-X"}, {Text: "b", Tag: "I-X"}},
	}
	var dropped []corpus.Token
	got, err := Sentences(sentences, chunkSplitter{}, Options{
		OnEmpty: func(sentence, position int, tok corpus.Token) {
			assert.Equal(t, 0, sentence)
			assert.Equal(t, 1, position)
			dropped = append(dropped, tok)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got[0].Pieces)
	assert.Equal(t, []string{"O", "I-X"}, got[0].Labels)
	assert.Equal(t, []corpus.Token{{Text: " ", Tag: "B-X"}}, dropped)
}

func TestSentences_EmptyError(t *testing.T) {
	sentences := []corpus.Sentence{{{Text: "\t", Tag: "O"}}}
	_, err := Sentences(sentences, chunkSplitter{}, Options{Empty: EmptyError})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyExpansion))
}
