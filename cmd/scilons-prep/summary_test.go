package main

import (
	"fmt"
	"testing"

	"github.com/ryabhmd/scilons-eval/config"
	"github.com/ryabhmd/scilons-eval/internal/testutil"
	"github.com/ryabhmd/scilons-eval/prepare"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	train := testutil.WriteFile(t, "train.txt", "aspirin\tNN\t_\tB-Drug\nreduces\tVBZ\t_\tO\n")
	jsonl := testutil.WriteFile(t, "train.jsonl", `{"text":"hello","label":"NONE"}`+"\n")
	cfg, err := config.Load(testutil.WriteFile(t, "config.yaml", fmt.Sprintf(`datasets:
  - name: bc5cdr
    task: ner
    splits: {train: %q}
  - name: chemprot
    task: classification
    splits: {test: %q}
`, train, jsonl)))
	require.NoError(t, err)
	p, err := prepare.New(cfg, testutil.WordPiece(t))
	require.NoError(t, err)
	report, err := p.Run()
	require.NoError(t, err)

	out := render(report)
	assert.Contains(t, out, report.RunID.String())
	assert.Contains(t, out, "tokenizer WordPiece, 21 tokens")
	assert.Contains(t, out, "bc5cdr (sequence labeling, 2 labels)")
	assert.Contains(t, out, "B-Drug O")
	assert.Contains(t, out, "chemprot (classification, 1 labels)")
	assert.Contains(t, out, "Mean len")
	assert.Contains(t, out, "train")
	assert.Contains(t, out, "test")
}
