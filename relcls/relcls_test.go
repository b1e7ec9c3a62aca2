package relcls

import (
	"testing"

	"github.com/ryabhmd/scilons-eval/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabels_Union(t *testing.T) {
	f1 := testutil.WriteFile(t, "train.jsonl", `{"text":"x","label":"A"}`+"\n"+`{"text":"y","label":"B"}`+"\n")
	f2 := testutil.WriteFile(t, "dev.jsonl", `{"text":"z","label":"B"}`+"\n"+`{"text":"w","label":"C"}`+"\n")

	set, err := Labels([]string{f1, f2}, Options{})
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"A": {}, "B": {}, "C": {}}, set)
}

func TestLabels_NumericLabels(t *testing.T) {
	f := testutil.WriteFile(t, "train.jsonl", `{"text":"x","label":0}`+"\n"+`{"text":"y","label":1}`)
	set, err := Labels([]string{f}, Options{})
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"0": {}, "1": {}}, set)
}

func TestTextsLabels(t *testing.T) {
	f := testutil.WriteFile(t, "test.jsonl",
		`{"text":"aspirin reduces fever","label":"TREATS"}`+"\n"+
			`{"text":"the test","label":"NONE","extra":[1,2]}`+"\n")

	texts, labels, err := TextsLabels(f, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"aspirin reduces fever", "the test"}, texts)
	assert.Equal(t, []string{"TREATS", "NONE"}, labels)
}

func TestTextsLabels_SkipsMalformedLines(t *testing.T) {
	f := testutil.WriteFile(t, "test.jsonl",
		`{"text":"a","label":"X"}`+"\n"+
			`{"text": "broken", "label"`+"\n"+
			`{"text":"b","label":"Y"}`+"\n"+
			"\n"+
			`{"text":"c","label":"X"}`+"\n")

	var c Collector
	texts, labels, err := TextsLabels(f, Options{Report: c.Report})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, texts)
	assert.Equal(t, []string{"X", "Y", "X"}, labels)

	// One diagnostic per skipped line: the broken object and the blank line.
	require.Len(t, c.Errors, 2)
	assert.Equal(t, 2, c.Errors[0].Line)
	assert.Equal(t, f, c.Errors[0].Path)
	assert.Contains(t, c.Errors[0].Error(), "broken")
	assert.Equal(t, 4, c.Errors[1].Line)
}

func TestTextsLabels_SkipsNonObjects(t *testing.T) {
	f := testutil.WriteFile(t, "test.jsonl",
		"null\n[1]\n\"x\"\n3\n"+`{"text":"a","label":"X"}`+"\n")

	var c Collector
	texts, labels, err := TextsLabels(f, Options{Report: c.Report})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, texts)
	assert.Equal(t, []string{"X"}, labels)
	require.Len(t, c.Errors, 4)
	assert.ErrorIs(t, c.Errors[0], ErrNotObject)
	for i, pe := range c.Errors {
		assert.Equal(t, i+1, pe.Line)
	}

	set, err := Labels([]string{f}, Options{Report: func(*ParseError) {}})
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"X": {}}, set)
}

func TestTextsLabels_DefaultReporter(t *testing.T) {
	f := testutil.WriteFile(t, "test.jsonl", "not json\n"+`{"text":"a","label":"X"}`)
	texts, _, err := TextsLabels(f, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, texts)
}

func TestTextsLabels_Errors(t *testing.T) {
	_, _, err := TextsLabels("/nonexistent/test.jsonl", Options{})
	require.Error(t, err)

	f := testutil.WriteFile(t, "test.jsonl", `{"text":"a"}`)
	_, _, err = TextsLabels(f, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"label"`)

	f = testutil.WriteFile(t, "test.jsonl", `{"text":"a","label":["X"]}`)
	_, _, err = TextsLabels(f, Options{})
	require.Error(t, err)
}

func TestParquetRoundTrip(t *testing.T) {
	path := testutil.WriteFile(t, "train.parquet", "")
	records := []Record{{Text: "aspirin reduces fever", Label: "TREATS"}, {Text: "the test", Label: "NONE"}}
	require.NoError(t, WriteParquet(path, records))

	texts, labels, err := TextsLabelsParquet(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"aspirin reduces fever", "the test"}, texts)
	assert.Equal(t, []string{"TREATS", "NONE"}, labels)

	_, err = ReadParquet(testutil.WriteFile(t, "bad.parquet", "not parquet"))
	require.Error(t, err)
}
