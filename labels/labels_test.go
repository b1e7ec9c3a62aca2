package labels

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m, err := New([]string{"O", "B-Drug", "I-Drug"})
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())

	id, err := m.ID("I-Drug")
	require.NoError(t, err)
	assert.Equal(t, 2, id)
	label, err := m.Label(1)
	require.NoError(t, err)
	assert.Equal(t, "B-Drug", label)

	_, err = New([]string{"O", "O"})
	assert.Error(t, err)
}

func TestLookupError(t *testing.T) {
	m, err := New([]string{"O"})
	require.NoError(t, err)

	_, err = m.ID("B-Gene")
	var lookupErr *LookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, "B-Gene", lookupErr.Label)

	_, err = m.Label(7)
	require.True(t, errors.As(err, &lookupErr))
	assert.True(t, lookupErr.ByID)
	assert.Equal(t, 7, lookupErr.ID)

	_, err = m.IDs([]string{"O", "I-Gene"})
	assert.Error(t, err)
}

func TestFromSet(t *testing.T) {
	m := FromSet(map[string]struct{}{"O": {}, "B-Gene": {}, "I-Gene": {}})
	assert.Equal(t, []string{"B-Gene", "I-Gene", "O"}, m.Labels())
	assert.True(t, m.Has("O"))
	assert.False(t, m.Has("B-Drug"))
}

func TestFromIDs(t *testing.T) {
	m, err := FromIDs(map[string]int{"O": 0, "B-X": 2, "I-X": 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"O", "I-X", "B-X"}, m.Labels())

	_, err = FromIDs(map[string]int{"O": 0, "B-X": 3})
	assert.Error(t, err)
	_, err = FromIDs(map[string]int{"O": 0, "B-X": 0})
	assert.Error(t, err)
}

func TestFromIDs_EmptyLabel(t *testing.T) {
	// Either iteration order must detect the shared id.
	for range 20 {
		_, err := FromIDs(map[string]int{"": 0, "O": 0})
		require.Error(t, err)
	}

	m, err := FromIDs(map[string]int{"": 1, "O": 0})
	require.NoError(t, err)
	id, err := m.ID("")
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func TestJSON(t *testing.T) {
	m, err := New([]string{"O", "B-Drug"})
	require.NoError(t, err)
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"O": 0, "B-Drug": 1}`, string(data))

	var decoded Map
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, m.Labels(), decoded.Labels())
}
