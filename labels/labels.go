// Package labels implements Map, the bijection between label strings and dense integer ids.
//
// A Map is built once per dataset and never modified afterwards, so it can be shared by
// concurrent readers.
package labels

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// Outside is the BIO tag of tokens outside any entity. Its id pads label sequences.
const Outside = "O"

// Map is an immutable bijection between labels and the ids 0..Len()-1.
type Map struct {
	ids   map[string]int
	names []string
}

// LookupError is returned when a label (or an id) is not part of the Map. It indicates the map
// was built from a different corpus than the one being encoded.
type LookupError struct {
	Label string
	ID    int
	ByID  bool
}

func (e *LookupError) Error() string {
	if e.ByID {
		return fmt.Sprintf("label id %d not in label map", e.ID)
	}
	return fmt.Sprintf("label %q not in label map", e.Label)
}

// New creates a Map assigning ids in the order labels are given.
func New(labels []string) (*Map, error) {
	m := &Map{ids: make(map[string]int, len(labels)), names: make([]string, 0, len(labels))}
	for _, label := range labels {
		if _, dup := m.ids[label]; dup {
			return nil, errors.Errorf("duplicate label %q", label)
		}
		m.ids[label] = len(m.names)
		m.names = append(m.names, label)
	}
	return m, nil
}

// FromSet creates a Map from an unordered label set. Labels are sorted, so ids are
// deterministic for a given set.
func FromSet(set map[string]struct{}) *Map {
	names := make([]string, 0, len(set))
	for label := range set {
		names = append(names, label)
	}
	sort.Strings(names)
	m, _ := New(names) // Keys of a set are unique.
	return m
}

// FromIDs creates a Map from an explicit label -> id assignment, which must be a bijection
// onto 0..len(ids)-1.
func FromIDs(ids map[string]int) (*Map, error) {
	names := make([]string, len(ids))
	filled := make([]bool, len(ids))
	for label, id := range ids {
		if id < 0 || id >= len(ids) {
			return nil, errors.Errorf("label %q has id %d, ids must be dense in [0, %d)", label, id, len(ids))
		}
		if filled[id] {
			return nil, errors.Errorf("labels %q and %q share the id %d", names[id], label, id)
		}
		names[id], filled[id] = label, true
	}
	return New(names)
}

// Len returns the number of labels.
func (m *Map) Len() int { return len(m.names) }

// Has returns whether label is in the map.
func (m *Map) Has(label string) bool {
	_, ok := m.ids[label]
	return ok
}

// ID returns the id of label, or a *LookupError.
func (m *Map) ID(label string) (int, error) {
	id, ok := m.ids[label]
	if !ok {
		return 0, &LookupError{Label: label}
	}
	return id, nil
}

// IDs maps every label to its id. It fails on the first unknown label.
func (m *Map) IDs(labels []string) ([]int, error) {
	ids := make([]int, len(labels))
	for i, label := range labels {
		id, err := m.ID(label)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

// Label is the inverse of ID.
func (m *Map) Label(id int) (string, error) {
	if id < 0 || id >= len(m.names) {
		return "", &LookupError{ID: id, ByID: true}
	}
	return m.names[id], nil
}

// Labels returns the labels ordered by id.
func (m *Map) Labels() []string {
	return append([]string(nil), m.names...)
}

// MarshalJSON encodes the map as a JSON object label -> id.
func (m *Map) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ids)
}

// UnmarshalJSON decodes a JSON object label -> id, see FromIDs.
func (m *Map) UnmarshalJSON(data []byte) error {
	var ids map[string]int
	if err := json.Unmarshal(data, &ids); err != nil {
		return errors.Wrap(err, "failed to decode label map")
	}
	decoded, err := FromIDs(ids)
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}
