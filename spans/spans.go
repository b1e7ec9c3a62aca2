// Package spans reconstructs labeled entity spans from BIO tag sequences and scores predicted
// spans against gold ones.
package spans

import (
	"fmt"
	"strings"

	"github.com/ryabhmd/scilons-eval/labels"
)

// Span is an entity occurrence over the inclusive position range [Start, End].
type Span struct {
	Type  string `json:"type"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

func (s Span) String() string {
	return fmt.Sprintf("%s[%d:%d]", s.Type, s.Start, s.End)
}

// Len returns the number of positions covered by the span.
func (s Span) Len() int { return s.End - s.Start + 1 }

const (
	beginPrefix  = "B-"
	insidePrefix = "I-"
)

// Extract returns the spans of a sequence of label ids, decoded with labelMap.
// Its only error is a *labels.LookupError for ids not in the map.
func Extract(ids []int, labelMap *labels.Map) ([]Span, error) {
	tags := make([]string, len(ids))
	for i, id := range ids {
		tag, err := labelMap.Label(id)
		if err != nil {
			return nil, err
		}
		tags[i] = tag
	}
	return ExtractTags(tags), nil
}

// ExtractTags returns the spans of a BIO tag sequence in a single left to right pass.
//
// Malformed sequences are repaired, never rejected: an "I-X" with no open span, or following a
// span of another type, starts a new span. Any tag other than "B-"/"I-" closes the open span.
func ExtractTags(tags []string) []Span {
	var (
		result  []Span
		current *Span
	)
	closeCurrent := func() {
		if current != nil {
			result = append(result, *current)
			current = nil
		}
	}
	for i, tag := range tags {
		switch {
		case strings.HasPrefix(tag, beginPrefix):
			closeCurrent()
			current = &Span{Type: tag[len(beginPrefix):], Start: i, End: i}
		case strings.HasPrefix(tag, insidePrefix):
			typ := tag[len(insidePrefix):]
			if current != nil && current.Type == typ {
				current.End = i
				continue
			}
			closeCurrent()
			current = &Span{Type: typ, Start: i, End: i}
		default:
			closeCurrent()
		}
	}
	closeCurrent()
	return result
}

// Expand is the inverse of ExtractTags for well-formed spans: it returns n tags, "B-"/"I-" over
// each span and labels.Outside elsewhere. Spans are assumed sorted and non overlapping, and
// positions at or beyond n are ignored.
func Expand(spans []Span, n int) []string {
	tags := make([]string, n)
	for i := range tags {
		tags[i] = labels.Outside
	}
	for _, s := range spans {
		for i := max(s.Start, 0); i <= s.End && i < n; i++ {
			if i == s.Start {
				tags[i] = beginPrefix + s.Type
			} else {
				tags[i] = insidePrefix + s.Type
			}
		}
	}
	return tags
}
