// Package relcls loads relation extraction and text classification datasets, where every record
// is a text with a single label, and prepares them as model inputs.
//
// The main format is JSON-lines: one object per line with at least the "text" and "label" fields.
// Lines that are not valid JSON are reported and skipped, never fatal.
package relcls

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/ryabhmd/scilons-eval/internal/files"
	"k8s.io/klog/v2"
)

// Record is one labeled text.
type Record struct {
	Text  string `json:"text" parquet:"text"`
	Label string `json:"label" parquet:"label"`
}

// ErrNotObject is the ParseError cause of lines holding valid JSON that is not an object.
var ErrNotObject = errors.New("line is not a JSON object")

// ParseError describes a malformed JSON line. It's passed to the ReportFunc and never returned.
type ParseError struct {
	Path string
	Line int // 1-based.
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: invalid JSON line %q: %v", e.Path, e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ReportFunc receives the diagnostics of skipped lines.
type ReportFunc func(*ParseError)

// Options for the JSON-lines readers.
type Options struct {
	// Report is called once per skipped line. By default the diagnostic is logged.
	Report ReportFunc
}

func (o Options) report(pe *ParseError) {
	if o.Report != nil {
		o.Report(pe)
		return
	}
	klog.Warningf("skipping line: %v", pe)
}

// Collector is a ReportFunc target that keeps all diagnostics.
type Collector struct {
	Errors []*ParseError
}

// Report appends pe to the collected errors.
func (c *Collector) Report(pe *ParseError) { c.Errors = append(c.Errors, pe) }

// Labels returns the set of labels used across all files.
func Labels(paths []string, opts Options) (map[string]struct{}, error) {
	set := make(map[string]struct{})
	for _, path := range paths {
		err := forEachLine(path, opts, func(line int, fields map[string]json.RawMessage) error {
			label, err := stringField(fields, "label")
			if err != nil {
				return errors.WithMessagef(err, "%s:%d", path, line)
			}
			set[label] = struct{}{}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return set, nil
}

// TextsLabels returns the texts and labels of the file at path, as two parallel slices in file order.
func TextsLabels(path string, opts Options) (texts, labels []string, err error) {
	records, err := ReadJSONL(path, opts)
	if err != nil {
		return nil, nil, err
	}
	return split(records)
}

// ReadJSONL reads all valid records of the JSON-lines file at path.
func ReadJSONL(path string, opts Options) ([]Record, error) {
	var records []Record
	err := forEachLine(path, opts, func(line int, fields map[string]json.RawMessage) error {
		text, err := stringField(fields, "text")
		if err != nil {
			return errors.WithMessagef(err, "%s:%d", path, line)
		}
		label, err := stringField(fields, "label")
		if err != nil {
			return errors.WithMessagef(err, "%s:%d", path, line)
		}
		records = append(records, Record{Text: text, Label: label})
		return nil
	})
	if err != nil {
		return nil, err
	}
	klog.V(1).Infof("relcls: read %d records from %q", len(records), path)
	return records, nil
}

func split(records []Record) (texts, labels []string, err error) {
	texts = make([]string, len(records))
	labels = make([]string, len(records))
	for i, r := range records {
		texts[i], labels[i] = r.Text, r.Label
	}
	return texts, labels, nil
}

// forEachLine calls fn with the decoded object of every line of path. Lines that don't decode
// to a JSON object (invalid JSON, arrays, strings, numbers, null) are reported and skipped.
// The empty remainder after a final newline is not a line.
func forEachLine(path string, opts Options, fn func(line int, fields map[string]json.RawMessage) error) error {
	content, err := files.ReadAll(path)
	if err != nil {
		return errors.WithMessagef(err, "while reading JSON-lines file")
	}
	lines := strings.Split(string(content), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	for i, line := range lines {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &fields); err != nil {
			opts.report(&ParseError{Path: path, Line: i + 1, Text: line, Err: err})
			continue
		}
		if fields == nil {
			// "null" decodes without error into a nil map.
			opts.report(&ParseError{Path: path, Line: i + 1, Text: line, Err: ErrNotObject})
			continue
		}
		if err := fn(i+1, fields); err != nil {
			return err
		}
	}
	return nil
}

// stringField returns fields[name] as a string. Numeric labels are accepted and kept in their
// JSON spelling.
func stringField(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := fields[name]
	if !ok {
		return "", errors.Errorf("record has no %q field", name)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", errors.Errorf("field %q must be a string or a number, got %s", name, raw)
}
