// Package corpus reads sequence labeling corpora: one token per line, sentences separated by
// blank lines, with "-DOCSTART-" lines marking documents.
//
// Two layouts are supported:
//
//   - FormatColumns4: exactly four columns "token pos _ tag", split on a configured delimiter.
//     Document markers end the current sentence.
//   - FormatWordLabel: one or more whitespace separated columns, the first is the word and the
//     last the label. Document marker lines are skipped. It never fails with a FormatError.
package corpus

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/ryabhmd/scilons-eval/internal/files"
	"k8s.io/klog/v2"
)

// DocStart is the literal that starts document marker lines.
const DocStart = "-DOCSTART-"

// Format of a corpus file.
type Format int

const (
	// FormatColumns4 is the "token pos _ tag" layout.
	FormatColumns4 Format = iota
	// FormatWordLabel is the "word ... label" layout with a variable number of columns.
	FormatWordLabel
)

var formatNames = map[Format]string{
	FormatColumns4:  "columns4",
	FormatWordLabel: "wordlabel",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat is the inverse of Format.String.
func ParseFormat(name string) (Format, error) {
	for f, n := range formatNames {
		if strings.EqualFold(n, name) {
			return f, nil
		}
	}
	return 0, errors.Errorf("unknown corpus format %q, valid formats are \"columns4\" and \"wordlabel\"", name)
}

// Delimiters of FormatColumns4 columns.
const (
	Space      = " "
	Tab        = "\t"
	Whitespace = "" // Any run of whitespace.
)

// Options select how a file is parsed.
type Options struct {
	Format Format

	// Delimiter separates the columns of FormatColumns4. FormatWordLabel always splits on whitespace.
	Delimiter string
}

// Preset returns the options of the known datasets: "sciie" is space separated, other
// four-column datasets are tab separated, and the PICO style datasets use FormatWordLabel.
func Preset(dataset string) Options {
	switch strings.ToLower(dataset) {
	case "sciie":
		return Options{Format: FormatColumns4, Delimiter: Space}
	case "pico", "ebmnlp", "ebm-nlp", "ebm_nlp":
		return Options{Format: FormatWordLabel}
	default:
		return Options{Format: FormatColumns4, Delimiter: Tab}
	}
}

// Token is one tagged line of a corpus.
type Token struct {
	Text string
	Tag  string
}

// Sentence is an ordered sequence of tagged tokens.
type Sentence []Token

// Texts returns the token strings of the sentence.
func (s Sentence) Texts() []string {
	texts := make([]string, len(s))
	for i, tok := range s {
		texts[i] = tok.Text
	}
	return texts
}

// Tags returns the tags of the sentence.
func (s Sentence) Tags() []string {
	tags := make([]string, len(s))
	for i, tok := range s {
		tags[i] = tok.Tag
	}
	return tags
}

// FormatError reports a data line without the column count its format requires.
type FormatError struct {
	Path    string
	Line    int // 1-based.
	Columns int
	Want    int
	Format  Format
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s:%d: %s line has %d columns, want %d", e.Path, e.Line, e.Format, e.Columns, e.Want)
}

// ReadFile reads all sentences of the corpus file at path.
func ReadFile(path string, opts Options) ([]Sentence, error) {
	content, err := files.ReadAll(path)
	if err != nil {
		return nil, errors.WithMessagef(err, "while reading corpus")
	}
	sentences, err := Parse(path, content, opts)
	if err != nil {
		return nil, err
	}
	klog.V(1).Infof("corpus: read %d sentences (%s) from %q", len(sentences), opts.Format, path)
	return sentences, nil
}

// Parse parses the content of a corpus. name is only used in errors.
// A sentence still open at the end of the content is kept even without a trailing blank line.
func Parse(name string, content []byte, opts Options) ([]Sentence, error) {
	var step stepFn
	switch opts.Format {
	case FormatColumns4:
		step = columns4Step(opts.Delimiter)
	case FormatWordLabel:
		step = wordLabelStep
	default:
		return nil, errors.Errorf("unsupported corpus format %s", opts.Format)
	}

	acc := accumulator{}
	for i, line := range strings.Split(string(content), "\n") {
		var err error
		acc, err = step(acc, line)
		if err != nil {
			var fe *FormatError
			if errors.As(err, &fe) {
				fe.Path, fe.Line = name, i+1
			}
			return nil, err
		}
	}
	return acc.flush().done, nil
}

// accumulator is the state folded over the lines of a corpus: the finished sentences and the
// sentence being read.
type accumulator struct {
	done    []Sentence
	current Sentence
}

// flush closes the current sentence, if it has any token.
func (a accumulator) flush() accumulator {
	if len(a.current) == 0 {
		return a
	}
	return accumulator{done: append(a.done, a.current)}
}

func (a accumulator) add(tok Token) accumulator {
	a.current = append(a.current, tok)
	return a
}

type stepFn func(acc accumulator, line string) (accumulator, error)

func columns4Step(delimiter string) stepFn {
	return func(acc accumulator, line string) (accumulator, error) {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, DocStart) {
			return acc.flush(), nil
		}
		var columns []string
		if delimiter == Whitespace {
			columns = strings.Fields(line)
		} else {
			columns = strings.Split(strings.TrimSpace(line), delimiter)
		}
		if len(columns) != 4 {
			return acc, &FormatError{Columns: len(columns), Want: 4, Format: FormatColumns4}
		}
		return acc.add(Token{Text: columns[0], Tag: columns[3]}), nil
	}
}

func wordLabelStep(acc accumulator, line string) (accumulator, error) {
	line = strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(line, DocStart):
		return acc, nil
	case line == "":
		return acc.flush(), nil
	}
	// A single column is both the word and the label.
	columns := strings.Fields(line)
	return acc.add(Token{Text: columns[0], Tag: columns[len(columns)-1]}), nil
}

// TagSet returns the set of all tags used in sentences.
func TagSet(sentences ...[]Sentence) map[string]struct{} {
	set := make(map[string]struct{})
	for _, group := range sentences {
		for _, sentence := range group {
			for _, tok := range sentence {
				set[tok.Tag] = struct{}{}
			}
		}
	}
	return set
}
