// Package prompt asks for the input and output file names on an interactive
// terminal.
package prompt

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// The questions asked by Paths.
const (
	InputQuestion  = "enter your input file name(with extension): "
	OutputQuestion = "enter your output file name(with extension .bmp): "
)

var (
	// ErrNoAnswer is returned when the input ends before a line is read.
	ErrNoAnswer = errors.New("no answer given")
	// ErrEmptyAnswer is returned for an empty line.
	ErrEmptyAnswer = errors.New("empty answer")
)

// Prompter writes questions to one stream and reads line answers from another.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New returns a Prompter reading answers from r and writing questions to w.
func New(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(r), out: w}
}

// Ask writes question without a trailing newline and returns the next line of
// input with its line terminator removed. Other whitespace is kept, since it
// may be part of a file name.
func (p *Prompter) Ask(question string) (string, error) {
	if _, err := io.WriteString(p.out, question); err != nil {
		return "", errors.Wrap(err, "failed to write prompt")
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", errors.Wrapf(ErrNoAnswer, "%q", strings.TrimSpace(question))
		}
		return "", errors.Wrap(err, "failed to read answer")
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	if line == "" {
		return "", errors.Wrapf(ErrEmptyAnswer, "%q", strings.TrimSpace(question))
	}
	return line, nil
}

// Paths asks for the input and then the output file name.
func (p *Prompter) Paths() (input, output string, err error) {
	if input, err = p.Ask(InputQuestion); err != nil {
		return "", "", err
	}
	if output, err = p.Ask(OutputQuestion); err != nil {
		return "", "", err
	}
	return input, output, nil
}
