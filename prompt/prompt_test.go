package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaths(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("brick.png\nbrick.bmp\n"), &out)

	in, dst, err := p.Paths()
	require.NoError(t, err)
	assert.Equal(t, "brick.png", in)
	assert.Equal(t, "brick.bmp", dst)
	assert.Equal(t, InputQuestion+OutputQuestion, out.String())
}

func TestAskLineEndings(t *testing.T) {
	p := New(strings.NewReader("one.png\r\n  two words.jpg \nlast.bmp"), &bytes.Buffer{})

	got, err := p.Ask("? ")
	require.NoError(t, err)
	assert.Equal(t, "one.png", got, "CRLF is stripped")

	got, err = p.Ask("? ")
	require.NoError(t, err)
	assert.Equal(t, "  two words.jpg ", got, "inner and surrounding spaces are kept")

	got, err = p.Ask("? ")
	require.NoError(t, err)
	assert.Equal(t, "last.bmp", got, "a final line without newline is accepted")

	_, err = p.Ask("? ")
	assert.ErrorIs(t, err, ErrNoAnswer)
}

func TestAskEmpty(t *testing.T) {
	p := New(strings.NewReader("\n"), &bytes.Buffer{})
	_, err := p.Ask(InputQuestion)
	assert.ErrorIs(t, err, ErrEmptyAnswer)
}

func TestPathsStopsAtFirstError(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("only-input.png\n"), &out)

	_, _, err := p.Paths()
	assert.ErrorIs(t, err, ErrNoAnswer)
	assert.Equal(t, InputQuestion+OutputQuestion, out.String())
}
