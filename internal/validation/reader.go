// Package validation consumes ASR result blocks, decides pass/fail verdicts and reports them to the backend
package validation

import (
	"bufio"
	"io"
	"strings"
)

type readerState int

const (
	stateAccumulating readerState = iota
	stateDispatch
)

// BlockReader splits a text stream into blocks separated by blank lines.
//
// It accumulates non-blank lines until a blank line or the end of the stream,
// then dispatches the buffered lines as one block. Blank lines between blocks are skipped.
type BlockReader struct {
	r     *bufio.Reader
	lines []string
	state readerState
	eof   bool
}

// NewBlockReader creates a block reader over r
func NewBlockReader(r io.Reader) *BlockReader {
	return &BlockReader{
		r:     bufio.NewReader(r),
		state: stateAccumulating,
	}
}

// Next returns the next block. It returns io.EOF once the stream is exhausted.
func (b *BlockReader) Next() ([]byte, error) {
	for {
		switch b.state {
		case stateDispatch:
			block := strings.Join(b.lines, "")
			b.lines = b.lines[:0]
			b.state = stateAccumulating
			return []byte(block), nil

		case stateAccumulating:
			if b.eof {
				return nil, io.EOF
			}

			line, err := b.r.ReadString('\n')
			if err != nil && err != io.EOF {
				return nil, err
			}
			if err == io.EOF {
				b.eof = true
			}

			if strings.TrimSpace(line) != "" {
				b.lines = append(b.lines, line)
			}
			if len(b.lines) > 0 && (strings.TrimSpace(line) == "" || b.eof) {
				b.state = stateDispatch
			}
		}
	}
}
