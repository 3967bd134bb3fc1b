package console

import (
	"bufio"
	"context"
	"io"
)

// LineReader delivers input lines without blocking cancellation: a
// goroutine scans the input while Next waits on the context as well.
type LineReader struct {
	lines chan string
	err   error
	done  chan struct{}
}

func NewLineReader(r io.Reader) *LineReader {
	lr := &LineReader{lines: make(chan string), done: make(chan struct{})}
	go func() {
		defer close(lr.done)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lr.lines <- scanner.Text()
		}
		lr.err = scanner.Err()
	}()
	return lr
}

// Next returns the next line, io.EOF at the end of input, or the context
// error when ctx is done first.
func (lr *LineReader) Next(ctx context.Context) (string, error) {
	select {
	case line := <-lr.lines:
		return line, nil
	case <-lr.done:
		if lr.err != nil {
			return "", lr.err
		}
		return "", io.EOF
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
