package debugger

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// LineReader yields one command line per call. io.EOF ends the session.
type LineReader interface {
	ReadLine() (string, error)
}

type plainReader struct {
	sc     *bufio.Scanner
	out    io.Writer
	prompt string
}

// NewPlainReader prompts on out and reads lines from in.
func NewPlainReader(in io.Reader, out io.Writer, prompt string) LineReader {
	return &plainReader{sc: bufio.NewScanner(in), out: out, prompt: prompt}
}

func (p *plainReader) ReadLine() (string, error) {
	fmt.Fprint(p.out, p.prompt)
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return p.sc.Text(), nil
}

type rawTerminal struct {
	io.Reader
	io.Writer
}

// OpenTerminal returns a line editor with history when stdin is a
// terminal, and a plain reader otherwise. The returned function restores
// the terminal state.
func OpenTerminal(prompt string) (LineReader, io.Writer, func(), error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return NewPlainReader(os.Stdin, os.Stdout, prompt), os.Stdout, func() {}, nil
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("debugger: raw mode: %w", err)
	}
	t := term.NewTerminal(rawTerminal{os.Stdin, os.Stdout}, prompt)
	restore := func() { _ = term.Restore(fd, old) }
	return t, t, restore, nil
}
