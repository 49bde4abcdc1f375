package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// ConsoleSink renders status updates to a writer.
//
// When the writer is a terminal, each update redraws over the previous one
// with ANSI cursor moves, so the status occupies a fixed region instead of
// scrolling. On plain writers (pipes, files, test buffers) updates are
// appended as blocks separated by a blank line.
//
// Write errors are swallowed: the sink contract has no feedback channel, and
// a broken pipe must not take the sampler down.
//
// Not safe for concurrent use; the sampler loop is the only caller.
type ConsoleSink struct {
	w        io.Writer
	file     *os.File // non-nil only when w is a terminal
	terminal bool
	width    int

	lastRows int
	started  bool
}

// NewConsoleSink creates a sink for w, detecting whether it is a terminal.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	cs := &ConsoleSink{w: w}

	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		cs.terminal = true
		cs.file = f
		if width, _, err := term.GetSize(int(f.Fd())); err == nil {
			cs.width = width
		}
	}

	return cs
}

// Update renders text, replacing the previously rendered update.
func (cs *ConsoleSink) Update(text string) {
	if cs.terminal {
		cs.redraw(text)
		return
	}
	cs.appendBlock(text)
}

func (cs *ConsoleSink) appendBlock(text string) {
	if cs.started {
		fmt.Fprint(cs.w, "\n")
	}
	fmt.Fprintf(cs.w, "%s\n", text)
	cs.started = true
}

func (cs *ConsoleSink) redraw(text string) {
	// The terminal may have been resized since the last update.
	if cs.file != nil {
		if width, _, err := term.GetSize(int(cs.file.Fd())); err == nil {
			cs.width = width
		}
	}

	if cs.lastRows > 0 {
		fmt.Fprintf(cs.w, "\x1b[%dA", cs.lastRows)
	}

	rows := 0
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(cs.w, "\r\x1b[2K%s\n", line)
		rows += cs.rowsFor(line)
	}
	cs.lastRows = rows
}

// rowsFor reports how many terminal rows a line occupies once wrapped, so
// the next redraw moves the cursor back far enough.
func (cs *ConsoleSink) rowsFor(line string) int {
	if cs.width <= 0 {
		return 1
	}
	n := utf8.RuneCountInString(line)
	if n <= cs.width {
		return 1
	}
	return (n + cs.width - 1) / cs.width
}
