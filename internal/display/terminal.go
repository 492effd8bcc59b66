package display

import (
	"fmt"
	"io"
)

// TerminalRenderer writes the digit to a terminal line, redrawing in place.
type TerminalRenderer struct {
	w    io.Writer
	last int
}

// NewTerminalRenderer creates a renderer writing to w.
func NewTerminalRenderer(w io.Writer) *TerminalRenderer {
	return &TerminalRenderer{w: w, last: -1}
}

// Render redraws the line when the digit changes.
func (r *TerminalRenderer) Render(digit uint8) error {
	digit &= 0x0F
	if int(digit) == r.last {
		return nil
	}
	if _, err := fmt.Fprintf(r.w, "\rcount %X [%s]", digit, Pattern(digit)); err != nil {
		return fmt.Errorf("write terminal: %w", err)
	}
	r.last = int(digit)
	return nil
}

// Close ends the line.
func (r *TerminalRenderer) Close() error {
	if r.last < 0 {
		return nil
	}
	_, err := fmt.Fprintln(r.w)
	return err
}
