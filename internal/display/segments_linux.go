package display

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// SegmentRenderer drives a directly wired digit, one GPIO line per segment.
type SegmentRenderer struct {
	chip   *gpiocdev.Chip
	lines  *gpiocdev.Lines
	values []int
	last   int
}

// NewSegmentRenderer requests the segment lines (in a..g order) as outputs,
// initially dark. Set activeLow for common-anode digits.
func NewSegmentRenderer(chipName string, pins [NumSegments]int, activeLow bool) (*SegmentRenderer, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	opts := []gpiocdev.LineReqOption{gpiocdev.AsOutput(make([]int, NumSegments)...)}
	if activeLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}
	lines, err := chip.RequestLines(pins[:], opts...)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request segment pins %v: %w", pins, err)
	}

	return &SegmentRenderer{
		chip:   chip,
		lines:  lines,
		values: make([]int, NumSegments),
		last:   -1,
	}, nil
}

// Render drives the segment lines for digit.
func (s *SegmentRenderer) Render(digit uint8) error {
	digit &= 0x0F
	if int(digit) == s.last {
		return nil
	}
	segs := Segments(digit)
	for i := range s.values {
		s.values[i] = int(segs>>uint(i)) & 1
	}
	if err := s.lines.SetValues(s.values); err != nil {
		return fmt.Errorf("set segment pins: %w", err)
	}
	s.last = int(digit)
	return nil
}

// Close blanks the digit and releases the lines.
func (s *SegmentRenderer) Close() error {
	var errs []error

	if s.lines != nil {
		if err := s.lines.SetValues(make([]int, NumSegments)); err != nil {
			errs = append(errs, fmt.Errorf("blank segments: %w", err))
		}
		if err := s.lines.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close segment pins: %w", err))
		}
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
