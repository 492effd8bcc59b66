//go:build linux

package gpio

import (
	"fmt"

	"github.com/sweeney/tick-counter/internal/logic"
	"github.com/warthog618/go-gpiocdev"
)

// RealPanel reads buttons from actual hardware using the Linux GPIO character device.
type RealPanel struct {
	chip   *gpiocdev.Chip
	lines  *gpiocdev.Lines
	values []int
}

// NewRealPanel requests the four button lines as active-low inputs with pull-up.
func NewRealPanel(chipName string, pins [logic.NumButtons]int) (*RealPanel, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	lines, err := chip.RequestLines(pins[:], gpiocdev.AsInput, gpiocdev.WithPullUp, gpiocdev.AsActiveLow)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button pins %v: %w", pins, err)
	}

	return &RealPanel{
		chip:   chip,
		lines:  lines,
		values: make([]int, logic.NumButtons),
	}, nil
}

// Read returns the logical button states. The lines are active-low, so a
// pressed button reads as 1.
func (p *RealPanel) Read() (logic.ButtonStatus, error) {
	if err := p.lines.Values(p.values); err != nil {
		return logic.ButtonNone, fmt.Errorf("read button pins: %w", err)
	}

	var status logic.ButtonStatus
	for i, v := range p.values {
		if v == 1 {
			status |= logic.Button(i)
		}
	}
	return status, nil
}

// Close releases GPIO resources.
func (p *RealPanel) Close() error {
	var errs []error

	if p.lines != nil {
		if err := p.lines.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pins: %w", err))
		}
	}
	if p.chip != nil {
		if err := p.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealIndicator drives the indicator LED on one output line.
type RealIndicator struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line

	// level is only touched from Toggle (tick context) and Close.
	level int
}

// NewRealIndicator requests pin as an output, initially low.
func NewRealIndicator(chipName string, pin int) (*RealIndicator, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request LED pin %d: %w", pin, err)
	}

	return &RealIndicator{chip: chip, line: line}, nil
}

// Toggle flips the LED.
func (r *RealIndicator) Toggle() error {
	r.level ^= 1
	return r.line.SetValue(r.level)
}

// Close drives the LED low and reconfigures the pin as an input with pull-down
// (the Pi boot default) before releasing it.
func (r *RealIndicator) Close() error {
	var errs []error

	if r.line != nil {
		if err := r.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear LED pin: %w", err))
		}
		if err := r.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure LED pin: %w", err))
		}
		if err := r.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close LED pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
