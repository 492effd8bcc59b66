//go:build !linux

package gpio

import (
	"errors"

	"github.com/sweeney/tick-counter/internal/logic"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealPanel is not available on non-Linux platforms.
type RealPanel struct{}

// NewRealPanel returns an error on non-Linux platforms.
func NewRealPanel(chipName string, pins [logic.NumButtons]int) (*RealPanel, error) {
	return nil, errUnsupported
}

// Read is not implemented on non-Linux platforms.
func (p *RealPanel) Read() (logic.ButtonStatus, error) {
	return logic.ButtonNone, errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (p *RealPanel) Close() error {
	return nil
}

// RealIndicator is not available on non-Linux platforms.
type RealIndicator struct{}

// NewRealIndicator returns an error on non-Linux platforms.
func NewRealIndicator(chipName string, pin int) (*RealIndicator, error) {
	return nil, errUnsupported
}

// Toggle is not implemented on non-Linux platforms.
func (r *RealIndicator) Toggle() error {
	return errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (r *RealIndicator) Close() error {
	return nil
}
