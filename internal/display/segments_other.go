//go:build !linux

package display

import "errors"

// SegmentRenderer is not available on non-Linux platforms.
type SegmentRenderer struct{}

// NewSegmentRenderer returns an error on non-Linux platforms.
func NewSegmentRenderer(chipName string, pins [NumSegments]int, activeLow bool) (*SegmentRenderer, error) {
	return nil, errors.New("display: gpio segments not supported on this platform (requires Linux)")
}

// Render is not implemented on non-Linux platforms.
func (s *SegmentRenderer) Render(digit uint8) error {
	return errors.New("display: not supported")
}

// Close is not implemented on non-Linux platforms.
func (s *SegmentRenderer) Close() error {
	return nil
}
