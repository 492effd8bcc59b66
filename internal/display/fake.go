package display

// FakeRenderer records every rendered digit for test assertions.
type FakeRenderer struct {
	// Frames contains every digit passed to Render, in order.
	Frames []uint8

	// RenderError, if set, will be returned by Render (the frame is not recorded).
	RenderError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeRenderer creates a FakeRenderer.
func NewFakeRenderer() *FakeRenderer {
	return &FakeRenderer{}
}

// Render records the digit.
func (f *FakeRenderer) Render(digit uint8) error {
	if f.RenderError != nil {
		return f.RenderError
	}
	f.Frames = append(f.Frames, digit)
	return nil
}

// Last returns the most recent frame, or false if nothing was rendered.
func (f *FakeRenderer) Last() (uint8, bool) {
	if len(f.Frames) == 0 {
		return 0, false
	}
	return f.Frames[len(f.Frames)-1], true
}

// Close marks the renderer as closed.
func (f *FakeRenderer) Close() error {
	f.Closed = true
	return nil
}
