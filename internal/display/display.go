// Package display renders the display count on a single seven-segment digit.
//
// Renderers are called from the foreground loop on every iteration, so
// implementations skip the device write when the digit has not changed.
package display

// Renderer shows a digit in [0, 15].
type Renderer interface {
	Render(digit uint8) error

	// Close blanks the display and releases the device.
	Close() error
}

// Segment bits, in the common g-f-e-d-c-b-a order.
//
//	 a
//	f b
//	 g
//	e c
//	 d
const (
	segA byte = 1 << iota
	segB
	segC
	segD
	segE
	segF
	segG

	// NumSegments is the number of segment lines on a digit (no decimal point).
	NumSegments = 7
)

// font maps a hex digit to its segment pattern. B and D are lowercase so they
// differ from 8 and 0.
var font = [16]byte{
	0x0: segA | segB | segC | segD | segE | segF,
	0x1: segB | segC,
	0x2: segA | segB | segG | segE | segD,
	0x3: segA | segB | segG | segC | segD,
	0x4: segF | segG | segB | segC,
	0x5: segA | segF | segG | segC | segD,
	0x6: segA | segF | segE | segD | segC | segG,
	0x7: segA | segB | segC,
	0x8: segA | segB | segC | segD | segE | segF | segG,
	0x9: segA | segB | segC | segD | segF | segG,
	0xA: segA | segB | segC | segE | segF | segG,
	0xB: segF | segE | segD | segC | segG,
	0xC: segA | segF | segE | segD,
	0xD: segB | segC | segD | segE | segG,
	0xE: segA | segF | segG | segE | segD,
	0xF: segA | segF | segG | segE,
}

// Segments returns the segment pattern for digit. Digits above 15 wrap.
func Segments(digit uint8) byte {
	return font[digit&0x0F]
}

// Pattern renders the lit segments as text, e.g. "abcdef-" for 0.
func Pattern(digit uint8) string {
	const names = "abcdefg"
	segs := Segments(digit)
	out := make([]byte, NumSegments)
	for i := 0; i < NumSegments; i++ {
		if segs&(1<<uint(i)) != 0 {
			out[i] = names[i]
		} else {
			out[i] = '-'
		}
	}
	return string(out)
}

// DefaultSegmentPins are the BCM lines for segments a through g.
var DefaultSegmentPins = [NumSegments]int{17, 27, 22, 23, 24, 25, 12}

// Nop discards every frame. Used when no display is attached.
type Nop struct{}

func (Nop) Render(uint8) error { return nil }
func (Nop) Close() error       { return nil }
