// Package gpio provides the button panel and indicator output with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// TTYPanel reads number keys from the terminal instead of buttons.
// The fake implementations allow testing without hardware.
package gpio

import "github.com/sweeney/tick-counter/internal/logic"

// Panel reads the four-button panel.
type Panel interface {
	// Read returns which buttons are currently held.
	// Buttons are wired active-low; Read reports logical presses.
	Read() (logic.ButtonStatus, error)

	// Close releases GPIO resources.
	Close() error
}

// Indicator drives the indicator LED. Toggle is called from the tick
// context and must not block.
type Indicator interface {
	Toggle() error

	// Close drives the output low and releases it.
	Close() error
}

// DefaultChip is the GPIO character device used when none is configured.
const DefaultChip = "gpiochip0"

// Pin definitions (BCM numbering)
var DefaultButtonPins = [logic.NumButtons]int{5, 6, 13, 19}

const DefaultPinLED = 26
