package gpio

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mattn/go-tty"
	"github.com/sweeney/tick-counter/internal/logic"
)

// DefaultKeyHold is how long a key press is reported as a held button.
// Terminals deliver a key once, so the press is stretched to outlast debouncing.
const DefaultKeyHold = 150 * time.Millisecond

// keyButtons maps terminal keys to panel buttons.
var keyButtons = map[rune]int{
	'1': 0,
	'2': 1,
	'3': 2,
	'4': 3,
}

// KeyButton returns the button index for a key, if any.
func KeyButton(r rune) (int, bool) {
	i, ok := keyButtons[r]
	return i, ok
}

// keyLatch stretches single key presses into held buttons.
type keyLatch struct {
	hold time.Duration
	now  func() time.Time

	mu      sync.Mutex
	pressed logic.ButtonStatus
	until   time.Time
}

func (k *keyLatch) press(r rune) {
	i, ok := KeyButton(r)
	if !ok {
		return
	}
	k.mu.Lock()
	k.pressed = logic.Button(i)
	k.until = k.now().Add(k.hold)
	k.mu.Unlock()
}

func (k *keyLatch) read() logic.ButtonStatus {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.pressed == logic.ButtonNone || !k.now().Before(k.until) {
		k.pressed = logic.ButtonNone
		return logic.ButtonNone
	}
	return k.pressed
}

// TTYPanel reads keys 1-4 from the controlling terminal as buttons 0-3.
type TTYPanel struct {
	tty     *tty.TTY
	latch   *keyLatch
	closing atomic.Bool
}

// NewTTYPanel opens the terminal and starts reading keys.
// A hold <= 0 uses DefaultKeyHold.
func NewTTYPanel(hold time.Duration) (*TTYPanel, error) {
	if hold <= 0 {
		hold = DefaultKeyHold
	}
	t, err := tty.Open()
	if err != nil {
		return nil, fmt.Errorf("open tty: %w", err)
	}

	p := &TTYPanel{
		tty:   t,
		latch: &keyLatch{hold: hold, now: time.Now},
	}
	go readKeys(p.tty, p.latch, &p.closing)
	return p, nil
}

type runeReader interface {
	ReadRune() (rune, error)
}

// readKeys feeds keys into the latch until the reader fails. A failure caused
// by Close is expected and not logged.
func readKeys(r runeReader, latch *keyLatch, closing *atomic.Bool) {
	for {
		key, err := r.ReadRune()
		if err != nil {
			if !closing.Load() {
				log.Printf("tty: stopped reading keys: %v", err)
			}
			return
		}
		latch.press(key)
	}
}

// Read returns the button whose key was pressed within the hold window.
func (p *TTYPanel) Read() (logic.ButtonStatus, error) {
	return p.latch.read(), nil
}

// Close restores the terminal.
func (p *TTYPanel) Close() error {
	p.closing.Store(true)
	if err := p.tty.Close(); err != nil {
		return fmt.Errorf("close tty: %w", err)
	}
	return nil
}
