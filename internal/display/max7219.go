package display

import (
	"fmt"
	"strconv"

	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/max7219"
	"periph.io/x/host/v3"
)

// DefaultMAX7219Digits is the digit count of the common 8-digit modules.
const DefaultMAX7219Digits = 8

// MAX7219Renderer shows the count in decimal on a MAX7219 seven-segment module.
// The chip multiplexes the digits itself, so Render is a single SPI write.
type MAX7219Renderer struct {
	port   spi.PortCloser
	dev    *max7219.Dev
	digits int
	buf    []byte
	last   int
}

// NewMAX7219Renderer opens the SPI port (empty for the first one) and
// initialises a single MAX7219 with the given number of digits at low intensity.
func NewMAX7219Renderer(port string, digits int) (*MAX7219Renderer, error) {
	if digits <= 0 {
		digits = DefaultMAX7219Digits
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	p, err := spireg.Open(port)
	if err != nil {
		return nil, fmt.Errorf("open spi port %q: %w", port, err)
	}

	dev, err := max7219.NewSPI(p, 1, digits)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("init max7219: %w", err)
	}
	dev.SetDecode(max7219.DecodeB)
	if err := dev.SetIntensity(1); err != nil {
		p.Close()
		return nil, fmt.Errorf("set max7219 intensity: %w", err)
	}
	if err := dev.Clear(); err != nil {
		p.Close()
		return nil, fmt.Errorf("clear max7219: %w", err)
	}

	return &MAX7219Renderer{
		port:   p,
		dev:    dev,
		digits: digits,
		buf:    make([]byte, digits),
		last:   -1,
	}, nil
}

// Render writes the count right-aligned, blanking the leading digits.
func (m *MAX7219Renderer) Render(digit uint8) error {
	digit &= 0x0F
	if int(digit) == m.last {
		return nil
	}
	fillDecimal(m.buf, digit)
	if err := m.dev.Write(m.buf); err != nil {
		return fmt.Errorf("write max7219: %w", err)
	}
	m.last = int(digit)
	return nil
}

// fillDecimal writes digit as right-aligned ASCII decimal into buf and blanks the rest.
func fillDecimal(buf []byte, digit uint8) {
	for i := range buf {
		buf[i] = max7219.ClearDigit
	}
	s := strconv.Itoa(int(digit))
	if len(s) > len(buf) {
		s = s[len(s)-len(buf):]
	}
	copy(buf[len(buf)-len(s):], s)
}

// Close blanks the display and closes the SPI port.
func (m *MAX7219Renderer) Close() error {
	var errs []error
	if err := m.dev.Clear(); err != nil {
		errs = append(errs, fmt.Errorf("clear max7219: %w", err))
	}
	if err := m.port.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close spi port: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
