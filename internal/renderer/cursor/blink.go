package cursor

import "time"

// BlinkConfig configures caret blinking.
type BlinkConfig struct {
	// Enabled turns blinking on.
	Enabled bool

	// Rate is the interval at which the caret toggles.
	Rate time.Duration

	// Delay keeps the caret solid after typing before blinking resumes.
	Delay time.Duration
}

// DefaultBlinkConfig returns the default blink configuration.
func DefaultBlinkConfig() BlinkConfig {
	return BlinkConfig{
		Enabled: true,
		Rate:    500 * time.Millisecond,
		Delay:   200 * time.Millisecond,
	}
}

// Blink tracks caret visibility over time.
type Blink struct {
	config     BlinkConfig
	visible    bool
	lastToggle time.Time
	pauseUntil time.Time
}

// NewBlink creates a blink tracker starting visible at now.
func NewBlink(config BlinkConfig, now time.Time) *Blink {
	return &Blink{
		config:     config,
		visible:    true,
		lastToggle: now,
	}
}

// Visible returns whether the caret should be drawn.
func (b *Blink) Visible() bool {
	return b.visible
}

// Reset makes the caret solid and postpones blinking, e.g. after a keypress.
func (b *Blink) Reset(now time.Time) {
	b.visible = true
	b.lastToggle = now
	b.pauseUntil = now.Add(b.config.Delay)
}

// Update advances the blink state. Returns true if visibility changed.
func (b *Blink) Update(now time.Time) bool {
	if !b.config.Enabled || now.Before(b.pauseUntil) {
		if !b.visible {
			b.visible = true
			b.lastToggle = now
			return true
		}
		return false
	}

	if now.Sub(b.lastToggle) >= b.config.Rate {
		b.visible = !b.visible
		b.lastToggle = now
		return true
	}
	return false
}
