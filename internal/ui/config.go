package ui

// Config contains audio output settings. There is no video/input
// configuration here: this package only drives the PCM sink, a narrower
// surface than a full emulator front end exposes.
type Config struct {
	SampleRate int  // output sample rate in Hz
	BufferMs   int  // player buffer size in milliseconds
	Stereo     bool // if false, fold left/right down to mono
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.SampleRate <= 0 {
		c.SampleRate = 32000
	}
	if c.BufferMs <= 0 {
		c.BufferMs = 40
	}
}
