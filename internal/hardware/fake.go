package hardware

import (
	"errors"
	"sync"
)

// FakeChannel is an in-memory channel that records every applied value.
type FakeChannel struct {
	mu     sync.Mutex
	name   string
	rng    Range
	value  int
	writes []int
	tones  []int
	closed bool

	// WriteError, if set, is returned by Write without applying the value.
	WriteError error
}

// NewFakeChannel creates a fake channel starting at rng.Min.
func NewFakeChannel(name string, rng Range) *FakeChannel {
	return &FakeChannel{name: name, rng: rng, value: rng.Min}
}

// Name returns the channel name.
func (f *FakeChannel) Name() string { return f.name }

// Range returns the channel range.
func (f *FakeChannel) Range() Range { return f.rng }

// Value returns the last applied value.
func (f *FakeChannel) Value() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// Write clamps and records v.
func (f *FakeChannel) Write(v int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return f.value, ErrClosed
	}
	if f.WriteError != nil {
		return f.value, f.WriteError
	}
	f.value = f.rng.Clamp(v)
	f.writes = append(f.writes, f.value)
	return f.value, nil
}

// Tone records a tone request.
func (f *FakeChannel) Tone(freqHz int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tones = append(f.tones, freqHz)
	return nil
}

// Writes returns a copy of every applied value in order.
func (f *FakeChannel) Writes() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, len(f.writes))
	copy(out, f.writes)
	return out
}

// Tones returns a copy of every requested tone frequency.
func (f *FakeChannel) Tones() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, len(f.tones))
	copy(out, f.tones)
	return out
}

// ResetWrites clears the write log without changing the value.
func (f *FakeChannel) ResetWrites() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = nil
}

// Closed reports whether Close was called.
func (f *FakeChannel) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Close marks the channel closed.
func (f *FakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// errFakeAttach is returned by FlakyOpener while failures remain.
var errFakeAttach = errors.New("fake: attach refused")

// FlakyOpener returns an Opener that fails the first failures calls and
// then yields ch. Calls counts every invocation.
func FlakyOpener(ch Channel, failures int, calls *int) Opener {
	return func() (Channel, error) {
		if calls != nil {
			*calls++
		}
		if failures > 0 {
			failures--
			return nil, errFakeAttach
		}
		return ch, nil
	}
}
