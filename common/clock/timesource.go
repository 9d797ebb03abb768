// The MIT License (MIT)

// Copyright (c) 2017-2020 Uber Technologies Inc.

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

type (
	// TimeSource provides a source of time that attempts to be compatible with
	// the standard library's time package, while allowing time to be controlled
	// in tests.
	//
	// Everything that needs "now" or a ticker should take a TimeSource rather
	// than calling time.Now directly, so tests can advance time deterministically
	// instead of sleeping.
	TimeSource interface {
		// After waits for the duration to elapse and then sends the current time on the returned channel.
		After(d time.Duration) <-chan time.Time
		// Now returns the current time.
		Now() time.Time
		// Since returns the time elapsed since t.
		Since(t time.Time) time.Duration
		// Sleep blocks until the duration has passed.
		Sleep(d time.Duration)
		// NewTicker returns a Ticker that sends the time on its channel after each tick.
		NewTicker(d time.Duration) Ticker
	}

	// MockedTimeSource is a TimeSource that only moves when told to, via Advance.
	MockedTimeSource interface {
		TimeSource
		// Advance moves the mocked time forward, firing any timers or tickers
		// that became due.  Negative values are not supported.
		Advance(d time.Duration)
		// BlockUntil blocks until the given number of sleepers, tickers and
		// timers are waiting on this time source.
		BlockUntil(waiters int)
	}

	// Ticker mirrors [time.Ticker], but is an interface so it can be mocked.
	Ticker interface {
		Chan() <-chan time.Time
		Reset(d time.Duration)
		Stop()
	}

	clock struct {
		wrapped clockwork.Clock
	}

	mockedClock struct {
		clock
		fake clockwork.FakeClock
	}
)

var (
	_ TimeSource       = clock{}
	_ MockedTimeSource = (*mockedClock)(nil)
)

// NewRealTimeSource returns a TimeSource backed by the system clock.
func NewRealTimeSource() TimeSource {
	return clock{wrapped: clockwork.NewRealClock()}
}

// NewMockedTimeSource returns a MockedTimeSource starting at an arbitrary
// (but fixed) point in time.
func NewMockedTimeSource() MockedTimeSource {
	return newMocked(clockwork.NewFakeClock())
}

// NewMockedTimeSourceAt returns a MockedTimeSource starting at t.
func NewMockedTimeSourceAt(t time.Time) MockedTimeSource {
	return newMocked(clockwork.NewFakeClockAt(t))
}

func newMocked(fake clockwork.FakeClock) *mockedClock {
	return &mockedClock{
		clock: clock{wrapped: fake},
		fake:  fake,
	}
}

func (c clock) After(d time.Duration) <-chan time.Time {
	return c.wrapped.After(d)
}

func (c clock) Now() time.Time {
	return c.wrapped.Now()
}

func (c clock) Since(t time.Time) time.Duration {
	return c.wrapped.Since(t)
}

func (c clock) Sleep(d time.Duration) {
	c.wrapped.Sleep(d)
}

func (c clock) NewTicker(d time.Duration) Ticker {
	return c.wrapped.NewTicker(d)
}

func (m *mockedClock) Advance(d time.Duration) {
	m.fake.Advance(d)
}

func (m *mockedClock) BlockUntil(waiters int) {
	m.fake.BlockUntil(waiters)
}
