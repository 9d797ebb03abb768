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

package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/flowgate/admission/common/clock"
	"github.com/flowgate/admission/common/log/testlogger"
	"github.com/flowgate/admission/common/quotas"
)

func newTestLimiter(t *testing.T, cfg Config) (*Limiter[string], clock.MockedTimeSource) {
	t.Helper()
	ts := clock.NewMockedTimeSource()
	l, err := New[string](cfg, quotas.WithTimeSource(ts), quotas.WithLogger(testlogger.New(t)))
	require.NoError(t, err)
	return l, ts
}

func TestFixedInterval(t *testing.T) {
	l, ts := newTestLimiter(t, DefaultConfig())

	assert.True(t, l.CanAdmit("fresh"))
	assert.Zero(t, l.TimeUntilNextAllowed("fresh"))
	assert.True(t, l.RecordAndAdmit("fresh"), "first request is always admitted")

	assert.False(t, l.RecordAndAdmit("fresh"), "immediate second request is denied")
	assert.Equal(t, 10*time.Second, l.TimeUntilNextAllowed("fresh"))

	ts.Advance(10 * time.Second)
	assert.True(t, l.RecordAndAdmit("fresh"), "admitted after exactly MinInterval")
}

func TestIntervalMonotonicity(t *testing.T) {
	l, ts := newTestLimiter(t, Config{MinInterval: 3 * time.Second})
	require.True(t, l.RecordAndAdmit("u"))

	for elapsed := time.Duration(0); elapsed < 3*time.Second; elapsed += 250 * time.Millisecond {
		assert.False(t, l.CanAdmit("u"), "at +%v", elapsed)
		assert.Equal(t, 3*time.Second-elapsed, l.TimeUntilNextAllowed("u"), "at +%v", elapsed)
		ts.Advance(250 * time.Millisecond)
	}
	for i := 0; i < 4; i++ {
		assert.True(t, l.CanAdmit("u"))
		assert.Zero(t, l.TimeUntilNextAllowed("u"))
		ts.Advance(time.Second)
	}
}

func TestDeniedRequestDoesNotResetInterval(t *testing.T) {
	l, ts := newTestLimiter(t, Config{MinInterval: 10 * time.Second})
	require.True(t, l.RecordAndAdmit("u"))

	ts.Advance(6 * time.Second)
	assert.False(t, l.RecordAndAdmit("u"))
	assert.Equal(t, 4*time.Second, l.TimeUntilNextAllowed("u"))

	ts.Advance(4 * time.Second)
	assert.True(t, l.RecordAndAdmit("u"))
}

func TestIdentitiesAreIsolated(t *testing.T) {
	l, ts := newTestLimiter(t, Config{MinInterval: 10 * time.Second})

	require.True(t, l.RecordAndAdmit("a"))
	ts.Advance(3 * time.Second)
	require.True(t, l.RecordAndAdmit("b"))

	assert.Equal(t, 7*time.Second, l.TimeUntilNextAllowed("a"))
	assert.Equal(t, 10*time.Second, l.TimeUntilNextAllowed("b"))
	assert.True(t, l.CanAdmit("c"))
}

func TestWaitConsistentWithCanAdmit(t *testing.T) {
	l, ts := newTestLimiter(t, Config{MinInterval: 5 * time.Second})
	ids := []string{"a", "b", "c"}
	for step := 0; step < 30; step++ {
		l.RecordAndAdmit(ids[step%len(ids)])
		for _, id := range ids {
			wait := l.TimeUntilNextAllowed(id)
			assert.GreaterOrEqual(t, wait, time.Duration(0))
			assert.Equal(t, l.CanAdmit(id), wait == 0, "%v at step %v", id, step)
		}
		ts.Advance(700 * time.Millisecond)
	}
}

func TestStateIsNeverRemovedWithoutTTL(t *testing.T) {
	l, ts := newTestLimiter(t, DefaultConfig())
	for _, id := range []string{"a", "b", "c"} {
		require.True(t, l.RecordAndAdmit(id))
	}
	ts.Advance(time.Hour)
	assert.Zero(t, l.Sweep())
	assert.Equal(t, 3, l.Len())
	assert.ErrorIs(t, l.Start(context.Background()), ErrEvictionDisabled)
	assert.ErrorIs(t, l.Stop(context.Background()), ErrEvictionDisabled)
}

func TestSweepEvictsIdleIdentities(t *testing.T) {
	l, ts := newTestLimiter(t, Config{MinInterval: 10 * time.Second, IdleTTL: time.Minute})

	require.True(t, l.RecordAndAdmit("old"))
	ts.Advance(30 * time.Second)
	require.True(t, l.RecordAndAdmit("new"))

	assert.Zero(t, l.Sweep(), "nothing idle for a minute yet")
	ts.Advance(30 * time.Second)
	assert.Equal(t, 1, l.Sweep())
	assert.Equal(t, 1, l.Len())

	assert.True(t, l.CanAdmit("old"), "evicted identity behaves as never seen")
	assert.True(t, l.RecordAndAdmit("old"))
	assert.Equal(t, 2, l.Len())
}

func TestTTLShorterThanIntervalNeverChangesDecisions(t *testing.T) {
	l, ts := newTestLimiter(t, Config{MinInterval: 10 * time.Second, IdleTTL: time.Second})
	require.True(t, l.RecordAndAdmit("u"))

	ts.Advance(5 * time.Second)
	assert.Zero(t, l.Sweep(), "still inside MinInterval, must be kept")
	assert.False(t, l.CanAdmit("u"))

	ts.Advance(5 * time.Second)
	assert.Equal(t, 1, l.Sweep())
}

func TestBackgroundEviction(t *testing.T) {
	defer goleak.VerifyNone(t)

	l, ts := newTestLimiter(t, Config{MinInterval: time.Second, IdleTTL: 5 * time.Second})
	require.True(t, l.RecordAndAdmit("u"))
	require.NoError(t, l.Start(context.Background()))

	ts.BlockUntil(1)
	ts.Advance(5 * time.Second)
	assert.Eventually(t, func() bool { return l.Len() == 0 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, l.Stop(ctx))
}

func TestConcurrentAdmissionsAdmitOnce(t *testing.T) {
	ts := clock.NewMockedTimeSource()
	l, err := New[int](DefaultConfig(), quotas.WithTimeSource(ts))
	require.NoError(t, err)

	var admitted atomic.Int32
	var g errgroup.Group
	for i := 0; i < 100; i++ {
		g.Go(func() error {
			if l.RecordAndAdmit(42) {
				admitted.Inc()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.EqualValues(t, 1, admitted.Load())
}

func TestConfigValidation(t *testing.T) {
	tests := map[string]struct {
		cfg     Config
		wantErr bool
	}{
		"default":           {cfg: DefaultConfig()},
		"with ttl":          {cfg: Config{MinInterval: time.Second, IdleTTL: time.Hour}},
		"zero interval":     {cfg: Config{}, wantErr: true},
		"negative interval": {cfg: Config{MinInterval: -time.Second}, wantErr: true},
		"negative ttl":      {cfg: Config{MinInterval: time.Second, IdleTTL: -time.Second}, wantErr: true},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := New[string](test.cfg)
			if test.wantErr {
				assert.ErrorIs(t, err, quotas.ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
