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

package internal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/goleak"

	"github.com/flowgate/admission/common/clock"
	"github.com/flowgate/admission/common/log/testlogger"
)

func TestSweeperRunsOnEachTick(t *testing.T) {
	defer goleak.VerifyNone(t)

	ts := clock.NewMockedTimeSource()
	swept := make(chan struct{}, 1)
	s := NewSweeper(time.Second, func() { swept <- struct{}{} }, ts, testlogger.New(t))
	require.NoError(t, s.Start())

	for i := 0; i < 3; i++ {
		ts.BlockUntil(1) // the ticker
		ts.Advance(time.Second)
		select {
		case <-swept:
		case <-time.After(time.Second):
			t.Fatalf("sweep %d did not run", i)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestSweeperSurvivesPanics(t *testing.T) {
	defer goleak.VerifyNone(t)

	ts := clock.NewMockedTimeSource()
	calls := atomic.NewInt32(0)
	done := make(chan struct{}, 2)
	s := NewSweeper(time.Second, func() {
		defer func() { done <- struct{}{} }()
		if calls.Inc() == 1 {
			panic("first sweep fails")
		}
	}, ts, testlogger.New(t))
	require.NoError(t, s.Start())

	for i := 0; i < 2; i++ {
		ts.BlockUntil(1)
		ts.Advance(time.Second)
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("sweep %d did not run", i)
		}
	}
	assert.EqualValues(t, 2, calls.Load())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestSweeperLifecycleMisuse(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	s := NewSweeper(time.Second, func() {}, clock.NewMockedTimeSource(), testlogger.New(t))
	assert.ErrorIs(t, s.Stop(ctx), errNotStarted)

	require.NoError(t, s.Start())
	assert.ErrorIs(t, s.Start(), errAlreadyStarted)
	require.NoError(t, s.Stop(ctx))
	assert.ErrorIs(t, s.Stop(ctx), errAlreadyStopped)
	assert.ErrorIs(t, s.Start(), errAlreadyStarted, "a stopped sweeper cannot be restarted")
}

func TestSweeperRejectsNonPositiveInterval(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	s := NewSweeper(0, func() {}, clock.NewMockedTimeSource(), testlogger.New(t))
	assert.Error(t, s.Start())
	assert.ErrorIs(t, s.Stop(ctx), errNotStarted, "a failed start leaves nothing to stop")
}

func TestSweeperStopWaitsForRunningSweep(t *testing.T) {
	defer goleak.VerifyNone(t)

	ts := clock.NewMockedTimeSource()
	entered := make(chan struct{})
	release := make(chan struct{})
	s := NewSweeper(time.Second, func() {
		close(entered)
		<-release
	}, ts, testlogger.New(t))
	require.NoError(t, s.Start())

	ts.BlockUntil(1)
	ts.Advance(time.Second)
	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("sweep did not run")
	}

	short, cancelShort := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancelShort()
	assert.ErrorIs(t, s.Stop(short), context.DeadlineExceeded)

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := s.Stop(ctx)
	assert.ErrorIs(t, err, errAlreadyStopped)
	assert.NotErrorIs(t, err, context.DeadlineExceeded, "the retry should see the loop exit")
}
