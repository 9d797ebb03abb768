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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockedTimeSource(t *testing.T) {
	start := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	ts := NewMockedTimeSourceAt(start)

	assert.Equal(t, start, ts.Now())
	ts.Advance(5 * time.Second)
	assert.Equal(t, start.Add(5*time.Second), ts.Now())
	assert.Equal(t, 5*time.Second, ts.Since(start))
}

func TestMockedTimeSourceTicker(t *testing.T) {
	ts := NewMockedTimeSource()
	ticker := ts.NewTicker(time.Second)
	defer ticker.Stop()

	select {
	case <-ticker.Chan():
		t.Fatal("ticker fired before time advanced")
	default:
	}

	ts.Advance(time.Second)
	select {
	case <-ticker.Chan():
	case <-time.After(time.Second):
		t.Fatal("ticker did not fire after advancing")
	}
}

func TestMockedTimeSourceAfter(t *testing.T) {
	ts := NewMockedTimeSource()
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ts.After(time.Minute)
	}()

	ts.BlockUntil(1)
	ts.Advance(time.Minute)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("After did not fire")
	}
}

func TestRealTimeSource(t *testing.T) {
	ts := NewRealTimeSource()
	before := time.Now()
	now := ts.Now()
	require.False(t, now.Before(before), "real time source should not lag time.Now")
	assert.GreaterOrEqual(t, ts.Since(before), time.Duration(0))
}
