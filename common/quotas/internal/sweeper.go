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
	"errors"
	"fmt"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/flowgate/admission/common/clock"
	"github.com/flowgate/admission/common/log"
	"github.com/flowgate/admission/common/log/tag"
)

const (
	sweeperIdle int32 = iota
	sweeperRunning
	sweeperStopped
)

var (
	errNotStarted     = errors.New("sweeper was not started")
	errAlreadyStarted = errors.New("sweeper was already started")
	errAlreadyStopped = errors.New("sweeper was already stopped")
)

// Sweeper calls a function periodically on a background goroutine, until stopped.
//
// Limiters use it to drop per-identity state for identities that stopped sending
// requests, which their request paths alone cannot do.
//
// A Sweeper runs at most once: idle -> running -> stopped.
type Sweeper struct {
	interval   time.Duration
	sweep      func()
	timesource clock.TimeSource
	logger     log.Logger

	status atomic.Int32
	stop   chan struct{} // closed by Stop
	done   chan struct{} // closed when the loop has exited
}

func NewSweeper(interval time.Duration, sweep func(), timesource clock.TimeSource, logger log.Logger) *Sweeper {
	return &Sweeper{
		interval:   interval,
		sweep:      sweep,
		timesource: timesource,
		logger: logger.WithTags(
			tag.Component(tag.ComponentSweeper),
			tag.SweepInterval(interval),
		),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Start launches the sweep loop.  It may only be called once.
func (s *Sweeper) Start() error {
	if s.interval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %v", s.interval)
	}
	if !s.status.CompareAndSwap(sweeperIdle, sweeperRunning) {
		return errAlreadyStarted
	}
	s.logger.Info("sweeper starting", tag.LifeCycle(tag.LifeCycleStarting))
	// the ticker must exist before Start returns, so mocked time can be advanced right away
	ticker := s.timesource.NewTicker(s.interval)
	go func() {
		defer close(s.done)
		defer ticker.Stop()
		s.loop(ticker)
	}()
	s.logger.Info("sweeper started", tag.LifeCycle(tag.LifeCycleStarted))
	return nil
}

// Stop ends the sweep loop and waits for it to exit, or for ctx to be done.
// Calling it again after a timeout reports the misuse but still waits, so a
// caller can retry with a longer deadline.
func (s *Sweeper) Stop(ctx context.Context) error {
	if !s.status.CompareAndSwap(sweeperRunning, sweeperStopped) {
		if s.status.Load() == sweeperIdle {
			return errNotStarted
		}
		return multierr.Append(errAlreadyStopped, s.wait(ctx))
	}
	s.logger.Info("sweeper stopping", tag.LifeCycle(tag.LifeCycleStopping))
	close(s.stop)
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.logger.Info("sweeper stopped", tag.LifeCycle(tag.LifeCycleStopped))
	return nil
}

func (s *Sweeper) wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("sweeper did not stop in time: %w", ctx.Err())
	}
}

func (s *Sweeper) loop(ticker clock.Ticker) {
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.Chan():
			s.sweepOnce()
		}
	}
}

func (s *Sweeper) sweepOnce() {
	defer func() {
		// bad but not worth crashing the process
		log.CapturePanic(recover(), s.logger, nil)
	}()
	s.sweep()
}
