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

// Package throttle contains a fixed-interval Admitter: each identity may be
// admitted at most once per MinInterval.
package throttle

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/flowgate/admission/common/clock"
	"github.com/flowgate/admission/common/log"
	"github.com/flowgate/admission/common/log/tag"
	"github.com/flowgate/admission/common/quotas"
	"github.com/flowgate/admission/common/quotas/internal"
)

type (
	// Limiter is a fixed-interval quotas.Admitter.
	//
	// It keeps one timestamp per identity: the time of its last admission.
	// Identities never admitted are always admissible.
	//
	// Without an IdleTTL, memory grows with the number of distinct identities
	// ever admitted.  With one, Sweep forgets identities that have been idle long
	// enough to be admissible again, which is indistinguishable from never having
	// seen them.
	Limiter[K comparable] struct {
		minInterval time.Duration
		evictAfter  time.Duration
		idleTTL     time.Duration

		timesource clock.TimeSource
		logger     log.Logger
		sweeper    *internal.Sweeper

		// the lock MUST be held while acquiring AND handling Now()
		mut           sync.Mutex
		latestNow     time.Time // never allowed to rewind
		lastAdmission map[K]time.Time
	}
)

var _ quotas.Admitter[string] = (*Limiter[string])(nil)

// ErrEvictionDisabled is returned by Start when the limiter has no IdleTTL,
// as a background sweep would never remove anything.
var ErrEvictionDisabled = errors.New("idle eviction is disabled, IdleTTL is 0")

// New validates cfg and returns an empty Limiter.
func New[K comparable](cfg Config, opts ...quotas.Option) (*Limiter[K], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := quotas.BuildOptions(opts...)
	l := &Limiter[K]{
		minInterval: cfg.MinInterval,
		evictAfter:  cfg.evictAfter(),
		idleTTL:     cfg.IdleTTL,
		timesource:  o.TimeSource,
		logger: o.Logger.WithTags(
			tag.Component(tag.ComponentThrottle),
			tag.Policy(quotas.PolicyFixedInterval.String()),
		),
		lastAdmission: make(map[K]time.Time),
	}
	if cfg.IdleTTL > 0 {
		l.sweeper = internal.NewSweeper(l.evictAfter, func() { l.Sweep() }, l.timesource, l.logger)
	}
	l.logger.Info("limiter created", tag.MinInterval(cfg.MinInterval), tag.IdleTTL(cfg.IdleTTL))
	return l, nil
}

func (l *Limiter[K]) lockNow() (now time.Time, unlock func()) {
	l.mut.Lock()
	newNow := l.timesource.Now()
	if newNow.After(l.latestNow) {
		l.latestNow = newNow
	}
	return l.latestNow, l.mut.Unlock
}

// wait returns how long id must wait at `now`.  Must be called with the lock held.
func (l *Limiter[K]) wait(id K, now time.Time) time.Duration {
	last, ok := l.lastAdmission[id]
	if !ok {
		return 0
	}
	wait := l.minInterval - now.Sub(last)
	if wait < 0 {
		return 0
	}
	return wait
}

func (l *Limiter[K]) CanAdmit(id K) bool {
	now, unlock := l.lockNow()
	defer unlock()
	return l.wait(id, now) == 0
}

func (l *Limiter[K]) RecordAndAdmit(id K) bool {
	now, unlock := l.lockNow()
	defer unlock()
	if l.wait(id, now) > 0 {
		return false
	}
	l.lastAdmission[id] = now
	return true
}

func (l *Limiter[K]) TimeUntilNextAllowed(id K) time.Duration {
	now, unlock := l.lockNow()
	defer unlock()
	return l.wait(id, now)
}

// Len returns the number of identities with a recorded admission.
func (l *Limiter[K]) Len() int {
	l.mut.Lock()
	defer l.mut.Unlock()
	return len(l.lastAdmission)
}

// Sweep forgets identities idle for at least max(MinInterval, IdleTTL), and
// returns how many were forgotten.  It does nothing when IdleTTL is 0.
func (l *Limiter[K]) Sweep() int {
	if l.idleTTL == 0 {
		return 0
	}
	now, unlock := l.lockNow()
	defer unlock()

	evicted := 0
	for id, last := range l.lastAdmission {
		if now.Sub(last) >= l.evictAfter {
			delete(l.lastAdmission, id)
			evicted++
		}
	}
	l.logger.Debug("sweep complete", tag.Evicted(evicted), tag.IdentityCount(len(l.lastAdmission)))
	return evicted
}

// Start sweeps in the background every max(MinInterval, IdleTTL), until Stop is called.
func (l *Limiter[K]) Start(ctx context.Context) error {
	if l.sweeper == nil {
		return ErrEvictionDisabled
	}
	return l.sweeper.Start()
}

// Stop ends the background sweep and waits for it to exit, or for ctx to be done.
func (l *Limiter[K]) Stop(ctx context.Context) error {
	if l.sweeper == nil {
		return ErrEvictionDisabled
	}
	return l.sweeper.Stop(ctx)
}
