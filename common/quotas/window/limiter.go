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

// Package window contains a sliding-window Admitter: each identity may be
// admitted at most MaxRequests times within any trailing Window.
package window

import (
	"context"
	"sync"
	"time"

	"github.com/emirpasic/gods/lists/doublylinkedlist"

	"github.com/flowgate/admission/common/clock"
	"github.com/flowgate/admission/common/log"
	"github.com/flowgate/admission/common/log/tag"
	"github.com/flowgate/admission/common/quotas"
	"github.com/flowgate/admission/common/quotas/internal"
)

type (
	// Limiter is a sliding-window quotas.Admitter.
	//
	// Every admitted request's timestamp is kept, oldest first, until it leaves
	// the window.  A timestamp t is expired once `t <= now - Window`, so a denied
	// identity becomes admissible again exactly Window after its oldest admission.
	//
	// Expired timestamps are trimmed on every call for the identity involved,
	// and an identity with no timestamps left is forgotten.  Identities that never
	// return are only trimmed by Sweep (or the background loop, see Start).
	Limiter[K comparable] struct {
		window      time.Duration
		maxRequests int

		timesource clock.TimeSource
		logger     log.Logger
		sweeper    *internal.Sweeper

		// important concurrency note: the lock MUST be held while acquiring AND
		// handling Now(), so decisions are made against monotonic time.
		mut       sync.Mutex
		latestNow time.Time // never allowed to rewind
		requests  map[K]*doublylinkedlist.List
	}
)

var _ quotas.Admitter[string] = (*Limiter[string])(nil)

// New validates cfg and returns an empty Limiter.
func New[K comparable](cfg Config, opts ...quotas.Option) (*Limiter[K], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := quotas.BuildOptions(opts...)
	l := &Limiter[K]{
		window:      cfg.Window,
		maxRequests: cfg.MaxRequests,
		timesource:  o.TimeSource,
		logger: o.Logger.WithTags(
			tag.Component(tag.ComponentSlidingWindow),
			tag.Policy(quotas.PolicySlidingWindow.String()),
		),
		requests: make(map[K]*doublylinkedlist.List),
	}
	// sweeping more often than once per window cannot free anything extra
	l.sweeper = internal.NewSweeper(cfg.Window, func() { l.Sweep() }, l.timesource, l.logger)
	l.logger.Info("limiter created", tag.Window(cfg.Window), tag.MaxRequests(cfg.MaxRequests))
	return l, nil
}

// lockNow locks the limiter and returns the current time, which never rolls back.
func (l *Limiter[K]) lockNow() (now time.Time, unlock func()) {
	l.mut.Lock()
	// gathered while locked, or concurrent callers could apply times out of order
	newNow := l.timesource.Now()
	if newNow.After(l.latestNow) {
		l.latestNow = newNow
	}
	return l.latestNow, l.mut.Unlock
}

// cleanup removes expired timestamps for id, and forgets id if none remain.
// It returns the remaining timestamps, or nil if there are none.
//
// Must be called with the lock held.
func (l *Limiter[K]) cleanup(id K, now time.Time) *doublylinkedlist.List {
	requests, ok := l.requests[id]
	if !ok {
		return nil
	}
	cutoff := now.Add(-l.window)
	for !requests.Empty() {
		oldest, _ := requests.Get(0)
		if oldest.(time.Time).After(cutoff) {
			break // everything after this is newer
		}
		requests.Remove(0)
	}
	if requests.Empty() {
		delete(l.requests, id)
		return nil
	}
	return requests
}

func (l *Limiter[K]) admissible(requests *doublylinkedlist.List) bool {
	return requests == nil || requests.Size() < l.maxRequests
}

func (l *Limiter[K]) CanAdmit(id K) bool {
	now, unlock := l.lockNow()
	defer unlock()
	return l.admissible(l.cleanup(id, now))
}

func (l *Limiter[K]) RecordAndAdmit(id K) bool {
	now, unlock := l.lockNow()
	defer unlock()

	requests := l.cleanup(id, now)
	if !l.admissible(requests) {
		return false
	}
	if requests == nil {
		requests = doublylinkedlist.New()
		l.requests[id] = requests
	}
	requests.Add(now)
	return true
}

// TimeUntilNextAllowed returns 0 if id holds no unexpired admissions.  Otherwise
// it returns the time until the oldest retained admission leaves the window.
//
// With MaxRequests > 1 this is an upper bound: an identity with a free slot is
// admissible now but still reports the oldest slot's wait.
func (l *Limiter[K]) TimeUntilNextAllowed(id K) time.Duration {
	now, unlock := l.lockNow()
	defer unlock()

	requests := l.cleanup(id, now)
	if requests == nil {
		return 0
	}
	oldest, _ := requests.Get(0)
	wait := l.window - now.Sub(oldest.(time.Time))
	if wait < 0 {
		return 0
	}
	return wait
}

// Len returns the number of identities currently holding unexpired admissions,
// as of the last cleanup.
func (l *Limiter[K]) Len() int {
	l.mut.Lock()
	defer l.mut.Unlock()
	return len(l.requests)
}

// Sweep runs cleanup for every identity, and returns how many were forgotten.
func (l *Limiter[K]) Sweep() int {
	now, unlock := l.lockNow()
	defer unlock()

	before := len(l.requests)
	for id := range l.requests {
		l.cleanup(id, now) // deleting during range is allowed
	}
	evicted := before - len(l.requests)
	l.logger.Debug("sweep complete", tag.Evicted(evicted), tag.IdentityCount(len(l.requests)))
	return evicted
}

// Start sweeps in the background once per Window, until Stop is called.
// Without it, memory is only reclaimed for identities that make further calls.
func (l *Limiter[K]) Start(ctx context.Context) error {
	return l.sweeper.Start()
}

// Stop ends the background sweep and waits for it to exit, or for ctx to be done.
func (l *Limiter[K]) Stop(ctx context.Context) error {
	return l.sweeper.Stop(ctx)
}
