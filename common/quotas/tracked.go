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

package quotas

import (
	"time"

	"github.com/uber-go/tally"
)

const (
	// AdmissionAllowedCounter counts admitted RecordAndAdmit calls.
	AdmissionAllowedCounter = "admission_allowed"
	// AdmissionRejectedCounter counts rejected RecordAndAdmit calls.
	AdmissionRejectedCounter = "admission_rejected"
	// AdmissionWaitTimer records the wait reported to rejected callers.
	AdmissionWaitTimer = "admission_wait"
)

type (
	// TrackedAdmitter wraps an Admitter and emits admission metrics.
	//
	// Only RecordAndAdmit is counted: CanAdmit and TimeUntilNextAllowed do not
	// change state, so counting them would double-count polling callers.
	TrackedAdmitter[K comparable] struct {
		wrapped  Admitter[K]
		allowed  tally.Counter
		rejected tally.Counter
		wait     tally.Timer
	}
)

var _ Admitter[string] = (*TrackedAdmitter[string])(nil)

// NewTrackedAdmitter wraps an Admitter, emitting to scope.
// Create the scope with the tags needed to identify this admitter uniquely,
// e.g. scope.Tagged(map[string]string{"policy": string(PolicySlidingWindow)}).
func NewTrackedAdmitter[K comparable](admitter Admitter[K], scope tally.Scope) *TrackedAdmitter[K] {
	return &TrackedAdmitter[K]{
		wrapped:  admitter,
		allowed:  scope.Counter(AdmissionAllowedCounter),
		rejected: scope.Counter(AdmissionRejectedCounter),
		wait:     scope.Timer(AdmissionWaitTimer),
	}
}

func (t *TrackedAdmitter[K]) CanAdmit(id K) bool {
	return t.wrapped.CanAdmit(id)
}

func (t *TrackedAdmitter[K]) RecordAndAdmit(id K) bool {
	admitted := t.wrapped.RecordAndAdmit(id)
	if admitted {
		t.allowed.Inc(1)
		return true
	}
	t.rejected.Inc(1)
	// read separately, so the wait may be slightly shorter than at rejection time
	t.wait.Record(t.wrapped.TimeUntilNextAllowed(id))
	return false
}

func (t *TrackedAdmitter[K]) TimeUntilNextAllowed(id K) time.Duration {
	return t.wrapped.TimeUntilNextAllowed(id)
}
