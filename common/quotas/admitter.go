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

// Package quotas contains the admission contract shared by all per-identity
// limiters, plus wrappers that work with any of them.
//
// Implementations live in subpackages:
//   - [github.com/flowgate/admission/common/quotas/window]: at most N admissions per trailing window
//   - [github.com/flowgate/admission/common/quotas/throttle]: at most one admission per minimum interval
//
// All implementations are safe for concurrent use.
package quotas

import (
	"errors"
	"time"
)

type (
	// Admitter decides, per identity, whether a request may proceed now.
	//
	// Time is never supplied by the caller: implementations read it from their
	// own clock.TimeSource at call time.
	Admitter[K comparable] interface {
		// CanAdmit returns true if a request for id would be admitted now.
		// It does not record anything, so a later RecordAndAdmit may still be
		// rejected if other callers race with it.
		CanAdmit(id K) bool
		// RecordAndAdmit checks and records an admission for id in one atomic step.
		// It returns false, and changes nothing, if the request is not allowed.
		RecordAndAdmit(id K) bool
		// TimeUntilNextAllowed returns how long id must wait before a request
		// would be admitted.  It is always >= 0, and never 0 while CanAdmit is false.
		// Implementations may over-report while CanAdmit is true, see window.Limiter.
		TimeUntilNextAllowed(id K) time.Duration
	}

	// Policy names an admission algorithm.
	Policy string
)

const (
	// PolicySlidingWindow admits at most N requests per identity in a trailing window.
	PolicySlidingWindow Policy = "sliding_window"
	// PolicyFixedInterval admits a request only if a minimum interval passed since the last admission.
	PolicyFixedInterval Policy = "fixed_interval"
)

// ErrInvalidConfig is wrapped by every configuration error returned when
// constructing an Admitter.
var ErrInvalidConfig = errors.New("invalid admission config")

func (p Policy) String() string {
	return string(p)
}
