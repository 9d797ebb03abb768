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

package tag

import (
	"fmt"
	"time"
)

// All logging tags are defined in this file.
// To help finding available tags, we recommend that all tags to be categorized and placed in the corresponding section.
// We currently have those categories:
//   0. Common tags that can't be categorized(or belong to more than one)
//   1. Admission: identity and decision related
//   2. Limiter configuration
//   3. System: lifecycle and background work

///////////////////  Common tags defined here ///////////////////

// Error returns tag for Error
func Error(err error) Tag {
	return newErrorTag("error", err)
}

// Counter returns tag for Counter
func Counter(c int) Tag {
	return newInt("counter", c)
}

// Number returns tag for Number
func Number(n int64) Tag {
	return newInt64("number", n)
}

// Dynamic is a tag for values that do not have a predefined key.
// Prefer a predefined tag where one exists.
func Dynamic(key string, v interface{}) Tag {
	return newObjectTag(key, v)
}

///////////////////  Admission tags defined here ///////////////////

// Identity returns tag for the caller identity a decision is scoped to
func Identity(id interface{}) Tag {
	return newObjectTag("identity", id)
}

// Admitted returns tag for an admission decision
func Admitted(admitted bool) Tag {
	return newBoolTag("admitted", admitted)
}

// WaitDuration returns tag for the reported time until the next admission
func WaitDuration(d time.Duration) Tag {
	return newDurationTag("wait-duration", d)
}

// IdentityCount returns tag for the number of identities holding state
func IdentityCount(n int) Tag {
	return newInt("identity-count", n)
}

// Evicted returns tag for the number of identities removed by a sweep
func Evicted(n int) Tag {
	return newInt("evicted", n)
}

///////////////////  Limiter configuration tags defined here ///////////////////

// Policy returns tag for the admission policy name
func Policy(policy string) Tag {
	return newStringTag("policy", policy)
}

// Window returns tag for a sliding window size
func Window(d time.Duration) Tag {
	return newDurationTag("window", d)
}

// MaxRequests returns tag for the per-window admission limit
func MaxRequests(n int) Tag {
	return newInt("max-requests", n)
}

// MinInterval returns tag for a throttle interval
func MinInterval(d time.Duration) Tag {
	return newDurationTag("min-interval", d)
}

// IdleTTL returns tag for an idle eviction TTL
func IdleTTL(d time.Duration) Tag {
	return newDurationTag("idle-ttl", d)
}

// SweepInterval returns tag for a background sweep interval
func SweepInterval(d time.Duration) Tag {
	return newDurationTag("sweep-interval", d)
}

///////////////////  System tags defined here:  ///////////////////

// Component returns tag for Component
func Component(c valueTypeSysComponent) Tag {
	return newPredefinedStringTag("component", c)
}

// LifeCycle returns tag for LifeCycle
func LifeCycle(lifecycle valueTypeSysLifecycle) Tag {
	return newPredefinedStringTag("lifecycle", lifecycle)
}

// SysStackTrace returns tag for SysStackTrace
func SysStackTrace(stackTrace string) Tag {
	return newStringTag("sys-stack-trace", stackTrace)
}

func stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%+v", v)
}
