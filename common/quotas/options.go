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
	"github.com/flowgate/admission/common/clock"
	"github.com/flowgate/admission/common/log"
	"github.com/flowgate/admission/common/log/loggerimpl"
)

type (
	// Options holds the collaborators shared by all Admitter implementations.
	Options struct {
		TimeSource clock.TimeSource
		Logger     log.Logger
	}

	// Option customizes Options.
	Option func(*Options)
)

// WithTimeSource overrides the real-time clock, mostly for tests.
func WithTimeSource(ts clock.TimeSource) Option {
	return func(o *Options) {
		o.TimeSource = ts
	}
}

// WithLogger sets the logger.  By default nothing is logged.
func WithLogger(logger log.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// BuildOptions applies opts over the defaults: real time and a no-op logger.
func BuildOptions(opts ...Option) Options {
	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.TimeSource == nil {
		o.TimeSource = clock.NewRealTimeSource()
	}
	if o.Logger == nil {
		o.Logger = loggerimpl.NewNopLogger()
	}
	return o
}
