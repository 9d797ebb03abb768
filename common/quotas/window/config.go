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

package window

import (
	"time"

	"github.com/flowgate/admission/common/quotas"
)

const (
	// DefaultWindow is the window used when none is configured.
	DefaultWindow = 10 * time.Second
	// DefaultMaxRequests is the per-window limit used when none is configured.
	DefaultMaxRequests = 1
)

// Config is the construction-time configuration of a Limiter.
type Config struct {
	// Window is the trailing span admissions are counted over.
	Window time.Duration `yaml:"window" validate:"min=1"`
	// MaxRequests is how many admissions an identity may have inside one Window.
	MaxRequests int `yaml:"maxRequests" validate:"min=1"`
}

// DefaultConfig returns a 10 second window admitting 1 request.
func DefaultConfig() Config {
	return Config{
		Window:      DefaultWindow,
		MaxRequests: DefaultMaxRequests,
	}
}

// Validate returns an error wrapping quotas.ErrInvalidConfig if the config cannot
// produce a meaningful limiter.
func (c Config) Validate() error {
	return quotas.ValidateConfig("sliding window", c)
}
