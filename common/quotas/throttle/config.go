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

package throttle

import (
	"time"

	"github.com/flowgate/admission/common/quotas"
)

// DefaultMinInterval is the interval used when none is configured.
const DefaultMinInterval = 10 * time.Second

// Config is the construction-time configuration of a Limiter.
type Config struct {
	// MinInterval is the minimum time between two admissions for one identity.
	MinInterval time.Duration `yaml:"minInterval" validate:"min=1"`
	// IdleTTL enables Sweep (and the background sweep) to forget identities
	// whose last admission is older than max(MinInterval, IdleTTL).
	// Zero disables eviction, and state is then kept for every identity ever admitted.
	IdleTTL time.Duration `yaml:"idleTTL" validate:"min=0"`
}

// DefaultConfig returns a 10 second interval, without eviction.
func DefaultConfig() Config {
	return Config{
		MinInterval: DefaultMinInterval,
	}
}

// Validate returns an error wrapping quotas.ErrInvalidConfig if the config cannot
// produce a meaningful limiter.
func (c Config) Validate() error {
	return quotas.ValidateConfig("fixed interval", c)
}

// evictAfter is how long an identity must be idle before it may be forgotten.
// Never less than MinInterval, so eviction cannot change an admission decision.
func (c Config) evictAfter() time.Duration {
	if c.IdleTTL < c.MinInterval {
		return c.MinInterval
	}
	return c.IdleTTL
}
