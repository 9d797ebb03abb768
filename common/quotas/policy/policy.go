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

// Package policy builds a quotas.Admitter from a configuration that names its policy.
package policy

import (
	"context"

	"github.com/flowgate/admission/common/quotas"
	"github.com/flowgate/admission/common/quotas/throttle"
	"github.com/flowgate/admission/common/quotas/window"
)

type (
	// Config selects a policy, and holds the configuration for each policy.
	// Only the selected policy's configuration is validated and used.
	Config struct {
		Policy        quotas.Policy   `yaml:"policy"`
		SlidingWindow window.Config   `yaml:"slidingWindow"`
		FixedInterval throttle.Config `yaml:"fixedInterval"`
	}

	// Limiter is the full API shared by every limiter New can build.
	Limiter[K comparable] interface {
		quotas.Admitter[K]
		// Len returns the number of identities currently holding state.
		Len() int
		// Sweep drops state that can no longer affect any decision, and returns
		// how many identities were dropped.
		Sweep() int
		// Start runs Sweep in the background until Stop.
		Start(ctx context.Context) error
		Stop(ctx context.Context) error
	}
)

var (
	_ Limiter[string] = (*window.Limiter[string])(nil)
	_ Limiter[string] = (*throttle.Limiter[string])(nil)
)

// DefaultConfig returns the given policy with default settings for every policy.
func DefaultConfig(p quotas.Policy) Config {
	return Config{
		Policy:        p,
		SlidingWindow: window.DefaultConfig(),
		FixedInterval: throttle.DefaultConfig(),
	}
}

// New builds the limiter named by cfg.Policy.
func New[K comparable](cfg Config, opts ...quotas.Option) (Limiter[K], error) {
	// errors are returned separately, so a nil *Limiter never becomes a non-nil interface
	switch cfg.Policy {
	case quotas.PolicySlidingWindow:
		l, err := window.New[K](cfg.SlidingWindow, opts...)
		if err != nil {
			return nil, err
		}
		return l, nil
	case quotas.PolicyFixedInterval:
		l, err := throttle.New[K](cfg.FixedInterval, opts...)
		if err != nil {
			return nil, err
		}
		return l, nil
	default:
		return nil, quotas.InvalidConfigf("policy", "unknown policy %q, expected %q or %q",
			cfg.Policy, quotas.PolicySlidingWindow, quotas.PolicyFixedInterval)
	}
}

// Parse converts a policy name into a quotas.Policy.
func Parse(name string) (quotas.Policy, error) {
	switch p := quotas.Policy(name); p {
	case quotas.PolicySlidingWindow, quotas.PolicyFixedInterval:
		return p, nil
	default:
		return "", quotas.InvalidConfigf("policy", "unknown policy %q", name)
	}
}
